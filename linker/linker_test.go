package linker

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/upackage/config"
	"github.com/mogaika/upackage/names"
	"github.com/mogaika/upackage/objects"
	"github.com/mogaika/upackage/pack"
	"github.com/mogaika/upackage/resource"
)

// writeAndRead pushes a built package through its file form so the linker
// sees exactly what a loader would
func writeAndRead(t *testing.T, b *pack.Builder) (*pack.Package, []byte) {
	t.Helper()
	p, err := b.Build()
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = p.WriteTo(&buf)
	require.NoError(t, err)
	loaded, err := pack.Read(buf.Bytes())
	require.NoError(t, err)
	return loaded, buf.Bytes()
}

type world struct {
	engine, rocks   *pack.Package
	rocksFile       []byte
	engineL, rocksL *Linker
}

func newWorld(t *testing.T) *world {
	engine := objects.NewPackage("/Script/Engine")
	mesh := objects.NewClass(engine, "StaticMesh")
	eb := pack.NewBuilder(engine, config.VER_UE4_LATEST)
	require.NoError(t, eb.AddExport(mesh, []byte("class layout")))

	rocks := objects.NewPackage("/Game/Rocks")
	rock := objects.New("Rock", mesh, rocks).
		SetFlags(resource.RF_Public | resource.RF_Standalone).
		SetAsset(true)
	rb := pack.NewBuilder(rocks, config.VER_UE4_LATEST).SetGuid(uuid.New())
	require.NoError(t, rb.AddExport(rock, []byte("rock")))

	w := &world{}
	w.engine, _ = writeAndRead(t, eb)
	w.rocks, w.rocksFile = writeAndRead(t, rb)

	var err error
	w.engineL, err = NewLinker("engine.upk", w.engine)
	require.NoError(t, err)
	w.rocksL, err = NewLinker("rocks.upk", w.rocks)
	require.NoError(t, err)
	return w
}

func quietRegistry() (*Registry, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	r := NewRegistry()
	r.SetLogger(log)
	return r, hook
}

func TestImportsStartUnresolved(t *testing.T) {
	w := newWorld(t)
	require.Len(t, w.rocksL.Imports, 2)
	for _, res := range w.rocksL.Imports {
		assert.False(t, res.Resolved())
		assert.Nil(t, res.Source)
		assert.Equal(t, resource.INDEX_NONE, res.SourceIndex)
	}

	w.rocksL.Imports[0] = Resolution{Object: w.engineL.Root, Source: w.engineL}
	w.rocksL.ResetImports()
	assert.Equal(t, Unresolved(), w.rocksL.Imports[0])
}

func TestLinkerMaterializesExports(t *testing.T) {
	w := newWorld(t)
	rock := w.rocksL.Export(0)
	assert.Equal(t, "/Game/Rocks.Rock", rock.Path())
	assert.Equal(t, names.New("StaticMesh"), rock.ClassObject().Name())
	assert.Equal(t, "/Script/Engine.StaticMesh", rock.ClassObject().Path())
	assert.Equal(t, resource.RF_Public|resource.RF_Standalone, rock.MaskedFlags())
	assert.True(t, rock.IsAsset())
	assert.Same(t, w.rocksL.Root, rock.Package())

	// building from the linked objects gives back the same file
	b := pack.NewBuilder(w.rocksL.Root, w.rocks.Version).SetGuid(w.rocks.Guid)
	for i, obj := range w.rocksL.Objects {
		payload, err := w.rocks.Payload(i)
		require.NoError(t, err)
		require.NoError(t, b.AddExport(obj, payload))
	}
	p, err := b.Build()
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = p.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, w.rocksFile, buf.Bytes())
}

func TestResolveAcrossPackages(t *testing.T) {
	w := newWorld(t)
	r, hook := quietRegistry()
	require.NoError(t, r.Add(w.engineL))
	require.NoError(t, r.Add(w.rocksL))

	errs := r.ResolveAll()

	// the engine package imports the core package, nobody loaded it
	require.Len(t, errs, len(w.engine.Imports))
	for _, err := range errs {
		var unresolved *UnresolvedError
		require.True(t, errors.As(err, &unresolved))
		assert.Equal(t, "/Script/Engine", unresolved.Package)
		assert.Contains(t, unresolved.Reason, "not loaded")
	}
	for _, res := range w.engineL.Imports {
		assert.False(t, res.Resolved())
	}

	pkgRes, meshRes := w.rocksL.Imports[0], w.rocksL.Imports[1]
	require.True(t, pkgRes.Resolved())
	assert.Same(t, w.engineL, pkgRes.Source)
	assert.Equal(t, resource.INDEX_NONE, pkgRes.SourceIndex)
	assert.Equal(t, w.engineL.Root, pkgRes.Object)

	require.True(t, meshRes.Resolved())
	assert.Same(t, w.engineL, meshRes.Source)
	assert.Equal(t, 0, meshRes.SourceIndex)
	assert.Equal(t, w.engineL.Export(0), meshRes.Object)

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
			assert.Equal(t, "/Script/Engine", e.Data["package"])
		}
	}
	assert.Equal(t, len(errs), warnings)
}

func TestResolveMismatch(t *testing.T) {
	w := newWorld(t)
	w.rocks.Imports[1].ClassName = names.New("Texture2D")
	rocksL, err := NewLinker("rocks.upk", w.rocks)
	require.NoError(t, err)

	r, _ := quietRegistry()
	require.NoError(t, r.Add(w.engineL))
	require.NoError(t, r.Add(rocksL))

	errs := r.Resolve(rocksL)
	require.Len(t, errs, 1)
	var unresolved *UnresolvedError
	require.True(t, errors.As(errs[0], &unresolved))
	assert.Equal(t, 1, unresolved.Import)
	assert.Equal(t, "/Script/Engine.StaticMesh", unresolved.Path)
	assert.True(t, rocksL.Imports[0].Resolved())
	assert.Equal(t, Unresolved(), rocksL.Imports[1])
}

func TestResolveSuffixedPackage(t *testing.T) {
	props := objects.NewPackage("/Game/Props_2")
	crate := objects.NewClass(props, "Crate_C")
	pb := pack.NewBuilder(props, config.VER_UE4_LATEST)
	require.NoError(t, pb.AddExport(crate, []byte("crate class")))

	level := objects.NewPackage("/Game/Level")
	pl := pack.NewBuilder(level, config.VER_UE4_LATEST)
	require.NoError(t, pl.AddExport(objects.New("Box", crate, level), []byte("box")))

	propsPkg, _ := writeAndRead(t, pb)
	levelPkg, _ := writeAndRead(t, pl)
	require.Equal(t, "/Game/Props_2", propsPkg.Name.String())

	propsL, err := NewLinker("props.upk", propsPkg)
	require.NoError(t, err)
	levelL, err := NewLinker("level.upk", levelPkg)
	require.NoError(t, err)

	r, _ := quietRegistry()
	require.NoError(t, r.Add(propsL))
	require.NoError(t, r.Add(levelL))
	_, ok := r.Find("/Game/Props")
	assert.False(t, ok)

	assert.Empty(t, r.Resolve(levelL))
	require.Len(t, levelL.Imports, 2)
	assert.Same(t, propsL, levelL.Imports[0].Source)
	assert.Equal(t, propsL.Root, levelL.Imports[0].Object)
	assert.Equal(t, propsL.Export(0), levelL.Imports[1].Object)
}

func TestRegistry(t *testing.T) {
	w := newWorld(t)
	r, _ := quietRegistry()
	require.NoError(t, r.Add(w.rocksL))
	require.NoError(t, r.Add(w.engineL))
	assert.Error(t, r.Add(w.rocksL))

	l, ok := r.Find("/game/ROCKS")
	require.True(t, ok)
	assert.Same(t, w.rocksL, l)
	_, ok = r.Find("/Game/Nothing")
	assert.False(t, ok)

	list := r.Linkers()
	require.Len(t, list, 2)
	assert.Same(t, w.rocksL, list[0])
	assert.Same(t, w.engineL, list[1])
}

func TestLinkerRejectsCycles(t *testing.T) {
	w := newWorld(t)
	w.rocks.Exports[0].OuterIndex = resource.ExportIndex(0)
	_, err := NewLinker("rocks.upk", w.rocks)
	assert.Error(t, err)

	w = newWorld(t)
	w.rocks.Exports[0].ClassIndex = resource.ImportIndex(7)
	_, err = NewLinker("rocks.upk", w.rocks)
	assert.Error(t, err)
}
