package pack

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mogaika/upackage/config"
	"github.com/mogaika/upackage/objects"
	"github.com/mogaika/upackage/resource"
)

// Builder turns live objects of one package into import and export tables.
// Objects the exports refer to from other packages become imports, objects
// of the package that are referred to but not added become payload-less
// exports.
type Builder struct {
	pkg     *objects.Object
	version config.PackageVersion
	guid    uuid.UUID

	exports   []*objects.Object
	payloads  [][]byte
	exportIdx map[*objects.Object]int
	added     map[*objects.Object]bool

	imports   []*objects.Object
	importIdx map[*objects.Object]int
}

func NewBuilder(pkg *objects.Object, version config.PackageVersion) *Builder {
	return &Builder{
		pkg:       pkg,
		version:   version,
		exportIdx: make(map[*objects.Object]int),
		added:     make(map[*objects.Object]bool),
		importIdx: make(map[*objects.Object]int),
	}
}

func (b *Builder) SetGuid(guid uuid.UUID) *Builder {
	b.guid = guid
	return b
}

func (b *Builder) AddExport(obj *objects.Object, payload []byte) error {
	if obj == nil || !obj.IsIn(b.pkg) {
		return errors.Errorf("%v is not inside package %v", obj, b.pkg.Path())
	}
	if b.added[obj] {
		return errors.Errorf("%v added twice", obj)
	}
	b.added[obj] = true
	if i, ok := b.exportIdx[obj]; ok {
		b.payloads[i] = payload
		return nil
	}
	b.addExport(obj, payload)
	return nil
}

func (b *Builder) addExport(obj *objects.Object, payload []byte) int {
	i := len(b.exports)
	b.exportIdx[obj] = i
	b.exports = append(b.exports, obj)
	b.payloads = append(b.payloads, payload)
	return i
}

func (b *Builder) index(obj *objects.Object) resource.PackageIndex {
	switch {
	case obj == nil || obj == b.pkg:
		return 0
	case obj.IsIn(b.pkg):
		if i, ok := b.exportIdx[obj]; ok {
			return resource.ExportIndex(i)
		}
		return resource.ExportIndex(b.addExport(obj, nil))
	default:
		return b.importIndex(obj)
	}
}

func (b *Builder) importIndex(obj *objects.Object) resource.PackageIndex {
	if i, ok := b.importIdx[obj]; ok {
		return resource.ImportIndex(i)
	}
	// outers first so a chain reads top-down in the table
	if obj.OuterObject() != nil {
		b.importIndex(obj.OuterObject())
	}
	i := len(b.imports)
	b.importIdx[obj] = i
	b.imports = append(b.imports, obj)
	return resource.ImportIndex(i)
}

func (b *Builder) Build() (*Package, error) {
	if !b.pkg.IsPackage() {
		return nil, errors.Errorf("%v is not a package", b.pkg)
	}
	if !b.version.Loadable() {
		return nil, errors.Wrapf(ErrUnknownVersion, "version %d", b.version)
	}

	p := &Package{
		Name:         b.pkg.Name(),
		Version:      b.version,
		PackageFlags: b.pkg.PackageFlags,
		Guid:         b.guid,
	}

	// b.exports grows while outers and classes of the package get pulled in
	for i := 0; i < len(b.exports); i++ {
		obj := b.exports[i]
		e := resource.NewExportFromObject(obj)
		e.OuterIndex = b.index(obj.OuterObject())
		e.ClassIndex = b.index(obj.ClassObject())
		e.SuperIndex = b.index(obj.SuperObject())
		e.PackageFlags = p.PackageFlags
		e.PackageGuid = b.guid
		p.Exports = append(p.Exports, e)
	}

	for i, obj := range b.imports {
		imp := resource.NewImportFromObject(obj)
		if outer := obj.OuterObject(); outer != nil {
			imp.OuterIndex = resource.ImportIndex(b.importIdx[outer])
		}
		if i != b.importIdx[obj] {
			panic("import table out of order")
		}
		p.Imports = append(p.Imports, imp)
	}

	p.Payloads = append([][]byte(nil), b.payloads...)
	return p, nil
}
