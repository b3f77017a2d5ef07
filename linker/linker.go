// Package linker connects loaded packages: export records become live
// objects and import records get resolved against the exports of other
// loaded packages.
package linker

import (
	"github.com/pkg/errors"

	"github.com/mogaika/upackage/names"
	"github.com/mogaika/upackage/objects"
	"github.com/mogaika/upackage/pack"
	"github.com/mogaika/upackage/resource"
)

// Resolution is what an import points at once linked. It lives next to the
// import table, import records never carry it.
type Resolution struct {
	Object resource.Object
	// Linker that owns Object, nil while unresolved
	Source *Linker
	// Export index in Source, INDEX_NONE for unresolved and for package roots
	SourceIndex int
}

func Unresolved() Resolution {
	return Resolution{SourceIndex: resource.INDEX_NONE}
}

func (r Resolution) Resolved() bool {
	return r.Object != nil
}

type classKey struct {
	pkg  names.Name
	name names.Name
}

type Linker struct {
	// Where the package came from, only used for reporting
	Name    string
	Package *pack.Package
	Root    *objects.Object
	// One per export
	Objects []*objects.Object
	// One per import
	Imports []Resolution

	// Stand-ins for imported objects, export objects reference them as
	// class, super or outer
	proxies       []*objects.Object
	proxyClasses  map[classKey]*objects.Object
	exportsByName map[names.Name][]int
}

func NewLinker(name string, p *pack.Package) (*Linker, error) {
	l := &Linker{
		Name:          name,
		Package:       p,
		Root:          objects.NewPackage(p.Name.String()),
		Objects:       make([]*objects.Object, len(p.Exports)),
		proxies:       make([]*objects.Object, len(p.Imports)),
		proxyClasses:  make(map[classKey]*objects.Object),
		exportsByName: make(map[names.Name][]int),
	}
	l.Root.PackageFlags = p.PackageFlags

	for i := range p.Imports {
		if _, err := l.object(resource.ImportIndex(i), 0); err != nil {
			return nil, errors.Wrapf(err, "%s: import %d", name, i)
		}
	}
	for i := range p.Exports {
		if _, err := l.object(resource.ExportIndex(i), 0); err != nil {
			return nil, errors.Wrapf(err, "%s: export %d", name, i)
		}
		l.exportsByName[p.Exports[i].ObjectName] = append(l.exportsByName[p.Exports[i].ObjectName], i)
	}
	for i, e := range p.Exports {
		super, err := l.object(e.SuperIndex, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: export %d super", name, i)
		}
		l.Objects[i].SetSuper(super)
	}

	l.ResetImports()
	return l, nil
}

// ResetImports forgets every resolution. Call it whenever the import table
// was (re)decoded.
func (l *Linker) ResetImports() {
	l.Imports = make([]Resolution, len(l.Package.Imports))
	for i := range l.Imports {
		l.Imports[i] = Unresolved()
	}
}

// Export returns the live object of export i
func (l *Linker) Export(i int) *objects.Object {
	return l.Objects[i]
}

// object materializes idx and everything its outer and class chains need
func (l *Linker) object(idx resource.PackageIndex, depth int) (*objects.Object, error) {
	if depth > len(l.proxies)+len(l.Objects) {
		return nil, errors.Errorf("reference cycle at %v", idx)
	}
	switch {
	case idx.IsNull():
		return nil, nil
	case idx.IsImport():
		i := idx.ToImport()
		if i >= len(l.proxies) {
			return nil, errors.Errorf("%v out of range", idx)
		}
		if l.proxies[i] != nil {
			return l.proxies[i], nil
		}
		imp := l.Package.Imports[i]
		outer, err := l.object(imp.OuterIndex, depth+1)
		if err != nil {
			return nil, err
		}
		l.proxies[i] = objects.New(imp.ObjectName.String(), l.proxyClass(imp), outer)
		return l.proxies[i], nil
	default:
		i := idx.ToExport()
		if i >= len(l.Objects) {
			return nil, errors.Errorf("%v out of range", idx)
		}
		if l.Objects[i] != nil {
			return l.Objects[i], nil
		}
		e := l.Package.Exports[i]
		outer, err := l.object(e.OuterIndex, depth+1)
		if err != nil {
			return nil, err
		}
		if outer == nil {
			outer = l.Root
		}
		class, err := l.object(e.ClassIndex, depth+1)
		if err != nil {
			return nil, err
		}
		obj := objects.New(e.ObjectName.String(), class, outer).
			SetFlags(e.ObjectFlags).
			SetAsset(e.IsAsset)
		if e.NotForClient {
			obj.Mark(resource.OBJECTMARK_NotForClient)
		}
		if e.NotForServer {
			obj.Mark(resource.OBJECTMARK_NotForServer)
		}
		if e.NotForEditorGame {
			obj.Mark(resource.OBJECTMARK_NotForEditorGame)
		}
		l.Objects[i] = obj
		return obj, nil
	}
}

func (l *Linker) proxyClass(imp resource.Import) *objects.Object {
	if imp.ClassPackage == objects.NAME_CORE_PACKAGE {
		switch imp.ClassName {
		case objects.NAME_PACKAGE:
			return objects.PackageClass
		case objects.NAME_CLASS:
			return objects.ClassClass
		}
	}
	if imp.ClassName.IsNone() {
		return nil
	}
	key := classKey{imp.ClassPackage, imp.ClassName}
	if c, ok := l.proxyClasses[key]; ok {
		return c
	}
	var pkg *objects.Object
	if !imp.ClassPackage.IsNone() {
		pkg = objects.NewPackage(imp.ClassPackage.String())
	}
	c := objects.NewClass(pkg, imp.ClassName.String())
	l.proxyClasses[key] = c
	return c
}

// importChain lists import i and its outers, leaf first
func (l *Linker) importChain(i int) ([]resource.Import, error) {
	var chain []resource.Import
	for idx := resource.ImportIndex(i); !idx.IsNull(); {
		if !idx.IsImport() {
			return nil, errors.Errorf("outer %v is not an import", idx)
		}
		if len(chain) > len(l.Package.Imports) {
			return nil, errors.New("outer cycle")
		}
		imp := l.Package.Imports[idx.ToImport()]
		chain = append(chain, imp)
		idx = imp.OuterIndex
	}
	return chain, nil
}

// findExport looks up the export matching an import chain, leaf first, root
// package excluded
func (l *Linker) findExport(chain []resource.Import) (int, bool) {
next:
	for _, i := range l.exportsByName[chain[0].ObjectName] {
		obj := l.Objects[i]
		for _, imp := range chain {
			if obj == nil || obj == l.Root || obj.Name() != imp.ObjectName || !classMatches(obj, imp) {
				continue next
			}
			obj = obj.OuterObject()
		}
		if obj == l.Root {
			return i, true
		}
	}
	return resource.INDEX_NONE, false
}

func classMatches(obj *objects.Object, imp resource.Import) bool {
	class := obj.ClassObject()
	if class == nil {
		return imp.ClassName.IsNone()
	}
	if class.Name() != imp.ClassName {
		return false
	}
	if outer := class.OuterObject(); outer != nil {
		return outer.Name() == imp.ClassPackage
	}
	return true
}
