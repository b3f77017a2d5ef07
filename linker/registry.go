package linker

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/upackage/names"
	"github.com/mogaika/upackage/objects"
	"github.com/mogaika/upackage/resource"
)

type UnresolvedError struct {
	Package string
	Import  int
	Path    string
	Reason  string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s: import %d %q: %s", e.Package, e.Import, e.Path, e.Reason)
}

// Registry holds loaded packages by name. Names compare case-insensitively,
// the same way the name table does.
type Registry struct {
	m       sync.RWMutex
	linkers map[names.Name]*Linker
	log     logrus.FieldLogger
}

func NewRegistry() *Registry {
	return &Registry{
		linkers: make(map[names.Name]*Linker),
		log:     logrus.StandardLogger(),
	}
}

func (r *Registry) SetLogger(log logrus.FieldLogger) {
	r.log = log
}

func (r *Registry) Add(l *Linker) error {
	r.m.Lock()
	defer r.m.Unlock()
	if prev, ok := r.linkers[l.Package.Name]; ok {
		return errors.Errorf("package %v already loaded from %s", l.Package.Name, prev.Name)
	}
	r.linkers[l.Package.Name] = l
	return nil
}

func (r *Registry) Find(name string) (*Linker, bool) {
	n, ok := names.Default.FindExisting(name)
	if !ok {
		return nil, false
	}
	return r.find(n)
}

func (r *Registry) find(n names.Name) (*Linker, bool) {
	r.m.RLock()
	defer r.m.RUnlock()
	l, ok := r.linkers[n]
	return l, ok
}

// Linkers lists loaded packages sorted by package name
func (r *Registry) Linkers() []*Linker {
	r.m.RLock()
	list := make([]*Linker, 0, len(r.linkers))
	for _, l := range r.linkers {
		list = append(list, l)
	}
	r.m.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		return list[i].Package.Name.String() < list[j].Package.Name.String()
	})
	return list
}

// ResolveAll resolves every import of every loaded package. A failed import
// stays unresolved and is reported, the rest go on.
func (r *Registry) ResolveAll() []error {
	var errs []error
	for _, l := range r.Linkers() {
		errs = append(errs, r.Resolve(l)...)
	}
	return errs
}

func (r *Registry) Resolve(l *Linker) []error {
	var errs []error
	for i := range l.Package.Imports {
		res, err := r.resolve(l, i)
		l.Imports[i] = res
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"package": l.Package.Name.String(),
				"import":  i,
				"path":    err.Path,
			}).Warn(err.Reason)
			errs = append(errs, err)
			continue
		}
		r.log.WithFields(logrus.Fields{
			"package": l.Package.Name.String(),
			"import":  i,
			"source":  res.Source.Name,
			"export":  res.SourceIndex,
		}).Debug("import resolved")
	}
	return errs
}

func (r *Registry) resolve(l *Linker, i int) (Resolution, *UnresolvedError) {
	path, _ := l.Package.Path(resource.ImportIndex(i))
	fail := func(reason string, args ...interface{}) (Resolution, *UnresolvedError) {
		return Unresolved(), &UnresolvedError{
			Package: l.Package.Name.String(),
			Import:  i,
			Path:    path,
			Reason:  fmt.Sprintf(reason, args...),
		}
	}

	chain, err := l.importChain(i)
	if err != nil {
		return fail("%v", err)
	}
	root := chain[len(chain)-1]
	if root.ClassName != objects.NAME_PACKAGE {
		return fail("outermost import %v is a %v, not a package", root.ObjectName, root.ClassName)
	}
	source, ok := r.find(root.ObjectName)
	if !ok {
		return fail("package %v is not loaded", root.ObjectName)
	}
	if len(chain) == 1 {
		return Resolution{Object: source.Root, Source: source, SourceIndex: resource.INDEX_NONE}, nil
	}
	idx, ok := source.findExport(chain[:len(chain)-1])
	if !ok {
		return fail("no matching %v export in %s", chain[0].ClassName, source.Name)
	}
	return Resolution{Object: source.Objects[idx], Source: source, SourceIndex: idx}, nil
}
