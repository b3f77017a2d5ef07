// Package objects is a minimal in-memory object graph: packages, classes and
// the objects that live in them. Records are built from it on save, the
// linker materializes it on load.
package objects

import (
	"strings"

	"github.com/mogaika/upackage/names"
	"github.com/mogaika/upackage/resource"
)

var (
	NAME_CORE_PACKAGE = names.New("/Script/CoreUObject")
	NAME_PACKAGE      = names.New("Package")
	NAME_CLASS        = names.New("Class")
)

// Shared metadata all packages and classes point at
var (
	CorePackage  = &Object{name: NAME_CORE_PACKAGE}
	PackageClass = &Object{name: NAME_PACKAGE, outer: CorePackage}
	ClassClass   = &Object{name: NAME_CLASS, outer: CorePackage}
)

func init() {
	CorePackage.class = PackageClass
	PackageClass.class = ClassClass
	ClassClass.class = ClassClass
}

// Object is not safe for concurrent mutation
type Object struct {
	name    names.Name
	class   *Object
	outer   *Object
	super   *Object
	flags   resource.ObjectFlags
	marks   resource.Mark
	isAsset bool

	PackageFlags uint32
}

var _ resource.Object = (*Object)(nil)

func NewPackage(name string) *Object {
	return &Object{name: names.New(name), class: PackageClass, flags: resource.RF_Public}
}

func NewClass(pkg *Object, name string) *Object {
	return &Object{name: names.New(name), class: ClassClass, outer: pkg, flags: resource.RF_Public | resource.RF_Native}
}

func New(name string, class *Object, outer *Object) *Object {
	return &Object{name: names.New(name), class: class, outer: outer}
}

func (o *Object) Name() names.Name {
	return o.name
}

func (o *Object) Class() resource.Object {
	if o.class == nil {
		return nil
	}
	return o.class
}

func (o *Object) Outer() resource.Object {
	if o.outer == nil {
		return nil
	}
	return o.outer
}

func (o *Object) ClassObject() *Object { return o.class }
func (o *Object) OuterObject() *Object { return o.outer }
func (o *Object) SuperObject() *Object { return o.super }

// SetSuper links a class or struct to its parent
func (o *Object) SetSuper(super *Object) *Object {
	o.super = super
	return o
}

func (o *Object) Flags() resource.ObjectFlags {
	return o.flags
}

func (o *Object) MaskedFlags() resource.ObjectFlags {
	return o.flags.Persisted()
}

func (o *Object) SetFlags(f resource.ObjectFlags) *Object {
	o.flags |= f
	return o
}

func (o *Object) ClearFlags(f resource.ObjectFlags) *Object {
	o.flags &^= f
	return o
}

func (o *Object) HasAnyMarks(marks resource.Mark) bool {
	return o.marks&marks != 0
}

func (o *Object) Mark(marks resource.Mark) *Object {
	o.marks |= marks
	return o
}

func (o *Object) IsAsset() bool {
	return o.isAsset
}

func (o *Object) SetAsset(isAsset bool) *Object {
	o.isAsset = isAsset
	return o
}

func (o *Object) IsPackage() bool {
	return o.class == PackageClass
}

// Package returns the outermost object, o itself for a package
func (o *Object) Package() *Object {
	p := o
	for p.outer != nil {
		p = p.outer
	}
	return p
}

// IsIn reports whether outer is somewhere in o's outer chain
func (o *Object) IsIn(outer *Object) bool {
	for p := o.outer; p != nil; p = p.outer {
		if p == outer {
			return true
		}
	}
	return false
}

// Path is the dot separated outer chain, package first
func (o *Object) Path() string {
	var parts []string
	for p := o; p != nil; p = p.outer {
		parts = append(parts, p.name.String())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

func (o *Object) String() string {
	if o.class == nil {
		return o.Path()
	}
	return o.class.name.String() + " " + o.Path()
}
