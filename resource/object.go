package resource

import "github.com/mogaika/upackage/names"

// Object is the live object a record gets built from. Class and Outer return
// a nil interface when absent.
type Object interface {
	Name() names.Name
	Class() Object
	Outer() Object
	// Flags limited to the loadable subset
	MaskedFlags() ObjectFlags
	HasAnyMarks(marks Mark) bool
	IsAsset() bool
}
