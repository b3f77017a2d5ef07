// Package resource holds the import and export records of a package and
// their binary encoding.
package resource

import "github.com/mogaika/upackage/names"

type Resource struct {
	ObjectName names.Name
}

func NewResource(obj Object) Resource {
	if obj == nil {
		return Resource{ObjectName: names.None}
	}
	return Resource{ObjectName: obj.Name()}
}
