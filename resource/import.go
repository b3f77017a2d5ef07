package resource

import (
	"github.com/pkg/errors"

	"github.com/mogaika/upackage/archive"
	"github.com/mogaika/upackage/names"
)

// Import references an object of another package. Binding it to an actual
// object is up to the linker, which keeps that state next to the table.
type Import struct {
	Resource

	ClassPackage names.Name
	ClassName    names.Name
	OuterIndex   PackageIndex
}

func NewImport() Import {
	return Import{}
}

func NewImportFromObject(obj Object) Import {
	imp := Import{Resource: NewResource(obj)}
	if obj == nil {
		return imp
	}
	if class := obj.Class(); class != nil {
		imp.ClassName = class.Name()
		if classPackage := class.Outer(); classPackage != nil {
			imp.ClassPackage = classPackage.Name()
		}
	}
	return imp
}

func (imp *Import) Serialize(ar archive.Archive) error {
	if ar.IsSaving() {
		imp.serialize(ar)
		return errors.Wrap(ar.Err(), "import")
	}

	loaded := *imp
	loaded.serialize(ar)
	if err := ar.Err(); err != nil {
		return errors.Wrap(err, "import")
	}
	*imp = loaded
	return nil
}

func (imp *Import) serialize(ar archive.Archive) {
	ar.Name(&imp.ClassPackage)
	ar.Name(&imp.ClassName)
	ar.Int32((*int32)(&imp.OuterIndex))
	ar.Name(&imp.ObjectName)
}
