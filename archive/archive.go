// Package archive is an ordered, versioned binary stream that serializes
// values in both directions through the same call sequence.
package archive

import (
	"github.com/google/uuid"

	"github.com/mogaika/upackage/config"
	"github.com/mogaika/upackage/names"
)

// Archive either writes the pointed values (saving) or overwrites them
// (loading). The first error sticks, later calls do nothing.
type Archive interface {
	IsLoading() bool
	IsSaving() bool
	Version() config.PackageVersion
	Names() *names.Map
	Err() error
	Pos() int64

	Int32(v *int32)
	Uint32(v *uint32)
	Int64(v *int64)
	Bool(v *bool)
	Guid(v *uuid.UUID)
	Name(v *names.Name)
	String(v *string)
	Bytes(v []byte)
}
