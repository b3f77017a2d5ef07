package resource

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mogaika/upackage/archive"
	"github.com/mogaika/upackage/config"
)

// Export is an object defined by the package itself
type Export struct {
	Resource

	ClassIndex PackageIndex
	SuperIndex PackageIndex
	OuterIndex PackageIndex

	ObjectFlags ObjectFlags
	// Primary asset of the package, travels as RF_AssetExport in the saved
	// flags
	IsAsset bool

	// Payload location in the package file, valid after the builder laid
	// the payloads out
	SerialSize   int64
	SerialOffset int64

	ForcedExport     bool
	NotForClient     bool
	NotForServer     bool
	NotForEditorGame bool

	PackageGuid  uuid.UUID
	PackageFlags uint32
}

// NewExport makes an export that is not backed by a live object. It is kept
// out of editor game builds until something proves it is needed.
// TODO: confirm NotForEditorGame=true is still wanted for detached exports,
// detached records written below VER_UE4_LOAD_FOR_EDITOR_GAME rely on it.
func NewExport() Export {
	return Export{
		ObjectFlags:      RF_NoFlags,
		NotForEditorGame: true,
		PackageGuid:      uuid.Nil,
	}
}

func NewExportFromObject(obj Object) Export {
	if obj == nil {
		return NewExport()
	}
	return Export{
		Resource:         NewResource(obj),
		ObjectFlags:      obj.MaskedFlags(),
		IsAsset:          obj.IsAsset(),
		NotForClient:     obj.HasAnyMarks(OBJECTMARK_NotForClient),
		NotForServer:     obj.HasAnyMarks(OBJECTMARK_NotForServer),
		NotForEditorGame: obj.HasAnyMarks(OBJECTMARK_NotForEditorGame),
		PackageGuid:      uuid.Nil,
	}
}

// Serialize writes or reads the export depending on the archive direction.
// Loading is all-or-nothing: e stays untouched when the stream fails.
func (e *Export) Serialize(ar archive.Archive) error {
	if ar.IsSaving() {
		e.serialize(ar)
		return errors.Wrap(ar.Err(), "export")
	}

	loaded := *e
	loaded.serialize(ar)
	if err := ar.Err(); err != nil {
		return errors.Wrap(err, "export")
	}
	*e = loaded
	return nil
}

func (e *Export) serialize(ar archive.Archive) {
	ar.Int32((*int32)(&e.ClassIndex))
	ar.Int32((*int32)(&e.SuperIndex))
	ar.Int32((*int32)(&e.OuterIndex))
	ar.Name(&e.ObjectName)

	saved := packAssetFlag(e.ObjectFlags, e.IsAsset)
	ar.Uint32(&saved)
	if ar.IsLoading() {
		e.ObjectFlags, e.IsAsset = unpackAssetFlag(saved)
	}

	ar.Int64(&e.SerialSize)
	ar.Int64(&e.SerialOffset)

	ar.Bool(&e.ForcedExport)
	ar.Bool(&e.NotForClient)
	ar.Bool(&e.NotForServer)

	ar.Guid(&e.PackageGuid)
	ar.Uint32(&e.PackageFlags)

	if ar.Version() >= config.VER_UE4_LOAD_FOR_EDITOR_GAME {
		ar.Bool(&e.NotForEditorGame)
	}
}
