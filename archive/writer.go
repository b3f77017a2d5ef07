package archive

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"

	"github.com/mogaika/upackage/config"
	"github.com/mogaika/upackage/names"
	"github.com/mogaika/upackage/utils"
)

type Writer struct {
	w       io.Writer
	version config.PackageVersion
	names   *names.Map
	pos     int64
	err     error
	buf     [8]byte
}

func NewWriter(w io.Writer, version config.PackageVersion, nm *names.Map) *Writer {
	return &Writer{w: w, version: version, names: nm}
}

func (ar *Writer) IsLoading() bool                { return false }
func (ar *Writer) IsSaving() bool                 { return true }
func (ar *Writer) Version() config.PackageVersion { return ar.version }
func (ar *Writer) Names() *names.Map              { return ar.names }
func (ar *Writer) Err() error                     { return ar.err }
func (ar *Writer) Pos() int64                     { return ar.pos }

func (ar *Writer) write(field string, b []byte) {
	if ar.err != nil {
		return
	}
	n, err := ar.w.Write(b)
	ar.pos += int64(n)
	if err != nil {
		ar.err = errors.Wrapf(err, "write %s at 0x%x", field, ar.pos-int64(n))
	}
}

func (ar *Writer) Int32(v *int32) {
	u := uint32(*v)
	ar.Uint32(&u)
}

func (ar *Writer) Uint32(v *uint32) {
	binary.LittleEndian.PutUint32(ar.buf[:4], *v)
	ar.write("uint32", ar.buf[:4])
}

func (ar *Writer) Int64(v *int64) {
	binary.LittleEndian.PutUint64(ar.buf[:8], uint64(*v))
	ar.write("int64", ar.buf[:8])
}

func (ar *Writer) Bool(v *bool) {
	var u uint32
	if *v {
		u = 1
	}
	ar.Uint32(&u)
}

func (ar *Writer) Guid(v *uuid.UUID) {
	ar.write("guid", v[:])
}

func (ar *Writer) Name(v *names.Name) {
	if ar.err != nil {
		return
	}
	if ar.names == nil {
		ar.err = errors.Errorf("write name at 0x%x: archive has no name map", ar.pos)
		return
	}
	idx, err := ar.names.IndexOf(*v)
	if err != nil {
		ar.err = errors.Wrapf(err, "write name at 0x%x", ar.pos)
		return
	}
	number := v.Number
	ar.Int32(&idx)
	ar.Int32(&number)
}

// Single-byte text when the charmap covers it, UTF-16 with negative length
// otherwise
func (ar *Writer) String(v *string) {
	if ar.err != nil {
		return
	}
	var size int32
	if *v == "" {
		ar.Int32(&size)
		return
	}
	if bs, err := utils.StringToBytes(*v, true); err == nil {
		size = int32(len(bs))
		ar.Int32(&size)
		ar.write("string", bs)
		return
	}
	bs, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(*v))
	if err != nil {
		ar.err = errors.Wrapf(err, "encode wide string at 0x%x", ar.pos)
		return
	}
	bs = append(bs, 0, 0)
	size = -int32(len(bs) / 2)
	ar.Int32(&size)
	ar.write("wide string", bs)
}

func (ar *Writer) Bytes(v []byte) {
	ar.write("bytes", v)
}
