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

// Longest string accepted from a stream, in characters
const MAX_STRING_LENGTH = 1 << 16

type Reader struct {
	r       io.Reader
	version config.PackageVersion
	names   *names.Map
	pos     int64
	err     error
	buf     [8]byte
}

func NewReader(r io.Reader, version config.PackageVersion, nm *names.Map) *Reader {
	return &Reader{r: r, version: version, names: nm}
}

func (ar *Reader) IsLoading() bool                { return true }
func (ar *Reader) IsSaving() bool                 { return false }
func (ar *Reader) Version() config.PackageVersion { return ar.version }
func (ar *Reader) Names() *names.Map              { return ar.names }
func (ar *Reader) Err() error                     { return ar.err }
func (ar *Reader) Pos() int64                     { return ar.pos }

func (ar *Reader) read(field string, b []byte) bool {
	if ar.err != nil {
		return false
	}
	n, err := io.ReadFull(ar.r, b)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			ar.err = truncated(field, ar.pos)
		} else {
			ar.err = errors.Wrapf(err, "read %s at 0x%x", field, ar.pos)
		}
		ar.pos += int64(n)
		return false
	}
	ar.pos += int64(n)
	return true
}

func (ar *Reader) Int32(v *int32) {
	var u uint32
	if ar.readUint32("int32", &u) {
		*v = int32(u)
	}
}

func (ar *Reader) Uint32(v *uint32) {
	ar.readUint32("uint32", v)
}

func (ar *Reader) readUint32(field string, v *uint32) bool {
	if !ar.read(field, ar.buf[:4]) {
		return false
	}
	*v = binary.LittleEndian.Uint32(ar.buf[:4])
	return true
}

func (ar *Reader) Int64(v *int64) {
	if ar.read("int64", ar.buf[:8]) {
		*v = int64(binary.LittleEndian.Uint64(ar.buf[:8]))
	}
}

func (ar *Reader) Bool(v *bool) {
	pos := ar.pos
	var u uint32
	if !ar.readUint32("bool", &u) {
		return
	}
	switch u {
	case 0:
		*v = false
	case 1:
		*v = true
	default:
		ar.err = malformed("bool", pos, "value %d", u)
	}
}

func (ar *Reader) Guid(v *uuid.UUID) {
	var g uuid.UUID
	if ar.read("guid", g[:]) {
		*v = g
	}
}

func (ar *Reader) Name(v *names.Name) {
	if ar.err != nil {
		return
	}
	pos := ar.pos
	if ar.names == nil {
		ar.err = errors.Errorf("read name at 0x%x: archive has no name map", pos)
		return
	}
	var idx, number uint32
	if !ar.readUint32("name", &idx) || !ar.readUint32("name number", &number) {
		return
	}
	n, err := ar.names.Resolve(int32(idx), int32(number))
	if err != nil {
		ar.err = malformed("name", pos, "%v", err)
		return
	}
	*v = n
}

func (ar *Reader) String(v *string) {
	pos := ar.pos
	var u uint32
	if !ar.readUint32("string length", &u) {
		return
	}
	size := int32(u)
	switch {
	case size == 0:
		*v = ""
	case size > 0:
		if size > MAX_STRING_LENGTH {
			ar.err = malformed("string", pos, "length %d", size)
			return
		}
		bs := make([]byte, size)
		if !ar.read("string", bs) {
			return
		}
		if bs[size-1] != 0 {
			ar.err = malformed("string", pos, "missing terminator")
			return
		}
		s, err := utils.BytesToString(bs[:size-1])
		if err != nil {
			ar.err = malformed("string", pos, "%v", err)
			return
		}
		*v = s
	default:
		if size < -MAX_STRING_LENGTH {
			ar.err = malformed("wide string", pos, "length %d", size)
			return
		}
		bs := make([]byte, -int(size)*2)
		if !ar.read("wide string", bs) {
			return
		}
		if bs[len(bs)-1] != 0 || bs[len(bs)-2] != 0 {
			ar.err = malformed("wide string", pos, "missing terminator")
			return
		}
		s, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(bs[:len(bs)-2])
		if err != nil {
			ar.err = malformed("wide string", pos, "%v", err)
			return
		}
		*v = string(s)
	}
}

func (ar *Reader) Bytes(v []byte) {
	ar.read("bytes", v)
}
