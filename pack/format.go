package pack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/google/uuid"

	"github.com/mogaika/upackage/config"
)

// Layout of a package file, little endian:
//
// [Header]   magic, version, package flags, package name (name table
//            position and number), guid.
//
// [TOC]      count and absolute offset of the name, import and export
//            tables, in that order.
//
// [Names]    length prefixed strings. Every serialized name refers to
//            this list by position.
//
// [Imports]  fixed size import records.
//
// [Exports]  fixed size export records, size depends on the version.
//
// [Payloads] export payloads, each aligned to PAYLOAD_ALIGN. Exports point
//            at them through SerialOffset/SerialSize.
//
// [CRC32]    Castagnoli checksum of everything above.

const (
	HEADER_SIZE    = 36
	TOC_ENTRY_SIZE = 12
	TOC_SIZE       = TOC_ENTRY_SIZE * tocEntries
	CHECKSUM_SIZE  = 4
	PAYLOAD_ALIGN  = 16
)

const (
	tocEntryNames = iota
	tocEntryImports
	tocEntryExports

	tocEntries
)

var packageMagic = [4]byte{'U', 'P', 'K', '1'}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var (
	ErrInvalidSize    = &FormatError{fmt.Errorf("invalid size")}
	ErrInvalidCRC     = &FormatError{fmt.Errorf("invalid CRC")}
	ErrInvalidMagic   = &FormatError{fmt.Errorf("invalid magic number")}
	ErrUnknownVersion = &FormatError{fmt.Errorf("unknown version")}
)

type FormatError struct{ err error }

func (e *FormatError) Error() string {
	return e.err.Error()
}

type Header struct {
	Magic        [4]byte
	Version      config.PackageVersion
	PackageFlags uint32
	// Position of the package name in the name table
	NameIndex  int32
	NameNumber int32
	Guid       uuid.UUID
}

func (h *Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, HEADER_SIZE)
	copy(b[0:4], packageMagic[:])
	binary.LittleEndian.PutUint32(b[4:8], uint32(h.Version))
	binary.LittleEndian.PutUint32(b[8:12], h.PackageFlags)
	binary.LittleEndian.PutUint32(b[12:16], uint32(h.NameIndex))
	binary.LittleEndian.PutUint32(b[16:20], uint32(h.NameNumber))
	copy(b[20:36], h.Guid[:])
	return b, nil
}

func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) != HEADER_SIZE {
		return ErrInvalidSize
	}
	if copy(h.Magic[:], b[0:4]); !bytes.Equal(h.Magic[:], packageMagic[:]) {
		return ErrInvalidMagic
	}
	if h.Version = config.PackageVersion(binary.LittleEndian.Uint32(b[4:8])); !h.Version.Loadable() {
		return ErrUnknownVersion
	}
	h.PackageFlags = binary.LittleEndian.Uint32(b[8:12])
	h.NameIndex = int32(binary.LittleEndian.Uint32(b[12:16]))
	h.NameNumber = int32(binary.LittleEndian.Uint32(b[16:20]))
	copy(h.Guid[:], b[20:36])
	return nil
}

type TOC struct {
	Entries [tocEntries]TOCEntry
}

type TOCEntry struct {
	Count  int32
	Offset int64
}

func (toc *TOC) MarshalBinary() ([]byte, error) {
	b := make([]byte, TOC_SIZE)
	for i := range toc.Entries {
		toc.Entries[i].marshal(b[i*TOC_ENTRY_SIZE:])
	}
	return b, nil
}

func (toc *TOC) UnmarshalBinary(b []byte) error {
	if len(b) != TOC_SIZE {
		return ErrInvalidSize
	}
	for i := range toc.Entries {
		toc.Entries[i].unmarshal(b[i*TOC_ENTRY_SIZE:])
	}
	return nil
}

func (e *TOCEntry) marshal(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], uint32(e.Count))
	binary.LittleEndian.PutUint64(b[4:12], uint64(e.Offset))
}

func (e *TOCEntry) unmarshal(b []byte) {
	e.Count = int32(binary.LittleEndian.Uint32(b[0:4]))
	e.Offset = int64(binary.LittleEndian.Uint64(b[4:12]))
}
