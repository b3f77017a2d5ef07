// Package pack reads and writes package files: a name table, import and
// export tables and the export payloads.
package pack

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mogaika/upackage/archive"
	"github.com/mogaika/upackage/config"
	"github.com/mogaika/upackage/names"
	"github.com/mogaika/upackage/resource"
	"github.com/mogaika/upackage/utils"
)

const (
	minImportSize = 28
	minExportSize = 72
	minStringSize = 4
)

type Package struct {
	Name         names.Name
	Version      config.PackageVersion
	PackageFlags uint32
	Guid         uuid.UUID

	Imports []resource.Import
	Exports []resource.Export
	// Parallel to Exports, missing tail entries are empty payloads
	Payloads [][]byte

	names *names.Map
}

// Names returns the name table the package was read with, or a fresh one
// covering every name the records use
func (p *Package) Names() *names.Map {
	if p.names != nil {
		return p.names
	}
	return p.buildNameMap()
}

func (p *Package) buildNameMap() *names.Map {
	nm := names.NewMap(names.Default)
	nm.Add(p.Name)
	for i := range p.Imports {
		nm.Add(p.Imports[i].ClassPackage)
		nm.Add(p.Imports[i].ClassName)
		nm.Add(p.Imports[i].ObjectName)
	}
	for i := range p.Exports {
		nm.Add(p.Exports[i].ObjectName)
	}
	return nm
}

func (p *Package) Payload(i int) ([]byte, error) {
	if i < 0 || i >= len(p.Exports) {
		return nil, errors.Errorf("export %d out of range [0,%d)", i, len(p.Exports))
	}
	if i >= len(p.Payloads) {
		return nil, nil
	}
	return p.Payloads[i], nil
}

// WriteTo lays the payloads out, updates SerialOffset and SerialSize of
// every export and writes the whole file.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	if !p.Version.Loadable() {
		return 0, errors.Wrapf(ErrUnknownVersion, "version %d", p.Version)
	}
	if len(p.Payloads) > len(p.Exports) {
		return 0, errors.Errorf("%d payloads for %d exports", len(p.Payloads), len(p.Exports))
	}

	nm := p.buildNameMap()
	nameIndex, err := nm.IndexOf(p.Name)
	if err != nil {
		return 0, err
	}

	const base = int64(HEADER_SIZE + TOC_SIZE)
	var toc TOC
	var body bytes.Buffer
	ar := archive.NewWriter(&body, p.Version, nm)

	toc.Entries[tocEntryNames] = TOCEntry{Count: int32(nm.Len()), Offset: base}
	for _, s := range nm.Entries() {
		ar.String(&s)
	}
	if err := ar.Err(); err != nil {
		return 0, errors.Wrap(err, "names")
	}

	toc.Entries[tocEntryImports] = TOCEntry{Count: int32(len(p.Imports)), Offset: base + ar.Pos()}
	for i := range p.Imports {
		if err := p.Imports[i].Serialize(ar); err != nil {
			return 0, errors.Wrapf(err, "import %d", i)
		}
	}

	// first pass only measures the table, export records are fixed size
	exportsStart := body.Len()
	toc.Entries[tocEntryExports] = TOCEntry{Count: int32(len(p.Exports)), Offset: base + ar.Pos()}
	for i := range p.Exports {
		if err := p.Exports[i].Serialize(ar); err != nil {
			return 0, errors.Wrapf(err, "export %d", i)
		}
	}

	payloadStart := utils.AlignUp(base+ar.Pos(), PAYLOAD_ALIGN)
	off := payloadStart
	for i := range p.Exports {
		size := int64(0)
		if i < len(p.Payloads) {
			size = int64(len(p.Payloads[i]))
		}
		p.Exports[i].SerialOffset = off
		p.Exports[i].SerialSize = size
		off = utils.AlignUp(off+size, PAYLOAD_ALIGN)
	}

	body.Truncate(exportsStart)
	ar = archive.NewWriter(&body, p.Version, nm)
	for i := range p.Exports {
		if err := p.Exports[i].Serialize(ar); err != nil {
			return 0, errors.Wrapf(err, "export %d", i)
		}
	}

	// body starts at base, offsets are absolute
	for i, payload := range p.Payloads {
		body.Write(make([]byte, p.Exports[i].SerialOffset-base-int64(body.Len())))
		body.Write(payload)
	}
	body.Write(make([]byte, off-base-int64(body.Len())))

	header := Header{
		Magic:        packageMagic,
		Version:      p.Version,
		PackageFlags: p.PackageFlags,
		NameIndex:    nameIndex,
		NameNumber:   p.Name.Number,
		Guid:         p.Guid,
	}
	hb, _ := header.MarshalBinary()
	tb, _ := toc.MarshalBinary()

	out := make([]byte, 0, len(hb)+len(tb)+body.Len()+CHECKSUM_SIZE)
	out = append(out, hb...)
	out = append(out, tb...)
	out = append(out, body.Bytes()...)
	out = binary.LittleEndian.AppendUint32(out, crc32.Checksum(out, castagnoli))

	n, err := w.Write(out)
	p.names = nm
	return int64(n), err
}

func Read(b []byte) (*Package, error) {
	if len(b) < HEADER_SIZE+TOC_SIZE+CHECKSUM_SIZE {
		return nil, ErrInvalidSize
	}
	data := b[:len(b)-CHECKSUM_SIZE]
	if crc32.Checksum(data, castagnoli) != binary.LittleEndian.Uint32(b[len(data):]) {
		return nil, ErrInvalidCRC
	}

	var header Header
	if err := header.UnmarshalBinary(data[:HEADER_SIZE]); err != nil {
		return nil, err
	}
	var toc TOC
	if err := toc.UnmarshalBinary(data[HEADER_SIZE : HEADER_SIZE+TOC_SIZE]); err != nil {
		return nil, err
	}

	p := &Package{
		Version:      header.Version,
		PackageFlags: header.PackageFlags,
		Guid:         header.Guid,
	}

	section := func(entry int, minSize int) (*bytes.Reader, error) {
		e := toc.Entries[entry]
		if e.Count < 0 || e.Offset < HEADER_SIZE+TOC_SIZE || e.Offset > int64(len(data)) {
			return nil, errors.Wrapf(ErrInvalidSize, "toc entry %d", entry)
		}
		if int64(e.Count)*int64(minSize) > int64(len(data))-e.Offset {
			return nil, errors.Wrapf(ErrInvalidSize, "toc entry %d: %d records", entry, e.Count)
		}
		return bytes.NewReader(data[e.Offset:]), nil
	}

	r, err := section(tocEntryNames, minStringSize)
	if err != nil {
		return nil, err
	}
	ar := archive.NewReader(r, header.Version, nil)
	list := make([]string, toc.Entries[tocEntryNames].Count)
	for i := range list {
		ar.String(&list[i])
	}
	if err := ar.Err(); err != nil {
		return nil, errors.Wrap(err, "names")
	}
	p.names = names.NewMapFromList(names.Default, list)
	if p.Name, err = p.names.Resolve(header.NameIndex, header.NameNumber); err != nil {
		return nil, errors.Wrap(err, "package name")
	}

	if r, err = section(tocEntryImports, minImportSize); err != nil {
		return nil, err
	}
	ar = archive.NewReader(r, header.Version, p.names)
	p.Imports = make([]resource.Import, toc.Entries[tocEntryImports].Count)
	for i := range p.Imports {
		if err := p.Imports[i].Serialize(ar); err != nil {
			return nil, errors.Wrapf(err, "import %d", i)
		}
	}

	if r, err = section(tocEntryExports, minExportSize); err != nil {
		return nil, err
	}
	ar = archive.NewReader(r, header.Version, p.names)
	p.Exports = make([]resource.Export, toc.Entries[tocEntryExports].Count)
	p.Payloads = make([][]byte, len(p.Exports))
	for i := range p.Exports {
		p.Exports[i] = resource.NewExport()
		if err := p.Exports[i].Serialize(ar); err != nil {
			return nil, errors.Wrapf(err, "export %d", i)
		}
		e := &p.Exports[i]
		if e.SerialSize < 0 || e.SerialOffset < 0 || e.SerialOffset > int64(len(data))-e.SerialSize {
			return nil, errors.Wrapf(ErrInvalidSize, "export %d payload [0x%x,+0x%x)", i, e.SerialOffset, e.SerialSize)
		}
		if e.SerialSize != 0 {
			p.Payloads[i] = append([]byte(nil), data[e.SerialOffset:e.SerialOffset+e.SerialSize]...)
		}
	}

	return p, nil
}
