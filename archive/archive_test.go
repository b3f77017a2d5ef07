package archive

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/upackage/config"
	"github.com/mogaika/upackage/names"
)

type sample struct {
	I32 int32
	U32 uint32
	I64 int64
	B   bool
	G   uuid.UUID
	N   names.Name
	S   string
	W   string
	Raw [3]byte
}

func (s *sample) serialize(ar Archive) error {
	ar.Int32(&s.I32)
	ar.Uint32(&s.U32)
	ar.Int64(&s.I64)
	ar.Bool(&s.B)
	ar.Guid(&s.G)
	ar.Name(&s.N)
	ar.String(&s.S)
	ar.String(&s.W)
	ar.Bytes(s.Raw[:])
	return ar.Err()
}

func TestRoundTrip(t *testing.T) {
	table := names.NewTable()
	nm := names.NewMap(table)
	in := sample{
		I32: -3,
		U32: 0xdeadbeef,
		I64: -1 << 40,
		B:   true,
		G:   uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		N:   table.Intern("Mesh_7"),
		S:   "Ascii text",
		W:   "日本語",
		Raw: [3]byte{1, 2, 3},
	}
	nm.Add(in.N)

	var buf bytes.Buffer
	w := NewWriter(&buf, config.VER_UE4_LATEST, nm)
	require.True(t, w.IsSaving())
	require.NoError(t, in.serialize(w))
	assert.Equal(t, int64(buf.Len()), w.Pos())

	var out sample
	r := NewReader(bytes.NewReader(buf.Bytes()), config.VER_UE4_LATEST, nm)
	require.True(t, r.IsLoading())
	require.NoError(t, out.serialize(r))
	assert.Equal(t, in, out)
	assert.Equal(t, w.Pos(), r.Pos())
}

func TestLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, config.VER_UE4_LATEST, nil)
	i, b, s := int32(-2), true, "Hi"
	w.Int32(&i)
	w.Bool(&b)
	w.String(&s)
	require.NoError(t, w.Err())
	assert.Equal(t, []byte{
		0xfe, 0xff, 0xff, 0xff,
		1, 0, 0, 0,
		3, 0, 0, 0, 'H', 'i', 0,
	}, buf.Bytes())
}

func TestWideStringLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, config.VER_UE4_LATEST, nil)
	s := "Ж"
	w.String(&s)
	require.NoError(t, w.Err())
	assert.Equal(t, []byte{0xfe, 0xff, 0xff, 0xff, 0x16, 0x04, 0, 0}, buf.Bytes())
}

func TestTruncated(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, config.VER_UE4_LATEST, nil)
	v := int64(42)
	w.Int64(&v)
	require.NoError(t, w.Err())

	for cut := 0; cut < buf.Len(); cut++ {
		r := NewReader(bytes.NewReader(buf.Bytes()[:cut]), config.VER_UE4_LATEST, nil)
		got := int64(7)
		r.Int64(&got)
		assert.True(t, errors.Is(r.Err(), ErrTruncated), "cut %d: %v", cut, r.Err())
		assert.True(t, errors.Is(r.Err(), io.ErrUnexpectedEOF))
		assert.Equal(t, int64(7), got, "value must not change on failure")
	}
}

func TestErrorSticks(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 0}), config.VER_UE4_LATEST, nil)
	var a, b int32
	r.Int32(&a)
	first := r.Err()
	require.Error(t, first)
	r.Int32(&b)
	assert.Same(t, first, r.Err())
}

func TestMalformed(t *testing.T) {
	for name, data := range map[string][]byte{
		"bool":              {2, 0, 0, 0},
		"string too long":   {0xff, 0xff, 0x00, 0x01},
		"wide too long":     {0x00, 0x00, 0x00, 0x80},
		"no terminator":     {2, 0, 0, 0, 'a', 'b'},
		"wide terminator":   {0xff, 0xff, 0xff, 0xff, 'a', 0},
		"name out of range": {5, 0, 0, 0, 0, 0, 0, 0},
		"negative name":     {0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0},
	} {
		t.Run(name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(data), config.VER_UE4_LATEST, names.NewMap(names.NewTable()))
			switch name {
			case "bool":
				var v bool
				r.Bool(&v)
			case "name out of range", "negative name":
				var n names.Name
				r.Name(&n)
			default:
				var s string
				r.String(&s)
			}
			assert.True(t, errors.Is(r.Err(), ErrMalformed), "%v", r.Err())
			assert.False(t, errors.Is(r.Err(), ErrTruncated))
		})
	}
}

func TestNameWithoutMap(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, config.VER_UE4_LATEST, nil)
	n := names.New("Orphan")
	w.Name(&n)
	assert.Error(t, w.Err())

	r := NewReader(bytes.NewReader(make([]byte, 8)), config.VER_UE4_LATEST, nil)
	r.Name(&n)
	assert.Error(t, r.Err())
}

func TestNameNotInMap(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, config.VER_UE4_LATEST, names.NewMap(nil))
	n := names.New("NotAdded")
	w.Name(&n)
	assert.Error(t, w.Err())
	assert.Zero(t, buf.Len())
}

func TestSignedInt32(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, config.VER_UE4_LATEST, nil)
	for _, v := range []int32{-1, -1 << 31, 1<<31 - 1} {
		w.Int32(&v)
	}
	require.NoError(t, w.Err())
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, buf.Bytes()[:4])

	r := NewReader(bytes.NewReader(buf.Bytes()), config.VER_UE4_LATEST, nil)
	for _, want := range []int32{-1, -1 << 31, 1<<31 - 1} {
		var got int32
		r.Int32(&got)
		assert.Equal(t, want, got)
	}
	require.NoError(t, r.Err())
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWriterError(t *testing.T) {
	w := NewWriter(failWriter{}, config.VER_UE4_LATEST, nil)
	v := uint32(1)
	w.Uint32(&v)
	assert.True(t, errors.Is(w.Err(), io.ErrClosedPipe))
}
