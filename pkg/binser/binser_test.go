package binser

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// byteItem is a one-byte element used to exercise the sequence helpers.
type byteItem struct {
	V uint8
}

func (b *byteItem) Serialize(s Serializer) error {
	return s.Uint8(&b.V)
}

func newMemFile(t *testing.T) afero.File {
	t.Helper()
	f, err := afero.NewMemMapFs().Create("stream.bin")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func readAll(t *testing.T, f afero.File) []byte {
	t.Helper()
	_, err := f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return data
}

func TestWriterReader_Primitives(t *testing.T) {
	f := newMemFile(t)
	w, err := NewWriter(f)
	require.NoError(t, err)
	assert.False(t, w.Reading())

	u8, u16, u32 := uint8(0x12), uint16(0x3456), uint32(0x789ABCDE)
	be16, be32 := uint16(0x0102), uint32(0x03040506)
	raw := []byte{0xAA, 0xBB}
	name := "CD"

	require.NoError(t, w.Uint8(&u8))
	require.NoError(t, w.Uint16(&u16))
	require.NoError(t, w.Uint32(&u32))
	require.NoError(t, w.Uint16BE(&be16))
	require.NoError(t, w.Uint32BE(&be32))
	require.NoError(t, w.Bytes(&raw, 4))
	require.NoError(t, w.FixedString(&name, 3))
	require.NoError(t, w.Magic([]byte("CD001")))
	require.NoError(t, w.Padding(2))
	assert.Equal(t, int64(27), w.Pos())

	expected := []byte{
		0x12,
		0x56, 0x34,
		0xDE, 0xBC, 0x9A, 0x78,
		0x01, 0x02,
		0x03, 0x04, 0x05, 0x06,
		0xAA, 0xBB, 0x00, 0x00,
		'C', 'D', 0x00,
		'C', 'D', '0', '0', '1',
		0x00, 0x00,
	}
	data := readAll(t, f)
	assert.Equal(t, expected, data)

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, r.Reading())

	var (
		gotU8   uint8
		gotU16  uint16
		gotU32  uint32
		gotBE16 uint16
		gotBE32 uint32
		gotRaw  []byte
		gotName string
	)
	require.NoError(t, r.Uint8(&gotU8))
	require.NoError(t, r.Uint16(&gotU16))
	require.NoError(t, r.Uint32(&gotU32))
	require.NoError(t, r.Uint16BE(&gotBE16))
	require.NoError(t, r.Uint32BE(&gotBE32))
	require.NoError(t, r.Bytes(&gotRaw, 4))
	require.NoError(t, r.FixedString(&gotName, 3))
	require.NoError(t, r.Magic([]byte("CD001")))
	require.NoError(t, r.Padding(2))

	assert.Equal(t, u8, gotU8)
	assert.Equal(t, u16, gotU16)
	assert.Equal(t, u32, gotU32)
	assert.Equal(t, be16, gotBE16)
	assert.Equal(t, be32, gotBE32)
	assert.Equal(t, []byte{0xAA, 0xBB, 0x00, 0x00}, gotRaw)
	assert.Equal(t, "CD\x00", gotName)
	assert.Equal(t, int64(27), r.Pos())
}

func TestReader_MagicMismatch(t *testing.T) {
	r, err := NewReader(bytes.NewReader([]byte{0x01, 'C', 'D', '0', '0', '2'}))
	require.NoError(t, err)
	require.NoError(t, r.Goto(1))

	err = r.Magic([]byte("CD001"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMagicMismatch)
	assert.Contains(t, err.Error(), "0x1")
}

func TestReader_ShortRead(t *testing.T) {
	r, err := NewReader(bytes.NewReader([]byte{0x01}))
	require.NoError(t, err)

	var v uint32
	err = r.Uint32(&v)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriter_ValueTooLong(t *testing.T) {
	w, err := NewWriter(newMemFile(t))
	require.NoError(t, err)

	long := []byte{1, 2, 3}
	assert.Error(t, w.Bytes(&long, 2))

	name := "TOOLONG"
	assert.Error(t, w.FixedString(&name, 4))
}

func TestGoto(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	require.NoError(t, r.Goto(5))
	assert.Equal(t, int64(5), r.Pos())

	var v uint8
	require.NoError(t, r.Uint8(&v))
	assert.Equal(t, uint8(5), v)
	assert.Equal(t, int64(6), r.Pos())
}

func TestArrayUntil_Read(t *testing.T) {
	data := []byte{1, 2, 3, 0, 9, 9}
	isZero := func(b *byteItem) bool { return b.V == 0 }
	terminator := func() byteItem { return byteItem{} }

	tests := []struct {
		name    string
		last    func() byteItem
		limit   int64
		want    []uint8
		wantPos int64
	}{
		{"terminator dropped", terminator, -1, []uint8{1, 2, 3}, 4},
		{"terminator kept", nil, -1, []uint8{1, 2, 3, 0}, 4},
		{"bounded before terminator", terminator, 2, []uint8{1, 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(data))
			require.NoError(t, err)

			var more func() bool
			if tt.limit >= 0 {
				more = func() bool { return r.Pos() < tt.limit }
			}

			items, err := ArrayUntil(r, []byteItem(nil), isZero, tt.last, more)
			require.NoError(t, err)

			got := make([]uint8, len(items))
			for i, item := range items {
				got[i] = item.V
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPos, r.Pos())
		})
	}
}

func TestArrayUntil_Write(t *testing.T) {
	items := []byteItem{{1}, {2}}
	isZero := func(b *byteItem) bool { return b.V == 0 }
	terminator := func() byteItem { return byteItem{} }

	t.Run("with terminator", func(t *testing.T) {
		f := newMemFile(t)
		w, err := NewWriter(f)
		require.NoError(t, err)

		_, err = ArrayUntil(w, items, isZero, terminator, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 0}, readAll(t, f))
	})

	t.Run("bound leaves no room for terminator", func(t *testing.T) {
		f := newMemFile(t)
		w, err := NewWriter(f)
		require.NoError(t, err)

		_, err = ArrayUntil(w, items, isZero, terminator, func() bool { return w.Pos() < 2 })
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2}, readAll(t, f))
	})
}

func TestArray(t *testing.T) {
	r, err := NewReader(bytes.NewReader([]byte{7, 8, 9}))
	require.NoError(t, err)

	items, err := Array[byteItem](r, nil, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint8(7), items[0].V)
	assert.Equal(t, uint8(8), items[1].V)

	w, err := NewWriter(newMemFile(t))
	require.NoError(t, err)
	_, err = Array(w, []byteItem{{1}}, 2)
	assert.Error(t, err)
}

type fixedLayout struct {
	A uint16 `struc:"little"`
	B uint32 `struc:"big"`
	C [3]byte
}

func TestStruct(t *testing.T) {
	f := newMemFile(t)
	w, err := NewWriter(f)
	require.NoError(t, err)

	in := fixedLayout{A: 0x0102, B: 0x03040506, C: [3]byte{'A', 'B', 'C'}}
	require.NoError(t, w.Struct(&in))
	assert.Equal(t, int64(9), w.Pos())

	data := readAll(t, f)
	assert.Equal(t, []byte{0x02, 0x01, 0x03, 0x04, 0x05, 0x06, 'A', 'B', 'C'}, data)

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	var out fixedLayout
	require.NoError(t, r.Struct(&out))
	assert.Equal(t, in, out)
	assert.Equal(t, int64(9), r.Pos())
}
