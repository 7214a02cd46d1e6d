package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_LittleEndian(t *testing.T) {
	w := NewWriter(16)
	w.WriteShort(0x0102)
	w.WriteInt(-2)
	w.WriteBool(true)

	assert.Equal(t, []byte{0x02, 0x01, 0xFE, 0xFF, 0xFF, 0xFF, 0x01}, w.Bytes())
}

func TestReaderWriter(t *testing.T) {
	var fixed [32]byte
	fixed[0], fixed[31] = 0xAA, 0xBB

	w := Get()
	defer w.Put()
	require.NoError(t, w.WriteByte(7))
	w.WriteBool(false)
	w.WriteShort(-300)
	w.WriteInt(1 << 30)
	w.WriteLong(0xDEADBEEFCAFEF00D)
	w.WriteBytes(fixed[:])
	w.WriteBytes([]byte("tail"))

	r := NewReader(w.Copy())

	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(7), b)

	ok, err := r.ReadBool()
	require.NoError(t, err)
	assert.False(t, ok)

	s, err := r.ReadShort()
	require.NoError(t, err)
	assert.Equal(t, int16(-300), s)

	i, err := r.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(1<<30), i)

	l, err := r.ReadLong()
	require.NoError(t, err)
	assert.Equal(t, uint64(0xDEADBEEFCAFEF00D), l)

	f, err := r.ReadFixed32()
	require.NoError(t, err)
	assert.Equal(t, fixed, f)

	tail, err := r.ReadBytes(4)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(tail))
	assert.Zero(t, r.Remaining())
}

func TestReader_ShortBuffer(t *testing.T) {
	tests := []struct {
		name string
		read func(r *Reader) error
	}{
		{"byte", func(r *Reader) error { _, err := r.ReadByte(); return err }},
		{"short", func(r *Reader) error { _, err := r.ReadShort(); return err }},
		{"int", func(r *Reader) error { _, err := r.ReadInt(); return err }},
		{"long", func(r *Reader) error { _, err := r.ReadLong(); return err }},
		{"fixed32", func(r *Reader) error { _, err := r.ReadFixed32(); return err }},
		{"bytes", func(r *Reader) error { _, err := r.ReadBytes(2); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(nil)
			assert.ErrorIs(t, tt.read(r), ErrShortBuffer)
			assert.Zero(t, r.Position(), "failed read does not advance")
		})
	}

	_, err := NewReader([]byte{1}).ReadBytes(-1)
	assert.Error(t, err)
}

func TestGet_Resets(t *testing.T) {
	w := Get()
	w.WriteLong(1)
	w.Put()

	w = Get()
	defer w.Put()
	assert.Zero(t, w.Len())
}
