package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a read runs past the end of the data.
var ErrShortBuffer = errors.New("wire: not enough data")

// Reader decodes little-endian values written by Writer.
// Effect data blobs are untrusted input from pluggable logic, so every read
// is bounds checked and reports ErrShortBuffer instead of panicking.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("ReadByte (pos=%d, len=%d): %w", r.pos, len(r.data), ErrShortBuffer)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBool reads a byte and reports whether it is non-zero.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

// ReadShort reads an int16 (2 bytes, LE).
func (r *Reader) ReadShort() (int16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("ReadShort (pos=%d, len=%d): %w", r.pos, len(r.data), ErrShortBuffer)
	}
	val := int16(binary.LittleEndian.Uint16(r.data[r.pos:]))
	r.pos += 2
	return val, nil
}

// ReadInt reads an int32 (4 bytes, LE).
func (r *Reader) ReadInt() (int32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("ReadInt (pos=%d, len=%d): %w", r.pos, len(r.data), ErrShortBuffer)
	}
	val := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return val, nil
}

// ReadLong reads a uint64 (8 bytes, LE).
func (r *Reader) ReadLong() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("ReadLong (pos=%d, len=%d): %w", r.pos, len(r.data), ErrShortBuffer)
	}
	val := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return val, nil
}

// ReadBytes reads n bytes and returns a copy.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("ReadBytes: negative count %d", n)
	}
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("ReadBytes (pos=%d, need=%d, len=%d): %w", r.pos, n, len(r.data), ErrShortBuffer)
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// ReadFixed32 reads exactly 32 bytes into an array.
func (r *Reader) ReadFixed32() ([32]byte, error) {
	var out [32]byte
	if r.pos+32 > len(r.data) {
		return out, fmt.Errorf("ReadFixed32 (pos=%d, len=%d): %w", r.pos, len(r.data), ErrShortBuffer)
	}
	copy(out[:], r.data[r.pos:r.pos+32])
	r.pos += 32
	return out, nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Position returns the current read position.
func (r *Reader) Position() int {
	return r.pos
}
