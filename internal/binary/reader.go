// Package binary provides low-level binary I/O for GTA header encoding.
//
// Unlike buffered readers, the Reader consumes exactly the bytes it is
// asked for and never reads ahead: a GTA header is immediately followed
// by element data on the same stream, so over-reading would corrupt the
// caller's position.
package binary

import (
	"encoding/binary"
	"errors"
	"io"
)

// Limits protecting against corrupt headers declaring absurd sizes.
const (
	MaxStringLen = 1 << 20
	MaxListLen   = 1 << 16
)

// ErrCorrupt is returned when a declared length exceeds the sanity limits.
var ErrCorrupt = errors.New("corrupt field length")

// Reader reads GTA header fields from a sequential stream.
type Reader struct {
	r   io.Reader
	n   int64
	one [1]byte
}

// NewReader creates a reader over r. All counts and sizes are unsigned
// varints; fixed-width fields are little-endian.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Consumed returns the number of bytes read so far.
func (r *Reader) Consumed() int64 {
	return r.n
}

// ReadByte implements io.ByteReader with an exact single-byte read.
func (r *Reader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(r.r, r.one[:]); err != nil {
		return 0, err
	}
	r.n++
	return r.one[0], nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	r.n += int64(n)
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	return r.ReadByte()
}

// ReadUvarint reads an unsigned varint.
func (r *Reader) ReadUvarint() (uint64, error) {
	return binary.ReadUvarint(r)
}

// ReadCount reads a list length and checks it against MaxListLen.
func (r *Reader) ReadCount() (int, error) {
	v, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if v > MaxListLen {
		return 0, ErrCorrupt
	}
	return int(v), nil
}

// ReadString reads a length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return "", err
	}
	if n > MaxStringLen {
		return "", ErrCorrupt
	}
	buf, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
