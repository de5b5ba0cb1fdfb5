package binary

import (
	"encoding/binary"
	"io"
)

// Writer writes GTA header fields to a sequential stream.
type Writer struct {
	w   io.Writer
	n   int64
	tmp [binary.MaxVarintLen64]byte
}

// NewWriter creates a writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 {
	return w.n
}

// WriteBytes writes the given bytes.
func (w *Writer) WriteBytes(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	return err
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) error {
	w.tmp[0] = v
	return w.WriteBytes(w.tmp[:1])
}

// WriteUvarint writes an unsigned varint.
func (w *Writer) WriteUvarint(v uint64) error {
	n := binary.PutUvarint(w.tmp[:], v)
	return w.WriteBytes(w.tmp[:n])
}

// WriteString writes a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) error {
	if err := w.WriteUvarint(uint64(len(s))); err != nil {
		return err
	}
	return w.WriteBytes([]byte(s))
}
