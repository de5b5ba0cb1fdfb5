package gta

import (
	"errors"
	"fmt"
	"io"
)

// IOState tracks progress of resumable element-wise data I/O for one
// array. The zero value is ready for use; one state must not be shared
// between arrays or between the read and write side.
type IOState struct {
	consumed uint64
}

// Elements returns the number of elements transferred so far.
func (s *IOState) Elements() uint64 {
	return s.consumed
}

// dataReady rejects data I/O on compressed arrays.
func (h *Header) dataReady() error {
	if h.compression != CompressionNone {
		return ErrUnsupportedCompression
	}
	return nil
}

// ReadElements reads n elements from r into buf, which must hold at
// least n*ElementSize() bytes. The state tracks position within the
// array; reading past the declared element count fails with
// ErrRangeExceeded. A stream ending mid-request surfaces as an
// unexpected EOF.
func (h *Header) ReadElements(s *IOState, r io.Reader, n uint64, buf []byte) error {
	if err := h.dataReady(); err != nil {
		return err
	}
	if s.consumed+n < s.consumed || s.consumed+n > h.Elements() {
		return ErrRangeExceeded
	}
	sz := n * h.ElementSize()
	if uint64(len(buf)) < sz {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrSizeMismatch, sz, len(buf))
	}
	if err := readFullData(r, buf[:sz]); err != nil {
		return err
	}
	s.consumed += n
	return nil
}

// WriteElements writes n elements from buf to w. The same positioning
// rules as for ReadElements apply.
func (h *Header) WriteElements(s *IOState, w io.Writer, n uint64, buf []byte) error {
	if err := h.dataReady(); err != nil {
		return err
	}
	if s.consumed+n < s.consumed || s.consumed+n > h.Elements() {
		return ErrRangeExceeded
	}
	sz := n * h.ElementSize()
	if uint64(len(buf)) < sz {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrSizeMismatch, sz, len(buf))
	}
	if _, err := w.Write(buf[:sz]); err != nil {
		return err
	}
	s.consumed += n
	return nil
}

// SkipData discards the array's element data from r by reading it in
// bounded chunks. Callers with a seekable stream should seek instead.
func (h *Header) SkipData(r io.Reader) error {
	if err := h.dataReady(); err != nil {
		return err
	}
	n, err := io.CopyN(io.Discard, r, int64(h.DataSize()))
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("skipping %d of %d data bytes: %w", n, h.DataSize(), err)
	}
	return nil
}

// CopyData streams the array's element data verbatim from r to w.
func (h *Header) CopyData(r io.Reader, w io.Writer) error {
	if err := h.dataReady(); err != nil {
		return err
	}
	n, err := io.CopyN(w, r, int64(h.DataSize()))
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("copying %d of %d data bytes: %w", n, h.DataSize(), err)
	}
	return nil
}

// ReadData reads the entire element data into buf, which must be sized
// exactly DataSize().
func (h *Header) ReadData(r io.Reader, buf []byte) error {
	if err := h.dataReady(); err != nil {
		return err
	}
	if uint64(len(buf)) != h.DataSize() {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrSizeMismatch, h.DataSize(), len(buf))
	}
	return readFullData(r, buf)
}

// WriteData writes the entire element data from buf, which must be
// sized exactly DataSize().
func (h *Header) WriteData(w io.Writer, buf []byte) error {
	if err := h.dataReady(); err != nil {
		return err
	}
	if uint64(len(buf)) != h.DataSize() {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrSizeMismatch, h.DataSize(), len(buf))
	}
	if len(buf) == 0 {
		return nil
	}
	_, err := w.Write(buf)
	return err
}

func readFullData(r io.Reader, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}
