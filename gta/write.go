package gta

import (
	"fmt"
	"io"

	ibinary "github.com/tagarray/go-gta/internal/binary"
)

// Write encodes the header to w. Only CompressionNone headers can be
// written: this implementation never produces compressed data.
func (h *Header) Write(w io.Writer) error {
	if h.compression != CompressionNone {
		return fmt.Errorf("writing header: %w", ErrUnsupportedCompression)
	}
	if err := h.checkSize(); err != nil {
		return err
	}
	for i := range h.comps {
		if !h.comps[i].Type.Valid() {
			return fmt.Errorf("%w: unknown component type %d", ErrInvalidHeader, h.comps[i].Type)
		}
		if h.comps[i].Type == Blob && h.comps[i].BlobSize == 0 {
			return fmt.Errorf("%w: blob component with zero size", ErrInvalidHeader)
		}
	}

	bw := ibinary.NewWriter(w)
	if err := bw.WriteBytes(magic[:]); err != nil {
		return writeErr("magic", err)
	}
	var flags uint8
	if h.bigEndian {
		flags |= flagBigEndian
	}
	if err := bw.WriteUint8(flags); err != nil {
		return writeErr("flags", err)
	}
	if err := bw.WriteUint8(uint8(h.compression)); err != nil {
		return writeErr("compression", err)
	}
	if err := writeTagList(bw, &h.Tags); err != nil {
		return writeErr("array tags", err)
	}

	if err := bw.WriteUvarint(uint64(len(h.dims))); err != nil {
		return writeErr("dimension count", err)
	}
	for i := range h.dims {
		if err := bw.WriteUvarint(h.dims[i].Size); err != nil {
			return writeErr("dimension size", err)
		}
		if err := writeTagList(bw, &h.dims[i].Tags); err != nil {
			return writeErr("dimension tags", err)
		}
	}

	if err := bw.WriteUvarint(uint64(len(h.comps))); err != nil {
		return writeErr("component count", err)
	}
	for i := range h.comps {
		if err := bw.WriteUint8(uint8(h.comps[i].Type)); err != nil {
			return writeErr("component type", err)
		}
		if h.comps[i].Type == Blob {
			if err := bw.WriteUvarint(h.comps[i].BlobSize); err != nil {
				return writeErr("blob size", err)
			}
		}
		if err := writeTagList(bw, &h.comps[i].Tags); err != nil {
			return writeErr("component tags", err)
		}
	}
	return nil
}

func writeTagList(bw *ibinary.Writer, l *TagList) error {
	if err := bw.WriteUvarint(uint64(l.Len())); err != nil {
		return err
	}
	for i := 0; i < l.Len(); i++ {
		t := l.At(i)
		if err := checkTagName(t.Name); err != nil {
			return err
		}
		if err := bw.WriteString(t.Name); err != nil {
			return err
		}
		if err := bw.WriteString(t.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeErr(what string, err error) error {
	return fmt.Errorf("writing header %s: %w", what, err)
}
