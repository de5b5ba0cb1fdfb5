package gta

import (
	"errors"
	"fmt"
	"io"

	ibinary "github.com/tagarray/go-gta/internal/binary"
)

// Stream framing: a 4-byte magic ("GTA" plus a version byte), a flags
// byte, a compression byte, then the array tags, dimensions, and
// components. Counts and sizes are unsigned varints, strings are
// length-prefixed. Element data follows the header immediately.
var magic = [4]byte{'G', 'T', 'A', 0x01}

const flagBigEndian = 0x01

// Read parses a header from the current stream position. It consumes
// exactly the header bytes, leaving r positioned at the first byte of
// the element data.
func (h *Header) Read(r io.Reader) error {
	br := ibinary.NewReader(r)

	// A stream ending right here is a clean end of the array sequence,
	// so the magic read keeps a plain EOF; io.ReadFull already turns a
	// partial magic into ErrUnexpectedEOF.
	m, err := br.ReadBytes(4)
	if err != nil {
		return fmt.Errorf("reading header magic: %w", err)
	}
	if m[0] != magic[0] || m[1] != magic[1] || m[2] != magic[2] {
		return ErrNotGTA
	}
	if m[3] != magic[3] {
		return fmt.Errorf("%w: version %d", ErrUnsupportedVersion, m[3])
	}

	flags, err := br.ReadUint8()
	if err != nil {
		return readErr("flags", err)
	}
	if flags&^flagBigEndian != 0 {
		return fmt.Errorf("%w: unknown flags %#x", ErrInvalidHeader, flags)
	}
	comp, err := br.ReadUint8()
	if err != nil {
		return readErr("compression", err)
	}
	if Compression(comp) >= compressionMax {
		return fmt.Errorf("%w: compression mode %d", ErrInvalidHeader, comp)
	}

	tags, err := readTagList(br)
	if err != nil {
		return readErr("array tags", err)
	}

	ndims, err := br.ReadCount()
	if err != nil {
		return readErr("dimension count", err)
	}
	dims := make([]Dimension, ndims)
	for i := range dims {
		if dims[i].Size, err = br.ReadUvarint(); err != nil {
			return readErr("dimension size", err)
		}
		if dims[i].Tags, err = readTagList(br); err != nil {
			return readErr("dimension tags", err)
		}
	}

	ncomps, err := br.ReadCount()
	if err != nil {
		return readErr("component count", err)
	}
	comps := make([]Component, ncomps)
	for i := range comps {
		t, err := br.ReadUint8()
		if err != nil {
			return readErr("component type", err)
		}
		comps[i].Type = Type(t)
		if !comps[i].Type.Valid() {
			return fmt.Errorf("%w: unknown component type %d", ErrInvalidHeader, t)
		}
		if comps[i].Type == Blob {
			if comps[i].BlobSize, err = br.ReadUvarint(); err != nil {
				return readErr("blob size", err)
			}
			if comps[i].BlobSize == 0 {
				return fmt.Errorf("%w: blob component with zero size", ErrInvalidHeader)
			}
		}
		if comps[i].Tags, err = readTagList(br); err != nil {
			return readErr("component tags", err)
		}
	}

	parsed := Header{
		bigEndian:   flags&flagBigEndian != 0,
		compression: Compression(comp),
		dims:        dims,
		comps:       comps,
		Tags:        tags,
	}
	if err := parsed.checkSize(); err != nil {
		return err
	}
	*h = parsed
	return nil
}

func readTagList(br *ibinary.Reader) (TagList, error) {
	n, err := br.ReadCount()
	if err != nil {
		return TagList{}, err
	}
	var l TagList
	for i := 0; i < n; i++ {
		name, err := br.ReadString()
		if err != nil {
			return TagList{}, err
		}
		value, err := br.ReadString()
		if err != nil {
			return TagList{}, err
		}
		if err := l.Set(name, value); err != nil {
			return TagList{}, err
		}
	}
	return l, nil
}

// readErr wraps a short read so that a header truncated anywhere after
// the magic surfaces as an unexpected EOF, not a clean end of stream.
func readErr(what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("reading header %s: %w", what, err)
}
