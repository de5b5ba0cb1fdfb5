package gta

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// hostBigEndian reports the byte order that value codecs and the element
// loops treat as "native".
var hostBigEndian = func() bool {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	return b[0] == 0
}()

// HostBigEndian reports whether the host stores integers big-endian.
func HostBigEndian() bool {
	return hostBigEndian
}

// Dimension is one array dimension: its size and its tags.
type Dimension struct {
	Size uint64
	Tags TagList
}

// Component is one typed field of an element. For Blob components the
// byte width is carried explicitly; for all other types it is implied by
// the type and the field is ignored.
type Component struct {
	Type     Type
	BlobSize uint64
	Tags     TagList
}

// Size returns the component's byte width.
func (c *Component) Size() uint64 {
	if c.Type == Blob {
		return c.BlobSize
	}
	return c.Type.Size()
}

// Header describes one array: its dimensions, its element components,
// its tags, the byte order of its element data, and its compression
// mode. A header handed out by an array loop is a copy; mutating it
// never affects data already written to a stream.
type Header struct {
	bigEndian   bool
	compression Compression
	dims        []Dimension
	comps       []Component

	// Tags attached to the array as a whole.
	Tags TagList
}

// NewHeader returns an empty header declaring host byte order and no
// compression.
func NewHeader() *Header {
	return &Header{bigEndian: hostBigEndian}
}

// Clone returns a deep copy of the header.
func (h *Header) Clone() *Header {
	c := &Header{
		bigEndian:   h.bigEndian,
		compression: h.compression,
		Tags:        h.Tags.Clone(),
	}
	if len(h.dims) > 0 {
		c.dims = make([]Dimension, len(h.dims))
		for i := range h.dims {
			c.dims[i] = Dimension{Size: h.dims[i].Size, Tags: h.dims[i].Tags.Clone()}
		}
	}
	if len(h.comps) > 0 {
		c.comps = make([]Component, len(h.comps))
		for i := range h.comps {
			c.comps[i] = Component{
				Type:     h.comps[i].Type,
				BlobSize: h.comps[i].BlobSize,
				Tags:     h.comps[i].Tags.Clone(),
			}
		}
	}
	return c
}

// BigEndian reports whether the element data is stored big-endian.
func (h *Header) BigEndian() bool {
	return h.bigEndian
}

// SetBigEndian declares the byte order of the element data.
func (h *Header) SetBigEndian(v bool) {
	h.bigEndian = v
}

// Compression returns the data compression mode.
func (h *Header) Compression() Compression {
	return h.compression
}

// SetCompression sets the data compression mode. Data I/O only supports
// CompressionNone.
func (h *Header) SetCompression(c Compression) {
	h.compression = c
}

// NumDimensions returns the number of dimensions.
func (h *Header) NumDimensions() int {
	return len(h.dims)
}

// Dimension returns the i-th dimension for inspection or tag mutation.
func (h *Header) Dimension(i int) *Dimension {
	return &h.dims[i]
}

// DimensionSize returns the size of the i-th dimension.
func (h *Header) DimensionSize(i int) uint64 {
	return h.dims[i].Size
}

// SetDimensions replaces all dimensions, dropping any dimension tags.
// It fails with ErrTooLarge if the resulting data size would overflow.
func (h *Header) SetDimensions(sizes ...uint64) error {
	dims := make([]Dimension, len(sizes))
	for i, s := range sizes {
		dims[i] = Dimension{Size: s}
	}
	old := h.dims
	h.dims = dims
	if err := h.checkSize(); err != nil {
		h.dims = old
		return err
	}
	return nil
}

// NumComponents returns the number of element components.
func (h *Header) NumComponents() int {
	return len(h.comps)
}

// Component returns the i-th component for inspection or tag mutation.
func (h *Header) Component(i int) *Component {
	return &h.comps[i]
}

// ComponentOffset returns the byte offset of the i-th component within
// an element.
func (h *Header) ComponentOffset(i int) uint64 {
	var off uint64
	for j := 0; j < i; j++ {
		off += h.comps[j].Size()
	}
	return off
}

// SetComponents replaces all element components.
// It fails with ErrInvalidHeader on unknown types or zero-sized blobs,
// and with ErrTooLarge if the resulting data size would overflow.
func (h *Header) SetComponents(comps ...Component) error {
	for i := range comps {
		if !comps[i].Type.Valid() {
			return fmt.Errorf("%w: unknown component type %d", ErrInvalidHeader, comps[i].Type)
		}
		if comps[i].Type == Blob && comps[i].BlobSize == 0 {
			return fmt.Errorf("%w: blob component with zero size", ErrInvalidHeader)
		}
	}
	old := h.comps
	h.comps = comps
	if err := h.checkSize(); err != nil {
		h.comps = old
		return err
	}
	return nil
}

// ElementSize returns the byte size of one element: the sum of the
// component widths.
func (h *Header) ElementSize() uint64 {
	var sz uint64
	for i := range h.comps {
		sz += h.comps[i].Size()
	}
	return sz
}

// Elements returns the total element count: the product of the dimension
// sizes, zero when there are no dimensions or any dimension is zero.
func (h *Header) Elements() uint64 {
	if len(h.dims) == 0 {
		return 0
	}
	n := uint64(1)
	for i := range h.dims {
		n *= h.dims[i].Size
	}
	return n
}

// DataSize returns Elements() * ElementSize().
func (h *Header) DataSize() uint64 {
	return h.Elements() * h.ElementSize()
}

// checkSize verifies that neither the element count nor the total data
// size overflows uint64.
func (h *Header) checkSize() error {
	n := uint64(1)
	for i := range h.dims {
		hi, lo := bits.Mul64(n, h.dims[i].Size)
		if hi != 0 {
			return ErrTooLarge
		}
		n = lo
	}
	var es uint64
	for i := range h.comps {
		s, carry := bits.Add64(es, h.comps[i].Size(), 0)
		if carry != 0 {
			return ErrTooLarge
		}
		es = s
	}
	if len(h.dims) == 0 {
		n = 0
	}
	if hi, _ := bits.Mul64(n, es); hi != 0 {
		return ErrTooLarge
	}
	return nil
}
