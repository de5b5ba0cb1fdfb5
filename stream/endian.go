package stream

import "github.com/tagarray/go-gta/gta"

// SwapComponent reverses the byte order of one component value in place.
// Complex types swap their real and imaginary halves independently;
// blobs and 1-byte types are untouched.
func SwapComponent(t gta.Type, size uint64, b []byte) {
	switch t {
	case gta.Blob, gta.Int8, gta.Uint8:
		return
	case gta.CFloat32, gta.CFloat64, gta.CFloat128:
		half := size / 2
		reverse(b[:half])
		reverse(b[half:size])
	default:
		reverse(b[:size])
	}
}

// SwapElement applies SwapComponent to every component slice of one
// element, in header-declared order. It is a pure function of the
// header layout and the buffer; bytes outside declared component ranges
// are never touched.
func SwapElement(h *gta.Header, elem []byte) {
	var off uint64
	for i := 0; i < h.NumComponents(); i++ {
		c := h.Component(i)
		size := c.Size()
		SwapComponent(c.Type, size, elem[off:off+size])
		off += size
	}
}

// NeedsSwap reports whether the header's element data is stored in the
// opposite byte order from the host.
func NeedsSwap(h *gta.Header) bool {
	return h.BigEndian() != gta.HostBigEndian()
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
