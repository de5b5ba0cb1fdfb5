package gta

// Type identifies the primitive type of one element component.
type Type uint8

// Component types. Blob is an opaque fixed-size byte range whose width is
// carried separately; all other types have an implied width.
const (
	Blob Type = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Int128
	Uint128
	Float32
	Float64
	Float128
	CFloat32
	CFloat64
	CFloat128
	typeMax
)

// Size returns the byte width implied by the type, or 0 for Blob.
func (t Type) Size() uint64 {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64, CFloat32:
		return 8
	case Int128, Uint128, Float128, CFloat64:
		return 16
	case CFloat128:
		return 32
	default:
		return 0
	}
}

// Valid reports whether t is a known component type.
func (t Type) Valid() bool {
	return t < typeMax
}

// Compression identifies the data compression mode recorded in a header.
// Only None is supported for data I/O; the other identifiers exist so
// that foreign headers can be parsed and rejected cleanly.
type Compression uint8

// Compression modes.
const (
	CompressionNone Compression = iota
	CompressionZlib
	CompressionBzip2
	CompressionXz
	compressionMax
)
