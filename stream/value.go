package stream

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tagarray/go-gta/gta"
)

// ParseValue converts a textual literal into the exact byte pattern a
// native encoder of the given type and width would produce in host byte
// order. Integer and float literals use the usual decimal syntax, blob
// literals are hex strings of exactly the blob width, and complex
// literals are two comma-separated floats.
func ParseValue(s string, t gta.Type, size uint64) ([]byte, error) {
	buf := make([]byte, size)
	if err := parseValueInto(s, t, size, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func parseValueInto(s string, t gta.Type, size uint64, buf []byte) error {
	switch t {
	case gta.Int8, gta.Int16, gta.Int32, gta.Int64:
		v, err := strconv.ParseInt(s, 10, int(size)*8)
		if err != nil {
			return valueErr(s, t, size)
		}
		putUint(buf[:size], uint64(v))
	case gta.Uint8, gta.Uint16, gta.Uint32, gta.Uint64:
		v, err := strconv.ParseUint(s, 10, int(size)*8)
		if err != nil {
			return valueErr(s, t, size)
		}
		putUint(buf[:size], v)
	case gta.Float32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return valueErr(s, t, size)
		}
		binary.NativeEndian.PutUint32(buf, math.Float32bits(float32(v)))
	case gta.Float64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return valueErr(s, t, size)
		}
		binary.NativeEndian.PutUint64(buf, math.Float64bits(v))
	case gta.CFloat32, gta.CFloat64:
		re, im, ok := strings.Cut(s, ",")
		if !ok {
			return fmt.Errorf("%w: two comma-separated values expected for complex type, got %q", ErrInvalidValue, s)
		}
		half := size / 2
		ft := gta.Float32
		if t == gta.CFloat64 {
			ft = gta.Float64
		}
		if err := parseValueInto(re, ft, half, buf[:half]); err != nil {
			return err
		}
		return parseValueInto(im, ft, half, buf[half:])
	case gta.Blob:
		b, err := hex.DecodeString(s)
		if err != nil {
			return valueErr(s, t, size)
		}
		if uint64(len(b)) != size {
			return fmt.Errorf("%w: blob literal %q decodes to %d bytes, want %d", ErrInvalidValue, s, len(b), size)
		}
		copy(buf, b)
	case gta.Int128, gta.Uint128:
		return fmt.Errorf("%w: 128-bit integer values are not supported", ErrInvalidValue)
	case gta.Float128, gta.CFloat128:
		return fmt.Errorf("%w: quad-precision floating point values are not supported", ErrInvalidValue)
	default:
		return fmt.Errorf("%w: unknown type %d", ErrInvalidValue, t)
	}
	return nil
}

// ParseValueList converts a comma-separated list of literals against the
// corresponding components into one concatenated element byte pattern.
// A complex component consumes two comma-separated fields. It fails
// with ErrValueCountMismatch if the field and component counts differ.
func ParseValueList(s string, comps []gta.Component) ([]byte, error) {
	var fields []string
	if s != "" {
		fields = strings.Split(s, ",")
	}
	var total uint64
	for i := range comps {
		total += comps[i].Size()
	}
	buf := make([]byte, total)
	var off uint64
	fi := 0
	for i := range comps {
		need := 1
		if isComplex(comps[i].Type) {
			need = 2
		}
		if fi+need > len(fields) {
			return nil, fmt.Errorf("%w: %d values for %d components", ErrValueCountMismatch, len(fields), len(comps))
		}
		lit := strings.Join(fields[fi:fi+need], ",")
		size := comps[i].Size()
		if err := parseValueInto(lit, comps[i].Type, size, buf[off:off+size]); err != nil {
			return nil, err
		}
		off += size
		fi += need
	}
	if fi != len(fields) {
		return nil, fmt.Errorf("%w: %d values left over", ErrValueCountMismatch, len(fields)-fi)
	}
	return buf, nil
}

// FormatValue renders the host-order byte pattern of one component back
// into canonical literal text, the inverse of ParseValue.
func FormatValue(buf []byte, t gta.Type, size uint64) (string, error) {
	if uint64(len(buf)) < size {
		return "", fmt.Errorf("%w: %d bytes for width-%d component", ErrInvalidValue, len(buf), size)
	}
	switch t {
	case gta.Int8, gta.Int16, gta.Int32, gta.Int64:
		v := int64(getUint(buf[:size]))
		// Sign-extend narrow widths.
		shift := 64 - size*8
		v = v << shift >> shift
		return strconv.FormatInt(v, 10), nil
	case gta.Uint8, gta.Uint16, gta.Uint32, gta.Uint64:
		return strconv.FormatUint(getUint(buf[:size]), 10), nil
	case gta.Float32:
		v := math.Float32frombits(binary.NativeEndian.Uint32(buf))
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case gta.Float64:
		v := math.Float64frombits(binary.NativeEndian.Uint64(buf))
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case gta.CFloat32, gta.CFloat64:
		half := size / 2
		ft := gta.Float32
		if t == gta.CFloat64 {
			ft = gta.Float64
		}
		re, err := FormatValue(buf[:half], ft, half)
		if err != nil {
			return "", err
		}
		im, err := FormatValue(buf[half:size], ft, half)
		if err != nil {
			return "", err
		}
		return re + "," + im, nil
	case gta.Blob:
		return hex.EncodeToString(buf[:size]), nil
	default:
		return "", fmt.Errorf("%w: cannot format type %s", ErrInvalidValue, FormatType(t, size))
	}
}

func isComplex(t gta.Type) bool {
	return t == gta.CFloat32 || t == gta.CFloat64 || t == gta.CFloat128
}

func valueErr(s string, t gta.Type, size uint64) error {
	return fmt.Errorf("%w: cannot read %s from %q", ErrInvalidValue, FormatType(t, size), s)
}

// putUint stores v in host byte order across 1, 2, 4, or 8 bytes.
func putUint(buf []byte, v uint64) {
	switch len(buf) {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.NativeEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.NativeEndian.PutUint32(buf, uint32(v))
	case 8:
		binary.NativeEndian.PutUint64(buf, v)
	}
}

// getUint loads a host-order unsigned integer of 1, 2, 4, or 8 bytes.
func getUint(buf []byte) uint64 {
	switch len(buf) {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(binary.NativeEndian.Uint16(buf))
	case 4:
		return uint64(binary.NativeEndian.Uint32(buf))
	case 8:
		return binary.NativeEndian.Uint64(buf)
	}
	return 0
}
