package stream

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tagarray/go-gta/gta"
)

// typeNames maps the fixed-width type identifiers. Blob is handled
// separately because it carries an explicit byte width ("blobN").
var typeNames = map[string]gta.Type{
	"int8":      gta.Int8,
	"uint8":     gta.Uint8,
	"int16":     gta.Int16,
	"uint16":    gta.Uint16,
	"int32":     gta.Int32,
	"uint32":    gta.Uint32,
	"int64":     gta.Int64,
	"uint64":    gta.Uint64,
	"int128":    gta.Int128,
	"uint128":   gta.Uint128,
	"float32":   gta.Float32,
	"float64":   gta.Float64,
	"float128":  gta.Float128,
	"cfloat32":  gta.CFloat32,
	"cfloat64":  gta.CFloat64,
	"cfloat128": gta.CFloat128,
}

// ParseType parses a case-sensitive type identifier into a component
// type and its byte width. Blobs are spelled "blobN" where N is the
// byte width; N must be greater than zero.
func ParseType(s string) (gta.Type, uint64, error) {
	if rest, ok := strings.CutPrefix(s, "blob"); ok {
		n, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: bad blob size in %q", ErrInvalidTypeSpec, s)
		}
		if n == 0 {
			return 0, 0, fmt.Errorf("%w: blob size 0 in %q", ErrInvalidTypeSpec, s)
		}
		return gta.Blob, n, nil
	}
	t, ok := typeNames[s]
	if !ok {
		return 0, 0, fmt.Errorf("%w: unknown type %q", ErrInvalidTypeSpec, s)
	}
	return t, t.Size(), nil
}

// ParseTypeList parses a comma-separated list of type identifiers into
// components. An empty string yields an empty list.
func ParseTypeList(s string) ([]gta.Component, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	comps := make([]gta.Component, len(parts))
	for i, p := range parts {
		t, size, err := ParseType(p)
		if err != nil {
			return nil, err
		}
		comps[i] = gta.Component{Type: t}
		if t == gta.Blob {
			comps[i].BlobSize = size
		}
	}
	return comps, nil
}

// FormatType is the exact inverse of ParseType.
func FormatType(t gta.Type, size uint64) string {
	if t == gta.Blob {
		return "blob" + strconv.FormatUint(size, 10)
	}
	for name, tt := range typeNames {
		if tt == t {
			return name
		}
	}
	return fmt.Sprintf("unknown(%d)", t)
}

// FormatTypeList formats components as a comma-separated list of type
// identifiers, the inverse of ParseTypeList.
func FormatTypeList(comps []gta.Component) string {
	parts := make([]string, len(comps))
	for i := range comps {
		parts[i] = FormatType(comps[i].Type, comps[i].Size())
	}
	return strings.Join(parts, ",")
}
