// Package gta implements the Generic Tagged Array container format:
// self-describing headers (dimensions, typed components, string tags)
// followed by raw element data, streamed one array after another.
package gta

import "errors"

// Common errors
var (
	ErrNotGTA                 = errors.New("not a GTA stream")
	ErrUnsupportedVersion     = errors.New("unsupported GTA version")
	ErrUnsupportedCompression = errors.New("unsupported compression mode")
	ErrInvalidHeader          = errors.New("invalid GTA header")
	ErrInvalidTagName         = errors.New("invalid tag name")
	ErrTooLarge               = errors.New("array size overflows")
	ErrRangeExceeded          = errors.New("element range exceeds array")
	ErrSizeMismatch           = errors.New("buffer size does not match array data size")
)
