// Package stream implements the streaming conversion engine for GTA
// arrays: textual type/value codecs, endianness normalization, paired
// input/output cursors over elements and arrays, and spilling of array
// data to anonymous temporary storage for random access.
package stream

import "errors"

// Common errors
var (
	ErrInvalidTypeSpec    = errors.New("invalid type specification")
	ErrInvalidValue       = errors.New("invalid value literal")
	ErrValueCountMismatch = errors.New("number of values does not match number of components")
	ErrLayoutMismatch     = errors.New("element layouts do not match")
	ErrLoopState          = errors.New("loop is not in a usable state")
	ErrIsTerminal         = errors.New("refusing to write array data to a terminal")
)
