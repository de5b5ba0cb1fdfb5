package gta

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestElementSizeAndCount(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.SetDimensions(4, 3, 2))
	require.NoError(t, h.SetComponents(
		Component{Type: Uint16},
		Component{Type: Float64},
		Component{Type: Blob, BlobSize: 5},
	))
	require.Equal(t, uint64(2+8+5), h.ElementSize())
	require.Equal(t, uint64(24), h.Elements())
	require.Equal(t, uint64(24*15), h.DataSize())
	require.Equal(t, uint64(0), h.ComponentOffset(0))
	require.Equal(t, uint64(2), h.ComponentOffset(1))
	require.Equal(t, uint64(10), h.ComponentOffset(2))
}

func TestZeroElements(t *testing.T) {
	h := NewHeader()
	require.Equal(t, uint64(0), h.Elements(), "no dimensions means no elements")

	require.NoError(t, h.SetDimensions(5, 0, 7))
	require.NoError(t, h.SetComponents(Component{Type: Int32}))
	require.Equal(t, uint64(0), h.Elements())
	require.Equal(t, uint64(0), h.DataSize())
	require.Equal(t, uint64(4), h.ElementSize())
}

func TestSetComponentsValidation(t *testing.T) {
	h := NewHeader()
	err := h.SetComponents(Component{Type: Blob})
	require.ErrorIs(t, err, ErrInvalidHeader)
	err = h.SetComponents(Component{Type: Type(200)})
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestSizeOverflow(t *testing.T) {
	h := NewHeader()
	err := h.SetDimensions(math.MaxUint64, 2)
	require.ErrorIs(t, err, ErrTooLarge)
	require.Equal(t, 0, h.NumDimensions(), "failed mutation must not stick")

	require.NoError(t, h.SetDimensions(math.MaxUint64))
	err = h.SetComponents(Component{Type: Uint16})
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestTagList(t *testing.T) {
	var l TagList
	require.NoError(t, l.Set("X-AUTHOR", "someone"))
	require.NoError(t, l.Set("unit", "m"))
	require.NoError(t, l.Set("unit", "mm"))
	require.Equal(t, 2, l.Len())
	v, ok := l.Get("unit")
	require.True(t, ok)
	require.Equal(t, "mm", v)
	require.True(t, l.Unset("X-AUTHOR"))
	require.False(t, l.Unset("X-AUTHOR"))
	_, ok = l.Get("X-AUTHOR")
	require.False(t, ok)

	require.ErrorIs(t, l.Set("", "v"), ErrInvalidTagName)
	require.ErrorIs(t, l.Set("a=b", "v"), ErrInvalidTagName)
	require.ErrorIs(t, l.Set("a\x01b", "v"), ErrInvalidTagName)
}

func TestHeaderRoundTrip(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.SetDimensions(7, 9))
	require.NoError(t, h.SetComponents(
		Component{Type: Int8},
		Component{Type: CFloat32},
		Component{Type: Blob, BlobSize: 3},
	))
	h.SetBigEndian(true)
	require.NoError(t, h.Tags.Set("DESCRIPTION", "test data"))
	require.NoError(t, h.Dimension(0).Tags.Set("INTERPRETATION", "X"))
	require.NoError(t, h.Component(1).Tags.Set("UNIT", "V"))

	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))
	buf.WriteString("DATA") // element bytes following the header

	var got Header
	require.NoError(t, got.Read(&buf))
	require.True(t, got.BigEndian())
	require.Equal(t, CompressionNone, got.Compression())
	require.Equal(t, 2, got.NumDimensions())
	require.Equal(t, uint64(7), got.DimensionSize(0))
	require.Equal(t, uint64(9), got.DimensionSize(1))
	require.Equal(t, 3, got.NumComponents())
	require.Equal(t, CFloat32, got.Component(1).Type)
	require.Equal(t, uint64(3), got.Component(2).Size())
	v, ok := got.Tags.Get("DESCRIPTION")
	require.True(t, ok)
	require.Equal(t, "test data", v)
	v, ok = got.Dimension(0).Tags.Get("INTERPRETATION")
	require.True(t, ok)
	require.Equal(t, "X", v)
	v, ok = got.Component(1).Tags.Get("UNIT")
	require.True(t, ok)
	require.Equal(t, "V", v)

	// The header codec must stop exactly at the data boundary.
	require.Equal(t, "DATA", buf.String())
}

func TestHeaderReadErrors(t *testing.T) {
	var h Header
	err := h.Read(bytes.NewReader([]byte("XXXXxxxx")))
	require.ErrorIs(t, err, ErrNotGTA)

	err = h.Read(bytes.NewReader([]byte{'G', 'T', 'A', 0x09, 0, 0}))
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	err = h.Read(bytes.NewReader([]byte{'G', 'T', 'A', 0x01, 0}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	err = h.Read(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF, "empty stream is a clean EOF, not corruption")

	// Unknown flags and unknown compression modes are rejected.
	err = h.Read(bytes.NewReader([]byte{'G', 'T', 'A', 0x01, 0x80, 0, 0, 0, 0}))
	require.ErrorIs(t, err, ErrInvalidHeader)
	err = h.Read(bytes.NewReader([]byte{'G', 'T', 'A', 0x01, 0, 0xee, 0, 0, 0}))
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestWriteCompressedRejected(t *testing.T) {
	h := NewHeader()
	h.SetCompression(CompressionZlib)
	err := h.Write(io.Discard)
	require.ErrorIs(t, err, ErrUnsupportedCompression)
}

func TestClone(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.SetDimensions(2))
	require.NoError(t, h.SetComponents(Component{Type: Uint8}))
	require.NoError(t, h.Tags.Set("a", "1"))

	c := h.Clone()
	require.NoError(t, c.Tags.Set("a", "2"))
	require.NoError(t, c.SetDimensions(3))

	v, _ := h.Tags.Get("a")
	require.Equal(t, "1", v, "clone must not share tag storage")
	require.Equal(t, uint64(2), h.DimensionSize(0))
}
