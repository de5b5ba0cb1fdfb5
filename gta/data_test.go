package gta

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func dataHeader(t *testing.T, dims []uint64, comps ...Component) *Header {
	t.Helper()
	h := NewHeader()
	require.NoError(t, h.SetDimensions(dims...))
	require.NoError(t, h.SetComponents(comps...))
	return h
}

func TestElementIO(t *testing.T) {
	h := dataHeader(t, []uint64{4}, Component{Type: Uint16})
	src := []byte{1, 0, 2, 0, 3, 0, 4, 0}

	var st IOState
	r := bytes.NewReader(src)
	buf := make([]byte, 4)
	require.NoError(t, h.ReadElements(&st, r, 2, buf))
	require.Equal(t, src[:4], buf)
	require.Equal(t, uint64(2), st.Elements())
	require.NoError(t, h.ReadElements(&st, r, 2, buf))
	require.Equal(t, src[4:], buf)

	err := h.ReadElements(&st, r, 1, buf)
	require.ErrorIs(t, err, ErrRangeExceeded)

	var wst IOState
	var out bytes.Buffer
	require.NoError(t, h.WriteElements(&wst, &out, 4, src))
	require.Equal(t, src, out.Bytes())
	require.ErrorIs(t, h.WriteElements(&wst, &out, 1, src), ErrRangeExceeded)
}

func TestElementIOShortRead(t *testing.T) {
	h := dataHeader(t, []uint64{4}, Component{Type: Uint32})
	var st IOState
	buf := make([]byte, 8)
	err := h.ReadElements(&st, bytes.NewReader([]byte{1, 2, 3}), 2, buf)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestElementIOCompressedRejected(t *testing.T) {
	h := dataHeader(t, []uint64{1}, Component{Type: Uint8})
	h.SetCompression(CompressionXz)
	var st IOState
	require.ErrorIs(t, h.ReadElements(&st, bytes.NewReader([]byte{0}), 1, make([]byte, 1)), ErrUnsupportedCompression)
	require.ErrorIs(t, h.SkipData(bytes.NewReader([]byte{0})), ErrUnsupportedCompression)
}

func TestSkipAndCopyData(t *testing.T) {
	h := dataHeader(t, []uint64{3}, Component{Type: Uint8})
	in := bytes.NewBufferString("\x01\x02\x03TRAILER")
	require.NoError(t, h.SkipData(in))
	require.Equal(t, "TRAILER", in.String())

	in = bytes.NewBufferString("\x01\x02\x03TRAILER")
	var out bytes.Buffer
	require.NoError(t, h.CopyData(in, &out))
	require.Equal(t, []byte{1, 2, 3}, out.Bytes())
	require.Equal(t, "TRAILER", in.String())

	require.ErrorIs(t, h.CopyData(bytes.NewBufferString("\x01"), &out), io.ErrUnexpectedEOF)
	require.ErrorIs(t, h.SkipData(bytes.NewBufferString("\x01")), io.ErrUnexpectedEOF)
}

func TestBulkData(t *testing.T) {
	h := dataHeader(t, []uint64{2, 2}, Component{Type: Int16})
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	buf := make([]byte, h.DataSize())
	require.NoError(t, h.ReadData(bytes.NewReader(src), buf))
	require.Equal(t, src, buf)

	var out bytes.Buffer
	require.NoError(t, h.WriteData(&out, buf))
	require.Equal(t, src, out.Bytes())

	require.ErrorIs(t, h.ReadData(bytes.NewReader(src), make([]byte, 3)), ErrSizeMismatch)
}

func TestBulkDataZeroElements(t *testing.T) {
	h := dataHeader(t, []uint64{0, 5}, Component{Type: Float64})
	require.Equal(t, uint64(0), h.Elements())

	// All data operations succeed trivially with zero bytes moved.
	require.NoError(t, h.ReadData(bytes.NewReader(nil), nil))
	require.NoError(t, h.WriteData(io.Discard, nil))
	require.NoError(t, h.SkipData(bytes.NewReader(nil)))
	var out bytes.Buffer
	require.NoError(t, h.CopyData(bytes.NewReader(nil), &out))
	require.Equal(t, 0, out.Len())
}
