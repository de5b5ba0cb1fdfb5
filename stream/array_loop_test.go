package stream

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagarray/go-gta/gta"
)

type testArray struct {
	hdr  *gta.Header
	data []byte
}

func u8Array(t *testing.T, elems ...byte) testArray {
	t.Helper()
	h := gta.NewHeader()
	require.NoError(t, h.SetDimensions(uint64(len(elems))))
	require.NoError(t, h.SetComponents(gta.Component{Type: gta.Uint8}))
	return testArray{hdr: h, data: elems}
}

func encodeArrays(t *testing.T, arrays ...testArray) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, a := range arrays {
		require.NoError(t, a.hdr.Write(&buf))
		require.NoError(t, a.hdr.WriteData(&buf, a.data))
	}
	return buf.Bytes()
}

func writeArrayFile(t *testing.T, path string, arrays ...testArray) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, encodeArrays(t, arrays...), 0o644))
}

func TestArrayLoopExhaustion(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.gta")
	b := filepath.Join(dir, "b.gta")
	writeArrayFile(t, a, u8Array(t, 1), u8Array(t, 2))
	writeArrayFile(t, b, u8Array(t, 3), u8Array(t, 4), u8Array(t, 5))

	var out bytes.Buffer
	loop := &ArrayLoop{Stdout: &out}
	require.NoError(t, loop.Start([]string{a, b}, ""))

	var hdr gta.Header
	for i := 0; i < 5; i++ {
		want := a
		if i >= 2 {
			want = b
		}
		name, ok, err := loop.Read(&hdr)
		require.NoError(t, err)
		require.True(t, ok, "read %d", i)
		require.Equal(t, fmt.Sprintf("%s array %d", want, i), name)
		require.Equal(t, uint64(i+1), loop.IndexIn())
		require.NoError(t, loop.SkipData(&hdr))
	}
	_, ok, err := loop.Read(&hdr)
	require.NoError(t, err)
	require.False(t, ok, "sixth read must report exhaustion")
	require.NoError(t, loop.Finish())
}

func TestArrayLoopStdinStdout(t *testing.T) {
	in := bytes.NewReader(encodeArrays(t, u8Array(t, 10, 20), u8Array(t)))
	var out bytes.Buffer
	loop := &ArrayLoop{Stdin: in, Stdout: &out}
	require.NoError(t, loop.Start(nil, ""))

	var hdr gta.Header
	name, ok, err := loop.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StdinName+" array 0", name)
	require.Equal(t, StdinName, loop.FilenameIn())
	require.Equal(t, StdoutName, loop.FilenameOut())

	name, err = loop.Write(&hdr)
	require.NoError(t, err)
	require.Equal(t, StdoutName+" array 0", name)
	require.NoError(t, loop.CopyData(&hdr, &hdr))

	// Second array has zero elements; copying it moves no bytes.
	_, ok, err = loop.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(0), hdr.Elements())
	_, err = loop.Write(&hdr)
	require.NoError(t, err)
	require.NoError(t, loop.CopyData(&hdr, &hdr))

	_, ok, err = loop.Read(&hdr)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, loop.Finish())

	require.Equal(t, encodeArrays(t, u8Array(t, 10, 20), u8Array(t)), out.Bytes())
}

func TestArrayLoopCopyMatchesBulkTransfer(t *testing.T) {
	for _, elems := range [][]byte{nil, {42}, {1, 2, 3, 4, 5}} {
		arr := u8Array(t, elems...)
		encoded := encodeArrays(t, arr)

		var copied bytes.Buffer
		loop := &ArrayLoop{Stdin: bytes.NewReader(encoded), Stdout: &copied}
		require.NoError(t, loop.Start(nil, ""))
		var hdr gta.Header
		_, ok, err := loop.Read(&hdr)
		require.NoError(t, err)
		require.True(t, ok)
		_, err = loop.Write(&hdr)
		require.NoError(t, err)
		require.NoError(t, loop.CopyData(&hdr, &hdr))
		require.NoError(t, loop.Finish())

		var bulk bytes.Buffer
		loop = &ArrayLoop{Stdin: bytes.NewReader(encoded), Stdout: &bulk}
		require.NoError(t, loop.Start(nil, ""))
		_, ok, err = loop.Read(&hdr)
		require.NoError(t, err)
		require.True(t, ok)
		_, err = loop.Write(&hdr)
		require.NoError(t, err)
		buf := make([]byte, hdr.DataSize())
		require.NoError(t, loop.ReadData(&hdr, buf))
		require.NoError(t, loop.WriteData(&hdr, buf))
		require.NoError(t, loop.Finish())

		require.Equal(t, bulk.Bytes(), copied.Bytes(), "%d elements", len(elems))
	}
}

func TestArrayLoopLayoutMismatch(t *testing.T) {
	arr := u8Array(t, 1, 2, 3)
	loop := &ArrayLoop{Stdin: bytes.NewReader(encodeArrays(t, arr)), Stdout: io.Discard}
	require.NoError(t, loop.Start(nil, ""))
	var hdr gta.Header
	_, ok, err := loop.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok)

	other := gta.NewHeader()
	require.NoError(t, other.SetDimensions(3))
	require.NoError(t, other.SetComponents(gta.Component{Type: gta.Uint32}))
	require.ErrorIs(t, loop.CopyData(&hdr, other), ErrLayoutMismatch)

	fewer := gta.NewHeader()
	require.NoError(t, fewer.SetDimensions(2))
	require.NoError(t, fewer.SetComponents(gta.Component{Type: gta.Uint8}))
	require.ErrorIs(t, loop.CopyData(&hdr, fewer), ErrLayoutMismatch)
}

func TestArrayLoopCrossLoopCopy(t *testing.T) {
	arr := u8Array(t, 9, 8, 7)
	src := &ArrayLoop{Stdin: bytes.NewReader(encodeArrays(t, arr)), Stdout: io.Discard}
	require.NoError(t, src.Start(nil, ""))
	var sink bytes.Buffer
	dst := &ArrayLoop{Stdin: bytes.NewReader(nil), Stdout: &sink}
	require.NoError(t, dst.Start(nil, ""))

	var hdr gta.Header
	_, ok, err := src.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = dst.Write(&hdr)
	require.NoError(t, err)
	require.NoError(t, src.CopyDataTo(&hdr, dst, &hdr))
	require.NoError(t, src.Finish())
	require.NoError(t, dst.Finish())

	require.Equal(t, encodeArrays(t, arr), sink.Bytes())
}

func TestArrayLoopElementLoopHandoff(t *testing.T) {
	arr := u8Array(t, 5, 6, 7)
	var out bytes.Buffer
	loop := &ArrayLoop{Stdin: bytes.NewReader(encodeArrays(t, arr)), Stdout: &out}
	require.NoError(t, loop.Start(nil, ""))

	var hdr gta.Header
	_, ok, err := loop.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = loop.Write(&hdr)
	require.NoError(t, err)

	var el ElementLoop
	require.NoError(t, loop.StartElementLoop(&el, &hdr, &hdr))
	for i := uint64(0); i < hdr.Elements(); i++ {
		p, err := el.Read(1)
		require.NoError(t, err)
		p[0]++
		require.NoError(t, el.Write(p, 1))
	}
	require.NoError(t, el.Finish())
	require.NoError(t, loop.Finish())

	require.Equal(t, encodeArrays(t, u8Array(t, 6, 7, 8)), out.Bytes())
}

func TestArrayLoopElementLoopPreservesFollowingArrays(t *testing.T) {
	// Streaming one array through an element loop must leave the shared
	// input positioned at the next array's header.
	first := u8Array(t, 1, 2, 3)
	second := u8Array(t, 40, 50)
	var out bytes.Buffer
	loop := &ArrayLoop{Stdin: bytes.NewReader(encodeArrays(t, first, second)), Stdout: &out}
	require.NoError(t, loop.Start(nil, ""))

	var hdr gta.Header
	_, ok, err := loop.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = loop.Write(&hdr)
	require.NoError(t, err)
	var el ElementLoop
	require.NoError(t, loop.StartElementLoop(&el, &hdr, &hdr))
	for i := uint64(0); i < hdr.Elements(); i++ {
		p, err := el.Read(1)
		require.NoError(t, err)
		p[0]++
		require.NoError(t, el.Write(p, 1))
	}
	require.NoError(t, el.Finish())

	_, ok, err = loop.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok, "second array must still be readable after the element loop")
	_, err = loop.Write(&hdr)
	require.NoError(t, err)
	require.NoError(t, loop.CopyData(&hdr, &hdr))

	_, ok, err = loop.Read(&hdr)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, loop.Finish())

	require.Equal(t, encodeArrays(t, u8Array(t, 2, 3, 4), second), out.Bytes())
}

func TestArrayLoopFileOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.gta")
	outPath := filepath.Join(dir, "out.gta")
	writeArrayFile(t, in, u8Array(t, 1, 2), u8Array(t, 3))

	loop := &ArrayLoop{}
	require.NoError(t, loop.Start([]string{in}, outPath))
	var hdr gta.Header
	for {
		_, ok, err := loop.Read(&hdr)
		require.NoError(t, err)
		if !ok {
			break
		}
		_, err = loop.Write(&hdr)
		require.NoError(t, err)
		require.NoError(t, loop.CopyData(&hdr, &hdr))
	}
	require.NoError(t, loop.Finish())

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, encodeArrays(t, u8Array(t, 1, 2), u8Array(t, 3)), got)
}

func TestArrayLoopSkipSeeksFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.gta")
	writeArrayFile(t, in, u8Array(t, 1, 2, 3), u8Array(t, 9))

	loop := &ArrayLoop{Stdout: io.Discard}
	require.NoError(t, loop.Start([]string{in}, ""))
	var hdr gta.Header
	_, ok, err := loop.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, loop.SkipData(&hdr))

	// Skipping positioned the stream at the second array.
	_, ok, err = loop.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok)
	buf := make([]byte, 1)
	require.NoError(t, loop.ReadData(&hdr, buf))
	require.Equal(t, byte(9), buf[0])
	require.NoError(t, loop.Finish())

	// Data larger than the internal read buffer forces the
	// seek-forward branch instead of buffered discard.
	big := make([]byte, 100000)
	big[len(big)-1] = 0xcc
	writeArrayFile(t, in, u8Array(t, big...), u8Array(t, 9))
	loop = &ArrayLoop{Stdout: io.Discard}
	require.NoError(t, loop.Start([]string{in}, ""))
	_, ok, err = loop.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, loop.SkipData(&hdr))
	_, ok, err = loop.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, loop.ReadData(&hdr, buf))
	require.Equal(t, byte(9), buf[0])
	require.NoError(t, loop.Finish())
}

func TestArrayLoopSkipDetectsTruncatedFile(t *testing.T) {
	// The seek-forward skip path must not silently step past the end of
	// a truncated file.
	dir := t.TempDir()
	in := filepath.Join(dir, "in.gta")
	h := gta.NewHeader()
	require.NoError(t, h.SetDimensions(100000))
	require.NoError(t, h.SetComponents(gta.Component{Type: gta.Uint8}))
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))
	buf.Write([]byte{1, 2, 3})
	require.NoError(t, os.WriteFile(in, buf.Bytes(), 0o644))

	loop := &ArrayLoop{Stdout: io.Discard}
	require.NoError(t, loop.Start([]string{in}, ""))
	var hdr gta.Header
	_, ok, err := loop.Read(&hdr)
	require.NoError(t, err)
	require.True(t, ok)
	require.ErrorIs(t, loop.SkipData(&hdr), io.ErrUnexpectedEOF)
	require.NoError(t, loop.Finish())
}

func TestArrayLoopLazyInputOpen(t *testing.T) {
	// Start must not touch missing inputs; the open failure surfaces on
	// the first Read.
	loop := &ArrayLoop{Stdout: io.Discard}
	require.NoError(t, loop.Start([]string{"/nonexistent/input.gta"}, ""))
	var hdr gta.Header
	_, _, err := loop.Read(&hdr)
	require.Error(t, err)
	require.NoError(t, loop.Finish())
}

func TestArrayLoopStateGuards(t *testing.T) {
	loop := &ArrayLoop{Stdin: bytes.NewReader(nil), Stdout: io.Discard}
	var hdr gta.Header
	_, _, err := loop.Read(&hdr)
	require.ErrorIs(t, err, ErrLoopState, "read before start")

	require.NoError(t, loop.Start(nil, ""))
	require.ErrorIs(t, loop.Start(nil, ""), ErrLoopState, "double start")
	require.NoError(t, loop.Finish())
	require.NoError(t, loop.Finish(), "finish is idempotent")
	_, _, err = loop.Read(&hdr)
	require.ErrorIs(t, err, ErrLoopState, "read after finish")
	_, err = loop.Write(&hdr)
	require.ErrorIs(t, err, ErrLoopState, "write after finish")
}
