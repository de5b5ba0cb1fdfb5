package stream

import (
	"io"

	"github.com/pkg/errors"

	"github.com/tagarray/go-gta/gta"
)

// maxIOBufSize caps the element loop's internal buffers. Any positive
// whole-element multiple works; this trades memory against system-call
// overhead.
const maxIOBufSize = 1 << 20

// ElementLoop is a paired input/output cursor over the elements of one
// array. It borrows two already-positioned streams for the duration of
// the array's data and buffers both sides internally so that the
// underlying reads and writes always transfer a whole number of
// elements. Element bytes handed out by Read are normalized to host
// byte order; Write converts to the output header's declared order.
//
// The caller must Finish the loop before the streams are used for
// anything else, or buffered output is lost.
type ElementLoop struct {
	// MaxBufSize overrides the internal buffer byte size when set
	// before Start. The effective size is always at least one element
	// and rounded down to a whole number of elements.
	MaxBufSize int

	hdrIn   *gta.Header
	hdrOut  *gta.Header
	nameIn  string
	nameOut string
	in      io.Reader
	out     io.Writer

	esIn, esOut       int
	swapIn, swapOut   bool
	elemsIn, elemsOut uint64

	rbuf       []byte
	rpos, rlim int
	wbuf       []byte
	wn         int

	started, finished bool
}

// Start binds the loop to an input and an output stream, both positioned
// at the first element byte of their array, and allocates the internal
// buffers.
func (l *ElementLoop) Start(hdrIn *gta.Header, nameIn string, in io.Reader,
	hdrOut *gta.Header, nameOut string, out io.Writer) error {
	esIn := hdrIn.ElementSize()
	esOut := hdrOut.ElementSize()
	if esIn == 0 || esOut == 0 {
		return errors.Wrap(ErrLoopState, "cannot stream zero-size elements")
	}
	maxBuf := l.MaxBufSize
	if maxBuf <= 0 {
		maxBuf = maxIOBufSize
	}
	l.hdrIn, l.nameIn, l.in = hdrIn, nameIn, in
	l.hdrOut, l.nameOut, l.out = hdrOut, nameOut, out
	l.esIn, l.esOut = int(esIn), int(esOut)
	l.swapIn = NeedsSwap(hdrIn)
	l.swapOut = NeedsSwap(hdrOut)
	l.elemsIn, l.elemsOut = 0, 0
	l.rbuf = make([]byte, bufSize(maxBuf, l.esIn))
	l.rpos, l.rlim = 0, 0
	l.wbuf = make([]byte, bufSize(maxBuf, l.esOut))
	l.wn = 0
	l.started, l.finished = true, false
	return nil
}

// bufSize rounds max down to a whole number of elements, minimum one.
func bufSize(max, elemSize int) int {
	n := max / elemSize
	if n == 0 {
		n = 1
	}
	return n * elemSize
}

// Read returns n contiguous elements in host byte order. The returned
// slice points into the internal buffer and is valid until the next
// Read. A stream ending mid-element or mid-request fails with an
// unexpected EOF.
func (l *ElementLoop) Read(n uint64) ([]byte, error) {
	if !l.started || l.finished {
		return nil, errors.Wrap(ErrLoopState, "read before start or after finish")
	}
	if l.elemsIn+n > l.hdrIn.Elements() {
		return nil, errors.Wrapf(gta.ErrRangeExceeded, "%s: reading %d elements at %d of %d",
			l.nameIn, n, l.elemsIn, l.hdrIn.Elements())
	}
	need := int(n) * l.esIn
	if need > len(l.rbuf) {
		grown := make([]byte, need)
		l.rlim = copy(grown, l.rbuf[l.rpos:l.rlim])
		l.rpos = 0
		l.rbuf = grown
	}
	if l.rlim-l.rpos < need {
		// Compact the unread tail, then refill. The input stream is
		// borrowed and holds further arrays after this one, so the
		// refill must never read past the array's remaining data.
		l.rlim = copy(l.rbuf, l.rbuf[l.rpos:l.rlim])
		l.rpos = 0
		space := l.rbuf[l.rlim:]
		remaining := (l.hdrIn.Elements()-l.elemsIn)*uint64(l.esIn) - uint64(l.rlim)
		if uint64(len(space)) > remaining {
			space = space[:remaining]
		}
		m, err := io.ReadAtLeast(l.in, space, need-l.rlim)
		l.rlim += m
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, errors.Wrapf(err, "%s: reading elements", l.nameIn)
		}
	}
	p := l.rbuf[l.rpos : l.rpos+need]
	if l.swapIn {
		for off := 0; off < need; off += l.esIn {
			SwapElement(l.hdrIn, p[off:off+l.esIn])
		}
	}
	l.rpos += need
	l.elemsIn += n
	return p, nil
}

// Write copies n elements (given in host byte order) into the internal
// output buffer, flushing whole buffers to the output stream as they
// fill.
func (l *ElementLoop) Write(p []byte, n uint64) error {
	if !l.started || l.finished {
		return errors.Wrap(ErrLoopState, "write before start or after finish")
	}
	if l.elemsOut+n > l.hdrOut.Elements() {
		return errors.Wrapf(gta.ErrRangeExceeded, "%s: writing %d elements at %d of %d",
			l.nameOut, n, l.elemsOut, l.hdrOut.Elements())
	}
	need := int(n) * l.esOut
	if len(p) < need {
		return errors.Wrapf(gta.ErrSizeMismatch, "%s: %d bytes for %d elements", l.nameOut, len(p), n)
	}
	for off := 0; off < need; {
		c := len(l.wbuf) - l.wn
		if c > need-off {
			c = need - off
		}
		copy(l.wbuf[l.wn:], p[off:off+c])
		if l.swapOut {
			for i := l.wn; i < l.wn+c; i += l.esOut {
				SwapElement(l.hdrOut, l.wbuf[i:i+l.esOut])
			}
		}
		l.wn += c
		off += c
		if l.wn == len(l.wbuf) {
			if err := l.Flush(); err != nil {
				return err
			}
		}
	}
	l.elemsOut += n
	return nil
}

// Flush writes any buffered output elements to the output stream. The
// buffered byte count is always a whole number of elements.
func (l *ElementLoop) Flush() error {
	if l.wn == 0 {
		return nil
	}
	n := l.wn
	l.wn = 0
	if _, err := l.out.Write(l.wbuf[:n]); err != nil {
		return errors.Wrapf(err, "%s: writing elements", l.nameOut)
	}
	return nil
}

// Finish flushes pending output and detaches the loop from its streams.
// It must be called before the owning array loop advances past the
// array. Finishing twice is a no-op.
func (l *ElementLoop) Finish() error {
	if !l.started || l.finished {
		return nil
	}
	err := l.Flush()
	l.finished = true
	return err
}

// ElementsRead returns the number of elements delivered so far.
func (l *ElementLoop) ElementsRead() uint64 {
	return l.elemsIn
}

// ElementsWritten returns the number of elements accepted so far.
func (l *ElementLoop) ElementsWritten() uint64 {
	return l.elemsOut
}
