package stream

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/tagarray/go-gta/gta"
)

// Synthetic stream labels used in diagnostics.
const (
	StdinName  = "standard input"
	StdoutName = "standard output"
)

// ArrayLoop is a paired cursor over a sequence of arrays: the input
// arrays come from an ordered list of files (or from standard input if
// the list is empty), the output arrays go to a single file (or to
// standard output if the name is empty). The loop exclusively owns the
// streams it opens and advances them; headers are handed out as copies
// that callers may reconfigure before writing.
type ArrayLoop struct {
	// Stdin and Stdout substitute the process streams when set. They
	// exist so that a hosting program can redirect the loop without
	// touching process-global state.
	Stdin  io.Reader
	Stdout io.Writer

	filenamesIn []string
	filenameOut string

	in      *bufio.Reader
	inFile  *os.File
	inIdx   int
	out     io.Writer
	outFile *os.File

	idxIn, idxOut             uint64
	arrayNameIn, arrayNameOut string

	started, finished bool
}

// Start configures the loop. The output is opened immediately; the
// first input file is opened lazily on the first Read, so that inputs
// are never touched when opening the output already fails.
func (l *ArrayLoop) Start(filenamesIn []string, filenameOut string) error {
	if l.started {
		return errors.Wrap(ErrLoopState, "loop already started")
	}
	l.filenamesIn = append([]string(nil), filenamesIn...)
	l.filenameOut = filenameOut

	if filenameOut == "" {
		w := l.Stdout
		if w == nil {
			w = os.Stdout
		}
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return ErrIsTerminal
		}
		l.out = w
	} else {
		f, err := os.Create(filenameOut)
		if err != nil {
			return errors.Wrapf(err, "opening %s", filenameOut)
		}
		l.outFile = f
		l.out = f
	}
	l.started = true
	return nil
}

// FilenameIn returns the label of the current input source.
func (l *ArrayLoop) FilenameIn() string {
	if len(l.filenamesIn) == 0 {
		return StdinName
	}
	return l.filenamesIn[l.inIdx]
}

// FilenameOut returns the label of the output destination.
func (l *ArrayLoop) FilenameOut() string {
	if l.filenameOut == "" {
		return StdoutName
	}
	return l.filenameOut
}

// IndexIn returns the zero-based global index of the next input array.
func (l *ArrayLoop) IndexIn() uint64 {
	return l.idxIn
}

// IndexOut returns the zero-based index of the next output array.
func (l *ArrayLoop) IndexOut() uint64 {
	return l.idxOut
}

// FileIn exposes the active input stream, positioned wherever the loop
// has advanced it. Useful for handing the stream to the format
// library's codecs directly.
func (l *ArrayLoop) FileIn() io.Reader {
	return l.in
}

// FileOut exposes the active output stream.
func (l *ArrayLoop) FileOut() io.Writer {
	return l.out
}

func (l *ArrayLoop) usable() error {
	if !l.started {
		return errors.Wrap(ErrLoopState, "loop not started")
	}
	if l.finished {
		return errors.Wrap(ErrLoopState, "loop already finished")
	}
	return nil
}

func (l *ArrayLoop) openInput(i int) error {
	f, err := os.Open(l.filenamesIn[i])
	if err != nil {
		return errors.Wrapf(err, "opening %s", l.filenamesIn[i])
	}
	l.inFile = f
	l.inIdx = i
	l.in = bufio.NewReader(f)
	return nil
}

// Read advances to the next array header across the logical
// concatenation of all inputs. It returns the array's diagnostic name
// and true, or false exactly once all inputs are exhausted.
func (l *ArrayLoop) Read(hdr *gta.Header) (string, bool, error) {
	if err := l.usable(); err != nil {
		return "", false, err
	}
	if l.in == nil {
		if len(l.filenamesIn) == 0 {
			r := l.Stdin
			if r == nil {
				r = os.Stdin
			}
			l.in = bufio.NewReader(r)
		} else if err := l.openInput(0); err != nil {
			return "", false, err
		}
	}
	for {
		_, err := l.in.Peek(1)
		if err == nil {
			break
		}
		if !errors.Is(err, io.EOF) {
			return "", false, errors.Wrapf(err, "reading %s", l.FilenameIn())
		}
		// Clean end of the current source.
		if len(l.filenamesIn) == 0 || l.inIdx+1 == len(l.filenamesIn) {
			return "", false, nil
		}
		if err := l.closeInput(); err != nil {
			return "", false, err
		}
		if err := l.openInput(l.inIdx + 1); err != nil {
			return "", false, err
		}
	}
	name := fmt.Sprintf("%s array %d", l.FilenameIn(), l.idxIn)
	if err := hdr.Read(l.in); err != nil {
		return "", false, errors.Wrapf(err, "%s", name)
	}
	l.arrayNameIn = name
	l.idxIn++
	return name, true, nil
}

// Write writes the next array header to the output stream and returns
// the output array's diagnostic name.
func (l *ArrayLoop) Write(hdr *gta.Header) (string, error) {
	if err := l.usable(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s array %d", l.FilenameOut(), l.idxOut)
	if err := hdr.Write(l.out); err != nil {
		return "", errors.Wrapf(err, "%s", name)
	}
	l.arrayNameOut = name
	l.idxOut++
	return name, nil
}

// SkipData discards the current array's element data from the input,
// seeking forward when the input is a real file and reading to discard
// otherwise.
func (l *ArrayLoop) SkipData(hdr *gta.Header) error {
	if err := l.usable(); err != nil {
		return err
	}
	if hdr.Compression() != gta.CompressionNone {
		return errors.Wrapf(gta.ErrUnsupportedCompression, "%s", l.arrayNameIn)
	}
	if l.inFile != nil {
		n := hdr.DataSize()
		buffered := uint64(l.in.Buffered())
		if buffered >= n {
			_, err := l.in.Discard(int(n))
			return errors.Wrapf(err, "%s", l.arrayNameIn)
		}
		if _, err := l.in.Discard(int(buffered)); err != nil {
			return errors.Wrapf(err, "%s", l.arrayNameIn)
		}
		end, err := l.inFile.Seek(int64(n-buffered), io.SeekCurrent)
		if err != nil {
			return errors.Wrapf(err, "%s", l.arrayNameIn)
		}
		// Seeking past EOF succeeds, so a truncated file must be
		// detected explicitly.
		st, err := l.inFile.Stat()
		if err != nil {
			return errors.Wrapf(err, "%s", l.arrayNameIn)
		}
		if end > st.Size() {
			return errors.Wrapf(io.ErrUnexpectedEOF, "%s: data ends before declared size", l.arrayNameIn)
		}
		return nil
	}
	if err := hdr.SkipData(l.in); err != nil {
		return errors.Wrapf(err, "%s", l.arrayNameIn)
	}
	return nil
}

// CopyData streams the current array's element bytes verbatim from the
// input to the output. Both headers must describe byte-identical
// element layout.
func (l *ArrayLoop) CopyData(hdrIn, hdrOut *gta.Header) error {
	return l.copyData(hdrIn, hdrOut, l)
}

// CopyDataTo is CopyData with the data going to a different array
// loop's output stream.
func (l *ArrayLoop) CopyDataTo(hdrIn *gta.Header, out *ArrayLoop, hdrOut *gta.Header) error {
	return l.copyData(hdrIn, hdrOut, out)
}

func (l *ArrayLoop) copyData(hdrIn, hdrOut *gta.Header, out *ArrayLoop) error {
	if err := l.usable(); err != nil {
		return err
	}
	if err := out.usable(); err != nil {
		return err
	}
	if hdrIn.ElementSize() != hdrOut.ElementSize() || hdrIn.Elements() != hdrOut.Elements() {
		return errors.Wrapf(ErrLayoutMismatch,
			"%s: %d x %d byte elements vs %d x %d",
			l.arrayNameIn, hdrIn.Elements(), hdrIn.ElementSize(),
			hdrOut.Elements(), hdrOut.ElementSize())
	}
	if err := hdrIn.CopyData(l.in, out.out); err != nil {
		return errors.Wrapf(err, "%s", l.arrayNameIn)
	}
	return nil
}

// ReadData reads the current array's entire element data into buf,
// which must be sized exactly hdr.DataSize().
func (l *ArrayLoop) ReadData(hdr *gta.Header, buf []byte) error {
	if err := l.usable(); err != nil {
		return err
	}
	if err := hdr.ReadData(l.in, buf); err != nil {
		return errors.Wrapf(err, "%s", l.arrayNameIn)
	}
	return nil
}

// WriteData writes an entire array's element data from buf, which must
// be sized exactly hdr.DataSize().
func (l *ArrayLoop) WriteData(hdr *gta.Header, buf []byte) error {
	if err := l.usable(); err != nil {
		return err
	}
	if err := hdr.WriteData(l.out, buf); err != nil {
		return errors.Wrapf(err, "%s", l.arrayNameOut)
	}
	return nil
}

// StartElementLoop binds el to the loop's current input and output
// streams for per-element streaming of the current array.
func (l *ArrayLoop) StartElementLoop(el *ElementLoop, hdrIn, hdrOut *gta.Header) error {
	if err := l.usable(); err != nil {
		return err
	}
	return el.Start(hdrIn, l.arrayNameIn, l.in, hdrOut, l.arrayNameOut, l.out)
}

func (l *ArrayLoop) closeInput() error {
	if l.inFile == nil {
		return nil
	}
	f := l.inFile
	l.inFile = nil
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", l.filenamesIn[l.inIdx])
	}
	return nil
}

// Finish closes the output stream and any still-open input file. It
// must be called after the last array; all other methods fail
// afterwards. Finishing twice is a no-op.
func (l *ArrayLoop) Finish() error {
	if !l.started || l.finished {
		return nil
	}
	l.finished = true
	var firstErr error
	if l.outFile != nil {
		if err := l.outFile.Close(); err != nil {
			firstErr = errors.Wrapf(err, "closing %s", l.filenameOut)
		}
		l.outFile = nil
	}
	if err := l.closeInput(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
