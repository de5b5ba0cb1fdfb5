package stream

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/tagarray/go-gta/gta"
)

// TempBuffer holds one array's raw element bytes in an anonymous,
// auto-deleting temporary file, together with a header describing how
// to reinterpret them. It supports random block access to data that
// was only available as a stream. The caller owns the buffer and must
// Close it; the backing file is unlinked at creation, so the storage is
// reclaimed on every exit path including a crash.
type TempBuffer struct {
	hdr *gta.Header
	f   *os.File
}

// BufferData materializes the array described by hdr from the stream's
// current position into a new TempBuffer. The stream is left positioned
// immediately past the consumed data, so the caller can continue
// reading subsequent arrays. The buffer's header matches hdr's element
// layout but is always uncompressed.
func BufferData(hdr *gta.Header, r io.Reader) (*TempBuffer, error) {
	if hdr.Compression() != gta.CompressionNone {
		return nil, gta.ErrUnsupportedCompression
	}
	f, err := os.CreateTemp("", "gta-spill-")
	if err != nil {
		return nil, errors.Wrap(err, "creating temporary buffer")
	}
	// Unlink immediately; the open descriptor keeps the data alive.
	if err := os.Remove(f.Name()); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "unlinking temporary buffer")
	}
	bufHdr := hdr.Clone()
	bufHdr.SetCompression(gta.CompressionNone)
	if err := hdr.CopyData(r, f); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "buffering array data")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "rewinding temporary buffer")
	}
	return &TempBuffer{hdr: bufHdr, f: f}, nil
}

// Header returns the header describing the buffered data. It is owned
// by the buffer; callers wanting to mutate it should Clone it.
func (b *TempBuffer) Header() *gta.Header {
	return b.hdr
}

// File exposes the seekable backing store, positioned at the first
// element byte.
func (b *TempBuffer) File() io.ReadSeeker {
	return b.f
}

// ReadElements reads n elements starting at the given element index
// into buf, which must hold at least n elements. Reads go through
// ReadAt, so they may be issued in any order and do not disturb the
// File position used by sequential readers.
func (b *TempBuffer) ReadElements(index, n uint64, buf []byte) error {
	if index+n < index || index+n > b.hdr.Elements() {
		return gta.ErrRangeExceeded
	}
	es := b.hdr.ElementSize()
	sz := n * es
	if uint64(len(buf)) < sz {
		return errors.Wrapf(gta.ErrSizeMismatch, "%d bytes for %d elements", len(buf), n)
	}
	if sz == 0 {
		return nil
	}
	if _, err := b.f.ReadAt(buf[:sz], int64(index*es)); err != nil {
		return errors.Wrap(err, "reading buffered elements")
	}
	return nil
}

// Close releases the backing store. Closing twice is a no-op.
func (b *TempBuffer) Close() error {
	if b.f == nil {
		return nil
	}
	f := b.f
	b.f = nil
	return f.Close()
}
