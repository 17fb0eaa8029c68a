// Package input provides a buffered, random-access core.Input over the
// content of a single file record.
package input

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/internal/errs"
)

// DefaultBufferSize is the read-ahead used when none is configured.
const DefaultBufferSize = 16 * 1024

// ContentReader reads ranges of a record's content. core.Store satisfies it.
type ContentReader interface {
	ReadContent(ctx context.Context, rec *core.FileRecord, p []byte, off int64) (int, error)
}

// Reader implements core.Input. Sequential reads go through a read-ahead
// buffer refilled with one ReadContent call; ReadAt goes straight to the
// store and does not move the read position.
//
// A Reader is not safe for concurrent use. Use Clone to read the same file
// from several goroutines.
type Reader struct {
	src  ContentReader
	rec  *core.FileRecord
	size int // buffer capacity

	buf      []byte
	bufStart int64 // file offset of buf[0]
	pos      int64
	closed   bool
}

// New returns a Reader over rec. bufferSize <= 0 selects DefaultBufferSize.
// The record is copied, so later changes to rec do not affect the reader.
func New(src ContentReader, rec *core.FileRecord, bufferSize int) *Reader {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Reader{
		src:  src,
		rec:  rec.Clone(),
		size: bufferSize,
	}
}

// Name returns the record's file name.
func (r *Reader) Name() string {
	return r.rec.Name
}

// Length returns the record's declared content length.
func (r *Reader) Length() int64 {
	return r.rec.Length
}

// Read reads up to len(p) bytes from the current position.
// nolint:contextcheck // io.Reader cannot accept a context
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, errs.Path("read", r.Name(), errs.Closed("input is closed"))
	}
	if len(p) == 0 {
		return 0, nil
	}
	if r.pos >= r.rec.Length {
		return 0, io.EOF
	}

	// Serve from the buffer when the position falls inside it.
	if r.pos >= r.bufStart && r.pos < r.bufStart+int64(len(r.buf)) {
		n := copy(p, r.buf[r.pos-r.bufStart:])
		r.pos += int64(n)
		return n, nil
	}

	// Large reads bypass the buffer.
	if len(p) >= r.size {
		n, err := r.readRange(p, r.pos)
		r.pos += int64(n)
		if n > 0 && errors.Is(err, io.EOF) {
			err = nil
		}
		return n, err
	}

	if err := r.fill(); err != nil {
		return 0, err
	}
	n := copy(p, r.buf)
	r.pos += int64(n)
	return n, nil
}

// fill loads the buffer starting at the current position.
func (r *Reader) fill() error {
	if cap(r.buf) < r.size {
		r.buf = make([]byte, r.size)
	}
	want := int64(r.size)
	if remaining := r.rec.Length - r.pos; remaining < want {
		want = remaining
	}
	r.buf = r.buf[:want]

	n, err := r.readRange(r.buf, r.pos)
	r.buf = r.buf[:n]
	r.bufStart = r.pos
	if n > 0 {
		return nil
	}
	if err == nil {
		err = io.EOF
	}
	return err
}

// ReadAt reads len(p) bytes starting at off without moving the position.
// nolint:contextcheck // io.ReaderAt cannot accept a context
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, errs.Path("readat", r.Name(), errs.Closed("input is closed"))
	}
	if off < 0 {
		return 0, errs.Path("readat", r.Name(), errs.Invalid(fmt.Errorf("negative offset %d", off)))
	}
	return r.readRange(p, off)
}

// readRange reads p at off, clamped to the declared length. A full read up
// to the declared end of file returns io.EOF if p extended past it.
func (r *Reader) readRange(p []byte, off int64) (int, error) {
	if off >= r.rec.Length {
		return 0, io.EOF
	}
	want := len(p)
	truncated := false
	if remaining := r.rec.Length - off; int64(want) > remaining {
		want = int(remaining)
		truncated = true
	}

	n, err := r.src.ReadContent(context.Background(), r.rec, p[:want], off)
	switch {
	case n == want && (err == nil || errors.Is(err, io.EOF)):
		if truncated {
			return n, io.EOF
		}
		return n, nil
	case err == nil || errors.Is(err, io.EOF):
		// The store holds less content than the record declares.
		return n, errs.Path("read", r.Name(), errs.Corrupted(
			fmt.Sprintf("content ends at %d, record declares %d bytes", off+int64(n), r.rec.Length)))
	default:
		return n, errs.Path("read", r.Name(), errs.Store("read content", err))
	}
}

// Seek sets the position for the next Read. Seeking past the end is allowed;
// a following Read returns io.EOF.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, errs.Path("seek", r.Name(), errs.Closed("input is closed"))
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.pos + offset
	case io.SeekEnd:
		abs = r.rec.Length + offset
	default:
		return 0, errs.Path("seek", r.Name(), errs.Invalid(fmt.Errorf("invalid whence %d", whence)))
	}
	if abs < 0 {
		return 0, errs.Path("seek", r.Name(), errs.Invalid(fmt.Errorf("negative position %d", abs)))
	}
	r.pos = abs
	return abs, nil
}

// Clone returns an independent reader at the same position.
func (r *Reader) Clone() core.Input {
	c := New(r.src, r.rec, r.size)
	c.pos = r.pos
	c.closed = r.closed
	return c
}

// Close releases the buffer. Further calls fail with fs.ErrClosed.
// Close is idempotent.
func (r *Reader) Close() error {
	r.closed = true
	r.buf = nil
	return nil
}

// Compile-time interface check.
var _ core.Input = (*Reader)(nil)
