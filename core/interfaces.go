package core

import (
	"context"
	"io"
	"time"
)

// Store is the persistence collaborator a directory borrows.
//
// Implementations must be safe for concurrent use. They own connection and
// transaction lifecycles; a directory never closes its store.
type Store interface {
	// Query returns every record matching the filter, in no particular
	// order. An empty result is not an error.
	Query(ctx context.Context, f Filter) ([]*FileRecord, error)

	// Delete removes the record and its content. Deleting a record that no
	// longer exists returns an error wrapping ErrNotExist.
	Delete(ctx context.Context, rec *FileRecord) error

	// Update persists the Name and LastModified fields of a record
	// previously returned by Query. Other fields are ignored.
	//
	// Stores that key records by name may rewrite rec.ID.
	Update(ctx context.Context, rec *FileRecord) error

	// ReadContent reads up to len(p) bytes of the record's content starting
	// at off. It follows io.ReaderAt semantics: a short read returns io.EOF.
	ReadContent(ctx context.Context, rec *FileRecord, p []byte, off int64) (int, error)
}

// Directory is the surface a search engine consumes: a flat, byte-addressable
// file collection scoped to one Namespace.
type Directory interface {
	// List returns the names of every file in the namespace.
	// Callers must not rely on the order.
	List(ctx context.Context) ([]string, error)

	// FileExists reports whether a file called name exists.
	FileExists(ctx context.Context, name string) (bool, error)

	// FileLength returns the content length of name.
	FileLength(ctx context.Context, name string) (int64, error)

	// FileModified returns the last modification time of name.
	FileModified(ctx context.Context, name string) (time.Time, error)

	// DeleteFile removes name. Deleting a missing file is not an error.
	DeleteFile(ctx context.Context, name string) error

	// RenameFile renames from to to. Length and content are unchanged.
	RenameFile(ctx context.Context, from, to string) error

	// TouchFile sets the modification time of name to now.
	TouchFile(ctx context.Context, name string) error

	// OpenInput opens name for reading.
	OpenInput(ctx context.Context, name string) (Input, error)

	// CreateOutput opens name for writing. Read-only directories always
	// return an error wrapping ErrUnsupported.
	CreateOutput(ctx context.Context, name string) (Output, error)

	// Close releases directory-held resources.
	Close() error
}

// Input is a random-access reader over one file's content.
//
// Reads are bounded by Length; reading at or past it returns io.EOF.
type Input interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer

	// Name returns the file name the input was opened with.
	Name() string

	// Length returns the declared content length.
	Length() int64

	// Clone returns an independent input positioned at the same offset.
	// Closing the clone does not affect the original.
	Clone() Input
}

// Output is a writable file handle.
type Output interface {
	io.WriteCloser

	// Name returns the file name the output was created with.
	Name() string
}
