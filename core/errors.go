package core

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotExist is returned when no record matches a required lookup.
	// Re-exported from io/fs for convenience.
	ErrNotExist = fs.ErrNotExist

	// ErrExist is returned when a rename destination is already taken.
	// Re-exported from io/fs for convenience.
	ErrExist = fs.ErrExist

	// ErrClosed is returned when a closed directory or input is used.
	// Re-exported from io/fs for convenience.
	ErrClosed = fs.ErrClosed

	// ErrInvalid is returned for malformed names and namespaces.
	// Re-exported from io/fs for convenience.
	ErrInvalid = fs.ErrInvalid

	// ErrUnsupported is returned when an operation is not supported,
	// most notably any attempt to write new file content.
	ErrUnsupported = errors.New("operation not supported")

	// ErrCorrupted is returned when the store holds more than one record
	// for a single (category, version, name) and strict checking is on.
	ErrCorrupted = errors.New("namespace holds duplicate records")
)
