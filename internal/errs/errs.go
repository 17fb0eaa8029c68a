// Package errs builds the errors docdir packages return.
//
// Each constructor pairs a docdir/errors code with the io/fs sentinel callers
// test with errors.Is. Path wraps the result in an *fs.PathError naming the
// operation and file.
package errs

import (
	"context"
	"io/fs"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/errors"
)

// Path wraps err in an *fs.PathError. Returns nil if err is nil.
func Path(op, name string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: name, Err: err}
}

// NotFound reports that no record matched.
func NotFound(msg string) errors.PlatformError {
	return errors.Wrap(core.ErrNotExist, errors.CodeNotFound, msg)
}

// Exists reports that a name is already taken.
func Exists(msg string) errors.PlatformError {
	return errors.Wrap(core.ErrExist, errors.CodeAlreadyExists, msg)
}

// Unsupported reports an operation the directory refuses.
func Unsupported(msg string) errors.PlatformError {
	return errors.Wrap(core.ErrUnsupported, errors.CodeNotImplemented, msg)
}

// Corrupted reports a namespace invariant violation found in the store.
func Corrupted(msg string) errors.PlatformError {
	return errors.Wrap(core.ErrCorrupted, errors.CodeCorrupted, msg)
}

// Closed reports use after Close.
func Closed(msg string) errors.PlatformError {
	return errors.Wrap(core.ErrClosed, errors.CodeClosed, msg)
}

// Invalid reports a malformed argument. cause, if non-nil, describes why.
func Invalid(cause error) errors.PlatformError {
	msg := "invalid argument"
	if cause != nil {
		msg = cause.Error()
	}
	return errors.Wrap(core.ErrInvalid, errors.CodeInvalidInput, msg)
}

// Store classifies an error returned by a store backend.
//
// Errors that already carry a docdir code pass through unchanged. Deadline
// expiry becomes CodeTimeout and cancellation stays a permanent
// CodeUnavailable, since retrying a cancelled call is the caller's choice.
// Everything else is a retryable CodeDatabase failure.
func Store(msg string, err error) errors.PlatformError {
	if err == nil {
		return nil
	}
	var pe errors.PlatformError
	if errors.As(err, &pe) {
		return pe
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(err, errors.CodeTimeout, msg)
	case errors.Is(err, context.Canceled):
		return errors.WithClassification(
			errors.Wrap(err, errors.CodeUnavailable, msg),
			errors.ClassificationPermanent,
		)
	default:
		return errors.Wrap(err, errors.CodeDatabase, msg)
	}
}

// Unavailable reports that the store could not be reached.
func Unavailable(msg string, err error) errors.PlatformError {
	return errors.Wrap(err, errors.CodeUnavailable, msg)
}
