package errors

import (
	stderrors "errors"
	"fmt"
)

// New creates a PlatformError with the default classification for code.
//
// Example:
//
//	err := errors.New(errors.CodeNotImplemented, "directory is read-only")
func New(code ErrorCode, message string) PlatformError {
	return &platformError{
		code:           code,
		classification: defaultClassification(code),
		message:        message,
	}
}

// Newf creates a PlatformError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message. The result unwraps to err.
//
// If err already contains a PlatformError its classification is kept, so a
// retryable store failure stays retryable after being wrapped with a more
// specific code. Returns nil if err is nil.
//
// Example:
//
//	if err := s.client.RemoveObject(ctx, s.bucket, key, opts); err != nil {
//	    return errors.Wrap(err, errors.CodeDatabase, "remove object")
//	}
func Wrap(err error, code ErrorCode, message string) PlatformError {
	if err == nil {
		return nil
	}

	classification := defaultClassification(code)
	var inner PlatformError
	if stderrors.As(err, &inner) {
		classification = inner.Classification()
	}

	return &platformError{
		code:           code,
		classification: classification,
		message:        message,
		cause:          err,
	}
}

// Wrapf wraps err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) PlatformError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}
