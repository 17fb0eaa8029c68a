package errs

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	assert.Nil(t, Path("open", "a", nil))

	err := Path("open", "_0.cfs", NotFound("no record"))
	var pe *fs.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "open", pe.Op)
	assert.Equal(t, "_0.cfs", pe.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		sentinel error
	}{
		{name: "not found", err: NotFound("x"), code: errors.CodeNotFound, sentinel: fs.ErrNotExist},
		{name: "exists", err: Exists("x"), code: errors.CodeAlreadyExists, sentinel: fs.ErrExist},
		{name: "unsupported", err: Unsupported("x"), code: errors.CodeNotImplemented, sentinel: core.ErrUnsupported},
		{name: "corrupted", err: Corrupted("x"), code: errors.CodeCorrupted, sentinel: core.ErrCorrupted},
		{name: "closed", err: Closed("x"), code: errors.CodeClosed, sentinel: fs.ErrClosed},
		{name: "invalid", err: Invalid(fmt.Errorf("bad")), code: errors.CodeInvalidInput, sentinel: fs.ErrInvalid},
		{name: "invalid without cause", err: Invalid(nil), code: errors.CodeInvalidInput, sentinel: fs.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, errors.GetCode(tt.err))
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.False(t, errors.IsRetryable(tt.err))
		})
	}
}

func TestStore(t *testing.T) {
	assert.Nil(t, Store("x", nil))

	t.Run("plain error becomes retryable database error", func(t *testing.T) {
		cause := stderrors.New("connection reset")
		err := Store("query", cause)
		assert.Equal(t, errors.CodeDatabase, err.Code())
		assert.True(t, errors.IsRetryable(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("deadline becomes timeout", func(t *testing.T) {
		err := Store("query", fmt.Errorf("wrapped: %w", context.DeadlineExceeded))
		assert.Equal(t, errors.CodeTimeout, err.Code())
	})

	t.Run("cancellation is permanent", func(t *testing.T) {
		err := Store("query", context.Canceled)
		assert.Equal(t, errors.CodeUnavailable, err.Code())
		assert.False(t, errors.IsRetryable(err))
	})

	t.Run("coded errors pass through", func(t *testing.T) {
		inner := NotFound("gone")
		err := Store("delete", &fs.PathError{Op: "delete", Path: "a", Err: inner})
		assert.Equal(t, errors.CodeNotFound, err.Code())
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestUnavailable(t *testing.T) {
	err := Unavailable("ping", stderrors.New("refused"))
	assert.Equal(t, errors.CodeUnavailable, err.Code())
	assert.True(t, errors.IsRetryable(err))
}
