package memory_test

import (
	"context"
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/errors"
	"github.com/jmgilman/go/docdir/store/memory"
	"github.com/jmgilman/go/docdir/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (core.Store, storetest.Seeder) {
		s := memory.New()
		return s, s
	})
}

func TestPut_Validation(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	tests := []struct {
		name string
		rec  core.FileRecord
	}{
		{name: "missing category", rec: core.FileRecord{Version: 1, Name: "a"}},
		{name: "negative version", rec: core.FileRecord{Category: "c", Version: -1, Name: "a"}},
		{name: "missing name", rec: core.FileRecord{Category: "c", Version: 1}},
		{name: "nested name", rec: core.FileRecord{Category: "c", Version: 1, Name: "a/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Put(ctx, tt.rec, []byte("x"))
			require.Error(t, err)
			assert.ErrorIs(t, err, fs.ErrInvalid)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
	assert.Equal(t, 0, s.Len())
}

func TestPut_CopiesContent(t *testing.T) {
	s := memory.New()
	content := []byte("abc")

	rec, err := s.Put(context.Background(), core.FileRecord{Category: "c", Name: "f"}, content)
	require.NoError(t, err)
	content[0] = 'z'

	p := make([]byte, 3)
	n, err := s.ReadContent(context.Background(), rec, p, 0)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(p[:n]))
}

func TestInsert_KeepsDuplicates(t *testing.T) {
	s := memory.New()
	ns := core.Namespace{Category: "c", Version: 1}

	s.Insert(core.FileRecord{Category: "c", Version: 1, Name: "dup"}, []byte("a"))
	s.Insert(core.FileRecord{Category: "c", Version: 1, Name: "dup"}, []byte("bb"))

	recs, err := s.Query(context.Background(), core.NameFilter(ns, "dup"))
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestQuery_ReturnsCopies(t *testing.T) {
	s := memory.New()
	ns := core.Namespace{Category: "c", Version: 1}
	_, err := s.Put(context.Background(), core.FileRecord{Category: "c", Version: 1, Name: "f"}, nil)
	require.NoError(t, err)

	recs, err := s.Query(context.Background(), core.NameFilter(ns, "f"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	recs[0].Name = "mutated"

	recs, err = s.Query(context.Background(), core.NameFilter(ns, "f"))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestCancelledContext(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Query(ctx, core.NamespaceFilter(core.Namespace{Category: "c"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))
	assert.False(t, errors.IsRetryable(err))
}

func TestReadContent_NegativeOffset(t *testing.T) {
	s := memory.New()
	rec, err := s.Put(context.Background(), core.FileRecord{Category: "c", Name: "f"}, []byte("abc"))
	require.NoError(t, err)

	_, err = s.ReadContent(context.Background(), rec, make([]byte, 1), -1)
	assert.ErrorIs(t, err, fs.ErrInvalid)

	n, err := s.ReadContent(context.Background(), rec, make([]byte, 5), 1)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)
}
