package badger_test

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/directory"
	"github.com/jmgilman/go/docdir/store/badger"
	"github.com/jmgilman/go/docdir/storetest"
)

// newTestStore creates an in-memory badger store.
func newTestStore(t *testing.T) *badger.Store {
	t.Helper()
	s, err := badger.Open(badger.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (core.Store, storetest.Seeder) {
		s := newTestStore(t)
		return s, s
	})
}

func TestOpen_RequiresDir(t *testing.T) {
	_, err := badger.Open(badger.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	ns := core.Namespace{Category: "articles", Version: 3}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := badger.Open(badger.Options{Dir: dir, Logger: logger})
	require.NoError(t, err)
	_, err = s.Put(ctx, core.FileRecord{Category: ns.Category, Version: ns.Version, Name: "segments.gen"}, []byte("gen"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Contains(t, logs.String(), "component=badger")

	// Records survive a reopen.
	s, err = badger.Open(badger.Options{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	recs, err := s.Query(ctx, core.NamespaceFilter(ns))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "segments.gen", recs[0].Name)
	assert.Equal(t, int64(3), recs[0].Length)
}

func TestDirectoryOverBadger(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	ns := core.Namespace{Category: "articles", Version: 3}

	_, err := s.Put(ctx, core.FileRecord{Category: ns.Category, Version: ns.Version, Name: "_0.cfs"}, bytes.Repeat([]byte("x"), 4096))
	require.NoError(t, err)

	d, err := directory.New(s, ns)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.RenameFile(ctx, "_0.cfs", "_1.cfs"))
	length, err := d.FileLength(ctx, "_1.cfs")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), length)

	in, err := d.OpenInput(ctx, "_1.cfs")
	require.NoError(t, err)
	defer in.Close()

	buf := make([]byte, 10)
	n, err := in.ReadAt(buf, 4090)
	assert.Equal(t, 6, n)
	assert.Error(t, err)
}
