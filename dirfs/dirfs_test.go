package dirfs_test

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/directory"
	"github.com/jmgilman/go/docdir/dirfs"
	"github.com/jmgilman/go/docdir/store/memory"
)

var (
	articles = core.Namespace{Category: "articles", Version: 3}
	modTime  = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
)

func newFS(t *testing.T) *dirfs.FS {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	files := map[string][]byte{
		"segments.gen": bytes.Repeat([]byte{'g'}, 128),
		"_0.cfs":       bytes.Repeat([]byte("0123456789"), 410),
		"empty":        nil,
	}
	for name, content := range files {
		_, err := s.Put(ctx, core.FileRecord{
			Category:     articles.Category,
			Version:      articles.Version,
			Name:         name,
			LastModified: modTime,
		}, content)
		require.NoError(t, err)
	}

	d, err := directory.New(s, articles, directory.WithReadBufferSize(64))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return dirfs.New(d)
}

func TestFSConformance(t *testing.T) {
	require.NoError(t, fstest.TestFS(newFS(t), "segments.gen", "_0.cfs", "empty"))
}

func TestStat(t *testing.T) {
	fsys := newFS(t)

	info, err := fs.Stat(fsys, "_0.cfs")
	require.NoError(t, err)
	assert.Equal(t, "_0.cfs", info.Name())
	assert.Equal(t, int64(4100), info.Size())
	assert.False(t, info.IsDir())
	assert.Equal(t, fs.FileMode(0o444), info.Mode())
	assert.True(t, info.ModTime().Equal(modTime))

	root, err := fs.Stat(fsys, ".")
	require.NoError(t, err)
	assert.True(t, root.IsDir())
}

func TestMissingAndInvalid(t *testing.T) {
	fsys := newFS(t)

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "missing file", path: "missing", want: fs.ErrNotExist},
		{name: "nested path", path: "dir/file", want: fs.ErrNotExist},
		{name: "invalid path", path: "/abs", want: fs.ErrInvalid},
		{name: "dot segment", path: "./_0.cfs", want: fs.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fsys.Open(tt.path)
			assert.ErrorIs(t, err, tt.want)

			_, err = fs.Stat(fsys, tt.path)
			assert.ErrorIs(t, err, tt.want)

			_, err = fs.ReadFile(fsys, tt.path)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadDir(t *testing.T) {
	fsys := newFS(t)

	entries, err := fs.ReadDir(fsys, ".")
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
		assert.False(t, e.IsDir())
	}
	assert.Equal(t, []string{"_0.cfs", "empty", "segments.gen"}, names)

	_, err = fs.ReadDir(fsys, "_0.cfs")
	assert.Error(t, err)
}

func TestRootDirPaging(t *testing.T) {
	f, err := newFS(t).Open(".")
	require.NoError(t, err)
	defer f.Close()

	dir, ok := f.(fs.ReadDirFile)
	require.True(t, ok)

	first, err := dir.ReadDir(2)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	rest, err := dir.ReadDir(2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	_, err = dir.ReadDir(2)
	assert.ErrorIs(t, err, io.EOF)

	_, err = f.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestSeekAndReadAt(t *testing.T) {
	f, err := newFS(t).Open("_0.cfs")
	require.NoError(t, err)
	defer f.Close()

	ra, ok := f.(io.ReaderAt)
	require.True(t, ok)
	buf := make([]byte, 5)
	_, err = ra.ReadAt(buf, 1003)
	require.NoError(t, err)
	assert.Equal(t, "34567", string(buf))

	seeker, ok := f.(io.Seeker)
	require.True(t, ok)
	pos, err := seeker.Seek(-3, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(4097), pos)

	tail, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "789", string(tail))
}

func TestHTTPFileServer(t *testing.T) {
	srv := httptest.NewServer(http.FileServer(http.FS(newFS(t))))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/_0.cfs", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=10-14")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "01234", string(body))
}

func TestWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.ReadDir(newFS(t).WithContext(ctx), ".")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
