// Package dirfs exposes a core.Directory as an io/fs file system.
//
// The root "." is the only directory and holds every file of the
// directory's namespace. Files opened through the adapter implement
// io.Seeker and io.ReaderAt, so standard tooling like fs.WalkDir, io.Copy
// and http.FileServer can read an index generation directly.
//
// The adapter is read-only by construction: io/fs has no write operations.
package dirfs

import (
	"context"
	"io"
	"io/fs"
	"sort"

	"github.com/jmgilman/go/docdir/core"
)

// FS adapts a core.Directory to fs.FS, fs.ReadDirFS, fs.StatFS and
// fs.ReadFileFS.
type FS struct {
	dir core.Directory
	ctx context.Context
}

// New returns an FS over dir. Calls made through it use
// context.Background(); see WithContext.
func New(dir core.Directory) *FS {
	return &FS{dir: dir, ctx: context.Background()}
}

// WithContext returns a copy of the FS whose directory calls use ctx.
func (f *FS) WithContext(ctx context.Context) *FS {
	return &FS{dir: f.dir, ctx: ctx}
}

// checkName validates name and reports whether it names the root.
func checkName(op, name string) (root bool, err error) {
	if !fs.ValidPath(name) {
		return false, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return true, nil
	}
	if err := core.ValidateName(name); err != nil {
		// Nested paths cannot exist in a flat directory.
		return false, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return false, nil
}

// Open opens the named file or the root directory.
func (f *FS) Open(name string) (fs.File, error) {
	root, err := checkName("open", name)
	if err != nil {
		return nil, err
	}
	if root {
		return &rootDir{fsys: f}, nil
	}

	in, err := f.dir.OpenInput(f.ctx, name)
	if err != nil {
		return nil, err
	}
	return &file{fsys: f, Input: in}, nil
}

// Stat returns file information for the named file or the root.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	root, err := checkName("stat", name)
	if err != nil {
		return nil, err
	}
	if root {
		return rootInfo(), nil
	}
	return f.stat(name)
}

func (f *FS) stat(name string) (*fileInfo, error) {
	size, err := f.dir.FileLength(f.ctx, name)
	if err != nil {
		return nil, err
	}
	modTime, err := f.dir.FileModified(f.ctx, name)
	if err != nil {
		return nil, err
	}
	return &fileInfo{name: name, size: size, modTime: modTime, mode: 0o444}, nil
}

// ReadDir lists the root directory, sorted by name.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	root, err := checkName("readdir", name)
	if err != nil {
		return nil, err
	}
	if !root {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errNotDir}
	}
	return f.entries()
}

func (f *FS) entries() ([]fs.DirEntry, error) {
	names, err := f.dir.List(f.ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	entries := make([]fs.DirEntry, len(names))
	for i, name := range names {
		entries[i] = &dirEntry{fsys: f, name: name}
	}
	return entries, nil
}

// ReadFile reads the named file in full.
func (f *FS) ReadFile(name string) ([]byte, error) {
	root, err := checkName("readfile", name)
	if err != nil {
		return nil, err
	}
	if root {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: errIsDir}
	}

	in, err := f.dir.OpenInput(f.ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = in.Close()
	}()

	data := make([]byte, in.Length())
	if _, err := io.ReadFull(in, data); err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	return data, nil
}

// file is an open index file. Read, Seek, ReadAt and Close come from the
// embedded core.Input.
type file struct {
	fsys *FS
	core.Input
}

// Stat returns the file's current information.
func (f *file) Stat() (fs.FileInfo, error) {
	return f.fsys.stat(f.Name())
}

// rootDir is the open root directory.
type rootDir struct {
	fsys    *FS
	entries []fs.DirEntry
	loaded  bool
	offset  int
	closed  bool
}

// Stat returns the root's information.
func (d *rootDir) Stat() (fs.FileInfo, error) {
	return rootInfo(), nil
}

// Read fails: the root is a directory.
func (d *rootDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: ".", Err: errIsDir}
}

// ReadDir reads directory entries following fs.ReadDirFile semantics.
func (d *rootDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.closed {
		return nil, &fs.PathError{Op: "readdir", Path: ".", Err: fs.ErrClosed}
	}
	if !d.loaded {
		entries, err := d.fsys.entries()
		if err != nil {
			return nil, err
		}
		d.entries = entries
		d.loaded = true
	}

	remaining := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return remaining, nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if n > len(remaining) {
		n = len(remaining)
	}
	d.offset += n
	return remaining[:n], nil
}

// Close marks the directory closed.
func (d *rootDir) Close() error {
	d.closed = true
	return nil
}

type dirfsError string

func (e dirfsError) Error() string { return string(e) }

const (
	errIsDir  = dirfsError("is a directory")
	errNotDir = dirfsError("not a directory")
)

// Compile-time interface checks.
var (
	_ fs.FS          = (*FS)(nil)
	_ fs.ReadDirFS   = (*FS)(nil)
	_ fs.StatFS      = (*FS)(nil)
	_ fs.ReadFileFS  = (*FS)(nil)
	_ fs.ReadDirFile = (*rootDir)(nil)
	_ io.Seeker      = (*file)(nil)
	_ io.ReaderAt    = (*file)(nil)
)
