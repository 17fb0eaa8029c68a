package dirfs

import (
	"io/fs"
	"time"
)

// fileInfo implements fs.FileInfo for index files and the root.
type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	mode    fs.FileMode
}

// Name returns the name of the file.
func (fi *fileInfo) Name() string { return fi.name }

// Size returns the length in bytes for regular files.
func (fi *fileInfo) Size() int64 { return fi.size }

// Mode returns the file mode bits. Index files are read-only.
func (fi *fileInfo) Mode() fs.FileMode { return fi.mode }

// ModTime returns the modification time.
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }

// IsDir returns true if this describes a directory.
func (fi *fileInfo) IsDir() bool { return fi.mode&fs.ModeDir != 0 }

// Sys returns the underlying data source (always nil).
func (fi *fileInfo) Sys() interface{} { return nil }

func rootInfo() *fileInfo {
	return &fileInfo{name: ".", mode: fs.ModeDir | 0o555}
}

// dirEntry implements fs.DirEntry for a file of the root. Info is fetched
// on demand, since a listing carries names only.
type dirEntry struct {
	fsys *FS
	name string
}

// Name returns the name of the entry.
func (e *dirEntry) Name() string { return e.name }

// IsDir reports whether the entry describes a directory. The root is flat.
func (e *dirEntry) IsDir() bool { return false }

// Type returns the type bits for the entry.
func (e *dirEntry) Type() fs.FileMode { return 0 }

// Info stats the file.
func (e *dirEntry) Info() (fs.FileInfo, error) { return e.fsys.Stat(e.name) }

// Compile-time interface checks.
var (
	_ fs.FileInfo = (*fileInfo)(nil)
	_ fs.DirEntry = (*dirEntry)(nil)
)
