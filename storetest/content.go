package storetest

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/jmgilman/go/docdir/core"
)

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

// testReadContent tests ranged content reads with io.ReaderAt semantics.
func testReadContent(t *testing.T, store core.Store, seeder Seeder) {
	ctx := context.Background()
	ns := core.Namespace{Category: "content", Version: 1}
	content := []byte("0123456789abcdefghij")
	rec := seed(t, seeder, ns, "data", content)

	tests := []struct {
		name    string
		off     int64
		size    int
		want    string
		wantEOF bool
	}{
		{name: "Full", off: 0, size: len(content), want: string(content)},
		{name: "Prefix", off: 0, size: 4, want: "0123"},
		{name: "Middle", off: 10, size: 6, want: "abcdef"},
		{name: "Tail", off: 16, size: 4, want: "ghij"},
		{name: "PastEnd", off: 16, size: 10, want: "ghij", wantEOF: true},
		{name: "AtEnd", off: int64(len(content)), size: 4, want: "", wantEOF: true},
		{name: "BeyondEnd", off: 100, size: 4, want: "", wantEOF: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := make([]byte, tt.size)
			n, err := store.ReadContent(ctx, rec, p, tt.off)
			if string(p[:n]) != tt.want {
				t.Errorf("ReadContent(off=%d, len=%d): got %q, want %q", tt.off, tt.size, p[:n], tt.want)
			}
			if tt.wantEOF {
				if !isEOF(err) {
					t.Errorf("ReadContent(off=%d, len=%d): got error %v, want io.EOF", tt.off, tt.size, err)
				}
				return
			}
			if err != nil && !isEOF(err) {
				t.Errorf("ReadContent(off=%d, len=%d): got error %v, want nil", tt.off, tt.size, err)
			}
		})
	}

	t.Run("Empty", func(t *testing.T) {
		empty := seed(t, seeder, ns, "empty", nil)
		if empty.Length != 0 {
			t.Errorf("Put(empty): got length %d, want 0", empty.Length)
		}
		n, err := store.ReadContent(ctx, empty, make([]byte, 8), 0)
		if n != 0 || !isEOF(err) {
			t.Errorf("ReadContent(empty): got (%d, %v), want (0, io.EOF)", n, err)
		}
	})

	t.Run("Deleted", func(t *testing.T) {
		gone := seed(t, seeder, ns, "gone", []byte("bytes"))
		if err := store.Delete(ctx, gone); err != nil {
			t.Fatalf("Delete(gone): setup failed: %v", err)
		}
		_, err := store.ReadContent(ctx, gone, make([]byte, 5), 0)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ReadContent(deleted): got error %v, want fs.ErrNotExist", err)
		}
	})
}
