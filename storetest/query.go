package storetest

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/jmgilman/go/docdir/core"
)

// Fixed modification time used for seeded records. It carries sub-millisecond
// precision on purpose; stores must persist it truncated to milliseconds.
var seedTime = time.Date(2024, 3, 14, 15, 9, 26, 535897932, time.UTC)

// seed puts one record and fails the test on error.
func seed(t *testing.T, s Seeder, ns core.Namespace, name string, content []byte) *core.FileRecord {
	t.Helper()
	rec, err := s.Put(context.Background(), core.FileRecord{
		Category:     ns.Category,
		Version:      ns.Version,
		Name:         name,
		LastModified: seedTime,
	}, content)
	if err != nil {
		t.Fatalf("Put(%s, %q): setup failed: %v", ns, name, err)
	}
	return rec
}

// names returns the sorted names of recs.
func names(recs []*core.FileRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	sort.Strings(out)
	return out
}

func equalNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// testQuery tests namespace and name filtering.
func testQuery(t *testing.T, store core.Store, seeder Seeder) {
	ctx := context.Background()
	ns := core.Namespace{Category: "articles", Version: 3}

	seed(t, seeder, ns, "segments.gen", bytes.Repeat([]byte{'s'}, 128))
	seed(t, seeder, ns, "_0.cfs", bytes.Repeat([]byte{'c'}, 4096))
	seed(t, seeder, core.Namespace{Category: "articles", Version: 2}, "segments.gen", []byte("old"))
	seed(t, seeder, core.Namespace{Category: "products", Version: 3}, "segments.gen", []byte("other"))

	t.Run("Namespace", func(t *testing.T) {
		recs, err := store.Query(ctx, core.NamespaceFilter(ns))
		if err != nil {
			t.Fatalf("Query(%s): got error %v, want nil", ns, err)
		}
		want := []string{"_0.cfs", "segments.gen"}
		if got := names(recs); !equalNames(got, want) {
			t.Errorf("Query(%s): got names %v, want %v", ns, got, want)
		}
		for _, rec := range recs {
			if rec.ID == "" {
				t.Errorf("Query(%s): record %q has empty ID", ns, rec.Name)
			}
			if rec.Category != ns.Category || rec.Version != ns.Version {
				t.Errorf("Query(%s): record %q has namespace %s", ns, rec.Name, rec.Namespace())
			}
		}
	})

	t.Run("Name", func(t *testing.T) {
		recs, err := store.Query(ctx, core.NameFilter(ns, "_0.cfs"))
		if err != nil {
			t.Fatalf("Query(_0.cfs): got error %v, want nil", err)
		}
		if len(recs) != 1 {
			t.Fatalf("Query(_0.cfs): got %d records, want 1", len(recs))
		}
		rec := recs[0]
		if rec.Name != "_0.cfs" {
			t.Errorf("Query(_0.cfs): got name %q", rec.Name)
		}
		if rec.Length != 4096 {
			t.Errorf("Query(_0.cfs): got length %d, want 4096", rec.Length)
		}
		if want := core.TruncateTime(seedTime); !rec.LastModified.Equal(want) {
			t.Errorf("Query(_0.cfs): got modified %v, want %v", rec.LastModified, want)
		}
	})

	t.Run("MissingName", func(t *testing.T) {
		recs, err := store.Query(ctx, core.NameFilter(ns, "missing"))
		if err != nil {
			t.Fatalf("Query(missing): got error %v, want nil", err)
		}
		if len(recs) != 0 {
			t.Errorf("Query(missing): got %d records, want 0", len(recs))
		}
	})

	t.Run("EmptyNamespace", func(t *testing.T) {
		empty := core.Namespace{Category: "articles", Version: 99}
		recs, err := store.Query(ctx, core.NamespaceFilter(empty))
		if err != nil {
			t.Fatalf("Query(%s): got error %v, want nil", empty, err)
		}
		if len(recs) != 0 {
			t.Errorf("Query(%s): got %d records, want 0", empty, len(recs))
		}
	})

	t.Run("VersionIsolation", func(t *testing.T) {
		old := core.Namespace{Category: "articles", Version: 2}
		recs, err := store.Query(ctx, core.NameFilter(old, "segments.gen"))
		if err != nil {
			t.Fatalf("Query(%s): got error %v, want nil", old, err)
		}
		if len(recs) != 1 || recs[0].Length != 3 {
			t.Errorf("Query(%s): got %v, want one record of length 3", old, recs)
		}
	})
}

// testPut tests that Put replaces records by name.
func testPut(t *testing.T, store core.Store, seeder Seeder) {
	ctx := context.Background()
	ns := core.Namespace{Category: "put", Version: 1}

	first := seed(t, seeder, ns, "file", []byte("first"))
	if first.Length != 5 {
		t.Errorf("Put(): got length %d, want 5", first.Length)
	}
	seed(t, seeder, ns, "file", []byte("second version"))

	recs, err := store.Query(ctx, core.NameFilter(ns, "file"))
	if err != nil {
		t.Fatalf("Query(file): got error %v, want nil", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Query(file): got %d records after replace, want 1", len(recs))
	}
	if recs[0].Length != int64(len("second version")) {
		t.Errorf("Query(file): got length %d, want %d", recs[0].Length, len("second version"))
	}

	p := make([]byte, recs[0].Length)
	n, err := store.ReadContent(ctx, recs[0], p, 0)
	if n != len(p) || (err != nil && !isEOF(err)) {
		t.Fatalf("ReadContent(): got (%d, %v), want (%d, nil)", n, err, len(p))
	}
	if string(p) != "second version" {
		t.Errorf("ReadContent(): got %q, want %q", p, "second version")
	}
}
