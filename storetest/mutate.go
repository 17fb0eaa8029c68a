package storetest

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/jmgilman/go/docdir/core"
)

// testDelete tests record removal.
func testDelete(t *testing.T, store core.Store, seeder Seeder) {
	ctx := context.Background()
	ns := core.Namespace{Category: "delete", Version: 1}
	other := core.Namespace{Category: "delete", Version: 2}

	rec := seed(t, seeder, ns, "victim", []byte("data"))
	seed(t, seeder, ns, "survivor", []byte("data"))
	seed(t, seeder, other, "victim", []byte("data"))

	t.Run("Existing", func(t *testing.T) {
		if err := store.Delete(ctx, rec); err != nil {
			t.Fatalf("Delete(victim): got error %v, want nil", err)
		}

		recs, err := store.Query(ctx, core.NamespaceFilter(ns))
		if err != nil {
			t.Fatalf("Query(%s): got error %v, want nil", ns, err)
		}
		if got := names(recs); !equalNames(got, []string{"survivor"}) {
			t.Errorf("Query(%s) after delete: got %v, want [survivor]", ns, got)
		}

		recs, err = store.Query(ctx, core.NameFilter(other, "victim"))
		if err != nil {
			t.Fatalf("Query(%s): got error %v, want nil", other, err)
		}
		if len(recs) != 1 {
			t.Errorf("Query(%s): delete leaked across namespaces, got %d records", other, len(recs))
		}
	})

	t.Run("Missing", func(t *testing.T) {
		err := store.Delete(ctx, rec)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Delete(deleted): got error %v, want fs.ErrNotExist", err)
		}
	})
}

// testUpdate tests persisting renamed and touched records.
func testUpdate(t *testing.T, store core.Store, seeder Seeder) {
	ctx := context.Background()
	ns := core.Namespace{Category: "update", Version: 1}

	t.Run("Rename", func(t *testing.T) {
		content := []byte("renamed content")
		rec := seed(t, seeder, ns, "old", content)

		rec.Name = "new"
		if err := store.Update(ctx, rec); err != nil {
			t.Fatalf("Update(rename): got error %v, want nil", err)
		}

		recs, err := store.Query(ctx, core.NameFilter(ns, "old"))
		if err != nil {
			t.Fatalf("Query(old): got error %v, want nil", err)
		}
		if len(recs) != 0 {
			t.Errorf("Query(old): got %d records after rename, want 0", len(recs))
		}

		recs, err = store.Query(ctx, core.NameFilter(ns, "new"))
		if err != nil {
			t.Fatalf("Query(new): got error %v, want nil", err)
		}
		if len(recs) != 1 {
			t.Fatalf("Query(new): got %d records after rename, want 1", len(recs))
		}
		if recs[0].Length != int64(len(content)) {
			t.Errorf("Query(new): got length %d, want %d", recs[0].Length, len(content))
		}
		if recs[0].ID != rec.ID {
			t.Errorf("Update(rename): record ID %q not reflected, store has %q", rec.ID, recs[0].ID)
		}

		// The updated handle must still address the content.
		p := make([]byte, len(content))
		n, err := store.ReadContent(ctx, rec, p, 0)
		if n != len(p) || (err != nil && !isEOF(err)) {
			t.Fatalf("ReadContent(renamed): got (%d, %v), want (%d, nil)", n, err, len(p))
		}
		if string(p) != string(content) {
			t.Errorf("ReadContent(renamed): got %q, want %q", p, content)
		}
	})

	t.Run("Touch", func(t *testing.T) {
		rec := seed(t, seeder, ns, "touched", []byte("x"))
		touched := time.Date(2025, 1, 2, 3, 4, 5, 678901234, time.UTC)

		rec.LastModified = touched
		if err := store.Update(ctx, rec); err != nil {
			t.Fatalf("Update(touch): got error %v, want nil", err)
		}

		recs, err := store.Query(ctx, core.NameFilter(ns, "touched"))
		if err != nil {
			t.Fatalf("Query(touched): got error %v, want nil", err)
		}
		if len(recs) != 1 {
			t.Fatalf("Query(touched): got %d records, want 1", len(recs))
		}
		if want := core.TruncateTime(touched); !recs[0].LastModified.Equal(want) {
			t.Errorf("Query(touched): got modified %v, want %v", recs[0].LastModified, want)
		}
		if recs[0].Length != 1 {
			t.Errorf("Query(touched): got length %d, want 1", recs[0].Length)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		rec := seed(t, seeder, ns, "vanished", []byte("x"))
		if err := store.Delete(ctx, rec); err != nil {
			t.Fatalf("Delete(vanished): setup failed: %v", err)
		}
		rec.LastModified = time.Now()
		err := store.Update(ctx, rec)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Update(deleted): got error %v, want fs.ErrNotExist", err)
		}
	})
}
