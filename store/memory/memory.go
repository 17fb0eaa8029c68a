// Package memory provides an in-process core.Store.
//
// It keeps records and content in maps guarded by a mutex. It is used by
// tests and by programs that embed a small index without a database.
package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/internal/errs"
)

type entry struct {
	rec     core.FileRecord
	content []byte
}

// Store is an in-memory core.Store. The zero value is not usable; call New.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry // by record ID
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Put creates or replaces the record for (category, version, name) and
// stores content as its data. Length is taken from content. A zero
// LastModified is left zero. The stored record is returned.
func (s *Store) Put(ctx context.Context, rec core.FileRecord, content []byte) (*core.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Store("put record", err)
	}
	if err := rec.Namespace().Validate(); err != nil {
		return nil, errs.Invalid(err)
	}
	if err := core.ValidateName(rec.Name); err != nil {
		return nil, errs.Invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := core.NameFilter(rec.Namespace(), rec.Name)
	for id, e := range s.entries {
		if f.Matches(&e.rec) {
			delete(s.entries, id)
		}
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Length = int64(len(content))
	if !rec.LastModified.IsZero() {
		rec.LastModified = core.TruncateTime(rec.LastModified)
	}

	data := make([]byte, len(content))
	copy(data, content)
	s.entries[rec.ID] = &entry{rec: rec, content: data}

	return rec.Clone(), nil
}

// Insert adds rec as a new record without replacing records of the same
// name. It exists to reproduce namespaces holding duplicate names.
func (s *Store) Insert(rec core.FileRecord, content []byte) *core.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Length = int64(len(content))
	s.entries[rec.ID] = &entry{rec: rec, content: append([]byte(nil), content...)}
	return rec.Clone()
}

// Len returns the number of records across all namespaces.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Query returns copies of the records matching f.
func (s *Store) Query(ctx context.Context, f core.Filter) ([]*core.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Store("query records", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.FileRecord
	for _, e := range s.entries {
		if f.Matches(&e.rec) {
			out = append(out, e.rec.Clone())
		}
	}
	return out, nil
}

// Delete removes rec and its content.
func (s *Store) Delete(ctx context.Context, rec *core.FileRecord) error {
	if err := ctx.Err(); err != nil {
		return errs.Store("delete record", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[rec.ID]; !ok {
		return errs.NotFound(fmt.Sprintf("record %s does not exist", rec.ID))
	}
	delete(s.entries, rec.ID)
	return nil
}

// Update persists rec's Name and LastModified.
func (s *Store) Update(ctx context.Context, rec *core.FileRecord) error {
	if err := ctx.Err(); err != nil {
		return errs.Store("update record", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[rec.ID]
	if !ok {
		return errs.NotFound(fmt.Sprintf("record %s does not exist", rec.ID))
	}
	e.rec.Name = rec.Name
	e.rec.LastModified = core.TruncateTime(rec.LastModified)
	return nil
}

// ReadContent copies content of rec starting at off into p.
func (s *Store) ReadContent(ctx context.Context, rec *core.FileRecord, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errs.Store("read content", err)
	}
	if off < 0 {
		return 0, errs.Invalid(fmt.Errorf("negative offset %d", off))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[rec.ID]
	if !ok {
		return 0, errs.NotFound(fmt.Sprintf("content of record %s does not exist", rec.ID))
	}
	if off >= int64(len(e.content)) {
		return 0, io.EOF
	}
	n := copy(p, e.content[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Compile-time interface check.
var _ core.Store = (*Store)(nil)
