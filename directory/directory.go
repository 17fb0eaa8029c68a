// Package directory implements a read-only, versioned core.Directory over a
// core.Store.
//
// A Directory is bound to one namespace (category and version) for its whole
// lifetime. It keeps a local cache of record handles:
//
//   - The first List loads every record of the namespace and marks the cache
//     populated. Later List calls answer from the cache without querying,
//     so files added to the namespace by another process stay invisible
//     until a new Directory is created. Index generations are immutable once
//     built, which makes this snapshot safe.
//   - OpenInput consults the cache, and caches the record on a miss.
//   - FileExists, FileLength and FileModified always query the store.
//   - DeleteFile, RenameFile and TouchFile update the cache to match the
//     mutation they issue.
//
// Writing new files is rejected: CreateOutput always fails with
// core.ErrUnsupported. Index generations are written out of band by the
// indexing pipeline through a store's own writer.
package directory

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/errors"
	"github.com/jmgilman/go/docdir/input"
	"github.com/jmgilman/go/docdir/internal/errs"
)

// Directory is a core.Directory scoped to one namespace.
//
// Operations are synchronous and serialized; a Directory may be shared
// between goroutines but gains no parallelism from it.
type Directory struct {
	store  core.Store
	ns     core.Namespace
	opts   options
	logger *slog.Logger

	mu     sync.Mutex
	cache  *recordCache
	closed bool
}

// New creates a Directory over the namespace ns of store.
// The store is borrowed: Close does not close it.
func New(store core.Store, ns core.Namespace, opts ...Option) (*Directory, error) {
	if store == nil {
		return nil, errs.Invalid(fmt.Errorf("store is required"))
	}
	if err := ns.Validate(); err != nil {
		return nil, errs.Invalid(fmt.Errorf("invalid namespace: %w", err))
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Directory{
		store:  store,
		ns:     ns,
		opts:   o,
		logger: o.logger.With("category", ns.Category, "version", ns.Version),
		cache:  newRecordCache(),
	}, nil
}

// Namespace returns the namespace the directory is bound to.
func (d *Directory) Namespace() core.Namespace {
	return d.ns
}

// List returns the names of every file in the namespace, sorted.
//
// Only the first call queries the store. Its result is cached and returned
// by every later call, even if the namespace changes remotely.
func (d *Directory) List(ctx context.Context) (names []string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.observe(OpList, &err)

	if err := d.checkOpen(OpList, "."); err != nil {
		return nil, err
	}

	hit := d.cache.populated()
	d.opts.observer.ObserveCache(OpList, hit)
	if hit {
		d.logger.Debug("listing served from cache", "files", len(d.cache.entries))
		return d.cache.names(), nil
	}

	recs, err := d.query(ctx, OpList, ".", core.NamespaceFilter(d.ns))
	if err != nil {
		return nil, err
	}
	unique, err := d.dedupe(recs)
	if err != nil {
		return nil, err
	}

	d.cache.populate(unique)
	d.logger.Debug("listing cached", "files", len(unique))
	return d.cache.names(), nil
}

// FileExists reports whether name exists. It always queries the store and
// never changes the cache.
func (d *Directory) FileExists(ctx context.Context, name string) (exists bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.observe(OpExists, &err)

	if err := d.checkName(OpExists, name); err != nil {
		return false, err
	}

	recs, err := d.query(ctx, OpExists, name, core.NameFilter(d.ns, name))
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

// FileLength returns the content length of name.
func (d *Directory) FileLength(ctx context.Context, name string) (length int64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.observe(OpLength, &err)

	rec, err := d.lookup(ctx, OpLength, name)
	if err != nil {
		return 0, err
	}
	return rec.Length, nil
}

// FileModified returns the last modification time of name.
func (d *Directory) FileModified(ctx context.Context, name string) (modified time.Time, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.observe(OpModified, &err)

	rec, err := d.lookup(ctx, OpModified, name)
	if err != nil {
		return time.Time{}, err
	}
	return rec.LastModified, nil
}

// DeleteFile deletes every record called name and evicts it from the cache.
// Deleting a missing file is a no-op.
func (d *Directory) DeleteFile(ctx context.Context, name string) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.observe(OpDelete, &err)

	if err := d.checkName(OpDelete, name); err != nil {
		return err
	}

	recs, err := d.query(ctx, OpDelete, name, core.NameFilter(d.ns, name))
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		d.logger.Debug("delete of missing file", "file", name)
		return nil
	}

	// Whatever happens below, the cached handle may point at a deleted record.
	defer d.cache.evict(name)

	for _, rec := range recs {
		err := d.timed(OpDelete, func() error { return d.store.Delete(ctx, rec) })
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return d.fail(OpDelete, name, errs.Store("delete record", err))
		}
	}
	d.logger.Debug("file deleted", "file", name, "records", len(recs))
	return nil
}

// RenameFile renames from to to.
//
// It fails with core.ErrNotExist if from is missing and, unless
// WithRenameOverwrite(true) was given, with core.ErrExist if to is taken.
// Renaming a file to its own name is a no-op.
func (d *Directory) RenameFile(ctx context.Context, from, to string) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.observe(OpRename, &err)

	if err := d.checkName(OpRename, to); err != nil {
		return err
	}
	rec, err := d.lookup(ctx, OpRename, from)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}

	if !d.opts.allowOverwrite {
		taken, err := d.query(ctx, OpRename, to, core.NameFilter(d.ns, to))
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return d.fail(OpRename, to, errs.Exists(fmt.Sprintf("cannot rename %q: %q already exists", from, to)))
		}
	}

	updated := rec.Clone()
	updated.Name = to
	if err := d.timed(OpRename, func() error { return d.store.Update(ctx, updated) }); err != nil {
		return d.fail(OpRename, from, errs.Store("update record", err))
	}

	d.cache.evict(from)
	d.cache.put(updated)
	d.logger.Debug("file renamed", "file", from, "to", to)
	return nil
}

// TouchFile sets the modification time of name to the current time.
func (d *Directory) TouchFile(ctx context.Context, name string) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.observe(OpTouch, &err)

	rec, err := d.lookup(ctx, OpTouch, name)
	if err != nil {
		return err
	}

	updated := rec.Clone()
	updated.LastModified = core.TruncateTime(d.opts.clock())
	if err := d.timed(OpTouch, func() error { return d.store.Update(ctx, updated) }); err != nil {
		return d.fail(OpTouch, name, errs.Store("update record", err))
	}

	d.cache.put(updated)
	return nil
}

// OpenInput opens name for reading. The cached record is used when present;
// otherwise the store is queried and the record cached.
func (d *Directory) OpenInput(ctx context.Context, name string) (in core.Input, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.observe(OpOpen, &err)

	if err := d.checkName(OpOpen, name); err != nil {
		return nil, err
	}

	rec, hit := d.cache.get(name)
	d.opts.observer.ObserveCache(OpOpen, hit)
	if !hit {
		recs, err := d.query(ctx, OpOpen, name, core.NameFilter(d.ns, name))
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			d.logger.Warn("failed to fetch file, not exist", "file", name)
		}
		rec, err = d.single(OpOpen, name, recs)
		if err != nil {
			return nil, err
		}
		d.cache.put(rec)
	}

	return input.New(d.store, rec, d.opts.bufferSize), nil
}

// CreateOutput always fails: the directory is read-only.
func (d *Directory) CreateOutput(_ context.Context, name string) (out core.Output, err error) {
	defer d.observe(OpCreate, &err)

	d.logger.Warn("refusing to create output on read-only directory", "file", name)
	return nil, d.fail(OpCreate, name, errs.Unsupported("directory is read-only"))
}

// Close drops the cache. Later operations fail with fs.ErrClosed.
// Close is idempotent and never touches the store.
func (d *Directory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.cache.reset()
	return nil
}

// lookup returns the single record called name.
func (d *Directory) lookup(ctx context.Context, op, name string) (*core.FileRecord, error) {
	if err := d.checkName(op, name); err != nil {
		return nil, err
	}
	recs, err := d.query(ctx, op, name, core.NameFilter(d.ns, name))
	if err != nil {
		return nil, err
	}
	return d.single(op, name, recs)
}

// single applies the result-count policy of single-record lookups.
func (d *Directory) single(op, name string, recs []*core.FileRecord) (*core.FileRecord, error) {
	switch len(recs) {
	case 0:
		return nil, d.fail(op, name, errs.NotFound(fmt.Sprintf("no file %q in %s", name, d.ns)))
	case 1:
		return recs[0], nil
	}

	if d.opts.strict {
		return nil, d.fail(op, name, errs.Corrupted(fmt.Sprintf("%d records named %q in %s", len(recs), name, d.ns)))
	}
	d.logger.Warn("duplicate records for file, using first", "file", name, "records", len(recs), "op", op)
	return recs[0], nil
}

// dedupe keeps one record per name from a listing, applying the same policy
// as single.
func (d *Directory) dedupe(recs []*core.FileRecord) ([]*core.FileRecord, error) {
	seen := make(map[string]int, len(recs))
	unique := make([]*core.FileRecord, 0, len(recs))
	for _, rec := range recs {
		seen[rec.Name]++
		if seen[rec.Name] == 1 {
			unique = append(unique, rec)
		}
	}
	for name, n := range seen {
		if n == 1 {
			continue
		}
		if d.opts.strict {
			return nil, d.fail(OpList, name, errs.Corrupted(fmt.Sprintf("%d records named %q in %s", n, name, d.ns)))
		}
		d.logger.Warn("duplicate records for file, using first", "file", name, "records", n, "op", OpList)
	}
	return unique, nil
}

// query runs one filtered store query and classifies its error.
func (d *Directory) query(ctx context.Context, op, name string, f core.Filter) ([]*core.FileRecord, error) {
	var recs []*core.FileRecord
	err := d.timed(op, func() error {
		var err error
		recs, err = d.store.Query(ctx, f)
		return err
	})
	if err != nil {
		return nil, d.fail(op, name, errs.Store("query "+d.ns.String(), err))
	}
	return recs, nil
}

// timed runs fn and reports its duration to the observer.
func (d *Directory) timed(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	d.opts.observer.ObserveStore(op, time.Since(start), err)
	return err
}

func (d *Directory) checkOpen(op, name string) error {
	if d.closed {
		return d.fail(op, name, errs.Closed("directory is closed"))
	}
	return nil
}

func (d *Directory) checkName(op, name string) error {
	if err := d.checkOpen(op, name); err != nil {
		return err
	}
	if err := core.ValidateName(name); err != nil {
		return d.fail(op, name, errs.Invalid(err))
	}
	return nil
}

// fail attaches the namespace to err and wraps it in an *fs.PathError.
func (d *Directory) fail(op, name string, err errors.PlatformError) error {
	return errs.Path(op, name, errors.WithContextMap(err, map[string]interface{}{
		"category": d.ns.Category,
		"version":  d.ns.Version,
	}))
}

func (d *Directory) observe(op string, err *error) {
	d.opts.observer.ObserveOperation(op, *err)
}

// Compile-time interface check.
var _ core.Directory = (*Directory)(nil)
