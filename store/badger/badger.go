// Package badger provides a core.Store backed by an embedded BadgerDB.
//
// Records are msgpack-encoded under
//
//	rec/<category>/<version>/<id>
//
// and content is stored whole under data/<id>. A namespace query is a
// prefix scan; name filters are applied while scanning.
package badger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/internal/errs"
)

// Options configures the store.
type Options struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool

	// Logger receives badger's own log output. Debug and info messages are
	// logged at debug level. If nil, badger output is discarded.
	Logger *slog.Logger
}

// Store is a core.Store over a BadgerDB database it owns.
type Store struct {
	db *badger.DB
}

// record is the persisted form of core.FileRecord. The namespace lives in
// the key.
type record struct {
	ID       string `msgpack:"id"`
	Name     string `msgpack:"name"`
	Length   int64  `msgpack:"length"`
	Modified int64  `msgpack:"mtime"` // unix millis
}

// Open opens or creates the database described by opts.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errs.Invalid(errors.New("badger: Options.Dir is required for on-disk mode"))
	}

	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dbOpts = dbOpts.WithLogger(slogLogger{logger: logger.With("component", "badger")})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, errs.Unavailable("open badger database", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func namespacePrefix(ns core.Namespace) []byte {
	return []byte("rec/" + ns.Category + "/" + strconv.FormatInt(ns.Version, 10) + "/")
}

func recordKey(rec *core.FileRecord) []byte {
	return append(namespacePrefix(rec.Namespace()), rec.ID...)
}

func dataKey(id string) []byte {
	return []byte("data/" + id)
}

func decode(ns core.Namespace, val []byte) (*core.FileRecord, error) {
	var r record
	if err := msgpack.Unmarshal(val, &r); err != nil {
		return nil, err
	}
	return &core.FileRecord{
		ID:           r.ID,
		Category:     ns.Category,
		Version:      ns.Version,
		Name:         r.Name,
		Length:       r.Length,
		LastModified: core.TimeFromMillis(r.Modified),
	}, nil
}

func encode(rec *core.FileRecord) ([]byte, error) {
	return msgpack.Marshal(record{
		ID:       rec.ID,
		Name:     rec.Name,
		Length:   rec.Length,
		Modified: rec.LastModified.UnixMilli(),
	})
}

// scan returns the records of f's namespace that match f.
func scan(txn *badger.Txn, f core.Filter) ([]*core.FileRecord, error) {
	prefix := namespacePrefix(f.Namespace)
	iterOpts := badger.DefaultIteratorOptions
	iterOpts.Prefix = prefix
	it := txn.NewIterator(iterOpts)
	defer it.Close()

	var out []*core.FileRecord
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		rec, err := decode(f.Namespace, val)
		if err != nil {
			return nil, fmt.Errorf("decode record %s: %w", it.Item().Key(), err)
		}
		if f.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Put creates or replaces the record for (category, version, name).
func (s *Store) Put(_ context.Context, rec core.FileRecord, content []byte) (*core.FileRecord, error) {
	if err := rec.Namespace().Validate(); err != nil {
		return nil, errs.Invalid(err)
	}
	if err := core.ValidateName(rec.Name); err != nil {
		return nil, errs.Invalid(err)
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Length = int64(len(content))
	rec.LastModified = core.TruncateTime(rec.LastModified)

	val, err := encode(&rec)
	if err != nil {
		return nil, errs.Store("encode record", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		existing, err := scan(txn, core.NameFilter(rec.Namespace(), rec.Name))
		if err != nil {
			return err
		}
		for _, old := range existing {
			if err := txn.Delete(recordKey(old)); err != nil {
				return err
			}
			if err := txn.Delete(dataKey(old.ID)); err != nil {
				return err
			}
		}
		if err := txn.Set(recordKey(&rec), val); err != nil {
			return err
		}
		return txn.Set(dataKey(rec.ID), content)
	})
	if err != nil {
		return nil, errs.Store("put record", err)
	}
	return rec.Clone(), nil
}

// Query returns the records matching f.
func (s *Store) Query(_ context.Context, f core.Filter) ([]*core.FileRecord, error) {
	var out []*core.FileRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = scan(txn, f)
		return err
	})
	if err != nil {
		return nil, errs.Store("query records", err)
	}
	return out, nil
}

// Delete removes rec and its content.
func (s *Store) Delete(_ context.Context, rec *core.FileRecord) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(recordKey(rec)); err != nil {
			return err
		}
		if err := txn.Delete(recordKey(rec)); err != nil {
			return err
		}
		return txn.Delete(dataKey(rec.ID))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errs.NotFound(fmt.Sprintf("record %s does not exist", rec.ID))
	}
	if err != nil {
		return errs.Store("delete record", err)
	}
	return nil
}

// Update persists rec's Name and LastModified.
func (s *Store) Update(_ context.Context, rec *core.FileRecord) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(rec))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		stored, err := decode(rec.Namespace(), val)
		if err != nil {
			return err
		}
		stored.Name = rec.Name
		stored.LastModified = core.TruncateTime(rec.LastModified)

		updated, err := encode(stored)
		if err != nil {
			return err
		}
		return txn.Set(recordKey(stored), updated)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errs.NotFound(fmt.Sprintf("record %s does not exist", rec.ID))
	}
	if err != nil {
		return errs.Store("update record", err)
	}
	return nil
}

// ReadContent copies content of rec starting at off into p.
func (s *Store) ReadContent(_ context.Context, rec *core.FileRecord, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errs.Invalid(fmt.Errorf("negative offset %d", off))
	}

	var n int
	var eof bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dataKey(rec.ID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if off >= int64(len(val)) {
				eof = true
				return nil
			}
			n = copy(p, val[off:])
			eof = n < len(p)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, errs.NotFound(fmt.Sprintf("content of record %s does not exist", rec.ID))
	}
	if err != nil {
		return 0, errs.Store("read content", err)
	}
	if eof {
		return n, io.EOF
	}
	return n, nil
}

// slogLogger adapts badger's logger interface to slog.
type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Errorf(f string, v ...interface{})   { l.logger.Error(fmt.Sprintf(f, v...)) }
func (l slogLogger) Warningf(f string, v ...interface{}) { l.logger.Warn(fmt.Sprintf(f, v...)) }
func (l slogLogger) Infof(f string, v ...interface{})    { l.logger.Debug(fmt.Sprintf(f, v...)) }
func (l slogLogger) Debugf(f string, v ...interface{})   { l.logger.Debug(fmt.Sprintf(f, v...)) }

// Compile-time interface check.
var _ core.Store = (*Store)(nil)
