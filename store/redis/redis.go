// Package redis provides a core.Store backed by Redis.
//
// Layout, with every key under a configurable prefix:
//
//	<prefix>rec:<id>                   hash: id, category, version, name, length, mtime
//	<prefix>ns:<category>:<version>    set of record ids in the namespace
//	<prefix>data:<id>                  string: file content, read with GETRANGE
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/internal/errs"
)

// DefaultPrefix is used when Config.Prefix is empty.
const DefaultPrefix = "docdir:"

// Config holds connection settings for Dial.
type Config struct {
	// Addr is the server address (e.g., "localhost:6379").
	Addr string

	// Password is optional.
	Password string

	// DB selects the logical database.
	DB int

	// Prefix is prepended to every key. Default: DefaultPrefix.
	Prefix string
}

// Store is a core.Store over a Redis client.
type Store struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

var errNoRecord = errors.New("record does not exist")

// Dial connects to Redis and verifies the connection with PING.
// The returned store owns the client; Close closes it.
func Dial(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, errs.Invalid(fmt.Errorf("redis: addr is required"))
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errs.Unavailable(fmt.Sprintf("redis %s: ping failed", cfg.Addr), err)
	}

	s := New(client, cfg.Prefix)
	s.owned = true
	return s, nil
}

// New returns a store over an existing client. The client is borrowed.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Close closes the client if the store opened it.
func (s *Store) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

func (s *Store) recKey(id string) string {
	return s.prefix + "rec:" + id
}

func (s *Store) dataKey(id string) string {
	return s.prefix + "data:" + id
}

func (s *Store) nsKey(ns core.Namespace) string {
	return s.prefix + "ns:" + ns.Category + ":" + strconv.FormatInt(ns.Version, 10)
}

// translate classifies a go-redis error.
func translate(msg string, err error) error {
	if errors.Is(err, errNoRecord) {
		return errs.NotFound(msg + ": " + err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && !netErr.Timeout() {
		return errs.Unavailable(msg, err)
	}
	return errs.Store(msg, err)
}

func decode(fields map[string]string) (*core.FileRecord, error) {
	version, err := strconv.ParseInt(fields["version"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse version: %w", err)
	}
	length, err := strconv.ParseInt(fields["length"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse length: %w", err)
	}
	mtime, err := strconv.ParseInt(fields["mtime"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse mtime: %w", err)
	}
	return &core.FileRecord{
		ID:           fields["id"],
		Category:     fields["category"],
		Version:      version,
		Name:         fields["name"],
		Length:       length,
		LastModified: core.TimeFromMillis(mtime),
	}, nil
}

// Query returns the records matching f.
func (s *Store) Query(ctx context.Context, f core.Filter) ([]*core.FileRecord, error) {
	ids, err := s.client.SMembers(ctx, s.nsKey(f.Namespace)).Result()
	if err != nil {
		return nil, translate("list namespace", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.HGetAll(ctx, s.recKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, translate("fetch records", err)
	}

	var out []*core.FileRecord
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// Set member without a hash: removed concurrently.
			continue
		}
		rec, err := decode(fields)
		if err != nil {
			return nil, errs.Store(fmt.Sprintf("decode record %s", ids[i]), err)
		}
		if f.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Put creates or replaces the record for (category, version, name).
func (s *Store) Put(ctx context.Context, rec core.FileRecord, content []byte) (*core.FileRecord, error) {
	if err := rec.Namespace().Validate(); err != nil {
		return nil, errs.Invalid(err)
	}
	if err := core.ValidateName(rec.Name); err != nil {
		return nil, errs.Invalid(err)
	}

	existing, err := s.Query(ctx, core.NameFilter(rec.Namespace(), rec.Name))
	if err != nil {
		return nil, err
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Length = int64(len(content))
	rec.LastModified = core.TruncateTime(rec.LastModified)
	nsKey := s.nsKey(rec.Namespace())

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, old := range existing {
			p.Del(ctx, s.recKey(old.ID), s.dataKey(old.ID))
			p.SRem(ctx, nsKey, old.ID)
		}
		p.HSet(ctx, s.recKey(rec.ID),
			"id", rec.ID,
			"category", rec.Category,
			"version", rec.Version,
			"name", rec.Name,
			"length", rec.Length,
			"mtime", rec.LastModified.UnixMilli(),
		)
		p.Set(ctx, s.dataKey(rec.ID), content, 0)
		p.SAdd(ctx, nsKey, rec.ID)
		return nil
	})
	if err != nil {
		return nil, translate("put record", err)
	}
	return rec.Clone(), nil
}

// Delete removes rec, its content and its namespace membership.
func (s *Store) Delete(ctx context.Context, rec *core.FileRecord) error {
	key := s.recKey(rec.ID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return errNoRecord
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, key, s.dataKey(rec.ID))
			p.SRem(ctx, s.nsKey(rec.Namespace()), rec.ID)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return translate(fmt.Sprintf("delete record %s", rec.ID), err)
	}
	return nil
}

// Update persists rec's Name and LastModified.
func (s *Store) Update(ctx context.Context, rec *core.FileRecord) error {
	key := s.recKey(rec.ID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return errNoRecord
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key,
				"name", rec.Name,
				"mtime", core.TruncateTime(rec.LastModified).UnixMilli(),
			)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return translate(fmt.Sprintf("update record %s", rec.ID), err)
	}
	return nil
}

// ReadContent reads content of rec with one GETRANGE.
func (s *Store) ReadContent(ctx context.Context, rec *core.FileRecord, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errs.Invalid(fmt.Errorf("negative offset %d", off))
	}
	if len(p) == 0 {
		return 0, nil
	}

	key := s.dataKey(rec.ID)
	var exists *redis.IntCmd
	var getRange *redis.StringCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		exists = pipe.Exists(ctx, key)
		getRange = pipe.GetRange(ctx, key, off, off+int64(len(p))-1)
		return nil
	})
	if err != nil {
		return 0, translate("read content", err)
	}
	if exists.Val() == 0 {
		return 0, errs.NotFound(fmt.Sprintf("content of record %s does not exist", rec.ID))
	}

	n := copy(p, getRange.Val())
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Compile-time interface check.
var _ core.Store = (*Store)(nil)
