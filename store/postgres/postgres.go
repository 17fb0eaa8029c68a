// Package postgres provides a core.Store backed by a PostgreSQL table.
//
// Each record is one row; content is a bytea column read in ranges with
// substring, so a read never transfers more than the requested bytes.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/internal/errs"
)

// DefaultTable is used when Config.Table is empty.
const DefaultTable = "index_files"

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Config holds PostgreSQL connection configuration.
type Config struct {
	URL      string `yaml:"url" json:"url"`
	Table    string `yaml:"table" json:"table"`
	MaxConns int32  `yaml:"max_conns" json:"max_conns"`
}

// Store is a core.Store over a pgx connection pool.
type Store struct {
	pool  *pgxpool.Pool
	table string // sanitized identifier
	owned bool
}

// Open connects to PostgreSQL and verifies the connection.
// The returned store owns the pool; Close closes it.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, errs.Invalid(fmt.Errorf("postgres: url is required"))
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errs.Invalid(fmt.Errorf("parse pg config: %w", err))
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errs.Unavailable("create pg pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errs.Unavailable("ping pg", err)
	}

	s := New(pool, cfg.Table)
	s.owned = true
	return s, nil
}

// New returns a store over an existing pool. The pool is borrowed.
func New(pool *pgxpool.Pool, table string) *Store {
	if table == "" {
		table = DefaultTable
	}
	return &Store{pool: pool, table: pgx.Identifier{table}.Sanitize()}
}

// Close closes the pool if the store opened it.
func (s *Store) Close() {
	if s.owned {
		s.pool.Close()
	}
}

// Migrate creates the table and its indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id            uuid PRIMARY KEY,
			category      text NOT NULL,
			version       bigint NOT NULL,
			name          text NOT NULL,
			length        bigint NOT NULL,
			last_modified timestamptz NOT NULL,
			content       bytea NOT NULL,
			UNIQUE (category, version, name)
		)`, s.table))
	if err != nil {
		return translate("migrate", err)
	}
	return nil
}

// translate classifies a pgx error.
func translate(msg string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NotFound(msg + ": no such record")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errs.Exists(msg + ": " + pgErr.Message)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errs.Unavailable(msg, err)
	}
	return errs.Store(msg, err)
}

// Put creates or replaces the record for (category, version, name).
// A replaced record keeps its ID.
func (s *Store) Put(ctx context.Context, rec core.FileRecord, content []byte) (*core.FileRecord, error) {
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
	if content == nil {
		content = []byte{}
	}

	err := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, category, version, name, length, last_modified, content)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (category, version, name) DO UPDATE SET
			length = EXCLUDED.length,
			last_modified = EXCLUDED.last_modified,
			content = EXCLUDED.content
		RETURNING id::text`, s.table),
		rec.ID, rec.Category, rec.Version, rec.Name, rec.Length, rec.LastModified, content,
	).Scan(&rec.ID)
	if err != nil {
		return nil, translate(fmt.Sprintf("put record %q", rec.Name), err)
	}
	return rec.Clone(), nil
}

// Query returns the records matching f.
func (s *Store) Query(ctx context.Context, f core.Filter) ([]*core.FileRecord, error) {
	query := fmt.Sprintf(`
		SELECT id::text, category, version, name, length, last_modified
		FROM %s WHERE category = $1 AND version = $2`, s.table)
	args := []any{f.Category, f.Version}
	if f.HasName {
		query += ` AND name = $3`
		args = append(args, f.Name)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("query records", err)
	}
	defer rows.Close()

	var out []*core.FileRecord
	for rows.Next() {
		var rec core.FileRecord
		var modified time.Time
		if err := rows.Scan(&rec.ID, &rec.Category, &rec.Version, &rec.Name, &rec.Length, &modified); err != nil {
			return nil, translate("scan record", err)
		}
		rec.LastModified = core.TruncateTime(modified)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("query records", err)
	}
	return out, nil
}

// Delete removes rec's row.
func (s *Store) Delete(ctx context.Context, rec *core.FileRecord) error {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1::uuid`, s.table), rec.ID)
	if err != nil {
		return translate(fmt.Sprintf("delete record %s", rec.ID), err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound(fmt.Sprintf("record %s does not exist", rec.ID))
	}
	return nil
}

// Update persists rec's Name and LastModified. Renaming onto a taken name
// fails with core.ErrExist because of the unique constraint.
func (s *Store) Update(ctx context.Context, rec *core.FileRecord) error {
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET name = $2, last_modified = $3 WHERE id = $1::uuid`, s.table),
		rec.ID, rec.Name, core.TruncateTime(rec.LastModified))
	if err != nil {
		return translate(fmt.Sprintf("update record %s", rec.ID), err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound(fmt.Sprintf("record %s does not exist", rec.ID))
	}
	return nil
}

// ReadContent reads len(p) bytes of rec's content at off.
func (s *Store) ReadContent(ctx context.Context, rec *core.FileRecord, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errs.Invalid(fmt.Errorf("negative offset %d", off))
	}
	if len(p) == 0 {
		return 0, nil
	}

	var chunk []byte
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT substring(content from $2 for $3) FROM %s WHERE id = $1::uuid`, s.table),
		rec.ID, off+1, int64(len(p)),
	).Scan(&chunk)
	if err != nil {
		return 0, translate(fmt.Sprintf("read content of record %s", rec.ID), err)
	}

	n := copy(p, chunk)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Compile-time interface check.
var _ core.Store = (*Store)(nil)
