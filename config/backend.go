package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/directory"
	"github.com/jmgilman/go/docdir/errors"
	"github.com/jmgilman/go/docdir/store/badger"
	"github.com/jmgilman/go/docdir/store/memory"
	"github.com/jmgilman/go/docdir/store/minio"
	"github.com/jmgilman/go/docdir/store/postgres"
	"github.com/jmgilman/go/docdir/store/redis"
)

// Seeder writes records out of band. Every store implements it; the
// directory never does.
type Seeder interface {
	Put(ctx context.Context, rec core.FileRecord, content []byte) (*core.FileRecord, error)
}

// seedStore is what every backend provides.
type seedStore interface {
	core.Store
	Seeder
}

// Backend is an opened store together with its writer and lifecycle.
type Backend struct {
	core.Store
	Seeder

	name  string
	close func() error
}

// Name returns the backend name, for example "redis".
func (b *Backend) Name() string {
	return b.name
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func newBackend(name string, s seedStore, closeFn func() error) *Backend {
	return &Backend{Store: s, Seeder: s, name: name, close: closeFn}
}

// OpenBackend opens the store selected by cfg.Backend. logger receives
// backend diagnostics; it may be nil.
func OpenBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("backend", cfg.Backend)

	switch cfg.Backend {
	case BackendMemory:
		return newBackend(cfg.Backend, memory.New(), nil), nil

	case BackendBadger:
		s, err := badger.Open(badger.Options{
			Dir:      cfg.Badger.Dir,
			InMemory: cfg.Badger.InMemory,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return newBackend(cfg.Backend, s, s.Close), nil

	case BackendRedis:
		s, err := redis.Dial(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return newBackend(cfg.Backend, s, s.Close), nil

	case BackendPostgres:
		s, err := postgres.Open(ctx, postgres.Config{
			URL:      cfg.Postgres.URL,
			Table:    cfg.Postgres.Table,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.Migrate {
			if err := s.Migrate(ctx); err != nil {
				s.Close()
				return nil, err
			}
			logger.Debug("migrated table", "table", cfg.Postgres.Table)
		}
		return newBackend(cfg.Backend, s, func() error {
			s.Close()
			return nil
		}), nil

	case BackendMinio:
		s, err := minio.New(minio.Config{
			Endpoint:        cfg.Minio.Endpoint,
			Bucket:          cfg.Minio.Bucket,
			AccessKey:       cfg.Minio.AccessKey,
			SecretKey:       cfg.Minio.SecretKey,
			UseSSL:          cfg.Minio.UseSSL,
			Prefix:          cfg.Minio.Prefix,
			StatConcurrency: cfg.Minio.StatConcurrency,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Minio.CreateBucket {
			if err := s.EnsureBucket(ctx); err != nil {
				return nil, err
			}
		}
		return newBackend(cfg.Backend, s, nil), nil
	}

	return nil, errors.New(errors.CodeInvalidConfig, fmt.Sprintf("unknown backend %q", cfg.Backend))
}

// DirectoryOptions returns the directory options the configuration selects.
func (c *Config) DirectoryOptions() []directory.Option {
	opts := []directory.Option{
		directory.WithReadBufferSize(c.Directory.ReadBufferSize),
		directory.WithRenameOverwrite(c.Directory.AllowRenameOverwrite),
	}
	if c.Directory.StrictUniqueness {
		opts = append(opts, directory.WithStrictUniqueness())
	}
	return opts
}
