package postgres_test

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/store/postgres"
	"github.com/jmgilman/go/docdir/storetest"
)

// setupPostgres returns a connection URL. PG_URL is used when set; otherwise
// a PostgreSQL container is started.
func setupPostgres(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if url := os.Getenv("PG_URL"); url != "" {
		return url
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "docdir",
			"POSTGRES_PASSWORD": "docdir",
			"POSTGRES_DB":       "docdir",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	endpoint, err := pgC.PortEndpoint(ctx, "5432/tcp", "")
	require.NoError(t, err, "failed to get container endpoint")

	return fmt.Sprintf("postgres://docdir:docdir@%s/docdir?sslmode=disable", endpoint)
}

var tableSeq atomic.Int64

// newTestStore creates a migrated store over a fresh table.
func newTestStore(t *testing.T, pool *pgxpool.Pool) *postgres.Store {
	t.Helper()
	ctx := context.Background()
	table := fmt.Sprintf("index_files_test_%d", tableSeq.Add(1))

	s := postgres.New(pool, table)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, "DROP TABLE IF EXISTS "+table)
	})
	return s
}

func TestPostgresConformance(t *testing.T) {
	url := setupPostgres(t)

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	storetest.Run(t, func(t *testing.T) (core.Store, storetest.Seeder) {
		s := newTestStore(t, pool)
		return s, s
	})
}

func TestPostgresIntegration(t *testing.T) {
	url := setupPostgres(t)
	ctx := context.Background()

	s, err := postgres.Open(ctx, postgres.Config{URL: url, Table: "index_files_open", MaxConns: 2})
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx), "migrate must be idempotent")

	ns := core.Namespace{Category: "articles", Version: 3}

	t.Run("RenameOntoTakenName", func(t *testing.T) {
		a, err := s.Put(ctx, core.FileRecord{Category: ns.Category, Version: ns.Version, Name: "a"}, []byte("a"))
		require.NoError(t, err)
		_, err = s.Put(ctx, core.FileRecord{Category: ns.Category, Version: ns.Version, Name: "b"}, []byte("b"))
		require.NoError(t, err)

		a.Name = "b"
		err = s.Update(ctx, a)
		assert.ErrorIs(t, err, fs.ErrExist)
	})

	t.Run("ReplaceKeepsID", func(t *testing.T) {
		first, err := s.Put(ctx, core.FileRecord{Category: ns.Category, Version: ns.Version, Name: "keep"}, []byte("1"))
		require.NoError(t, err)
		second, err := s.Put(ctx, core.FileRecord{Category: ns.Category, Version: ns.Version, Name: "keep"}, []byte("22"))
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int64(2), second.Length)
	})
}

func TestOpen_Validation(t *testing.T) {
	_, err := postgres.Open(context.Background(), postgres.Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrInvalid)
}
