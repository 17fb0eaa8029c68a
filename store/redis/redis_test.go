package redis_test

import (
	"context"
	"io/fs"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/errors"
	"github.com/jmgilman/go/docdir/store/redis"
	"github.com/jmgilman/go/docdir/storetest"
)

// newTestStore creates a store backed by a miniredis server.
func newTestStore(t *testing.T, prefix string) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redis.New(client, prefix), mr
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (core.Store, storetest.Seeder) {
		s, _ := newTestStore(t, "test:")
		return s, s
	})
}

func TestKeyLayout(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, "test:")

	rec, err := s.Put(ctx, core.FileRecord{Category: "articles", Version: 3, Name: "segments.gen"}, []byte("gen"))
	require.NoError(t, err)

	data, err := mr.Get("test:data:" + rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "gen", data)

	assert.Equal(t, "segments.gen", mr.HGet("test:rec:"+rec.ID, "name"))
	assert.Equal(t, "3", mr.HGet("test:rec:"+rec.ID, "length"))

	members, err := mr.SMembers("test:ns:articles:3")
	require.NoError(t, err)
	assert.Equal(t, []string{rec.ID}, members)
}

func TestDefaultPrefix(t *testing.T) {
	s, mr := newTestStore(t, "")
	rec, err := s.Put(context.Background(), core.FileRecord{Category: "c", Name: "f"}, nil)
	require.NoError(t, err)
	assert.True(t, mr.Exists(redis.DefaultPrefix+"rec:"+rec.ID))
}

func TestQuery_SkipsDanglingMembers(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, "test:")
	ns := core.Namespace{Category: "articles", Version: 3}

	_, err := s.Put(ctx, core.FileRecord{Category: ns.Category, Version: ns.Version, Name: "a"}, []byte("a"))
	require.NoError(t, err)
	_, err = mr.SAdd("test:ns:articles:3", "no-such-id")
	require.NoError(t, err)

	recs, err := s.Query(ctx, core.NamespaceFilter(ns))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].Name)
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := redis.Dial(context.Background(), redis.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = redis.Dial(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestDial_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redis.Dial(context.Background(), redis.Config{Addr: addr})
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestServerError(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, "test:")
	mr.SetError("ERR injected failure")

	_, err := s.Query(ctx, core.NamespaceFilter(core.Namespace{Category: "c"}))
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabase, errors.GetCode(err))
}
