package metrics_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/directory"
	"github.com/jmgilman/go/docdir/errors"
	"github.com/jmgilman/go/docdir/metrics"
	"github.com/jmgilman/go/docdir/store/memory"
)

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", metrics.Outcome(nil))
	assert.Equal(t, "not_found", metrics.Outcome(errors.New(errors.CodeNotFound, "missing")))
	assert.Equal(t, "unknown", metrics.Outcome(context.Canceled))
}

func TestPrometheus_Observer(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	store := memory.New()
	ns := core.Namespace{Category: "articles", Version: 3}
	_, err = store.Put(ctx, core.FileRecord{Category: ns.Category, Version: ns.Version, Name: "segments.gen"}, make([]byte, 128))
	require.NoError(t, err)

	dir, err := directory.New(store, ns, directory.WithObserver(m))
	require.NoError(t, err)

	_, err = dir.FileLength(ctx, "segments.gen")
	require.NoError(t, err)
	_, err = dir.FileLength(ctx, "missing")
	require.Error(t, err)
	_, err = dir.List(ctx)
	require.NoError(t, err)
	_, err = dir.List(ctx)
	require.NoError(t, err)

	// One series per label combination.
	assert.Equal(t, 3, testutil.CollectAndCount(reg, "docdir_operations_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "docdir_cache_lookups_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "docdir_store_query_duration_seconds"))
}

func TestPrometheus_Values(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	m.ObserveOperation(directory.OpOpen, nil)
	m.ObserveOperation(directory.OpOpen, nil)
	m.ObserveOperation(directory.OpOpen, errors.New(errors.CodeNotFound, "missing"))
	m.ObserveCache(directory.OpOpen, true)
	m.ObserveCache(directory.OpOpen, false)
	m.ObserveCache(directory.OpOpen, false)
	m.ObserveStore(directory.OpOpen, 5*time.Millisecond, nil)

	const expected = `
# HELP docdir_cache_lookups_total Total number of record cache lookups by result
# TYPE docdir_cache_lookups_total counter
docdir_cache_lookups_total{operation="open",result="hit"} 1
docdir_cache_lookups_total{operation="open",result="miss"} 2
# HELP docdir_operations_total Total number of directory operations by outcome
# TYPE docdir_operations_total counter
docdir_operations_total{operation="open",outcome="not_found"} 1
docdir_operations_total{operation="open",outcome="success"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"docdir_operations_total", "docdir_cache_lookups_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "docdir_store_query_duration_seconds"))
}
