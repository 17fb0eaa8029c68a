// Package storetest provides a conformance test suite for core.Store
// implementations.
//
// Each backend package runs the suite from its own tests to verify it honours
// the contracts the directory relies on: filtered queries, deletes, updates
// of name and modification time, and ranged content reads.
//
// Example usage:
//
//	func TestStore(t *testing.T) {
//	    storetest.Run(t, func(t *testing.T) (core.Store, storetest.Seeder) {
//	        s := mystore.New()
//	        return s, s
//	    })
//	}
package storetest

import (
	"context"
	"testing"

	"github.com/jmgilman/go/docdir/core"
)

// Seeder writes records out of band, the way an indexing pipeline would.
// Every backend's writer satisfies it.
type Seeder interface {
	// Put creates or replaces the record for (category, version, name).
	// Length is taken from content. The stored record is returned.
	Put(ctx context.Context, rec core.FileRecord, content []byte) (*core.FileRecord, error)
}

// NewStoreFunc returns a fresh, empty store and the seeder writing into it.
// It is called once per test group.
type NewStoreFunc func(t *testing.T) (core.Store, Seeder)

// Config adapts the suite to backend characteristics.
type Config struct {
	// SkipTests lists test groups to skip, e.g. "Update".
	SkipTests []string
}

// Run runs every conformance test against stores returned by newStore.
func Run(t *testing.T, newStore NewStoreFunc) {
	RunWithConfig(t, newStore, Config{})
}

// RunWithConfig runs the conformance tests with behaviour configuration.
func RunWithConfig(t *testing.T, newStore NewStoreFunc, config Config) {
	groups := []struct {
		name string
		fn   func(*testing.T, core.Store, Seeder)
	}{
		{"Query", testQuery},
		{"ReadContent", testReadContent},
		{"Delete", testDelete},
		{"Update", testUpdate},
		{"Put", testPut},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if shouldSkip(config, g.name) {
				t.Skip("Skipped by store configuration")
				return
			}
			store, seeder := newStore(t)
			g.fn(t, store, seeder)
		})
	}
}

func shouldSkip(config Config, name string) bool {
	for _, skip := range config.SkipTests {
		if skip == name {
			return true
		}
	}
	return false
}
