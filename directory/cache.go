package directory

import (
	"sort"

	"github.com/jmgilman/go/docdir/core"
)

type cacheState int

const (
	// cacheEmpty: no full listing has happened. Entries may still exist,
	// added by OpenInput, but they are not a complete name set.
	cacheEmpty cacheState = iota

	// cachePopulated: a full listing loaded every record of the namespace.
	// The name set is trusted for the rest of the directory's lifetime.
	cachePopulated
)

// recordCache maps file names to record handles. It is unbounded and only
// changes through the directory's own operations.
type recordCache struct {
	state   cacheState
	entries map[string]*core.FileRecord
}

func newRecordCache() *recordCache {
	return &recordCache{entries: make(map[string]*core.FileRecord)}
}

func (c *recordCache) populated() bool {
	return c.state == cachePopulated
}

func (c *recordCache) get(name string) (*core.FileRecord, bool) {
	rec, ok := c.entries[name]
	return rec, ok
}

func (c *recordCache) put(rec *core.FileRecord) {
	c.entries[rec.Name] = rec.Clone()
}

func (c *recordCache) evict(name string) {
	delete(c.entries, name)
}

// populate replaces the entries with a full listing.
func (c *recordCache) populate(recs []*core.FileRecord) {
	c.entries = make(map[string]*core.FileRecord, len(recs))
	for _, rec := range recs {
		c.put(rec)
	}
	c.state = cachePopulated
}

// names returns the cached names in lexical order.
func (c *recordCache) names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *recordCache) reset() {
	c.entries = make(map[string]*core.FileRecord)
	c.state = cacheEmpty
}
