package core

import (
	"fmt"
	"strings"
	"time"
)

// Namespace identifies one logical index generation.
type Namespace struct {
	// Category groups the generations of one logical index.
	Category string

	// Version distinguishes successive builds of the same category.
	Version int64
}

// String renders the namespace as "category@version".
func (n Namespace) String() string {
	return fmt.Sprintf("%s@%d", n.Category, n.Version)
}

// Validate checks that the namespace can be encoded by every store.
// The category must be non-empty and free of '/' and ':', which stores use
// as key separators. The version must not be negative.
func (n Namespace) Validate() error {
	if n.Category == "" {
		return fmt.Errorf("category is required")
	}
	if strings.ContainsAny(n.Category, "/:") {
		return fmt.Errorf("category %q must not contain '/' or ':'", n.Category)
	}
	if n.Version < 0 {
		return fmt.Errorf("version must not be negative, got %d", n.Version)
	}
	return nil
}

// ValidateName checks that name is usable as a flat file name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("name %q must not contain '/'", name)
	}
	return nil
}

// FileRecord is the unit persisted by a Store: the metadata of one index
// file. Content is not loaded eagerly; read it with Store.ReadContent.
type FileRecord struct {
	// ID is the store-assigned identity of the record.
	ID string

	// Category and Version are the record's namespace key. Immutable.
	Category string
	Version  int64

	// Name is unique within the namespace.
	Name string

	// Length is the content length in bytes.
	Length int64

	// LastModified has millisecond precision in every store.
	LastModified time.Time
}

// Namespace returns the record's namespace key.
func (r *FileRecord) Namespace() Namespace {
	return Namespace{Category: r.Category, Version: r.Version}
}

// Clone returns a copy of the record.
func (r *FileRecord) Clone() *FileRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Filter is an equality conjunction over a record's namespace and,
// optionally, its name.
type Filter struct {
	Namespace

	// Name restricts matches to one file when HasName is set.
	Name    string
	HasName bool
}

// NamespaceFilter matches every record of ns.
func NamespaceFilter(ns Namespace) Filter {
	return Filter{Namespace: ns}
}

// NameFilter matches the records of ns called name.
func NameFilter(ns Namespace, name string) Filter {
	return Filter{Namespace: ns, Name: name, HasName: true}
}

// Matches reports whether rec satisfies the filter.
func (f Filter) Matches(rec *FileRecord) bool {
	if rec == nil {
		return false
	}
	if rec.Category != f.Category || rec.Version != f.Version {
		return false
	}
	return !f.HasName || rec.Name == f.Name
}

// TruncateTime rounds t down to the millisecond precision stores persist
// and converts it to UTC.
func TruncateTime(t time.Time) time.Time {
	return t.Truncate(time.Millisecond).UTC()
}

// TimeFromMillis converts unix milliseconds to a UTC time.
func TimeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
