package directory

import "time"

// Operation names reported to an Observer.
const (
	OpList     = "list"
	OpExists   = "exists"
	OpLength   = "length"
	OpModified = "modified"
	OpDelete   = "delete"
	OpRename   = "rename"
	OpTouch    = "touch"
	OpOpen     = "open"
	OpCreate   = "create"
)

// Observer receives notifications about directory activity.
// Implementations must be safe for concurrent use.
type Observer interface {
	// ObserveOperation is called once per directory operation with its
	// result. err is nil on success.
	ObserveOperation(op string, err error)

	// ObserveStore is called for every store round trip made on behalf of op.
	ObserveStore(op string, elapsed time.Duration, err error)

	// ObserveCache is called when op consults the local cache.
	ObserveCache(op string, hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, error)            {}
func (nopObserver) ObserveStore(string, time.Duration, error) {}
func (nopObserver) ObserveCache(string, bool)                 {}
