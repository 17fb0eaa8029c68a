package directory

import (
	"log/slog"
	"time"

	"github.com/jmgilman/go/docdir/input"
)

// Option configures a Directory.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	observer       Observer
	clock          func() time.Time
	strict         bool
	bufferSize     int
	allowOverwrite bool
}

func defaultOptions() options {
	return options{
		logger:     slog.New(slog.DiscardHandler),
		observer:   nopObserver{},
		clock:      time.Now,
		bufferSize: input.DefaultBufferSize,
	}
}

// WithLogger sets the logger. Directories log nothing by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver sets the observer notified of operations, store round trips
// and cache lookups. See the metrics package for a Prometheus observer.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithClock sets the time source TouchFile uses.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithStrictUniqueness makes lookups that find several records with one
// name fail with core.ErrCorrupted instead of logging and using the first.
func WithStrictUniqueness() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithReadBufferSize sets the read-ahead of inputs returned by OpenInput.
// Values <= 0 select input.DefaultBufferSize.
func WithReadBufferSize(size int) Option {
	return func(o *options) {
		if size <= 0 {
			size = input.DefaultBufferSize
		}
		o.bufferSize = size
	}
}

// WithRenameOverwrite controls whether RenameFile may target a name that
// already exists. By default such renames fail with core.ErrExist. When
// allowed, the namespace ends up with two records sharing the name.
func WithRenameOverwrite(allow bool) Option {
	return func(o *options) {
		o.allowOverwrite = allow
	}
}
