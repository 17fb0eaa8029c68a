// Package metrics exports directory activity as Prometheus metrics.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jmgilman/go/docdir/directory"
	"github.com/jmgilman/go/docdir/errors"
)

const namespace = "docdir"

// Outcome and result label values.
const (
	OutcomeSuccess = "success"
	ResultHit      = "hit"
	ResultMiss     = "miss"
)

// Prometheus is a directory.Observer that records operations, store round
// trips and cache lookups.
type Prometheus struct {
	operations    *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
// Registering twice on the same registry fails.
func New(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of directory operations by outcome",
		}, []string{"operation", "outcome"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_query_duration_seconds",
			Help:      "Duration of store round trips made by directory operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of record cache lookups by result",
		}, []string{"operation", "result"}),
	}

	for _, c := range []prometheus.Collector{p.operations, p.storeDuration, p.cacheLookups} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to register docdir metrics")
		}
	}
	return p, nil
}

// Outcome returns the outcome label for err: "success" for nil, otherwise
// the lower-cased error code, for example "not_found".
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return strings.ToLower(string(errors.GetCode(err)))
}

// ObserveOperation counts one directory operation.
func (p *Prometheus) ObserveOperation(op string, err error) {
	p.operations.WithLabelValues(op, Outcome(err)).Inc()
}

// ObserveStore records the duration of one store round trip.
func (p *Prometheus) ObserveStore(op string, elapsed time.Duration, _ error) {
	p.storeDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveCache counts one cache lookup.
func (p *Prometheus) ObserveCache(op string, hit bool) {
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	p.cacheLookups.WithLabelValues(op, result).Inc()
}

var _ directory.Observer = (*Prometheus)(nil)
