// Package metrics exposes prometheus collectors for derivation searches.
//
// Collectors are created per Metrics value and registered on the registerer
// passed to New, never on the global default registry, so independent
// provers do not share counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fallback reasons reported by the oracle adapter.
const (
	ReasonError      = "error"
	ReasonTimeout    = "timeout"
	ReasonUnparsable = "unparsable"
	ReasonNegative   = "negative"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	searches        *prometheus.CounterVec
	searchDuration  prometheus.Histogram
	expansions      prometheus.Counter
	pushed          prometheus.Counter
	oracleCalls     prometheus.Counter
	oracleFallbacks *prometheus.CounterVec
	estimateCache   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deriv",
			Name:      "searches_total",
			Help:      "Finished searches by terminal status.",
		}, []string{"status"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "deriv",
			Name:      "search_duration_seconds",
			Help:      "Wall time of a single search.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		expansions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "deriv",
			Name:      "expansions_total",
			Help:      "States expanded across all searches.",
		}),
		pushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "deriv",
			Name:      "frontier_pushes_total",
			Help:      "Successor entries pushed onto frontiers.",
		}),
		oracleCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "deriv",
			Name:      "oracle_calls_total",
			Help:      "Calls made to the heuristic oracle.",
		}),
		oracleFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deriv",
			Name:      "oracle_fallbacks_total",
			Help:      "Oracle estimates replaced by the structural fallback, by reason.",
		}, []string{"reason"}),
		estimateCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deriv",
			Name:      "estimate_cache_total",
			Help:      "Estimate cache lookups by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.searches, m.searchDuration, m.expansions, m.pushed,
			m.oracleCalls, m.oracleFallbacks, m.estimateCache,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// SearchFinished records a terminal status and the search wall time.
func (m *Metrics) SearchFinished(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(status).Inc()
	m.searchDuration.Observe(elapsed.Seconds())
}

// Expanded counts one expansion that pushed n successors.
func (m *Metrics) Expanded(n int) {
	if m == nil {
		return
	}
	m.expansions.Inc()
	m.pushed.Add(float64(n))
}

// OracleCalled counts one oracle request.
func (m *Metrics) OracleCalled() {
	if m == nil {
		return
	}
	m.oracleCalls.Inc()
}

// OracleFellBack counts a failed oracle estimate.
func (m *Metrics) OracleFellBack(reason string) {
	if m == nil {
		return
	}
	m.oracleFallbacks.WithLabelValues(reason).Inc()
}

// CacheLookup counts an estimate cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.estimateCache.WithLabelValues(result).Inc()
}
