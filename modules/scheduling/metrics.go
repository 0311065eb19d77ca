package scheduling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes counters for the handle cache and provisioning. A nil
// *Metrics is valid and records nothing, so instrumentation stays optional.
type Metrics struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	evictions  prometheus.Counter
	provisions *prometheus.CounterVec
}

// NewMetrics registers the module's collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Name: "tenant_handle_cache_hits_total",
			Help: "Handle cache lookups served from an existing entry",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Name: "tenant_handle_cache_misses_total",
			Help: "Handle cache lookups that constructed a new accessor",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "tenant_handle_cache_evictions_total",
			Help: "Handles evicted by the idle sweep",
		}),
		provisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tenant_schema_provisions_total",
			Help: "Tenant schema provisioning attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) cacheHit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) cacheMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) cacheEviction() {
	if m != nil {
		m.evictions.Inc()
	}
}

func (m *Metrics) provisionResult(result string) {
	if m != nil {
		m.provisions.WithLabelValues(result).Inc()
	}
}
