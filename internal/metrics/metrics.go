package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// Optimizations counts pipeline runs by outcome (ok, degraded, empty, error).
	Optimizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_optimizations_total", Help: "Route optimization runs by outcome."},
		[]string{"outcome"},
	)

	// ScorerFallbacks counts delay-model degradations to the neutral score.
	ScorerFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "delay_scorer_fallbacks_total", Help: "Delay scorer fallbacks to the neutral score."},
	)

	// ProviderRequests records directions-provider call latencies in seconds.
	ProviderRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "directions_provider_request_seconds", Help: "Directions provider request latency.", Buckets: prometheus.DefBuckets},
		[]string{"operation", "status"},
	)

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(Optimizations)
		Registry.MustRegister(ScorerFallbacks)
		Registry.MustRegister(ProviderRequests)
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
