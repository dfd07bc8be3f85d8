package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API holds per-endpoint counters for the momentum HTTP handlers. Route-level
// latency lives in the pkg/http middleware; these track outcomes the
// middleware cannot see.
type API struct {
	Errors          *prometheus.CounterVec
	RefreshRejected prometheus.Counter
	CacheServed     *prometheus.CounterVec
	UploadedSymbols prometheus.Histogram
}

// NewAPI registers the counters on reg. A nil reg uses the default registerer.
func NewAPI(reg prometheus.Registerer) *API {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &API{
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "momentumrank",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by endpoint and error code",
		}, []string{"endpoint", "code"}),
		RefreshRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: "momentumrank",
			Subsystem: "api",
			Name:      "refresh_rejected_total",
			Help:      "Forced recomputations rejected by the per-client limiter",
		}),
		CacheServed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "momentumrank",
			Subsystem: "api",
			Name:      "responses_total",
			Help:      "Successful responses by endpoint and whether the result came from cache",
		}, []string{"endpoint", "from_cache"}),
		UploadedSymbols: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "momentumrank",
			Subsystem: "api",
			Name:      "uploaded_symbols",
			Help:      "Symbols per uploaded universe",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500},
		}),
	}
}

// Error counts one failed request.
func (a *API) Error(endpoint, code string) {
	if a != nil {
		a.Errors.WithLabelValues(endpoint, code).Inc()
	}
}

// Served counts one successful request.
func (a *API) Served(endpoint string, fromCache bool) {
	if a == nil {
		return
	}
	v := "false"
	if fromCache {
		v = "true"
	}
	a.CacheServed.WithLabelValues(endpoint, v).Inc()
}

// Rejected counts one rate-limited refresh.
func (a *API) Rejected() {
	if a != nil {
		a.RefreshRejected.Inc()
	}
}

// Uploaded observes the size of an uploaded universe.
func (a *API) Uploaded(n int) {
	if a != nil {
		a.UploadedSymbols.Observe(float64(n))
	}
}
