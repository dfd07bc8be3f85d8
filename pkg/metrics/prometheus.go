package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal    *prometheus.CounterVec
	symbolsTotal *prometheus.CounterVec
	cacheTotal   *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	universeSize prometheus.Gauge
	latency      *prometheus.HistogramVec
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// New returns the process-wide recorder registered on the default registry.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = NewWithRegisterer(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// NewWithRegisterer builds a recorder on reg. Tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "momentumrank_runs_total",
				Help: "Momentum computations by outcome",
			},
			[]string{"outcome"},
		),
		symbolsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "momentumrank_symbols_total",
				Help: "Symbols seen by the engine, scored or excluded",
			},
			[]string{"status"},
		),
		cacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "momentumrank_result_cache_total",
				Help: "Result cache lookups by result",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "momentumrank_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		universeSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "momentumrank_universe_size",
				Help: "Symbols in the last computed universe",
			},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "momentumrank_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"operation"},
		),
	}
}

// RecordRun counts a computation by outcome (fresh, cached, or an error kind).
func (r *Recorder) RecordRun(outcome string) {
	r.runsTotal.WithLabelValues(outcome).Inc()
}

// RecordSymbols adds scored and excluded symbol counts.
func (r *Recorder) RecordSymbols(scored, excluded int) {
	r.symbolsTotal.WithLabelValues("scored").Add(float64(scored))
	r.symbolsTotal.WithLabelValues("excluded").Add(float64(excluded))
}

// RecordCache counts a cache lookup.
func (r *Recorder) RecordCache(hit bool) {
	if hit {
		r.cacheTotal.WithLabelValues("hit").Inc()
		return
	}
	r.cacheTotal.WithLabelValues("miss").Inc()
}

// RecordUniverseSize sets the last universe size.
func (r *Recorder) RecordUniverseSize(n int) {
	r.universeSize.Set(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
