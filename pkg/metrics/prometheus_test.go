package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewWithRegisterer(prometheus.NewRegistry())

	r.RecordRun("fresh")
	r.RecordRun("fresh")
	r.RecordCache(true)
	r.RecordCache(false)
	r.RecordCache(false)
	r.RecordSymbols(480, 20)
	r.RecordUniverseSize(500)
	r.RecordError("yahoo_fetch")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("fresh")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheTotal.WithLabelValues("miss")))
	assert.Equal(t, 480.0, testutil.ToFloat64(r.symbolsTotal.WithLabelValues("scored")))
	assert.Equal(t, 20.0, testutil.ToFloat64(r.symbolsTotal.WithLabelValues("excluded")))
	assert.Equal(t, 500.0, testutil.ToFloat64(r.universeSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("yahoo_fetch")))
}

func TestNewIsSingleton(t *testing.T) {
	assert.Same(t, New(), New())
}
