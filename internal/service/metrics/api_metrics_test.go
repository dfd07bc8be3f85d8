package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAPICounters(t *testing.T) {
	a := NewAPI(prometheus.NewRegistry())

	a.Error("momentum", "ERR_NO_PRICE_DATA")
	a.Served("top", true)
	a.Served("top", false)
	a.Served("top", true)
	a.Rejected()
	a.Uploaded(120)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Errors.WithLabelValues("momentum", "ERR_NO_PRICE_DATA")))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.CacheServed.WithLabelValues("top", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.CacheServed.WithLabelValues("top", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.RefreshRejected))
}

func TestAPINilSafe(t *testing.T) {
	var a *API
	assert.NotPanics(t, func() {
		a.Error("x", "y")
		a.Served("x", true)
		a.Rejected()
		a.Uploaded(1)
	})
}
