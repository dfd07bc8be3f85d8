package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MomentumRank/internal/domain/models"
	"MomentumRank/pkg/config"
	xhttp "MomentumRank/pkg/http"
)

var base = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }

// chartBody builds a chart response with one bar per day starting at base,
// timestamped at 14:30 UTC like a US open.
func chartBody(closes []*float64) []byte {
	var r chartResponse
	res := chartResult{}
	for i := range closes {
		res.Timestamp = append(res.Timestamp, base.AddDate(0, 0, i).Add(14*time.Hour+30*time.Minute).Unix())
	}
	res.Meta.GMTOffset = -18000
	res.Indicators.Quote = []struct {
		Close []*float64 `json:"close"`
	}{{Close: closes}}
	r.Chart.Result = []chartResult{res}
	b, _ := json.Marshal(r)
	return b
}

func testConfig(url string) config.Yahoo {
	cfg := config.Default().Prices.Yahoo
	cfg.BaseURL = url
	cfg.RetryDelay = time.Millisecond
	cfg.RatePerSec = 1000
	cfg.Burst = 100
	cfg.MaxRetries = 3
	return cfg
}

func symbolFrom(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
}

func TestGetClosesCleansSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write(chartBody([]*float64{f(10), nil, f(11), f(-1), f(0), f(12)}))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	table, err := c.GetCloses(context.Background(), []string{"AAPL"}, time.Time{}, base.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, table.Series, 1)

	s := table.Series[0]
	assert.Equal(t, "AAPL", s.Symbol)
	require.Len(t, s.Points, 3)
	assert.Equal(t, []float64{10, 11, 12}, s.Closes())
	assert.True(t, s.Points[0].Date.Equal(base))
	assert.True(t, s.Points[2].Date.Equal(base.AddDate(0, 0, 5)))
}

func TestGetClosesRestrictsRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chartBody([]*float64{f(1), f(2), f(3), f(4), f(5)}))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	table, err := c.GetCloses(context.Background(), []string{"X"}, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, table.Series[0].Closes())
}

func TestGetClosesPartialUniverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if symbolFrom(r) == "GONE" {
			http.Error(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write(chartBody([]*float64{f(1), f(2)}))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	table, err := c.GetCloses(context.Background(), []string{"A", "GONE", "B", "a"}, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, table.Symbols())
}

func TestGetClosesNothingReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.GetCloses(context.Background(), []string{"A", "B"}, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, models.ErrNoPriceData)

	_, err = c.GetCloses(context.Background(), nil, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, models.ErrNoPriceData)
}

func TestGetClosesRetriesTransientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write(chartBody([]*float64{f(5), f(6)}))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	table, err := c.GetCloses(context.Background(), []string{"RETRY"}, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, table.Series[0].Closes())
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestGetClosesDoesNotRetryNotFound(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.GetCloses(context.Background(), []string{"NOPE"}, time.Time{}, time.Time{})
	assert.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestGetClosesLargeUniverseKeepsOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]int{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[symbolFrom(r)]++
		mu.Unlock()
		_, _ = w.Write(chartBody([]*float64{f(1), f(2)}))
	}))
	defer srv.Close()

	symbols := make([]string, 60)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("S%02d", i)
	}

	c := NewClient(testConfig(srv.URL))
	table, err := c.GetCloses(context.Background(), symbols, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, symbols, table.Symbols())
	assert.Len(t, seen, 60)
}

func TestChunks(t *testing.T) {
	c := NewClient(testConfig("http://unused"))
	assert.Equal(t, [][2]int{{0, 50}}, c.chunks(50))
	assert.Equal(t, [][2]int{{0, 25}, {25, 50}, {50, 51}}, c.chunks(51))
	assert.Equal(t, [][2]int{{0, 3}}, c.chunks(3))
}

func TestGetClosesContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(testConfig("http://127.0.0.1:1"))
	_, err := c.GetCloses(ctx, []string{"A"}, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, context.Canceled)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestGetClosesCustomTransport(t *testing.T) {
	var hits int32
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "yahoo.test", r.URL.Host)
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewReader(chartBody([]*float64{f(10), f(11)}))),
			Request:    r,
		}, nil
	})

	c := NewClient(testConfig("http://yahoo.test"), WithHTTPClient(xhttp.NewClient(xhttp.WithTransport(rt))))
	table, err := c.GetCloses(context.Background(), []string{"AAA"}, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, table.Series, 1)
	assert.Len(t, table.Series[0].Points, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
