package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"MomentumRank/internal/domain/models"
	domrepo "MomentumRank/internal/domain/repository"
	"MomentumRank/pkg/breaker"
	"MomentumRank/pkg/config"
	xhttp "MomentumRank/pkg/http"
	applogger "MomentumRank/pkg/logger"
	"MomentumRank/pkg/util"
)

// ErrSymbolNotFound means Yahoo has no chart for the symbol. It is not retried.
var ErrSymbolNotFound = errors.New("yahoo: symbol not found")

// Option configures Client.
type Option func(*Client)

// WithLogger sets a logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m domrepo.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client downloads daily closes from the Yahoo chart API. Large universes are
// fetched in chunks; within a chunk a bounded worker pool fetches symbols
// concurrently behind a shared rate limiter and circuit breaker.
type Client struct {
	cfg     config.Yahoo
	http    *xhttp.Client
	limiter *rate.Limiter
	breaker *breaker.Breaker
	metrics domrepo.Metrics
	l       *applogger.Logger
}

// NewClient creates a Yahoo client from its config section.
func NewClient(cfg config.Yahoo, opts ...Option) *Client {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 25
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 4
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	c := &Client{
		cfg:     cfg,
		http:    xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = breaker.New("yahoo",
		breaker.WithTimeout(10*time.Second),
		breaker.WithIgnore(func(err error) bool { return errors.Is(err, ErrSymbolNotFound) }),
		breaker.WithStateChange(func(name, from, to string) {
			if c.l != nil {
				c.l.Warn("circuit breaker state change",
					applogger.String("breaker", name),
					applogger.String("from", from),
					applogger.String("to", to),
				)
			}
		}),
	)
	return c
}

// GetCloses fetches [start, end] closes for symbols. The table keeps the
// requested order and omits symbols that returned nothing. It fails only when
// no symbol returned data.
func (c *Client) GetCloses(ctx context.Context, symbols []string, start, end time.Time) (models.PriceTable, error) {
	symbols = dedupe(symbols)
	if len(symbols) == 0 {
		return models.PriceTable{}, fmt.Errorf("%w: empty symbol list", models.ErrNoPriceData)
	}

	began := time.Now()
	results := make([]models.PriceSeries, len(symbols))
	var (
		mu      sync.Mutex
		lastErr error
		failed  int
	)

	for _, chunk := range c.chunks(len(symbols)) {
		if err := ctx.Err(); err != nil {
			return models.PriceTable{}, fmt.Errorf("yahoo download: %w", err)
		}

		sem := make(chan struct{}, c.cfg.Workers)
		var wg sync.WaitGroup
		for i := chunk[0]; i < chunk[1]; i++ {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()

				series, err := c.fetchWithRetry(ctx, symbols[i], start, end)
				if err != nil {
					mu.Lock()
					lastErr = err
					failed++
					mu.Unlock()
					return
				}
				results[i] = series
			}(i)
		}
		wg.Wait()

		if c.l != nil && len(symbols) > c.cfg.ChunkThreshold {
			c.l.Debug("yahoo chunk done",
				applogger.Int("from", chunk[0]),
				applogger.Int("to", chunk[1]),
				applogger.Int("total", len(symbols)),
			)
		}
	}

	table := models.PriceTable{Series: make([]models.PriceSeries, 0, len(symbols))}
	for _, s := range results {
		if len(s.Points) > 0 {
			table.Series = append(table.Series, s)
		}
	}

	if c.metrics != nil {
		c.metrics.RecordLatency("yahoo_download", time.Since(began).Seconds())
	}
	if c.l != nil {
		c.l.Info("yahoo download finished",
			applogger.Int("requested", len(symbols)),
			applogger.Int("returned", len(table.Series)),
			applogger.Int("failed", failed),
			applogger.Duration("elapsed_ms", time.Since(began)),
		)
	}

	if len(table.Series) == 0 {
		if lastErr != nil {
			return table, fmt.Errorf("%w: %v", models.ErrNoPriceData, lastErr)
		}
		return table, models.ErrNoPriceData
	}
	return table, nil
}

// chunks splits n symbols into [from, to) ranges. Universes at or below the
// threshold go in one chunk.
func (c *Client) chunks(n int) [][2]int {
	size := n
	if n > c.cfg.ChunkThreshold {
		size = c.cfg.ChunkSize
	}
	var out [][2]int
	for from := 0; from < n; from += size {
		to := from + size
		if to > n {
			to = n
		}
		out = append(out, [2]int{from, to})
	}
	return out
}

func (c *Client) fetchWithRetry(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error) {
	var err error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if err = c.limiter.Wait(ctx); err != nil {
			return models.PriceSeries{}, fmt.Errorf("rate limiter: %w", err)
		}

		var series models.PriceSeries
		err = c.breaker.Do(func() error {
			var ferr error
			series, ferr = c.fetchChart(ctx, symbol, start, end)
			return ferr
		})
		if err == nil {
			return series, nil
		}
		if !retryable(err) || attempt == c.cfg.MaxRetries {
			break
		}

		if c.l != nil {
			c.l.Debug("yahoo fetch retry",
				applogger.String("symbol", symbol),
				applogger.Int("attempt", attempt),
				applogger.Error(err),
			)
		}
		select {
		case <-time.After(time.Duration(attempt) * c.cfg.RetryDelay):
		case <-ctx.Done():
			return models.PriceSeries{}, ctx.Err()
		}
	}

	if c.metrics != nil {
		c.metrics.RecordError("yahoo_fetch")
	}
	if c.l != nil {
		c.l.Warn("yahoo fetch failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
	return models.PriceSeries{}, fmt.Errorf("fetch %s: %w", symbol, err)
}

func retryable(err error) bool {
	if errors.Is(err, ErrSymbolNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

func (c *Client) fetchChart(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error) {
	params := map[string][]string{
		"interval":             {"1d"},
		"events":               {"history"},
		"includeAdjustedClose": {"true"},
	}
	if !start.IsZero() {
		params["period1"] = []string{strconv.FormatInt(start.Unix(), 10)}
	} else {
		params["period1"] = []string{"0"}
	}
	if end.IsZero() {
		end = util.TruncateDay(time.Now())
	}
	// period2 is exclusive
	params["period2"] = []string{strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10)}

	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         fmt.Sprintf("%s/v8/finance/chart/%s", c.cfg.BaseURL, url.PathEscape(symbol)),
		Headers:     map[string]string{"User-Agent": c.cfg.UserAgent},
		QueryParams: params,
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Code == 404 {
			return models.PriceSeries{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return models.PriceSeries{}, err
	}
	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return models.PriceSeries{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return models.PriceSeries{}, fmt.Errorf("yahoo api error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return models.PriceSeries{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	return toSeries(symbol, resp.Chart.Result[0], start, end), nil
}

// toSeries converts one chart result into a clean series: adjusted closes when
// present, null and non-positive closes dropped, one point per calendar day
// (the last one wins), restricted to [start, end].
func toSeries(symbol string, r chartResult, start, end time.Time) models.PriceSeries {
	var closes []*float64
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) == len(r.Timestamp) {
		closes = r.Indicators.AdjClose[0].AdjClose
	} else if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	byDay := make(map[int64]models.PricePoint, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		day := util.TruncateDay(time.Unix(ts+r.Meta.GMTOffset, 0))
		if (!start.IsZero() && day.Before(start)) || (!end.IsZero() && day.After(end)) {
			continue
		}
		byDay[day.Unix()] = models.PricePoint{Date: day, Close: *closes[i]}
	}

	s := models.PriceSeries{Symbol: symbol, Points: make([]models.PricePoint, 0, len(byDay))}
	for _, p := range byDay {
		s.Points = append(s.Points, p)
	}
	sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Date.Before(s.Points[j].Date) })
	return s
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = util.NormalizeSymbol(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

var _ domrepo.PriceStore = (*Client)(nil)
