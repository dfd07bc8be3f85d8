package repository

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MomentumRank/internal/domain/models"
	"MomentumRank/pkg/cache"
	applogger "MomentumRank/pkg/logger"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

type failingStore struct{ cache.Store }

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("disk on fire")
}

func sampleResult() *models.MomentumResult {
	d := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	obs := models.MomentumObservation{Symbol: "AAPL", Date: d, Momentum: models.Defined(1.2345, models.ModeNormalized)}
	undef := models.MomentumObservation{Symbol: "MSFT", Date: d, Momentum: models.Undefined(models.ModeNormalized)}
	ranked := models.RankedObservation{MomentumObservation: obs, FactorRank: 1}
	return &models.MomentumResult{
		RunID:        "run-1",
		Start:        d.AddDate(-2, 0, 0),
		End:          d,
		ComputedAt:   d.Add(20 * time.Hour),
		LastDate:     d,
		Observations: []models.MomentumObservation{obs, undef},
		Ranked:       []models.RankedObservation{ranked},
		Today:        []models.RankedObservation{ranked},
		Excluded:     []models.ExcludedSymbol{{Symbol: "NEW", Points: 12, Reason: models.ExcludeInsufficientHistory}},
		Symbols:      3,
	}
}

func TestResultCacheKey(t *testing.T) {
	c := NewResultCache(cache.NewMemoryCache())
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "momentum:default:2023-01-01:2024-12-31", c.Key(models.Universe{}, start, end))
	assert.Equal(t, "momentum:custom-abc:2023-01-01:2024-12-31", c.Key(models.Universe{Token: "abc"}, start, end))
	assert.NotEqual(t,
		c.Key(models.Universe{Token: cache.HashBytes([]byte("Symbol\nAAPL\n"))}, start, end),
		c.Key(models.Universe{Token: cache.HashBytes([]byte("Symbol\nMSFT\n"))}, start, end),
	)
}

func TestResultCacheRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 29, 9, 0, 0, 0, time.UTC)}
	store := cache.NewMemoryCache()
	defer store.Close()
	c := NewResultCache(store, WithClock(clock.Now))

	ctx := context.Background()
	want := sampleResult()
	c.Put(ctx, "k", want)

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, want.RunID, got.RunID)
	assert.True(t, want.LastDate.Equal(got.LastDate))
	require.Len(t, got.Observations, 2)
	assert.Equal(t, want.Observations[0].Momentum, got.Observations[0].Momentum)
	assert.False(t, got.Observations[1].Momentum.Valid)
	assert.Equal(t, want.Today[0].FactorRank, got.Today[0].FactorRank)
	assert.Equal(t, want.Excluded, got.Excluded)
}

func TestResultCacheStaleIsMissButKept(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 29, 9, 0, 0, 0, time.UTC)}
	store := cache.NewMemoryCache()
	defer store.Close()
	c := NewResultCache(store, WithClock(clock.Now), WithValidity(24*time.Hour))

	ctx := context.Background()
	c.Put(ctx, "k", sampleResult())

	clock.Advance(24 * time.Hour)
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok, "exactly at the validity boundary is still fresh")

	clock.Advance(time.Second)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)

	exists, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestResultCacheCorruptEntryIsMiss(t *testing.T) {
	var buf bytes.Buffer
	store := cache.NewMemoryCache()
	defer store.Close()
	c := NewResultCache(store)
	c.SetLogger(applogger.NewWithWriter(&buf, zerolog.WarnLevel))

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("{not json"), 0))

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "result cache read failed")

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestResultCacheStoreFailuresAreSwallowed(t *testing.T) {
	var buf bytes.Buffer
	c := NewResultCache(failingStore{})
	c.SetLogger(applogger.NewWithWriter(&buf, zerolog.WarnLevel))

	ctx := context.Background()
	assert.NotPanics(t, func() { c.Put(ctx, "k", sampleResult()) })
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "result cache write failed")
}
