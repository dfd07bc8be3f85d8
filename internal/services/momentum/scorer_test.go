package momentum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MomentumRank/internal/domain/models"
	"MomentumRank/internal/services/features"
	"MomentumRank/pkg/config"
)

func newTestScorer() *Scorer {
	return NewScorer(config.Default().Momentum)
}

// wave builds n positive closes with a drift and a deterministic wiggle.
func wave(n int, start, drift float64) []float64 {
	out := make([]float64, n)
	p := start
	for i := range out {
		p *= 1 + drift + 0.01*math.Sin(float64(i)*0.7)
		out[i] = p
	}
	return out
}

func TestScoreShortWindowUndefined(t *testing.T) {
	s := newTestScorer()
	for _, n := range []int{0, 1, 2, 50, 125} {
		m := s.Score(wave(n, 100, 0.001))
		assert.False(t, m.Valid, "len %d", n)
	}
}

func TestScorePrimaryMode(t *testing.T) {
	s := newTestScorer()
	w := wave(252, 100, 0.001)

	m := s.Score(w)
	require.True(t, m.Valid)
	assert.Equal(t, models.ModeNormalized, m.Mode)

	sigma, ok := features.SampleStdDev(features.PctReturns(w[252-127:]))
	require.True(t, ok)
	long := (w[251] - w[0]) / w[0]
	short := (w[251] - w[231]) / w[231]
	assert.InDelta(t, (long-short)/sigma, m.Value, 1e-9)
}

func TestScoreIsBitIdentical(t *testing.T) {
	s := newTestScorer()
	w := wave(252, 42, 0.0005)
	a := s.Score(w)
	b := s.Score(append([]float64(nil), w...))
	assert.Equal(t, math.Float64bits(a.Value), math.Float64bits(b.Value))
}

func TestScoreUsesLastLongWindow(t *testing.T) {
	s := newTestScorer()
	w := wave(400, 100, 0.001)
	assert.Equal(t, s.Score(w[400-252:]), s.Score(w))
}

func TestScoreFallbackMode(t *testing.T) {
	s := newTestScorer()

	w := wave(200, 100, 0.002)
	m := s.Score(w)
	require.True(t, m.Valid)
	assert.Equal(t, models.ModeSimpleReturn, m.Mode)
	assert.InDelta(t, (w[199]-w[200-126])/w[200-126], m.Value, 1e-12)

	// exactly the floor: window is len-1 closes
	w = wave(126, 100, 0.002)
	m = s.Score(w)
	require.True(t, m.Valid)
	assert.InDelta(t, (w[125]-w[1])/w[1], m.Value, 1e-12)
}

func TestNormalizedFlatPricesUndefined(t *testing.T) {
	s := newTestScorer()
	w := make([]float64, 252)
	for i := range w {
		w[i] = 10
	}
	m := s.Normalized(w)
	assert.False(t, m.Valid)
	assert.Equal(t, models.ModeNormalized, m.Mode)
}

func TestNormalizedBadClosesNeverPanic(t *testing.T) {
	s := newTestScorer()
	w := wave(252, 100, 0.001)
	w[0] = 0
	assert.NotPanics(t, func() {
		assert.False(t, s.Normalized(w).Valid)
	})

	w = wave(252, 100, 0.001)
	w[200] = math.NaN()
	assert.False(t, s.Normalized(w).Valid)
}

func TestFallbackWindow(t *testing.T) {
	s := newTestScorer()
	assert.Equal(t, 125, s.FallbackWindow(126))
	assert.Equal(t, 126, s.FallbackWindow(127))
	assert.Equal(t, 126, s.FallbackWindow(251))
}

func TestPlanMatchesScore(t *testing.T) {
	s := newTestScorer()

	_, _, ok := s.Plan(125)
	assert.False(t, ok)

	w, _, ok := s.Plan(300)
	require.True(t, ok)
	assert.Equal(t, 252, w)

	w, _, ok = s.Plan(200)
	require.True(t, ok)
	assert.Equal(t, 126, w)

	for _, n := range []int{126, 200, 251, 252, 300} {
		closes := wave(n, 100, 0.002)
		w, score, ok := s.Plan(n)
		require.True(t, ok, n)
		assert.Equal(t, score(closes[n-w:]), s.Score(closes), n)
	}
}
