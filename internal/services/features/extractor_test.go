package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPctReturns(t *testing.T) {
	got := PctReturns([]float64{100, 110, 99})
	require.Len(t, got, 2)
	assert.InDelta(t, 0.10, got[0], 1e-12)
	assert.InDelta(t, -0.10, got[1], 1e-12)

	assert.Nil(t, PctReturns([]float64{1}))
	assert.True(t, math.IsNaN(PctReturns([]float64{0, 1})[0]))
}

func TestTailReturns(t *testing.T) {
	closes := []float64{1, 2, 4, 8, 16}
	got := TailReturns(closes, 2)
	require.Len(t, got, 2)
	assert.InDelta(t, 1.0, got[0], 1e-12)
	assert.InDelta(t, 1.0, got[1], 1e-12)

	// asking for more returns than available yields all of them
	assert.Len(t, TailReturns(closes, 10), 4)
}

func TestSampleStdDev(t *testing.T) {
	sd, ok := SampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.True(t, ok)
	assert.InDelta(t, 2.138089935299395, sd, 1e-12)

	_, ok = SampleStdDev([]float64{1})
	assert.False(t, ok)

	_, ok = SampleStdDev([]float64{1, math.NaN(), 2})
	assert.False(t, ok)

	sd, ok = SampleStdDev([]float64{3, 3, 3})
	require.True(t, ok)
	assert.Zero(t, sd)
}

func TestSimpleReturnAndReturnSince(t *testing.T) {
	closes := []float64{50, 60, 80, 100}
	assert.InDelta(t, 1.0, SimpleReturn(closes), 1e-12)
	assert.InDelta(t, 0.25, ReturnSince(closes, 2), 1e-12)
	assert.InDelta(t, 1.0, ReturnSince(closes, 4), 1e-12)
	assert.True(t, math.IsNaN(ReturnSince(closes, 5)))
	assert.True(t, math.IsNaN(SimpleReturn([]float64{0, 1})))
}
