package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryKeepsUndefinedRows(t *testing.T) {
	d0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d1 := d0.AddDate(0, 0, 1)

	obs := func(sym string, d time.Time, m Momentum) MomentumObservation {
		return MomentumObservation{Symbol: sym, Date: d, Momentum: m}
	}
	res := &MomentumResult{
		Observations: []MomentumObservation{
			obs("AAA", d1, Defined(0.5, ModeNormalized)),
			obs("AAA", d0, Undefined(ModeNormalized)),
			obs("BBB", d0, Defined(1.2, ModeNormalized)),
			obs("BBB", d1, Defined(0.1, ModeNormalized)),
		},
		Ranked: []RankedObservation{
			{MomentumObservation: obs("BBB", d0, Defined(1.2, ModeNormalized)), FactorRank: 1},
			{MomentumObservation: obs("AAA", d1, Defined(0.5, ModeNormalized)), FactorRank: 1},
			{MomentumObservation: obs("BBB", d1, Defined(0.1, ModeNormalized)), FactorRank: 2},
		},
	}

	hist := res.History("AAA")
	require.Len(t, hist, 2)
	assert.Equal(t, d0, hist[0].Date)
	assert.False(t, hist[0].Momentum.Valid)
	assert.Equal(t, 0, hist[0].FactorRank)
	assert.Equal(t, d1, hist[1].Date)
	assert.Equal(t, 1, hist[1].FactorRank)

	b, err := json.Marshal(hist[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"value":null`)
	assert.NotContains(t, string(b), "factor_rank")

	assert.Len(t, res.History("BBB"), 2)
	assert.Empty(t, res.History("CCC"))
}
