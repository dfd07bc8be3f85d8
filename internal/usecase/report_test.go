package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MomentumRank/internal/domain/models"
)

func TestIndustryBreakdown(t *testing.T) {
	set := models.TickerSet{Tickers: []models.TickerInfo{
		{Symbol: "A", Industry: "Utilities"},
		{Symbol: "B", Industry: "Energy"},
		{Symbol: "C", Industry: "Energy"},
		{Symbol: "D", Industry: "Financials"},
		{Symbol: "E", Industry: "Energy"},
		{Symbol: "F", Industry: "Financials"},
	}}
	got := IndustryBreakdown(set)
	require.Len(t, got, 3)
	assert.Equal(t, models.IndustryShare{Industry: "Energy", Count: 3, Percentage: 50}, got[0])
	assert.Equal(t, models.IndustryShare{Industry: "Financials", Count: 2, Percentage: 33.3}, got[1])
	assert.Equal(t, models.IndustryShare{Industry: "Utilities", Count: 1, Percentage: 16.7}, got[2])

	assert.Nil(t, IndustryBreakdown(models.TickerSet{}))
}

func TestRoundMomentum(t *testing.T) {
	assert.Equal(t, 1.2346, RoundMomentum(1.23456))
	assert.Equal(t, -0.5, RoundMomentum(-0.49999))
	assert.Equal(t, 0.0, RoundMomentum(0.00001))
}

func TestBuildReport(t *testing.T) {
	today := rankedToday(20)
	today[19].Momentum = models.Defined(-1.5, models.ModeSimpleReturn)
	year := 1999
	calc := &models.Calculation{
		Result: &models.MomentumResult{RunID: "run-1", LastDate: day0, Today: today},
		Tickers: models.TickerSet{Tickers: []models.TickerInfo{
			{Symbol: "R001", Company: "First Co", Industry: "Energy", YearAdded: &year},
		}},
		Universe:  models.Universe{Token: "abc"},
		FromCache: true,
	}

	rep := BuildReport(newTestClassifier(), calc, 5)
	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, "custom-abc", rep.Universe)
	assert.True(t, rep.FromCache)
	assert.True(t, rep.MixedModes)
	require.Len(t, rep.Rows, 20)

	first := rep.Rows[0]
	assert.Equal(t, "First Co", first.Company)
	assert.Equal(t, "Energy", first.Industry)
	require.NotNil(t, first.YearAdded)
	assert.Equal(t, 1999, *first.YearAdded)
	assert.Equal(t, models.StrongBuy, first.Classification)

	// Unknown metadata falls back to the symbol.
	assert.Equal(t, "R002", rep.Rows[1].Company)
	assert.Equal(t, models.UnknownIndustry, rep.Rows[1].Industry)

	// K=20: ranks 1-2 Strong Buy, 18-20 Strong Sell.
	require.Len(t, rep.Top, 2)
	assert.Equal(t, "R001", rep.Top[0].Symbol)
	require.Len(t, rep.Bottom, 3)
	assert.Equal(t, 18, rep.Bottom[0].FactorRank)

	require.Len(t, rep.Candidates, 10)
	assert.Equal(t, models.Long, rep.Candidates[0].Side)
	assert.Equal(t, models.Short, rep.Candidates[9].Side)
	assert.Equal(t, 20, rep.Candidates[9].FactorRank)
	assert.Equal(t, models.ModeSimpleReturn, rep.Candidates[9].Mode)

	assert.Equal(t, 2, rep.Counts[models.StrongBuy])
	assert.Equal(t, 3, rep.Counts[models.StrongSell])
}
