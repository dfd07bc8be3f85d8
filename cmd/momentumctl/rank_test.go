package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MomentumRank/internal/domain/models"
)

func TestParseFlagDate(t *testing.T) {
	d, err := parseFlagDate("start", "")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = parseFlagDate("start", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = parseFlagDate("end", "15/03/2024")
	assert.ErrorContains(t, err, "--end")
}

func TestRenderReport(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	row := func(rank int, sym string, c models.Classification) models.ReportRow {
		return models.ReportRow{
			Symbol: sym, Company: sym + " Inc", Industry: "Energy",
			Momentum: 1.23456, Mode: models.ModeNormalized, FactorRank: rank, Classification: c,
		}
	}
	rep := &models.Report{
		Universe:   "default",
		Start:      day.AddDate(-2, 0, 0),
		End:        day,
		LastDate:   day,
		FromCache:  true,
		MixedModes: true,
		Rows:       []models.ReportRow{row(1, "AAA", models.StrongBuy), row(2, "BBB", models.StrongSell)},
		Top:        []models.ReportRow{row(1, "AAA", models.StrongBuy)},
		Candidates: []models.CandidateRow{
			{ReportRow: row(1, "AAA", models.StrongBuy), Side: models.Long},
			{ReportRow: row(2, "BBB", models.StrongSell), Side: models.Short},
		},
		Counts:   map[models.Classification]int{models.StrongBuy: 1, models.StrongSell: 1},
		Excluded: []models.ExcludedSymbol{{Symbol: "NEW", Points: 20, Reason: models.ExcludeInsufficientHistory}},
	}

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, rep, true))
	out := buf.String()

	assert.Contains(t, out, "Momentum as of 2024-03-15 (2022-03-15..2024-03-15, universe default, cache)")
	assert.Contains(t, out, "NOTE: short histories")
	assert.Contains(t, out, "Strong Buy=1 Buy=0 Neutral=0 Sell=0 Strong Sell=1")
	assert.Contains(t, out, "All rankings")
	assert.Contains(t, out, "AAA Inc")
	assert.Contains(t, out, "1.2346")
	assert.Contains(t, out, "long")
	assert.Contains(t, out, "short")
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "1 symbols excluded")
	assert.NotContains(t, out, "WARNING")
}
