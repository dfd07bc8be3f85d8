package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"MomentumRank/internal/domain/models"
)

// BuildReport joins the classified last-date rows with ticker metadata and
// rounds them for display. top bounds the Strong Buy, Strong Sell and
// trade-candidate slices.
func BuildReport(c *Classifier, calc *models.Calculation, top int) *models.Report {
	res := calc.Result
	classified := c.Classify(res.Today)
	meta := calc.Tickers.Index()

	rep := &models.Report{
		RunID:      res.RunID,
		Universe:   calc.Universe.Source(),
		Start:      res.Start,
		End:        res.End,
		LastDate:   res.LastDate,
		ComputedAt: res.ComputedAt,
		FromCache:  calc.FromCache,
		Partial:    res.Partial,
		MixedModes: mixedModes(res.Today),
		Rows:       make([]models.ReportRow, 0, len(classified)),
		Industries: IndustryBreakdown(calc.Tickers),
		Counts:     c.Counts(classified),
		Excluded:   res.Excluded,
	}
	for _, r := range classified {
		rep.Rows = append(rep.Rows, reportRow(r, meta))
	}
	for _, r := range c.TopN(classified, top) {
		rep.Top = append(rep.Top, reportRow(r, meta))
	}
	for _, r := range c.BottomN(classified, top) {
		rep.Bottom = append(rep.Bottom, reportRow(r, meta))
	}
	for _, cand := range c.TradeCandidates(classified, top) {
		rep.Candidates = append(rep.Candidates, models.CandidateRow{
			ReportRow: reportRow(cand.ClassifiedObservation, meta),
			Side:      cand.Side,
		})
	}
	return rep
}

// IndustryBreakdown counts the universe per industry with percentages rounded
// to one decimal, largest first.
func IndustryBreakdown(set models.TickerSet) []models.IndustryShare {
	if len(set.Tickers) == 0 {
		return nil
	}
	counts := map[string]int{}
	for _, t := range set.Tickers {
		counts[t.Industry]++
	}

	total := decimal.NewFromInt(int64(len(set.Tickers)))
	hundred := decimal.NewFromInt(100)
	out := make([]models.IndustryShare, 0, len(counts))
	for ind, n := range counts {
		pct := decimal.NewFromInt(int64(n)).Mul(hundred).Div(total).Round(1)
		out = append(out, models.IndustryShare{Industry: ind, Count: n, Percentage: pct.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Industry < out[j].Industry
	})
	return out
}

// RoundMomentum rounds a score to four decimals for display.
func RoundMomentum(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}

func reportRow(r models.ClassifiedObservation, meta map[string]models.TickerInfo) models.ReportRow {
	info, ok := meta[r.Symbol]
	if !ok {
		info = models.TickerInfo{Symbol: r.Symbol, Company: r.Symbol, Industry: models.UnknownIndustry}
	}
	return models.ReportRow{
		Symbol:         r.Symbol,
		Company:        info.Company,
		Industry:       info.Industry,
		YearAdded:      info.YearAdded,
		Momentum:       RoundMomentum(r.Momentum.Value),
		Mode:           r.Momentum.Mode,
		FactorRank:     r.FactorRank,
		Classification: r.Classification,
	}
}

func mixedModes(rows []models.RankedObservation) bool {
	for i := 1; i < len(rows); i++ {
		if rows[i].Momentum.Mode != rows[0].Momentum.Mode {
			return true
		}
	}
	return false
}
