package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"MomentumRank/internal/domain/models"
	domsvc "MomentumRank/internal/domain/service"
	applogger "MomentumRank/pkg/logger"
)

// EngineOption configures MomentumEngine.
type EngineOption func(*MomentumEngine)

// MomentumEngine rolls the scorer over every evaluable date of every symbol
// and ranks the symbols cross-sectionally per date.
type MomentumEngine struct {
	scorer domsvc.MomentumScorer
	budget time.Duration
	now    func() time.Time
	logger *applogger.Logger
}

// NewMomentumEngine creates an engine around scorer.
func NewMomentumEngine(scorer domsvc.MomentumScorer, opts ...EngineOption) *MomentumEngine {
	e := &MomentumEngine{
		scorer: scorer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithTimeBudget caps the wall-clock time of the scoring pass. Zero disables it.
func WithTimeBudget(d time.Duration) EngineOption {
	return func(e *MomentumEngine) { e.budget = d }
}

// WithEngineClock replaces time.Now.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *MomentumEngine) { e.now = now }
}

// WithEngineLogger sets the logger.
func WithEngineLogger(l *applogger.Logger) EngineOption {
	return func(e *MomentumEngine) { e.logger = l }
}

// Run scores and ranks table over [start, end]. Symbols are processed in table
// order, which is also the tie-break order for equal scores.
func (e *MomentumEngine) Run(ctx context.Context, table models.PriceTable, start, end time.Time) (*models.MomentumResult, error) {
	if table.Empty() {
		return nil, models.ErrNoPriceData
	}

	began := e.now()
	res := &models.MomentumResult{
		RunID:   uuid.NewString(),
		Start:   start,
		End:     end,
		Symbols: len(table.Series),
	}

	for i, series := range table.Series {
		if i > 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("momentum run: %w", err)
			}
			if e.budget > 0 && e.now().Sub(began) > e.budget {
				res.Partial = true
				for _, rest := range table.Series[i:] {
					res.Excluded = append(res.Excluded, models.ExcludedSymbol{
						Symbol: rest.Symbol,
						Points: rest.Len(),
						Reason: models.ExcludeTimeBudget,
					})
				}
				if e.logger != nil {
					e.logger.Warn("momentum time budget exceeded",
						applogger.Duration("budget_ms", e.budget),
						applogger.Int("processed", i),
						applogger.Int("skipped", len(table.Series)-i),
					)
				}
				break
			}
		}

		inRange := series.Between(start, end)
		obs, ok := e.scoreSeries(inRange)
		if !ok {
			res.Excluded = append(res.Excluded, models.ExcludedSymbol{
				Symbol: series.Symbol,
				Points: inRange.Len(),
				Reason: models.ExcludeInsufficientHistory,
			})
			continue
		}
		res.Observations = append(res.Observations, obs...)
	}

	if len(res.Observations) == 0 {
		return nil, models.ErrNoMomentumData
	}

	res.Ranked = RankByDate(res.Observations)
	if len(res.Ranked) == 0 {
		return nil, models.ErrNoValidMomentum
	}

	res.LastDate = res.Ranked[len(res.Ranked)-1].Date
	res.Today = rowsOn(res.Ranked, res.LastDate)
	res.ComputedAt = e.now()

	if e.logger != nil {
		e.logger.Debug("momentum run finished",
			applogger.String("run_id", res.RunID),
			applogger.Int("symbols", res.Symbols),
			applogger.Int("excluded", len(res.Excluded)),
			applogger.Int("observations", len(res.Observations)),
			applogger.Int("ranked_today", len(res.Today)),
			applogger.Date("last_date", res.LastDate),
			applogger.Duration("elapsed_ms", res.ComputedAt.Sub(began)),
		)
	}
	return res, nil
}

// scoreSeries slides a window over s. ok is false when s is below the history floor.
func (e *MomentumEngine) scoreSeries(s models.PriceSeries) ([]models.MomentumObservation, bool) {
	n := s.Len()
	window, score, ok := e.scorer.Plan(n)
	if !ok {
		return nil, false
	}
	closes := s.Closes()

	out := make([]models.MomentumObservation, 0, n-window+1)
	for idx := window - 1; idx < n; idx++ {
		out = append(out, models.MomentumObservation{
			Symbol:   s.Symbol,
			Date:     s.Points[idx].Date,
			Momentum: score(closes[idx-window+1 : idx+1]),
		})
	}
	return out, true
}

// RankByDate ranks the defined observations of each date by value, descending.
// Equal values keep their input order. The output is ordered by date, then rank.
func RankByDate(obs []models.MomentumObservation) []models.RankedObservation {
	byDate := make(map[int64][]models.MomentumObservation)
	for _, o := range obs {
		if !o.Momentum.Valid {
			continue
		}
		k := o.Date.Unix()
		byDate[k] = append(byDate[k], o)
	}

	dates := make([]int64, 0, len(byDate))
	for k := range byDate {
		dates = append(dates, k)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	out := make([]models.RankedObservation, 0, len(obs))
	for _, k := range dates {
		group := byDate[k]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Momentum.Value > group[j].Momentum.Value
		})
		for i, o := range group {
			out = append(out, models.RankedObservation{MomentumObservation: o, FactorRank: i + 1})
		}
	}
	return out
}

func rowsOn(ranked []models.RankedObservation, day time.Time) []models.RankedObservation {
	var out []models.RankedObservation
	for _, r := range ranked {
		if r.Date.Equal(day) {
			out = append(out, r)
		}
	}
	return out
}
