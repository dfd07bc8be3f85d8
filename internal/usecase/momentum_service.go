package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MomentumRank/internal/domain/models"
	drepo "MomentumRank/internal/domain/repository"
	applogger "MomentumRank/pkg/logger"
	"MomentumRank/pkg/util"
)

// ServiceOption configures MomentumService.
type ServiceOption func(*MomentumService)

// WithServiceLogger sets the logger.
func WithServiceLogger(l *applogger.Logger) ServiceOption {
	return func(s *MomentumService) { s.l = l }
}

// WithServiceClock replaces time.Now.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *MomentumService) { s.now = now }
}

// WithHistoryDays sets the default lookback when no start date is given.
func WithHistoryDays(days int) ServiceOption {
	return func(s *MomentumService) {
		if days > 0 {
			s.historyDays = days
		}
	}
}

// WithDisplayTop sets the size of the top, bottom and candidate slices of a report.
func WithDisplayTop(n int) ServiceOption {
	return func(s *MomentumService) { s.displayTop = n }
}

// MomentumService resolves a universe, fetches prices, runs the engine behind
// the result cache and publishes fresh rankings.
type MomentumService struct {
	tickers     drepo.TickerSource
	universes   drepo.UniverseStore
	prices      drepo.PriceStore
	engine      *MomentumEngine
	classifier  *Classifier
	cache       drepo.ResultCache
	publisher   drepo.RankingPublisher
	metrics     drepo.Metrics
	historyDays int
	displayTop  int
	now         func() time.Time
	l           *applogger.Logger
}

// NewMomentumService creates a new MomentumService instance.
func NewMomentumService(
	tickers drepo.TickerSource,
	universes drepo.UniverseStore,
	prices drepo.PriceStore,
	engine *MomentumEngine,
	classifier *Classifier,
	cache drepo.ResultCache,
	publisher drepo.RankingPublisher,
	metrics drepo.Metrics,
	opts ...ServiceOption,
) *MomentumService {
	s := &MomentumService{
		tickers:     tickers,
		universes:   universes,
		prices:      prices,
		engine:      engine,
		classifier:  classifier,
		cache:       cache,
		publisher:   publisher,
		metrics:     metrics,
		historyDays: 730,
		displayTop:  10,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tickers resolves the ticker set of a universe.
func (s *MomentumService) Tickers(ctx context.Context, u models.Universe) (models.TickerSet, error) {
	if u.IsDefault() {
		set, err := s.tickers.Load(ctx)
		if err != nil {
			return models.TickerSet{}, fmt.Errorf("load default universe: %w", err)
		}
		return set, nil
	}
	return s.universes.Get(ctx, u)
}

// Resolve fills zero dates with the default history window and checks ordering.
func (s *MomentumService) Resolve(params models.CalculateParams) (models.CalculateParams, error) {
	if params.End.IsZero() {
		_, params.End = util.DefaultRange(s.now(), s.historyDays)
	}
	if params.Start.IsZero() {
		params.Start, _ = util.DefaultRange(params.End, s.historyDays)
	}
	params.Start = util.TruncateDay(params.Start)
	params.End = util.TruncateDay(params.End)
	if params.Start.After(params.End) {
		return params, fmt.Errorf("%w: start %s is after end %s", models.ErrInvalidRange,
			util.FormatDate(params.Start), util.FormatDate(params.End))
	}
	return params, nil
}

// Calculate returns the momentum result for a universe and range, served from
// the cache when allowed and fresh.
func (s *MomentumService) Calculate(ctx context.Context, params models.CalculateParams) (*models.Calculation, error) {
	began := s.now()
	params, err := s.Resolve(params)
	if err != nil {
		return nil, err
	}

	set, err := s.Tickers(ctx, params.Universe)
	if err != nil {
		s.recordRun(err)
		return nil, err
	}
	calc := &models.Calculation{Tickers: set, Universe: params.Universe}

	key := s.cache.Key(params.Universe, params.Start, params.End)
	if params.UseCache {
		res, ok := s.cache.Get(ctx, key)
		s.record(func(m drepo.Metrics) { m.RecordCache(ok) })
		if ok {
			calc.Result = res
			calc.FromCache = true
			s.recordRun(nil)
			if s.l != nil {
				s.l.Info("momentum served from cache",
					applogger.String("key", key),
					applogger.String("run_id", res.RunID),
				)
			}
			return calc, nil
		}
	}

	symbols := set.Symbols()
	s.record(func(m drepo.Metrics) { m.RecordUniverseSize(len(symbols)) })

	table, err := s.prices.GetCloses(ctx, symbols, params.Start, params.End)
	if err != nil {
		s.recordRun(err)
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	table = table.Reorder(symbols)

	res, err := s.engine.Run(ctx, table, params.Start, params.End)
	if err != nil {
		s.recordRun(err)
		return nil, fmt.Errorf("compute momentum: %w", err)
	}
	calc.Result = res

	scored := len(table.Series) - len(res.Excluded)
	s.record(func(m drepo.Metrics) {
		m.RecordSymbols(scored, len(symbols)-scored)
		m.RecordLatency("calculate", s.now().Sub(began).Seconds())
	})

	// A run cut short by the time budget is not cached.
	if !res.Partial {
		s.cache.Put(ctx, key, res)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRankings(ctx, params.Universe, res.RunID, s.classifier.Classify(res.Today)); err != nil {
			s.record(func(m drepo.Metrics) { m.RecordError("publish_rankings") })
			if s.l != nil {
				s.l.Warn("publish rankings failed", applogger.String("run_id", res.RunID), applogger.Error(err))
			}
		}
	}

	s.recordRun(nil)
	if s.l != nil {
		s.l.Info("momentum computed",
			applogger.String("run_id", res.RunID),
			applogger.String("universe", params.Universe.Source()),
			applogger.Int("requested", len(symbols)),
			applogger.Int("priced", len(table.Series)),
			applogger.Int("ranked_today", len(res.Today)),
			applogger.Bool("partial", res.Partial),
			applogger.Date("last_date", res.LastDate),
			applogger.Duration("elapsed_ms", s.now().Sub(began)),
		)
	}
	return calc, nil
}

// Report runs Calculate and formats the result for display. top bounds the
// top, bottom and candidate slices; zero or less uses the configured default.
func (s *MomentumService) Report(ctx context.Context, params models.CalculateParams, top int) (*models.Report, error) {
	calc, err := s.Calculate(ctx, params)
	if err != nil {
		return nil, err
	}
	if top <= 0 {
		top = s.displayTop
	}
	return BuildReport(s.classifier, calc, top), nil
}

// History returns the long-form rows of one symbol.
func (s *MomentumService) History(ctx context.Context, params models.CalculateParams, symbol string) ([]models.RankedObservation, error) {
	calc, err := s.Calculate(ctx, params)
	if err != nil {
		return nil, err
	}
	return calc.Result.History(util.NormalizeSymbol(symbol)), nil
}

// Industries returns the industry breakdown of a universe without computing anything.
func (s *MomentumService) Industries(ctx context.Context, u models.Universe) ([]models.IndustryShare, error) {
	set, err := s.Tickers(ctx, u)
	if err != nil {
		return nil, err
	}
	return IndustryBreakdown(set), nil
}

// RegisterUniverse stores an uploaded ticker file.
func (s *MomentumService) RegisterUniverse(ctx context.Context, raw []byte) (models.Universe, models.TickerSet, error) {
	return s.universes.Save(ctx, raw)
}

func (s *MomentumService) record(fn func(drepo.Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

func (s *MomentumService) recordRun(err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNoPriceData):
		outcome = "no_price_data"
	case errors.Is(err, models.ErrNoMomentumData):
		outcome = "no_momentum_data"
	case errors.Is(err, models.ErrNoValidMomentum):
		outcome = "no_valid_momentum"
	case errors.Is(err, models.ErrUnknownUniverse):
		outcome = "unknown_universe"
	default:
		outcome = "error"
	}
	s.record(func(m drepo.Metrics) { m.RecordRun(outcome) })
}
