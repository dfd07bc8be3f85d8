package repository

import (
	"context"
	"time"

	"MomentumRank/internal/domain/models"
)

// PriceStore supplies daily closes. Implementations may return a partial table;
// they fail only when nothing at all could be fetched.
type PriceStore interface {
	GetCloses(ctx context.Context, symbols []string, start, end time.Time) (models.PriceTable, error)
}

// PriceArchive persists raw closes for later reads.
type PriceArchive interface {
	Init(ctx context.Context) error
	StoreCloses(ctx context.Context, table models.PriceTable) error
	PriceStore
	Close() error
}

// TickerSource loads the default universe.
type TickerSource interface {
	Load(ctx context.Context) (models.TickerSet, error)
}

// UniverseStore keeps uploaded universes addressable by token.
type UniverseStore interface {
	Save(ctx context.Context, raw []byte) (models.Universe, models.TickerSet, error)
	Get(ctx context.Context, u models.Universe) (models.TickerSet, error)
}

// ResultCache stores whole computations keyed by universe and date range.
type ResultCache interface {
	Key(u models.Universe, start, end time.Time) string
	Get(ctx context.Context, key string) (*models.MomentumResult, bool)
	Put(ctx context.Context, key string, result *models.MomentumResult)
}

// RankingPublisher emits the classified rows of a fresh computation.
type RankingPublisher interface {
	PublishRankings(ctx context.Context, u models.Universe, runID string, rows []models.ClassifiedObservation) error
	Close() error
}

type Metrics interface {
	RecordRun(outcome string)
	RecordSymbols(scored, excluded int)
	RecordCache(hit bool)
	RecordUniverseSize(n int)
	RecordLatency(op string, seconds float64)
	RecordError(kind string)
}
