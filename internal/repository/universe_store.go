package repository

import (
	"context"
	"errors"
	"fmt"

	"MomentumRank/internal/domain/models"
	domrepo "MomentumRank/internal/domain/repository"
	"MomentumRank/pkg/cache"
	applogger "MomentumRank/pkg/logger"
)

const universeKeyPrefix = "universe"

// CacheUniverseStore keeps uploaded ticker files in a cache.Store, addressed by
// the MD5 of the raw upload. Identical uploads share a token.
type CacheUniverseStore struct {
	store cache.Store
	l     *applogger.Logger
}

func NewCacheUniverseStore(store cache.Store) *CacheUniverseStore {
	return &CacheUniverseStore{store: store}
}

// SetLogger injects a structured logger.
func (s *CacheUniverseStore) SetLogger(l *applogger.Logger) { s.l = l }

// Save parses raw and registers it.
func (s *CacheUniverseStore) Save(ctx context.Context, raw []byte) (models.Universe, models.TickerSet, error) {
	set, err := ParseTickerBytes(raw)
	if err != nil {
		return models.Universe{}, models.TickerSet{}, err
	}

	u := models.Universe{Token: cache.HashBytes(raw)}
	if err := cache.SetJSON(ctx, s.store, s.key(u), set, 0); err != nil {
		return models.Universe{}, models.TickerSet{}, fmt.Errorf("store universe: %w", err)
	}

	if s.l != nil {
		s.l.Info("custom universe registered",
			applogger.String("token", u.Token),
			applogger.Int("symbols", len(set.Tickers)),
		)
	}
	return u, set, nil
}

// Get returns the tickers of a custom universe.
func (s *CacheUniverseStore) Get(ctx context.Context, u models.Universe) (models.TickerSet, error) {
	if u.IsDefault() {
		return models.TickerSet{}, fmt.Errorf("%w: default universe is not stored", models.ErrUnknownUniverse)
	}
	set, err := cache.GetJSON[models.TickerSet](ctx, s.store, s.key(u))
	if errors.Is(err, cache.ErrCacheMiss) {
		return models.TickerSet{}, fmt.Errorf("%w: %s", models.ErrUnknownUniverse, u.Token)
	}
	if err != nil {
		return models.TickerSet{}, fmt.Errorf("load universe %s: %w", u.Token, err)
	}
	return set, nil
}

func (s *CacheUniverseStore) key(u models.Universe) string {
	return cache.GenerateKeyWithParams(universeKeyPrefix, u.Token)
}

var _ domrepo.UniverseStore = (*CacheUniverseStore)(nil)
