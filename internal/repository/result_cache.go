package repository

import (
	"context"
	"errors"
	"time"

	"MomentumRank/internal/domain/models"
	domrepo "MomentumRank/internal/domain/repository"
	"MomentumRank/pkg/cache"
	applogger "MomentumRank/pkg/logger"
	"MomentumRank/pkg/util"
)

const resultKeyPrefix = "momentum"

// cacheEnvelope is what is physically stored for one computation.
type cacheEnvelope struct {
	Key       string                 `json:"key"`
	CreatedAt time.Time              `json:"created_at"`
	Payload   *models.MomentumResult `json:"payload"`
}

// ResultCacheOption configures ResultCache.
type ResultCacheOption func(*ResultCache)

// ResultCache keeps whole computations in a cache.Store. Entries older than
// the validity window are ignored on read but never deleted here; the next
// fresh computation overwrites them.
type ResultCache struct {
	store    cache.Store
	validity time.Duration
	now      func() time.Time
	l        *applogger.Logger
}

// NewResultCache creates a result cache on top of store.
func NewResultCache(store cache.Store, opts ...ResultCacheOption) *ResultCache {
	c := &ResultCache{
		store:    store,
		validity: 24 * time.Hour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithValidity sets the maximum age of a served entry.
func WithValidity(d time.Duration) ResultCacheOption {
	return func(c *ResultCache) {
		if d > 0 {
			c.validity = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ResultCacheOption {
	return func(c *ResultCache) { c.now = now }
}

// SetLogger injects a structured logger.
func (c *ResultCache) SetLogger(l *applogger.Logger) { c.l = l }

// Key builds momentum:<source>:<start>:<end>.
func (c *ResultCache) Key(u models.Universe, start, end time.Time) string {
	return cache.GenerateKeyWithParams(resultKeyPrefix, u.Source(), util.FormatDate(start), util.FormatDate(end))
}

// Get returns the stored result when it exists and is fresh.
func (c *ResultCache) Get(ctx context.Context, key string) (*models.MomentumResult, bool) {
	env, err := cache.GetJSON[cacheEnvelope](ctx, c.store, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.warn("result cache read failed", key, err)
		}
		return nil, false
	}
	if env.Payload == nil || env.Key != key {
		c.warn("result cache entry malformed", key, nil)
		return nil, false
	}

	age := c.now().Sub(env.CreatedAt)
	if age > c.validity {
		if c.l != nil {
			c.l.Debug("result cache entry stale",
				applogger.String("key", key),
				applogger.Duration("age_ms", age),
			)
		}
		return nil, false
	}
	return env.Payload, true
}

// Put stores result under key. Failures are logged and otherwise ignored.
func (c *ResultCache) Put(ctx context.Context, key string, result *models.MomentumResult) {
	if result == nil {
		return
	}
	env := cacheEnvelope{Key: key, CreatedAt: c.now(), Payload: result}
	if err := cache.SetJSON(ctx, c.store, key, env, 0); err != nil {
		c.warn("result cache write failed", key, err)
	}
}

func (c *ResultCache) warn(msg, key string, err error) {
	if c.l == nil {
		return
	}
	fields := []applogger.Field{applogger.String("key", key)}
	if err != nil {
		fields = append(fields, applogger.Error(err))
	}
	c.l.Warn(msg, fields...)
}

var _ domrepo.ResultCache = (*ResultCache)(nil)
