package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCache implements Store on an embedded Badger database, so cached
// results survive restarts without an external server.
type BadgerCache struct {
	db     *badger.DB
	prefix string
}

// NewBadgerCache opens (or creates) the database in the configured directory.
func NewBadgerCache(opts ...BadgerOption) (*BadgerCache, error) {
	cfg := &BadgerConfig{
		Dir:    ".cache",
		Prefix: "momentumrank",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	bopts := badger.DefaultOptions(cfg.Dir).WithLogger(nil)
	if cfg.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}
	return &BadgerCache{db: db, prefix: cfg.Prefix}, nil
}

func (c *BadgerCache) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.wrapKey(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("badger get: %w", err)
	}
	return out, nil
}

func (c *BadgerCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(c.wrapKey(key), value)
		if expiration > 0 {
			e = e.WithTTL(expiration)
		}
		return txn.SetEntry(e)
	})
}

func (c *BadgerCache) Delete(_ context.Context, keys ...string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(c.wrapKey(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *BadgerCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

func (c *BadgerCache) wrapKey(key string) []byte {
	if c.prefix == "" {
		return []byte(key)
	}
	return []byte(c.prefix + ":" + key)
}
