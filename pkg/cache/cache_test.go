package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, s.Set(ctx, "k1", []byte("v1"), 0))
	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	ok, err := s.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Set(ctx, "k1", []byte("v2"), time.Hour))
	got, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, s.Delete(ctx, "k1"))
	ok, err = s.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	exerciseStore(t, mc)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := mc.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), 0))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), 0))
	time.Sleep(time.Millisecond)
	_, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", []byte("3"), 0))

	assert.Equal(t, 2, mc.Len())
	_, err = mc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, mc.Set(ctx, "k", buf, 0))
	buf[0] = 'z'

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestLayeredCache(t *testing.T) {
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2, WithLayeredMemoryTTL(time.Minute))
	defer lc.Close()
	exerciseStore(t, lc)
}

func TestLayeredCacheFillsL1FromL2(t *testing.T) {
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2)
	defer lc.Close()
	ctx := context.Background()

	require.NoError(t, l2.Set(ctx, "k", []byte("durable"), 0))
	got, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "durable", string(got))

	// served from L1 once L2 forgets it
	require.NoError(t, l2.Delete(ctx, "k"))
	got, err = lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "durable", string(got))
}

func TestLayeredCacheMemTTL(t *testing.T) {
	lc := NewLayeredCache(NewMemoryCache(), WithLayeredMemoryTTL(time.Minute))
	defer lc.Close()

	assert.Equal(t, time.Minute, lc.memTTL(0))
	assert.Equal(t, time.Second, lc.memTTL(time.Second))
	assert.Equal(t, time.Minute, lc.memTTL(time.Hour))
}

func TestBadgerCache(t *testing.T) {
	bc, err := NewBadgerCache(WithBadgerInMemory(true), WithBadgerPrefix("test"))
	require.NoError(t, err)
	defer bc.Close()
	exerciseStore(t, bc)
	assert.Equal(t, "test:k", string(bc.wrapKey("k")))
}

func TestJSONHelpers(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Symbols []string `json:"symbols"`
	}
	require.NoError(t, SetJSON(ctx, mc, "p", payload{Symbols: []string{"AAPL", "MSFT"}}, 0))
	got, err := GetJSON[payload](ctx, mc, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got.Symbols)

	require.NoError(t, mc.Set(ctx, "bad", []byte("{"), 0))
	_, err = GetJSON[payload](ctx, mc, "bad")
	assert.Error(t, err)

	_, err = GetJSON[payload](ctx, mc, "none")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "result:u1:2024-01-02", GenerateKeyWithParams("result", "u1", "2024-01-02"))
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", HashBytes([]byte("abc")))
}
