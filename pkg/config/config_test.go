package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 252, c.Momentum.LongWindow)
	assert.Equal(t, 126, c.Momentum.VolWindow)
	assert.Equal(t, 21, c.Momentum.ShortLookback)
	assert.Equal(t, 126, c.Momentum.MinHistory)
	assert.Equal(t, 24*time.Hour, c.Cache.Validity)
	assert.Equal(t, 730, c.Universe.HistoryDays)
	assert.Equal(t, 25, c.Prices.Yahoo.ChunkSize)
	assert.Equal(t, 5, c.Prices.Yahoo.MaxRetries)
	assert.Equal(t, 2*time.Second, c.Prices.Yahoo.RetryDelay)
	assert.False(t, c.Kafka.Enabled)
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: production
cache:
  backend: memory
  validity: 2h
momentum:
  top_fraction: 0.2
  bottom_fraction: 0.8
`))
	require.NoError(t, err)

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, 2*time.Hour, c.Cache.Validity)
	assert.InDelta(t, 0.2, c.Momentum.TopFraction, 1e-12)
	// untouched keys keep defaults
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 252, c.Momentum.LongWindow)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad backend":       "cache:\n  backend: sqlite\n",
		"bad log level":     "log:\n  level: trace\n",
		"min over long":     "momentum:\n  min_history: 300\n",
		"kafka w/o brokers": "kafka:\n  enabled: true\n",
		"bad yaml":          "server: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\n"), 0o644))

	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("UNIVERSE_FILE", "/data/custom.csv")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", c.Cache.Backend)
	assert.Equal(t, "redis:6380", c.Cache.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, "/data/custom.csv", c.Universe.DefaultFile)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
