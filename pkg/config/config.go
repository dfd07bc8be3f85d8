package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"5s"`
		RefreshLimit    struct {
			Capacity     float64 `yaml:"capacity" default:"3"`
			RefillPerSec float64 `yaml:"refill_per_sec" default:"0.05"`
		} `yaml:"refresh_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Momentum Momentum `yaml:"momentum"`
	Universe struct {
		DefaultFile  string `yaml:"default_file" default:"data/sp500_tickers.csv"`
		HistoryDays  int    `yaml:"history_days" default:"730" validate:"gt=0"`
		MaxUploadKiB int    `yaml:"max_upload_kib" default:"1024" validate:"gt=0"`
	} `yaml:"universe"`
	Prices struct {
		Source string `yaml:"source" default:"yahoo" validate:"oneof=yahoo clickhouse archive"`
		Yahoo  Yahoo  `yaml:"yahoo"`
	} `yaml:"prices"`
	Cache struct {
		Backend  string        `yaml:"backend" default:"badger" validate:"oneof=memory redis badger layered"`
		Validity time.Duration `yaml:"validity" default:"24h" validate:"gt=0"`
		Dir      string        `yaml:"dir" default:".cache"`
		Prefix   string        `yaml:"prefix" default:"momentumrank"`
		Redis    struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size" default:"10"`
		} `yaml:"redis"`
		MemoryMaxSize int `yaml:"memory_max_size" default:"256"`
	} `yaml:"cache"`
	ClickHouse struct {
		Host        string        `yaml:"host" default:"localhost"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"momentum"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		UseHTTP     bool          `yaml:"use_http"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"30s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled         bool          `yaml:"enabled"`
		Brokers         []string      `yaml:"brokers"`
		ClientID        string        `yaml:"client_id" default:"momentumrank"`
		Topic           string        `yaml:"topic" default:"momentum.rankings"`
		AutoCreateTopic bool          `yaml:"auto_create_topic"`
		RequiredAcks    int           `yaml:"required_acks" default:"1"`
		Compression     string        `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
		MaxAttempts     int           `yaml:"max_attempts" default:"3"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		BatchSize       int           `yaml:"batch_size" default:"500"`
	} `yaml:"kafka"`
	Schedule struct {
		Enabled     bool   `yaml:"enabled"`
		RefreshCron string `yaml:"refresh_cron" default:"30 22 * * 1-5"`
	} `yaml:"schedule"`
}

// Momentum holds the scoring windows and classification fractions.
type Momentum struct {
	LongWindow     int           `yaml:"long_window" default:"252" validate:"gt=21"`
	VolWindow      int           `yaml:"vol_window" default:"126" validate:"gt=1"`
	ShortLookback  int           `yaml:"short_lookback" default:"21" validate:"gt=0"`
	MinHistory     int           `yaml:"min_history" default:"126" validate:"gt=1"`
	TopFraction    float64       `yaml:"top_fraction" default:"0.1" validate:"gt=0,lt=0.5"`
	BottomFraction float64       `yaml:"bottom_fraction" default:"0.9" validate:"gt=0.5,lt=1"`
	TimeBudget     time.Duration `yaml:"time_budget" default:"5m"`
	DisplayTop     int           `yaml:"display_top" default:"10" validate:"gte=0"`
}

// Yahoo configures the chart API price supplier.
type Yahoo struct {
	BaseURL        string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
	Timeout        time.Duration `yaml:"timeout" default:"20s"`
	Workers        int           `yaml:"workers" default:"4" validate:"gt=0"`
	ChunkSize      int           `yaml:"chunk_size" default:"25" validate:"gt=0"`
	ChunkThreshold int           `yaml:"chunk_threshold" default:"50" validate:"gte=0"`
	MaxRetries     int           `yaml:"max_retries" default:"5" validate:"gt=0"`
	RetryDelay     time.Duration `yaml:"retry_delay" default:"2s"`
	RatePerSec     float64       `yaml:"rate_per_sec" default:"4" validate:"gt=0"`
	Burst          int           `yaml:"burst" default:"4" validate:"gt=0"`
	UserAgent      string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; momentumrank/1.0)"`
}

var validate = validator.New()

// Default returns a configuration populated only from struct defaults.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file. Missing keys take their
// struct defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// An empty path starts from defaults.
func LoadWithEnv(path string) (*Config, error) {
	var (
		c   *Config
		err error
	)
	if path == "" {
		c = Default()
	} else {
		c, err = Load(path)
		if err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("PRICE_SOURCE"); v != "" {
		c.Prices.Source = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("UNIVERSE_FILE"); v != "" {
		c.Universe.DefaultFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Momentum.MinHistory > c.Momentum.LongWindow {
		return fmt.Errorf("momentum.min_history (%d) must not exceed momentum.long_window (%d)",
			c.Momentum.MinHistory, c.Momentum.LongWindow)
	}
	if c.Momentum.VolWindow >= c.Momentum.LongWindow {
		return fmt.Errorf("momentum.vol_window must be shorter than momentum.long_window")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Prices.Source != "yahoo" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required for price source %q", c.Prices.Source)
	}
	return nil
}
