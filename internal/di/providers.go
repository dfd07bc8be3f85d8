package di

import (
	"context"
	"fmt"
	"time"

	"MomentumRank/internal/domain/repository"
	"MomentumRank/internal/handler/api"
	internalrepo "MomentumRank/internal/repository"
	"MomentumRank/internal/scheduler"
	imetrics "MomentumRank/internal/service/metrics"
	"MomentumRank/internal/service/ratelimit"
	"MomentumRank/internal/service/yahoo"
	"MomentumRank/internal/services/momentum"
	"MomentumRank/internal/usecase"
	"MomentumRank/pkg/cache"
	pkgch "MomentumRank/pkg/clickhouse"
	"MomentumRank/pkg/config"
	xhttp "MomentumRank/pkg/http"
	pkgkafka "MomentumRank/pkg/kafka"
	applogger "MomentumRank/pkg/logger"
	"MomentumRank/pkg/metrics"
	"MomentumRank/pkg/server"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideAPIMetrics registers the handler counters on the default registry.
func ProvideAPIMetrics() *imetrics.API {
	return imetrics.NewAPI(nil)
}

// ProvideCacheStore opens the store selected by cache.backend.
func ProvideCacheStore(cfg *config.Config, l *applogger.Logger) (cache.Store, func(), error) {
	c := cfg.Cache
	var (
		store cache.Store
		err   error
	)
	switch c.Backend {
	case "memory":
		store = cache.NewMemoryCache(cache.WithMemoryMaxSize(c.MemoryMaxSize))
	case "redis":
		store, err = newRedis(cfg)
	case "badger":
		store, err = cache.NewBadgerCache(cache.WithBadgerDir(c.Dir), cache.WithBadgerPrefix(c.Prefix))
	case "layered":
		var l2 cache.Store
		if l2, err = newRedis(cfg); err == nil {
			store = cache.NewLayeredCache(l2,
				cache.WithLayeredMemorySize(c.MemoryMaxSize),
				cache.WithLayeredMemoryTTL(c.Validity),
			)
		}
	default:
		err = fmt.Errorf("unknown cache backend %q", c.Backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cache store: %w", err)
	}

	l.Info("cache store ready", applogger.String("backend", c.Backend))
	cleanup := func() {
		if err := store.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}
	return store, cleanup, nil
}

func newRedis(cfg *config.Config) (*cache.RedisCache, error) {
	r := cfg.Cache.Redis
	return cache.NewRedisCache(
		cache.WithRedisAddr(r.Addr),
		cache.WithRedisPassword(r.Password),
		cache.WithRedisDB(r.DB),
		cache.WithRedisPool(r.PoolSize, r.PoolSize/2, 4*time.Second),
		cache.WithRedisPrefix(cfg.Cache.Prefix),
	)
}

// ProvideTickerSource reads the default universe file.
func ProvideTickerSource(cfg *config.Config) repository.TickerSource {
	return internalrepo.NewCSVTickerSource(cfg.Universe.DefaultFile)
}

// ProvideUniverseStore keeps uploaded universes in the cache store.
func ProvideUniverseStore(store cache.Store, l *applogger.Logger) repository.UniverseStore {
	s := internalrepo.NewCacheUniverseStore(store)
	s.SetLogger(l)
	return s
}

// ProvideResultCache wraps the cache store with validity checks.
func ProvideResultCache(cfg *config.Config, store cache.Store, l *applogger.Logger) repository.ResultCache {
	rc := internalrepo.NewResultCache(store, internalrepo.WithValidity(cfg.Cache.Validity))
	rc.SetLogger(l)
	return rc
}

// ProvideYahooClient creates the chart API client.
func ProvideYahooClient(cfg *config.Config, l *applogger.Logger, m repository.Metrics) *yahoo.Client {
	return yahoo.NewClient(cfg.Prices.Yahoo, yahoo.WithLogger(l), yahoo.WithMetrics(m))
}

// ProvidePriceStore selects the price source. "archive" reads through Yahoo
// and archives into ClickHouse; "clickhouse" reads the archive only.
func ProvidePriceStore(cfg *config.Config, y *yahoo.Client, l *applogger.Logger) (repository.PriceStore, func(), error) {
	if cfg.Prices.Source == "yahoo" {
		return y, func() {}, nil
	}

	ch, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	archive := internalrepo.NewCHPriceArchive(ch)
	archive.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archive.Init(ctx); err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	cleanup := func() {
		if err := ch.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	l.Info("clickhouse price archive ready",
		applogger.String("database", ch.Database()),
		applogger.String("source", cfg.Prices.Source),
	)

	if cfg.Prices.Source == "clickhouse" {
		return archive, cleanup, nil
	}
	store := internalrepo.NewArchivingPriceStore(y, archive)
	store.SetLogger(l)
	return store, cleanup, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	c := cfg.ClickHouse
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithAddress(c.Host, c.Port),
		pkgch.WithDatabase(c.Database),
		pkgch.WithCredentials(c.User, c.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(c.UseHTTP),
		pkgch.WithTimeouts(c.DialTimeout, c.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideRankingPublisher returns a Kafka publisher when kafka.enabled is set,
// otherwise a no-op.
func ProvideRankingPublisher(cfg *config.Config, l *applogger.Logger) (repository.RankingPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopRankingPublisher{}, func() {}, nil
	}

	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithClientID(k.ClientID),
		pkgkafka.WithAutoCreateTopic(k.AutoCreateTopic),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithWriteTimeout(k.WriteTimeout),
		pkgkafka.WithBatching(k.BatchSize, 100*time.Millisecond),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	pub := internalrepo.NewKafkaRankingPublisher(producer, k.Topic)
	l.Info("ranking publisher ready",
		applogger.Strings("brokers", k.Brokers),
		applogger.String("topic", k.Topic),
	)
	cleanup := func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	return pub, cleanup, nil
}

// ProvideMomentumEngine creates the cross-sectional engine.
func ProvideMomentumEngine(cfg *config.Config, l *applogger.Logger) *usecase.MomentumEngine {
	return usecase.NewMomentumEngine(
		momentum.NewScorer(cfg.Momentum),
		usecase.WithTimeBudget(cfg.Momentum.TimeBudget),
		usecase.WithEngineLogger(l),
	)
}

// ProvideClassifier creates the rank classifier.
func ProvideClassifier(cfg *config.Config) *usecase.Classifier {
	return usecase.NewClassifier(cfg.Momentum)
}

// ProvideMomentumService wires the momentum use case.
func ProvideMomentumService(
	cfg *config.Config,
	tickers repository.TickerSource,
	universes repository.UniverseStore,
	prices repository.PriceStore,
	engine *usecase.MomentumEngine,
	classifier *usecase.Classifier,
	results repository.ResultCache,
	publisher repository.RankingPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.MomentumService {
	return usecase.NewMomentumService(
		tickers, universes, prices, engine, classifier, results, publisher, m,
		usecase.WithServiceLogger(l),
		usecase.WithHistoryDays(cfg.Universe.HistoryDays),
		usecase.WithDisplayTop(cfg.Momentum.DisplayTop),
	)
}

// ProvideRefreshLimiter limits refresh=true requests per client.
func ProvideRefreshLimiter(cfg *config.Config) *ratelimit.Limiter {
	rl := cfg.Server.RefreshLimit
	return ratelimit.New(rl.Capacity, rl.RefillPerSec)
}

// ProvideMomentumHandler creates the echo handler.
func ProvideMomentumHandler(
	cfg *config.Config,
	l *applogger.Logger,
	svc *usecase.MomentumService,
	limiter *ratelimit.Limiter,
	m *imetrics.API,
) *api.MomentumEchoHandler {
	return api.NewMomentumEchoHandler(l, svc, limiter, m, int64(cfg.Universe.MaxUploadKiB)*1024)
}

// ProvideHTTPServer creates the echo server with every handler registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.MomentumEchoHandler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	s := cfg.Server
	return xhttp.NewServer(l, []xhttp.Handler{h},
		xhttp.WithHost(s.Host),
		xhttp.WithPort(s.Port),
		xhttp.WithTimeouts(s.ReadTimeout, s.WriteTimeout, s.ShutdownTimeout),
		xhttp.WithSlowThreshold(s.SlowThreshold),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithBodyLimit(fmt.Sprintf("%dK", cfg.Universe.MaxUploadKiB+64)),
	)
}

// ProvideScheduler returns nil when schedule.enabled is false.
func ProvideScheduler(cfg *config.Config, svc *usecase.MomentumService, l *applogger.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Schedule.Enabled {
		return nil, nil
	}
	s := scheduler.New(svc, l, cfg.Momentum.TimeBudget+time.Minute)
	if err := s.Register(cfg.Schedule.RefreshCron); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, sched *scheduler.Scheduler) *server.App {
	return server.New(cfg, l, srv, sched)
}
