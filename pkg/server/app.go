package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"MomentumRank/internal/scheduler"
	"MomentumRank/pkg/config"
	xhttp "MomentumRank/pkg/http"
	applogger "MomentumRank/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	sched      *scheduler.Scheduler
}

// New creates a new App instance with all dependencies. sched may be nil.
func New(cfg *config.Config, l *applogger.Logger, httpServer *xhttp.Server, sched *scheduler.Scheduler) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		sched:      sched,
	}
}

// Run starts the HTTP server and the refresh scheduler, then blocks until
// SIGINT/SIGTERM or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.sched != nil {
		a.sched.Start()
		a.l.Info("refresh schedule active", applogger.String("cron", a.cfg.Schedule.RefreshCron))
	}

	a.l.Info("momentumrank started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("price_source", a.cfg.Prices.Source),
		applogger.String("cache_backend", a.cfg.Cache.Backend),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops the scheduler before the server so no refresh outlives it.
// Infrastructure clients are closed by the DI cleanup.
func (a *App) shutdown() error {
	if a.sched != nil {
		a.sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.l.Info("shutdown complete")
	return nil
}
