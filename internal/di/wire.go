//go:build wireinject
// +build wireinject

package di

import (
	"MomentumRank/internal/usecase"
	"MomentumRank/pkg/config"
	"MomentumRank/pkg/server"

	"github.com/google/wire"
)

// momentumSet builds the momentum use case and everything under it.
var momentumSet = wire.NewSet(
	// Ambient
	ProvideLogger,
	ProvideMetrics,

	// Infrastructure
	ProvideCacheStore,
	ProvideYahooClient,
	ProvidePriceStore,
	ProvideRankingPublisher,

	// Repositories
	ProvideTickerSource,
	ProvideUniverseStore,
	ProvideResultCache,

	// Use cases
	ProvideMomentumEngine,
	ProvideClassifier,
	ProvideMomentumService,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		momentumSet,

		// Transport
		ProvideAPIMetrics,
		ProvideRefreshLimiter,
		ProvideMomentumHandler,
		ProvideHTTPServer,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil, nil
}

// InitializeService wires the momentum service alone, for the CLI.
func InitializeService(cfg *config.Config) (*usecase.MomentumService, func(), error) {
	wire.Build(momentumSet)
	return &usecase.MomentumService{}, nil, nil
}
