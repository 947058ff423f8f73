//go:build wireinject
// +build wireinject

package di

import (
	"ScalpSignal/pkg/config"
	"ScalpSignal/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,
		ProvideSignalPublisher,

		// Repositories and domain services
		ProvideMarketData,
		ProvideSignalHistory,
		ProvideSnapshotCache,
		ProvideIndicatorEngine,
		ProvidePredictor,
		ProvideDecisionEngine,

		// Presenters
		ProvideHub,
		ProvideTUIPresenter,
		ProvideDispatcher,

		// Use cases
		ProvideSignalPipeline,
		ProvideSessionState,
		ProvidePoller,

		// Application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
