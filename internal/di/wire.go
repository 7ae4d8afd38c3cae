//go:build wireinject
// +build wireinject

package di

import (
	"BingoPulse/pkg/config"
	"BingoPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideDrawCache,
		ProvideGateway,
		ProvideKafkaPublisher,
		ProvideHub,
		ProvideNotifier,

		// Stores and use cases
		ProvidePredictionStore,
		ProvideWatchdog,
		ProvideLedgerStore,
		ProvideAnalysis,
		ProvideRefreshLimiter,

		// Transport
		ProvideDashboardHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
