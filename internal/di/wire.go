//go:build wireinject
// +build wireinject

package di

import (
	"FinSight/pkg/config"
	"FinSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideRowStore,
		ProvideVectorIndex,
		ProvideAlertPublisher,

		// Model services
		ProvideModelRunner,
		ProvideClassifier,
		ProvideSentiment,
		ProvideEmbedder,
		ProvideUsageLimiter,
		ProvideReasoner,

		// Query pipeline
		ProvideCatalog,
		ProvideSynthesizer,
		ProvideGuard,
		ProvideNLService,

		// Analysis
		ProvideAnomalyClassifier,
		ProvideSeeder,
		ProvideAnalyzer,

		// HTTP surface
		ProvideAlertHub,
		ProvideResponseCache,
		ProvideRouter,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
