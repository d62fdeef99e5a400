package di

import (
	"context"
	"fmt"
	"time"

	"FinSight/internal/anomaly"
	"FinSight/internal/catalog"
	"FinSight/internal/domain/repository"
	"FinSight/internal/domain/service"
	"FinSight/internal/handler/api"
	"FinSight/internal/nlsql"
	internalrepo "FinSight/internal/repository"
	icache "FinSight/internal/service/cache"
	"FinSight/internal/service/ratelimit"
	aimodels "FinSight/internal/services/models"
	"FinSight/internal/services/reasoner"
	"FinSight/internal/usecase"
	pkgcache "FinSight/pkg/cache"
	pkgch "FinSight/pkg/clickhouse"
	"FinSight/pkg/config"
	pkgkafka "FinSight/pkg/kafka"
	"FinSight/pkg/logger"
	"FinSight/pkg/metrics"
	"FinSight/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return logger.New(&logger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the
// vector table exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRowStore creates the warehouse row store.
func ProvideRowStore(client *pkgch.Client, l *logger.Logger) repository.RowStore {
	return internalrepo.NewClickHouseRowStore(client, l)
}

// ProvideVectorIndex creates the ClickHouse vector index and its table.
func ProvideVectorIndex(client *pkgch.Client, cfg *config.Config, l *logger.Logger) (repository.VectorIndex, error) {
	idx := internalrepo.NewClickHouseVectorIndex(client, cfg.Vector.Table, cfg.Vector.OverFetchFactor, l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := idx.Init(ctx); err != nil {
		return nil, fmt.Errorf("vector index schema: %w", err)
	}
	return idx, nil
}

// ProvideModelRunner creates the local model sidecar client.
func ProvideModelRunner(cfg *config.Config, l *logger.Logger) *aimodels.Runner {
	return aimodels.NewRunner(cfg.Models.ServiceURL, cfg.Models.Timeout, cfg.Models.EmbeddingDim, l)
}

// ProvideClassifier creates the intent classifier.
func ProvideClassifier(runner *aimodels.Runner) service.IntentClassifier {
	return aimodels.NewClassifier(runner)
}

// ProvideSentiment creates the sentiment scorer.
func ProvideSentiment(runner *aimodels.Runner) service.SentimentScorer {
	return aimodels.NewSentiment(runner)
}

// ProvideEmbedder creates the embedder.
func ProvideEmbedder(runner *aimodels.Runner) service.Embedder {
	return aimodels.NewEmbedder(runner)
}

// ProvideUsageLimiter creates the reasoner usage limiter.
func ProvideUsageLimiter(cfg *config.Config) *ratelimit.UsageLimiter {
	return ratelimit.NewUsageLimiter(
		cfg.HuggingFace.RequestsPerDay,
		cfg.HuggingFace.RequestsPerMonth,
		cfg.HuggingFace.MinInterval,
	)
}

// ProvideReasoner creates the remote reasoner.
func ProvideReasoner(cfg *config.Config, limiter *ratelimit.UsageLimiter, m repository.Metrics, l *logger.Logger) service.Reasoner {
	return reasoner.New(reasoner.Options{
		APIKey:      cfg.HuggingFace.APIKey,
		BaseURL:     cfg.HuggingFace.BaseURL,
		Model:       cfg.HuggingFace.Model,
		Timeout:     cfg.HuggingFace.Timeout,
		CacheTTL:    cfg.HuggingFace.CacheTTL,
		Temperature: cfg.HuggingFace.Temperature,
		TopP:        cfg.HuggingFace.TopP,
	}, limiter, m, l)
}

// ProvideCatalog creates the warehouse catalog.
func ProvideCatalog() *catalog.Catalog {
	return catalog.New()
}

// ProvideSynthesizer creates the SQL template synthesizer.
func ProvideSynthesizer() *nlsql.Synthesizer {
	return nlsql.NewSynthesizer()
}

// ProvideGuard creates the SQL guard.
func ProvideGuard() *nlsql.Guard {
	return nlsql.NewGuard()
}

// ProvideNLService creates the natural-language query service.
func ProvideNLService(
	classifier service.IntentClassifier,
	synthesizer *nlsql.Synthesizer,
	guard *nlsql.Guard,
	r service.Reasoner,
	cat *catalog.Catalog,
	store repository.RowStore,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *nlsql.Service {
	return nlsql.NewService(classifier, synthesizer, guard, r, cat, store, m, l, cfg.ClickHouse.DefaultRowLimit)
}

// ProvideAlertHub creates the websocket alert hub.
func ProvideAlertHub(l *logger.Logger) *api.AlertHub {
	return api.NewAlertHub(l)
}

// ProvideKafkaProducer creates the alert producer, or nil when alert
// publishing is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Alerts.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Alerts.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Alerts.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Alerts.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Alerts.Kafka.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Alerts.Kafka.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Alerts.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Alerts.Kafka.WriteTimeout, cfg.Alerts.Kafka.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Alerts.Kafka.MaxAttempts),
		pkgkafka.WithAsync(cfg.Alerts.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher combines the websocket hub with the optional
// Kafka fan-out.
func ProvideAlertPublisher(cfg *config.Config, hub *api.AlertHub, producer *pkgkafka.Producer, l *logger.Logger) repository.AlertPublisher {
	if producer == nil {
		return hub
	}
	kafkaSink := internalrepo.NewKafkaAlertPublisher(producer, cfg.Alerts.Kafka.Topic, l)
	return internalrepo.NewMultiAlertPublisher(hub, kafkaSink)
}

// ProvideAnomalyClassifier creates the anomaly scan pipeline.
func ProvideAnomalyClassifier(
	store repository.RowStore,
	index repository.VectorIndex,
	embedder service.Embedder,
	publisher repository.AlertPublisher,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *anomaly.Classifier {
	return anomaly.NewClassifier(store, index, embedder, publisher, m, l, cfg.Vector.AnomalyThreshold)
}

// ProvideSeeder creates the vector corpus seeder.
func ProvideSeeder(index repository.VectorIndex, embedder service.Embedder, l *logger.Logger) *anomaly.Seeder {
	return anomaly.NewSeeder(index, embedder, l)
}

// ProvideAnalyzer creates the analysis orchestrator.
func ProvideAnalyzer(
	queries *nlsql.Service,
	anomalies *anomaly.Classifier,
	store repository.RowStore,
	index repository.VectorIndex,
	embedder service.Embedder,
	sentiment service.SentimentScorer,
	r service.Reasoner,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(queries, anomalies, store, index, embedder, sentiment, r, m, l)
}

// ProvideResponseCache picks redis-backed layered caching when enabled,
// in-process TTL caching otherwise.
func ProvideResponseCache(cfg *config.Config, l *logger.Logger) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
			pkgcache.WithRedisPrefix("finsight"),
		)
		if err != nil {
			l.Warn("redis cache unavailable, using in-process cache", logger.Error(err))
		} else {
			return icache.NewLayeredBytes(pkgcache.NewLayeredCache(rc))
		}
	}
	return icache.NewTTLCache()
}

// ProvideRouter assembles the HTTP API.
func ProvideRouter(
	analyzer *usecase.Analyzer,
	hub *api.AlertHub,
	respCache icache.BytesCache,
	cfg *config.Config,
	l *logger.Logger,
) *api.Router {
	query := api.NewQueryHandler(analyzer, l)
	analysis := api.NewAnalysisHandler(analyzer, l)
	analysis.SetCache(respCache, cfg.Cache.ResultTTL)
	return api.NewRouter(query, analysis, hub)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	router *api.Router,
	hub *api.AlertHub,
	seeder *anomaly.Seeder,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
) *server.App {
	return server.New(cfg, l, router, hub, seeder, chClient, producer)
}
