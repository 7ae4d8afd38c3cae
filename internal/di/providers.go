package di

import (
	"context"
	"fmt"
	"time"

	"BingoPulse/internal/domain/repository"
	"BingoPulse/internal/handler/api"
	"BingoPulse/internal/handler/ws"
	mid "BingoPulse/internal/middleware"
	internalrepo "BingoPulse/internal/repository"
	"BingoPulse/internal/service/cache"
	"BingoPulse/internal/service/ratelimit"
	"BingoPulse/internal/services/gateway"
	"BingoPulse/internal/usecase"
	"BingoPulse/pkg/config"
	xhttp "BingoPulse/pkg/http"
	pkgkafka "BingoPulse/pkg/kafka"
	applogger "BingoPulse/pkg/logger"
	"BingoPulse/pkg/metrics"
	"BingoPulse/pkg/server"
)

// ProvideLogger creates the root logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideDrawCache builds the in-process draw cache, backed by Redis when
// enabled. A Redis that does not answer a ping is skipped.
func ProvideDrawCache(cfg *config.Config, l *applogger.Logger) (cache.BytesCache, func()) {
	l1 := cache.NewTTLCache(1024)
	if !cfg.Cache.Redis.Enabled {
		return cache.NewLayeredCache(l1, nil, cfg.Cache.DrawTTL), func() {}
	}

	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		l.Warn("redis unavailable, using memory cache only", applogger.String("addr", cfg.Cache.Redis.Addr), applogger.Error(err))
		_ = rc.Close()
		return cache.NewLayeredCache(l1, nil, cfg.Cache.DrawTTL), func() {}
	}
	return cache.NewLayeredCache(l1, rc, cfg.Cache.DrawTTL), func() { _ = rc.Close() }
}

// ProvideGateway creates the backend HTTP clients.
func ProvideGateway(cfg *config.Config, drawCache cache.BytesCache, l *applogger.Logger) *gateway.Gateway {
	return gateway.New(cfg, drawCache, l.Named("gateway"))
}

// ProvideKafkaPublisher creates the change-event publisher. It returns nil
// when Kafka is disabled.
func ProvideKafkaPublisher(cfg *config.Config) (*internalrepo.KafkaPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic, cfg.Environment)
	return pub, func() { _ = pub.Close() }, nil
}

// ProvideHub creates the websocket event hub.
func ProvideHub(cfg *config.Config, l *applogger.Logger) (*ws.Hub, func()) {
	hub := ws.NewHub(l, cfg.WS.SendBuffer)
	return hub, func() { _ = hub.Close() }
}

// ProvideNotifier fans store events out to the hub and, if configured, Kafka.
// Each sink has its own pipeline worker so stores never wait on a sink and a
// failing sink retries without repeating deliveries to the others.
func ProvideNotifier(m repository.Metrics, hub *ws.Hub, pub *internalrepo.KafkaPublisher, l *applogger.Logger) (repository.Notifier, func()) {
	sinks := []internalrepo.NamedNotifier{{Name: "ws", Notifier: hub}}
	if pub != nil {
		sinks = append(sinks, internalrepo.NamedNotifier{Name: "kafka", Notifier: pub})
	}
	return mid.NewSinkPipelines(context.Background(), m, sinks,
		mid.WithBufferSize(512),
		mid.WithRetry(2, 100*time.Millisecond, time.Second),
		mid.WithPipelineLogger(l.Named("events")),
	)
}

func storeOptions(n repository.Notifier, m repository.Metrics, l *applogger.Logger) []usecase.Option {
	return []usecase.Option{usecase.WithNotifier(n), usecase.WithMetrics(m), usecase.WithLogger(l)}
}

// ProvidePredictionStore creates the prediction aggregation store.
func ProvidePredictionStore(cfg *config.Config, gw *gateway.Gateway, n repository.Notifier, m repository.Metrics, l *applogger.Logger) *usecase.PredictionStore {
	return usecase.NewPredictionStore(gw, usecase.PredictionStoreConfig{
		Window:        cfg.Predictions.AnalysisWindow,
		LatestDraws:   cfg.Predictions.LatestDraws,
		Dashboard:     cfg.Predictions.Dashboard,
		DashboardTopN: cfg.Predictions.DashboardTopN,
	}, storeOptions(n, m, l.Named("predictions"))...)
}

// ProvideWatchdog creates the update watchdog driving the prediction store.
func ProvideWatchdog(cfg *config.Config, gw *gateway.Gateway, store *usecase.PredictionStore, n repository.Notifier, m repository.Metrics, l *applogger.Logger) *usecase.Watchdog {
	return usecase.NewWatchdog(gw, store, cfg.Watchdog.Interval, usecase.SystemClock{}, storeOptions(n, m, l.Named("watchdog"))...)
}

// ProvideLedgerStore creates the wagering ledger store.
func ProvideLedgerStore(cfg *config.Config, gw *gateway.Gateway, n repository.Notifier, m repository.Metrics, l *applogger.Logger) *usecase.LedgerStore {
	return usecase.NewLedgerStore(gw, cfg.Ledger.PageSize, storeOptions(n, m, l.Named("ledger"))...)
}

func ProvideAnalysis(gw *gateway.Gateway, store *usecase.PredictionStore) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(gw, store)
}

func ProvideRefreshLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.RefreshPerSecond, cfg.RateLimit.RefreshBurst)
}

// ProvideDashboardHandler creates the REST handler.
func ProvideDashboardHandler(
	l *applogger.Logger,
	predictions *usecase.PredictionStore,
	watchdog *usecase.Watchdog,
	ledger *usecase.LedgerStore,
	analysis *usecase.AnalysisUseCase,
	limiter *ratelimit.Limiter,
) *api.DashboardEchoHandler {
	return api.NewDashboardEchoHandler(l, predictions, watchdog, ledger, analysis, limiter)
}

// ProvideHTTPServer creates the Echo server with every route handler.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, dashboard *api.DashboardEchoHandler, hub *ws.Hub) *xhttp.Server {
	return xhttp.NewServer(l, []xhttp.Handler{dashboard, hub},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.SlowThreshold),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	predictions *usecase.PredictionStore,
	watchdog *usecase.Watchdog,
	ledger *usecase.LedgerStore,
) *server.App {
	return server.New(cfg, l, srv, predictions, watchdog, ledger)
}
