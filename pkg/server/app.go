package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"BingoPulse/internal/usecase"
	"BingoPulse/pkg/config"
	xhttp "BingoPulse/pkg/http"
	applogger "BingoPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	httpServer  *xhttp.Server
	predictions *usecase.PredictionStore
	watchdog    *usecase.Watchdog
	ledger      *usecase.LedgerStore
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	predictions *usecase.PredictionStore,
	watchdog *usecase.Watchdog,
	ledger *usecase.LedgerStore,
) *App {
	return &App{
		cfg:         cfg,
		logger:      l.Named("app"),
		httpServer:  srv,
		predictions: predictions,
		watchdog:    watchdog,
		ledger:      ledger,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	a.warmUp(ctx)

	if a.cfg.Watchdog.Enabled {
		a.watchdog.Start()
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// warmUp loads the first snapshot and ledger page. Failures are logged; the
// dashboard shows the error state and the watchdog retries.
func (a *App) warmUp(ctx context.Context) {
	wctx, cancel := context.WithTimeout(ctx, a.cfg.Gateway.Timeout+5*time.Second)
	defer cancel()

	if err := a.predictions.FetchAll(wctx); err != nil {
		a.logger.Warn("initial prediction fetch failed", applogger.Error(err))
	} else {
		a.logger.Info("predictions loaded", applogger.Int("window", a.predictions.Window()))
	}
	a.ledger.Refresh(wctx)
	if _, err := a.ledger.NextDraw(wctx); err != nil {
		a.logger.Warn("next draw lookup failed", applogger.Error(err))
	}
}

// shutdown stops producers of work first, then the transport.
func (a *App) shutdown() error {
	a.logger.Info("shutting down...")

	a.watchdog.Stop()
	if err := a.predictions.Close(); err != nil {
		a.logger.Warn("prediction store close error", applogger.Error(err))
	}
	if err := a.ledger.Close(); err != nil {
		a.logger.Warn("ledger store close error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.logger.Info("shutdown complete")
	return nil
}
