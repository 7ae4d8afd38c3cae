package gateway

import (
    domrepo "BingoPulse/internal/domain/repository"
    "BingoPulse/internal/service/cache"
    "BingoPulse/pkg/config"
    applogger "BingoPulse/pkg/logger"
)

// Gateway bundles every backend client behind the domain interfaces.
type Gateway struct {
    *HTTPDrawClient
    *HTTPPredictionClient
    *HTTPStatusClient
    *HTTPSimulationClient
}

// New builds a Gateway from config. drawCache may be nil.
func New(cfg *config.Config, drawCache cache.BytesCache, l *applogger.Logger) *Gateway {
    base := NewHTTPServiceBase(cfg)
    return &Gateway{
        HTTPDrawClient:       NewHTTPDrawClient(base, drawCache, cfg.Cache.DrawTTL, l.Named("draws")),
        HTTPPredictionClient: NewHTTPPredictionClient(base),
        HTTPStatusClient:     NewHTTPStatusClient(base),
        HTTPSimulationClient: NewHTTPSimulationClient(base),
    }
}

var (
    _ domrepo.PredictionGateway = (*Gateway)(nil)
    _ domrepo.AnalysisGateway   = (*Gateway)(nil)
    _ domrepo.StatusGateway     = (*Gateway)(nil)
    _ domrepo.LedgerGateway     = (*Gateway)(nil)
)
