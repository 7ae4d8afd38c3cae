package gateway

import (
    "context"
    "encoding/json"
    "fmt"
    "net/url"
    "strconv"
    "strings"
    "time"

    "BingoPulse/internal/domain/models"
    "BingoPulse/internal/service/cache"
    applogger "BingoPulse/pkg/logger"
)

// HTTPDrawClient reads historical draws. Draws never change once recorded,
// so lookups by term go through the cache when one is configured.
type HTTPDrawClient struct {
    base   *HTTPServiceBase
    cache  cache.BytesCache
    ttl    time.Duration
    logger *applogger.Logger
}

func NewHTTPDrawClient(base *HTTPServiceBase, c cache.BytesCache, ttl time.Duration, l *applogger.Logger) *HTTPDrawClient {
    return &HTTPDrawClient{base: base, cache: c, ttl: ttl, logger: l}
}

// LatestDraws returns up to limit draws, most recent first.
func (d *HTTPDrawClient) LatestDraws(ctx context.Context, limit int) ([]models.DrawRecord, error) {
    q := url.Values{}
    if limit > 0 {
        q.Set("limit", strconv.Itoa(limit))
    }
    var draws []models.DrawRecord
    if err := d.base.GetJSON(ctx, "draws_latest", "/draws/latest", q, &draws); err != nil {
        return nil, err
    }
    return draws, nil
}

// DrawByTerm returns one draw. A missing term surfaces as *xhttp.StatusError with status 404.
func (d *HTTPDrawClient) DrawByTerm(ctx context.Context, term string) (*models.DrawRecord, error) {
    term = strings.TrimSpace(term)
    if term == "" {
        return nil, fmt.Errorf("draw term required")
    }
    key := "draw:" + term

    if d.cache != nil {
        b, ok, err := d.cache.GetBytes(ctx, key)
        if err != nil {
            d.logger.Debug("draw cache read failed", applogger.String("term", term), applogger.Error(err))
        }
        if ok {
            var rec models.DrawRecord
            if err := json.Unmarshal(b, &rec); err == nil {
                return &rec, nil
            }
            _ = d.cache.Delete(ctx, key)
        }
    }

    var raw json.RawMessage
    if err := d.base.GetJSON(ctx, "draws_term", "/draws/"+url.PathEscape(term), nil, &raw); err != nil {
        return nil, err
    }
    var rec models.DrawRecord
    if err := json.Unmarshal(raw, &rec); err != nil {
        return nil, fmt.Errorf("decode draw %s: %w", term, err)
    }
    if d.cache != nil {
        if err := d.cache.SetBytes(ctx, key, raw, d.ttl); err != nil {
            d.logger.Debug("draw cache write failed", applogger.String("term", term), applogger.Error(err))
        }
    }
    return &rec, nil
}
