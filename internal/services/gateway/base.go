package gateway

import (
    "context"
    "errors"
    "fmt"
    "net/url"
    "strconv"
    "time"

    svcmetrics "BingoPulse/internal/service/metrics"
    "BingoPulse/pkg/config"
    xhttp "BingoPulse/pkg/http"
)

// HTTPServiceBase provides a DRY foundation for gateway HTTP clients.
// It centralizes client construction, URL building and per-endpoint metrics.
// No call is retried; callers decide what a failure means.
type HTTPServiceBase struct {
    baseURL string
    client  *xhttp.Client
}

// NewHTTPServiceBase builds an HTTP client with timeout and base URL from config.
func NewHTTPServiceBase(cfg *config.Config) *HTTPServiceBase {
    timeout := cfg.Gateway.Timeout
    if timeout <= 0 {
        timeout = 10 * time.Second
    }
    svcmetrics.Register()
    return &HTTPServiceBase{
        baseURL: cfg.Gateway.BaseURL,
        client: xhttp.NewClient(
            xhttp.WithTimeout(timeout),
            xhttp.WithUserAgent("bingopulse/1.0"),
        ),
    }
}

// GetJSON issues GET baseURL+path with query and decodes JSON into dest.
// endpoint is the low-cardinality metrics label.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, endpoint, path string, query url.Values, dest interface{}) error {
    return b.do(ctx, endpoint, xhttp.MethodGet, path, query, nil, dest)
}

// PostJSON posts the given payload to `path` under baseURL and decodes JSON into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, endpoint, path string, payload interface{}, dest interface{}) error {
    return b.do(ctx, endpoint, xhttp.MethodPost, path, nil, payload, dest)
}

// DeleteJSON issues DELETE baseURL+path and decodes JSON into dest.
func (b *HTTPServiceBase) DeleteJSON(ctx context.Context, endpoint, path string, dest interface{}) error {
    return b.do(ctx, endpoint, xhttp.MethodDelete, path, nil, nil, dest)
}

func (b *HTTPServiceBase) do(ctx context.Context, endpoint, method, path string, query url.Values, payload, dest interface{}) error {
    if b.client == nil || b.baseURL == "" {
        return fmt.Errorf("gateway http client not initialized")
    }
    opts := &xhttp.RequestOptions{
        Method:      method,
        URL:         b.baseURL + path,
        QueryParams: query,
    }
    if payload != nil {
        opts.Headers = map[string]string{"Content-Type": "application/json"}
        opts.Body = payload
    }

    start := time.Now()
    err := b.client.SendAndParse(ctx, opts, dest)
    svcmetrics.GatewayLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
    if err != nil {
        svcmetrics.GatewayErrors.WithLabelValues(endpoint, errorClass(err)).Inc()
        return fmt.Errorf("%s %s: %w", method, path, err)
    }
    return nil
}

func errorClass(err error) string {
    var se *xhttp.StatusError
    switch {
    case errors.As(err, &se):
        return strconv.Itoa(se.Status/100) + "xx"
    case errors.Is(err, context.Canceled):
        return "canceled"
    case errors.Is(err, context.DeadlineExceeded):
        return "timeout"
    default:
        return "transport"
    }
}
