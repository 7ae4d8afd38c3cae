package gateway

import (
    "bytes"
    "context"
    "encoding/json"

    "BingoPulse/internal/domain/models"
)

type HTTPStatusClient struct{ base *HTTPServiceBase }

func NewHTTPStatusClient(base *HTTPServiceBase) *HTTPStatusClient {
    return &HTTPStatusClient{base: base}
}

type sentinelResponse struct {
    LastUpdated json.RawMessage `json:"last_updated"`
}

// Sentinel reads the backend's last-updated token. A null token is returned as "".
func (s *HTTPStatusClient) Sentinel(ctx context.Context) (models.ChangeSentinel, error) {
    var r sentinelResponse
    if err := s.base.GetJSON(ctx, "status_last_updated", "/status/last-updated", nil, &r); err != nil {
        return "", err
    }
    return r.sentinel(), nil
}

// ForceRefresh asks the backend to recompute and returns the new token.
func (s *HTTPStatusClient) ForceRefresh(ctx context.Context) (models.ChangeSentinel, error) {
    var r sentinelResponse
    if err := s.base.PostJSON(ctx, "status_refresh", "/status/refresh", struct{}{}, &r); err != nil {
        return "", err
    }
    return r.sentinel(), nil
}

func (r sentinelResponse) sentinel() models.ChangeSentinel {
    raw := bytes.TrimSpace(r.LastUpdated)
    if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
        return ""
    }
    var s string
    if err := json.Unmarshal(raw, &s); err == nil {
        return models.ChangeSentinel(s)
    }
    return models.ChangeSentinel(raw)
}
