package gateway

import (
    "context"
    "encoding/json"
    "fmt"
    "net/url"
    "sort"
    "strconv"

    "BingoPulse/internal/domain/models"
)

type HTTPPredictionClient struct{ base *HTTPServiceBase }

func NewHTTPPredictionClient(base *HTTPServiceBase) *HTTPPredictionClient {
    return &HTTPPredictionClient{base: base}
}

var metricPaths = map[models.Metric]string{
    models.MetricBasic:            "/predictions/basic",
    models.MetricSuperNumber:      "/predictions/super-number",
    models.MetricHighLow:          "/predictions/high-low",
    models.MetricOddEven:          "/predictions/odd-even",
    models.MetricCoOccurrence:     "/predictions/co-occurrence",
    models.MetricTailNumber:       "/predictions/tail-number",
    models.MetricZoneDistribution: "/predictions/zone-distribution",
    models.MetricColdHotCycle:     "/predictions/cold-hot-cycle",
    models.MetricConsecutive:      "/predictions/consecutive",
    models.MetricSmartPick:        "/predictions/smart-pick",
}

// AllPredictions reads every metric for window in one call.
func (p *HTTPPredictionClient) AllPredictions(ctx context.Context, window int) (models.PredictionSet, error) {
    var set models.PredictionSet
    q := url.Values{"period_range": {strconv.Itoa(window)}}
    if err := p.base.GetJSON(ctx, "predictions_all", "/predictions/all", q, &set); err != nil {
        return models.PredictionSet{}, err
    }
    return set, nil
}

// BasicRanking reads the top-N basic ranking for window.
func (p *HTTPPredictionClient) BasicRanking(ctx context.Context, window, topN int) (*models.Ranking, error) {
    q := url.Values{"period_range": {strconv.Itoa(window)}}
    if topN > 0 {
        q.Set("top_n", strconv.Itoa(topN))
    }
    var r models.Ranking
    if err := p.base.GetJSON(ctx, "predictions_basic", "/predictions/basic", q, &r); err != nil {
        return nil, err
    }
    return &r, nil
}

// BasicRankingBatch reads basic rankings for several windows at once.
func (p *HTTPPredictionClient) BasicRankingBatch(ctx context.Context, windows []int, topN int) (map[int]models.Ranking, error) {
    if len(windows) == 0 {
        return map[int]models.Ranking{}, nil
    }
    sorted := append([]int(nil), windows...)
    sort.Ints(sorted)
    q := url.Values{}
    for _, w := range sorted {
        q.Add("period_ranges", strconv.Itoa(w))
    }
    if topN > 0 {
        q.Set("top_n", strconv.Itoa(topN))
    }

    var raw map[string]models.Ranking
    if err := p.base.GetJSON(ctx, "predictions_basic_batch", "/predictions/basic/batch", q, &raw); err != nil {
        return nil, err
    }
    out := make(map[int]models.Ranking, len(raw))
    for k, v := range raw {
        w, err := strconv.Atoi(k)
        if err != nil {
            return nil, fmt.Errorf("batch key %q: %w", k, err)
        }
        if v.PeriodRange == 0 {
            v.PeriodRange = w
        }
        out[w] = v
    }
    return out, nil
}

// Metric reads a single metric payload. Zero query fields are left to the backend default.
func (p *HTTPPredictionClient) Metric(ctx context.Context, m models.Metric, aq models.AnalysisQuery) (json.RawMessage, error) {
    path, ok := metricPaths[m]
    if !ok {
        return nil, fmt.Errorf("unknown metric %q", m)
    }
    q := url.Values{}
    setInt := func(key string, v int) {
        if v > 0 {
            q.Set(key, strconv.Itoa(v))
        }
    }
    setInt("period_range", aq.Window)
    setInt("top_n", aq.TopN)
    setInt("recent_window", aq.RecentWindow)
    setInt("pick_count", aq.PickCount)
    setInt("star_level", aq.StarLevel)
    if aq.Target != "" {
        q.Set("target", aq.Target)
    }

    var raw json.RawMessage
    if err := p.base.GetJSON(ctx, "predictions_"+string(m), path, q, &raw); err != nil {
        return nil, err
    }
    return raw, nil
}
