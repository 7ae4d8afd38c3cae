package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// MinAnalysisWindow is the smallest accepted number of draws per analysis.
const MinAnalysisWindow = 5

// ParseAnalysisWindow parses a user supplied window. Anything that is not a
// finite number >= MinAnalysisWindow is rejected; fractions are floored.
func ParseAnalysisWindow(candidate string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(candidate), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < MinAnalysisWindow || f > math.MaxInt32 {
		return 0, false
	}
	return int(math.Floor(f)), true
}

// Metric names a prediction metric as keyed in the aggregate response.
type Metric string

const (
	MetricBasic            Metric = "basic"
	MetricSuperNumber      Metric = "super_number"
	MetricHighLow          Metric = "high_low"
	MetricOddEven          Metric = "odd_even"
	MetricCoOccurrence     Metric = "co_occurrence"
	MetricTailNumber       Metric = "tail_number"
	MetricZoneDistribution Metric = "zone_distribution"
	MetricColdHotCycle     Metric = "cold_hot_cycle"
	MetricConsecutive      Metric = "consecutive"
	MetricSmartPick        Metric = "smart_pick"
)

// Metrics lists every metric in display order.
var Metrics = []Metric{
	MetricBasic,
	MetricSuperNumber,
	MetricHighLow,
	MetricOddEven,
	MetricCoOccurrence,
	MetricTailNumber,
	MetricZoneDistribution,
	MetricColdHotCycle,
	MetricConsecutive,
	MetricSmartPick,
}

// ParseMetric accepts both the snake_case key and the dashed path form.
func ParseMetric(s string) (Metric, bool) {
	m := Metric(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Metrics {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// PredictionSet holds one payload per metric. A nil payload means the
// backend did not return that metric. Payloads are opaque JSON.
type PredictionSet struct {
	Basic            json.RawMessage `json:"basic"`
	SuperNumber      json.RawMessage `json:"super_number"`
	HighLow          json.RawMessage `json:"high_low"`
	OddEven          json.RawMessage `json:"odd_even"`
	CoOccurrence     json.RawMessage `json:"co_occurrence"`
	TailNumber       json.RawMessage `json:"tail_number"`
	ZoneDistribution json.RawMessage `json:"zone_distribution"`
	ColdHotCycle     json.RawMessage `json:"cold_hot_cycle"`
	Consecutive      json.RawMessage `json:"consecutive"`
	SmartPick        json.RawMessage `json:"smart_pick"`
	PeriodRange      int             `json:"period_range"`
}

// UnmarshalJSON keeps only known metric keys; JSON null becomes nil.
func (p *PredictionSet) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = PredictionSet{}
	for _, m := range Metrics {
		if v, ok := raw[string(m)]; ok && string(v) != "null" {
			*p.field(m) = v
		}
	}
	if v, ok := raw["period_range"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &p.PeriodRange); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the payload for m, nil when absent.
func (p *PredictionSet) Get(m Metric) json.RawMessage {
	if f := p.field(m); f != nil {
		return *f
	}
	return nil
}

func (p *PredictionSet) field(m Metric) *json.RawMessage {
	switch m {
	case MetricBasic:
		return &p.Basic
	case MetricSuperNumber:
		return &p.SuperNumber
	case MetricHighLow:
		return &p.HighLow
	case MetricOddEven:
		return &p.OddEven
	case MetricCoOccurrence:
		return &p.CoOccurrence
	case MetricTailNumber:
		return &p.TailNumber
	case MetricZoneDistribution:
		return &p.ZoneDistribution
	case MetricColdHotCycle:
		return &p.ColdHotCycle
	case MetricConsecutive:
		return &p.Consecutive
	case MetricSmartPick:
		return &p.SmartPick
	}
	return nil
}

// RankedNumber is one entry of a ranking. Score is set for weighted rankings,
// Frequency for count based ones.
type RankedNumber struct {
	Number    string  `json:"number"`
	Score     float64 `json:"score,omitempty"`
	Frequency int     `json:"frequency,omitempty"`
	Rank      int     `json:"rank"`
}

// Ranking is a ranked number list for one window.
type Ranking struct {
	PredictionType string         `json:"prediction_type,omitempty"`
	PeriodRange    int            `json:"period_range"`
	Method         string         `json:"method,omitempty"`
	Predictions    []RankedNumber `json:"predictions"`
}

// AnalysisQuery parameterizes a single metric read. Zero fields are omitted
// from the request and the backend default applies.
type AnalysisQuery struct {
	Window       int    `query:"window" validate:"omitempty,gte=5"`
	TopN         int    `query:"top_n" validate:"omitempty,min=1,max=80"`
	Target       string `query:"target" validate:"omitempty,numeric"`
	RecentWindow int    `query:"recent_window" validate:"omitempty,min=1"`
	PickCount    int    `query:"pick_count" validate:"omitempty,min=1,max=10"`
	StarLevel    int    `query:"star_level" validate:"omitempty,min=1,max=10"`
}

// PredictionSnapshot is one consistent result of a fan-out fetch. It is
// never mutated after publication.
type PredictionSnapshot struct {
	Window           int           `json:"window"`
	Predictions      PredictionSet `json:"predictions"`
	LatestDraws      []DrawRecord  `json:"latest_draws"`
	DashboardRanking *Ranking      `json:"dashboard_ranking,omitempty"`
	FetchedAt        time.Time     `json:"fetched_at"`
	Generation       uint64        `json:"generation"`
}

// PredictionState is what the aggregation store exposes. Snapshot is nil
// until the first successful fetch.
type PredictionState struct {
	Window   int                 `json:"window"`
	Snapshot *PredictionSnapshot `json:"snapshot"`
	Loading  bool                `json:"loading"`
	Error    string              `json:"error,omitempty"`
	ErrorAt  time.Time           `json:"error_at,omitempty"`
}

// ChangeSentinel is the backend's opaque last-updated token. Empty means the
// backend has not computed anything yet.
type ChangeSentinel string
