package repository

import (
	"context"
	"encoding/json"

	"BingoPulse/internal/domain/models"
)

// PredictionGateway serves the reads that make up a prediction snapshot.
type PredictionGateway interface {
	AllPredictions(ctx context.Context, window int) (models.PredictionSet, error)
	LatestDraws(ctx context.Context, limit int) ([]models.DrawRecord, error)
	BasicRanking(ctx context.Context, window, topN int) (*models.Ranking, error)
}

// AnalysisGateway serves on-demand drill-down reads outside the snapshot.
type AnalysisGateway interface {
	DrawByTerm(ctx context.Context, term string) (*models.DrawRecord, error)
	BasicRankingBatch(ctx context.Context, windows []int, topN int) (map[int]models.Ranking, error)
	Metric(ctx context.Context, m models.Metric, q models.AnalysisQuery) (json.RawMessage, error)
}

// StatusGateway exposes the change sentinel.
type StatusGateway interface {
	Sentinel(ctx context.Context) (models.ChangeSentinel, error)
	ForceRefresh(ctx context.Context) (models.ChangeSentinel, error)
}

// LedgerGateway is the simulated wagering backend.
type LedgerGateway interface {
	PlaceBet(ctx context.Context, req models.PlaceBetRequest) ([]models.Bet, error)
	ListBets(ctx context.Context, q models.BetQuery) (*models.BetPage, error)
	BetStats(ctx context.Context) (*models.BetStats, error)
	SettleBets(ctx context.Context) (*models.SettlementSummary, error)
	CancelBet(ctx context.Context, id int64) (*models.CancelAck, error)
	NextDraw(ctx context.Context) (*models.NextDraw, error)
}

// Notifier receives an event after a store applied new state.
// Implementations must not block for long; stores call it inline.
type Notifier interface {
	Notify(ctx context.Context, ev models.Event) error
}

type Metrics interface {
	RecordFetch(result string, seconds float64)
	RecordGeneration(gen uint64)
	RecordWatchdog(outcome string)
	RecordMutation(op string, err error)
	RecordNotifyError(sink string)
}
