package api

import (
	"context"
	"encoding/json"

	"BingoPulse/internal/domain/models"
	"BingoPulse/internal/usecase"
)

// PredictionStore is the part of the prediction store the API drives.
type PredictionStore interface {
	State() models.PredictionState
	SetAnalysisWindow(ctx context.Context, candidate string) (bool, error)
	FetchAll(ctx context.Context) error
}

type WatchdogControl interface {
	Status() models.WatchdogStatus
	ForceRefresh(ctx context.Context) (usecase.Outcome, error)
}

type LedgerStore interface {
	State() models.LedgerState
	FetchBets(ctx context.Context, q models.BetQuery) error
	FetchStats(ctx context.Context)
	PlaceBet(ctx context.Context, req models.PlaceBetRequest) ([]models.Bet, error)
	SettleBets(ctx context.Context) (*models.SettlementSummary, error)
	CancelBet(ctx context.Context, id int64) (*models.CancelAck, error)
	NextDraw(ctx context.Context) (*models.NextDraw, error)
}

type AnalysisService interface {
	Metric(ctx context.Context, m models.Metric, q models.AnalysisQuery) (json.RawMessage, error)
	BasicBatch(ctx context.Context, windows []int, topN int) (map[int]models.Ranking, error)
	DrawByTerm(ctx context.Context, term string) (*models.DrawRecord, error)
}

// RefreshLimiter throttles manual refreshes per client.
type RefreshLimiter interface {
	Allow(key string) bool
}

// WindowRequest accepts the window as a JSON number or string. Missing or
// invalid values are ignored rather than rejected.
type WindowRequest struct {
	Window interface{} `json:"window"`
}

type WindowResponse struct {
	Applied bool                   `json:"applied"`
	Window  int                    `json:"window"`
	Pending bool                   `json:"pending,omitempty"`
	State   models.PredictionState `json:"state"`
}

type RefreshResponse struct {
	Outcome string                 `json:"outcome,omitempty"`
	Pending bool                   `json:"pending,omitempty"`
	State   models.PredictionState `json:"state"`
}

type BasicBatchRequest struct {
	Windows string `query:"windows" validate:"required"`
	TopN    int    `query:"top_n" default:"10" validate:"min=1,max=80"`
}

type BetMutationResponse struct {
	Bets    []models.Bet              `json:"bets,omitempty"`
	Settled *models.SettlementSummary `json:"settled,omitempty"`
	Cancel  *models.CancelAck         `json:"cancel,omitempty"`
	Ledger  models.LedgerState        `json:"ledger"`
}
