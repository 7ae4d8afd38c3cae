package gateway

import (
    "context"
    "net/url"
    "strconv"

    "BingoPulse/internal/domain/models"
)

// HTTPSimulationClient talks to the simulated wagering endpoints.
type HTTPSimulationClient struct{ base *HTTPServiceBase }

func NewHTTPSimulationClient(base *HTTPServiceBase) *HTTPSimulationClient {
    return &HTTPSimulationClient{base: base}
}

// PlaceBet creates one bet per requested period.
func (s *HTTPSimulationClient) PlaceBet(ctx context.Context, req models.PlaceBetRequest) ([]models.Bet, error) {
    var bets []models.Bet
    if err := s.base.PostJSON(ctx, "simulation_bet", "/simulation/bet", req, &bets); err != nil {
        return nil, err
    }
    return bets, nil
}

func (s *HTTPSimulationClient) ListBets(ctx context.Context, bq models.BetQuery) (*models.BetPage, error) {
    q := url.Values{}
    if bq.Status != "" {
        q.Set("status", string(bq.Status))
    }
    if bq.Limit > 0 {
        q.Set("limit", strconv.Itoa(bq.Limit))
    }
    if bq.Offset > 0 {
        q.Set("offset", strconv.Itoa(bq.Offset))
    }
    var page models.BetPage
    if err := s.base.GetJSON(ctx, "simulation_bets", "/simulation/bets", q, &page); err != nil {
        return nil, err
    }
    if page.Bets == nil {
        page.Bets = []models.Bet{}
    }
    return &page, nil
}

func (s *HTTPSimulationClient) BetStats(ctx context.Context) (*models.BetStats, error) {
    var st models.BetStats
    if err := s.base.GetJSON(ctx, "simulation_stats", "/simulation/stats", nil, &st); err != nil {
        return nil, err
    }
    return &st, nil
}

// SettleBets settles every pending bet against the latest draw.
func (s *HTTPSimulationClient) SettleBets(ctx context.Context) (*models.SettlementSummary, error) {
    var sum models.SettlementSummary
    if err := s.base.PostJSON(ctx, "simulation_settle", "/simulation/settle", struct{}{}, &sum); err != nil {
        return nil, err
    }
    return &sum, nil
}

func (s *HTTPSimulationClient) CancelBet(ctx context.Context, id int64) (*models.CancelAck, error) {
    var ack models.CancelAck
    path := "/simulation/bet/" + strconv.FormatInt(id, 10)
    if err := s.base.DeleteJSON(ctx, "simulation_cancel", path, &ack); err != nil {
        return nil, err
    }
    return &ack, nil
}

func (s *HTTPSimulationClient) NextDraw(ctx context.Context) (*models.NextDraw, error) {
    var nd models.NextDraw
    if err := s.base.GetJSON(ctx, "simulation_next_draw", "/simulation/next-draw", nil, &nd); err != nil {
        return nil, err
    }
    return &nd, nil
}
