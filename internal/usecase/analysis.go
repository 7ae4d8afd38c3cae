package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"BingoPulse/internal/domain/models"
	domrepo "BingoPulse/internal/domain/repository"
)

// WindowSource supplies the active analysis window.
type WindowSource interface {
	Window() int
}

// AnalysisUseCase serves on-demand reads that are not part of the snapshot.
// A query without a window uses the store's active window.
type AnalysisUseCase struct {
	gw      domrepo.AnalysisGateway
	windows WindowSource
	timeout time.Duration
}

func NewAnalysisUseCase(gw domrepo.AnalysisGateway, windows WindowSource) *AnalysisUseCase {
	return &AnalysisUseCase{gw: gw, windows: windows, timeout: 10 * time.Second}
}

func (uc *AnalysisUseCase) Metric(ctx context.Context, m models.Metric, q models.AnalysisQuery) (json.RawMessage, error) {
	if q.Window == 0 && uc.windows != nil {
		q.Window = uc.windows.Window()
	}
	if q.Window != 0 && q.Window < models.MinAnalysisWindow {
		return nil, fmt.Errorf("window must be at least %d", models.MinAnalysisWindow)
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.gw.Metric(ctx, m, q)
}

// BasicBatch compares basic rankings across several windows.
func (uc *AnalysisUseCase) BasicBatch(ctx context.Context, windows []int, topN int) (map[int]models.Ranking, error) {
	for _, w := range windows {
		if w < models.MinAnalysisWindow {
			return nil, fmt.Errorf("window %d below minimum %d", w, models.MinAnalysisWindow)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.gw.BasicRankingBatch(ctx, windows, topN)
}

func (uc *AnalysisUseCase) DrawByTerm(ctx context.Context, term string) (*models.DrawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.gw.DrawByTerm(ctx, term)
}
