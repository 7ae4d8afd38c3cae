package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"BingoPulse/internal/domain/models"
	domrepo "BingoPulse/internal/domain/repository"
	applogger "BingoPulse/pkg/logger"
)

// PredictionStoreConfig holds the fan-out parameters.
type PredictionStoreConfig struct {
	Window        int
	LatestDraws   int
	Dashboard     bool
	DashboardTopN int
}

// PredictionStore holds the active analysis window and the latest prediction
// snapshot. Snapshots are replaced whole; a failed fetch keeps the previous one.
//
// Every FetchAll takes a generation. Only the newest generation may touch the
// exposed state when it completes, so overlapping refreshes resolve to the
// last request, not the last response.
type PredictionStore struct {
	gw  domrepo.PredictionGateway
	cfg PredictionStoreConfig
	deps
	life lifecycle

	mu       sync.RWMutex
	state    models.PredictionState
	gen      uint64
	inflight int
}

func NewPredictionStore(gw domrepo.PredictionGateway, cfg PredictionStoreConfig, opts ...Option) *PredictionStore {
	if cfg.Window < models.MinAnalysisWindow {
		cfg.Window = 30
	}
	if cfg.LatestDraws <= 0 {
		cfg.LatestDraws = 10
	}
	if cfg.DashboardTopN <= 0 {
		cfg.DashboardTopN = 5
	}
	return &PredictionStore{
		gw:    gw,
		cfg:   cfg,
		deps:  newDeps(opts),
		life:  newLifecycle(),
		state: models.PredictionState{Window: cfg.Window},
	}
}

// State returns the current exposed state. The snapshot it points to is
// never mutated.
func (s *PredictionStore) State() models.PredictionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Window returns the active analysis window.
func (s *PredictionStore) Window() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Window
}

// SetAnalysisWindow parses candidate and, if it is a valid window, applies it
// and refetches. Invalid input is a silent no-op: applied is false and no
// request is made.
func (s *PredictionStore) SetAnalysisWindow(ctx context.Context, candidate string) (applied bool, err error) {
	w, ok := models.ParseAnalysisWindow(candidate)
	if !ok {
		s.logger.Debug("analysis window ignored", applogger.String("candidate", candidate))
		return false, nil
	}
	s.mu.Lock()
	if s.life.closed() {
		s.mu.Unlock()
		return false, ErrClosed
	}
	s.state.Window = w
	s.mu.Unlock()

	s.logger.Info("analysis window set", applogger.Int("window", w))
	return true, s.FetchAll(ctx)
}

type fetchPart struct {
	name string
	val  interface{}
	err  error
}

// FetchAll reads predictions, latest draws and, for the dashboard variant,
// the top-N basic ranking in parallel and publishes them as one snapshot.
// Any single failure fails the whole fetch and cancels the other reads.
func (s *PredictionStore) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	if s.life.closed() {
		s.mu.Unlock()
		return ErrClosed
	}
	s.gen++
	gen := s.gen
	window := s.state.Window
	s.inflight++
	s.state.Loading = true
	s.mu.Unlock()

	start := s.now()
	fctx, cancel := s.life.bind(ctx)
	defer cancel()

	snap, err := s.fanOut(fctx, window)
	snap.Generation = gen
	snap.FetchedAt = s.now()
	elapsed := snap.FetchedAt.Sub(start).Seconds()

	s.mu.Lock()
	s.inflight--
	s.state.Loading = s.inflight > 0
	switch {
	case s.life.closed():
		s.mu.Unlock()
		return ErrClosed
	case gen != s.gen:
		s.mu.Unlock()
		s.metrics.RecordFetch("superseded", elapsed)
		s.logger.Debug("prediction fetch superseded", applogger.Uint64("generation", gen))
		return ErrSuperseded
	case err != nil && ctx.Err() != nil:
		// caller gave up; not a backend failure
		s.mu.Unlock()
		return ctx.Err()
	case err != nil:
		s.state.Error = err.Error()
		s.state.ErrorAt = snap.FetchedAt
		s.mu.Unlock()
		s.metrics.RecordFetch("error", elapsed)
		s.logger.Warn("prediction fetch failed", applogger.Int("window", window), applogger.Error(err))
		return err
	}
	s.state.Snapshot = snap
	s.state.Error = ""
	s.state.ErrorAt = time.Time{}
	s.mu.Unlock()

	s.metrics.RecordFetch("ok", elapsed)
	s.metrics.RecordGeneration(gen)
	s.logger.Debug("prediction snapshot applied",
		applogger.Int("window", window),
		applogger.Uint64("generation", gen),
		applogger.Int("draws", len(snap.LatestDraws)),
	)
	s.notify(s.life.ctx, models.Event{Kind: models.EventSnapshot, Generation: gen, Window: window, At: snap.FetchedAt})
	return nil
}

func (s *PredictionStore) fanOut(ctx context.Context, window int) (*models.PredictionSnapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan fetchPart, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := s.gw.AllPredictions(ctx, window)
		ch <- fetchPart{"predictions", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := s.gw.LatestDraws(ctx, s.cfg.LatestDraws)
		ch <- fetchPart{"latest_draws", v, err}
	}()
	if s.cfg.Dashboard {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.gw.BasicRanking(ctx, window, s.cfg.DashboardTopN)
			ch <- fetchPart{"dashboard_ranking", v, err}
		}()
	}

	go func() { wg.Wait(); close(ch) }()

	snap := &models.PredictionSnapshot{Window: window}
	var firstErr error
	for p := range ch {
		if p.err != nil {
			if firstErr == nil || errors.Is(firstErr, context.Canceled) {
				firstErr = fmt.Errorf("%s: %w", p.name, p.err)
			}
			cancel()
			continue
		}
		switch p.name {
		case "predictions":
			snap.Predictions = p.val.(models.PredictionSet)
		case "latest_draws":
			snap.LatestDraws = p.val.([]models.DrawRecord)
		case "dashboard_ranking":
			snap.DashboardRanking = p.val.(*models.Ranking)
		}
	}
	if firstErr != nil {
		return snap, firstErr
	}
	if snap.LatestDraws == nil {
		snap.LatestDraws = []models.DrawRecord{}
	}
	return snap, nil
}

// Close aborts outstanding fetches. Later calls return ErrClosed.
func (s *PredictionStore) Close() error {
	s.life.cancel()
	return nil
}
