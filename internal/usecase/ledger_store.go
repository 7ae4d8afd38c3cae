package usecase

import (
	"context"
	"errors"
	"sync"

	"BingoPulse/internal/domain/models"
	domrepo "BingoPulse/internal/domain/repository"
	xhttp "BingoPulse/pkg/http"
	applogger "BingoPulse/pkg/logger"
)

// LedgerError is a rejected mutation. Message is the backend's detail when
// it sent one.
type LedgerError struct {
	Op      string
	Message string
	Err     error
}

func (e *LedgerError) Error() string { return e.Message }

func (e *LedgerError) Unwrap() error { return e.Err }

// LedgerStore keeps one page of simulated bets and the server side stats.
// Every successful mutation is followed by a re-read of the last requested
// page and of the stats; nothing is patched locally.
type LedgerStore struct {
	gw       domrepo.LedgerGateway
	pageSize int
	deps
	life lifecycle

	mu           sync.RWMutex
	state        models.LedgerState
	listGen      uint64
	statsGen     uint64
	listInflight int
	placing      int
	settling     int
	known        map[int64]models.BetStatus
}

func NewLedgerStore(gw domrepo.LedgerGateway, pageSize int, opts ...Option) *LedgerStore {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &LedgerStore{
		gw:       gw,
		pageSize: pageSize,
		deps:     newDeps(opts),
		life:     newLifecycle(),
		state: models.LedgerState{
			Query: models.BetQuery{Limit: pageSize},
			Bets:  []models.Bet{},
		},
		known: map[int64]models.BetStatus{},
	}
}

func (s *LedgerStore) State() models.LedgerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Bets = append([]models.Bet(nil), s.state.Bets...)
	return st
}

// FetchBets replaces the exposed page with the one matching q and remembers
// q for later refreshes. A zero limit means the configured page size.
func (s *LedgerStore) FetchBets(ctx context.Context, q models.BetQuery) error {
	if q.Limit <= 0 {
		q.Limit = s.pageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	s.mu.Lock()
	if s.life.closed() {
		s.mu.Unlock()
		return ErrClosed
	}
	s.listGen++
	gen := s.listGen
	s.state.Query = q
	s.listInflight++
	s.state.Loading = true
	s.mu.Unlock()

	cctx, cancel := s.life.bind(ctx)
	defer cancel()
	page, err := s.gw.ListBets(cctx, q)

	s.mu.Lock()
	s.listInflight--
	s.state.Loading = s.listInflight > 0
	switch {
	case s.life.closed():
		s.mu.Unlock()
		return ErrClosed
	case gen != s.listGen:
		s.mu.Unlock()
		return ErrSuperseded
	case err != nil:
		s.mu.Unlock()
		s.logger.Warn("fetch bets failed", applogger.Error(err))
		return err
	}
	s.checkTransitionsLocked(page.Bets)
	s.state.Bets = page.Bets
	s.state.Total = page.Total
	s.mu.Unlock()

	s.notify(s.life.ctx, models.Event{Kind: models.EventBets, Generation: gen, At: s.now()})
	return nil
}

// FetchStats replaces the exposed stats. Failures are only logged.
func (s *LedgerStore) FetchStats(ctx context.Context) {
	s.mu.Lock()
	if s.life.closed() {
		s.mu.Unlock()
		return
	}
	s.statsGen++
	gen := s.statsGen
	s.mu.Unlock()

	cctx, cancel := s.life.bind(ctx)
	defer cancel()
	stats, err := s.gw.BetStats(cctx)
	if err != nil {
		s.logger.Warn("fetch stats failed", applogger.Error(err))
		return
	}

	s.mu.Lock()
	if s.life.closed() || gen != s.statsGen {
		s.mu.Unlock()
		return
	}
	s.state.Stats = stats
	s.mu.Unlock()

	s.notify(s.life.ctx, models.Event{Kind: models.EventStats, Generation: gen, At: s.now()})
}

// Refresh re-reads the last requested page, then the stats.
func (s *LedgerStore) Refresh(ctx context.Context) {
	s.mu.RLock()
	q := s.state.Query
	s.mu.RUnlock()

	if err := s.FetchBets(ctx, q); err != nil && !errors.Is(err, ErrSuperseded) {
		s.logger.Debug("bet list refresh failed", applogger.Error(err))
	}
	s.FetchStats(ctx)
}

// PlaceBet submits req and returns the bets the backend created, one per
// period. On rejection the exposed list and stats are left as they were.
// Placing stays set until the follow-up refresh completes.
func (s *LedgerStore) PlaceBet(ctx context.Context, req models.PlaceBetRequest) ([]models.Bet, error) {
	if err := s.begin(&s.placing); err != nil {
		return nil, err
	}
	defer s.end(&s.placing)
	cctx, cancel := s.life.bind(ctx)
	bets, err := s.gw.PlaceBet(cctx, req)
	cancel()

	if err != nil {
		return nil, s.fail("place_bet", err)
	}
	s.metrics.RecordMutation("place_bet", nil)
	s.logger.Info("bet placed", applogger.String("bet_type", string(req.BetType)), applogger.Int("count", len(bets)))
	s.Refresh(ctx)
	return bets, nil
}

// SettleBets settles every pending bet. The summary is returned unchanged,
// and the refresh happens even when nothing was pending.
func (s *LedgerStore) SettleBets(ctx context.Context) (*models.SettlementSummary, error) {
	if err := s.begin(&s.settling); err != nil {
		return nil, err
	}
	defer s.end(&s.settling)
	cctx, cancel := s.life.bind(ctx)
	sum, err := s.gw.SettleBets(cctx)
	cancel()

	if err != nil {
		return nil, s.fail("settle", err)
	}
	s.metrics.RecordMutation("settle", nil)
	s.logger.Info("bets settled", applogger.Int("settled", sum.SettledCount), applogger.String("draw_term", sum.DrawTerm))
	s.Refresh(ctx)
	return sum, nil
}

// CancelBet cancels one pending bet. A rejected cancel triggers no refresh.
func (s *LedgerStore) CancelBet(ctx context.Context, id int64) (*models.CancelAck, error) {
	if err := s.begin(nil); err != nil {
		return nil, err
	}
	cctx, cancel := s.life.bind(ctx)
	ack, err := s.gw.CancelBet(cctx, id)
	cancel()

	if err != nil {
		return nil, s.fail("cancel", err)
	}
	s.metrics.RecordMutation("cancel", nil)
	s.logger.Info("bet cancelled", applogger.Int64("id", id))
	s.Refresh(ctx)
	return ack, nil
}

// NextDraw looks up the draw a new bet would target.
func (s *LedgerStore) NextDraw(ctx context.Context) (*models.NextDraw, error) {
	cctx, cancel := s.life.bind(ctx)
	defer cancel()
	nd, err := s.gw.NextDraw(cctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.state.NextDraw = nd
	s.mu.Unlock()
	return nd, nil
}

func (s *LedgerStore) begin(flag *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life.closed() {
		return ErrClosed
	}
	s.state.Error = ""
	if flag != nil {
		*flag++
		s.syncFlagsLocked()
	}
	return nil
}

func (s *LedgerStore) end(flag *int) {
	s.mu.Lock()
	*flag--
	s.syncFlagsLocked()
	s.mu.Unlock()
}

func (s *LedgerStore) syncFlagsLocked() {
	s.state.Placing = s.placing > 0
	s.state.Settling = s.settling > 0
}

func (s *LedgerStore) fail(op string, err error) error {
	s.metrics.RecordMutation(op, err)
	if s.life.closed() {
		return ErrClosed
	}
	msg := xhttp.ErrorMessage(err)
	s.mu.Lock()
	s.state.Error = msg
	s.mu.Unlock()
	s.logger.Warn("ledger mutation rejected", applogger.String("op", op), applogger.Error(err))
	return &LedgerError{Op: op, Message: msg, Err: err}
}

// checkTransitionsLocked warns when the backend reports a bet leaving a
// terminal state. The page is still applied as received.
func (s *LedgerStore) checkTransitionsLocked(bets []models.Bet) {
	for _, b := range bets {
		if prev, ok := s.known[b.ID]; ok && prev != b.Status && !prev.CanTransitionTo(b.Status) {
			s.logger.Warn("bet status regressed",
				applogger.Int64("id", b.ID),
				applogger.String("from", string(prev)),
				applogger.String("to", string(b.Status)),
			)
		}
		s.known[b.ID] = b.Status
	}
}

// Close aborts outstanding requests. Later calls return ErrClosed.
func (s *LedgerStore) Close() error {
	s.life.cancel()
	return nil
}
