package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	"BingoPulse/internal/domain/models"
)

type fakePredictionGateway struct {
	mu         sync.Mutex
	allCalls   []int
	drawCalls  []int
	rankCalls  [][2]int
	allFn      func(ctx context.Context, call, window int) (models.PredictionSet, error)
	drawsErr   error
	rankingErr error
}

func (f *fakePredictionGateway) AllPredictions(ctx context.Context, window int) (models.PredictionSet, error) {
	f.mu.Lock()
	f.allCalls = append(f.allCalls, window)
	call := len(f.allCalls)
	fn := f.allFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, call, window)
	}
	return models.PredictionSet{Basic: []byte(`{"w":` + strconv.Itoa(window) + `}`), PeriodRange: window}, nil
}

func (f *fakePredictionGateway) LatestDraws(_ context.Context, limit int) ([]models.DrawRecord, error) {
	f.mu.Lock()
	f.drawCalls = append(f.drawCalls, limit)
	err := f.drawsErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return []models.DrawRecord{{Term: "113000001", Numbers: []string{"01", "02"}}}, nil
}

func (f *fakePredictionGateway) BasicRanking(_ context.Context, window, topN int) (*models.Ranking, error) {
	f.mu.Lock()
	f.rankCalls = append(f.rankCalls, [2]int{window, topN})
	err := f.rankingErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &models.Ranking{PeriodRange: window, Predictions: []models.RankedNumber{{Number: "07", Rank: 1}}}, nil
}

func (f *fakePredictionGateway) calls() (all, draws, rank int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.allCalls), len(f.drawCalls), len(f.rankCalls)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.Event
}

func (n *recordingNotifier) Notify(_ context.Context, ev models.Event) error {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
	return nil
}

func (n *recordingNotifier) count(kind models.EventKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, ev := range n.events {
		if ev.Kind == kind {
			c++
		}
	}
	return c
}

type fakeStatusGateway struct {
	mu       sync.Mutex
	sentinel models.ChangeSentinel
	err      error
	block    bool
	calls    chan struct{}
}

func newFakeStatus(s models.ChangeSentinel) *fakeStatusGateway {
	return &fakeStatusGateway{sentinel: s, calls: make(chan struct{}, 64)}
}

func (f *fakeStatusGateway) set(s models.ChangeSentinel, err error) {
	f.mu.Lock()
	f.sentinel, f.err = s, err
	f.mu.Unlock()
}

func (f *fakeStatusGateway) Sentinel(ctx context.Context) (models.ChangeSentinel, error) {
	f.mu.Lock()
	s, err, block := f.sentinel, f.err, f.block
	f.mu.Unlock()
	f.calls <- struct{}{}
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s, err
}

func (f *fakeStatusGateway) ForceRefresh(ctx context.Context) (models.ChangeSentinel, error) {
	return f.Sentinel(ctx)
}

type countingRefresher struct {
	mu    sync.Mutex
	n     int
	calls chan struct{}
}

func newCountingRefresher() *countingRefresher {
	return &countingRefresher{calls: make(chan struct{}, 64)}
}

func (r *countingRefresher) FetchAll(context.Context) error {
	r.mu.Lock()
	r.n++
	r.mu.Unlock()
	r.calls <- struct{}{}
	return nil
}

func (r *countingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *manualTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type manualClock struct {
	mu        sync.Mutex
	tickers   []*manualTicker
	intervals []time.Duration
}

func (c *manualClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	c.intervals = append(c.intervals, d)
	return t
}

func (c *manualClock) ticker(i int) *manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[i]
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

type fakeLedgerGateway struct {
	mu         sync.Mutex
	listCalls  []models.BetQuery
	statsCalls int
	page       *models.BetPage
	stats      *models.BetStats
	placed     []models.Bet
	summary    *models.SettlementSummary
	placeErr   error
	settleErr  error
	cancelErr  error
	listErr    error
	statsErr   error
	listFn     func(ctx context.Context, call int, q models.BetQuery) (*models.BetPage, error)
	statsFn    func(ctx context.Context, call int) (*models.BetStats, error)
}

func (f *fakeLedgerGateway) PlaceBet(context.Context, models.PlaceBetRequest) ([]models.Bet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	return f.placed, nil
}

func (f *fakeLedgerGateway) ListBets(ctx context.Context, q models.BetQuery) (*models.BetPage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, q)
	call, fn := len(f.listCalls), f.listFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, call, q)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	p := *f.page
	return &p, nil
}

func (f *fakeLedgerGateway) BetStats(ctx context.Context) (*models.BetStats, error) {
	f.mu.Lock()
	f.statsCalls++
	call, fn := f.statsCalls, f.statsFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, call)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	st := *f.stats
	return &st, nil
}

func (f *fakeLedgerGateway) SettleBets(context.Context) (*models.SettlementSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	return f.summary, nil
}

func (f *fakeLedgerGateway) CancelBet(_ context.Context, id int64) (*models.CancelAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	return &models.CancelAck{OK: true, ID: id}, nil
}

func (f *fakeLedgerGateway) NextDraw(context.Context) (*models.NextDraw, error) {
	return &models.NextDraw{Term: "113000124", EstimatedTime: "2024-05-01 10:10", EstimatedTimeShort: "10:10"}, nil
}

func (f *fakeLedgerGateway) counts() (list, stats int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls), f.statsCalls
}

func (f *fakeLedgerGateway) reset() {
	f.mu.Lock()
	f.listCalls = nil
	f.statsCalls = 0
	f.mu.Unlock()
}
