package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"BingoPulse/internal/domain/models"
	domrepo "BingoPulse/internal/domain/repository"
	applogger "BingoPulse/pkg/logger"
)

// Outcome is the result of one sentinel check.
type Outcome int

const (
	Unchanged Outcome = iota
	Changed
	TransientFailure
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case TransientFailure:
		return "transient_failure"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. Tests inject a manual clock.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) NewTicker(d time.Duration) Ticker { return systemTicker{time.NewTicker(d)} }

type systemTicker struct{ t *time.Ticker }

func (t systemTicker) C() <-chan time.Time { return t.t.C }
func (t systemTicker) Stop()               { t.t.Stop() }

// Refresher is the full refresh the watchdog drives.
type Refresher interface {
	FetchAll(ctx context.Context) error
}

// Watchdog polls the change sentinel and triggers a full refresh exactly when
// it changes. It owns at most one ticker; Start and Stop are idempotent.
type Watchdog struct {
	status   domrepo.StatusGateway
	target   Refresher
	interval time.Duration
	clock    Clock
	deps

	mu          sync.Mutex
	ticker      Ticker
	cancel      context.CancelFunc
	done        chan struct{}
	last        models.ChangeSentinel
	lastCheck   time.Time
	lastOutcome Outcome
	checked     bool
	changes     uint64
	failures    uint64
}

func NewWatchdog(status domrepo.StatusGateway, target Refresher, interval time.Duration, clock Clock, opts ...Option) *Watchdog {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Watchdog{
		status:   status,
		target:   target,
		interval: interval,
		clock:    clock,
		deps:     newDeps(opts),
	}
}

// Start arms the ticker. It is a no-op while already running.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ticker != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := w.clock.NewTicker(w.interval)
	done := make(chan struct{})
	w.ticker, w.cancel, w.done = t, cancel, done

	go w.loop(ctx, t, done)
	w.logger.Info("watchdog started", applogger.Duration("interval", w.interval))
}

// Stop disarms the ticker and cancels a check in progress. It returns once
// the polling goroutine has exited, so no check runs after Stop.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	if w.ticker == nil {
		w.mu.Unlock()
		return
	}
	w.ticker.Stop()
	w.cancel()
	done := w.done
	w.ticker, w.cancel, w.done = nil, nil, nil
	w.mu.Unlock()

	<-done
	w.logger.Info("watchdog stopped")
}

// Running reports whether a ticker is armed.
func (w *Watchdog) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ticker != nil
}

func (w *Watchdog) loop(ctx context.Context, t Ticker, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			w.Check(ctx)
		}
	}
}

// Check reads the sentinel once. A read failure is reported as
// TransientFailure and otherwise ignored. An empty sentinel is Unchanged.
// On a change the cached sentinel is updated before the refresh starts, so
// a concurrent check sees the new value and does not refresh again.
func (w *Watchdog) Check(ctx context.Context) Outcome {
	sentinel, err := w.status.Sentinel(ctx)
	if err != nil {
		w.record(TransientFailure)
		w.logger.Debug("sentinel check failed", applogger.Error(err))
		return TransientFailure
	}
	if !w.swap(sentinel) {
		w.record(Unchanged)
		return Unchanged
	}
	w.record(Changed)
	w.refresh(ctx, sentinel)
	return Changed
}

// ForceRefresh asks the backend to recompute, then refreshes if the returned
// sentinel is new. Unlike Check, failures are returned.
func (w *Watchdog) ForceRefresh(ctx context.Context) (Outcome, error) {
	sentinel, err := w.status.ForceRefresh(ctx)
	if err != nil {
		w.record(TransientFailure)
		return TransientFailure, fmt.Errorf("force refresh: %w", err)
	}
	if !w.swap(sentinel) {
		w.record(Unchanged)
		return Unchanged, nil
	}
	w.record(Changed)
	return Changed, w.refresh(ctx, sentinel)
}

// swap stores sentinel and reports whether it differs from the cached one.
func (w *Watchdog) swap(sentinel models.ChangeSentinel) bool {
	if sentinel == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if sentinel == w.last {
		return false
	}
	w.last = sentinel
	return true
}

func (w *Watchdog) refresh(ctx context.Context, sentinel models.ChangeSentinel) error {
	w.logger.Info("backend data changed", applogger.String("sentinel", string(sentinel)))
	w.notify(ctx, models.Event{Kind: models.EventSentinel, Sentinel: string(sentinel), At: w.now()})
	if err := w.target.FetchAll(ctx); err != nil {
		w.logger.Debug("refresh after change did not apply", applogger.Error(err))
		return err
	}
	return nil
}

func (w *Watchdog) record(o Outcome) {
	w.metrics.RecordWatchdog(o.String())
	w.mu.Lock()
	w.lastCheck = w.now()
	w.lastOutcome = o
	w.checked = true
	switch o {
	case Changed:
		w.changes++
	case TransientFailure:
		w.failures++
	}
	w.mu.Unlock()
}

// LastSentinel returns the cached sentinel, "" while unknown.
func (w *Watchdog) LastSentinel() models.ChangeSentinel {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *Watchdog) Status() models.WatchdogStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := models.WatchdogStatus{
		Running:      w.ticker != nil,
		Interval:     w.interval,
		LastSentinel: string(w.last),
		LastCheck:    w.lastCheck,
		Changes:      w.changes,
		Failures:     w.failures,
	}
	if w.checked {
		st.LastOutcome = w.lastOutcome.String()
	}
	return st
}
