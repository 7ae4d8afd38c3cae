package usecase

import (
	"context"
	"errors"
	"time"

	"BingoPulse/internal/domain/models"
	domrepo "BingoPulse/internal/domain/repository"
	applogger "BingoPulse/pkg/logger"
)

var (
	// ErrSuperseded is returned when a newer request of the same kind was
	// issued while this one was in flight; its result was discarded.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrClosed is returned by a store after Close.
	ErrClosed = errors.New("store closed")
)

// Option configures the optional collaborators shared by stores and the watchdog.
type Option func(*deps)

type deps struct {
	notifier domrepo.Notifier
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	now      func() time.Time
}

func newDeps(opts []Option) deps {
	d := deps{
		notifier: nopNotifier{},
		metrics:  nopMetrics{},
		logger:   applogger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithNotifier sets the change notifier.
func WithNotifier(n domrepo.Notifier) Option {
	return func(d *deps) {
		if n != nil {
			d.notifier = n
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m domrepo.Metrics) Option {
	return func(d *deps) {
		if m != nil {
			d.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(d *deps) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithNow overrides the wall clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(d *deps) {
		if now != nil {
			d.now = now
		}
	}
}

func (d *deps) notify(ctx context.Context, ev models.Event) {
	if err := d.notifier.Notify(ctx, ev); err != nil {
		d.logger.Debug("notify failed", applogger.String("kind", string(ev.Kind)), applogger.Error(err))
	}
}

// lifecycle owns a context that Close cancels. Every gateway call a store
// makes is bound to it so nothing lands after disposal.
type lifecycle struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newLifecycle() lifecycle {
	ctx, cancel := context.WithCancel(context.Background())
	return lifecycle{ctx: ctx, cancel: cancel}
}

// bind derives a context cancelled by either the caller or Close.
func (l *lifecycle) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.ctx, cancel)
	return cctx, func() {
		stop()
		cancel()
	}
}

func (l *lifecycle) closed() bool {
	return l.ctx.Err() != nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, models.Event) error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, float64)  {}
func (nopMetrics) RecordGeneration(uint64)      {}
func (nopMetrics) RecordWatchdog(string)        {}
func (nopMetrics) RecordMutation(string, error) {}
func (nopMetrics) RecordNotifyError(string)     {}
