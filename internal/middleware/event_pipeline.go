package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"BingoPulse/internal/domain/models"
	domrepo "BingoPulse/internal/domain/repository"
	internalrepo "BingoPulse/internal/repository"
	applogger "BingoPulse/pkg/logger"
)

// EventPipeline sits between the stores and the notification sinks.
// Notify validates and enqueues without blocking; a single worker delivers
// events in order and retries failed deliveries with backoff.
type EventPipeline struct {
	name       string
	next       domrepo.Notifier
	metrics    domrepo.Metrics
	logger     *applogger.Logger
	bufSize    int
	maxRetries int
	backoffMin time.Duration
	backoffMax time.Duration

	bufCh   chan models.Event
	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

type PipelineOption func(*EventPipeline)

// WithBufferSize sets how many events may wait for delivery.
func WithBufferSize(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithRetry sets the delivery attempts after the first and the backoff range.
func WithRetry(maxRetries int, backoffMin, backoffMax time.Duration) PipelineOption {
	return func(p *EventPipeline) {
		if maxRetries >= 0 {
			p.maxRetries = maxRetries
		}
		if backoffMin > 0 {
			p.backoffMin = backoffMin
		}
		if backoffMax >= p.backoffMin {
			p.backoffMax = backoffMax
		}
	}
}

// WithSinkName labels the pipeline's metrics and logs with the sink it feeds.
func WithSinkName(name string) PipelineOption {
	return func(p *EventPipeline) {
		p.name = name
	}
}

func WithPipelineLogger(l *applogger.Logger) PipelineOption {
	return func(p *EventPipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewEventPipeline creates a new pipeline delivering to next.
func NewEventPipeline(next domrepo.Notifier, metrics domrepo.Metrics, opts ...PipelineOption) *EventPipeline {
	p := &EventPipeline{
		next:       next,
		metrics:    metrics,
		logger:     applogger.Nop(),
		bufSize:    256,
		maxRetries: 2,
		backoffMin: 50 * time.Millisecond,
		backoffMax: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.name != "" {
		p.logger = p.logger.With(applogger.String("sink", p.name))
	}
	p.bufCh = make(chan models.Event, p.bufSize)
	return p
}

// NewSinkPipelines gives every sink its own started pipeline and fans events
// out to them. A failing sink is retried alone, so the others receive each
// event once. The returned func stops every pipeline.
func NewSinkPipelines(ctx context.Context, metrics domrepo.Metrics, sinks []internalrepo.NamedNotifier, opts ...PipelineOption) (domrepo.Notifier, func()) {
	wrapped := make([]internalrepo.NamedNotifier, 0, len(sinks))
	pipes := make([]*EventPipeline, 0, len(sinks))
	for _, s := range sinks {
		if s.Notifier == nil {
			continue
		}
		p := NewEventPipeline(s.Notifier, metrics, append(opts, WithSinkName(s.Name))...)
		p.Start(ctx)
		pipes = append(pipes, p)
		wrapped = append(wrapped, internalrepo.NamedNotifier{Name: s.Name, Notifier: p})
	}
	stop := func() {
		for _, p := range pipes {
			p.Stop()
		}
	}
	return internalrepo.NewMultiNotifier(metrics, wrapped...), stop
}

// Start launches the delivery worker.
func (p *EventPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop discards queued events and waits for the worker to exit.
func (p *EventPipeline) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Notify enqueues ev. It never blocks; a full buffer drops the event.
func (p *EventPipeline) Notify(_ context.Context, ev models.Event) error {
	if err := validateEvent(ev); err != nil {
		p.metrics.RecordNotifyError(p.label("validate"))
		return err
	}
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil
	}
	select {
	case p.bufCh <- ev:
		return nil
	default:
		p.metrics.RecordNotifyError(p.label("buffer_full"))
		return fmt.Errorf("event pipeline full, dropped %s event", ev.Kind)
	}
}

func (p *EventPipeline) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.bufCh:
			p.deliver(ctx, ev)
		}
	}
}

func (p *EventPipeline) deliver(ctx context.Context, ev models.Event) {
	backoff := p.backoffMin
	for attempt := 0; ; attempt++ {
		err := p.next.Notify(ctx, ev)
		if err == nil {
			return
		}
		if attempt >= p.maxRetries || ctx.Err() != nil {
			p.metrics.RecordNotifyError(p.label("drop"))
			p.logger.Warn("event delivery failed", applogger.String("kind", string(ev.Kind)), applogger.Int("attempts", attempt+1), applogger.Error(err))
			return
		}
		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		if backoff *= 2; backoff > p.backoffMax {
			backoff = p.backoffMax
		}
	}
}

func (p *EventPipeline) label(reason string) string {
	if p.name == "" {
		return "pipeline_" + reason
	}
	return p.name + "_" + reason
}

func validateEvent(ev models.Event) error {
	switch ev.Kind {
	case models.EventSnapshot, models.EventSentinel, models.EventBets, models.EventStats:
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	if ev.At.IsZero() {
		return fmt.Errorf("event %s has no timestamp", ev.Kind)
	}
	return nil
}

var _ domrepo.Notifier = (*EventPipeline)(nil)
