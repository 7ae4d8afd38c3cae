package repository

import (
	"context"
	"errors"
	"time"

	"BingoPulse/internal/domain/models"
	"BingoPulse/internal/domain/repository"
)

// MessageProducer is the subset of pkg/kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPublisher forwards store change events to a Kafka topic, keyed by
// event kind so each kind stays ordered.
type KafkaPublisher struct {
	producer MessageProducer
	topic    string
	source   string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer MessageProducer, topic, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, source: source}
}

type eventMessage struct {
	Kind       models.EventKind `json:"kind"`
	Source     string           `json:"source,omitempty"`
	Generation uint64           `json:"generation,omitempty"`
	Window     int              `json:"window,omitempty"`
	Sentinel   string           `json:"sentinel,omitempty"`
	At         int64            `json:"at"`
}

func (p *KafkaPublisher) Notify(ctx context.Context, ev models.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	return p.producer.Publish(ctx, p.topic, []byte(ev.Kind), eventMessage{
		Kind:       ev.Kind,
		Source:     p.source,
		Generation: ev.Generation,
		Window:     ev.Window,
		Sentinel:   ev.Sentinel,
		At:         at.UnixMilli(),
	})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NamedNotifier is one sink of a MultiNotifier.
type NamedNotifier struct {
	Name     string
	Notifier repository.Notifier
}

// MultiNotifier delivers each event to every sink in order. A failing sink
// does not stop delivery to the rest.
type MultiNotifier struct {
	sinks   []NamedNotifier
	metrics repository.Metrics
}

func NewMultiNotifier(metrics repository.Metrics, sinks ...NamedNotifier) *MultiNotifier {
	kept := make([]NamedNotifier, 0, len(sinks))
	for _, s := range sinks {
		if s.Notifier != nil {
			kept = append(kept, s)
		}
	}
	return &MultiNotifier{sinks: kept, metrics: metrics}
}

func (m *MultiNotifier) Notify(ctx context.Context, ev models.Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Notifier.Notify(ctx, ev); err != nil {
			if m.metrics != nil {
				m.metrics.RecordNotifyError(s.Name)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ repository.Notifier = (*KafkaPublisher)(nil)
	_ repository.Notifier = (*MultiNotifier)(nil)
)
