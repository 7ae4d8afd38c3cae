package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"BingoPulse/internal/domain/models"
)

type capturedMessage struct {
	topic string
	key   []byte
	value interface{}
}

type fakeProducer struct {
	msgs   []capturedMessage
	err    error
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.msgs = append(f.msgs, capturedMessage{topic, key, value})
	return f.err
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

type fakeNotifier struct {
	n   int
	err error
}

func (f *fakeNotifier) Notify(context.Context, models.Event) error {
	f.n++
	return f.err
}

type countingMetrics struct{ notifyErrs map[string]int }

func (c *countingMetrics) RecordFetch(string, float64)  {}
func (c *countingMetrics) RecordGeneration(uint64)      {}
func (c *countingMetrics) RecordWatchdog(string)        {}
func (c *countingMetrics) RecordMutation(string, error) {}
func (c *countingMetrics) RecordNotifyError(sink string) {
	c.notifyErrs[sink]++
}

func TestKafkaPublisherKeysByKind(t *testing.T) {
	prod := &fakeProducer{}
	p := NewKafkaPublisher(prod, "bingopulse.events", "test")
	at := time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)

	if err := p.Notify(context.Background(), models.Event{Kind: models.EventSnapshot, Generation: 4, Window: 30, At: at}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(prod.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(prod.msgs))
	}
	m := prod.msgs[0]
	if m.topic != "bingopulse.events" || string(m.key) != "snapshot" {
		t.Fatalf("unexpected topic/key: %s %s", m.topic, m.key)
	}
	b, _ := json.Marshal(m.value)
	var decoded map[string]interface{}
	_ = json.Unmarshal(b, &decoded)
	if decoded["generation"].(float64) != 4 || decoded["at"].(float64) != float64(at.UnixMilli()) || decoded["source"] != "test" {
		t.Fatalf("unexpected payload: %s", b)
	}
	_ = p.Close()
	if !prod.closed {
		t.Fatalf("producer not closed")
	}
}

func TestMultiNotifierContinuesPastFailures(t *testing.T) {
	failing := &fakeNotifier{err: errors.New("broker down")}
	ok := &fakeNotifier{}
	metrics := &countingMetrics{notifyErrs: map[string]int{}}
	m := NewMultiNotifier(metrics,
		NamedNotifier{Name: "kafka", Notifier: failing},
		NamedNotifier{Name: "nil", Notifier: nil},
		NamedNotifier{Name: "ws", Notifier: ok},
	)

	err := m.Notify(context.Background(), models.Event{Kind: models.EventBets})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if failing.n != 1 || ok.n != 1 {
		t.Fatalf("sinks called %d/%d", failing.n, ok.n)
	}
	if metrics.notifyErrs["kafka"] != 1 || metrics.notifyErrs["ws"] != 0 {
		t.Fatalf("unexpected error counts: %v", metrics.notifyErrs)
	}
}
