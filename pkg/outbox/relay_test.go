package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	events []Event
	sent   [][]int64
	failed map[int64]string
}

func (f *fakeStore) LockBatch(_ context.Context, _ string, _ int, _ time.Duration) ([]Event, error) {
	out := f.events
	f.events = nil
	return out, nil
}

func (f *fakeStore) MarkSent(_ context.Context, ids []int64) error {
	f.sent = append(f.sent, ids)
	return nil
}

func (f *fakeStore) MarkFailed(_ context.Context, id int64, msg string) error {
	if f.failed == nil {
		f.failed = map[int64]string{}
	}
	f.failed[id] = msg
	return nil
}

type fakeProducer struct {
	msgs    []kafka.Message
	failKey string
}

func (f *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		if string(m.Key) == f.failKey {
			return errors.New("broker unavailable")
		}
		f.msgs = append(f.msgs, m)
	}
	return nil
}

func newRelay(store Store, producer Producer) *Relay {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRelay(log, store, NewDispatcher(log, producer, "backoffice.order.events"), "relay-test", Config{})
}

func headerValue(msg kafka.Message, key string) (string, bool) {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value), true
		}
	}
	return "", false
}

func TestRelayDispatchesAndMarksSent(t *testing.T) {
	const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	store := &fakeStore{events: []Event{
		{ID: 1, AggregateID: "10", Type: "OrderCreated", Payload: []byte(`{"order_id":10}`)},
		{ID: 2, AggregateID: "11", Type: "OrderCancelled", Payload: []byte(`{"order_id":11}`), Traceparent: traceparent},
	}}
	producer := &fakeProducer{}

	r := newRelay(store, producer)
	r.drain(context.Background())

	require.Len(t, producer.msgs, 2)
	assert.Equal(t, "10", string(producer.msgs[0].Key))
	assert.Equal(t, [][]int64{{1, 2}}, store.sent)

	// The event type travels as a header; the second message also carries
	// its traceparent, while the first has none to resume.
	assert.Equal(t, "event_type", producer.msgs[0].Headers[0].Key)
	assert.Equal(t, "OrderCreated", string(producer.msgs[0].Headers[0].Value))
	_, ok := headerValue(producer.msgs[0], "traceparent")
	assert.False(t, ok)
	got, ok := headerValue(producer.msgs[1], "traceparent")
	require.True(t, ok)
	assert.Equal(t, traceparent, got)
}

func TestRelayDropsMalformedTraceparent(t *testing.T) {
	store := &fakeStore{events: []Event{
		{ID: 1, AggregateID: "10", Type: "OrderCreated", Traceparent: "not-a-traceparent"},
	}}
	producer := &fakeProducer{}

	r := newRelay(store, producer)
	r.drain(context.Background())

	require.Len(t, producer.msgs, 1)
	_, ok := headerValue(producer.msgs[0], "traceparent")
	assert.False(t, ok)
	assert.Equal(t, [][]int64{{1}}, store.sent)
}

func TestRelayMarksFailuresIndividually(t *testing.T) {
	store := &fakeStore{events: []Event{
		{ID: 1, AggregateID: "10", Type: "OrderCreated"},
		{ID: 2, AggregateID: "broken", Type: "OrderCreated"},
		{ID: 3, AggregateID: "12", Type: "OrderUpdated"},
	}}
	producer := &fakeProducer{failKey: "broken"}

	r := newRelay(store, producer)
	r.drain(context.Background())

	assert.Equal(t, [][]int64{{1, 3}}, store.sent)
	assert.Contains(t, store.failed, int64(2))
}

func TestRelayStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := newRelay(&fakeStore{}, &fakeProducer{})
	require.NoError(t, r.Run(ctx))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)
	assert.Equal(t, 5*time.Second, cfg.Lease)
}
