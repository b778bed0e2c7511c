package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeKafkaWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeKafkaWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeKafkaWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherWritesKeyedMessage(t *testing.T) {
	w := &fakeKafkaWriter{}
	pub := &kafkaPublisher{id: "k", writer: w, log: ensureLogger(nil)}

	evt := testEvent()
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "a1" {
		t.Fatalf("key = %q", msg.Key)
	}
	var decoded Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil || decoded.ID != evt.ID {
		t.Fatalf("unexpected payload %s (err %v)", msg.Value, err)
	}
	if len(msg.Headers) != 3 {
		t.Fatalf("expected 3 headers, got %d", len(msg.Headers))
	}

	if err := pub.Close(); err != nil || !w.closed {
		t.Fatalf("Close: %v closed=%v", err, w.closed)
	}
}

func TestKafkaPublisherWriteError(t *testing.T) {
	pub := &kafkaPublisher{id: "k", writer: &fakeKafkaWriter{err: errors.New("broker down")}, log: ensureLogger(nil)}
	if err := pub.Publish(context.Background(), testEvent()); err == nil {
		t.Fatalf("expected write error")
	}
}
