package publishers

import (
	"context"
	"errors"
	"testing"
)

type stubPublisher struct {
	id       string
	typ      string
	err      error
	calls    int
	closed   bool
	closeErr error
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}
func (s *stubPublisher) Close() error {
	s.closed = true
	return s.closeErr
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	ok := &stubPublisher{id: "ok", typ: "http"}
	bad := &stubPublisher{id: "bad", typ: "http", err: errors.New("failed")}
	fanout := NewFanout([]Publisher{ok, nil, bad})

	if fanout.Size() != 2 {
		t.Fatalf("expected nil publishers to be dropped, size=%d", fanout.Size())
	}

	count, err := fanout.Publish(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("expected every publisher called once, got %d/%d", ok.calls, bad.calls)
	}
}

func TestFanoutCloseClosesEveryPublisher(t *testing.T) {
	a := &stubPublisher{id: "a", typ: "kafka"}
	b := &stubPublisher{id: "b", typ: "kafka", closeErr: errors.New("close failed")}

	err := NewFanout([]Publisher{a, b}).Close()
	if err == nil {
		t.Fatalf("expected close error")
	}
	if !a.closed || !b.closed {
		t.Fatalf("expected all publishers closed")
	}
}

func TestNilFanoutIsInert(t *testing.T) {
	var f *Fanout
	if n, err := f.Publish(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("nil fanout publish = %d, %v", n, err)
	}
	if f.Size() != 0 || f.Close() != nil {
		t.Fatalf("nil fanout must be empty")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com", Method: "POST", TimeoutSeconds: 1}},
		{ID: "kafka", Type: TypeKafka, Kafka: &KafkaPublisherConfig{Brokers: []string{"localhost:9092"}, Topic: "news"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 2 {
		t.Fatalf("expected 2 publishers, got %d", len(pubs))
	}
	_ = NewFanout(pubs).Close()
}

func TestBuildAllRejectsUnknownType(t *testing.T) {
	_, err := BuildAll(context.Background(), DefaultRegistry(), []PublisherConfig{{ID: "x", Type: "carrier-pigeon"}}, nil)
	if err == nil {
		t.Fatalf("expected error for unknown publisher type")
	}
}
