package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaPublisher writes events to a Kafka topic keyed by article id.
type kafkaPublisher struct {
	id     string
	writer kafkaWriter
	log    Logger
}

func newKafkaPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Kafka == nil {
		return nil, fmt.Errorf("publisher %q missing kafka configuration", cfg.ID)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: time.Duration(cfg.Kafka.BatchTimeoutMs) * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &kafkaPublisher{
		id:     cfg.ID,
		writer: writer,
		log:    ensureLogger(log),
	}, nil
}

func (k *kafkaPublisher) ID() string   { return k.id }
func (k *kafkaPublisher) Type() string { return TypeKafka }

func (k *kafkaPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	headers := make([]kafka.Header, 0, 3)
	for key, v := range evt.attributes() {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(v)})
	}

	msg := kafka.Message{
		Key:     []byte(evt.Article.ID),
		Value:   payload,
		Headers: headers,
		Time:    evt.CollectedAt,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		k.log.ErrorObj("kafka publisher send failed", "publisher_kafka_error", map[string]any{
			"publisher_id": k.id,
			"error":        err.Error(),
		})
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (k *kafkaPublisher) Close() error {
	return k.writer.Close()
}
