package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const amqpPublishTimeout = 5 * time.Second

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// amqpPublisher sends events to a RabbitMQ exchange over one long-lived channel.
type amqpPublisher struct {
	id         string
	exchange   string
	routingKey string
	conn       *amqp.Connection
	log        Logger

	mu sync.Mutex
	ch amqpChannel
}

func newAMQPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.AMQP == nil {
		return nil, fmt.Errorf("publisher %q missing amqp configuration", cfg.ID)
	}

	conn, err := amqp.Dial(cfg.AMQP.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		cfg.AMQP.Exchange,
		cfg.AMQP.ExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &amqpPublisher{
		id:         cfg.ID,
		exchange:   cfg.AMQP.Exchange,
		routingKey: cfg.AMQP.RoutingKey,
		conn:       conn,
		ch:         ch,
		log:        ensureLogger(log),
	}, nil
}

func (a *amqpPublisher) ID() string   { return a.id }
func (a *amqpPublisher) Type() string { return TypeAMQP }

func (a *amqpPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	headers := amqp.Table{}
	for k, v := range evt.attributes() {
		headers[k] = v
	}

	ctx, cancel := context.WithTimeout(ctx, amqpPublishTimeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing.
	a.mu.Lock()
	err = a.ch.PublishWithContext(ctx, a.exchange, a.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Timestamp:    evt.CollectedAt,
		Headers:      headers,
	})
	a.mu.Unlock()
	if err != nil {
		a.log.ErrorObj("amqp publisher send failed", "publisher_amqp_error", map[string]any{
			"publisher_id": a.id,
			"error":        err.Error(),
		})
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}
	return nil
}

func (a *amqpPublisher) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	if a.ch != nil {
		err = a.ch.Close()
	}
	if a.conn != nil {
		if cerr := a.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
