package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/noah-isme/acs-institute-api/internal/models"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes enrollment change events to a durable queue.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	ch      amqpChannel
	queue   string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewRabbitMQPublisher dials url and declares queue.
func NewRabbitMQPublisher(url, queue string, cb *gobreaker.CircuitBreaker, logger *zap.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	p := newPublisher(ch, queue, cb, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch amqpChannel, queue string, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *RabbitMQPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RabbitMQPublisher{ch: ch, queue: queue, breaker: cb, logger: logger}
}

// Publish sends evt as a persistent JSON message on the default exchange.
func (p *RabbitMQPublisher) Publish(ctx context.Context, evt models.ChangeEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	publish := func() (interface{}, error) {
		return nil, p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         string(evt.Type),
			Timestamp:    evt.OccurredAt,
			Body:         body,
		})
	}
	if p.breaker != nil {
		_, err = p.breaker.Execute(publish)
	} else {
		_, err = publish()
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}

	p.logger.Debug("change event published", zap.String("queue", p.queue), zap.String("type", string(evt.Type)))
	return nil
}

// Close releases the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
