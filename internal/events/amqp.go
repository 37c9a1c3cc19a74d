package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 3 * time.Second

// AMQPPublisher publishes enveloped JSON events to a durable topic exchange.
type AMQPPublisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *zap.Logger
}

// Dial connects to url and declares the events exchange.
func Dial(url string, logger *zap.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, logger: logger}, nil
}

func (p *AMQPPublisher) PublishCartLineAdded(ctx context.Context, ev CartLineAdded) error {
	env, err := newCartLineAddedEnvelope(ev, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("marshal CartLineAdded: %w", err)
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CartLineAdded envelope: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.ch.PublishWithContext(pubCtx, EventsExchange, CartLineAddedRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.EventID,
		Timestamp:    env.OccurredAt,
		Body:         body,
	}); err != nil {
		return err
	}
	p.logger.Debug("published event",
		zap.String("event", env.EventName),
		zap.String("event_id", env.EventID),
		zap.String("partition", env.PartitionKey),
	)
	return nil
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.logger.Warn("close amqp channel", zap.Error(err))
	}
	return p.conn.Close()
}
