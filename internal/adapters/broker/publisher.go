package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"eventhub/internal/domain"
)

// ExchangeName is the topic exchange lifecycle changes are published to.
const ExchangeName = "event-lifecycle"

const publishTimeout = 10 * time.Second

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher publishes event state changes to the lifecycle exchange.
type Publisher struct {
	channel amqpChannel
	logger  *slog.Logger
}

// NewPublisher opens a channel and declares the topic exchange.
func NewPublisher(conn *Connection, logger *slog.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", ExchangeName, err)
	}
	return &Publisher{channel: ch, logger: logger}, nil
}

// RoutingKey returns "event.<state>" in lower case, e.g. "event.published".
func RoutingKey(to domain.EventState) string {
	return "event." + strings.ToLower(string(to))
}

// NotifyStateChange publishes change as a persistent JSON message.
func (p *Publisher) NotifyStateChange(ctx context.Context, change domain.StateChange) error {
	msg, err := buildMessage(ctx, change)
	if err != nil {
		return err
	}
	key := RoutingKey(change.To)

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.logger.DebugContext(ctx, "publishing state change", "routing_key", key, "correlation_id", msg.CorrelationId, "event_id", change.EventID)
	if err := p.channel.PublishWithContext(ctx, ExchangeName, key, false, false, msg); err != nil {
		return fmt.Errorf("publish %s for event %d: %w", key, change.EventID, err)
	}
	return nil
}

func buildMessage(ctx context.Context, change domain.StateChange) (amqp.Publishing, error) {
	body, err := json.Marshal(change)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal state change: %w", err)
	}
	correlationID := domain.RequestIDFrom(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	ts := change.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     ts,
	}, nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
