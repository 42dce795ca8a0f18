// Package rabbitmq fans feed entries out to telemetry consumers through a
// durable fanout exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultExchange is used when no exchange name is configured.
const DefaultExchange = "notifications_fanout"

const publishTimeout = 5 * time.Second

var _ ports.NotificationPublisher = (*Publisher)(nil)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Message is the JSON body of every published entry.
type Message struct {
	ID      string    `json:"id"`
	AgentID string    `json:"agent_id"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

type Publisher struct {
	ch       Channel
	exchange string
	agentID  kernel.UUID
	logger   *zap.Logger
}

// NewPublisher declares the fanout exchange on ch. An empty exchange means DefaultExchange.
func NewPublisher(ch Channel, exchange string, agentID kernel.UUID, logger *zap.Logger) (*Publisher, error) {
	if ch == nil {
		return nil, errs.NewValueIsRequiredError("amqp channel")
	}
	if err := agentID.Validate(); err != nil {
		return nil, err
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Publisher{
		ch:       ch,
		exchange: exchange,
		agentID:  agentID,
		logger:   logger.With(zap.String("component", "notification_publisher")),
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, n notification.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(Message{
		ID:      n.ID().String(),
		AgentID: p.agentID.String(),
		Type:    n.Type().String(),
		Message: n.Message(),
		Time:    n.Time(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err = p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.ID().String(),
		Timestamp:    n.Time(),
		Type:         n.Type().String(),
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish notification %s: %w", n.ID(), err)
	}

	p.logger.Debug("notification published", zap.Stringer("id", n.ID()), zap.String("type", n.Type().String()))
	return nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// Connection owns the AMQP connection and the publisher's channel.
type Connection struct {
	conn *amqp.Connection
	*Publisher
}

// Dial connects to url and returns a ready publisher.
func Dial(url, exchange string, agentID kernel.UUID, logger *zap.Logger) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	publisher, err := NewPublisher(ch, exchange, agentID, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Connection{conn: conn, Publisher: publisher}, nil
}

func (c *Connection) Close() error {
	if err := c.Publisher.Close(); err != nil && !c.conn.IsClosed() {
		c.logger.Warn("failed to close channel", zap.Error(err))
	}
	return c.conn.Close()
}
