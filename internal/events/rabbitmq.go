package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// OrdersExchange is the fanout exchange order events are published to.
const OrdersExchange = "orders_fanout"

// Channel is the subset of *amqp.Channel used by the publisher.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Connection opens channels. Dial wraps *amqp.Connection to satisfy it.
type Connection interface {
	Channel() (Channel, error)
	Close() error
}

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (Channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Dial connects to RabbitMQ at url.
func Dial(url string) (Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	return amqpConnection{conn}, nil
}

// Publisher sends order events to the fanout exchange.
type Publisher struct {
	conn Connection
	log  *zap.Logger

	mu       sync.Mutex
	declared bool
}

func NewPublisher(conn Connection, log *zap.Logger) *Publisher {
	return &Publisher{conn: conn, log: log}
}

func (p *Publisher) Notify(ctx context.Context, e OrderEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := p.declare(ch); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = ch.PublishWithContext(ctx, OrdersExchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(e.Kind),
		Timestamp:    e.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Debug("order event published",
		zap.String("type", string(e.Kind)),
		zap.String("order_id", e.OrderID))
	return nil
}

func (p *Publisher) declare(ch Channel) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.declared {
		return nil
	}
	if err := ch.ExchangeDeclare(OrdersExchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	p.declared = true
	return nil
}
