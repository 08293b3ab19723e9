package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/01moynul/ecommerce-api/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderPublisher announces orders after they are committed.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, order models.OrderDetail) error
}

// NopPublisher drops every event. It is used when no AMQP URL is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, models.OrderDetail) error { return nil }

// OrderPlaced is the JSON body of an order.placed message.
type OrderPlaced struct {
	Event string             `json:"event"`
	Order models.OrderDetail `json:"order"`
}

const eventOrderPlaced = "order.placed"

// AMQPPublisher sends order.placed messages to a durable queue through the
// default exchange.
type AMQPPublisher struct {
	conn    *amqp.Connection
	queue   string
	timeout time.Duration

	mu sync.Mutex
	ch *amqp.Channel
}

// NewAMQPPublisher dials url and declares the durable queue.
func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	p := &AMQPPublisher{conn: conn, queue: queue, timeout: 5 * time.Second}
	ch, err := p.channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return p, nil
}

// channel returns the open channel, reopening it after the broker closed it.
// Callers hold p.mu or run before the publisher is shared.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p.ch = ch
	return ch, nil
}

func (p *AMQPPublisher) PublishOrderPlaced(ctx context.Context, order models.OrderDetail) error {
	msg, err := orderPlacedMessage(order)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish order %d: %w", order.OrderID, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		p.ch.Close()
	}
	return p.conn.Close()
}

func orderPlacedMessage(order models.OrderDetail) (amqp.Publishing, error) {
	body, err := json.Marshal(OrderPlaced{Event: eventOrderPlaced, Order: order})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode order %d: %w", order.OrderID, err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    fmt.Sprintf("order-%d", order.OrderID),
		Timestamp:    order.DatePlaced,
		Type:         eventOrderPlaced,
		Body:         body,
	}, nil
}
