package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// channel is the part of *amqp.Channel the client uses
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	IsClosed() bool
	Close() error
}

// Client holds one connection and one confirm-mode channel
type Client struct {
	conn *amqp.Connection
	ch   channel

	acks <-chan amqp.Confirmation
	mu   sync.Mutex
	tag  uint64 // delivery tag of the last successful publish
}

// Dial connects to the broker at url and enables publisher confirms
func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 16))

	return &Client{conn: conn, ch: ch, acks: acks}, nil
}

// DeclareTopic declares a durable topic exchange
func (c *Client) DeclareTopic(exchange string) error {
	return c.ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil)
}

// Close closes the channel and the connection
func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Health reports whether the connection and channel are still open
func (c *Client) Health(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	if c.ch == nil || c.ch.IsClosed() {
		return errors.New("rabbitmq channel is closed")
	}
	return nil
}

// Publish sends a persistent message and waits for the broker to confirm
// it. Confirmations left over from publishes whose ctx ended early are
// discarded by delivery tag.
func (c *Client) Publish(ctx context.Context, exchange, key, contentType string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  contentType,
		Timestamp:    time.Now(),
		Body:         body,
	}); err != nil {
		return err
	}
	c.tag++
	tag := c.tag

	for {
		select {
		case conf, ok := <-c.acks:
			if !ok {
				return errors.New("rabbitmq channel closed before confirm")
			}
			if conf.DeliveryTag < tag {
				continue
			}
			if !conf.Ack {
				return errors.New("publish NACK from broker")
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
