package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

// Routing keys. Tickets are routed per station: ticket.kot.placed,
// ticket.bot.cancelled and so on.
const (
	KeyStockAlert = "stock.alert"
)

// TicketEvent is the message sent to a preparation station
type TicketEvent struct {
	Event       string             `json:"event"`
	OrderID     string             `json:"orderId"`
	TableNumber string             `json:"tableNumber"`
	OrderType   models.OrderType   `json:"orderType"`
	Status      models.OrderStatus `json:"status"`
	Items       []models.LineItem  `json:"items"`
	CreatedBy   string             `json:"createdBy,omitempty"`
	At          time.Time          `json:"at"`
}

// Publisher delivers domain events outside the process. Calls happen
// after the owning transaction has committed.
type Publisher interface {
	PublishTicket(ctx context.Context, event TicketEvent) error
	PublishStockAlert(ctx context.Context, alert models.StockAlert) error
}

// TicketKey is the routing key for a ticket event
func TicketKey(event TicketEvent) string {
	return fmt.Sprintf("ticket.%s.%s", strings.ToLower(string(event.OrderType)), event.Event)
}

type amqpSender interface {
	Publish(ctx context.Context, exchange, key, contentType string, body []byte) error
}

// AMQPPublisher publishes JSON events to a topic exchange
type AMQPPublisher struct {
	sender   amqpSender
	exchange string
	logger   *zap.Logger
}

// NewAMQPPublisher declares exchange on client and returns a publisher for it
func NewAMQPPublisher(client *Client, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	if err := client.DeclareTopic(exchange); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return newAMQPPublisher(client, exchange, logger), nil
}

func newAMQPPublisher(sender amqpSender, exchange string, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{sender: sender, exchange: exchange, logger: logger.Named("publisher")}
}

// PublishTicket routes a kitchen ticket by its event kind
func (p *AMQPPublisher) PublishTicket(ctx context.Context, event TicketEvent) error {
	return p.publish(ctx, TicketKey(event), event)
}

// PublishStockAlert routes a stock alert by its kind
func (p *AMQPPublisher) PublishStockAlert(ctx context.Context, alert models.StockAlert) error {
	return p.publish(ctx, KeyStockAlert, alert)
}

func (p *AMQPPublisher) publish(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := p.sender.Publish(ctx, p.exchange, key, "application/json", body); err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}
	p.logger.Debug("event published", zap.String("key", key))
	return nil
}

// NopPublisher drops every event. Used when RABBITMQ_URL is not set.
type NopPublisher struct{}

// PublishTicket drops the event
func (NopPublisher) PublishTicket(context.Context, TicketEvent) error { return nil }

// PublishStockAlert drops the alert
func (NopPublisher) PublishStockAlert(context.Context, models.StockAlert) error { return nil }
