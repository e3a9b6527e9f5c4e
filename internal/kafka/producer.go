package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/trogers1052/etf-trading-service/internal/models"
)

// OrderEvent is the envelope published for order lifecycle outcomes.
type OrderEvent struct {
	EventType string         `json:"event_type"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Data      OrderEventData `json:"data"`
}

// OrderEventData carries the order and its terminal broker status.
type OrderEventData struct {
	OrderID        string `json:"order_id"`
	Symbol         string `json:"symbol"`
	Side           string `json:"side"`
	Quantity       int64  `json:"quantity"`
	Price          string `json:"price"`
	State          string `json:"state"`
	FilledQuantity int64  `json:"filled_quantity"`
	AveragePrice   string `json:"average_price"`
	Reason         string `json:"reason,omitempty"`
}

// Producer publishes order lifecycle events to Kafka.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a Kafka producer for the orders topic.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Keyed by symbol so per-symbol events stay ordered
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	return &Producer{writer: writer}
}

// PublishOrderEvent publishes a lifecycle event for an order. Publish failures
// are logged by callers and never block order settlement.
func (p *Producer) PublishOrderEvent(ctx context.Context, eventType string, order *models.PendingOrder, st models.OrderStatus) error {
	event := OrderEvent{
		EventType: eventType,
		Source:    "etf-trading-service",
		Timestamp: time.Now().UTC(),
		Data: OrderEventData{
			OrderID:        order.OrderID,
			Symbol:         order.Symbol,
			Side:           string(order.Side),
			Quantity:       order.Quantity,
			Price:          order.Price.String(),
			State:          string(st.State),
			FilledQuantity: st.FilledQuantity,
			AveragePrice:   st.AveragePrice.String(),
			Reason:         st.Reason,
		},
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.Symbol),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event for order %s: %w", eventType, order.OrderID, err)
	}

	log.Printf("Published %s event for order %s (%s %s)", eventType, order.OrderID, order.Side, order.Symbol)
	return nil
}

// Close closes the underlying Kafka writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
