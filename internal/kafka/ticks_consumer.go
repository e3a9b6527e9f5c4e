package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// PriceSink receives market price updates from the ticks stream. Updates are
// informational only and never alter cost basis.
type PriceSink interface {
	SetCurrentPrice(symbol string, price decimal.Decimal)
}

// TickEvent is the envelope carried on the ticks topic.
type TickEvent struct {
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      TickData  `json:"data"`
}

// TickData is a batch of price snapshots for one or more symbols.
type TickData struct {
	Ticks []Tick `json:"ticks"`
}

// Tick is a single symbol price observation.
type Tick struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// TicksConsumer handles consuming price tick events from Kafka.
type TicksConsumer struct {
	reader *kafka.Reader
	sink   PriceSink
}

// NewTicksConsumer creates a new Kafka consumer for price tick events.
func NewTicksConsumer(brokers []string, topic, groupID string, sink PriceSink) *TicksConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID + "-ticks", // Separate consumer group for ticks
		MinBytes:       10e3,               // 10KB
		MaxBytes:       10e6,               // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset, // Stale prices are worthless, skip history
		CommitInterval: time.Second,
	})

	return &TicksConsumer{
		reader: reader,
		sink:   sink,
	}
}

// Start begins consuming messages from Kafka.
func (c *TicksConsumer) Start(ctx context.Context) error {
	log.Printf("Starting Kafka ticks consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Ticks consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading ticks message: %v", err)
				continue
			}

			if err := c.processMessage(msg); err != nil {
				log.Printf("Error processing ticks message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message.
func (c *TicksConsumer) processMessage(msg kafka.Message) error {
	var event TickEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal tick event: %w", err)
	}

	// Only process PRICE_TICKS events
	if event.EventType != "PRICE_TICKS" {
		log.Printf("Ignoring event type: %s", event.EventType)
		return nil
	}

	applied := 0
	for _, tick := range event.Data.Ticks {
		price, err := decimal.NewFromString(tick.Price)
		if err != nil {
			log.Printf("Warning: invalid price %q for %s: %v", tick.Price, tick.Symbol, err)
			continue
		}
		if tick.Symbol == "" || price.Sign() <= 0 {
			continue
		}
		c.sink.SetCurrentPrice(tick.Symbol, price)
		applied++
	}

	log.Printf("Applied %d/%d price ticks from partition %d offset %d",
		applied, len(event.Data.Ticks), msg.Partition, msg.Offset)

	return nil
}

// Close closes the Kafka consumer.
func (c *TicksConsumer) Close() error {
	return c.reader.Close()
}
