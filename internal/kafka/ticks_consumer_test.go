package kafka

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Mock PriceSink
// ---------------------------------------------------------------------------

type mockPriceSink struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
}

func newMockPriceSink() *mockPriceSink {
	return &mockPriceSink{prices: make(map[string]decimal.Decimal)}
}

func (m *mockPriceSink) SetCurrentPrice(symbol string, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
}

func (m *mockPriceSink) price(symbol string) (decimal.Decimal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prices[symbol]
	return p, ok
}

func tickMessage(t *testing.T, event TickEvent) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafkago.Message{Value: payload}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestTicksConsumer_ProcessMessage(t *testing.T) {
	sink := newMockPriceSink()
	c := &TicksConsumer{sink: sink}

	msg := tickMessage(t, TickEvent{
		EventType: "PRICE_TICKS",
		Source:    "price-feed",
		Timestamp: time.Now().UTC(),
		Data: TickData{Ticks: []Tick{
			{Symbol: "NSE:NIFTYBEES", Price: "245.50"},
			{Symbol: "NSE:GOLDBEES", Price: "62.10"},
		}},
	})

	require.NoError(t, c.processMessage(msg))

	p, ok := sink.price("NSE:NIFTYBEES")
	require.True(t, ok)
	assert.True(t, p.Equal(decimal.RequireFromString("245.50")))

	p, ok = sink.price("NSE:GOLDBEES")
	require.True(t, ok)
	assert.True(t, p.Equal(decimal.RequireFromString("62.10")))
}

func TestTicksConsumer_IgnoresOtherEventTypes(t *testing.T) {
	sink := newMockPriceSink()
	c := &TicksConsumer{sink: sink}

	msg := tickMessage(t, TickEvent{
		EventType: "POSITIONS_SNAPSHOT",
		Data:      TickData{Ticks: []Tick{{Symbol: "NSE:NIFTYBEES", Price: "245.50"}}},
	})

	require.NoError(t, c.processMessage(msg))
	_, ok := sink.price("NSE:NIFTYBEES")
	assert.False(t, ok)
}

func TestTicksConsumer_SkipsBadTicks(t *testing.T) {
	sink := newMockPriceSink()
	c := &TicksConsumer{sink: sink}

	msg := tickMessage(t, TickEvent{
		EventType: "PRICE_TICKS",
		Data: TickData{Ticks: []Tick{
			{Symbol: "NSE:NIFTYBEES", Price: "not-a-number"},
			{Symbol: "", Price: "10"},
			{Symbol: "NSE:CPSEETF", Price: "-5"},
			{Symbol: "NSE:BANKBEES", Price: "456.75"},
		}},
	})

	require.NoError(t, c.processMessage(msg))

	_, ok := sink.price("NSE:NIFTYBEES")
	assert.False(t, ok)
	_, ok = sink.price("NSE:CPSEETF")
	assert.False(t, ok)

	p, ok := sink.price("NSE:BANKBEES")
	require.True(t, ok)
	assert.True(t, p.Equal(decimal.RequireFromString("456.75")))
}

func TestTicksConsumer_MalformedPayload(t *testing.T) {
	sink := newMockPriceSink()
	c := &TicksConsumer{sink: sink}

	err := c.processMessage(kafkago.Message{Value: []byte("{not json")})
	assert.Error(t, err)
}
