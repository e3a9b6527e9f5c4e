// Package lifecycle drives an order from intent to a terminal ledger
// mutation: policy gate, broker submission, status polling, then exactly one
// holdings/sold-items transformation per order id.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/etf-trading-service/internal/broker"
	"github.com/trogers1052/etf-trading-service/internal/ledger"
	"github.com/trogers1052/etf-trading-service/internal/models"
	"github.com/trogers1052/etf-trading-service/internal/policy"
)

var (
	// ErrPolicyViolation means a trading rule blocked the intent before any
	// broker call was made.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrOrderTimeout means the order did not reach a terminal state within
	// the polling budget. The pending order is kept for reconciliation.
	ErrOrderTimeout = errors.New("order status polling timed out")
	// ErrAmbiguousHolding means a sell matched more than one open lot and no
	// holding id was given to pick one.
	ErrAmbiguousHolding = errors.New("ambiguous holding for symbol")
	// ErrAlreadyProcessed means terminal processing already ran for the order.
	ErrAlreadyProcessed = errors.New("order already processed")
	// ErrInvalidRequest means the order intent failed validation before any
	// policy or broker work.
	ErrInvalidRequest = errors.New("invalid order request")
)

// Publisher receives terminal order outcomes. Implemented by the Kafka
// producer; nil disables publishing.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, order *models.PendingOrder, st models.OrderStatus) error
}

// Metrics receives lifecycle counters. Implemented by the Prometheus
// registry; nil disables instrumentation.
type Metrics interface {
	OrderSubmitted(side models.OrderSide)
	OrderFilled(side models.OrderSide, settleSeconds float64)
	OrderRejected()
	OrderTimedOut()
	PolicyViolation()
}

// Config bounds the status polling loop.
type Config struct {
	PollInterval time.Duration
	MaxPolls     int
}

// DefaultConfig polls every two seconds, fifteen times, matching the broker's
// settlement behavior during market hours.
func DefaultConfig() Config {
	return Config{PollInterval: 2 * time.Second, MaxPolls: 15}
}

// Manager orchestrates broker, ledger and policy for one portfolio. Orders
// for the same symbol are serialized; different symbols may proceed
// concurrently.
type Manager struct {
	ledger  *ledger.Ledger
	broker  broker.Client
	policy  *policy.Policy
	pub     Publisher
	metrics Metrics
	cfg     Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a manager. Publisher and metrics may be nil.
func New(l *ledger.Ledger, b broker.Client, p *policy.Policy, pub Publisher, m Metrics, cfg Config) *Manager {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = DefaultConfig().MaxPolls
	}
	return &Manager{
		ledger:  l,
		broker:  b,
		policy:  p,
		pub:     pub,
		metrics: m,
		cfg:     cfg,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Result is the outcome of a completed order.
type Result struct {
	OrderID  string             `json:"order_id"`
	Status   models.OrderStatus `json:"status"`
	Holding  *models.Holding    `json:"holding,omitempty"`
	SoldItem *models.SoldItem   `json:"sold_item,omitempty"`
}

// symbolLock returns the per-symbol mutex, creating it on first use. A prior
// order for the symbol must settle (or time out) before the next one runs, so
// averaging and closes never race a stale holding snapshot.
func (m *Manager) symbolLock(symbol string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lk, ok := m.locks[symbol]
	if !ok {
		lk = &sync.Mutex{}
		m.locks[symbol] = lk
	}
	return lk
}

// Place runs the full lifecycle for one order intent and blocks until the
// order settles, fails, or times out.
func (m *Manager) Place(ctx context.Context, req models.OrderRequest) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	lk := m.symbolLock(req.Symbol)
	lk.Lock()
	defer lk.Unlock()

	if err := m.gate(req); err != nil {
		if m.metrics != nil {
			m.metrics.PolicyViolation()
		}
		return nil, err
	}

	orderID, err := m.broker.Submit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("submit failed for %s: %w", req.Symbol, err)
	}
	if m.metrics != nil {
		m.metrics.OrderSubmitted(req.Side)
	}

	pending := &models.PendingOrder{
		OrderID:     orderID,
		Side:        req.Side,
		Symbol:      req.Symbol,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Status:      models.OrderStatePending,
		HoldingID:   req.HoldingID,
		SellReason:  req.SellReason,
		Name:        req.Name,
		Sector:      req.Sector,
		SubmittedAt: time.Now(),
	}
	if err := m.ledger.PutPendingOrder(pending); err != nil {
		return nil, err
	}

	st, err := m.awaitTerminal(ctx, pending)
	if err != nil {
		return nil, err
	}

	return m.settle(ctx, pending, st)
}

// Reconcile re-runs terminal processing for a tracked order, e.g. one that
// previously timed out. The processed marker makes it safe to call any number
// of times.
func (m *Manager) Reconcile(ctx context.Context, orderID string) (*Result, error) {
	pending, err := m.ledger.PendingOrder(orderID)
	if err != nil {
		return nil, err
	}
	if pending.Processed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyProcessed, orderID)
	}

	lk := m.symbolLock(pending.Symbol)
	lk.Lock()
	defer lk.Unlock()

	st, err := m.broker.QueryStatus(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("status query failed for %s: %w", orderID, err)
	}
	if !st.State.Terminal() {
		return nil, fmt.Errorf("%w: %s still %s", ErrOrderTimeout, orderID, st.State)
	}
	return m.settle(ctx, pending, st)
}

// Cancel cancels a still-open tracked order. Once terminal processing has
// run, cancellation fails rather than silently succeeding.
func (m *Manager) Cancel(ctx context.Context, orderID string) error {
	pending, err := m.ledger.PendingOrder(orderID)
	if err != nil {
		return err
	}
	if pending.Processed {
		return fmt.Errorf("%w: %s", broker.ErrAlreadyTerminal, orderID)
	}
	if err := m.broker.Cancel(ctx, orderID); err != nil {
		return err
	}
	if err := m.ledger.MarkOrderProcessed(orderID, models.OrderStateCancelled); err != nil {
		return err
	}
	return m.ledger.RemovePendingOrder(orderID)
}

// gate applies the policy rules for the order side. No broker call happens on
// rejection.
func (m *Manager) gate(req models.OrderRequest) error {
	switch req.Side {
	case models.OrderSideSell:
		if !m.policy.CanSellToday(m.ledger.DailySellCount(time.Now())) {
			return fmt.Errorf("%w: daily sell limit reached", ErrPolicyViolation)
		}
	case models.OrderSideBuy:
		// Averaging into an already-held symbol never adds a new symbol to
		// the sector, so the concentration cap only gates fresh entries.
		if len(m.ledger.HoldingsBySymbol(req.Symbol)) == 0 &&
			!m.policy.SectorConcentrationOK(m.ledger.Holdings(), req.Sector) {
			return fmt.Errorf("%w: sector %q at capacity", ErrPolicyViolation, req.Sector)
		}
	}
	return nil
}

// awaitTerminal polls the broker until the order settles or the poll budget
// is spent.
func (m *Manager) awaitTerminal(ctx context.Context, pending *models.PendingOrder) (models.OrderStatus, error) {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for i := 0; i < m.cfg.MaxPolls; i++ {
		st, err := m.broker.QueryStatus(ctx, pending.OrderID)
		if err != nil {
			return models.OrderStatus{}, fmt.Errorf("status query failed for %s: %w", pending.OrderID, err)
		}
		if st.State.Terminal() {
			return st, nil
		}

		select {
		case <-ctx.Done():
			return models.OrderStatus{}, ctx.Err()
		case <-ticker.C:
		}
	}

	if m.metrics != nil {
		m.metrics.OrderTimedOut()
	}
	m.publish(ctx, "ORDER_TIMED_OUT", pending, models.OrderStatus{OrderID: pending.OrderID, State: models.OrderStatePending})
	log.Printf("Order %s did not settle after %d polls; left pending for reconciliation", pending.OrderID, m.cfg.MaxPolls)
	return models.OrderStatus{}, fmt.Errorf("%w: %s", ErrOrderTimeout, pending.OrderID)
}

// settle applies the terminal ledger mutation exactly once. The processed
// marker is persisted before the mutation result is returned, so a replayed
// status query cannot double-apply.
func (m *Manager) settle(ctx context.Context, pending *models.PendingOrder, st models.OrderStatus) (*Result, error) {
	current, err := m.ledger.PendingOrder(pending.OrderID)
	if err != nil {
		return nil, err
	}
	if current.Processed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyProcessed, pending.OrderID)
	}

	res := &Result{OrderID: pending.OrderID, Status: st}

	switch st.State {
	case models.OrderStateRejected, models.OrderStateCancelled:
		if err := m.ledger.MarkOrderProcessed(pending.OrderID, st.State); err != nil {
			return nil, err
		}
		if err := m.ledger.RemovePendingOrder(pending.OrderID); err != nil {
			return nil, err
		}
		if m.metrics != nil {
			m.metrics.OrderRejected()
		}
		m.publish(ctx, "ORDER_REJECTED", pending, st)
		reason := st.Reason
		if reason == "" {
			reason = string(st.State)
		}
		return nil, fmt.Errorf("order %s not filled: %s", pending.OrderID, reason)

	case models.OrderStateComplete, models.OrderStatePartial:
		qty, price := fillDetails(pending, st)

		// Flip the marker first: if the mutation below fails the order
		// stays visible as processed-but-unapplied instead of risking a
		// double apply on retry.
		if err := m.ledger.MarkOrderProcessed(pending.OrderID, st.State); err != nil {
			return nil, err
		}

		switch pending.Side {
		case models.OrderSideBuy:
			h, err := m.ledger.OpenOrAverage(pending.Symbol, pending.Name, pending.Sector, qty, price, time.Now())
			if err != nil {
				return nil, err
			}
			res.Holding = h
		case models.OrderSideSell:
			holdingID, err := m.resolveHolding(pending)
			if err != nil {
				return nil, err
			}
			reason := pending.SellReason
			if reason == "" {
				reason = models.SellReasonManual
			}
			item, err := m.ledger.Close(holdingID, qty, price, time.Now(), reason)
			if err != nil {
				return nil, err
			}
			res.SoldItem = item
		}

		if err := m.ledger.RemovePendingOrder(pending.OrderID); err != nil {
			return nil, err
		}
		if m.metrics != nil {
			m.metrics.OrderFilled(pending.Side, time.Since(pending.SubmittedAt).Seconds())
		}
		m.publish(ctx, "ORDER_FILLED", pending, st)
		log.Printf("Order %s settled: %s %d %s @ %s", pending.OrderID, pending.Side, qty, pending.Symbol, price)
		return res, nil

	default:
		return nil, fmt.Errorf("order %s is not terminal: %s", pending.OrderID, st.State)
	}
}

// fillDetails picks the broker-reported fill quantity and price, falling back
// to the requested values when the broker omits them. A partial fill settles
// only the filled quantity; the remainder is treated as cancelled.
func fillDetails(pending *models.PendingOrder, st models.OrderStatus) (int64, decimal.Decimal) {
	qty := st.FilledQuantity
	if qty <= 0 || qty > pending.Quantity {
		qty = pending.Quantity
	}
	price := st.AveragePrice
	if price.IsZero() {
		price = pending.Price
	}
	return qty, price
}

// resolveHolding picks the holding a sell closes: the explicit holding id
// when given, otherwise the symbol's single open lot.
func (m *Manager) resolveHolding(pending *models.PendingOrder) (string, error) {
	if pending.HoldingID != "" {
		return pending.HoldingID, nil
	}
	matches := m.ledger.HoldingsBySymbol(pending.Symbol)
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ledger.ErrHoldingNotFound, pending.Symbol)
	case 1:
		return matches[0].ID, nil
	default:
		return "", fmt.Errorf("%w: %s has %d open lots", ErrAmbiguousHolding, pending.Symbol, len(matches))
	}
}

func (m *Manager) publish(ctx context.Context, eventType string, pending *models.PendingOrder, st models.OrderStatus) {
	if m.pub == nil {
		return
	}
	if err := m.pub.PublishOrderEvent(ctx, eventType, pending, st); err != nil {
		log.Printf("Failed to publish %s for %s: %v", eventType, pending.OrderID, err)
	}
}

func validate(req models.OrderRequest) error {
	if req.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidRequest)
	}
	if req.Side != models.OrderSideBuy && req.Side != models.OrderSideSell {
		return fmt.Errorf("%w: invalid order side %q", ErrInvalidRequest, req.Side)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: %d", ledger.ErrInvalidQuantity, req.Quantity)
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidRequest)
	}
	if req.OrderType == "" {
		return fmt.Errorf("%w: order type is required", ErrInvalidRequest)
	}
	if req.SellReason != "" && !req.SellReason.Valid() {
		return fmt.Errorf("%w: invalid sell reason %q", ErrInvalidRequest, req.SellReason)
	}
	return nil
}
