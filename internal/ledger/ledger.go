package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/etf-trading-service/internal/models"
)

var (
	// ErrInvalidQuantity means a close was asked for a non-positive quantity
	// or more than the holding carries.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrHoldingNotFound means no holding matches the given id.
	ErrHoldingNotFound = errors.New("holding not found")
	// ErrOrderNotFound means no pending order matches the given order id.
	ErrOrderNotFound = errors.New("pending order not found")
	// ErrSoldItemNotFound means no sold item matches the given id.
	ErrSoldItemNotFound = errors.New("sold item not found")
)

const dateLayout = "2006-01-02"

// Ledger owns the holdings, sold items and pending orders for one portfolio.
// All operations are synchronous and in-memory; mutations are written through
// to the Store before memory is updated, so a failed write leaves the ledger
// untouched.
type Ledger struct {
	mu            sync.RWMutex
	store         Store
	holdings      map[string]*models.Holding
	soldItems     []*models.SoldItem
	pendingOrders map[string]*models.PendingOrder
	dailySellCount int
	lastSellDate   string // yyyy-mm-dd, empty until the first sell
}

// New creates an empty ledger backed by the given store.
func New(store Store) *Ledger {
	if store == nil {
		store = NopStore{}
	}
	return &Ledger{
		store:         store,
		holdings:      make(map[string]*models.Holding),
		pendingOrders: make(map[string]*models.PendingOrder),
	}
}

// Load populates the ledger from the store. Called once at startup.
func Load(store Store) (*Ledger, error) {
	l := New(store)

	holdings, err := store.LoadHoldings()
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	for _, h := range holdings {
		l.holdings[h.ID] = h
	}

	l.soldItems, err = store.LoadSoldItems()
	if err != nil {
		return nil, fmt.Errorf("failed to load sold items: %w", err)
	}

	orders, err := store.LoadPendingOrders()
	if err != nil {
		return nil, fmt.Errorf("failed to load pending orders: %w", err)
	}
	for _, o := range orders {
		l.pendingOrders[o.OrderID] = o
	}

	l.dailySellCount, l.lastSellDate, err = store.LoadSellCounter()
	if err != nil {
		return nil, fmt.Errorf("failed to load sell counter: %w", err)
	}

	return l, nil
}

// OpenOrAverage records a completed buy. A first buy of a symbol creates a
// holding with avg price = fill price; a repeat buy folds the new lot into the
// blended average. Quantity and price must be validated by the caller.
func (l *Ledger) OpenOrAverage(symbol, name, sector string, quantity int64, price decimal.Decimal, date time.Time) (*models.Holding, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing := l.findBySymbolLocked(symbol); existing != nil {
		qty := decimal.NewFromInt(existing.Quantity)
		addQty := decimal.NewFromInt(quantity)
		newQty := qty.Add(addQty)
		// avg = (oldQty×oldAvg + qty×price) / (oldQty + qty)
		updated := *existing
		updated.AvgPrice = qty.Mul(existing.AvgPrice).Add(addQty.Mul(price)).Div(newQty)
		updated.Quantity = existing.Quantity + quantity
		updated.LastBuyPrice = price
		updated.LastBuyDate = date
		updated.UpdatedAt = time.Now()

		if err := l.store.SaveHolding(&updated); err != nil {
			return nil, fmt.Errorf("failed to save holding %s: %w", symbol, err)
		}
		l.holdings[updated.ID] = &updated
		return &updated, nil
	}

	now := time.Now()
	h := &models.Holding{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Name:         name,
		Sector:       sector,
		Quantity:     quantity,
		AvgPrice:     price,
		LastBuyPrice: price,
		LastBuyDate:  date,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := l.store.SaveHolding(h); err != nil {
		return nil, fmt.Errorf("failed to save holding %s: %w", symbol, err)
	}
	l.holdings[h.ID] = h
	return h, nil
}

// Close records a completed sell of quantity units from the holding. The cost
// basis of the disposed units is the holding's blended average price; a
// partial close leaves the average unchanged. A full close removes the
// holding. The daily sell counter is bumped, rolling over when the date
// changes.
func (l *Ledger) Close(holdingID string, quantity int64, price decimal.Decimal, date time.Time, reason models.SellReason) (*models.SoldItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.holdings[holdingID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHoldingNotFound, holdingID)
	}
	if quantity <= 0 || quantity > h.Quantity {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidQuantity, quantity, h.Quantity)
	}

	qty := decimal.NewFromInt(quantity)
	profit := price.Sub(h.AvgPrice).Mul(qty)
	profitPct := decimal.Zero
	if !h.AvgPrice.IsZero() {
		profitPct = price.Sub(h.AvgPrice).Div(h.AvgPrice).Mul(decimal.NewFromInt(100))
	}

	item := &models.SoldItem{
		ID:               uuid.NewString(),
		Symbol:           h.Symbol,
		Sector:           h.Sector,
		BuyDate:          h.LastBuyDate,
		SellDate:         date,
		BuyPrice:         h.AvgPrice,
		SellPrice:        price,
		Quantity:         quantity,
		Profit:           profit,
		ProfitPercentage: profitPct,
		SellReason:       reason,
		CreatedAt:        time.Now(),
	}

	count, last := l.rolledCounterLocked(date)
	count++
	last = date.Format(dateLayout)

	if err := l.store.AppendSoldItem(item); err != nil {
		return nil, fmt.Errorf("failed to append sold item %s: %w", h.Symbol, err)
	}
	if quantity == h.Quantity {
		if err := l.store.DeleteHolding(h.ID); err != nil {
			return nil, fmt.Errorf("failed to delete holding %s: %w", h.Symbol, err)
		}
		delete(l.holdings, h.ID)
	} else {
		updated := *h
		updated.Quantity = h.Quantity - quantity
		updated.UpdatedAt = time.Now()
		if err := l.store.SaveHolding(&updated); err != nil {
			return nil, fmt.Errorf("failed to save holding %s: %w", h.Symbol, err)
		}
		l.holdings[h.ID] = &updated
	}
	if err := l.store.SaveSellCounter(count, last); err != nil {
		return nil, fmt.Errorf("failed to save sell counter: %w", err)
	}

	l.soldItems = append(l.soldItems, item)
	l.dailySellCount = count
	l.lastSellDate = last
	return item, nil
}

// rolledCounterLocked returns the counter as of the given date, resetting it
// to zero when the date differs from the last recorded sell date.
func (l *Ledger) rolledCounterLocked(date time.Time) (int, string) {
	day := date.Format(dateLayout)
	if l.lastSellDate != day {
		return 0, l.lastSellDate
	}
	return l.dailySellCount, l.lastSellDate
}

// DailySellCount returns the number of sells recorded on the given day.
func (l *Ledger) DailySellCount(now time.Time) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	count, _ := l.rolledCounterLocked(now)
	return count
}

// Holdings returns a snapshot of open holdings, most recent buys first.
func (l *Ledger) Holdings() []*models.Holding {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*models.Holding, 0, len(l.holdings))
	for _, h := range l.holdings {
		cp := *h
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastBuyDate.Equal(out[j].LastBuyDate) {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].LastBuyDate.After(out[j].LastBuyDate)
	})
	return out
}

// SoldItems returns a snapshot of the sold-item history in append order.
func (l *Ledger) SoldItems() []*models.SoldItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*models.SoldItem, len(l.soldItems))
	for i, s := range l.soldItems {
		cp := *s
		out[i] = &cp
	}
	return out
}

// HoldingByID returns the holding with the given id.
func (l *Ledger) HoldingByID(id string) (*models.Holding, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.holdings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHoldingNotFound, id)
	}
	cp := *h
	return &cp, nil
}

// HoldingsBySymbol returns every open holding for the symbol.
func (l *Ledger) HoldingsBySymbol(symbol string) []*models.Holding {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []*models.Holding
	for _, h := range l.holdings {
		if h.Symbol == symbol {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out
}

// TotalInvested sums quantity × avg price over all holdings.
func (l *Ledger) TotalInvested() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := decimal.Zero
	for _, h := range l.holdings {
		total = total.Add(h.TotalInvested())
	}
	return total
}

// RealizedProfit sums profit over all sold items.
func (l *Ledger) RealizedProfit() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := decimal.Zero
	for _, s := range l.soldItems {
		total = total.Add(s.Profit)
	}
	return total
}

// SetCurrentPrice refreshes the informational price on every holding of the
// symbol. Accounting fields are never touched here.
func (l *Ledger) SetCurrentPrice(symbol string, price decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, h := range l.holdings {
		if h.Symbol == symbol {
			h.CurrentPrice = price
			h.UpdatedAt = time.Now()
		}
	}
}

// PutPendingOrder records or updates an in-flight order.
func (l *Ledger) PutPendingOrder(o *models.PendingOrder) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *o
	cp.UpdatedAt = time.Now()
	if err := l.store.SavePendingOrder(&cp); err != nil {
		return fmt.Errorf("failed to save pending order %s: %w", o.OrderID, err)
	}
	l.pendingOrders[cp.OrderID] = &cp
	return nil
}

// PendingOrder returns the tracked order with the given broker order id.
func (l *Ledger) PendingOrder(orderID string) (*models.PendingOrder, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	o, ok := l.pendingOrders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	cp := *o
	return &cp, nil
}

// PendingOrders returns a snapshot of all in-flight orders.
func (l *Ledger) PendingOrders() []*models.PendingOrder {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*models.PendingOrder, 0, len(l.pendingOrders))
	for _, o := range l.pendingOrders {
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out
}

// MarkOrderProcessed sets the exactly-once marker and final status on a
// pending order. It is persisted before the terminal mutation is reported to
// the caller.
func (l *Ledger) MarkOrderProcessed(orderID string, status models.OrderState) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.pendingOrders[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	cp := *o
	cp.Processed = true
	cp.Status = status
	cp.UpdatedAt = time.Now()
	if err := l.store.SavePendingOrder(&cp); err != nil {
		return fmt.Errorf("failed to save pending order %s: %w", orderID, err)
	}
	l.pendingOrders[orderID] = &cp
	return nil
}

// RemovePendingOrder drops a terminal order from the in-flight map.
func (l *Ledger) RemovePendingOrder(orderID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.pendingOrders[orderID]; !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err := l.store.DeletePendingOrder(orderID); err != nil {
		return fmt.Errorf("failed to delete pending order %s: %w", orderID, err)
	}
	delete(l.pendingOrders, orderID)
	return nil
}

// RecordCorrection overwrites a sold item in place. This is the out-of-band
// user edit; the order lifecycle never calls it.
func (l *Ledger) RecordCorrection(item *models.SoldItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.soldItems {
		if s.ID == item.ID {
			cp := *item
			if err := l.store.UpdateSoldItem(&cp); err != nil {
				return fmt.Errorf("failed to update sold item %s: %w", item.ID, err)
			}
			l.soldItems[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSoldItemNotFound, item.ID)
}

// findBySymbolLocked returns the oldest open holding for the symbol, which is
// the one a repeat buy averages into.
func (l *Ledger) findBySymbolLocked(symbol string) *models.Holding {
	var found *models.Holding
	for _, h := range l.holdings {
		if h.Symbol != symbol {
			continue
		}
		if found == nil || h.CreatedAt.Before(found.CreatedAt) {
			found = h
		}
	}
	return found
}
