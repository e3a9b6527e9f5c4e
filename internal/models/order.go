package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderType is the broker order type.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// OrderState tracks a pending order through the broker.
type OrderState string

const (
	OrderStatePending   OrderState = "PENDING"
	OrderStateComplete  OrderState = "COMPLETE"
	OrderStatePartial   OrderState = "PARTIAL"
	OrderStateCancelled OrderState = "CANCELLED"
	OrderStateRejected  OrderState = "REJECTED"
)

// Terminal reports whether no further broker-side transition can occur.
func (s OrderState) Terminal() bool {
	switch s {
	case OrderStateComplete, OrderStatePartial, OrderStateCancelled, OrderStateRejected:
		return true
	}
	return false
}

// OrderRequest is an order intent before submission to the broker.
type OrderRequest struct {
	Symbol    string          `json:"symbol"`
	Side      OrderSide       `json:"side"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	OrderType OrderType       `json:"order_type"`

	// Sell-only fields. HoldingID pins the position being closed when more
	// than one lot is open for the symbol.
	HoldingID  string     `json:"holding_id,omitempty"`
	SellReason SellReason `json:"sell_reason,omitempty"`

	// Buy-only metadata carried onto the created holding.
	Name   string `json:"name,omitempty"`
	Sector string `json:"sector,omitempty"`
}

// OrderStatus is the broker's view of an order after normalization.
type OrderStatus struct {
	OrderID        string          `json:"order_id"`
	State          OrderState      `json:"state"`
	FilledQuantity int64           `json:"filled_quantity,omitempty"`
	AveragePrice   decimal.Decimal `json:"average_price,omitempty"`
	Reason         string          `json:"reason,omitempty"`
}

// PendingOrder is an in-flight broker instruction tracked by the ledger.
// Processed flips to true before the terminal ledger mutation is reported
// back to the caller, so a replayed status query never applies it twice.
type PendingOrder struct {
	OrderID     string          `json:"order_id"`
	Side        OrderSide       `json:"side"`
	Symbol      string          `json:"symbol"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Status      OrderState      `json:"status"`
	HoldingID   string          `json:"holding_id,omitempty"`
	SellReason  SellReason      `json:"sell_reason,omitempty"`
	Name        string          `json:"name,omitempty"`
	Sector      string          `json:"sector,omitempty"`
	Processed   bool            `json:"processed"`
	SubmittedAt time.Time       `json:"submitted_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
