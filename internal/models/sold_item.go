package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellReason classifies why a position was closed.
type SellReason string

const (
	SellReasonTargetProfit SellReason = "target-profit"
	SellReasonStopLoss     SellReason = "stop-loss"
	SellReasonRebalancing  SellReason = "rebalancing"
	SellReasonManual       SellReason = "manual"
	SellReasonOther        SellReason = "other"
)

// Valid reports whether the reason is one of the known values.
func (r SellReason) Valid() bool {
	switch r {
	case SellReasonTargetProfit, SellReasonStopLoss, SellReasonRebalancing,
		SellReasonManual, SellReasonOther:
		return true
	}
	return false
}

// SoldItem is the record of a completed full or partial disposal. Records are
// append-only; the only permitted change after creation is an explicit user
// correction, which happens outside the order lifecycle.
type SoldItem struct {
	ID               string          `json:"id"`
	Symbol           string          `json:"symbol"`
	Sector           string          `json:"sector,omitempty"`
	BuyDate          time.Time       `json:"buy_date"`
	SellDate         time.Time       `json:"sell_date"`
	BuyPrice         decimal.Decimal `json:"buy_price"`
	SellPrice        decimal.Decimal `json:"sell_price"`
	Quantity         int64           `json:"quantity"`
	Profit           decimal.Decimal `json:"profit"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
	SellReason       SellReason      `json:"sell_reason"`
	CreatedAt        time.Time       `json:"created_at"`
}
