package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents an open ETF position. AvgPrice is the volume-weighted
// average cost across every buy lot for the symbol; CurrentPrice is refreshed
// from the price source and is informational only, never used as cost basis.
type Holding struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name,omitempty"`
	Sector       string          `json:"sector,omitempty"`
	Quantity     int64           `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
	LastBuyPrice decimal.Decimal `json:"last_buy_price"`
	LastBuyDate  time.Time       `json:"last_buy_date"`
	CurrentPrice decimal.Decimal `json:"current_price,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TotalInvested returns quantity × average price.
func (h *Holding) TotalInvested() decimal.Decimal {
	return h.AvgPrice.Mul(decimal.NewFromInt(h.Quantity))
}

// CurrentValue returns quantity × current price.
func (h *Holding) CurrentValue() decimal.Decimal {
	return h.CurrentPrice.Mul(decimal.NewFromInt(h.Quantity))
}

// ProfitLoss returns current value minus total invested.
func (h *Holding) ProfitLoss() decimal.Decimal {
	return h.CurrentValue().Sub(h.TotalInvested())
}

// ProfitPercentage returns profit/loss as a percentage of total invested,
// zero when nothing is invested.
func (h *Holding) ProfitPercentage() decimal.Decimal {
	invested := h.TotalInvested()
	if invested.IsZero() {
		return decimal.Zero
	}
	return h.ProfitLoss().Div(invested).Mul(decimal.NewFromInt(100))
}
