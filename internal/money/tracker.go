// Package money derives reinvestable capital from recent realized profits.
// Everything here is a read-only view over the ledger's sold items.
package money

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/etf-trading-service/internal/models"
)

// DefaultWindowDays is the rolling window profits compound over.
const DefaultWindowDays = 30

// Tracker computes the money-management figures from a sold-item snapshot.
type Tracker struct {
	// BaseTradingAmount is the fixed per-trade chunk the user configured.
	BaseTradingAmount decimal.Decimal
	// WindowDays is the lookback for reinvestable profits; zero means
	// DefaultWindowDays.
	WindowDays int
}

// Summary is the derived money-management view.
type Summary struct {
	AvailableCapital     decimal.Decimal    `json:"available_capital"`
	NextBuyAmount        decimal.Decimal    `json:"next_buy_amount"`
	CompoundingEffectPct decimal.Decimal    `json:"compounding_effect_pct"`
	RecentProfits        []*models.SoldItem `json:"recent_profits"`
}

// RecentProfitWindow returns the sold items with positive profit whose sell
// date falls inside the rolling window ending at now.
func (t *Tracker) RecentProfitWindow(soldItems []*models.SoldItem, now time.Time) []*models.SoldItem {
	days := t.WindowDays
	if days <= 0 {
		days = DefaultWindowDays
	}
	cutoff := now.AddDate(0, 0, -days)

	var out []*models.SoldItem
	for _, s := range soldItems {
		if s.Profit.IsPositive() && !s.SellDate.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// Compute builds the full summary. Degrades to zeros when there are no sold
// items or no base amount.
func (t *Tracker) Compute(soldItems []*models.SoldItem, now time.Time) Summary {
	recent := t.RecentProfitWindow(soldItems, now)

	available := decimal.Zero
	for _, s := range recent {
		available = available.Add(s.Profit)
	}

	next := t.BaseTradingAmount.Add(available)
	effect := decimal.Zero
	if t.BaseTradingAmount.IsPositive() {
		effect = next.Sub(t.BaseTradingAmount).Div(t.BaseTradingAmount).Mul(decimal.NewFromInt(100))
	}

	return Summary{
		AvailableCapital:     available,
		NextBuyAmount:        next,
		CompoundingEffectPct: effect,
		RecentProfits:        recent,
	}
}
