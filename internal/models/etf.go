package models

import "github.com/shopspring/decimal"

// ETF is one instrument from the tracked universe, carrying the dip signal
// used for purchase ranking.
type ETF struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
	// CMP is the current market price, DMA20 the 20-trading-day moving
	// average of the close.
	CMP   decimal.Decimal `json:"cmp"`
	DMA20 decimal.Decimal `json:"dma20"`
	// PercentBelowDMA is (CMP − DMA20)/DMA20 × 100; negative means the
	// price sits below its average. Recomputed by the ranking, not stored.
	PercentBelowDMA decimal.Decimal `json:"percent_below_dma"`
	// Rank is the 1-based position after ranking.
	Rank   int   `json:"rank,omitempty"`
	Volume int64 `json:"volume,omitempty"`
}
