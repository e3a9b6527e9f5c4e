// Package pricing fetches last-traded prices. Quotes are informational:
// consumers must tolerate stale or missing prices and never block accounting
// on them.
package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnavailable means no price could be produced for the symbol.
var ErrUnavailable = errors.New("price unavailable")

// Quote is one observed price.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	AsOf   time.Time       `json:"as_of"`
	Source string          `json:"source"`
}

// Source returns the last-traded price for a symbol.
type Source interface {
	GetPrice(ctx context.Context, symbol string) (Quote, error)
}
