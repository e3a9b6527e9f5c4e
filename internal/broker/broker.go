// Package broker defines the client contract the order lifecycle depends on,
// plus the MStocks Type A REST adapter.
package broker

import (
	"context"
	"errors"

	"github.com/trogers1052/etf-trading-service/internal/models"
)

var (
	// ErrRejected means the broker refused the order at submission.
	ErrRejected = errors.New("order rejected by broker")
	// ErrOrderNotFound means the broker does not know the order id.
	ErrOrderNotFound = errors.New("order not found")
	// ErrAlreadyTerminal means a cancel arrived after the order reached a
	// terminal state.
	ErrAlreadyTerminal = errors.New("order already terminal")
)

// Client submits orders to a broker and reports their status. Implementations
// must be safe for concurrent use.
type Client interface {
	// Submit places the order and returns the broker-assigned order id.
	Submit(ctx context.Context, req models.OrderRequest) (string, error)
	// QueryStatus returns the broker's current view of the order.
	QueryStatus(ctx context.Context, orderID string) (models.OrderStatus, error)
	// Cancel cancels a still-open order.
	Cancel(ctx context.Context, orderID string) error
}
