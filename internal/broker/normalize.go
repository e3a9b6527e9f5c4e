package broker

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/etf-trading-service/internal/models"
)

// wireOrderDetail is the raw order-detail payload. The broker's responses use
// inconsistent field names across endpoints and API versions, so every known
// alias is declared here and collapsed by normalizeStatus. Nothing outside
// this file sees the raw names.
type wireOrderDetail struct {
	OrderID  string `json:"order_id,omitempty"`
	OrderNo  string `json:"order_no,omitempty"`
	Status   string `json:"status,omitempty"`
	OrdSt    string `json:"order_status,omitempty"`
	StatusCd string `json:"status_code,omitempty"`

	Quantity  json.Number `json:"quantity,omitempty"`
	Qty       json.Number `json:"qty,omitempty"`
	NetQty    json.Number `json:"netqty,omitempty"`
	FilledQty json.Number `json:"filled_quantity,omitempty"`

	AveragePrice json.Number `json:"average_price,omitempty"`
	AvgPrice     json.Number `json:"avg_price,omitempty"`
	AvgPrc       json.Number `json:"avgprc,omitempty"`

	Message string `json:"message,omitempty"`
	Reason  string `json:"rejection_reason,omitempty"`
}

// normalizeStatus maps a raw order detail onto the canonical OrderStatus.
func normalizeStatus(w wireOrderDetail) models.OrderStatus {
	st := models.OrderStatus{
		OrderID: firstNonEmpty(w.OrderID, w.OrderNo),
		State:   normalizeState(firstNonEmpty(w.Status, w.OrdSt, w.StatusCd)),
		Reason:  firstNonEmpty(w.Reason, w.Message),
	}
	st.FilledQuantity = firstInt(w.FilledQty, w.NetQty, w.Qty, w.Quantity)
	st.AveragePrice = firstDecimal(w.AveragePrice, w.AvgPrice, w.AvgPrc)
	return st
}

// normalizeState collapses the broker's status vocabulary onto the order
// state machine.
func normalizeState(raw string) models.OrderState {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COMPLETE", "COMPLETED", "SUCCESS", "TRADED", "FILLED":
		return models.OrderStateComplete
	case "PARTIAL", "PARTIALLY FILLED", "PARTIALLY_FILLED":
		return models.OrderStatePartial
	case "CANCELLED", "CANCELED":
		return models.OrderStateCancelled
	case "REJECTED", "REJECT", "FAILED":
		return models.OrderStateRejected
	default:
		// OPEN, PENDING, TRIGGER PENDING, PLACED and anything unknown are
		// all still in flight.
		return models.OrderStatePending
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstInt(vals ...json.Number) int64 {
	for _, v := range vals {
		if v == "" {
			continue
		}
		if n, err := v.Int64(); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func firstDecimal(vals ...json.Number) decimal.Decimal {
	for _, v := range vals {
		if v == "" {
			continue
		}
		if d, err := decimal.NewFromString(v.String()); err == nil && !d.IsZero() {
			return d
		}
	}
	return decimal.Zero
}
