package database

import (
	"database/sql"
	"fmt"

	"github.com/trogers1052/etf-trading-service/internal/models"
)

// SavePendingOrder inserts or updates an in-flight order keyed by the broker
// order id.
func (db *DB) SavePendingOrder(o *models.PendingOrder) error {
	query := `
		INSERT INTO pending_orders (
			order_id, side, symbol, quantity, price, status, holding_id,
			sell_reason, name, sector, processed, submitted_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (order_id)
		DO UPDATE SET
			status = EXCLUDED.status,
			processed = EXCLUDED.processed,
			updated_at = EXCLUDED.updated_at
	`
	_, err := db.conn.Exec(query,
		o.OrderID, string(o.Side), o.Symbol, o.Quantity, o.Price, string(o.Status),
		o.HoldingID, string(o.SellReason), o.Name, o.Sector, o.Processed,
		o.SubmittedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save pending order %s: %w", o.OrderID, err)
	}
	return nil
}

// DeletePendingOrder removes a settled order from the pending set.
func (db *DB) DeletePendingOrder(orderID string) error {
	result, err := db.conn.Exec(`DELETE FROM pending_orders WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete pending order: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("pending order not found: %s", orderID)
	}
	return nil
}

// LoadPendingOrders retrieves all in-flight orders.
func (db *DB) LoadPendingOrders() ([]*models.PendingOrder, error) {
	query := `
		SELECT order_id, side, symbol, quantity, price, status, holding_id,
		       sell_reason, name, sector, processed, submitted_at, updated_at
		FROM pending_orders
		ORDER BY submitted_at ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.PendingOrder
	for rows.Next() {
		var o models.PendingOrder
		var side, status string
		var holdingID, sellReason, name, sector sql.NullString

		err := rows.Scan(
			&o.OrderID, &side, &o.Symbol, &o.Quantity, &o.Price, &status, &holdingID,
			&sellReason, &name, &sector, &o.Processed, &o.SubmittedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending order: %w", err)
		}

		o.Side = models.OrderSide(side)
		o.Status = models.OrderState(status)
		if holdingID.Valid {
			o.HoldingID = holdingID.String
		}
		if sellReason.Valid {
			o.SellReason = models.SellReason(sellReason.String)
		}
		if name.Valid {
			o.Name = name.String
		}
		if sector.Valid {
			o.Sector = sector.String
		}

		orders = append(orders, &o)
	}

	return orders, rows.Err()
}
