package database

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/etf-trading-service/internal/models"
)

// SaveHolding inserts or updates a holding keyed by its id.
func (db *DB) SaveHolding(h *models.Holding) error {
	query := `
		INSERT INTO holdings (
			id, symbol, name, sector, quantity, avg_price,
			last_buy_price, last_buy_date, current_price, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id)
		DO UPDATE SET
			quantity = EXCLUDED.quantity,
			avg_price = EXCLUDED.avg_price,
			last_buy_price = EXCLUDED.last_buy_price,
			last_buy_date = EXCLUDED.last_buy_date,
			current_price = EXCLUDED.current_price,
			updated_at = EXCLUDED.updated_at
	`
	_, err := db.conn.Exec(query,
		h.ID, h.Symbol, h.Name, h.Sector, h.Quantity, h.AvgPrice,
		h.LastBuyPrice, h.LastBuyDate, h.CurrentPrice, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save holding %s: %w", h.Symbol, err)
	}
	return nil
}

// DeleteHolding removes a fully-closed holding.
func (db *DB) DeleteHolding(id string) error {
	result, err := db.conn.Exec(`DELETE FROM holdings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("holding not found: %s", id)
	}
	return nil
}

// LoadHoldings retrieves all open holdings.
func (db *DB) LoadHoldings() ([]*models.Holding, error) {
	query := `
		SELECT id, symbol, name, sector, quantity, avg_price,
		       last_buy_price, last_buy_date, current_price, created_at, updated_at
		FROM holdings
		ORDER BY last_buy_date DESC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		var h models.Holding
		var name, sector, currentPrice sql.NullString

		err := rows.Scan(
			&h.ID, &h.Symbol, &name, &sector, &h.Quantity, &h.AvgPrice,
			&h.LastBuyPrice, &h.LastBuyDate, &currentPrice, &h.CreatedAt, &h.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		if name.Valid {
			h.Name = name.String
		}
		if sector.Valid {
			h.Sector = sector.String
		}
		if currentPrice.Valid {
			h.CurrentPrice, _ = decimal.NewFromString(currentPrice.String)
		}

		holdings = append(holdings, &h)
	}

	return holdings, rows.Err()
}
