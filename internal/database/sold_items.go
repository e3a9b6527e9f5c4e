package database

import (
	"database/sql"
	"fmt"

	"github.com/trogers1052/etf-trading-service/internal/models"
)

// AppendSoldItem inserts a sold-item record. Records are append-only;
// UpdateSoldItem exists solely for explicit user corrections.
func (db *DB) AppendSoldItem(s *models.SoldItem) error {
	query := `
		INSERT INTO sold_items (
			id, symbol, sector, buy_date, sell_date, buy_price, sell_price,
			quantity, profit, profit_percentage, sell_reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := db.conn.Exec(query,
		s.ID, s.Symbol, s.Sector, s.BuyDate, s.SellDate, s.BuyPrice, s.SellPrice,
		s.Quantity, s.Profit, s.ProfitPercentage, string(s.SellReason), s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append sold item %s: %w", s.Symbol, err)
	}
	return nil
}

// UpdateSoldItem overwrites a sold item during an out-of-band correction.
func (db *DB) UpdateSoldItem(s *models.SoldItem) error {
	query := `
		UPDATE sold_items SET
			buy_date = $2, sell_date = $3, buy_price = $4, sell_price = $5,
			quantity = $6, profit = $7, profit_percentage = $8, sell_reason = $9
		WHERE id = $1
	`
	result, err := db.conn.Exec(query,
		s.ID, s.BuyDate, s.SellDate, s.BuyPrice, s.SellPrice,
		s.Quantity, s.Profit, s.ProfitPercentage, string(s.SellReason),
	)
	if err != nil {
		return fmt.Errorf("failed to update sold item %s: %w", s.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("sold item not found: %s", s.ID)
	}
	return nil
}

// LoadSoldItems retrieves the full sold-item history, oldest first.
func (db *DB) LoadSoldItems() ([]*models.SoldItem, error) {
	query := `
		SELECT id, symbol, sector, buy_date, sell_date, buy_price, sell_price,
		       quantity, profit, profit_percentage, sell_reason, created_at
		FROM sold_items
		ORDER BY created_at ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load sold items: %w", err)
	}
	defer rows.Close()

	var items []*models.SoldItem
	for rows.Next() {
		var s models.SoldItem
		var sector sql.NullString
		var reason string

		err := rows.Scan(
			&s.ID, &s.Symbol, &sector, &s.BuyDate, &s.SellDate, &s.BuyPrice, &s.SellPrice,
			&s.Quantity, &s.Profit, &s.ProfitPercentage, &reason, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sold item: %w", err)
		}

		if sector.Valid {
			s.Sector = sector.String
		}
		s.SellReason = models.SellReason(reason)

		items = append(items, &s)
	}

	return items, rows.Err()
}
