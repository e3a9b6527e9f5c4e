package database

import (
	"database/sql"
	"fmt"
)

// SaveSellCounter persists the daily sell counter. A single row keyed by id=1
// holds the count and the date it belongs to.
func (db *DB) SaveSellCounter(count int, lastSellDate string) error {
	query := `
		INSERT INTO ledger_meta (id, daily_sell_count, last_sell_date)
		VALUES (1, $1, $2)
		ON CONFLICT (id)
		DO UPDATE SET
			daily_sell_count = EXCLUDED.daily_sell_count,
			last_sell_date = EXCLUDED.last_sell_date
	`
	if _, err := db.conn.Exec(query, count, lastSellDate); err != nil {
		return fmt.Errorf("failed to save sell counter: %w", err)
	}
	return nil
}

// LoadSellCounter retrieves the daily sell counter. A missing row means no
// sell was ever recorded.
func (db *DB) LoadSellCounter() (int, string, error) {
	var count int
	var lastSellDate sql.NullString

	err := db.conn.QueryRow(`SELECT daily_sell_count, last_sell_date FROM ledger_meta WHERE id = 1`).
		Scan(&count, &lastSellDate)
	if err == sql.ErrNoRows {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("failed to load sell counter: %w", err)
	}
	return count, lastSellDate.String, nil
}
