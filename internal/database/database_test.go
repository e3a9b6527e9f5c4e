package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/etf-trading-service/internal/models"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewWithConn(conn), mock
}

func TestSaveHolding(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO holdings`).
		WithArgs("h1", "NSE:NIFTYBEES", "NIFTY 50 ETF", "Nifty 50", int64(10),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := &models.Holding{
		ID: "h1", Symbol: "NSE:NIFTYBEES", Name: "NIFTY 50 ETF", Sector: "Nifty 50",
		Quantity: 10, AvgPrice: decimal.NewFromFloat(245.50),
		LastBuyPrice: decimal.NewFromFloat(245.50), LastBuyDate: time.Now(),
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, db.SaveHolding(h))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteHolding_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM holdings`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := db.DeleteHolding("missing")
	assert.ErrorContains(t, err, "holding not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadHoldings(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "symbol", "name", "sector", "quantity", "avg_price",
		"last_buy_price", "last_buy_date", "current_price", "created_at", "updated_at",
	}).
		AddRow("h1", "NSE:NIFTYBEES", "NIFTY 50 ETF", "Nifty 50", int64(10), "245.50", "245.50", now, "248.20", now, now).
		AddRow("h2", "NSE:GOLDBEES", nil, nil, int64(20), "52.30", "52.30", now, nil, now, now)

	mock.ExpectQuery(`SELECT .+ FROM holdings`).WillReturnRows(rows)

	holdings, err := db.LoadHoldings()
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	assert.Equal(t, "NSE:NIFTYBEES", holdings[0].Symbol)
	assert.True(t, holdings[0].CurrentPrice.Equal(decimal.NewFromFloat(248.20)))
	assert.Empty(t, holdings[1].Name)
	assert.True(t, holdings[1].CurrentPrice.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendSoldItem(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO sold_items`).
		WithArgs("s1", "NSE:NIFTYBEES", "Nifty 50", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), int64(40), sqlmock.AnyArg(),
			sqlmock.AnyArg(), "manual", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	item := &models.SoldItem{
		ID: "s1", Symbol: "NSE:NIFTYBEES", Sector: "Nifty 50",
		BuyDate: time.Now(), SellDate: time.Now(),
		BuyPrice: decimal.NewFromInt(50), SellPrice: decimal.NewFromInt(60),
		Quantity: 40, Profit: decimal.NewFromInt(400),
		ProfitPercentage: decimal.NewFromInt(20),
		SellReason:       models.SellReasonManual, CreatedAt: time.Now(),
	}
	require.NoError(t, db.AppendSoldItem(item))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSoldItems(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "symbol", "sector", "buy_date", "sell_date", "buy_price", "sell_price",
		"quantity", "profit", "profit_percentage", "sell_reason", "created_at",
	}).AddRow("s1", "NSE:NIFTYBEES", "Nifty 50", now, now, "50", "60", int64(40), "400", "20", "target-profit", now)

	mock.ExpectQuery(`SELECT .+ FROM sold_items`).WillReturnRows(rows)

	items, err := db.LoadSoldItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.SellReasonTargetProfit, items[0].SellReason)
	assert.True(t, items[0].Profit.Equal(decimal.NewFromInt(400)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePendingOrder(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO pending_orders`).
		WithArgs("ORD123", "BUY", "NSE:NIFTYBEES", int64(10), sqlmock.AnyArg(),
			"PENDING", "", "", "", "", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	o := &models.PendingOrder{
		OrderID: "ORD123", Side: models.OrderSideBuy, Symbol: "NSE:NIFTYBEES",
		Quantity: 10, Price: decimal.NewFromInt(245), Status: models.OrderStatePending,
		SubmittedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, db.SavePendingOrder(o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellCounter_RoundTrip(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO ledger_meta`).
		WithArgs(2, "2025-08-30").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, db.SaveSellCounter(2, "2025-08-30"))

	mock.ExpectQuery(`SELECT daily_sell_count, last_sell_date FROM ledger_meta`).
		WillReturnRows(sqlmock.NewRows([]string{"daily_sell_count", "last_sell_date"}).AddRow(2, "2025-08-30"))

	count, date, err := db.LoadSellCounter()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "2025-08-30", date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSellCounter_NoRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT daily_sell_count, last_sell_date FROM ledger_meta`).
		WillReturnRows(sqlmock.NewRows([]string{"daily_sell_count", "last_sell_date"}))

	count, date, err := db.LoadSellCounter()
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, date)
}
