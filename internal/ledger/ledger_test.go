package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/etf-trading-service/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOpenOrAverage_NewHolding(t *testing.T) {
	l := New(nil)

	h, err := l.OpenOrAverage("NSE:NIFTYBEES", "NIFTY 50 ETF", "Nifty 50", 100, dec("245.50"), day("2025-08-01"))
	require.NoError(t, err)

	assert.NotEmpty(t, h.ID)
	assert.Equal(t, int64(100), h.Quantity)
	assert.True(t, h.AvgPrice.Equal(dec("245.50")))
	assert.True(t, h.LastBuyPrice.Equal(dec("245.50")))
	assert.Len(t, l.Holdings(), 1)
}

func TestOpenOrAverage_BlendsAveragePrice(t *testing.T) {
	l := New(nil)

	// Two buys of Y: (10 @ 100) then (10 @ 120) must blend to 20 @ 110.
	_, err := l.OpenOrAverage("NSE:GOLDBEES", "", "Gold", 10, dec("100"), day("2025-08-01"))
	require.NoError(t, err)
	h, err := l.OpenOrAverage("NSE:GOLDBEES", "", "Gold", 10, dec("120"), day("2025-08-05"))
	require.NoError(t, err)

	assert.Equal(t, int64(20), h.Quantity)
	assert.True(t, h.AvgPrice.Equal(dec("110")), "avg price should be 110, got %s", h.AvgPrice)
	assert.True(t, h.LastBuyPrice.Equal(dec("120")))
	assert.Equal(t, day("2025-08-05"), h.LastBuyDate)
	assert.Len(t, l.Holdings(), 1)
}

func TestOpenOrAverage_AverageCostInvariant(t *testing.T) {
	l := New(nil)

	buys := []struct {
		qty   int64
		price string
	}{
		{10, "100"}, {25, "95.40"}, {5, "112.25"}, {60, "101"},
	}

	totalQty := int64(0)
	totalCost := decimal.Zero
	var last *models.Holding
	for _, b := range buys {
		h, err := l.OpenOrAverage("NSE:BANKBEES", "", "Bank", b.qty, dec(b.price), day("2025-08-01"))
		require.NoError(t, err)
		totalQty += b.qty
		totalCost = totalCost.Add(dec(b.price).Mul(decimal.NewFromInt(b.qty)))
		last = h

		want := totalCost.Div(decimal.NewFromInt(totalQty))
		assert.True(t, h.AvgPrice.Equal(want), "after buy %+v want avg %s got %s", b, want, h.AvgPrice)
	}
	assert.Equal(t, totalQty, last.Quantity)
}

func TestClose_Partial(t *testing.T) {
	l := New(nil)
	h, err := l.OpenOrAverage("NSE:NIFTYBEES", "", "Nifty 50", 100, dec("50"), day("2025-08-01"))
	require.NoError(t, err)

	investedBefore := l.TotalInvested()

	item, err := l.Close(h.ID, 40, dec("60"), day("2025-08-20"), models.SellReasonManual)
	require.NoError(t, err)

	assert.Equal(t, int64(40), item.Quantity)
	assert.True(t, item.BuyPrice.Equal(dec("50")))
	assert.True(t, item.SellPrice.Equal(dec("60")))
	assert.True(t, item.Profit.Equal(dec("400")), "profit should be 400, got %s", item.Profit)
	assert.Equal(t, models.SellReasonManual, item.SellReason)

	holdings := l.Holdings()
	require.Len(t, holdings, 1)
	assert.Equal(t, int64(60), holdings[0].Quantity)
	assert.True(t, holdings[0].AvgPrice.Equal(dec("50")), "partial close must not change avg price")

	// Invested drops by exactly closed qty × avg price.
	wantDrop := dec("50").Mul(decimal.NewFromInt(40))
	assert.True(t, investedBefore.Sub(l.TotalInvested()).Equal(wantDrop))
}

func TestClose_Full(t *testing.T) {
	l := New(nil)
	h, err := l.OpenOrAverage("NSE:CPSEETF", "", "PSU", 50, dec("45.20"), day("2025-08-01"))
	require.NoError(t, err)

	item, err := l.Close(h.ID, 50, dec("48"), day("2025-08-20"), models.SellReasonTargetProfit)
	require.NoError(t, err)

	assert.Equal(t, int64(50), item.Quantity)
	assert.Empty(t, l.Holdings(), "full close must delete the holding")
	assert.Len(t, l.SoldItems(), 1)

	_, err = l.HoldingByID(h.ID)
	assert.ErrorIs(t, err, ErrHoldingNotFound)
}

func TestClose_InvalidQuantity(t *testing.T) {
	l := New(nil)
	h, err := l.OpenOrAverage("NSE:CPSEETF", "", "PSU", 50, dec("45.20"), day("2025-08-01"))
	require.NoError(t, err)

	_, err = l.Close(h.ID, 0, dec("48"), day("2025-08-20"), models.SellReasonManual)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = l.Close(h.ID, 51, dec("48"), day("2025-08-20"), models.SellReasonManual)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = l.Close("no-such-id", 10, dec("48"), day("2025-08-20"), models.SellReasonManual)
	assert.ErrorIs(t, err, ErrHoldingNotFound)

	// Failed closes must not touch state.
	assert.Len(t, l.Holdings(), 1)
	assert.Empty(t, l.SoldItems())
	assert.Equal(t, 0, l.DailySellCount(day("2025-08-20")))
}

func TestDailySellCount_RollsOverWithDate(t *testing.T) {
	l := New(nil)
	h1, err := l.OpenOrAverage("NSE:NIFTYBEES", "", "Nifty 50", 10, dec("245"), day("2025-08-01"))
	require.NoError(t, err)
	h2, err := l.OpenOrAverage("NSE:GOLDBEES", "", "Gold", 10, dec("52"), day("2025-08-01"))
	require.NoError(t, err)

	_, err = l.Close(h1.ID, 10, dec("250"), day("2025-08-20"), models.SellReasonTargetProfit)
	require.NoError(t, err)
	assert.Equal(t, 1, l.DailySellCount(day("2025-08-20")))

	// Next day the counter reads zero again and resumes from one.
	assert.Equal(t, 0, l.DailySellCount(day("2025-08-21")))

	_, err = l.Close(h2.ID, 10, dec("53"), day("2025-08-21"), models.SellReasonTargetProfit)
	require.NoError(t, err)
	assert.Equal(t, 1, l.DailySellCount(day("2025-08-21")))
}

func TestRealizedProfit(t *testing.T) {
	l := New(nil)
	h, err := l.OpenOrAverage("NSE:NIFTYBEES", "", "Nifty 50", 20, dec("100"), day("2025-08-01"))
	require.NoError(t, err)

	_, err = l.Close(h.ID, 10, dec("110"), day("2025-08-10"), models.SellReasonTargetProfit)
	require.NoError(t, err)
	_, err = l.Close(h.ID, 10, dec("95"), day("2025-08-11"), models.SellReasonStopLoss)
	require.NoError(t, err)

	// +100 then −50.
	assert.True(t, l.RealizedProfit().Equal(dec("50")))
	assert.Empty(t, l.Holdings())
}

func TestSetCurrentPrice_DoesNotTouchAccounting(t *testing.T) {
	l := New(nil)
	h, err := l.OpenOrAverage("NSE:NIFTYBEES", "", "Nifty 50", 10, dec("245"), day("2025-08-01"))
	require.NoError(t, err)

	l.SetCurrentPrice("NSE:NIFTYBEES", dec("260"))

	got, err := l.HoldingByID(h.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentPrice.Equal(dec("260")))
	assert.True(t, got.AvgPrice.Equal(dec("245")))
	assert.True(t, l.TotalInvested().Equal(dec("2450")))
}

func TestPendingOrder_Lifecycle(t *testing.T) {
	l := New(nil)

	o := &models.PendingOrder{
		OrderID:     "ord-1",
		Side:        models.OrderSideBuy,
		Symbol:      "NSE:NIFTYBEES",
		Quantity:    10,
		Price:       dec("245"),
		Status:      models.OrderStatePending,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, l.PutPendingOrder(o))

	got, err := l.PendingOrder("ord-1")
	require.NoError(t, err)
	assert.False(t, got.Processed)

	require.NoError(t, l.MarkOrderProcessed("ord-1", models.OrderStateComplete))
	got, err = l.PendingOrder("ord-1")
	require.NoError(t, err)
	assert.True(t, got.Processed)
	assert.Equal(t, models.OrderStateComplete, got.Status)

	require.NoError(t, l.RemovePendingOrder("ord-1"))
	_, err = l.PendingOrder("ord-1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
