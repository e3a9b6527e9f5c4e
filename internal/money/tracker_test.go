package money

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

func soldOn(daysAgo int, profit string, now time.Time) *models.SoldItem {
	return &models.SoldItem{
		Symbol:   "NSE:NIFTYBEES",
		SellDate: now.AddDate(0, 0, -daysAgo),
		Profit:   dec(profit),
	}
}

func TestCompute_EmptyDegradesToZeros(t *testing.T) {
	tr := &Tracker{BaseTradingAmount: dec("10000")}
	got := tr.Compute(nil, time.Now())

	assert.True(t, got.AvailableCapital.IsZero())
	assert.True(t, got.NextBuyAmount.Equal(dec("10000")))
	assert.True(t, got.CompoundingEffectPct.IsZero())
	assert.Empty(t, got.RecentProfits)
}

func TestCompute_WindowAndLosses(t *testing.T) {
	now := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)
	tr := &Tracker{BaseTradingAmount: dec("10000")}

	items := []*models.SoldItem{
		soldOn(5, "400", now),   // in window
		soldOn(29, "100", now),  // in window, boundary
		soldOn(45, "900", now),  // too old
		soldOn(2, "-250", now),  // loss, excluded
	}

	got := tr.Compute(items, now)
	require.Len(t, got.RecentProfits, 2)
	assert.True(t, got.AvailableCapital.Equal(dec("500")))
	assert.True(t, got.NextBuyAmount.Equal(dec("10500")))
	assert.True(t, got.CompoundingEffectPct.Equal(dec("5")), "got %s", got.CompoundingEffectPct)
}

func TestCompute_ZeroBaseAmount(t *testing.T) {
	now := time.Now()
	tr := &Tracker{}
	got := tr.Compute([]*models.SoldItem{soldOn(1, "300", now)}, now)

	assert.True(t, got.AvailableCapital.Equal(dec("300")))
	assert.True(t, got.NextBuyAmount.Equal(dec("300")))
	assert.True(t, got.CompoundingEffectPct.IsZero(), "no base amount means no effect percentage")
}

func TestRecentProfitWindow_CustomWindow(t *testing.T) {
	now := time.Now()
	tr := &Tracker{BaseTradingAmount: dec("10000"), WindowDays: 7}

	items := []*models.SoldItem{soldOn(3, "100", now), soldOn(10, "100", now)}
	got := tr.RecentProfitWindow(items, now)
	assert.Len(t, got, 1)
}
