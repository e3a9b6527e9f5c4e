package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/etf-trading-service/internal/models"
)

func testSession() Session {
	return Session{APIKey: "key", AccessToken: "token", Expiry: time.Now().Add(time.Hour)}
}

// ---------------------------------------------------------------------------
// normalizeStatus
// ---------------------------------------------------------------------------

func TestNormalizeStatus_FieldAliases(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		qty  int64
		avg  string
	}{
		{"canonical", `{"order_id":"1","status":"COMPLETE","filled_quantity":"10","average_price":"245.50"}`, 10, "245.50"},
		{"netqty and avgprc", `{"order_no":"1","order_status":"Traded","netqty":"10","avgprc":"245.50"}`, 10, "245.50"},
		{"qty and avg_price", `{"order_id":"1","status_code":"SUCCESS","qty":10,"avg_price":245.5}`, 10, "245.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var w wireOrderDetail
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &w))

			st := normalizeStatus(w)
			assert.Equal(t, "1", st.OrderID)
			assert.Equal(t, models.OrderStateComplete, st.State)
			assert.Equal(t, tc.qty, st.FilledQuantity)
			want, _ := decimal.NewFromString(tc.avg)
			assert.True(t, st.AveragePrice.Equal(want))
		})
	}
}

func TestNormalizeState_Vocabulary(t *testing.T) {
	assert.Equal(t, models.OrderStateComplete, normalizeState("completed"))
	assert.Equal(t, models.OrderStatePartial, normalizeState("PARTIALLY FILLED"))
	assert.Equal(t, models.OrderStateCancelled, normalizeState("Canceled"))
	assert.Equal(t, models.OrderStateRejected, normalizeState("REJECT"))
	assert.Equal(t, models.OrderStatePending, normalizeState("TRIGGER PENDING"))
	assert.Equal(t, models.OrderStatePending, normalizeState("something new"))
}

// ---------------------------------------------------------------------------
// MStocksClient
// ---------------------------------------------------------------------------

func TestMStocksClient_Submit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/order/place", r.URL.Path)
		require.Equal(t, "token key:token", r.Header.Get("Authorization"))
		require.Equal(t, "1", r.Header.Get("X-Mirae-Version"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "NIFTYBEES", r.PostForm.Get("tradingsymbol"))
		assert.Equal(t, "NSE", r.PostForm.Get("exchange"))
		assert.Equal(t, "BUY", r.PostForm.Get("transaction_type"))
		assert.Equal(t, "10", r.PostForm.Get("quantity"))
		assert.Equal(t, "CNC", r.PostForm.Get("product"))

		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"order_id": "ORD123"},
		})
	}))
	defer srv.Close()

	c := NewMStocksClient(srv.URL, testSession(), srv.Client())
	id, err := c.Submit(context.Background(), models.OrderRequest{
		Symbol:    "NSE:NIFTYBEES",
		Side:      models.OrderSideBuy,
		Quantity:  10,
		Price:     decimal.NewFromFloat(245.50),
		OrderType: models.OrderTypeLimit,
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD123", id)
}

func TestMStocksClient_Submit_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "insufficient funds"})
	}))
	defer srv.Close()

	c := NewMStocksClient(srv.URL, testSession(), srv.Client())
	_, err := c.Submit(context.Background(), models.OrderRequest{
		Symbol: "NSE:NIFTYBEES", Side: models.OrderSideBuy, Quantity: 10,
		Price: decimal.NewFromInt(245), OrderType: models.OrderTypeMarket,
	})
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestMStocksClient_QueryStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/order/details", r.URL.Path)
		assert.Equal(t, "ORD123", r.URL.Query().Get("order_no"))
		assert.Equal(t, "E", r.URL.Query().Get("segment"))

		// The details endpoint returns the order's event list; the last
		// entry is current.
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data": []map[string]any{
				{"order_no": "ORD123", "order_status": "OPEN"},
				{"order_no": "ORD123", "order_status": "Traded", "netqty": "10", "avgprc": "246.10"},
			},
		})
	}))
	defer srv.Close()

	c := NewMStocksClient(srv.URL, testSession(), srv.Client())
	st, err := c.QueryStatus(context.Background(), "ORD123")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateComplete, st.State)
	assert.Equal(t, int64(10), st.FilledQuantity)
	assert.True(t, st.AveragePrice.Equal(decimal.NewFromFloat(246.10)))
}

func TestMStocksClient_QueryStatus_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewMStocksClient(srv.URL, testSession(), srv.Client())
	_, err := c.QueryStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMStocksClient_Cancel_AlreadyTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "order already completed"})
	}))
	defer srv.Close()

	c := NewMStocksClient(srv.URL, testSession(), srv.Client())
	err := c.Cancel(context.Background(), "ORD123")
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
}

// ---------------------------------------------------------------------------
// Fake broker
// ---------------------------------------------------------------------------

func TestFake_ScriptedLifecycle(t *testing.T) {
	f := NewFake()
	f.Script = []models.OrderState{models.OrderStatePending, models.OrderStateComplete}

	id, err := f.Submit(context.Background(), models.OrderRequest{
		Symbol: "NSE:GOLDBEES", Side: models.OrderSideBuy, Quantity: 10,
		Price: decimal.NewFromInt(52), OrderType: models.OrderTypeMarket,
	})
	require.NoError(t, err)

	st, err := f.QueryStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatePending, st.State)

	st, err = f.QueryStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateComplete, st.State)
	assert.Equal(t, int64(10), st.FilledQuantity)

	// Terminal orders refuse cancellation.
	assert.ErrorIs(t, f.Cancel(context.Background(), id), ErrAlreadyTerminal)
}
