package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/trogers1052/etf-trading-service/internal/broker"
	"github.com/trogers1052/etf-trading-service/internal/database"
	"github.com/trogers1052/etf-trading-service/internal/ledger"
	"github.com/trogers1052/etf-trading-service/internal/lifecycle"
	"github.com/trogers1052/etf-trading-service/internal/models"
	"github.com/trogers1052/etf-trading-service/internal/money"
	"github.com/trogers1052/etf-trading-service/internal/policy"
	"github.com/trogers1052/etf-trading-service/internal/pricing"
	redisclient "github.com/trogers1052/etf-trading-service/internal/redis"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db       *database.DB
	ledger   *ledger.Ledger
	manager  *lifecycle.Manager
	policy   *policy.Policy
	tracker  *money.Tracker
	quotes   pricing.Source
	redis    *redisclient.Client
	universe []*models.ETF
}

// NewHandler creates a new Handler. db, quotes and redis may be nil; the
// affected endpoints degrade instead of failing at startup.
func NewHandler(db *database.DB, l *ledger.Ledger, m *lifecycle.Manager, p *policy.Policy, tracker *money.Tracker, quotes pricing.Source, redisClient *redisclient.Client) *Handler {
	return &Handler{
		db:       db,
		ledger:   l,
		manager:  m,
		policy:   p,
		tracker:  tracker,
		quotes:   quotes,
		redis:    redisClient,
		universe: models.DefaultETFUniverse(),
	}
}

// GetHoldings handles GET /holdings
func (h *Handler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"holdings":        h.ledger.Holdings(),
		"total_invested":  h.ledger.TotalInvested(),
		"realized_profit": h.ledger.RealizedProfit(),
	})
}

// GetSoldItems handles GET /sold-items
func (h *Handler) GetSoldItems(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ledger.SoldItems())
}

// CorrectSoldItem handles PUT /sold-items/{id}. User-initiated record fix;
// the order lifecycle never comes through here.
func (h *Handler) CorrectSoldItem(w http.ResponseWriter, r *http.Request) {
	var item models.SoldItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	item.ID = mux.Vars(r)["id"]
	if item.SellReason != "" && !item.SellReason.Valid() {
		http.Error(w, "invalid sell reason", http.StatusBadRequest)
		return
	}

	if err := h.ledger.RecordCorrection(&item); err != nil {
		if errors.Is(err, ledger.ErrSoldItemNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// PlaceOrder handles POST /orders
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.manager.Place(r.Context(), req)
	if err != nil {
		respondOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// GetOrder handles GET /orders/{orderId}. For a still-pending order it
// re-queries the broker and settles if a terminal state is found, so polling
// this endpoint doubles as reconciliation.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	result, err := h.manager.Reconcile(r.Context(), orderID)
	if err != nil {
		respondOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CancelOrder handles POST /orders/{orderId}/cancel
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	if err := h.manager.Cancel(r.Context(), orderID); err != nil {
		respondOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"order_id": orderID, "status": "cancel_requested"})
}

// GetETFRanking handles GET /etfs/ranking
func (h *Handler) GetETFRanking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	etfs := make([]*models.ETF, 0, len(h.universe))
	for _, e := range h.universe {
		cp := *e
		h.fillSignal(ctx, &cp)
		etfs = append(etfs, &cp)
	}

	ranked := h.policy.RankETFsForPurchase(etfs, h.ledger.Holdings())
	respondJSON(w, http.StatusOK, ranked)
}

// fillSignal populates CMP and DMA20 on one ETF, best effort. An instrument
// with no quote keeps zero values and sorts after everything with a signal.
func (h *Handler) fillSignal(ctx context.Context, e *models.ETF) {
	if h.quotes != nil {
		if q, err := h.quotes.GetPrice(ctx, e.Symbol); err == nil {
			e.CMP = q.Price
		}
	}
	if h.redis != nil {
		if dma, err := h.redis.GetDMA(ctx, e.Symbol); err == nil {
			e.DMA20 = decimal.NewFromFloat(dma)
		} else if !redisclient.IsMiss(err) {
			log.Printf("Warning: DMA lookup failed for %s: %v", e.Symbol, err)
		}
	}
}

// GetMoneyManagement handles GET /money-management
func (h *Handler) GetMoneyManagement(w http.ResponseWriter, r *http.Request) {
	summary := h.tracker.Compute(h.ledger.SoldItems(), time.Now())
	respondJSON(w, http.StatusOK, summary)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  map[string]string{},
	}
	services := health["services"].(map[string]string)
	allHealthy := true

	// Check database
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			services["postgres"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			services["postgres"] = "healthy"
		}
	} else {
		services["postgres"] = "not configured"
	}

	// Check Redis
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "not configured"
	}

	if !allHealthy {
		health["status"] = "degraded"
	}

	respondJSON(w, http.StatusOK, health)
}

// respondOrderError maps lifecycle and ledger errors onto HTTP status codes.
func respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrPolicyViolation):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ledger.ErrHoldingNotFound),
		errors.Is(err, ledger.ErrOrderNotFound),
		errors.Is(err, broker.ErrOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, lifecycle.ErrAmbiguousHolding),
		errors.Is(err, lifecycle.ErrAlreadyProcessed),
		errors.Is(err, broker.ErrAlreadyTerminal):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, lifecycle.ErrOrderTimeout):
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
	case errors.Is(err, broker.ErrRejected):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, lifecycle.ErrInvalidRequest),
		errors.Is(err, ledger.ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
