package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler, metricsHandler http.Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check and metrics
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods("GET")
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// Portfolio routes
	api.HandleFunc("/holdings", handler.GetHoldings).Methods("GET")
	api.HandleFunc("/sold-items", handler.GetSoldItems).Methods("GET")
	api.HandleFunc("/sold-items/{id}", handler.CorrectSoldItem).Methods("PUT")

	// Order lifecycle routes
	api.HandleFunc("/orders", handler.PlaceOrder).Methods("POST")
	api.HandleFunc("/orders/{orderId}", handler.GetOrder).Methods("GET")
	api.HandleFunc("/orders/{orderId}/cancel", handler.CancelOrder).Methods("POST")

	// Strategy routes
	api.HandleFunc("/etfs/ranking", handler.GetETFRanking).Methods("GET")
	api.HandleFunc("/money-management", handler.GetMoneyManagement).Methods("GET")

	return r
}
