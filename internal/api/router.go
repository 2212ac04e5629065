/**
 * @description
 * This file sets up the HTTP router for the ledger service. It defines the
 * API endpoints, associates them with their corresponding handlers, and
 * applies the standard middleware stack plus CORS for the dashboard frontend.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: HTTP routing and middleware.
 * - github.com/go-chi/cors: Cross-origin policy for the dashboard.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// LedgerRoutes creates and returns the router for the ledger service.
func LedgerRoutes(h *LedgerHandlers, broadcaster *DashboardBroadcaster, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.DashboardHandler)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccountsHandler)
			r.Post("/", h.CreateAccountHandler)
			r.Get("/{id}", h.GetAccountHandler)
			r.Delete("/{id}", h.DeleteAccountHandler)
			r.Get("/{id}/balance", h.GetBalanceHandler)
			r.Get("/{id}/transactions", h.AccountTransactionsHandler)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/deposit", h.DepositHandler)
			r.Post("/withdrawal", h.WithdrawalHandler)
			r.Post("/transfer", h.TransferHandler)
		})
	})

	// WebSocket endpoint for real-time dashboard updates.
	r.Get("/ws", broadcaster.ServeWS)

	return r
}
