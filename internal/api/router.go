package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/ledger-service/internal/api/handlers"
	"github.com/baharkarakas/ledger-service/internal/api/httpx"
	"github.com/baharkarakas/ledger-service/internal/config"
	"github.com/baharkarakas/ledger-service/internal/metrics"
	"github.com/baharkarakas/ledger-service/internal/middleware"
)

func NewRouter(cfg config.Config, th *handlers.TransactionHandler) http.Handler {
	metrics.Init()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))
	r.Use(middleware.HTTPMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	// info, health & metrics
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"service": "transactions"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	// "/transactions" and "/transactions/" both hit the list/create routes
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", th.List)
		r.Post("/", th.Create)
		r.Get("/analytics/{user_id}", th.Analytics)
		r.Get("/{id}", th.Get)
		r.Put("/{id}", th.Update)
		r.Delete("/{id}", th.Delete)
	})

	return r
}
