// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/stockcast/internal/config"
	"github.com/tomtom215/stockcast/internal/middleware"
)

// NewRouter configures all HTTP routes.
func NewRouter(h *Handler, cfg config.ServerConfig) http.Handler {
	mw := NewChiMiddlewareFromServer(cfg.CORSOrigins, cfg.RateLimitReqs, cfg.RateLimitWindow, cfg.RateLimitDisabled)

	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// Health and metrics are not rate limited so probes and scrapes never fail.
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

		r.Post("/forecast", h.Forecast)
		r.Post("/recommendations", h.Recommend)
		r.Post("/demand", h.Demand)

		r.Post("/products", h.CreateProduct)
		r.Get("/products/{productID}/forecast", h.ProductForecast)
		r.Get("/products/{productID}/demand", h.ProductDemand)
		r.Get("/customers/{customerID}/recommendations", h.CustomerRecommendations)

		r.Post("/sales", h.RecordSale)
		r.Post("/transactions", h.RecordTransaction)

		r.Post("/training", h.StartTraining)
		r.Get("/training/status", h.TrainingStatus)
	})

	return r
}
