// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package api

import (
	"context"
	"time"

	"github.com/tomtom215/stockcast/internal/demand"
	"github.com/tomtom215/stockcast/internal/engine"
	"github.com/tomtom215/stockcast/internal/events"
	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// Engine is the prediction engine as seen by the handlers.
type Engine interface {
	ForecastSales(ctx context.Context, history []forecast.TimeSeriesPoint, horizonDays int) (*engine.SalesForecast, error)
	ForecastProduct(ctx context.Context, productID string, horizonDays int) (*engine.SalesForecast, error)
	RecommendProducts(ctx context.Context, customerID string, products []recommend.Product, transactions []recommend.Transaction, topN int) (*recommend.Result, error)
	RecommendForCustomer(ctx context.Context, customerID string, topN int) (*recommend.Result, error)
	PredictDemand(ctx context.Context, product recommend.Product, history []forecast.TimeSeriesPoint, externalFactors map[string]float64) (*demand.Prediction, error)
	PredictProductDemand(ctx context.Context, productID string) (*demand.Prediction, error)
	StartTraining() error
	Status() engine.Status
}

// EventPublisher publishes write events. Implemented by events.Publisher.
type EventPublisher interface {
	PublishProduct(ctx context.Context, product recommend.Product) (string, error)
	PublishSale(ctx context.Context, sale events.SaleRecorded) (string, error)
	PublishTransaction(ctx context.Context, txn recommend.Transaction) (string, error)
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func() bool

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: request decoding and parameter helpers
//   - handlers_forecast.go: forecast endpoints
//   - handlers_recommend.go: recommendation endpoints
//   - handlers_demand.go: demand endpoints
//   - handlers_ingest.go: product, sale and transaction writes
//   - handlers_training.go: training control
//   - handlers_health.go: health endpoints
type Handler struct {
	engine    Engine
	publisher EventPublisher
	checks    map[string]HealthCheck
	version   string
	startTime time.Time

	// defaultHorizon applies when the forecast query omits horizon.
	defaultHorizon int
}

// HandlerConfig holds optional Handler settings.
type HandlerConfig struct {
	Version        string
	DefaultHorizon int

	// Checks are reported by /health. A failing check makes /health/ready
	// answer 503.
	Checks map[string]HealthCheck
}

// NewHandler creates a new API handler.
//
// publisher may be nil, in which case the write endpoints answer 503.
//
// Example:
//
//	handler := api.NewHandler(eng, events.NewPublisher(bus, logger), api.HandlerConfig{
//	    Version: version,
//	    Checks:  map[string]api.HealthCheck{"store": db.Healthy},
//	})
//	router := api.NewRouter(handler, cfg.Server)
func NewHandler(eng Engine, publisher EventPublisher, cfg HandlerConfig) *Handler {
	if cfg.DefaultHorizon <= 0 {
		cfg.DefaultHorizon = 7
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	checks := make(map[string]HealthCheck, len(cfg.Checks))
	for name, check := range cfg.Checks {
		checks[name] = check
	}

	return &Handler{
		engine:         eng,
		publisher:      publisher,
		checks:         checks,
		version:        cfg.Version,
		startTime:      time.Now(),
		defaultHorizon: cfg.DefaultHorizon,
	}
}
