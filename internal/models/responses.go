// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package models

import (
	"time"

	"github.com/tomtom215/stockcast/internal/demand"
	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// ForecastResponse is the payload of the forecast endpoints.
type ForecastResponse struct {
	ProductID    string                    `json:"product_id,omitempty"`
	HorizonDays  int                       `json:"horizon_days"`
	ModelVersion uint64                    `json:"model_version"`
	Forecast     []forecast.ForecastResult `json:"forecast"`
}

// RecommendationResponse is the payload of the recommendation endpoints.
type RecommendationResponse struct {
	CustomerID      string                `json:"customer_id"`
	Recommendations []recommend.Candidate `json:"recommendations"`
	Warnings        []recommend.Warning   `json:"warnings,omitempty"`
}

// DemandResponse is the payload of the demand endpoints.
type DemandResponse struct {
	ProductID string `json:"product_id"`
	*demand.Prediction
}

// AcceptedResponse acknowledges a write that is applied asynchronously.
type AcceptedResponse struct {
	EventID string `json:"event_id"`
	Topic   string `json:"topic"`
}

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Uptime    float64         `json:"uptime_seconds"`
	Timestamp time.Time       `json:"timestamp"`
	Checks    map[string]bool `json:"checks"`
}
