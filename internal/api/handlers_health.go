// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/stockcast/internal/models"
)

// Health status values
const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
)

// Health handles GET /health. It always answers 200; the status is
// "degraded" when a dependency check fails or a model has not been trained
// yet, which is normal right after a cold start.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	checks, ok := h.runChecks()
	status := h.engine.Status()
	checks["forecast_model"] = status.Forecast.Published
	checks["demand_model"] = status.Demand.Published

	health := HealthHealthy
	if !ok || !status.Forecast.Published || !status.Demand.Published {
		health = HealthDegraded
	}

	respondSuccess(w, r, http.StatusOK, &models.HealthResponse{
		Status:    health,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Seconds(),
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}, start)
}

// HealthLive handles GET /health/live for liveness probes.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// HealthReady handles GET /health/ready for readiness probes. It answers 503
// while any dependency check fails. Untrained models do not affect readiness
// because inline predictions report them per request.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	checks, ok := h.runChecks()
	if !ok {
		respondErrorDetails(w, r, http.StatusServiceUnavailable, &models.APIError{
			Code:    ErrCodeServiceUnavailable,
			Message: "Not ready",
			Details: map[string]interface{}{"checks": checks},
		}, nil)
		return
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": checks,
	}, start)
}

func (h *Handler) runChecks() (map[string]bool, bool) {
	results := make(map[string]bool, len(h.checks)+2)
	ok := true
	for name, check := range h.checks {
		healthy := check()
		results[name] = healthy
		ok = ok && healthy
	}
	return results, ok
}
