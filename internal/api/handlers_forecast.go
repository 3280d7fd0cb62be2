// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/stockcast/internal/logging"
	"github.com/tomtom215/stockcast/internal/models"
)

// Forecast handles POST /api/v1/forecast.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ForecastRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fc, err := h.engine.ForecastSales(r.Context(), toPoints(req.History), req.HorizonDays)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, &models.ForecastResponse{
		HorizonDays:  req.HorizonDays,
		ModelVersion: fc.ModelVersion,
		Forecast:     fc.Results,
	}, start)
}

// ProductForecast handles GET /api/v1/products/{productID}/forecast?horizon=N.
func (h *Handler) ProductForecast(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	productID := chi.URLParam(r, "productID")

	horizon, err := intQueryParam(r, "horizon", h.defaultHorizon)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), nil)
		return
	}

	fc, err := h.engine.ForecastProduct(r.Context(), productID, horizon)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("product_id", productID).
		Int("horizon_days", horizon).
		Msg("Product forecast served")

	respondSuccess(w, r, http.StatusOK, &models.ForecastResponse{
		ProductID:    productID,
		HorizonDays:  horizon,
		ModelVersion: fc.ModelVersion,
		Forecast:     fc.Results,
	}, start)
}
