// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/stockcast/internal/models"
)

// Demand handles POST /api/v1/demand.
func (h *Handler) Demand(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req DemandRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prediction, err := h.engine.PredictDemand(r.Context(), req.Product.toProduct(), toPoints(req.History), req.ExternalFactors)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, &models.DemandResponse{
		ProductID:  req.Product.ID,
		Prediction: prediction,
	}, start)
}

// ProductDemand handles GET /api/v1/products/{productID}/demand. External
// factors come from the factor feed when it is enabled.
func (h *Handler) ProductDemand(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	productID := chi.URLParam(r, "productID")

	prediction, err := h.engine.PredictProductDemand(r.Context(), productID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, &models.DemandResponse{
		ProductID:  productID,
		Prediction: prediction,
	}, start)
}
