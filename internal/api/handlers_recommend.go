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
	"github.com/tomtom215/stockcast/internal/recommend"
)

// Recommend handles POST /api/v1/recommendations.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RecommendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.engine.RecommendProducts(r.Context(), req.CustomerID, toProducts(req.Products), req.Transactions, req.TopN)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, recommendationResponse(req.CustomerID, result), start)
}

// CustomerRecommendations handles GET /api/v1/customers/{customerID}/recommendations?top_n=N.
// The stored catalog and all stored transactions are used.
func (h *Handler) CustomerRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	customerID := chi.URLParam(r, "customerID")

	topN, err := intQueryParam(r, "top_n", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), nil)
		return
	}

	result, err := h.engine.RecommendForCustomer(r.Context(), customerID, topN)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, recommendationResponse(customerID, result), start)
}

func recommendationResponse(customerID string, result *recommend.Result) *models.RecommendationResponse {
	candidates := result.Candidates
	if candidates == nil {
		candidates = []recommend.Candidate{}
	}
	return &models.RecommendationResponse{
		CustomerID:      customerID,
		Recommendations: candidates,
		Warnings:        result.Warnings,
	}
}
