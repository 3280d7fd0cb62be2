// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/stockcast/internal/events"
	"github.com/tomtom215/stockcast/internal/logging"
	"github.com/tomtom215/stockcast/internal/models"
)

// CreateProduct handles POST /api/v1/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	h.ingest(w, r, &req, events.TopicProductsUpserted, func(ctx context.Context) (string, error) {
		return h.publisher.PublishProduct(ctx, req.toProduct())
	})
}

// RecordSale handles POST /api/v1/sales.
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	h.ingest(w, r, &req, events.TopicSalesRecorded, func(ctx context.Context) (string, error) {
		return h.publisher.PublishSale(ctx, req.toEvent())
	})
}

// RecordTransaction handles POST /api/v1/transactions.
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	h.ingest(w, r, &req, events.TopicTransactionsRecorded, func(ctx context.Context) (string, error) {
		return h.publisher.PublishTransaction(ctx, req.toTransaction(time.Now()))
	})
}

// ingest decodes req, publishes it and answers 202 with the event ID. The
// write is applied asynchronously by the event ingestor.
func (h *Handler) ingest(w http.ResponseWriter, r *http.Request, req interface{}, topic string, publish func(context.Context) (string, error)) {
	start := time.Now()

	if h.publisher == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Event ingestion is not enabled", nil)
		return
	}
	if !decodeJSON(w, r, req) {
		return
	}

	eventID, err := publish(r.Context())
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Failed to publish event", err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("topic", topic).
		Str("event_id", eventID).
		Msg("Write accepted")

	respondSuccess(w, r, http.StatusAccepted, &models.AcceptedResponse{
		EventID: eventID,
		Topic:   topic,
	}, start)
}
