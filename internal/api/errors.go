// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/stockcast/internal/engine"
	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/models"
	"github.com/tomtom215/stockcast/internal/store"
	"github.com/tomtom215/stockcast/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeValidation         = validation.ErrorCode
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeInvalidParameter   = "INVALID_PARAMETER"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeTrainingInProgress = "TRAINING_IN_PROGRESS"
	ErrCodeInsufficientData   = "INSUFFICIENT_DATA"
	ErrCodeModelUnavailable   = "MODEL_UNAVAILABLE"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// errorMapping is the response for one class of service error.
type errorMapping struct {
	status int
	code   string
	// expose returns err.Error() to the client. Only set for errors whose
	// message describes the caller's own input.
	expose  bool
	message string
}

// classifyError maps a service error to its HTTP status and error code.
func classifyError(err error) errorMapping {
	switch {
	case errors.Is(err, ml.ErrInvalidInput):
		return errorMapping{status: http.StatusBadRequest, code: ErrCodeInvalidInput, expose: true}
	case errors.Is(err, store.ErrNotFound):
		return errorMapping{status: http.StatusNotFound, code: ErrCodeNotFound, expose: true}
	case errors.Is(err, engine.ErrTrainingInProgress):
		return errorMapping{status: http.StatusConflict, code: ErrCodeTrainingInProgress, message: "A training run is already in progress"}
	case errors.Is(err, ml.ErrInsufficientData):
		return errorMapping{status: http.StatusUnprocessableEntity, code: ErrCodeInsufficientData, expose: true}
	case errors.Is(err, ml.ErrModelUnavailable):
		return errorMapping{status: http.StatusServiceUnavailable, code: ErrCodeModelUnavailable, message: "No trained model is available yet"}
	case errors.Is(err, engine.ErrNoDataProvider):
		return errorMapping{status: http.StatusServiceUnavailable, code: ErrCodeServiceUnavailable, message: "Stored data is not available"}
	case errors.Is(err, ml.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return errorMapping{status: http.StatusGatewayTimeout, code: ErrCodeTimeout, message: "The operation timed out"}
	case errors.Is(err, context.Canceled):
		return errorMapping{status: http.StatusServiceUnavailable, code: ErrCodeServiceUnavailable, message: "The request was cancelled"}
	default:
		return errorMapping{status: http.StatusInternalServerError, code: ErrCodeInternal, message: "Internal server error"}
	}
}

// respondServiceError classifies err and sends the matching error response.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	m := classifyError(err)
	message := m.message
	if m.expose {
		message = err.Error()
	}
	respondError(w, r, m.status, m.code, message, err)
}

// respondValidationError sends a 400 with per-field details.
func respondValidationError(w http.ResponseWriter, r *http.Request, apiErr *models.APIError) {
	respondErrorDetails(w, r, http.StatusBadRequest, apiErr, nil)
}
