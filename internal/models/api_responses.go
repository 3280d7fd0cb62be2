// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package models

import (
	"time"
)

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the envelope of every API response.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"product_id": "sku-1", "forecast": [...]},
//	  "metadata": {
//	    "timestamp": "2026-03-14T12:00:00Z",
//	    "query_time_ms": 12
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {
//	    "code": "INSUFFICIENT_DATA",
//	    "message": "history has 12 points, need more than 30"
//	  },
//	  "metadata": {"timestamp": "2026-03-14T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes how the response was produced.
//
// QueryTimeMS is the handler's processing time.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
//
// Codes:
//   - VALIDATION_ERROR, INVALID_JSON, INVALID_INPUT: malformed input (400)
//   - NOT_FOUND: unknown product (404)
//   - TRAINING_IN_PROGRESS: a training run is already active (409)
//   - INSUFFICIENT_DATA: history too short for the model window (422)
//   - MODEL_UNAVAILABLE, SERVICE_UNAVAILABLE: no model or dependency down (503)
//   - PAYLOAD_TOO_LARGE: request body over the configured limit (413)
//   - TIMEOUT: the operation exceeded its deadline (504)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
