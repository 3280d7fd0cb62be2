// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

/*
Package api provides the HTTP REST API for Stockcast.

The API exposes the forecasting, recommendation and demand prediction engine
over JSON, accepts catalog, sales and transaction writes as events, and
controls model training.

Endpoints:

Predictions (inline data):

  - POST /api/v1/forecast: forecast from a caller-supplied history
  - POST /api/v1/recommendations: rank caller-supplied products for a customer
  - POST /api/v1/demand: predict next-day demand for a caller-supplied product

Predictions (stored data):

  - GET /api/v1/products/{productID}/forecast?horizon=7
  - GET /api/v1/customers/{customerID}/recommendations?top_n=10
  - GET /api/v1/products/{productID}/demand

Writes (published as events, applied by the ingestor, answered with 202):

  - POST /api/v1/products
  - POST /api/v1/sales
  - POST /api/v1/transactions

Training:

  - POST /api/v1/training: start a background run (202, 409 if one is active)
  - GET /api/v1/training/status

Operations:

  - GET /health, /health/live, /health/ready
  - GET /metrics (Prometheus)

Response Format:

Every JSON response uses the models.APIResponse envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "...", "query_time_ms": 3, "request_id": "..."}
	}

Errors carry a machine-readable code:

	{
	  "status": "error",
	  "data": null,
	  "error": {"code": "INSUFFICIENT_DATA", "message": "..."},
	  "metadata": {"timestamp": "..."}
	}

Error mapping:

  - validation failures, malformed JSON, invalid input: 400
  - unknown product: 404
  - request body over the limit: 413
  - training already running: 409
  - history too short: 422
  - no trained model, no data provider: 503
  - deadline exceeded: 504

Middleware Stack (applied in order):

 1. RequestID: request and correlation IDs in context and headers
 2. RealIP and Recoverer (chi)
 3. CORS (go-chi/cors)
 4. Rate limiting by IP (go-chi/httprate) on /api/v1
 5. Body limit and Prometheus metrics on /api/v1

Thread Safety:

Handler is safe for concurrent use. All mutable state lives in the engine,
which publishes model snapshots atomically.
*/
package api
