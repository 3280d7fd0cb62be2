// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

/*
Package main is the entry point for the Stockcast server.

Stockcast forecasts daily retail sales, recommends products to customers and
predicts per-product demand. Writes arrive over the HTTP API as events, are
persisted to an embedded BadgerDB store, and periodically feed model training.

# Application Architecture

Services run under a Suture v4 supervisor tree:

	RootSupervisor ("stockcast")
	├── DataSupervisor ("data-layer")
	│   └── Event ingestor (watermill router: products, sales, transactions)
	├── TrainingSupervisor ("training-layer")
	│   └── Training service (interval retraining, optional startup run)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Holiday calendar: optional YAML file plus configured dates
 4. Store: BadgerDB (on disk or in memory)
 5. Factor feed: optional HTTP client with rate limiting and a circuit breaker
 6. Engine: forecaster, recommender and demand predictor
 7. Event bus: in-process watermill GoChannel with publisher and ingestor
 8. HTTP server: chi router with CORS, rate limiting and Prometheus metrics

# Configuration

Every setting can be overridden with an environment variable, for example:

	HTTP_PORT=8080
	LOG_LEVEL=debug
	STORE_PATH=/data/stockcast
	TRAINING_INTERVAL=6h
	FEED_ENABLED=true
	FEED_BASE_URL=https://factors.example.com

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests for up to SHUTDOWN_TIMEOUT, the ingestor finishes its current
messages, and the engine, bus and store are closed in that order.
*/
package main
