// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

/*
Package metrics provides Prometheus metrics for Stockcast.

All collectors are registered with the default registry through promauto and
exported at /metrics by the API router.

# Overview

The package provides metrics for:
  - Forecast, recommendation and demand latency and outcomes
  - Training runs and the version of each published model snapshot
  - Forecast cache efficiency
  - Badger store operations
  - Event ingestion throughput
  - HTTP request latency and throughput
  - External factor feed requests and circuit breaker state

Outcome labels come from ResultLabel, which maps the prediction error
taxonomy onto a small fixed set of values to keep cardinality bounded.
*/
package metrics
