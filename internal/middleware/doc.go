// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

/*
Package middleware provides HTTP middleware for the Stockcast API.

Key Components:

  - RequestID: request and correlation IDs for log tracing
  - PrometheusMetrics: request counts, durations and in-flight gauge, labelled
    by chi route pattern so path parameters do not explode cardinality
  - BodyLimit: caps request bodies with http.MaxBytesReader

All middleware has the chi signature func(http.Handler) http.Handler and is
installed by internal/api:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.BodyLimit(1 << 20))

See Also:

  - internal/api: handlers and router
  - internal/metrics: Prometheus metric definitions
*/
package middleware
