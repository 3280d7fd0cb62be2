// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/stockcast/internal/ml"
)

// Operation labels.
const (
	OpForecast  = "forecast"
	OpRecommend = "recommend"
	OpDemand    = "demand"
)

var (
	// Prediction Metrics
	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockcast_prediction_duration_seconds",
			Help:    "Duration of forecast, recommend and demand operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_predictions_total",
			Help: "Total number of prediction operations by outcome",
		},
		[]string{"operation", "result"}, // result: success, invalid_input, insufficient_data, timeout, unavailable, error
	)

	ForecastHorizonDays = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockcast_forecast_horizon_days",
			Help:    "Requested forecast horizon in days",
			Buckets: []float64{1, 7, 14, 30, 60, 90, 180, 365},
		},
	)

	// Training Metrics
	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockcast_training_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"model"},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_training_runs_total",
			Help: "Total number of training runs by outcome",
		},
		[]string{"model", "result"},
	)

	ModelVersion = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stockcast_model_version",
			Help: "Version of the currently published model snapshot",
		},
		[]string{"model"},
	)

	ModelTrainingSamples = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stockcast_model_training_samples",
			Help: "Number of samples the current model snapshot was fitted on",
		},
		[]string{"model"},
	)

	// Forecast Cache Metrics
	ForecastCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stockcast_forecast_cache_hits_total",
			Help: "Total number of forecast cache hits",
		},
	)

	ForecastCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stockcast_forecast_cache_misses_total",
			Help: "Total number of forecast cache misses",
		},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockcast_store_operation_duration_seconds",
			Help:    "Duration of badger store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_store_errors_total",
			Help: "Total number of store operation errors",
		},
		[]string{"operation"},
	)

	// Event Ingestion Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_events_published_total",
			Help: "Total number of events published",
		},
		[]string{"topic"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_events_processed_total",
			Help: "Total number of events consumed by outcome",
		},
		[]string{"topic", "result"}, // result: success, invalid, failed
	)

	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockcast_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stockcast_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// External Factor Feed Metrics
	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_feed_requests_total",
			Help: "Total number of external factor feed requests",
		},
		[]string{"result"}, // success, failure, rejected, rate_limited
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// ResultLabel maps an error to a bounded result label.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ml.ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, ml.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ml.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ml.ErrModelUnavailable):
		return "unavailable"
	case errors.Is(err, ml.ErrScaling):
		return "scaling"
	default:
		return "error"
	}
}

// RecordPrediction records one prediction operation.
func RecordPrediction(operation string, duration time.Duration, err error) {
	PredictionDuration.WithLabelValues(operation).Observe(duration.Seconds())
	PredictionsTotal.WithLabelValues(operation, ResultLabel(err)).Inc()
}

// RecordTraining records one training run and, on success, the published model.
func RecordTraining(model string, duration time.Duration, version uint64, samples int, err error) {
	TrainingDuration.WithLabelValues(model).Observe(duration.Seconds())
	TrainingRuns.WithLabelValues(model, ResultLabel(err)).Inc()
	if err == nil {
		ModelVersion.WithLabelValues(model).Set(float64(version))
		ModelTrainingSamples.WithLabelValues(model).Set(float64(samples))
	}
}

// RecordStoreOperation records a store operation.
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}
