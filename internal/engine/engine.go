// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/demand"
	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/metrics"
	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/recommend"
	"github.com/tomtom215/stockcast/internal/recommend/algorithms"
)

// ErrTrainingInProgress is returned when a training run is requested while
// another one is active.
var ErrTrainingInProgress = errors.New("training already in progress")

// ErrNoDataProvider is returned by the stored-data operations when the
// engine was built without a DataProvider.
var ErrNoDataProvider = errors.New("no data provider configured")

// DataProvider supplies stored catalog, sales and transaction data.
type DataProvider interface {
	GetProduct(ctx context.Context, productID string) (recommend.Product, error)
	ListProducts(ctx context.Context) ([]recommend.Product, error)
	SalesHistory(ctx context.Context, productID string) ([]forecast.TimeSeriesPoint, error)
	AllSalesHistories(ctx context.Context) (map[string][]forecast.TimeSeriesPoint, error)
	ListTransactions(ctx context.Context) ([]recommend.Transaction, error)
}

// FactorSource supplies external demand indicators for a product and day.
type FactorSource interface {
	Factors(ctx context.Context, productID string, date time.Time) (map[string]float64, error)
}

// Dependencies are the optional collaborators of an Engine.
type Dependencies struct {
	Calendar *forecast.HolidayCalendar
	Data     DataProvider
	Factors  FactorSource

	// ForecastRegressor and DemandRegressor override the ridge baseline.
	ForecastRegressor ml.RegressorFactory
	DemandRegressor   ml.RegressorFactory
}

// Engine runs forecasts, recommendations and demand predictions against
// atomically published model snapshots.
type Engine struct {
	config      Config
	forecaster  *forecast.Forecaster
	recommender *recommend.Recommender
	predictor   *demand.Predictor
	data        DataProvider
	factors     FactorSource
	cache       *forecastCache
	logger      zerolog.Logger

	// trainMu is held for the whole of a training run.
	trainMu  sync.Mutex
	statusMu sync.RWMutex
	training TrainingStatus

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an engine.
//
//nolint:gocritic // hugeParam: logger passed by value per zerolog convention
func New(cfg Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	forecaster, err := forecast.New(cfg.Forecast, deps.Calendar, deps.ForecastRegressor, logger)
	if err != nil {
		return nil, err
	}
	recommender, err := recommend.NewRecommender(cfg.Recommend, logger,
		algorithms.NewALS(cfg.Recommend.ALS), algorithms.NewContent(cfg.Recommend.Content))
	if err != nil {
		return nil, err
	}
	predictor, err := demand.NewPredictor(cfg.Demand, deps.DemandRegressor, logger)
	if err != nil {
		return nil, err
	}
	cache, err := newForecastCache(cfg.CacheMaxEntries, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("create forecast cache: %w", err)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	return &Engine{
		config:      cfg,
		forecaster:  forecaster,
		recommender: recommender,
		predictor:   predictor,
		data:        deps.Data,
		factors:     deps.Factors,
		cache:       cache,
		logger:      logger.With().Str("component", "engine").Logger(),
		baseCtx:     baseCtx,
		cancel:      cancel,
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// SalesForecast is a forecast together with the version of the forecaster
// snapshot that produced it.
type SalesForecast struct {
	Results      []forecast.ForecastResult
	ModelVersion uint64
}

// ForecastSales predicts horizonDays of sales following history.
func (e *Engine) ForecastSales(ctx context.Context, history []forecast.TimeSeriesPoint, horizonDays int) (fc *SalesForecast, err error) {
	start := time.Now()
	defer func() { metrics.RecordPrediction(metrics.OpForecast, time.Since(start), err) }()
	metrics.ForecastHorizonDays.Observe(float64(horizonDays))

	ctx, cancel := withTimeout(ctx, e.config.ForecastTimeout)
	defer cancel()

	key := forecastKey(history, horizonDays, e.forecaster.Snapshot().VersionOrZero())
	if cached, ok := e.cache.get(key); ok {
		return cached, nil
	}

	results, version, err := e.forecaster.ForecastWithVersion(ctx, history, horizonDays)
	if err != nil {
		return nil, ml.FromContext(err)
	}

	fc = &SalesForecast{Results: results, ModelVersion: version}
	// Keyed by the version that produced the results, which differs from the
	// lookup key when the model was trained inline.
	e.cache.set(forecastKey(history, horizonDays, version), fc)
	return fc, nil
}

// RecommendProducts ranks products for a customer. topN 0 selects the default.
func (e *Engine) RecommendProducts(ctx context.Context, customerID string, products []recommend.Product, transactions []recommend.Transaction, topN int) (result *recommend.Result, err error) {
	start := time.Now()
	defer func() { metrics.RecordPrediction(metrics.OpRecommend, time.Since(start), err) }()

	ctx, cancel := withTimeout(ctx, e.config.RecommendTimeout)
	defer cancel()

	result, err = e.recommender.Recommend(ctx, customerID, products, transactions, topN)
	if err != nil {
		return nil, ml.FromContext(err)
	}
	return result, nil
}

// PredictDemand estimates next-day demand for a product.
func (e *Engine) PredictDemand(ctx context.Context, product recommend.Product, history []forecast.TimeSeriesPoint, externalFactors map[string]float64) (prediction *demand.Prediction, err error) {
	start := time.Now()
	defer func() { metrics.RecordPrediction(metrics.OpDemand, time.Since(start), err) }()

	ctx, cancel := withTimeout(ctx, e.config.DemandTimeout)
	defer cancel()

	features, err := e.predictor.ExtractFeatures(product, history, externalFactors)
	if err != nil {
		return nil, err
	}
	prediction, err = e.predictor.Predict(ctx, product, features, history)
	if err != nil {
		return nil, ml.FromContext(err)
	}
	return prediction, nil
}

// ForecastProduct forecasts a stored product's sales.
func (e *Engine) ForecastProduct(ctx context.Context, productID string, horizonDays int) (*SalesForecast, error) {
	if e.data == nil {
		return nil, ErrNoDataProvider
	}
	history, err := e.data.SalesHistory(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load sales history: %w", err)
	}
	return e.ForecastSales(ctx, history, horizonDays)
}

// RecommendForCustomer ranks the stored catalog for a customer using all
// stored transactions.
func (e *Engine) RecommendForCustomer(ctx context.Context, customerID string, topN int) (*recommend.Result, error) {
	if e.data == nil {
		return nil, ErrNoDataProvider
	}
	products, err := e.data.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	transactions, err := e.data.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return e.RecommendProducts(ctx, customerID, products, transactions, topN)
}

// PredictProductDemand predicts demand for a stored product, pulling external
// factors from the configured source. An unavailable source degrades to no
// factors, which the predictor reports as warnings.
func (e *Engine) PredictProductDemand(ctx context.Context, productID string) (*demand.Prediction, error) {
	if e.data == nil {
		return nil, ErrNoDataProvider
	}
	product, err := e.data.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	history, err := e.data.SalesHistory(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load sales history: %w", err)
	}

	target := forecast.Day(time.Now())
	if n := len(history); n > 0 {
		target = forecast.Day(history[n-1].Date).AddDate(0, 0, 1)
	}

	var external map[string]float64
	if e.factors != nil {
		external, err = e.factors.Factors(ctx, productID, target)
		if err != nil {
			e.logger.Warn().Err(err).Str("product_id", productID).Msg("External factors unavailable, using defaults")
			external = nil
		}
	}

	return e.PredictDemand(ctx, product, history, external)
}

// InvalidateForecasts drops every cached forecast.
func (e *Engine) InvalidateForecasts() {
	e.cache.clear()
}

// Close cancels any background training run and releases the cache.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
	e.cache.close()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
