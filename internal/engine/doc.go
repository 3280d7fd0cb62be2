// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

/*
Package engine is the single entry point to the prediction core.

It owns one forecaster, one hybrid recommender and one demand predictor and
exposes them as three operations:

  - ForecastSales: multi-day sales forecast with confidence scores
  - RecommendProducts: hybrid collaborative and content-based ranking
  - PredictDemand: next-day demand with a factor breakdown

Every operation runs under the configured per-operation timeout layered on
top of the caller's context. A deadline surfaces as ml.ErrTimeout and leaves
no partially published state behind.

# Stored Data

When a DataProvider is configured the engine can also answer by ID
(ForecastProduct, RecommendForCustomer, PredictProductDemand) and retrain
every model from the stored histories with Train or StartTraining. Only one
training run is active at a time; a second request gets ErrTrainingInProgress.

# Caching

Forecasts are cached in a ristretto cache keyed by a fingerprint of the input
history, the horizon and the version of the published forecast model, so a
retrain naturally retires every stale entry.
*/
package engine
