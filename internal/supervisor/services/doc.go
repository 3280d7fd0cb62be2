// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

/*
Package services provides suture.Service wrappers for Stockcast components.

Each wrapper implements suture's Serve(ctx) error and fmt.Stringer:

HTTPServerService:
  - Runs *http.Server.ListenAndServe until the context is cancelled
  - Shuts the server down gracefully within a configurable timeout

TrainingService:
  - Optionally trains once on startup
  - Retrains the forecaster and demand predictor on a ticker
  - Logs failures and tries again on the next tick; a run that is already
    in progress (for example one started through the API) is skipped

The event ingestor implements suture.Service itself and needs no wrapper.
*/
package services
