// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

// Package models defines the JSON shapes exchanged over the HTTP API: the
// response envelope shared by every endpoint and the per-endpoint payloads
// that wrap the forecasting, recommendation and demand results.
package models
