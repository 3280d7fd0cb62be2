// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

// Package ml holds the numerical building blocks shared by the forecasting
// and demand prediction packages.
//
// It provides:
//   - Batch standardization with per-call scaler parameters (Standardize)
//   - Summary statistics and the confidence formula (Mean, StdDev, Confidence)
//   - The trainable regressor capability (Regressor) and a ridge baseline
//   - Immutable, atomically published model snapshots (Slot)
//   - The error taxonomy used by every prediction path
//
// # Scaler Parameters
//
// Standardize never stores state. Every call returns a Standardized value
// holding the transformed batch and the ScalerParams that produced it. The
// inverse transforms only accept params that came out of that same call:
//
//	scaled, err := ml.Standardize(window)
//	...
//	sales, err := ml.InverseStandardizeColumn(pred, scaled, scaled.Params, 0)
//
// # Snapshots
//
// Trained regressors are published through a Slot. Readers load the current
// snapshot without locking and keep using it for the whole request even if a
// newer version is published meanwhile.
package ml
