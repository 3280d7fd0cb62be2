// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

// Package algorithms implements the scorers used by the hybrid recommender.
//
// Both scorers implement recommend.Scorer:
//
//   - ALS: explicit alternating least squares over observed
//     customer/product quantities. Unobserved entries carry no loss.
//   - Content: cosine similarity between one-hot/multi-hot product features
//     (category, price bucket, tags) and a frequency-weighted, optionally
//     recency-decayed customer preference vector.
//
// Scorers are stateless between requests: each call builds what it needs
// from the request, so concurrent calls never share mutable state.
package algorithms
