// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

// Package recommend implements the hybrid product recommender.
//
// # Architecture
//
// Two scorers run side by side for every request:
//
//   - Collaborative: alternating least squares over the customer/product
//     interaction matrix (algorithms.ALS)
//   - Content-based: cosine similarity between a customer's preference
//     vector and each product's category, price bucket and tags
//     (algorithms.Content)
//
// Their candidate lists are fused with fixed weights (0.6 collaborative,
// 0.4 content by default). A product that appears in only one list keeps
// only that list's weighted score; weights are never renormalized.
//
// # Determinism
//
// The same inputs always produce the same output: matrix indices are built
// from sorted identifiers, factor initialization uses a fixed seed, and every
// ranking breaks score ties by product ID ascending.
//
// # Usage
//
//	rec, err := recommend.NewRecommender(cfg, logger,
//	    algorithms.NewALS(cfg.ALS),
//	    algorithms.NewContent(cfg.Content))
//
//	result, err := rec.Recommend(ctx, "C-1001", products, transactions, 10)
//
// # Thread Safety
//
// A Recommender holds no per-request state and is safe for concurrent use.
package recommend
