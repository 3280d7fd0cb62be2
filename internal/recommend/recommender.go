// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/stockcast/internal/ml"
)

// Recommender fuses a collaborative and a content-based scorer.
type Recommender struct {
	config        Config
	logger        zerolog.Logger
	collaborative Scorer
	content       Scorer

	// now is overridable in tests.
	now func() time.Time
}

// NewRecommender creates a recommender from two scorers.
//
//nolint:gocritic // hugeParam: logger passed by value per zerolog convention
func NewRecommender(cfg Config, logger zerolog.Logger, collaborative, content Scorer) (*Recommender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	if collaborative == nil || content == nil {
		return nil, fmt.Errorf("both collaborative and content scorers are required")
	}

	r := &Recommender{
		config:        cfg.Clone(),
		logger:        logger.With().Str("component", "recommend").Logger(),
		collaborative: collaborative,
		content:       content,
		now:           time.Now,
	}

	r.logger.Info().
		Str("collaborative", collaborative.Name()).
		Str("content", content.Name()).
		Float64("collaborative_weight", cfg.Weights.Collaborative).
		Float64("content_weight", cfg.Weights.Content).
		Msg("recommender initialized")

	return r, nil
}

// Config returns a copy of the active configuration.
func (r *Recommender) Config() Config {
	return r.config.Clone()
}

// Recommend ranks catalog products for a customer from their transactions
// and everyone else's. topN 0 selects the configured default.
func (r *Recommender) Recommend(ctx context.Context, customerID string, products []Product, transactions []Transaction, topN int) (*Result, error) {
	start := time.Now()

	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", ml.ErrInvalidInput)
	}
	if topN == 0 {
		topN = r.config.DefaultTopN
	}
	if topN < 0 || topN > r.config.MaxTopN {
		return nil, fmt.Errorf("%w: top_n must be in [1, %d], got %d", ml.ErrInvalidInput, r.config.MaxTopN, topN)
	}

	catalog, err := indexCatalog(products)
	if err != nil {
		return nil, err
	}

	matrix, warnings := BuildMatrix(transactions)
	logger := r.logger.With().Str("customer_id", customerID).Logger()
	if len(warnings) > 0 {
		logger.Warn().
			Int("skipped", len(warnings)).
			Str("first_reason", warnings[0].Reason).
			Msg("skipped malformed transactions")
	}

	req := &ScoreRequest{
		CustomerID:   customerID,
		Matrix:       matrix,
		Catalog:      catalog,
		Products:     products,
		Transactions: transactions,
		Now:          r.now(),
	}

	var collab, content []Candidate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		collab, err = r.collaborative.Score(gctx, req)
		if err != nil {
			return fmt.Errorf("%s scoring: %w", r.collaborative.Name(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		content, err = r.content.Score(gctx, req)
		if err != nil {
			return fmt.Errorf("%s scoring: %w", r.content.Name(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, ml.FromContext(err)
	}
	if err := ml.CheckContext(ctx); err != nil {
		return nil, err
	}

	collab = hydrate(collab, catalog)
	fused := Fuse(collab, content, r.config.Weights, topN)

	logger.Debug().
		Int("transactions", len(transactions)).
		Int("observed", matrix.NonZero()).
		Int("collaborative", len(collab)).
		Int("content", len(content)).
		Int("returned", len(fused)).
		Dur("latency", time.Since(start)).
		Msg("recommendation complete")

	return &Result{
		Candidates:         fused,
		Warnings:           warnings,
		CollaborativeCount: len(collab),
		ContentCount:       len(content),
	}, nil
}

// indexCatalog maps product IDs to products. Duplicate IDs keep the first entry.
func indexCatalog(products []Product) (map[string]Product, error) {
	catalog := make(map[string]Product, len(products))
	for i := range products {
		p := products[i]
		if p.ID == "" {
			return nil, fmt.Errorf("%w: product %d has no id", ml.ErrInvalidInput, i)
		}
		if _, dup := catalog[p.ID]; !dup {
			catalog[p.ID] = p
		}
	}
	return catalog, nil
}

// hydrate replaces ID-only products with catalog entries and drops products
// that are not in the catalog.
func hydrate(list []Candidate, catalog map[string]Product) []Candidate {
	out := list[:0:0]
	for _, c := range list {
		p, ok := catalog[c.Product.ID]
		if !ok {
			continue
		}
		out = append(out, Candidate{Product: p, Score: c.Score})
	}
	return out
}
