// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package recommend

import (
	"context"
	"sort"
	"time"
)

// Product is a catalog entry.
type Product struct {
	// ID is the unique product identifier (SKU).
	ID string `json:"id" validate:"required,max=128"`

	// Name is the display name.
	Name string `json:"name,omitempty" validate:"max=256"`

	// Category is the primary merchandising category.
	Category string `json:"category,omitempty" validate:"max=128"`

	// Price is the current unit price.
	Price float64 `json:"price" validate:"gte=0"`

	// Tags are free-form descriptive labels.
	Tags []string `json:"tags,omitempty" validate:"max=64,dive,max=64"`

	// OnPromotion marks a product with an active promotion.
	OnPromotion bool `json:"on_promotion"`
}

// Transaction is one purchase line.
type Transaction struct {
	// CustomerID identifies the buyer.
	CustomerID string `json:"customer_id"`

	// ProductID identifies the purchased product.
	ProductID string `json:"product_id"`

	// Quantity is the number of units bought.
	Quantity float64 `json:"quantity"`

	// Timestamp is when the purchase happened. Optional; used for recency decay.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Candidate is a scored recommendation.
type Candidate struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}

// Warning records an input row that was skipped.
type Warning struct {
	// Index is the position of the offending transaction.
	Index int `json:"index"`

	// Reason describes why it was skipped.
	Reason string `json:"reason"`
}

// ScoreRequest carries everything a scorer needs for one customer.
type ScoreRequest struct {
	CustomerID   string
	Matrix       InteractionMatrix
	Catalog      map[string]Product
	Products     []Product
	Transactions []Transaction
	Now          time.Time
}

// Scorer produces a ranked candidate list for one customer. Implementations
// must exclude products the customer already purchased and return candidates
// sorted with SortCandidates.
type Scorer interface {
	// Name returns a short identifier for logs and metrics.
	Name() string

	// Score ranks products for req.CustomerID.
	Score(ctx context.Context, req *ScoreRequest) ([]Candidate, error)
}

// Result is the output of Recommender.Recommend.
type Result struct {
	Candidates []Candidate `json:"candidates"`
	Warnings   []Warning   `json:"warnings,omitempty"`

	// CollaborativeCount and ContentCount are the sizes of the lists that
	// were fused.
	CollaborativeCount int `json:"collaborative_count"`
	ContentCount       int `json:"content_count"`
}

// SortCandidates orders by score descending, then product ID ascending.
func SortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		return c[i].Product.ID < c[j].Product.ID
	})
}
