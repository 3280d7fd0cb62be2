// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package algorithms

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// Content scores products by how closely their attributes match what the
// customer has bought before.
//
// Each product is encoded as
//
//	[ one-hot category | one-hot price bucket | multi-hot tags ]
//
// and the customer's preference vector is the sum of the vectors of their
// purchases, one term per purchase, optionally decayed by age.
type Content struct {
	config recommend.ContentConfig
}

// NewContent creates a content-based scorer.
func NewContent(cfg recommend.ContentConfig) *Content {
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	return &Content{config: cfg}
}

// Name returns the scorer identifier.
func (c *Content) Name() string {
	return "content"
}

// Score ranks unseen catalog products by cosine similarity to the
// customer's preference vector.
func (c *Content) Score(ctx context.Context, req *recommend.ScoreRequest) ([]recommend.Candidate, error) {
	space := NewFeatureSpace(req.Products, c.config.PriceBuckets)

	pref := c.PreferenceVector(req.CustomerID, req.Transactions, req.Catalog, space, req.Now)
	if pref == nil {
		return nil, nil
	}
	if ContextCancelled(ctx) {
		return nil, ml.FromContext(ctx.Err())
	}

	exclude := make(map[string]struct{}, len(req.Matrix[req.CustomerID]))
	for pid := range req.Matrix[req.CustomerID] {
		exclude[pid] = struct{}{}
	}
	return ScoreProducts(req.Products, space, pref, exclude, c.config.TopK), nil
}

// PreferenceVector aggregates the feature vectors of the customer's purchases.
// It returns nil when the customer has no usable purchase.
func (c *Content) PreferenceVector(customerID string, transactions []recommend.Transaction, catalog map[string]recommend.Product, space *FeatureSpace, now time.Time) []float64 {
	var pref []float64

	for _, t := range transactions {
		if t.CustomerID != customerID || t.Quantity <= 0 {
			continue
		}
		p, ok := catalog[t.ProductID]
		if !ok {
			continue
		}

		weight := c.decay(t.Timestamp, now)
		if weight == 0 {
			continue
		}
		if pref == nil {
			pref = make([]float64, space.Dim())
		}
		for i, v := range space.Vector(p) {
			pref[i] += weight * v
		}
	}

	return pref
}

// decay returns 0.5^(age/halfLife), or 1 when decay is disabled or the
// purchase time is unknown.
func (c *Content) decay(ts, now time.Time) float64 {
	halfLife := c.config.RecencyHalfLife
	if halfLife <= 0 || ts.IsZero() {
		return 1
	}
	age := now.Sub(ts)
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(age)/float64(halfLife))
}

// ScoreProducts returns the top k products by cosine similarity to pref,
// skipping excluded products and non-positive scores.
func ScoreProducts(products []recommend.Product, space *FeatureSpace, pref []float64, exclude map[string]struct{}, k int) []recommend.Candidate {
	seen := make(map[string]struct{}, len(products))
	out := make([]recommend.Candidate, 0, len(products))

	for i := range products {
		p := products[i]
		if _, skip := exclude[p.ID]; skip {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}

		score := ml.CosineSimilarity(space.Vector(p), pref)
		if score > 0 {
			out = append(out, recommend.Candidate{Product: p, Score: score})
		}
	}

	recommend.SortCandidates(out)
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// FeatureSpace fixes the layout of product feature vectors for a catalog.
type FeatureSpace struct {
	categories map[string]int
	tags       map[string]int
	buckets    []float64

	tagOffset int
	dim       int
}

// NewFeatureSpace builds sorted category and tag vocabularies from products.
func NewFeatureSpace(products []recommend.Product, priceBuckets []float64) *FeatureSpace {
	cats := make(map[string]struct{})
	tags := make(map[string]struct{})
	for i := range products {
		if c := normalizeToken(products[i].Category); c != "" {
			cats[c] = struct{}{}
		}
		for _, t := range products[i].Tags {
			if t = normalizeToken(t); t != "" {
				tags[t] = struct{}{}
			}
		}
	}

	s := &FeatureSpace{
		categories: indexSorted(cats, 0),
		buckets:    append([]float64(nil), priceBuckets...),
	}
	s.tagOffset = len(s.categories) + len(s.buckets) + 1
	s.tags = indexSorted(tags, s.tagOffset)
	s.dim = s.tagOffset + len(s.tags)
	return s
}

// Dim returns the vector length.
func (s *FeatureSpace) Dim() int {
	return s.dim
}

// Vector encodes a product. Categories and tags outside the vocabulary are ignored.
func (s *FeatureSpace) Vector(p recommend.Product) []float64 {
	v := make([]float64, s.dim)
	if idx, ok := s.categories[normalizeToken(p.Category)]; ok {
		v[idx] = 1
	}
	v[len(s.categories)+s.PriceBucket(p.Price)] = 1
	for _, t := range p.Tags {
		if idx, ok := s.tags[normalizeToken(t)]; ok {
			v[idx] = 1
		}
	}
	return v
}

// PriceBucket returns the index of the first bucket whose upper bound is >= price.
func (s *FeatureSpace) PriceBucket(price float64) int {
	return sort.SearchFloat64s(s.buckets, price)
}

func indexSorted(set map[string]struct{}, offset int) map[string]int {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		idx[k] = offset + i
	}
	return idx
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var _ recommend.Scorer = (*Content)(nil)
