// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package recommend

import (
	"fmt"
	"sort"
	"time"
)

// Config contains all configuration for the recommender.
type Config struct {
	// Weights are the fixed fusion weights. They are not normalized.
	Weights Weights `json:"weights"`

	// ALS contains parameters for the collaborative filter.
	ALS ALSConfig `json:"als"`

	// Content contains parameters for the content-based filter.
	Content ContentConfig `json:"content"`

	// DefaultTopN is used when a request does not specify topN.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN caps the requested list size.
	MaxTopN int `json:"max_top_n"`
}

// Weights are the per-source fusion weights.
type Weights struct {
	Collaborative float64 `json:"collaborative"`
	Content       float64 `json:"content"`
}

// ALSConfig contains parameters for alternating least squares.
type ALSConfig struct {
	// Rank is the number of latent factors.
	Rank int `json:"rank"`

	// Lambda is the L2 regularization strength.
	Lambda float64 `json:"lambda"`

	// Iterations is the number of alternating sweeps.
	Iterations int `json:"iterations"`

	// Workers bounds the goroutines solving rows in parallel. 0 means GOMAXPROCS.
	Workers int `json:"workers"`

	// Seed drives the deterministic factor initialization.
	Seed int64 `json:"seed"`
}

// ContentConfig contains parameters for content-based filtering.
type ContentConfig struct {
	// TopK is the number of content candidates returned.
	TopK int `json:"top_k"`

	// PriceBuckets are ascending upper bounds; a price above the last bound
	// falls in a final open bucket.
	PriceBuckets []float64 `json:"price_buckets"`

	// RecencyHalfLife decays older purchases. 0 disables decay.
	RecencyHalfLife time.Duration `json:"recency_half_life"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Collaborative: 0.6,
			Content:       0.4,
		},
		ALS: ALSConfig{
			Rank:       16,
			Lambda:     0.1,
			Iterations: 15,
			Seed:       42,
		},
		Content: ContentConfig{
			TopK:         10,
			PriceBuckets: []float64{10, 25, 50, 100, 250},
		},
		DefaultTopN: 10,
		MaxTopN:     100,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Weights.Collaborative < 0 || c.Weights.Content < 0 {
		return fmt.Errorf("weights must be non-negative, got collaborative=%f content=%f",
			c.Weights.Collaborative, c.Weights.Content)
	}
	if c.Weights.Collaborative == 0 && c.Weights.Content == 0 {
		return fmt.Errorf("at least one fusion weight must be positive")
	}
	if c.ALS.Rank <= 0 {
		return fmt.Errorf("als.rank must be positive, got %d", c.ALS.Rank)
	}
	if c.ALS.Lambda <= 0 {
		return fmt.Errorf("als.lambda must be positive, got %f", c.ALS.Lambda)
	}
	if c.ALS.Iterations <= 0 {
		return fmt.Errorf("als.iterations must be positive, got %d", c.ALS.Iterations)
	}
	if c.ALS.Workers < 0 {
		return fmt.Errorf("als.workers must be non-negative, got %d", c.ALS.Workers)
	}
	if c.Content.TopK <= 0 {
		return fmt.Errorf("content.top_k must be positive, got %d", c.Content.TopK)
	}
	if !sort.Float64sAreSorted(c.Content.PriceBuckets) {
		return fmt.Errorf("content.price_buckets must be ascending")
	}
	if c.Content.RecencyHalfLife < 0 {
		return fmt.Errorf("content.recency_half_life must be non-negative")
	}
	if c.DefaultTopN <= 0 {
		return fmt.Errorf("default_top_n must be positive, got %d", c.DefaultTopN)
	}
	if c.MaxTopN < c.DefaultTopN {
		return fmt.Errorf("max_top_n (%d) must be >= default_top_n (%d)", c.MaxTopN, c.DefaultTopN)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() Config {
	clone := *c
	clone.Content.PriceBuckets = append([]float64(nil), c.Content.PriceBuckets...)
	return clone
}
