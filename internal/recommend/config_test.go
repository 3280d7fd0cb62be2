// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package recommend

import "testing"

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.Weights.Collaborative != 0.6 || cfg.Weights.Content != 0.4 {
		t.Errorf("default weights = %+v, want 0.6/0.4", cfg.Weights)
	}
	if cfg.DefaultTopN != 10 {
		t.Errorf("DefaultTopN = %d, want 10", cfg.DefaultTopN)
	}
	if cfg.Content.TopK != 10 {
		t.Errorf("Content.TopK = %d, want 10", cfg.Content.TopK)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative weight", func(c *Config) { c.Weights.Content = -0.1 }},
		{"both weights zero", func(c *Config) { c.Weights = Weights{} }},
		{"zero rank", func(c *Config) { c.ALS.Rank = 0 }},
		{"zero lambda", func(c *Config) { c.ALS.Lambda = 0 }},
		{"zero iterations", func(c *Config) { c.ALS.Iterations = 0 }},
		{"negative workers", func(c *Config) { c.ALS.Workers = -1 }},
		{"zero top k", func(c *Config) { c.Content.TopK = 0 }},
		{"unsorted buckets", func(c *Config) { c.Content.PriceBuckets = []float64{50, 10} }},
		{"negative half-life", func(c *Config) { c.Content.RecencyHalfLife = -1 }},
		{"zero default top n", func(c *Config) { c.DefaultTopN = 0 }},
		{"max below default", func(c *Config) { c.MaxTopN = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() succeeded, want error")
			}
		})
	}
}

func TestConfig_CloneIsDeep(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Content.PriceBuckets[0] = 999

	if cfg.Content.PriceBuckets[0] == 999 {
		t.Error("Clone() shares the price bucket slice")
	}
}
