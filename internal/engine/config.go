// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package engine

import (
	"fmt"
	"time"

	"github.com/tomtom215/stockcast/internal/demand"
	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// Config holds engine settings.
type Config struct {
	Forecast  forecast.Config
	Recommend recommend.Config
	Demand    demand.Config

	// Per-operation timeouts. Zero disables the timeout for that operation.
	ForecastTimeout  time.Duration
	RecommendTimeout time.Duration
	DemandTimeout    time.Duration
	TrainingTimeout  time.Duration

	// CacheMaxEntries bounds the forecast cache. Zero disables caching.
	CacheMaxEntries int64
	CacheTTL        time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Forecast:         forecast.DefaultConfig(),
		Recommend:        recommend.DefaultConfig(),
		Demand:           demand.DefaultConfig(),
		ForecastTimeout:  10 * time.Second,
		RecommendTimeout: 10 * time.Second,
		DemandTimeout:    5 * time.Second,
		TrainingTimeout:  30 * time.Minute,
		CacheMaxEntries:  10000,
		CacheTTL:         15 * time.Minute,
	}
}

// Validate checks the engine-level settings. Component configs are validated
// by their constructors.
func (c *Config) Validate() error {
	if c.ForecastTimeout < 0 || c.RecommendTimeout < 0 || c.DemandTimeout < 0 || c.TrainingTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache_max_entries must not be negative, got %d", c.CacheMaxEntries)
	}
	if c.CacheMaxEntries > 0 && c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive when the cache is enabled")
	}
	return nil
}
