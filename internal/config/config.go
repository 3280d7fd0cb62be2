// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/stockcast/internal/demand"
	"github.com/tomtom215/stockcast/internal/engine"
	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/logging"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Forecast  ForecastConfig  `koanf:"forecast"`
	Recommend RecommendConfig `koanf:"recommend"`
	Demand    DemandConfig    `koanf:"demand"`
	Training  TrainingConfig  `koanf:"training"`
	Cache     CacheConfig     `koanf:"cache"`
	Store     StoreConfig     `koanf:"store"`
	Feed      FeedConfig      `koanf:"feed"`
	Events    EventsConfig    `koanf:"events"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port              int           `koanf:"port"`
	Host              string        `koanf:"host"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// ForecastConfig holds sales forecaster settings
type ForecastConfig struct {
	WindowLength     int           `koanf:"window_length"`
	AccuracyBaseline float64       `koanf:"accuracy_baseline"`
	RidgeLambda      float64       `koanf:"ridge_lambda"`
	MaxHorizonDays   int           `koanf:"max_horizon_days"`
	Timeout          time.Duration `koanf:"timeout"`

	// HolidayFile is an optional YAML calendar; Holidays adds YYYY-MM-DD dates.
	HolidayFile string   `koanf:"holiday_file"`
	Holidays    []string `koanf:"holidays"`
}

// RecommendConfig holds hybrid recommender settings
type RecommendConfig struct {
	CollaborativeWeight float64       `koanf:"collaborative_weight"`
	ContentWeight       float64       `koanf:"content_weight"`
	DefaultTopN         int           `koanf:"default_top_n"`
	MaxTopN             int           `koanf:"max_top_n"`
	Timeout             time.Duration `koanf:"timeout"`

	// ALS collaborative filter
	Rank       int     `koanf:"rank"`
	Lambda     float64 `koanf:"lambda"`
	Iterations int     `koanf:"iterations"`
	Workers    int     `koanf:"workers"` // 0 = GOMAXPROCS
	Seed       int64   `koanf:"seed"`

	// Content-based filter
	ContentTopK     int           `koanf:"content_top_k"`
	PriceBuckets    []float64     `koanf:"price_buckets"`
	RecencyHalfLife time.Duration `koanf:"recency_half_life"` // 0 disables decay
}

// DemandConfig holds demand predictor settings
type DemandConfig struct {
	ExternalFactors   []string           `koanf:"external_factors"`
	ImportanceWeights map[string]float64 `koanf:"importance_weights"`
	DefaultImportance float64            `koanf:"default_importance"`
	AverageWindow     int                `koanf:"average_window"`
	MinHistory        int                `koanf:"min_history"`
	ConfidenceWindow  int                `koanf:"confidence_window"`
	AccuracyBaseline  float64            `koanf:"accuracy_baseline"`
	RidgeLambda       float64            `koanf:"ridge_lambda"`
	Timeout           time.Duration      `koanf:"timeout"`
}

// TrainingConfig holds background training settings
type TrainingConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Interval  time.Duration `koanf:"interval"`
	OnStartup bool          `koanf:"on_startup"`
	Timeout   time.Duration `koanf:"timeout"`
}

// CacheConfig holds forecast cache settings. MaxEntries 0 disables the cache.
type CacheConfig struct {
	MaxEntries int64         `koanf:"max_entries"`
	TTL        time.Duration `koanf:"ttl"`
}

// StoreConfig holds badger store settings
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// FeedConfig holds external factor feed settings
type FeedConfig struct {
	Enabled            bool          `koanf:"enabled"`
	BaseURL            string        `koanf:"base_url"`
	Timeout            time.Duration `koanf:"timeout"`
	RequestsPerSecond  float64       `koanf:"requests_per_second"`
	Burst              int           `koanf:"burst"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`
}

// EventsConfig holds event ingestion settings
type EventsConfig struct {
	BufferSize           int64         `koanf:"buffer_size"`
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// LoggingSettings converts the logging section for logging.Init.
func (c *Config) LoggingSettings() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Caller: c.Logging.Caller,
	}
}

// EngineSettings converts the model sections into an engine configuration.
func (c *Config) EngineSettings() engine.Config {
	return engine.Config{
		Forecast: forecast.Config{
			WindowLength:     c.Forecast.WindowLength,
			AccuracyBaseline: c.Forecast.AccuracyBaseline,
			RidgeLambda:      c.Forecast.RidgeLambda,
			MaxHorizonDays:   c.Forecast.MaxHorizonDays,
		},
		Recommend: recommend.Config{
			Weights: recommend.Weights{
				Collaborative: c.Recommend.CollaborativeWeight,
				Content:       c.Recommend.ContentWeight,
			},
			ALS: recommend.ALSConfig{
				Rank:       c.Recommend.Rank,
				Lambda:     c.Recommend.Lambda,
				Iterations: c.Recommend.Iterations,
				Workers:    c.Recommend.Workers,
				Seed:       c.Recommend.Seed,
			},
			Content: recommend.ContentConfig{
				TopK:            c.Recommend.ContentTopK,
				PriceBuckets:    append([]float64(nil), c.Recommend.PriceBuckets...),
				RecencyHalfLife: c.Recommend.RecencyHalfLife,
			},
			DefaultTopN: c.Recommend.DefaultTopN,
			MaxTopN:     c.Recommend.MaxTopN,
		},
		Demand: demand.Config{
			ExternalFactors:   append([]string(nil), c.Demand.ExternalFactors...),
			ImportanceWeights: copyWeights(c.Demand.ImportanceWeights),
			DefaultImportance: c.Demand.DefaultImportance,
			AverageWindow:     c.Demand.AverageWindow,
			MinHistory:        c.Demand.MinHistory,
			ConfidenceWindow:  c.Demand.ConfidenceWindow,
			AccuracyBaseline:  c.Demand.AccuracyBaseline,
			RidgeLambda:       c.Demand.RidgeLambda,
		},
		ForecastTimeout:  c.Forecast.Timeout,
		RecommendTimeout: c.Recommend.Timeout,
		DemandTimeout:    c.Demand.Timeout,
		TrainingTimeout:  c.Training.Timeout,
		CacheMaxEntries:  c.Cache.MaxEntries,
		CacheTTL:         c.Cache.TTL,
	}
}

func copyWeights(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func parseDay(s string) (time.Time, error) {
	return time.Parse(forecast.DateLayout, strings.TrimSpace(s))
}
