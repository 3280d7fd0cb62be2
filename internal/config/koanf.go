// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/stockcast/internal/demand"
	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/stockcast/config.yaml",
	"/etc/stockcast/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults. Model defaults come from
// the model packages so the two never drift apart.
func defaultConfig() *Config {
	fc := forecast.DefaultConfig()
	rc := recommend.DefaultConfig()
	dc := demand.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			MaxBodyBytes:    10 << 20, // 10MB
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Forecast: ForecastConfig{
			WindowLength:     fc.WindowLength,
			AccuracyBaseline: fc.AccuracyBaseline,
			RidgeLambda:      fc.RidgeLambda,
			MaxHorizonDays:   fc.MaxHorizonDays,
			Timeout:          10 * time.Second,
		},
		Recommend: RecommendConfig{
			CollaborativeWeight: rc.Weights.Collaborative,
			ContentWeight:       rc.Weights.Content,
			DefaultTopN:         rc.DefaultTopN,
			MaxTopN:             rc.MaxTopN,
			Timeout:             10 * time.Second,
			Rank:                rc.ALS.Rank,
			Lambda:              rc.ALS.Lambda,
			Iterations:          rc.ALS.Iterations,
			Workers:             rc.ALS.Workers,
			Seed:                rc.ALS.Seed,
			ContentTopK:         rc.Content.TopK,
			PriceBuckets:        rc.Content.PriceBuckets,
			RecencyHalfLife:     rc.Content.RecencyHalfLife,
		},
		Demand: DemandConfig{
			ExternalFactors:   dc.ExternalFactors,
			ImportanceWeights: dc.ImportanceWeights,
			DefaultImportance: dc.DefaultImportance,
			AverageWindow:     dc.AverageWindow,
			MinHistory:        dc.MinHistory,
			ConfidenceWindow:  dc.ConfidenceWindow,
			AccuracyBaseline:  dc.AccuracyBaseline,
			RidgeLambda:       dc.RidgeLambda,
			Timeout:           5 * time.Second,
		},
		Training: TrainingConfig{
			Enabled:   true,
			Interval:  6 * time.Hour,
			OnStartup: true,
			Timeout:   30 * time.Minute,
		},
		Cache: CacheConfig{
			MaxEntries: 10000,
			TTL:        15 * time.Minute,
		},
		Store: StoreConfig{
			Path: "/data/stockcast",
		},
		Feed: FeedConfig{
			Enabled:            false, // No external indicators unless configured
			Timeout:            5 * time.Second,
			RequestsPerSecond:  10,
			Burst:              20,
			BreakerMaxFailures: 5,
			BreakerOpenTimeout: 30 * time.Second,
		},
		Events: EventsConfig{
			BufferSize:           1024,
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			CloseTimeout:         30 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first default
// path that exists, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"forecast.holidays",
	"recommend.price_buckets",
	"demand.external_factors",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the struct expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue // unset, or already a slice from YAML or defaults
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored so the process environment cannot leak
// into the configuration.
var envMappings = map[string]string{
	// Server
	"http_port":           "server.port",
	"http_host":           "server.host",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_reqs",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",
	"max_body_bytes":      "server.max_body_bytes",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Forecast
	"forecast_window":            "forecast.window_length",
	"forecast_accuracy_baseline": "forecast.accuracy_baseline",
	"forecast_ridge_lambda":      "forecast.ridge_lambda",
	"forecast_max_horizon":       "forecast.max_horizon_days",
	"forecast_timeout":           "forecast.timeout",
	"forecast_holiday_file":      "forecast.holiday_file",
	"forecast_holidays":          "forecast.holidays",

	// Recommend
	"recommend_collab_weight":     "recommend.collaborative_weight",
	"recommend_content_weight":    "recommend.content_weight",
	"recommend_default_top_n":     "recommend.default_top_n",
	"recommend_max_top_n":         "recommend.max_top_n",
	"recommend_timeout":           "recommend.timeout",
	"recommend_als_rank":          "recommend.rank",
	"recommend_als_lambda":        "recommend.lambda",
	"recommend_als_iterations":    "recommend.iterations",
	"recommend_als_workers":       "recommend.workers",
	"recommend_als_seed":          "recommend.seed",
	"recommend_content_top_k":     "recommend.content_top_k",
	"recommend_price_buckets":     "recommend.price_buckets",
	"recommend_recency_half_life": "recommend.recency_half_life",

	// Demand
	"demand_external_factors":   "demand.external_factors",
	"demand_default_importance": "demand.default_importance",
	"demand_average_window":     "demand.average_window",
	"demand_min_history":        "demand.min_history",
	"demand_confidence_window":  "demand.confidence_window",
	"demand_accuracy_baseline":  "demand.accuracy_baseline",
	"demand_ridge_lambda":       "demand.ridge_lambda",
	"demand_timeout":            "demand.timeout",

	// Training
	"training_enabled":    "training.enabled",
	"training_interval":   "training.interval",
	"training_on_startup": "training.on_startup",
	"training_timeout":    "training.timeout",

	// Cache
	"forecast_cache_size": "cache.max_entries",
	"forecast_cache_ttl":  "cache.ttl",

	// Store
	"store_path":      "store.path",
	"store_in_memory": "store.in_memory",

	// External factor feed
	"feed_enabled":              "feed.enabled",
	"feed_base_url":             "feed.base_url",
	"feed_timeout":              "feed.timeout",
	"feed_requests_per_second":  "feed.requests_per_second",
	"feed_burst":                "feed.burst",
	"feed_breaker_max_failures": "feed.breaker_max_failures",
	"feed_breaker_open_timeout": "feed.breaker_open_timeout",

	// Events
	"events_buffer_size":    "events.buffer_size",
	"events_retry_count":    "events.retry_count",
	"events_retry_interval": "events.retry_initial_interval",
	"events_close_timeout":  "events.close_timeout",
}

// envTransformFunc maps an environment variable name to its koanf path, or
// "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
