// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/stockcast/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateModels,
		c.validateTraining,
		c.validateStore,
		c.validateFeed,
		c.validateEvents,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP read and write timeouts must be positive")
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	if c.Server.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

// validateModels validates the model sections through the model packages'
// own validation, which owns the numeric ranges.
func (c *Config) validateModels() error {
	ec := c.EngineSettings()
	if err := ec.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast: %w", err)
	}
	if err := ec.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if err := ec.Demand.Validate(); err != nil {
		return fmt.Errorf("demand: %w", err)
	}
	if err := ec.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	for _, d := range c.Forecast.Holidays {
		if _, err := parseDay(d); err != nil {
			return fmt.Errorf("FORECAST_HOLIDAYS: %w", err)
		}
	}
	return nil
}

func (c *Config) validateTraining() error {
	if c.Training.Enabled && c.Training.Interval <= 0 {
		return fmt.Errorf("TRAINING_INTERVAL must be positive when training is enabled")
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY is set")
	}
	return nil
}

func (c *Config) validateFeed() error {
	if !c.Feed.Enabled {
		return nil
	}
	u, err := url.Parse(c.Feed.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("FEED_BASE_URL must be an absolute http(s) URL when the feed is enabled")
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("FEED_TIMEOUT must be positive")
	}
	if c.Feed.RequestsPerSecond <= 0 || c.Feed.Burst < 1 {
		return fmt.Errorf("FEED_REQUESTS_PER_SECOND and FEED_BURST must be positive")
	}
	if c.Feed.BreakerMaxFailures < 1 {
		return fmt.Errorf("FEED_BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("EVENTS_BUFFER_SIZE must not be negative")
	}
	if c.Events.RetryCount < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must not be negative")
	}
	if c.Events.RetryCount > 0 && c.Events.RetryInitialInterval <= 0 {
		return fmt.Errorf("EVENTS_RETRY_INTERVAL must be positive when retries are enabled")
	}
	return nil
}
