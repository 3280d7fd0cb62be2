// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package forecast

import (
	"fmt"

	"github.com/tomtom215/stockcast/internal/ml"
)

// DefaultWindowLength is the number of past days the forecaster looks at.
const DefaultWindowLength = 30

// Config holds forecaster settings.
type Config struct {
	// WindowLength is the number of past days fed to the regressor.
	WindowLength int `json:"window_length"`

	// AccuracyBaseline scales the confidence score.
	AccuracyBaseline float64 `json:"accuracy_baseline"`

	// RidgeLambda is the L2 penalty of the default regressor.
	RidgeLambda float64 `json:"ridge_lambda"`

	// MaxHorizonDays caps how far ahead a single call may forecast.
	MaxHorizonDays int `json:"max_horizon_days"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		WindowLength:     DefaultWindowLength,
		AccuracyBaseline: ml.DefaultAccuracyBaseline,
		RidgeLambda:      ml.DefaultRidgeLambda,
		MaxHorizonDays:   365,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.WindowLength < 2 {
		return fmt.Errorf("window_length must be at least 2, got %d", c.WindowLength)
	}
	if c.AccuracyBaseline < 0 || c.AccuracyBaseline > 100 {
		return fmt.Errorf("accuracy_baseline must be in [0, 100], got %f", c.AccuracyBaseline)
	}
	if c.RidgeLambda <= 0 {
		return fmt.Errorf("ridge_lambda must be positive, got %f", c.RidgeLambda)
	}
	if c.MaxHorizonDays < 1 {
		return fmt.Errorf("max_horizon_days must be positive, got %d", c.MaxHorizonDays)
	}
	return nil
}
