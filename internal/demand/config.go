// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package demand

import (
	"fmt"

	"github.com/tomtom215/stockcast/internal/ml"
)

// Config holds demand predictor settings.
type Config struct {
	// ExternalFactors are the external indicator names, in vector order.
	ExternalFactors []string `json:"external_factors"`

	// ImportanceWeights scale each feature for the factor breakdown.
	// Features without an entry use DefaultImportance.
	ImportanceWeights map[string]float64 `json:"importance_weights"`

	// DefaultImportance applies to features missing from ImportanceWeights.
	DefaultImportance float64 `json:"default_importance"`

	// AverageWindow is how many recent days feed historical_avg_demand.
	AverageWindow int `json:"average_window"`

	// MinHistory is the number of days needed before the first training sample.
	MinHistory int `json:"min_history"`

	// ConfidenceWindow is how many recent days feed the confidence score.
	ConfidenceWindow int `json:"confidence_window"`

	// AccuracyBaseline scales the confidence score.
	AccuracyBaseline float64 `json:"accuracy_baseline"`

	// RidgeLambda is the L2 penalty of the default regressor.
	RidgeLambda float64 `json:"ridge_lambda"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		ExternalFactors: []string{"seasonality", "weather", "trend"},
		ImportanceWeights: map[string]float64{
			FeatureHistoricalAvg: 1.0,
			FeatureSeasonality:   25,
			FeaturePrice:         0.5,
			FeaturePromotion:     20,
			"seasonality":        10,
			"weather":            10,
			"trend":              15,
		},
		DefaultImportance: 1,
		AverageWindow:     30,
		MinHistory:        7,
		ConfidenceWindow:  30,
		AccuracyBaseline:  ml.DefaultAccuracyBaseline,
		RidgeLambda:       ml.DefaultRidgeLambda,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.ExternalFactors))
	for _, name := range c.ExternalFactors {
		if name == "" {
			return fmt.Errorf("external_factors contains an empty name")
		}
		if isBaseFeature(name) {
			return fmt.Errorf("external factor %q collides with a built-in feature", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("external factor %q listed twice", name)
		}
		seen[name] = struct{}{}
	}
	if c.AverageWindow < 1 {
		return fmt.Errorf("average_window must be positive, got %d", c.AverageWindow)
	}
	if c.MinHistory < 1 {
		return fmt.Errorf("min_history must be positive, got %d", c.MinHistory)
	}
	if c.ConfidenceWindow < 1 {
		return fmt.Errorf("confidence_window must be positive, got %d", c.ConfidenceWindow)
	}
	if c.AccuracyBaseline < 0 || c.AccuracyBaseline > 100 {
		return fmt.Errorf("accuracy_baseline must be in [0, 100], got %f", c.AccuracyBaseline)
	}
	if c.RidgeLambda <= 0 {
		return fmt.Errorf("ridge_lambda must be positive, got %f", c.RidgeLambda)
	}
	return nil
}

func (c *Config) importance(name string) float64 {
	if w, ok := c.ImportanceWeights[name]; ok {
		return w
	}
	return c.DefaultImportance
}
