// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package demand

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// Built-in feature names, in vector order.
const (
	FeatureHistoricalAvg = "historical_avg_demand"
	FeatureSeasonality   = "seasonality_index"
	FeaturePrice         = "price"
	FeaturePromotion     = "promotion"
)

var baseFeatures = []string{FeatureHistoricalAvg, FeatureSeasonality, FeaturePrice, FeaturePromotion}

func isBaseFeature(name string) bool {
	for _, f := range baseFeatures {
		if f == name {
			return true
		}
	}
	return false
}

// Features is the fixed-length input vector of the demand regressor.
type Features struct {
	Names    []string  `json:"names"`
	Values   []float64 `json:"values"`
	Warnings []string  `json:"warnings,omitempty"`

	// TargetDate is the day the features describe. It is zero when there
	// is no history to anchor it.
	TargetDate time.Time `json:"target_date"`
}

// Names returns the full feature layout for a configuration.
func (c *Config) Names() []string {
	names := make([]string, 0, len(baseFeatures)+len(c.ExternalFactors))
	names = append(names, baseFeatures...)
	return append(names, c.ExternalFactors...)
}

// ExtractFeatures maps a product, its daily history and external indicators
// into the feature vector for the day after the last history point. The
// mapping depends only on its arguments. Configured factors missing from external
// default to 0; factors that are not configured are ignored. Both cases are
// reported in Warnings.
func ExtractFeatures(cfg *Config, product recommend.Product, history []forecast.TimeSeriesPoint, external map[string]float64) (Features, error) {
	if product.ID == "" {
		return Features{}, fmt.Errorf("%w: product id is required", ml.ErrInvalidInput)
	}
	if math.IsNaN(product.Price) || math.IsInf(product.Price, 0) || product.Price < 0 {
		return Features{}, fmt.Errorf("%w: invalid price %v", ml.ErrInvalidInput, product.Price)
	}
	if err := forecast.ValidateHistory(history); err != nil {
		return Features{}, err
	}

	var target time.Time
	if len(history) > 0 {
		target = forecast.Day(history[len(history)-1].Date).AddDate(0, 0, 1)
	}

	f := extract(cfg, product, history, external, target)
	return f, nil
}

func extract(cfg *Config, product recommend.Product, history []forecast.TimeSeriesPoint, external map[string]float64, target time.Time) Features {
	f := Features{
		Names:      cfg.Names(),
		Values:     make([]float64, 0, len(baseFeatures)+len(cfg.ExternalFactors)),
		TargetDate: target,
	}

	recent := history
	if len(recent) > cfg.AverageWindow {
		recent = recent[len(recent)-cfg.AverageWindow:]
	}

	f.Values = append(f.Values,
		ml.Mean(forecast.SalesValues(recent)),
		seasonalityIndex(history, target.Month()),
		product.Price,
		boolFeature(product.OnPromotion),
	)

	for _, name := range cfg.ExternalFactors {
		v, ok := external[name]
		switch {
		case !ok:
			f.Warnings = append(f.Warnings, fmt.Sprintf("external factor %q missing, using 0", name))
		case math.IsNaN(v) || math.IsInf(v, 0):
			f.Warnings = append(f.Warnings, fmt.Sprintf("external factor %q is not finite, using 0", name))
			v = 0
		}
		f.Values = append(f.Values, v)
	}

	if len(external) > 0 {
		known := make(map[string]struct{}, len(cfg.ExternalFactors))
		for _, name := range cfg.ExternalFactors {
			known[name] = struct{}{}
		}
		var unknown []string
		for name := range external {
			if _, ok := known[name]; !ok {
				unknown = append(unknown, name)
			}
		}
		sort.Strings(unknown)
		for _, name := range unknown {
			f.Warnings = append(f.Warnings, fmt.Sprintf("external factor %q is not configured, ignored", name))
		}
	}

	return f
}

// seasonalityIndex is the mean sales of days in month divided by the overall
// mean. It is 1 when either is unavailable.
func seasonalityIndex(history []forecast.TimeSeriesPoint, month time.Month) float64 {
	overall := ml.Mean(forecast.SalesValues(history))
	if overall == 0 {
		return 1
	}

	var sum float64
	var n int
	for _, p := range history {
		if p.Date.Month() == month {
			sum += p.Sales
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return (sum / float64(n)) / overall
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
