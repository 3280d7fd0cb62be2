// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package demand

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/recommend"
)

func dailyHistory(start time.Time, sales ...float64) []forecast.TimeSeriesPoint {
	h := make([]forecast.TimeSeriesPoint, len(sales))
	for i, s := range sales {
		h[i] = forecast.TimeSeriesPoint{Date: start.AddDate(0, 0, i), Sales: s}
	}
	return h
}

func TestExtractFeatures(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	product := recommend.Product{ID: "sku-1", Price: 12.5, OnPromotion: true}
	// Jan 30 .. Feb 2; target is Feb 3
	history := dailyHistory(time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), 10, 10, 20, 40)

	f, err := ExtractFeatures(&cfg, product, history, map[string]float64{
		"weather": 0.7,
		"trend":   -0.2,
		"unknown": 3,
	})
	if err != nil {
		t.Fatalf("ExtractFeatures() error = %v", err)
	}

	wantNames := []string{
		FeatureHistoricalAvg, FeatureSeasonality, FeaturePrice, FeaturePromotion,
		"seasonality", "weather", "trend",
	}
	if !reflect.DeepEqual(f.Names, wantNames) {
		t.Errorf("Names = %v, want %v", f.Names, wantNames)
	}

	// mean of 10,10,20,40 = 20; Feb mean 30 / overall 20 = 1.5
	wantValues := []float64{20, 1.5, 12.5, 1, 0, 0.7, -0.2}
	if len(f.Values) != len(wantValues) {
		t.Fatalf("len(Values) = %d, want %d", len(f.Values), len(wantValues))
	}
	for i, want := range wantValues {
		if math.Abs(f.Values[i]-want) > 1e-12 {
			t.Errorf("Values[%d] (%s) = %g, want %g", i, f.Names[i], f.Values[i], want)
		}
	}

	if want := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC); !f.TargetDate.Equal(want) {
		t.Errorf("TargetDate = %v, want %v", f.TargetDate, want)
	}
	if len(f.Warnings) != 2 {
		t.Fatalf("Warnings = %v, want 2 entries", f.Warnings)
	}
	if !strings.Contains(f.Warnings[0], `"seasonality" missing`) {
		t.Errorf("Warnings[0] = %q, want missing seasonality", f.Warnings[0])
	}
	if !strings.Contains(f.Warnings[1], `"unknown" is not configured`) {
		t.Errorf("Warnings[1] = %q, want unknown factor ignored", f.Warnings[1])
	}
}

func TestExtractFeatures_EmptyHistory(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	product := recommend.Product{ID: "sku-1", Price: 3}

	f, err := ExtractFeatures(&cfg, product, nil, nil)
	if err != nil {
		t.Fatalf("ExtractFeatures() error = %v", err)
	}
	if f.Values[0] != 0 {
		t.Errorf("historical average = %g, want 0", f.Values[0])
	}
	if f.Values[1] != 1 {
		t.Errorf("seasonality = %g, want neutral 1", f.Values[1])
	}
	if len(f.Warnings) != len(cfg.ExternalFactors) {
		t.Errorf("Warnings = %v, want one per configured factor", f.Warnings)
	}
	if !f.TargetDate.IsZero() {
		t.Errorf("TargetDate = %v, want zero without history", f.TargetDate)
	}

	again, err := ExtractFeatures(&cfg, product, nil, nil)
	if err != nil {
		t.Fatalf("ExtractFeatures() error = %v", err)
	}
	if !reflect.DeepEqual(f, again) {
		t.Errorf("same inputs produced different features: %+v vs %+v", f, again)
	}
}

func TestExtractFeatures_InvalidInput(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	tests := []struct {
		name    string
		product recommend.Product
		history []forecast.TimeSeriesPoint
	}{
		{"missing id", recommend.Product{Price: 1}, nil},
		{"negative price", recommend.Product{ID: "x", Price: -1}, nil},
		{"negative sales", recommend.Product{ID: "x"}, dailyHistory(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 1, -2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ExtractFeatures(&cfg, tt.product, tt.history, nil); !errors.Is(err, ml.ErrInvalidInput) {
				t.Errorf("ExtractFeatures() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"duplicate factor", func(c *Config) { c.ExternalFactors = []string{"weather", "weather"} }},
		{"factor shadows built-in", func(c *Config) { c.ExternalFactors = []string{FeaturePrice} }},
		{"zero min history", func(c *Config) { c.MinHistory = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
