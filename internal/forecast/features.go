// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package forecast

import "github.com/tomtom215/stockcast/internal/ml"

// Per-day feature columns.
const (
	ColSales = iota
	ColDayOfWeek
	ColMonth
	ColHoliday
	ColPromotion

	// NumFeatures is the width of a per-day feature vector.
	NumFeatures
)

// FeatureNames labels the per-day feature columns.
var FeatureNames = [NumFeatures]string{"sales", "day_of_week", "month", "is_holiday", "has_promotion"}

// Features returns the fixed-shape feature vector for one day.
func (p TimeSeriesPoint) Features() []float64 {
	v := make([]float64, NumFeatures)
	v[ColSales] = p.Sales
	v[ColDayOfWeek] = float64(p.DayOfWeek())
	v[ColMonth] = float64(p.Month())
	v[ColHoliday] = boolFeature(p.IsHoliday)
	v[ColPromotion] = boolFeature(p.HasPromotion)
	return v
}

// WindowMatrix stacks the feature vectors of consecutive days.
func WindowMatrix(points []TimeSeriesPoint) ml.Matrix {
	m := make(ml.Matrix, len(points))
	for i, p := range points {
		m[i] = p.Features()
	}
	return m
}

// standardizeWindow scales a window with params computed from the window
// itself and flattens it into one regressor input row.
func standardizeWindow(window []TimeSeriesPoint) ([]float64, ml.Standardized, error) {
	scaled, err := ml.Standardize(WindowMatrix(window))
	if err != nil {
		return nil, ml.Standardized{}, err
	}
	return scaled.Data.Flatten(), scaled, nil
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
