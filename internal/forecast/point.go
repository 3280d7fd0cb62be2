// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/stockcast/internal/ml"
)

// DateLayout is the calendar-day format used for keys and JSON.
const DateLayout = "2006-01-02"

// TimeSeriesPoint is one day of sales for a product (or an aggregate).
type TimeSeriesPoint struct {
	// Date is the calendar day. Only the year, month and day are significant.
	Date time.Time `json:"date"`

	// Sales is the quantity sold that day.
	Sales float64 `json:"sales"`

	// IsHoliday marks a public holiday.
	IsHoliday bool `json:"is_holiday"`

	// HasPromotion marks a day with an active promotion.
	HasPromotion bool `json:"has_promotion"`
}

// DayOfWeek returns the weekday, Sunday = 0.
func (p TimeSeriesPoint) DayOfWeek() int {
	return int(p.Date.Weekday())
}

// Month returns the month number, 1-12.
func (p TimeSeriesPoint) Month() int {
	return int(p.Date.Month())
}

// ForecastResult is one forecast day.
type ForecastResult struct {
	Date           time.Time `json:"date"`
	PredictedSales int       `json:"predicted_sales"`
	Confidence     int       `json:"confidence"`
}

// Day truncates t to midnight UTC of its own calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateHistory checks that every point has finite non-negative sales and
// that dates are strictly increasing.
func ValidateHistory(history []TimeSeriesPoint) error {
	for i, p := range history {
		if p.Date.IsZero() {
			return fmt.Errorf("%w: point %d has no date", ml.ErrInvalidInput, i)
		}
		if math.IsNaN(p.Sales) || math.IsInf(p.Sales, 0) || p.Sales < 0 {
			return fmt.Errorf("%w: point %d has invalid sales %v", ml.ErrInvalidInput, i, p.Sales)
		}
		if i > 0 && !Day(p.Date).After(Day(history[i-1].Date)) {
			return fmt.Errorf("%w: point %d (%s) is not after the previous day",
				ml.ErrInvalidInput, i, p.Date.Format(DateLayout))
		}
	}
	return nil
}

// SalesValues extracts the sales column.
func SalesValues(points []TimeSeriesPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Sales
	}
	return out
}
