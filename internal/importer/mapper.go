// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/validation"
)

// Column names.
const (
	ColDate         = "date"
	ColProductID    = "product_id"
	ColQuantity     = "quantity"
	ColIsHoliday    = "is_holiday"
	ColHasPromotion = "has_promotion"
)

var requiredColumns = []string{ColDate, ColProductID, ColQuantity}

// ErrInvalidHeader is returned when the header row lacks a required column
// or repeats one.
var ErrInvalidHeader = errors.New("invalid header row")

// SaleRow is one validated sheet row.
type SaleRow struct {
	ProductID    string    `json:"product_id" validate:"entityid"`
	Date         time.Time `json:"date"`
	Quantity     float64   `json:"quantity" validate:"finite,gte=0"`
	IsHoliday    bool      `json:"is_holiday"`
	HasPromotion bool      `json:"has_promotion"`
}

// Point converts the row into a time series point.
func (r *SaleRow) Point() forecast.TimeSeriesPoint {
	return forecast.TimeSeriesPoint{
		Date:         r.Date,
		Sales:        r.Quantity,
		IsHoliday:    r.IsHoliday,
		HasPromotion: r.HasPromotion,
	}
}

// columnIndex maps column names to cell positions.
type columnIndex map[string]int

// parseHeader locates the known columns. Unknown columns are ignored.
func parseHeader(cells []string) (columnIndex, error) {
	idx := make(columnIndex, len(cells))
	for i, cell := range cells {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}
		if _, dup := idx[name]; dup {
			return nil, fmt.Errorf("%w: column %q appears more than once", ErrInvalidHeader, name)
		}
		idx[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrInvalidHeader, col)
		}
	}
	return idx, nil
}

// cell returns the trimmed value of a column, or "" when the row is short or
// the column is absent.
func (c columnIndex) cell(cells []string, col string) string {
	i, ok := c[col]
	if !ok || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

// Mapper converts raw sheet rows into SaleRows.
type Mapper struct {
	columns  columnIndex
	date1904 bool
}

// parseRow converts and validates one row.
func (m *Mapper) parseRow(cells []string) (*SaleRow, error) {
	date, err := parseDate(m.columns.cell(cells, ColDate), m.date1904)
	if err != nil {
		return nil, err
	}

	rawQty := m.columns.cell(cells, ColQuantity)
	if rawQty == "" {
		return nil, fmt.Errorf("quantity is required")
	}
	qty, err := strconv.ParseFloat(rawQty, 64)
	if err != nil {
		return nil, fmt.Errorf("quantity %q is not a number", rawQty)
	}

	holiday, err := parseBool(m.columns.cell(cells, ColIsHoliday))
	if err != nil {
		return nil, fmt.Errorf("is_holiday: %w", err)
	}
	promo, err := parseBool(m.columns.cell(cells, ColHasPromotion))
	if err != nil {
		return nil, fmt.Errorf("has_promotion: %w", err)
	}

	row := &SaleRow{
		ProductID:    m.columns.cell(cells, ColProductID),
		Date:         date,
		Quantity:     qty,
		IsHoliday:    holiday,
		HasPromotion: promo,
	}
	if verr := validation.ValidateStruct(row); verr != nil {
		return nil, verr
	}
	return row, nil
}

// parseDate accepts YYYY-MM-DD text or an Excel serial date, which is what a
// native date cell holds when read raw.
func parseDate(s string, date1904 bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse(validation.DateLayout, s); err == nil {
		return t, nil
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is neither YYYY-MM-DD nor an Excel date", s)
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	return forecast.Day(t), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "false", "no", "n":
		return false, nil
	case "1", "true", "yes", "y":
		return true, nil
	default:
		return false, fmt.Errorf("%q is not a boolean", s)
	}
}
