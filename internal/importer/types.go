// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package importer

import "time"

// RowError describes a skipped or failed row.
type RowError struct {
	// Row is the 1-based sheet row number, as shown by spreadsheet software.
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportStats holds statistics about an import operation.
type ImportStats struct {
	// Sheet is the worksheet that was read.
	Sheet string

	// Rows is the number of data rows read, excluding the header and blank rows.
	Rows int64

	// Imported is the number of rows recorded in the store.
	Imported int64

	// Skipped is the number of rows that failed validation.
	Skipped int64

	// Errors is the number of valid rows the store rejected.
	Errors int64

	// RowErrors samples skipped and failed rows, up to Config.MaxRowErrors.
	RowErrors []RowError

	// StartTime is when the import started.
	StartTime time.Time

	// EndTime is when the import completed (zero if still running).
	EndTime time.Time

	// DryRun indicates if this was a dry run (no actual writes).
	DryRun bool
}

// Duration returns the duration of the import operation.
func (s *ImportStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// RowsPerSecond returns the import rate.
func (s *ImportStats) RowsPerSecond() float64 {
	duration := s.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(s.Rows) / duration
}

func (s *ImportStats) addRowError(limit, row int, reason string) {
	if len(s.RowErrors) < limit {
		s.RowErrors = append(s.RowErrors, RowError{Row: row, Reason: reason})
	}
}
