// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/ml"
)

// DefaultMaxRowErrors bounds ImportStats.RowErrors.
const DefaultMaxRowErrors = 100

// ErrSheetNotFound is returned when the requested worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Sink records imported sales. Implemented by store.Store.
type Sink interface {
	RecordSale(ctx context.Context, productID string, point forecast.TimeSeriesPoint) error
}

// Config holds importer settings.
type Config struct {
	// Sheet is the worksheet to read. Empty selects the first sheet.
	Sheet string

	// DryRun validates every row without writing.
	DryRun bool

	// MaxRowErrors bounds the sampled row errors. Zero means DefaultMaxRowErrors.
	MaxRowErrors int
}

// Importer reads sales workbooks into a Sink.
type Importer struct {
	cfg    Config
	sink   Sink
	logger zerolog.Logger
}

// New creates an importer.
//
//nolint:gocritic // hugeParam: logger passed by value per zerolog convention
func New(sink Sink, cfg Config, logger zerolog.Logger) *Importer {
	if cfg.MaxRowErrors <= 0 {
		cfg.MaxRowErrors = DefaultMaxRowErrors
	}
	return &Importer{
		cfg:    cfg,
		sink:   sink,
		logger: logger.With().Str("component", "importer").Logger(),
	}
}

// ImportFile imports the workbook at path.
func (i *Importer) ImportFile(ctx context.Context, path string) (*ImportStats, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer i.closeFile(f)
	return i.importWorkbook(ctx, f)
}

// Import imports a workbook read from r.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ImportStats, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer i.closeFile(f)
	return i.importWorkbook(ctx, f)
}

func (i *Importer) closeFile(f *excelize.File) {
	if err := f.Close(); err != nil {
		i.logger.Warn().Err(err).Msg("Error closing workbook")
	}
}

func (i *Importer) importWorkbook(ctx context.Context, f *excelize.File) (*ImportStats, error) {
	sheet, err := i.resolveSheet(f)
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{
		Sheet:     sheet,
		StartTime: time.Now(),
		DryRun:    i.cfg.DryRun,
	}
	defer func() { stats.EndTime = time.Now() }()

	rows, err := f.Rows(sheet)
	if err != nil {
		return stats, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			i.logger.Warn().Err(cerr).Msg("Error closing row iterator")
		}
	}()

	if !rows.Next() {
		if err := rows.Error(); err != nil {
			return stats, fmt.Errorf("read header: %w", err)
		}
		return stats, fmt.Errorf("%w: sheet %q is empty", ErrInvalidHeader, sheet)
	}
	header, err := rows.Columns()
	if err != nil {
		return stats, fmt.Errorf("read header: %w", err)
	}
	columns, err := parseHeader(header)
	if err != nil {
		return stats, err
	}

	mapper := &Mapper{columns: columns, date1904: uses1904(f)}

	i.logger.Info().
		Str("sheet", sheet).
		Bool("dry_run", i.cfg.DryRun).
		Msg("Starting import")

	rowNum := 1
	for rows.Next() {
		rowNum++
		if err := ml.CheckContext(ctx); err != nil {
			return stats, err
		}

		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return stats, fmt.Errorf("read row %d: %w", rowNum, err)
		}
		if blank(cells) {
			continue
		}
		stats.Rows++

		row, err := mapper.parseRow(cells)
		if err != nil {
			stats.Skipped++
			stats.addRowError(i.cfg.MaxRowErrors, rowNum, err.Error())
			continue
		}
		if i.cfg.DryRun {
			stats.Imported++
			continue
		}

		if err := i.sink.RecordSale(ctx, row.ProductID, row.Point()); err != nil {
			if ctxErr := ml.CheckContext(ctx); ctxErr != nil {
				return stats, ctxErr
			}
			stats.Errors++
			stats.addRowError(i.cfg.MaxRowErrors, rowNum, err.Error())
			i.logger.Warn().Err(err).Int("row", rowNum).Str("product_id", row.ProductID).Msg("Failed to record sale")
			continue
		}
		stats.Imported++
	}
	if err := rows.Error(); err != nil {
		return stats, fmt.Errorf("read rows: %w", err)
	}

	i.logger.Info().
		Int64("rows", stats.Rows).
		Int64("imported", stats.Imported).
		Int64("skipped", stats.Skipped).
		Int64("errors", stats.Errors).
		Dur("duration", stats.Duration()).
		Msg("Import completed")

	return stats, nil
}

func (i *Importer) resolveSheet(f *excelize.File) (string, error) {
	if i.cfg.Sheet == "" {
		name := f.GetSheetName(0)
		if name == "" {
			return "", fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
		}
		return name, nil
	}
	for _, name := range f.GetSheetList() {
		if strings.EqualFold(name, i.cfg.Sheet) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSheetNotFound, i.cfg.Sheet)
}

func uses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
