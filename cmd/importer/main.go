// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

// Command importer loads historical daily sales from an Excel workbook into
// the Stockcast store.
//
// The workbook needs a header row with at least date, product_id and
// quantity columns; is_holiday and has_promotion are optional. The store
// must not be open by a running server while the import runs.
//
//	importer -file sales.xlsx -sheet "2025" -dry-run
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/tomtom215/stockcast/internal/config"
	"github.com/tomtom215/stockcast/internal/importer"
	"github.com/tomtom215/stockcast/internal/logging"
	"github.com/tomtom215/stockcast/internal/store"
)

type summary struct {
	Sheet         string              `json:"sheet"`
	Rows          int64               `json:"rows"`
	Imported      int64               `json:"imported"`
	Skipped       int64               `json:"skipped"`
	Errors        int64               `json:"errors"`
	DryRun        bool                `json:"dry_run"`
	DurationMS    int64               `json:"duration_ms"`
	RowsPerSecond float64             `json:"rows_per_second"`
	RowErrors     []importer.RowError `json:"row_errors,omitempty"`
}

func main() {
	os.Exit(run())
}

func run() int {
	file := flag.String("file", "", "path to the .xlsx workbook (required)")
	sheet := flag.String("sheet", "", "worksheet name (default: first sheet)")
	dryRun := flag.Bool("dry-run", false, "validate rows without writing")
	storePath := flag.String("store", "", "store directory (overrides store.path)")
	maxErrors := flag.Int("max-row-errors", importer.DefaultMaxRowErrors, "row errors to report")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "importer: -file is required")
		flag.Usage()
		return 2
	}

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		fmt.Fprintf(os.Stderr, "importer: load configuration: %v\n", err)
		return 1
	}
	logging.Init(cfg.LoggingSettings())
	logger := logging.WithComponent("importer")

	path := cfg.Store.Path
	if *storePath != "" {
		path = *storePath
	}
	// The in-memory option only makes sense for the server and tests.
	st, err := store.Open(store.Config{Path: path}, logging.WithComponent("store"))
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to open store")
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close store")
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	imp := importer.New(st, importer.Config{
		Sheet:        *sheet,
		DryRun:       *dryRun,
		MaxRowErrors: *maxErrors,
	}, logger)

	stats, err := imp.ImportFile(ctx, *file)
	if stats != nil {
		out := summary{
			Sheet:         stats.Sheet,
			Rows:          stats.Rows,
			Imported:      stats.Imported,
			Skipped:       stats.Skipped,
			Errors:        stats.Errors,
			DryRun:        stats.DryRun,
			DurationMS:    stats.Duration().Milliseconds(),
			RowsPerSecond: stats.RowsPerSecond(),
			RowErrors:     stats.RowErrors,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(out); encErr != nil {
			logger.Error().Err(encErr).Msg("Failed to write summary")
		}
	}
	if err != nil {
		logger.Error().Err(err).Str("file", *file).Msg("Import failed")
		return 1
	}
	if stats.Errors > 0 {
		return 1
	}
	return 0
}
