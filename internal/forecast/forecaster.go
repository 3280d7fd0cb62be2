// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/ml"
)

// Forecaster trains a regressor on sliding windows of daily sales and rolls
// it forward autoregressively.
//
// Training publishes an immutable snapshot; Forecast reads whichever snapshot
// is current when it starts and never locks.
type Forecaster struct {
	config   Config
	calendar *HolidayCalendar
	factory  ml.RegressorFactory
	logger   zerolog.Logger

	slot ml.Slot

	// trainSem serializes training runs and honours context cancellation.
	trainSem chan struct{}
}

// New creates a forecaster. A nil factory selects the ridge baseline.
//
//nolint:gocritic // hugeParam: logger passed by value per zerolog convention
func New(cfg Config, calendar *HolidayCalendar, factory ml.RegressorFactory, logger zerolog.Logger) (*Forecaster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid forecast config: %w", err)
	}
	if factory == nil {
		factory = ml.RidgeFactory(cfg.RidgeLambda)
	}
	return &Forecaster{
		config:   cfg,
		calendar: calendar,
		factory:  factory,
		logger:   logger.With().Str("component", "forecast").Logger(),
		trainSem: make(chan struct{}, 1),
	}, nil
}

// WindowLength returns the configured window length.
func (f *Forecaster) WindowLength() int {
	return f.config.WindowLength
}

// Snapshot returns the current published model, or nil.
func (f *Forecaster) Snapshot() *ml.Snapshot {
	return f.slot.Load()
}

// Train fits a new regressor on one history and publishes it.
func (f *Forecaster) Train(ctx context.Context, history []TimeSeriesPoint) (*ml.Snapshot, error) {
	if len(history) <= f.config.WindowLength {
		return nil, fmt.Errorf("%w: need more than %d days of history, got %d",
			ml.ErrInsufficientData, f.config.WindowLength, len(history))
	}
	return f.TrainSeries(ctx, [][]TimeSeriesPoint{history})
}

// TrainSeries fits a new regressor on windows pooled from several series.
// Windows are standardized individually, so series of different scale can
// be mixed. Series that are too short are skipped.
func (f *Forecaster) TrainSeries(ctx context.Context, series [][]TimeSeriesPoint) (*ml.Snapshot, error) {
	if err := f.acquireTraining(ctx); err != nil {
		return nil, err
	}
	defer f.releaseTraining()

	return f.trainLocked(ctx, series)
}

func (f *Forecaster) trainLocked(ctx context.Context, series [][]TimeSeriesPoint) (*ml.Snapshot, error) {
	start := time.Now()

	x, y, err := f.buildPairs(ctx, series)
	if err != nil {
		return nil, err
	}

	model := f.factory()
	if err := model.Fit(ctx, x, y); err != nil {
		return nil, fmt.Errorf("fit forecast regressor: %w", ml.FromContext(err))
	}

	// A run cancelled after Fit returned must still not publish.
	if err := ml.CheckContext(ctx); err != nil {
		return nil, err
	}

	snap := f.slot.Publish(model, ml.ScalerParams{}, len(y))
	f.logger.Info().
		Uint64("version", snap.Version).
		Int("samples", len(y)).
		Int("series", len(series)).
		Dur("duration", time.Since(start)).
		Msg("Forecast model published")
	return snap, nil
}

// buildPairs turns each window of L days into one standardized input row and
// the following day's sales, scaled by the same window's sales params.
func (f *Forecaster) buildPairs(ctx context.Context, series [][]TimeSeriesPoint) (ml.Matrix, []float64, error) {
	l := f.config.WindowLength

	var x ml.Matrix
	var y []float64
	for si, s := range series {
		if len(s) <= l {
			continue
		}
		if err := ValidateHistory(s); err != nil {
			return nil, nil, fmt.Errorf("series %d: %w", si, err)
		}
		for t := l; t < len(s); t++ {
			if err := ml.CheckContext(ctx); err != nil {
				return nil, nil, err
			}
			row, scaled, err := standardizeWindow(s[t-l : t])
			if err != nil {
				return nil, nil, err
			}
			target, err := scaled.Params.StandardizeValue(s[t].Sales, ColSales)
			if err != nil {
				return nil, nil, err
			}
			x = append(x, row)
			y = append(y, target)
		}
	}

	if len(y) == 0 {
		return nil, nil, fmt.Errorf("%w: no series longer than %d days", ml.ErrInsufficientData, l)
	}
	return x, y, nil
}

// Forecast predicts horizonDays of sales following history.
func (f *Forecaster) Forecast(ctx context.Context, history []TimeSeriesPoint, horizonDays int) ([]ForecastResult, error) {
	results, _, err := f.ForecastWithVersion(ctx, history, horizonDays)
	return results, err
}

// ForecastWithVersion is Forecast that also reports the version of the
// snapshot used for every step of the rollout.
func (f *Forecaster) ForecastWithVersion(ctx context.Context, history []TimeSeriesPoint, horizonDays int) ([]ForecastResult, uint64, error) {
	l := f.config.WindowLength

	if horizonDays < 1 || horizonDays > f.config.MaxHorizonDays {
		return nil, 0, fmt.Errorf("%w: horizon must be in [1, %d], got %d",
			ml.ErrInvalidInput, f.config.MaxHorizonDays, horizonDays)
	}
	if len(history) <= l {
		return nil, 0, fmt.Errorf("%w: need more than %d days of history, got %d",
			ml.ErrInsufficientData, l, len(history))
	}
	if err := ValidateHistory(history); err != nil {
		return nil, 0, err
	}

	snap, err := f.ensureModel(ctx, history)
	if err != nil {
		return nil, 0, err
	}

	window := make([]TimeSeriesPoint, l)
	copy(window, history[len(history)-l:])

	results := make([]ForecastResult, 0, horizonDays)
	for step := 0; step < horizonDays; step++ {
		if err := ml.CheckContext(ctx); err != nil {
			return nil, 0, err
		}

		row, scaled, err := standardizeWindow(window)
		if err != nil {
			return nil, 0, err
		}
		pred, err := snap.Model.Predict(ml.Matrix{row})
		if err != nil {
			return nil, 0, fmt.Errorf("predict step %d: %w", step, err)
		}
		if len(pred) != 1 {
			return nil, 0, fmt.Errorf("%w: regressor returned %d predictions for 1 row", ml.ErrInvalidInput, len(pred))
		}
		sales, err := ml.InverseStandardizeColumn(pred, scaled, scaled.Params, ColSales)
		if err != nil {
			return nil, 0, err
		}
		predicted := ml.RoundNonNegative(sales[0])

		next := Day(window[l-1].Date).AddDate(0, 0, 1)
		copy(window, window[1:])
		window[l-1] = TimeSeriesPoint{
			Date:         next,
			Sales:        float64(predicted),
			IsHoliday:    f.calendar.IsHoliday(next),
			HasPromotion: false,
		}

		results = append(results, ForecastResult{
			Date:           next,
			PredictedSales: predicted,
			Confidence:     ml.Confidence(SalesValues(window), f.config.AccuracyBaseline),
		})
	}

	return results, snap.Version, nil
}

// ensureModel returns the published snapshot, training synchronously on
// history when none exists yet.
func (f *Forecaster) ensureModel(ctx context.Context, history []TimeSeriesPoint) (*ml.Snapshot, error) {
	if snap := f.slot.Load(); snap != nil {
		return snap, nil
	}

	if err := f.acquireTraining(ctx); err != nil {
		return nil, err
	}
	defer f.releaseTraining()

	// Another caller may have published while we waited.
	if snap := f.slot.Load(); snap != nil {
		return snap, nil
	}

	f.logger.Debug().Int("history_days", len(history)).Msg("No forecast model published, training inline")
	snap, err := f.trainLocked(ctx, [][]TimeSeriesPoint{history})
	if err != nil {
		if errors.Is(err, ml.ErrInsufficientData) || errors.Is(err, ml.ErrTimeout) ||
			errors.Is(err, context.Canceled) || errors.Is(err, ml.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: training failed: %w", ml.ErrModelUnavailable, err)
	}
	return snap, nil
}

func (f *Forecaster) acquireTraining(ctx context.Context) error {
	select {
	case f.trainSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ml.FromContext(ctx.Err())
	}
}

func (f *Forecaster) releaseTraining() {
	<-f.trainSem
}
