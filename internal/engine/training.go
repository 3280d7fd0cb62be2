// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/stockcast/internal/demand"
	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/metrics"
	"github.com/tomtom215/stockcast/internal/ml"
)

// Model names used in status reports and metrics.
const (
	ModelForecast = "forecast"
	ModelDemand   = "demand"
)

// ModelStatus describes a published model snapshot.
type ModelStatus struct {
	Published bool      `json:"published"`
	Version   uint64    `json:"version"`
	TrainedAt time.Time `json:"trained_at,omitempty"`
	Samples   int       `json:"samples"`
}

// TrainingStatus describes the most recent training run.
type TrainingStatus struct {
	Running      bool      `json:"running"`
	LastStarted  time.Time `json:"last_started,omitempty"`
	LastFinished time.Time `json:"last_finished,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	Runs         int       `json:"runs"`
}

// Status is a point-in-time view of the engine's models.
type Status struct {
	Forecast ModelStatus    `json:"forecast"`
	Demand   ModelStatus    `json:"demand"`
	Training TrainingStatus `json:"training"`
}

// Status reports the published snapshots and the training state.
func (e *Engine) Status() Status {
	e.statusMu.RLock()
	training := e.training
	e.statusMu.RUnlock()

	return Status{
		Forecast: modelStatus(e.forecaster.Snapshot()),
		Demand:   modelStatus(e.predictor.Snapshot()),
		Training: training,
	}
}

func modelStatus(s *ml.Snapshot) ModelStatus {
	if s == nil {
		return ModelStatus{}
	}
	return ModelStatus{Published: true, Version: s.Version, TrainedAt: s.TrainedAt, Samples: s.Samples}
}

// TrainForecaster fits the forecaster on every stored product history.
func (e *Engine) TrainForecaster(ctx context.Context) (*ml.Snapshot, error) {
	if e.data == nil {
		return nil, ErrNoDataProvider
	}
	histories, err := e.data.AllSalesHistories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sales histories: %w", err)
	}

	// Map order is random; sort so pooled training is reproducible.
	ids := make([]string, 0, len(histories))
	for id := range histories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	series := make([][]forecast.TimeSeriesPoint, 0, len(ids))
	for _, id := range ids {
		series = append(series, histories[id])
	}

	start := time.Now()
	snap, err := e.forecaster.TrainSeries(ctx, series)
	metrics.RecordTraining(ModelForecast, time.Since(start), snap.VersionOrZero(), samplesOf(snap), err)
	if err != nil {
		return nil, err
	}
	e.cache.clear()
	return snap, nil
}

// TrainDemand fits the demand predictor on samples pooled from every stored
// product.
func (e *Engine) TrainDemand(ctx context.Context) (*ml.Snapshot, error) {
	if e.data == nil {
		return nil, ErrNoDataProvider
	}
	products, err := e.data.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	histories := make([]demand.ProductHistory, 0, len(products))
	for _, p := range products {
		h, err := e.data.SalesHistory(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("load sales history for %s: %w", p.ID, err)
		}
		histories = append(histories, demand.ProductHistory{Product: p, History: h})
	}

	start := time.Now()
	snap, err := e.predictor.TrainHistories(ctx, histories)
	metrics.RecordTraining(ModelDemand, time.Since(start), snap.VersionOrZero(), samplesOf(snap), err)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Train retrains every model from stored data under the training timeout.
// It fails fast with ErrTrainingInProgress when a run is already active.
func (e *Engine) Train(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()
	return e.runTraining(ctx)
}

// StartTraining launches a background training run. The run is cancelled by
// Close.
func (e *Engine) StartTraining() error {
	if e.data == nil {
		return ErrNoDataProvider
	}
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.trainMu.Unlock()
		if err := e.runTraining(e.baseCtx); err != nil {
			e.logger.Error().Err(err).Msg("Background training failed")
		}
	}()
	return nil
}

// runTraining must be called with trainMu held.
func (e *Engine) runTraining(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, e.config.TrainingTimeout)
	defer cancel()

	e.setTraining(func(s *TrainingStatus) {
		s.Running = true
		s.LastStarted = time.Now()
	})

	start := time.Now()
	err := e.trainAll(ctx)

	e.setTraining(func(s *TrainingStatus) {
		s.Running = false
		s.LastFinished = time.Now()
		s.Runs++
		s.LastError = ""
		if err != nil {
			s.LastError = err.Error()
		}
	})

	if err != nil {
		return err
	}
	e.logger.Info().Dur("duration", time.Since(start)).Msg("Training run complete")
	return nil
}

// trainAll trains both models. Insufficient data for one model does not stop
// the other; other failures abort the run.
func (e *Engine) trainAll(ctx context.Context) error {
	var errs []error

	if _, err := e.TrainForecaster(ctx); err != nil {
		if !errors.Is(err, ml.ErrInsufficientData) {
			return fmt.Errorf("train forecaster: %w", ml.FromContext(err))
		}
		errs = append(errs, fmt.Errorf("train forecaster: %w", err))
	}

	if _, err := e.TrainDemand(ctx); err != nil {
		if !errors.Is(err, ml.ErrInsufficientData) {
			return fmt.Errorf("train demand: %w", ml.FromContext(err))
		}
		errs = append(errs, fmt.Errorf("train demand: %w", err))
	}

	return errors.Join(errs...)
}

func (e *Engine) setTraining(update func(*TrainingStatus)) {
	e.statusMu.Lock()
	update(&e.training)
	e.statusMu.Unlock()
}

func samplesOf(s *ml.Snapshot) int {
	if s == nil {
		return 0
	}
	return s.Samples
}
