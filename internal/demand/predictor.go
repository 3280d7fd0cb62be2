// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package demand

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// Prediction is a demand estimate for one product.
type Prediction struct {
	PredictedDemand int       `json:"predicted_demand"`
	Confidence      int       `json:"confidence"`
	Factors         []Factor  `json:"factors"`
	Warnings        []string  `json:"warnings,omitempty"`
	TargetDate      time.Time `json:"target_date"`
	ModelVersion    uint64    `json:"model_version"`
}

// Factor is one entry of the heuristic breakdown: the feature value times
// its configured importance weight.
type Factor struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// Sample is one supervised training example.
type Sample struct {
	Features []float64
	Demand   float64
}

// ProductHistory pairs a product with its daily sales.
type ProductHistory struct {
	Product recommend.Product
	History []forecast.TimeSeriesPoint
}

// Predictor estimates next-day demand from product attributes, recent sales
// and external indicators. Models are published as immutable snapshots that
// carry their own input scaling.
type Predictor struct {
	config  Config
	factory ml.RegressorFactory
	logger  zerolog.Logger

	slot     ml.Slot
	trainSem chan struct{}
}

// NewPredictor creates a predictor. A nil factory selects the ridge baseline.
//
//nolint:gocritic // hugeParam: logger passed by value per zerolog convention
func NewPredictor(cfg Config, factory ml.RegressorFactory, logger zerolog.Logger) (*Predictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid demand config: %w", err)
	}
	if factory == nil {
		factory = ml.RidgeFactory(cfg.RidgeLambda)
	}
	return &Predictor{
		config:   cfg,
		factory:  factory,
		logger:   logger.With().Str("component", "demand").Logger(),
		trainSem: make(chan struct{}, 1),
	}, nil
}

// Config returns the predictor configuration.
func (p *Predictor) Config() *Config {
	return &p.config
}

// Snapshot returns the current published model, or nil.
func (p *Predictor) Snapshot() *ml.Snapshot {
	return p.slot.Load()
}

// ExtractFeatures builds the feature vector with this predictor's configuration.
func (p *Predictor) ExtractFeatures(product recommend.Product, history []forecast.TimeSeriesPoint, external map[string]float64) (Features, error) {
	return ExtractFeatures(&p.config, product, history, external)
}

// BuildSamples turns a product history into supervised examples: features
// from each prefix of at least MinHistory days, labelled with the next day's
// sales. The promotion flag follows the labelled day.
func (p *Predictor) BuildSamples(product recommend.Product, history []forecast.TimeSeriesPoint) ([]Sample, error) {
	if err := forecast.ValidateHistory(history); err != nil {
		return nil, err
	}

	var samples []Sample
	for t := p.config.MinHistory; t < len(history); t++ {
		day := product
		day.OnPromotion = history[t].HasPromotion
		f := extract(&p.config, day, history[:t], nil, forecast.Day(history[t].Date))
		samples = append(samples, Sample{Features: f.Values, Demand: history[t].Sales})
	}
	return samples, nil
}

// Train fits a new regressor on samples and publishes it.
func (p *Predictor) Train(ctx context.Context, samples []Sample) (*ml.Snapshot, error) {
	if err := p.acquireTraining(ctx); err != nil {
		return nil, err
	}
	defer p.releaseTraining()

	return p.trainLocked(ctx, samples)
}

// TrainFromHistory builds samples from one product's history and trains on them.
func (p *Predictor) TrainFromHistory(ctx context.Context, product recommend.Product, history []forecast.TimeSeriesPoint) (*ml.Snapshot, error) {
	samples, err := p.BuildSamples(product, history)
	if err != nil {
		return nil, err
	}
	return p.Train(ctx, samples)
}

// TrainHistories pools samples from several products and trains once.
// Products with too little history contribute nothing.
func (p *Predictor) TrainHistories(ctx context.Context, histories []ProductHistory) (*ml.Snapshot, error) {
	var samples []Sample
	for _, h := range histories {
		s, err := p.BuildSamples(h.Product, h.History)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", h.Product.ID, err)
		}
		samples = append(samples, s...)
	}
	return p.Train(ctx, samples)
}

func (p *Predictor) trainLocked(ctx context.Context, samples []Sample) (*ml.Snapshot, error) {
	start := time.Now()

	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 training samples (more than %d days of history), got %d",
			ml.ErrInsufficientData, p.config.MinHistory, len(samples))
	}

	x := make(ml.Matrix, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = s.Features
		y[i] = s.Demand
	}

	scaled, err := ml.Standardize(x)
	if err != nil {
		return nil, err
	}

	model := p.factory()
	if err := model.Fit(ctx, scaled.Data, y); err != nil {
		return nil, fmt.Errorf("fit demand regressor: %w", ml.FromContext(err))
	}
	if err := ml.CheckContext(ctx); err != nil {
		return nil, err
	}

	snap := p.slot.Publish(model, scaled.Params, len(samples))
	p.logger.Info().
		Uint64("version", snap.Version).
		Int("samples", len(samples)).
		Dur("duration", time.Since(start)).
		Msg("Demand model published")
	return snap, nil
}

// Predict estimates demand for features. When no model is published yet it
// trains one synchronously from product and history; latency-sensitive
// callers should train out of band first.
func (p *Predictor) Predict(ctx context.Context, product recommend.Product, features Features, history []forecast.TimeSeriesPoint) (*Prediction, error) {
	if len(features.Values) != len(features.Names) || len(features.Values) != len(p.config.Names()) {
		return nil, fmt.Errorf("%w: feature vector has %d values, want %d",
			ml.ErrInvalidInput, len(features.Values), len(p.config.Names()))
	}

	snap, err := p.ensureModel(ctx, product, history)
	if err != nil {
		return nil, err
	}

	x, err := snap.Scaler.Apply(ml.Matrix{features.Values})
	if err != nil {
		return nil, err
	}
	pred, err := snap.Model.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("predict demand: %w", err)
	}
	if len(pred) != 1 {
		return nil, fmt.Errorf("%w: regressor returned %d predictions for 1 row", ml.ErrInvalidInput, len(pred))
	}

	recent := history
	if len(recent) > p.config.ConfidenceWindow {
		recent = recent[len(recent)-p.config.ConfidenceWindow:]
	}

	return &Prediction{
		PredictedDemand: ml.RoundNonNegative(pred[0]),
		Confidence:      ml.Confidence(forecast.SalesValues(recent), p.config.AccuracyBaseline),
		Factors:         p.rankFactors(features),
		Warnings:        features.Warnings,
		TargetDate:      features.TargetDate,
		ModelVersion:    snap.Version,
	}, nil
}

// rankFactors orders features by |value * importance|, ties by name.
func (p *Predictor) rankFactors(f Features) []Factor {
	factors := make([]Factor, len(f.Names))
	for i, name := range f.Names {
		factors[i] = Factor{
			Name:         name,
			Value:        f.Values[i],
			Contribution: f.Values[i] * p.config.importance(name),
		}
	}
	sort.SliceStable(factors, func(i, j int) bool {
		ai, aj := math.Abs(factors[i].Contribution), math.Abs(factors[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return factors[i].Name < factors[j].Name
	})
	return factors
}

func (p *Predictor) ensureModel(ctx context.Context, product recommend.Product, history []forecast.TimeSeriesPoint) (*ml.Snapshot, error) {
	if snap := p.slot.Load(); snap != nil {
		return snap, nil
	}

	if err := p.acquireTraining(ctx); err != nil {
		return nil, err
	}
	defer p.releaseTraining()

	if snap := p.slot.Load(); snap != nil {
		return snap, nil
	}

	p.logger.Debug().Str("product_id", product.ID).Msg("No demand model published, training inline")
	samples, err := p.BuildSamples(product, history)
	if err != nil {
		return nil, err
	}
	snap, err := p.trainLocked(ctx, samples)
	if err != nil {
		// Keeps the cause matchable, e.g. ErrInsufficientData or ErrTimeout.
		return nil, fmt.Errorf("%w: training failed: %w", ml.ErrModelUnavailable, err)
	}
	return snap, nil
}

func (p *Predictor) acquireTraining(ctx context.Context) error {
	select {
	case p.trainSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ml.FromContext(ctx.Err())
	}
}

func (p *Predictor) releaseTraining() {
	<-p.trainSem
}
