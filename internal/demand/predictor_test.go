// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package demand

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// constRegressor predicts a fixed value.
type constRegressor struct{ value float64 }

func (c *constRegressor) Fit(context.Context, ml.Matrix, []float64) error { return nil }

func (c *constRegressor) Predict(x ml.Matrix) ([]float64, error) {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = c.value
	}
	return out, nil
}

var start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// promoHistory sells 100 a day, 160 on promotion days.
func promoHistory(days int) []forecast.TimeSeriesPoint {
	h := make([]forecast.TimeSeriesPoint, days)
	for i := range h {
		promo := i%5 == 0
		sales := 100.0
		if promo {
			sales = 160
		}
		h[i] = forecast.TimeSeriesPoint{Date: start.AddDate(0, 0, i), Sales: sales, HasPromotion: promo}
	}
	return h
}

func newTestPredictor(t *testing.T, factory ml.RegressorFactory) *Predictor {
	t.Helper()
	p, err := NewPredictor(DefaultConfig(), factory, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPredictor() error = %v", err)
	}
	return p
}

func predict(t *testing.T, p *Predictor, product recommend.Product, history []forecast.TimeSeriesPoint, external map[string]float64) (*Prediction, Features) {
	t.Helper()
	f, err := p.ExtractFeatures(product, history, external)
	if err != nil {
		t.Fatalf("ExtractFeatures() error = %v", err)
	}
	got, err := p.Predict(context.Background(), product, f, history)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	return got, f
}

func TestPredict_TrainsInlineAndLearnsPromotion(t *testing.T) {
	t.Parallel()

	p := newTestPredictor(t, nil)
	history := promoHistory(90)
	product := recommend.Product{ID: "sku-1", Price: 4}

	got, _ := predict(t, p, product, history, nil)
	if p.Snapshot() == nil {
		t.Fatal("Predict() should publish a snapshot")
	}
	if got.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", got.ModelVersion)
	}

	product.OnPromotion = true
	gotPromo, _ := predict(t, p, product, history, nil)

	if gotPromo.PredictedDemand <= got.PredictedDemand {
		t.Errorf("promotion demand %d should exceed regular demand %d", gotPromo.PredictedDemand, got.PredictedDemand)
	}
	if math.Abs(float64(got.PredictedDemand)-100) > 20 {
		t.Errorf("regular demand = %d, want about 100", got.PredictedDemand)
	}
	if math.Abs(float64(gotPromo.PredictedDemand)-160) > 30 {
		t.Errorf("promotion demand = %d, want about 160", gotPromo.PredictedDemand)
	}
	// the second call reuses the published snapshot
	if gotPromo.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", gotPromo.ModelVersion)
	}
}

func TestPredict_ClampsNegativeToZero(t *testing.T) {
	t.Parallel()

	p := newTestPredictor(t, func() ml.Regressor { return &constRegressor{value: -12.4} })
	got, _ := predict(t, p, recommend.Product{ID: "sku-1", Price: 4}, promoHistory(20), nil)
	if got.PredictedDemand != 0 {
		t.Errorf("PredictedDemand = %d, want 0", got.PredictedDemand)
	}
}

func TestPredict_Confidence(t *testing.T) {
	t.Parallel()

	p := newTestPredictor(t, func() ml.Regressor { return &constRegressor{value: 10} })
	product := recommend.Product{ID: "sku-1"}

	flat := make([]forecast.TimeSeriesPoint, 40)
	for i := range flat {
		flat[i] = forecast.TimeSeriesPoint{Date: start.AddDate(0, 0, i), Sales: 50}
	}
	got, _ := predict(t, p, product, flat, nil)
	if got.Confidence != 85 {
		t.Errorf("flat history Confidence = %d, want 85", got.Confidence)
	}

	got, _ = predict(t, p, product, promoHistory(40), nil)
	if got.Confidence < 0 || got.Confidence >= 85 {
		t.Errorf("noisy history Confidence = %d, want within [0, 85)", got.Confidence)
	}
}

func TestPredict_FactorsRankedByMagnitude(t *testing.T) {
	t.Parallel()

	p := newTestPredictor(t, func() ml.Regressor { return &constRegressor{value: 10} })
	got, f := predict(t, p, recommend.Product{ID: "sku-1", Price: 8}, promoHistory(20), map[string]float64{"trend": -9})

	if len(got.Factors) != len(f.Names) {
		t.Fatalf("len(Factors) = %d, want %d", len(got.Factors), len(f.Names))
	}
	// trend: -9 * 15 = -135 outweighs historical average ~112 * 1
	if got.Factors[0].Name != "trend" || got.Factors[0].Contribution != -135 {
		t.Errorf("top factor = %+v, want trend with contribution -135", got.Factors[0])
	}
	for i := 1; i < len(got.Factors); i++ {
		prev, cur := got.Factors[i-1], got.Factors[i]
		pa, ca := math.Abs(prev.Contribution), math.Abs(cur.Contribution)
		if pa < ca {
			t.Errorf("factor %d (%s, %g) ranked above larger %s (%g)", i-1, prev.Name, pa, cur.Name, ca)
		}
		if pa == ca && prev.Name >= cur.Name {
			t.Errorf("tie between %s and %s not ordered by name", prev.Name, cur.Name)
		}
	}
	// seasonality and weather were missing
	if len(got.Warnings) != 2 {
		t.Errorf("Warnings = %v, want 2 entries", got.Warnings)
	}
}

func TestPredict_InsufficientHistory(t *testing.T) {
	t.Parallel()

	p := newTestPredictor(t, nil)
	history := promoHistory(5)
	product := recommend.Product{ID: "sku-1"}

	f, err := p.ExtractFeatures(product, history, nil)
	if err != nil {
		t.Fatalf("ExtractFeatures() error = %v", err)
	}
	_, err = p.Predict(context.Background(), product, f, history)
	if !errors.Is(err, ml.ErrModelUnavailable) || !errors.Is(err, ml.ErrInsufficientData) {
		t.Errorf("Predict() error = %v, want ErrModelUnavailable wrapping ErrInsufficientData", err)
	}
	if p.Snapshot() != nil {
		t.Error("failed training must not publish a snapshot")
	}
}

func TestPredict_MismatchedFeatures(t *testing.T) {
	t.Parallel()

	p := newTestPredictor(t, nil)
	_, err := p.Predict(context.Background(), recommend.Product{ID: "x"}, Features{
		Names:  []string{"a"},
		Values: []float64{1},
	}, nil)
	if !errors.Is(err, ml.ErrInvalidInput) {
		t.Errorf("Predict() error = %v, want ErrInvalidInput", err)
	}
}

func TestTrainFromHistory(t *testing.T) {
	t.Parallel()

	p := newTestPredictor(t, nil)
	product := recommend.Product{ID: "a", Price: 2}

	snap, err := p.TrainFromHistory(context.Background(), product, promoHistory(17))
	if err != nil {
		t.Fatalf("TrainFromHistory() error = %v", err)
	}
	// MinHistory 7 leaves days 7..16 as labelled samples
	if snap.Samples != 10 {
		t.Errorf("Samples = %d, want 10", snap.Samples)
	}
	if p.Snapshot() != snap {
		t.Error("TrainFromHistory() should publish its snapshot")
	}

	if _, err := p.TrainFromHistory(context.Background(), product, promoHistory(3)); !errors.Is(err, ml.ErrInsufficientData) {
		t.Errorf("TrainFromHistory() with short history error = %v, want ErrInsufficientData", err)
	}
	if p.Snapshot() != snap {
		t.Error("failed training must keep the previous snapshot")
	}
}

func TestTrainHistories_PoolsProducts(t *testing.T) {
	t.Parallel()

	p := newTestPredictor(t, nil)
	snap, err := p.TrainHistories(context.Background(), []ProductHistory{
		{Product: recommend.Product{ID: "a", Price: 2}, History: promoHistory(17)}, // 10 samples
		{Product: recommend.Product{ID: "b", Price: 9}, History: promoHistory(3)},  // none
		{Product: recommend.Product{ID: "c", Price: 5}, History: promoHistory(12)}, // 5 samples
	})
	if err != nil {
		t.Fatalf("TrainHistories() error = %v", err)
	}
	if snap.Samples != 15 {
		t.Errorf("Samples = %d, want 15", snap.Samples)
	}
	if !snap.Scaler.Valid() {
		t.Error("snapshot scaler should be valid")
	}
}

func TestTrain_DeadlineIsTimeout(t *testing.T) {
	t.Parallel()

	p := newTestPredictor(t, nil)
	samples, err := p.BuildSamples(recommend.Product{ID: "a"}, promoHistory(30))
	if err != nil {
		t.Fatalf("BuildSamples() error = %v", err)
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	if _, err := p.Train(ctx, samples); !errors.Is(err, ml.ErrTimeout) {
		t.Errorf("Train() error = %v, want ErrTimeout", err)
	}
	if p.Snapshot() != nil {
		t.Error("timed-out training must not publish a snapshot")
	}
}
