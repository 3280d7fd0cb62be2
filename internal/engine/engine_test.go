// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/metrics"
	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// memData is an in-memory DataProvider.
type memData struct {
	products map[string]recommend.Product
	sales    map[string][]forecast.TimeSeriesPoint
	txns     []recommend.Transaction
}

var errNotFound = errors.New("not found")

func (m *memData) GetProduct(_ context.Context, id string) (recommend.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return recommend.Product{}, errNotFound
	}
	return p, nil
}

func (m *memData) ListProducts(_ context.Context) ([]recommend.Product, error) {
	out := make([]recommend.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memData) SalesHistory(_ context.Context, id string) ([]forecast.TimeSeriesPoint, error) {
	return m.sales[id], nil
}

func (m *memData) AllSalesHistories(_ context.Context) (map[string][]forecast.TimeSeriesPoint, error) {
	return m.sales, nil
}

func (m *memData) ListTransactions(_ context.Context) ([]recommend.Transaction, error) {
	return m.txns, nil
}

type failingFactors struct{}

func (failingFactors) Factors(context.Context, string, time.Time) (map[string]float64, error) {
	return nil, errors.New("feed down")
}

// blockingRegressor never finishes fitting until its context ends.
type blockingRegressor struct {
	started chan struct{}
}

func (b *blockingRegressor) Fit(ctx context.Context, _ ml.Matrix, _ []float64) error {
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func (b *blockingRegressor) Predict(x ml.Matrix) ([]float64, error) {
	return make([]float64, len(x)), nil
}

// predictGate blocks the first Predict after it is armed until released.
type predictGate struct {
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

// gatedRegressor predicts zeros, pausing on its gate.
type gatedRegressor struct {
	gate *predictGate
}

func (g *gatedRegressor) Fit(ctx context.Context, _ ml.Matrix, _ []float64) error {
	return ctx.Err()
}

func (g *gatedRegressor) Predict(x ml.Matrix) ([]float64, error) {
	if g.gate.armed.CompareAndSwap(true, false) {
		g.gate.entered <- struct{}{}
		<-g.gate.release
	}
	return make([]float64, len(x)), nil
}

func weeklyHistory(days int, base float64) []forecast.TimeSeriesPoint {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]forecast.TimeSeriesPoint, days)
	for i := range out {
		d := start.AddDate(0, 0, i)
		out[i] = forecast.TimeSeriesPoint{
			Date:  d,
			Sales: base + 3*float64(d.Weekday()),
		}
	}
	return out
}

func newTestEngine(t *testing.T, cfg Config, deps Dependencies) *Engine {
	t.Helper()
	e, err := New(cfg, deps, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative timeout", func(c *Config) { c.ForecastTimeout = -time.Second }, true},
		{"negative cache", func(c *Config) { c.CacheMaxEntries = -1 }, true},
		{"cache without ttl", func(c *Config) { c.CacheTTL = 0 }, true},
		{"cache disabled without ttl", func(c *Config) { c.CacheMaxEntries = 0; c.CacheTTL = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestForecastSales(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), Dependencies{})
	history := weeklyHistory(60, 20)

	fc, err := e.ForecastSales(context.Background(), history, 7)
	if err != nil {
		t.Fatalf("ForecastSales() error = %v", err)
	}
	if fc.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", fc.ModelVersion)
	}
	results := fc.Results
	if len(results) != 7 {
		t.Fatalf("got %d results, want 7", len(results))
	}
	last := history[len(history)-1].Date
	for i, r := range results {
		want := last.AddDate(0, 0, i+1)
		if !r.Date.Equal(want) {
			t.Errorf("result %d date = %s, want %s", i, r.Date, want)
		}
		if r.PredictedSales < 0 || r.Confidence < 0 || r.Confidence > 100 {
			t.Errorf("result %d out of range: %+v", i, r)
		}
	}

	if st := e.Status(); !st.Forecast.Published || st.Forecast.Version != 1 {
		t.Errorf("forecast status = %+v, want published version 1", st.Forecast)
	}
}

func TestForecastSalesCache(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), Dependencies{})
	history := weeklyHistory(45, 10)

	first, err := e.ForecastSales(context.Background(), history, 3)
	if err != nil {
		t.Fatalf("ForecastSales() error = %v", err)
	}

	hits := testutil.ToFloat64(metrics.ForecastCacheHits)
	second, err := e.ForecastSales(context.Background(), history, 3)
	if err != nil {
		t.Fatalf("ForecastSales() second call error = %v", err)
	}
	if got := testutil.ToFloat64(metrics.ForecastCacheHits); got != hits+1 {
		t.Errorf("cache hits = %v, want %v", got, hits+1)
	}
	if fmt.Sprint(first.Results) != fmt.Sprint(second.Results) {
		t.Errorf("cached result differs: %v vs %v", first.Results, second.Results)
	}
	if second.ModelVersion != first.ModelVersion {
		t.Errorf("cached ModelVersion = %d, want %d", second.ModelVersion, first.ModelVersion)
	}

	// Mutating a returned slice must not leak into the cache.
	second.Results[0].PredictedSales = -42
	third, _ := e.ForecastSales(context.Background(), history, 3)
	if third.Results[0].PredictedSales == -42 {
		t.Error("cache returned a shared slice")
	}
}

func TestForecastSalesReportsVersionUsed(t *testing.T) {
	gate := &predictGate{entered: make(chan struct{}), release: make(chan struct{})}
	e := newTestEngine(t, DefaultConfig(), Dependencies{
		ForecastRegressor: func() ml.Regressor { return &gatedRegressor{gate: gate} },
	})
	ctx := context.Background()

	if _, err := e.ForecastSales(ctx, weeklyHistory(40, 10), 3); err != nil {
		t.Fatalf("ForecastSales() error = %v", err)
	}

	type outcome struct {
		fc  *SalesForecast
		err error
	}
	done := make(chan outcome, 1)
	gate.armed.Store(true)
	go func() {
		fc, err := e.ForecastSales(ctx, weeklyHistory(50, 12), 3)
		done <- outcome{fc, err}
	}()

	// Publish a newer model while the rollout is still on version 1.
	<-gate.entered
	if _, err := e.forecaster.Train(ctx, weeklyHistory(60, 40)); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	close(gate.release)

	got := <-done
	if got.err != nil {
		t.Fatalf("ForecastSales() error = %v", got.err)
	}
	if got.fc.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", got.fc.ModelVersion)
	}
	if v := e.Status().Forecast.Version; v != 2 {
		t.Errorf("Status().Forecast.Version = %d, want 2", v)
	}
}

func TestForecastSalesInsufficientData(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), Dependencies{})

	_, err := e.ForecastSales(context.Background(), weeklyHistory(30, 5), 7)
	if !errors.Is(err, ml.ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
	if e.Status().Forecast.Published {
		t.Error("failed call published a model")
	}
}

func TestForecastSalesTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ForecastTimeout = 20 * time.Millisecond
	blocking := &blockingRegressor{started: make(chan struct{}, 1)}
	e := newTestEngine(t, cfg, Dependencies{
		ForecastRegressor: func() ml.Regressor { return blocking },
	})

	_, err := e.ForecastSales(context.Background(), weeklyHistory(40, 5), 3)
	if !errors.Is(err, ml.ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if e.Status().Forecast.Published {
		t.Error("timed out training published a model")
	}
}

func TestRecommendProducts(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), Dependencies{})
	products := []recommend.Product{
		{ID: "p1", Name: "Espresso", Category: "coffee", Price: 12},
		{ID: "p2", Name: "Filter", Category: "coffee", Price: 14},
	}
	txns := []recommend.Transaction{
		{CustomerID: "A", ProductID: "p1", Quantity: 2},
		{CustomerID: "B", ProductID: "p1", Quantity: 1},
		{CustomerID: "B", ProductID: "p2", Quantity: 3},
	}

	res, err := e.RecommendProducts(context.Background(), "A", products, txns, 0)
	if err != nil {
		t.Fatalf("RecommendProducts() error = %v", err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Product.ID != "p2" {
		t.Fatalf("candidates = %+v, want p2 first", res.Candidates)
	}
	for _, c := range res.Candidates {
		if c.Product.ID == "p1" {
			t.Error("already purchased p1 was recommended")
		}
	}
}

func TestRecommendProductsInvalidInput(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), Dependencies{})

	_, err := e.RecommendProducts(context.Background(), "", nil, nil, 5)
	if !errors.Is(err, ml.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestPredictDemand(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), Dependencies{})
	product := recommend.Product{ID: "p1", Name: "Widget", Category: "tools", Price: 9.99}

	pred, err := e.PredictDemand(context.Background(), product, weeklyHistory(40, 30),
		map[string]float64{"seasonality": 1.1, "weather": 0.4, "trend": 0.2})
	if err != nil {
		t.Fatalf("PredictDemand() error = %v", err)
	}
	if pred.PredictedDemand < 0 || pred.Confidence < 0 || pred.Confidence > 100 {
		t.Errorf("prediction out of range: %+v", pred)
	}
	if len(pred.Factors) != 7 {
		t.Errorf("got %d factors, want 7", len(pred.Factors))
	}
	if len(pred.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", pred.Warnings)
	}
}

func TestStoredDataWithoutProvider(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), Dependencies{})
	ctx := context.Background()

	if _, err := e.ForecastProduct(ctx, "p1", 7); !errors.Is(err, ErrNoDataProvider) {
		t.Errorf("ForecastProduct() error = %v", err)
	}
	if _, err := e.RecommendForCustomer(ctx, "A", 5); !errors.Is(err, ErrNoDataProvider) {
		t.Errorf("RecommendForCustomer() error = %v", err)
	}
	if _, err := e.PredictProductDemand(ctx, "p1"); !errors.Is(err, ErrNoDataProvider) {
		t.Errorf("PredictProductDemand() error = %v", err)
	}
	if err := e.StartTraining(); !errors.Is(err, ErrNoDataProvider) {
		t.Errorf("StartTraining() error = %v", err)
	}
}

func testData() *memData {
	return &memData{
		products: map[string]recommend.Product{
			"p1": {ID: "p1", Name: "Widget", Category: "tools", Price: 9.99},
			"p2": {ID: "p2", Name: "Gadget", Category: "tools", Price: 19.99, Tags: []string{"new"}},
		},
		sales: map[string][]forecast.TimeSeriesPoint{
			"p1": weeklyHistory(50, 12),
			"p2": weeklyHistory(50, 40),
		},
		txns: []recommend.Transaction{
			{CustomerID: "A", ProductID: "p1", Quantity: 1},
			{CustomerID: "B", ProductID: "p1", Quantity: 2},
			{CustomerID: "B", ProductID: "p2", Quantity: 1},
		},
	}
}

func TestTrainFromStoredData(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), Dependencies{Data: testData()})

	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	st := e.Status()
	if !st.Forecast.Published || !st.Demand.Published {
		t.Fatalf("status = %+v, want both models published", st)
	}
	if st.Training.Running || st.Training.Runs != 1 || st.Training.LastError != "" {
		t.Errorf("training status = %+v", st.Training)
	}

	fc, err := e.ForecastProduct(context.Background(), "p2", 5)
	if err != nil {
		t.Fatalf("ForecastProduct() error = %v", err)
	}
	if len(fc.Results) != 5 || fc.ModelVersion != st.Forecast.Version {
		t.Fatalf("ForecastProduct() = %d results at version %d, want 5 at %d", len(fc.Results), fc.ModelVersion, st.Forecast.Version)
	}

	rec, err := e.RecommendForCustomer(context.Background(), "A", 5)
	if err != nil {
		t.Fatalf("RecommendForCustomer() error = %v", err)
	}
	if len(rec.Candidates) == 0 || rec.Candidates[0].Product.ID != "p2" {
		t.Errorf("candidates = %+v, want p2 first", rec.Candidates)
	}
}

func TestPredictProductDemandFeedDown(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), Dependencies{Data: testData(), Factors: failingFactors{}})

	pred, err := e.PredictProductDemand(context.Background(), "p1")
	if err != nil {
		t.Fatalf("PredictProductDemand() error = %v", err)
	}
	if len(pred.Warnings) != 3 {
		t.Errorf("warnings = %v, want one per missing external factor", pred.Warnings)
	}

	if _, err := e.PredictProductDemand(context.Background(), "nope"); !errors.Is(err, errNotFound) {
		t.Errorf("unknown product error = %v, want not found", err)
	}
}

func TestStartTrainingExclusive(t *testing.T) {
	blocking := &blockingRegressor{started: make(chan struct{}, 1)}
	e, err := New(DefaultConfig(), Dependencies{
		Data:              testData(),
		ForecastRegressor: func() ml.Regressor { return blocking },
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := e.StartTraining(); err != nil {
		t.Fatalf("StartTraining() error = %v", err)
	}

	select {
	case <-blocking.started:
	case <-time.After(5 * time.Second):
		t.Fatal("training never started")
	}

	if err := e.StartTraining(); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("second StartTraining() error = %v, want ErrTrainingInProgress", err)
	}
	if err := e.Train(context.Background()); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("Train() during run error = %v, want ErrTrainingInProgress", err)
	}
	if !e.Status().Training.Running {
		t.Error("status does not report the running training")
	}

	// Close cancels the background run.
	e.Close()

	st := e.Status()
	if st.Training.Running {
		t.Error("training still running after Close")
	}
	if st.Forecast.Published {
		t.Error("cancelled run published a forecast model")
	}
	if !strings.Contains(st.Training.LastError, "canceled") {
		t.Errorf("last error = %q, want cancellation", st.Training.LastError)
	}
}
