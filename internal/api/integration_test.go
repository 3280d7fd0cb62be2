// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/engine"
	"github.com/tomtom215/stockcast/internal/events"
	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/recommend"
	"github.com/tomtom215/stockcast/internal/store"
)

// stack is the full write and read path: HTTP -> event bus -> ingestor ->
// badger store -> engine.
type stack struct {
	router http.Handler
	store  *store.Store
	engine *engine.Engine
}

func newStack(t *testing.T) *stack {
	t.Helper()
	logger := zerolog.Nop()

	st, err := store.Open(store.Config{InMemory: true}, logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })

	eng, err := engine.New(engine.DefaultConfig(), engine.Dependencies{Data: st}, logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(eng.Close)

	evCfg := events.DefaultConfig()
	evCfg.RetryInitialInterval = time.Millisecond
	bus := events.NewBus(evCfg, logger)
	t.Cleanup(func() { _ = bus.Close() })

	ing := events.NewIngestor(evCfg, bus, bus, st, eng, logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ing.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("ingestor stopped with %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("ingestor did not stop")
		}
	})
	select {
	case <-ing.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("ingestor did not start")
	}

	h := NewHandler(eng, events.NewPublisher(bus, logger), HandlerConfig{
		Version: "test",
		Checks:  map[string]HealthCheck{"store": st.Healthy},
	})
	return &stack{router: NewRouter(h, testServerConfig()), store: st, engine: eng}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (s *stack) post(t *testing.T, path, body string) {
	t.Helper()
	rec, _ := doRequest(t, s.router, http.MethodPost, path, body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST %s: status = %d, body = %s", path, rec.Code, rec.Body.String())
	}
}

func TestEndToEnd(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	s.post(t, "/api/v1/products", `{"id":"p1","name":"Widget","category":"tools","price":9.99}`)
	s.post(t, "/api/v1/products", `{"id":"p2","name":"Gadget","category":"tools","price":19.99,"tags":["new"]}`)

	const days = 50
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		for id, base := range map[string]int{"p1": 12, "p2": 40} {
			s.post(t, "/api/v1/sales", fmt.Sprintf(`{"product_id":%q,"date":%q,"quantity":%d}`,
				id, d.Format("2006-01-02"), base+3*int(d.Weekday())))
		}
	}

	for _, txn := range []string{
		`{"customer_id":"A","product_id":"p1","quantity":2}`,
		`{"customer_id":"B","product_id":"p1","quantity":1}`,
		`{"customer_id":"B","product_id":"p2","quantity":3}`,
	} {
		s.post(t, "/api/v1/transactions", txn)
	}

	waitFor(t, "ingested data", func() bool {
		histories, err := s.store.AllSalesHistories(ctx)
		if err != nil || len(histories) != 2 {
			return false
		}
		for _, h := range histories {
			if len(h) != days || forecast.ValidateHistory(h) != nil {
				return false
			}
		}
		products, _ := s.store.ListProducts(ctx)
		txns, _ := s.store.ListTransactions(ctx)
		return len(products) == 2 && len(txns) == 3
	})

	rec, _ := doRequest(t, s.router, http.MethodPost, "/api/v1/training", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("training status = %d, body = %s", rec.Code, rec.Body.String())
	}
	waitFor(t, "training run", func() bool {
		st := s.engine.Status()
		return st.Training.Runs == 1 && !st.Training.Running
	})
	if st := s.engine.Status(); !st.Forecast.Published || !st.Demand.Published {
		t.Fatalf("status after training = %+v", st)
	}

	rec, env := doRequest(t, s.router, http.MethodGet, "/api/v1/products/p2/forecast?horizon=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("forecast status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var fc struct {
		ModelVersion uint64                    `json:"model_version"`
		Forecast     []forecast.ForecastResult `json:"forecast"`
	}
	decodeData(t, env, &fc)
	if len(fc.Forecast) != 5 || fc.ModelVersion == 0 {
		t.Fatalf("forecast = %+v", fc)
	}
	wantFirst := start.AddDate(0, 0, days)
	if !fc.Forecast[0].Date.Equal(wantFirst) {
		t.Errorf("first forecast date = %v, want %v", fc.Forecast[0].Date, wantFirst)
	}
	for _, r := range fc.Forecast {
		if r.PredictedSales < 0 || r.Confidence < 0 || r.Confidence > 100 {
			t.Errorf("result out of range: %+v", r)
		}
	}

	rec, env = doRequest(t, s.router, http.MethodGet, "/api/v1/customers/A/recommendations?top_n=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("recommendations status = %d", rec.Code)
	}
	var rc struct {
		Recommendations []recommend.Candidate `json:"recommendations"`
	}
	decodeData(t, env, &rc)
	if len(rc.Recommendations) == 0 || rc.Recommendations[0].Product.ID != "p2" {
		t.Errorf("recommendations = %+v, want p2 first", rc.Recommendations)
	}
	for _, c := range rc.Recommendations {
		if c.Product.ID == "p1" {
			t.Error("purchased product p1 recommended")
		}
	}

	rec, _ = doRequest(t, s.router, http.MethodGet, "/api/v1/products/p1/demand", "")
	if rec.Code != http.StatusOK {
		t.Errorf("demand status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec, _ = doRequest(t, s.router, http.MethodGet, "/api/v1/products/unknown/demand", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown product demand status = %d, want 404", rec.Code)
	}

	rec, env = doRequest(t, s.router, http.MethodGet, "/health", "")
	var health struct {
		Status string `json:"status"`
	}
	decodeData(t, env, &health)
	if rec.Code != http.StatusOK || health.Status != HealthHealthy {
		t.Errorf("health = %d %+v", rec.Code, health)
	}
}
