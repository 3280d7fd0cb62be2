// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// Helper function to create an in-memory store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func day(s string) time.Time {
	d, err := time.Parse(forecast.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestProducts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, p := range []recommend.Product{
		{ID: "sku-2", Name: "Kettle", Category: "kitchen", Price: 30, Tags: []string{"steel"}},
		{ID: "sku-1", Name: "Mug", Category: "kitchen", Price: 8},
	} {
		if err := s.PutProduct(ctx, p); err != nil {
			t.Fatalf("PutProduct(%s) error = %v", p.ID, err)
		}
	}

	got, err := s.GetProduct(ctx, "sku-2")
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if got.Name != "Kettle" || got.Price != 30 || len(got.Tags) != 1 {
		t.Errorf("GetProduct() = %+v", got)
	}

	if _, err := s.GetProduct(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProduct(missing) error = %v, want ErrNotFound", err)
	}

	list, err := s.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "sku-1" || list[1].ID != "sku-2" {
		t.Errorf("ListProducts() = %+v, want sku-1, sku-2", list)
	}

	// Replace
	if err := s.PutProduct(ctx, recommend.Product{ID: "sku-1", Name: "Big Mug", Price: 9}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetProduct(ctx, "sku-1")
	if got.Name != "Big Mug" {
		t.Errorf("product not replaced: %+v", got)
	}
}

func TestPutProductInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []recommend.Product{
		{ID: ""},
		{ID: "a:b"},
		{ID: "neg", Price: -1},
	}
	for _, p := range tests {
		t.Run(fmt.Sprintf("%q", p.ID), func(t *testing.T) {
			if err := s.PutProduct(ctx, p); !errors.Is(err, ml.ErrInvalidInput) {
				t.Errorf("PutProduct() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRecordSaleAccumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordSale(ctx, "p1", forecast.TimeSeriesPoint{Date: day("2026-03-01"), Sales: 3}); err != nil {
		t.Fatal(err)
	}
	// Same day, later in the day, with a promotion.
	later := day("2026-03-01").Add(15 * time.Hour)
	if err := s.RecordSale(ctx, "p1", forecast.TimeSeriesPoint{Date: later, Sales: 2, HasPromotion: true}); err != nil {
		t.Fatal(err)
	}

	history, err := s.SalesHistory(ctx, "p1")
	if err != nil {
		t.Fatalf("SalesHistory() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history has %d points, want 1", len(history))
	}
	if history[0].Sales != 5 || !history[0].HasPromotion {
		t.Errorf("point = %+v, want 5 sales with promotion", history[0])
	}
}

func TestSalesHistoryFillsGaps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Recorded out of order, with a two-day gap.
	for _, p := range []forecast.TimeSeriesPoint{
		{Date: day("2026-03-04"), Sales: 7},
		{Date: day("2026-03-01"), Sales: 4, IsHoliday: true},
	} {
		if err := s.RecordSale(ctx, "p1", p); err != nil {
			t.Fatal(err)
		}
	}

	history, err := s.SalesHistory(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{4, 0, 0, 7}
	if len(history) != len(want) {
		t.Fatalf("history = %+v, want %d points", history, len(want))
	}
	for i, w := range want {
		if history[i].Sales != w {
			t.Errorf("day %d sales = %v, want %v", i, history[i].Sales, w)
		}
		if wantDate := day("2026-03-01").AddDate(0, 0, i); !history[i].Date.Equal(wantDate) {
			t.Errorf("day %d date = %s, want %s", i, history[i].Date, wantDate)
		}
	}
	if !history[0].IsHoliday {
		t.Error("holiday flag lost")
	}
	if err := forecast.ValidateHistory(history); err != nil {
		t.Errorf("history is not a valid series: %v", err)
	}

	empty, err := s.SalesHistory(ctx, "unknown")
	if err != nil || len(empty) != 0 {
		t.Errorf("SalesHistory(unknown) = %v, %v", empty, err)
	}
}

func TestRecordSaleInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cases := map[string]struct {
		product string
		point   forecast.TimeSeriesPoint
	}{
		"no product":     {"", forecast.TimeSeriesPoint{Date: day("2026-01-01"), Sales: 1}},
		"negative sales": {"p1", forecast.TimeSeriesPoint{Date: day("2026-01-01"), Sales: -1}},
		"no date":        {"p1", forecast.TimeSeriesPoint{Sales: 1}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if err := s.RecordSale(ctx, tc.product, tc.point); !errors.Is(err, ml.ErrInvalidInput) {
				t.Errorf("RecordSale() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAllSalesHistories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []struct {
		product string
		date    string
		sales   float64
	}{
		{"a", "2026-01-01", 1},
		{"a", "2026-01-03", 3},
		{"a2", "2026-01-02", 5},
		{"b", "2026-01-01", 2},
	}
	for _, r := range records {
		if err := s.RecordSale(ctx, r.product, forecast.TimeSeriesPoint{Date: day(r.date), Sales: r.sales}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.AllSalesHistories(ctx)
	if err != nil {
		t.Fatalf("AllSalesHistories() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d products, want 3", len(all))
	}
	if len(all["a"]) != 3 || all["a"][1].Sales != 0 {
		t.Errorf("history a = %+v, want gap-filled 3 days", all["a"])
	}
	if len(all["a2"]) != 1 || all["a2"][0].Sales != 5 {
		t.Errorf("history a2 = %+v", all["a2"])
	}
}

func TestTransactions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	txns := []recommend.Transaction{
		{CustomerID: "c2", ProductID: "p1", Quantity: 1},
		{CustomerID: "c1", ProductID: "p1", Quantity: 2},
		{CustomerID: "c1", ProductID: "p2", Quantity: 1, Timestamp: day("2026-02-01")},
	}
	ids := make(map[string]bool)
	for _, txn := range txns {
		id, err := s.RecordTransaction(ctx, txn)
		if err != nil {
			t.Fatalf("RecordTransaction() error = %v", err)
		}
		ids[id] = true
	}
	if len(ids) != 3 {
		t.Errorf("transaction ids not unique: %v", ids)
	}

	all, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("ListTransactions() returned %d, want 3", len(all))
	}
	for _, txn := range all {
		if txn.Timestamp.IsZero() {
			t.Errorf("timestamp not defaulted: %+v", txn)
		}
	}

	c1, err := s.CustomerTransactions(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(c1) != 2 {
		t.Errorf("CustomerTransactions(c1) returned %d, want 2", len(c1))
	}

	m, warnings := recommend.BuildMatrix(all)
	if len(warnings) != 0 || m.Get("c1", "p1") != 2 {
		t.Errorf("stored transactions do not build the expected matrix: %v %v", m, warnings)
	}
}

func TestRecordTransactionInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, txn := range []recommend.Transaction{
		{ProductID: "p1", Quantity: 1},
		{CustomerID: "c1", Quantity: 1},
		{CustomerID: "c1", ProductID: "p1", Quantity: 0},
	} {
		if _, err := s.RecordTransaction(ctx, txn); !errors.Is(err, ml.ErrInvalidInput) {
			t.Errorf("RecordTransaction(%+v) error = %v, want ErrInvalidInput", txn, err)
		}
	}
}

func TestConcurrentRecordSale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.RecordSale(ctx, "p1", forecast.TimeSeriesPoint{Date: day("2026-05-05"), Sales: 1})
		}()
	}
	wg.Wait()
	close(errs)

	failed := 0
	for err := range errs {
		if err != nil {
			failed++
		}
	}

	history, err := s.SalesHistory(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got := history[0].Sales; got != float64(20-failed) {
		t.Errorf("sales = %v, want %d (one per successful write)", got, 20-failed)
	}
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.PutProduct(ctx, recommend.Product{ID: "p1"}); !errors.Is(err, context.Canceled) {
		t.Errorf("PutProduct() error = %v, want context.Canceled", err)
	}
	if err := s.RecordSale(ctx, "p1", forecast.TimeSeriesPoint{Date: day("2026-01-01"), Sales: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("RecordSale() error = %v, want context.Canceled", err)
	}
}

func TestHealthy(t *testing.T) {
	s, err := Open(Config{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if !s.Healthy() {
		t.Error("open store reports unhealthy")
	}
	_ = s.Close()
	if s.Healthy() {
		t.Error("closed store reports healthy")
	}
}

func TestPutTransactionIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	txn := recommend.Transaction{CustomerID: "c1", ProductID: "p1", Quantity: 1}
	for i := 0; i < 3; i++ {
		if err := s.PutTransaction(ctx, "msg-1", txn); err != nil {
			t.Fatalf("PutTransaction() error = %v", err)
		}
	}

	all, err := s.CustomerTransactions(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("got %d transactions, want 1 after repeated writes", len(all))
	}
}
