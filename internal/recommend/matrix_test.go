// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package recommend

import (
	"math"
	"reflect"
	"testing"
)

func TestBuildMatrix(t *testing.T) {
	t.Parallel()

	m, warnings := BuildMatrix([]Transaction{
		{CustomerID: "A", ProductID: "p1", Quantity: 2},
		{CustomerID: "B", ProductID: "p1", Quantity: 1},
		{CustomerID: "B", ProductID: "p2", Quantity: 1},
		{CustomerID: "B", ProductID: "p2", Quantity: 2},
	})

	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	want := InteractionMatrix{
		"A": {"p1": 2},
		"B": {"p1": 1, "p2": 3},
	}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("BuildMatrix() = %v, want %v", m, want)
	}
}

func TestBuildMatrix_SkipsMalformed(t *testing.T) {
	t.Parallel()

	m, warnings := BuildMatrix([]Transaction{
		{CustomerID: "", ProductID: "p1", Quantity: 1},
		{CustomerID: "A", ProductID: "", Quantity: 1},
		{CustomerID: "A", ProductID: "p1", Quantity: 0},
		{CustomerID: "A", ProductID: "p1", Quantity: math.NaN()},
		{CustomerID: "A", ProductID: "p1", Quantity: 4},
	})

	if len(warnings) != 4 {
		t.Fatalf("len(warnings) = %d, want 4", len(warnings))
	}
	for i, w := range warnings {
		if w.Index != i {
			t.Errorf("warnings[%d].Index = %d, want %d", i, w.Index, i)
		}
	}
	if got := m.Get("A", "p1"); got != 4 {
		t.Errorf("Get(A, p1) = %v, want 4", got)
	}
}

func TestInteractionMatrix_Accessors(t *testing.T) {
	t.Parallel()

	m := InteractionMatrix{}
	m.Add("C", "p3", 1)
	m.Add("A", "p1", 2)
	m.Add("A", "p3", 1)

	if got := m.Customers(); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("Customers() = %v", got)
	}
	if got := m.Products(); !reflect.DeepEqual(got, []string{"p1", "p3"}) {
		t.Errorf("Products() = %v", got)
	}
	if m.NonZero() != 3 {
		t.Errorf("NonZero() = %d, want 3", m.NonZero())
	}
	if !m.Purchased("A", "p1") || m.Purchased("C", "p1") || m.Purchased("Z", "p1") {
		t.Error("Purchased() returned wrong result")
	}
	if m.Get("Z", "p9") != 0 {
		t.Error("Get() on absent entry must be 0")
	}
}
