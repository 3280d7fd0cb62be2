// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package ml

import (
	"errors"
	"math"
	"testing"
)

func TestStandardize_RoundTrip(t *testing.T) {
	t.Parallel()

	x := Matrix{
		{1, 10, -3},
		{2, 20, 0.5},
		{4, 15, 7},
		{8, 5, 2},
	}

	scaled, err := Standardize(x)
	if err != nil {
		t.Fatalf("Standardize() error = %v", err)
	}
	if w := scaled.Params.Width(); w != 3 {
		t.Fatalf("Width() = %d, want 3", w)
	}

	for j := 0; j < 3; j++ {
		col := make([]float64, len(scaled.Data))
		for i := range scaled.Data {
			col[i] = scaled.Data[i][j]
		}
		if m := Mean(col); math.Abs(m) > 1e-12 {
			t.Errorf("column %d mean = %g, want 0", j, m)
		}
		if s := StdDev(col); math.Abs(s-1) > 1e-12 {
			t.Errorf("column %d std = %g, want 1", j, s)
		}
	}

	back, err := InverseStandardize(scaled, scaled.Params)
	if err != nil {
		t.Fatalf("InverseStandardize() error = %v", err)
	}
	for i := range x {
		for j := range x[i] {
			if math.Abs(x[i][j]-back[i][j]) > 1e-9 {
				t.Errorf("back[%d][%d] = %g, want %g", i, j, back[i][j], x[i][j])
			}
		}
	}
}

func TestStandardize_ConstantColumnGuard(t *testing.T) {
	t.Parallel()

	x := Matrix{{5, 1}, {5, 2}, {5, 3}}

	scaled, err := Standardize(x)
	if err != nil {
		t.Fatalf("Standardize() error = %v", err)
	}
	if scaled.Params.Std[0] != 1 {
		t.Errorf("Std[0] = %g, want 1", scaled.Params.Std[0])
	}
	for i, row := range scaled.Data {
		if row[0] != 0 {
			t.Errorf("row %d constant column = %g, want 0", i, row[0])
		}
	}

	if _, err := StandardizeStrict(x); !errors.Is(err, ErrScaling) {
		t.Errorf("StandardizeStrict() error = %v, want ErrScaling", err)
	}
}

func TestStandardize_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		x    Matrix
	}{
		{"empty", Matrix{}},
		{"zero columns", Matrix{{}}},
		{"ragged", Matrix{{1, 2}, {3}}},
		{"nan", Matrix{{1, math.NaN()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Standardize(tt.x); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Standardize() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestInverseStandardize_RejectsMismatchedParams(t *testing.T) {
	t.Parallel()

	a, err := Standardize(Matrix{{1, 10}, {3, 30}})
	if err != nil {
		t.Fatalf("Standardize(a) error = %v", err)
	}
	b, err := Standardize(Matrix{{100, 1000}, {300, 3000}})
	if err != nil {
		t.Fatalf("Standardize(b) error = %v", err)
	}

	tests := []struct {
		name   string
		origin Standardized
		params ScalerParams
	}{
		{"missing params", a, ScalerParams{}},
		{"hand-built params", a, ScalerParams{Mean: []float64{0, 0}, Std: []float64{1, 1}}},
		{"params of another call with the same width", a, b.Params},
		{"hand-built batch", Standardized{Data: Matrix{{0, 0}}, Params: a.Params}, a.Params},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := InverseStandardize(tt.origin, tt.params); !errors.Is(err, ErrScaling) {
				t.Errorf("InverseStandardize() error = %v, want ErrScaling", err)
			}
			if _, err := InverseStandardizeColumn([]float64{0}, tt.origin, tt.params, 0); !errors.Is(err, ErrScaling) {
				t.Errorf("InverseStandardizeColumn() error = %v, want ErrScaling", err)
			}
		})
	}

	t.Run("width mismatch", func(t *testing.T) {
		wide := a
		wide.Data = Matrix{{0, 0, 0}}
		if _, err := InverseStandardize(wide, a.Params); !errors.Is(err, ErrScaling) {
			t.Errorf("InverseStandardize() error = %v, want ErrScaling", err)
		}
	})

	t.Run("column out of range", func(t *testing.T) {
		if _, err := InverseStandardizeColumn([]float64{0}, a, a.Params, 2); !errors.Is(err, ErrScaling) {
			t.Errorf("InverseStandardizeColumn() error = %v, want ErrScaling", err)
		}
	})

	t.Run("matching params", func(t *testing.T) {
		got, err := InverseStandardizeColumn([]float64{0}, a, a.Params, 1)
		if err != nil {
			t.Fatalf("InverseStandardizeColumn() error = %v", err)
		}
		if math.Abs(got[0]-20) > 1e-12 {
			t.Errorf("got %g, want 20", got[0])
		}
	})
}

func TestScalerParams_Apply(t *testing.T) {
	t.Parallel()

	scaled, err := Standardize(Matrix{{0}, {10}})
	if err != nil {
		t.Fatalf("Standardize() error = %v", err)
	}

	got, err := scaled.Params.Apply(Matrix{{5}, {15}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if math.Abs(got[0][0]) > 1e-12 {
		t.Errorf("got[0][0] = %g, want 0", got[0][0])
	}
	if math.Abs(got[1][0]-2) > 1e-12 {
		t.Errorf("got[1][0] = %g, want 2", got[1][0])
	}
}
