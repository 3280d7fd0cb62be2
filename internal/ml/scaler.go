// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package ml

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Matrix is a dense row-major batch: one row per sample, one column per feature.
type Matrix [][]float64

// Dims returns the row and column counts. It fails with ErrInvalidInput for
// an empty batch or ragged rows.
func (m Matrix) Dims() (rows, cols int, err error) {
	if len(m) == 0 {
		return 0, 0, fmt.Errorf("%w: empty matrix", ErrInvalidInput)
	}
	cols = len(m[0])
	if cols == 0 {
		return 0, 0, fmt.Errorf("%w: matrix has zero columns", ErrInvalidInput)
	}
	for i, row := range m {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidInput, i, len(row), cols)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, 0, fmt.Errorf("%w: non-finite value at [%d][%d]", ErrInvalidInput, i, j)
			}
		}
	}
	return len(m), cols, nil
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Flatten concatenates the rows into one vector.
func (m Matrix) Flatten() []float64 {
	if len(m) == 0 {
		return nil
	}
	out := make([]float64, 0, len(m)*len(m[0]))
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

// ScalerParams are the per-column statistics of one standardized batch.
// The zero value is "missing" and is rejected by the inverse transforms.
type ScalerParams struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`

	// token identifies the Standardize call that produced the params.
	token uint64
}

// paramsSeq hands out provenance tokens; zero is never issued.
var paramsSeq atomic.Uint64

// Width returns the number of columns the params describe.
func (p ScalerParams) Width() int {
	return len(p.Mean)
}

// Valid reports whether p came out of a standardize call and is internally consistent.
func (p ScalerParams) Valid() bool {
	if p.token == 0 || len(p.Mean) == 0 || len(p.Mean) != len(p.Std) {
		return false
	}
	for _, s := range p.Std {
		if s <= 0 || math.IsNaN(s) {
			return false
		}
	}
	return true
}

// Standardized is a scaled batch bound to the Standardize call that produced
// it. The inverse transforms reject params from any other call.
type Standardized struct {
	Data   Matrix
	Params ScalerParams

	token uint64
}

// Standardize rescales each column to zero mean and unit variance using the
// batch's own statistics. A constant column (std 0) is guarded by using a
// std of 1, which yields a zero-centred constant column.
func Standardize(x Matrix) (Standardized, error) {
	return standardize(x, true)
}

// StandardizeStrict is Standardize without the constant-column guard: any
// column with zero variance fails with ErrScaling.
func StandardizeStrict(x Matrix) (Standardized, error) {
	return standardize(x, false)
}

func standardize(x Matrix, guard bool) (Standardized, error) {
	rows, cols, err := x.Dims()
	if err != nil {
		return Standardized{}, err
	}

	mean := make([]float64, cols)
	std := make([]float64, cols)

	for _, row := range x {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(rows)
	}

	for _, row := range x {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / float64(rows))
		if std[j] == 0 {
			if !guard {
				return Standardized{}, fmt.Errorf("%w: column %d has zero variance", ErrScaling, j)
			}
			std[j] = 1
		}
	}

	out := make(Matrix, rows)
	for i, row := range x {
		scaled := make([]float64, cols)
		for j, v := range row {
			scaled[j] = (v - mean[j]) / std[j]
		}
		out[i] = scaled
	}

	token := paramsSeq.Add(1)
	return Standardized{
		Data:   out,
		Params: ScalerParams{Mean: mean, Std: std, token: token},
		token:  token,
	}, nil
}

// Apply standardizes x with existing params, e.g. a prediction batch against
// the params learned at training time.
func (p ScalerParams) Apply(x Matrix) (Matrix, error) {
	if err := p.check(x); err != nil {
		return nil, err
	}
	out := make(Matrix, len(x))
	for i, row := range x {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - p.Mean[j]) / p.Std[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// InverseStandardize maps s back to original units. p must be the params of
// the call that produced s.
func InverseStandardize(s Standardized, p ScalerParams) (Matrix, error) {
	if err := p.matches(s); err != nil {
		return nil, err
	}
	if err := p.check(s.Data); err != nil {
		return nil, err
	}
	out := make(Matrix, len(s.Data))
	for i, row := range s.Data {
		orig := make([]float64, len(row))
		for j, v := range row {
			orig[j] = v*p.Std[j] + p.Mean[j]
		}
		out[i] = orig
	}
	return out, nil
}

// InverseStandardizeColumn maps values expressed in the scale of column col
// of origin back to original units, e.g. a regressor output for a window.
// p must be the params of the call that produced origin.
func InverseStandardizeColumn(values []float64, origin Standardized, p ScalerParams, col int) ([]float64, error) {
	if err := p.matches(origin); err != nil {
		return nil, err
	}
	if col < 0 || col >= p.Width() {
		return nil, fmt.Errorf("%w: column %d outside params width %d", ErrScaling, col, p.Width())
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v*p.Std[col] + p.Mean[col]
	}
	return out, nil
}

// StandardizeValue scales a single value of column col with p.
func (p ScalerParams) StandardizeValue(v float64, col int) (float64, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("%w: scaler params missing or not produced by standardize", ErrScaling)
	}
	if col < 0 || col >= p.Width() {
		return 0, fmt.Errorf("%w: column %d outside params width %d", ErrScaling, col, p.Width())
	}
	return (v - p.Mean[col]) / p.Std[col], nil
}

func (p ScalerParams) matches(s Standardized) error {
	if !p.Valid() {
		return fmt.Errorf("%w: scaler params missing or not produced by standardize", ErrScaling)
	}
	if s.token == 0 || p.token != s.token {
		return fmt.Errorf("%w: scaler params come from a different standardize call", ErrScaling)
	}
	return nil
}

func (p ScalerParams) check(x Matrix) error {
	if !p.Valid() {
		return fmt.Errorf("%w: scaler params missing or not produced by standardize", ErrScaling)
	}
	_, cols, err := x.Dims()
	if err != nil {
		return err
	}
	if cols != p.Width() {
		return fmt.Errorf("%w: data has %d columns, params describe %d", ErrScaling, cols, p.Width())
	}
	return nil
}
