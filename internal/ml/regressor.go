// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package ml

import (
	"context"
	"fmt"
)

// Regressor is the trainable capability behind the forecaster and the demand
// predictor. Fit minimizes squared error between predictions and y. A fitted
// regressor must be safe for concurrent Predict calls and must not be
// refitted once published.
type Regressor interface {
	Fit(ctx context.Context, x Matrix, y []float64) error
	Predict(x Matrix) ([]float64, error)
}

// RegressorFactory returns a new, unfitted regressor for each training run.
type RegressorFactory func() Regressor

// Ridge is an L2-regularized linear regression solved in closed form on the
// centred normal equations. It is the default baseline regressor.
type Ridge struct {
	lambda    float64
	weights   []float64
	intercept float64
	fitted    bool
}

// DefaultRidgeLambda is the L2 penalty used when none is configured.
const DefaultRidgeLambda = 1.0

// NewRidge creates an unfitted ridge regressor.
func NewRidge(lambda float64) *Ridge {
	if lambda <= 0 {
		lambda = DefaultRidgeLambda
	}
	return &Ridge{lambda: lambda}
}

// RidgeFactory returns a factory producing ridge regressors with lambda.
func RidgeFactory(lambda float64) RegressorFactory {
	return func() Regressor { return NewRidge(lambda) }
}

// Fit solves (X'X + lambda*I) w = X'y on mean-centred data.
func (r *Ridge) Fit(ctx context.Context, x Matrix, y []float64) error {
	rows, cols, err := x.Dims()
	if err != nil {
		return err
	}
	if len(y) != rows {
		return fmt.Errorf("%w: %d samples but %d targets", ErrInvalidInput, rows, len(y))
	}

	xMean := make([]float64, cols)
	for _, row := range x {
		for j, v := range row {
			xMean[j] += v
		}
	}
	for j := range xMean {
		xMean[j] /= float64(rows)
	}
	yMean := Mean(y)

	xtx := make([][]float64, cols)
	for i := range xtx {
		xtx[i] = make([]float64, cols)
	}
	xty := make([]float64, cols)

	centred := make([]float64, cols)
	for n, row := range x {
		if n%256 == 0 {
			if err := CheckContext(ctx); err != nil {
				return err
			}
		}
		for j, v := range row {
			centred[j] = v - xMean[j]
		}
		dy := y[n] - yMean
		for i := 0; i < cols; i++ {
			ci := centred[i]
			if ci == 0 {
				continue
			}
			xty[i] += ci * dy
			rowI := xtx[i]
			for j := 0; j <= i; j++ {
				rowI[j] += ci * centred[j]
			}
		}
	}

	for i := 0; i < cols; i++ {
		for j := 0; j < i; j++ {
			xtx[j][i] = xtx[i][j]
		}
		xtx[i][i] += r.lambda
	}

	if err := CheckContext(ctx); err != nil {
		return err
	}

	w := SolveSPD(xtx, xty)
	r.weights = w
	r.intercept = yMean - Dot(w, xMean)
	r.fitted = true
	return nil
}

// Predict returns one prediction per row.
func (r *Ridge) Predict(x Matrix) ([]float64, error) {
	if !r.fitted {
		return nil, fmt.Errorf("%w: ridge regressor not fitted", ErrModelUnavailable)
	}
	_, cols, err := x.Dims()
	if err != nil {
		return nil, err
	}
	if cols != len(r.weights) {
		return nil, fmt.Errorf("%w: got %d features, model expects %d", ErrInvalidInput, cols, len(r.weights))
	}
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = Dot(r.weights, row) + r.intercept
	}
	return out, nil
}

// Weights returns a copy of the fitted coefficients.
func (r *Ridge) Weights() []float64 {
	return append([]float64(nil), r.weights...)
}

// Intercept returns the fitted bias term.
func (r *Ridge) Intercept() float64 {
	return r.intercept
}

var _ Regressor = (*Ridge)(nil)
