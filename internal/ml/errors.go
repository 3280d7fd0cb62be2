// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package ml

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the prediction core. Callers match them with errors.Is;
// every returned error wraps exactly one of them.
var (
	// ErrInsufficientData indicates the history is shorter than the model window.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrScaling indicates an inverse transform with missing or mismatched
	// scaler params, or a degenerate column under strict standardization.
	ErrScaling = errors.New("scaling error")

	// ErrModelUnavailable indicates there is no trained regressor and
	// training failed or was skipped.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrTimeout indicates the operation exceeded the caller's deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidInput indicates malformed or mismatched-length input.
	ErrInvalidInput = errors.New("invalid input")
)

// FromContext converts a context error into the taxonomy. A deadline becomes
// ErrTimeout; cancellation is returned unchanged so callers can tell the two
// apart. Non-context errors pass through.
func FromContext(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// CheckContext returns the taxonomy error for ctx if it is done.
func CheckContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return FromContext(ctx.Err())
	default:
		return nil
	}
}
