// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/stockcast/internal/ml"
)

func TestResultLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{fmt.Errorf("forecast: %w", ml.ErrTimeout), "timeout"},
		{context.Canceled, "cancelled"},
		{ml.ErrInvalidInput, "invalid_input"},
		{ml.ErrInsufficientData, "insufficient_data"},
		{fmt.Errorf("%w: %w", ml.ErrModelUnavailable, ml.ErrInsufficientData), "insufficient_data"},
		{ml.ErrModelUnavailable, "unavailable"},
		{ml.ErrScaling, "scaling"},
		{errors.New("disk full"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := ResultLabel(tt.err); got != tt.want {
				t.Errorf("ResultLabel(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestRecordPrediction(t *testing.T) {
	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues(OpForecast, "timeout"))

	RecordPrediction(OpForecast, 5*time.Millisecond, ml.ErrTimeout)

	after := testutil.ToFloat64(PredictionsTotal.WithLabelValues(OpForecast, "timeout"))
	if after != before+1 {
		t.Errorf("timeout counter = %v, want %v", after, before+1)
	}
}

func TestRecordTraining(t *testing.T) {
	RecordTraining("forecast", time.Second, 7, 120, nil)

	if got := testutil.ToFloat64(ModelVersion.WithLabelValues("forecast")); got != 7 {
		t.Errorf("model version gauge = %v, want 7", got)
	}
	if got := testutil.ToFloat64(ModelTrainingSamples.WithLabelValues("forecast")); got != 120 {
		t.Errorf("samples gauge = %v, want 120", got)
	}

	// A failed run leaves the published version alone.
	RecordTraining("forecast", time.Second, 99, 1, errors.New("boom"))
	if got := testutil.ToFloat64(ModelVersion.WithLabelValues("forecast")); got != 7 {
		t.Errorf("model version gauge after failure = %v, want 7", got)
	}
}

func TestRecordStoreOperation(t *testing.T) {
	before := testutil.ToFloat64(StoreErrors.WithLabelValues("record_sale"))
	RecordStoreOperation("record_sale", time.Millisecond, nil)
	RecordStoreOperation("record_sale", time.Millisecond, errors.New("conflict"))
	if got := testutil.ToFloat64(StoreErrors.WithLabelValues("record_sale")); got != before+1 {
		t.Errorf("store errors = %v, want %v", got, before+1)
	}
}
