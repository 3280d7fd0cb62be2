// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package ml

import (
	"sync/atomic"
	"time"
)

// Snapshot is an immutable, versioned handle on a fitted regressor.
type Snapshot struct {
	// Model is the fitted regressor. It is never refitted after publication.
	Model Regressor

	// Scaler holds input scaling learned at training time, when the model
	// needs one. The forecaster standardizes per window and leaves it zero.
	Scaler ScalerParams

	// Version increases by one with every publication on the same Slot.
	Version uint64

	// TrainedAt is when the snapshot was published.
	TrainedAt time.Time

	// Samples is the number of training samples the model was fitted on.
	Samples int
}

// Slot publishes snapshots with copy-on-publish semantics. Readers never
// block; a training run that fails or is cancelled simply never publishes.
type Slot struct {
	current atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, or nil when nothing is published.
func (s *Slot) Load() *Snapshot {
	return s.current.Load()
}

// Publish installs a fitted model as the new current snapshot. Its version is
// one above the snapshot it replaces, so concurrent publishers never install
// versions out of order.
func (s *Slot) Publish(model Regressor, scaler ScalerParams, samples int) *Snapshot {
	snap := &Snapshot{
		Model:     model,
		Scaler:    scaler,
		TrainedAt: time.Now(),
		Samples:   samples,
	}
	for {
		prev := s.current.Load()
		snap.Version = prev.VersionOrZero() + 1
		if s.current.CompareAndSwap(prev, snap) {
			return snap
		}
	}
}

// Version returns the version of the current snapshot, or 0.
func (s *Slot) Version() uint64 {
	if snap := s.current.Load(); snap != nil {
		return snap.Version
	}
	return 0
}

// VersionOrZero returns the snapshot version, or 0 for a nil snapshot.
func (s *Snapshot) VersionOrZero() uint64 {
	if s == nil {
		return 0
	}
	return s.Version
}
