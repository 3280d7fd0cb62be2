// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/logging"
)

// Topic names
const (
	TopicProductsUpserted     = "products.upserted"
	TopicSalesRecorded        = "sales.recorded"
	TopicTransactionsRecorded = "transactions.recorded"

	// PoisonTopic receives messages that failed after all retries.
	PoisonTopic = "events.poison"
)

// Config holds pub/sub and router settings.
type Config struct {
	// BufferSize is the per-subscriber output channel buffer.
	BufferSize int64

	// RetryCount is the number of retries after the first failed attempt.
	RetryCount           int
	RetryInitialInterval time.Duration

	// CloseTimeout bounds how long the router waits for in-flight handlers.
	CloseTimeout time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:           1024,
		RetryCount:           3,
		RetryInitialInterval: 100 * time.Millisecond,
		CloseTimeout:         10 * time.Second,
	}
}

// SaleRecorded is the payload of TopicSalesRecorded: units of one product
// sold on one day.
type SaleRecorded struct {
	ProductID    string    `json:"product_id"`
	Date         time.Time `json:"date"`
	Quantity     float64   `json:"quantity"`
	IsHoliday    bool      `json:"is_holiday,omitempty"`
	HasPromotion bool      `json:"has_promotion,omitempty"`
}

// Point converts the event to a history point.
func (e SaleRecorded) Point() forecast.TimeSeriesPoint {
	return forecast.TimeSeriesPoint{
		Date:         forecast.Day(e.Date),
		Sales:        e.Quantity,
		IsHoliday:    e.IsHoliday,
		HasPromotion: e.HasPromotion,
	}
}

// NewBus creates the in-process pub/sub shared by the Publisher and the
// Ingestor. Messages are not persisted: events published while no
// subscriber is attached are dropped.
//
//nolint:gocritic // hugeParam: logger passed by value per zerolog convention
func NewBus(cfg Config, logger zerolog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: cfg.BufferSize},
		logging.NewWatermillAdapter(logger.With().Str("component", "pubsub").Logger()),
	)
}
