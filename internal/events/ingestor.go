// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/logging"
	"github.com/tomtom215/stockcast/internal/metrics"
	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// Sink persists consumed events.
type Sink interface {
	PutProduct(ctx context.Context, p recommend.Product) error
	RecordSale(ctx context.Context, productID string, point forecast.TimeSeriesPoint) error
	PutTransaction(ctx context.Context, id string, t recommend.Transaction) error
}

// Invalidator drops cached results that depend on sales history.
type Invalidator interface {
	InvalidateForecasts()
}

// Ingestor consumes event topics into a Sink. It implements suture.Service.
type Ingestor struct {
	cfg    Config
	sub    message.Subscriber
	poison message.Publisher
	sink   Sink
	inv    Invalidator
	logger zerolog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// NewIngestor creates an ingestor reading from sub. poison receives
// messages that exhaust their retries; nil disables the poison queue and
// such messages are nacked back to the subscriber. inv may be nil.
//
//nolint:gocritic // hugeParam: logger passed by value per zerolog convention
func NewIngestor(cfg Config, sub message.Subscriber, poison message.Publisher, sink Sink, inv Invalidator, logger zerolog.Logger) *Ingestor {
	return &Ingestor{
		cfg:    cfg,
		sub:    sub,
		poison: poison,
		sink:   sink,
		inv:    inv,
		logger: logger.With().Str("service", "ingestor").Logger(),
		ready:  make(chan struct{}),
	}
}

// Running returns a channel that is closed once the first router has
// subscribed to every topic.
func (i *Ingestor) Running() <-chan struct{} {
	return i.ready
}

// Serve runs the router until ctx is cancelled.
func (i *Ingestor) Serve(ctx context.Context) error {
	router, err := i.newRouter()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-router.Running():
			i.readyOnce.Do(func() { close(i.ready) })
		case <-ctx.Done():
		}
	}()

	i.logger.Info().Msg("event ingestor starting")
	err = router.Run(ctx)

	if ctx.Err() != nil {
		i.logger.Info().Msg("event ingestor shutting down")
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return errors.New("event router stopped unexpectedly")
}

// String returns the service name for logging.
func (i *Ingestor) String() string {
	return "event-ingestor"
}

func (i *Ingestor) newRouter() (*message.Router, error) {
	wmLogger := logging.NewWatermillAdapter(i.logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: i.cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Middleware order (outer to inner): poison queue, recoverer, retry.
	if i.poison != nil {
		poisonQueue, err := middleware.PoisonQueue(i.poison, PoisonTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		router.AddMiddleware(poisonQueue)
	}
	router.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      i.cfg.RetryCount,
		InitialInterval: i.cfg.RetryInitialInterval,
		MaxInterval:     10 * i.cfg.RetryInitialInterval,
		Multiplier:      2.0,
		Logger:          wmLogger,
	}
	router.AddMiddleware(retry.Middleware)

	router.AddConsumerHandler("products", TopicProductsUpserted, i.sub, i.handleProduct)
	router.AddConsumerHandler("sales", TopicSalesRecorded, i.sub, i.handleSale)
	router.AddConsumerHandler("transactions", TopicTransactionsRecorded, i.sub, i.handleTransaction)

	return router, nil
}

func (i *Ingestor) handleProduct(msg *message.Message) error {
	var p recommend.Product
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return i.finish(TopicProductsUpserted, msg, fmt.Errorf("%w: decode payload: %w", ml.ErrInvalidInput, err))
	}
	return i.finish(TopicProductsUpserted, msg, i.sink.PutProduct(msg.Context(), p))
}

func (i *Ingestor) handleSale(msg *message.Message) error {
	var e SaleRecorded
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return i.finish(TopicSalesRecorded, msg, fmt.Errorf("%w: decode payload: %w", ml.ErrInvalidInput, err))
	}
	err := i.sink.RecordSale(msg.Context(), e.ProductID, e.Point())
	if err == nil && i.inv != nil {
		i.inv.InvalidateForecasts()
	}
	return i.finish(TopicSalesRecorded, msg, err)
}

func (i *Ingestor) handleTransaction(msg *message.Message) error {
	var t recommend.Transaction
	if err := json.Unmarshal(msg.Payload, &t); err != nil {
		return i.finish(TopicTransactionsRecorded, msg, fmt.Errorf("%w: decode payload: %w", ml.ErrInvalidInput, err))
	}
	// The message UUID keys the record so a redelivery overwrites it.
	return i.finish(TopicTransactionsRecorded, msg, i.sink.PutTransaction(msg.Context(), msg.UUID, t))
}

// finish records the outcome. Invalid payloads are acknowledged because a
// retry cannot fix them; other errors go back to the retry middleware.
func (i *Ingestor) finish(topic string, msg *message.Message, err error) error {
	logger := i.logger.With().
		Str("topic", topic).
		Str("message_id", msg.UUID).
		Str("correlation_id", middleware.MessageCorrelationID(msg)).
		Logger()

	switch {
	case err == nil:
		metrics.EventsProcessed.WithLabelValues(topic, "success").Inc()
		logger.Debug().Msg("Event applied")
		return nil
	case errors.Is(err, ml.ErrInvalidInput):
		metrics.EventsProcessed.WithLabelValues(topic, "invalid").Inc()
		logger.Warn().Err(err).Msg("Dropping invalid event")
		return nil
	default:
		metrics.EventsProcessed.WithLabelValues(topic, "failed").Inc()
		logger.Error().Err(err).Dur("retry_initial_interval", i.cfg.RetryInitialInterval).Msg("Event handler failed")
		return err
	}
}
