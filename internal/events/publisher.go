// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/logging"
	"github.com/tomtom215/stockcast/internal/metrics"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// Publisher publishes domain events as JSON messages.
type Publisher struct {
	pub    message.Publisher
	logger zerolog.Logger
}

// NewPublisher wraps a watermill publisher.
//
//nolint:gocritic // hugeParam: logger passed by value per zerolog convention
func NewPublisher(pub message.Publisher, logger zerolog.Logger) *Publisher {
	return &Publisher{
		pub:    pub,
		logger: logger.With().Str("component", "publisher").Logger(),
	}
}

// PublishProduct announces a catalog create or replace. It returns the message ID.
func (p *Publisher) PublishProduct(ctx context.Context, product recommend.Product) (string, error) {
	return p.publish(ctx, TopicProductsUpserted, product)
}

// PublishSale announces sold units of a product on a day.
func (p *Publisher) PublishSale(ctx context.Context, sale SaleRecorded) (string, error) {
	return p.publish(ctx, TopicSalesRecorded, sale)
}

// PublishTransaction announces a customer purchase.
func (p *Publisher) PublishTransaction(ctx context.Context, txn recommend.Transaction) (string, error) {
	return p.publish(ctx, TopicTransactionsRecorded, txn)
}

func (p *Publisher) publish(ctx context.Context, topic string, payload any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s event: %w", topic, err)
	}

	msg := message.NewMessage(uuid.New().String(), data)
	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
	}
	middleware.SetCorrelationID(correlationID, msg)

	if err := p.pub.Publish(topic, msg); err != nil {
		return "", fmt.Errorf("publish %s event: %w", topic, err)
	}

	metrics.EventsPublished.WithLabelValues(topic).Inc()
	p.logger.Debug().
		Str("topic", topic).
		Str("message_id", msg.UUID).
		Str("correlation_id", correlationID).
		Msg("Event published")
	return msg.UUID, nil
}
