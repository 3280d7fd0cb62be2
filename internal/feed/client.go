// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/metrics"
)

// BreakerName labels the circuit breaker metrics.
const BreakerName = "factor-feed"

// maxResponseBytes caps the decoded response body.
const maxResponseBytes = 1 << 20

var (
	// ErrUnavailable is returned when the feed cannot be reached, answers
	// with an error status, or the circuit breaker is open.
	ErrUnavailable = errors.New("factor feed unavailable")

	// ErrRateLimited is returned when the local request budget is spent.
	ErrRateLimited = errors.New("factor feed rate limited")
)

// Config holds the feed client settings.
type Config struct {
	Enabled bool
	BaseURL string
	Timeout time.Duration

	// RequestsPerSecond and Burst configure the token bucket.
	RequestsPerSecond float64
	Burst             int

	// BreakerMaxFailures consecutive failures open the breaker for
	// BreakerOpenTimeout before a half-open probe is allowed.
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// Client queries the external factor service.
type Client struct {
	enabled bool
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[map[string]float64]
	logger  zerolog.Logger
}

type factorsResponse struct {
	Factors map[string]float64 `json:"factors"`
}

// New creates a client. A disabled config yields a client that never
// performs network calls.
//
//nolint:gocritic // hugeParam: logger passed by value per zerolog convention
func New(cfg Config, logger zerolog.Logger) *Client {
	logger = logger.With().Str("component", "feed").Logger()

	c := &Client{
		enabled: cfg.Enabled,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger,
	}
	if !cfg.Enabled {
		return c
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0)

	c.cb = gobreaker.NewCircuitBreaker[map[string]float64](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// Caller cancellation says nothing about the health of the feed.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logger.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
	return c
}

// Enabled reports whether the client talks to a remote service.
func (c *Client) Enabled() bool {
	return c.enabled
}

// State returns the breaker state, "disabled" for a disabled client.
func (c *Client) State() string {
	if c.cb == nil {
		return "disabled"
	}
	return stateToString(c.cb.State())
}

// Factors returns the external factors for a product on a day. The returned
// map is never nil on success.
func (c *Client) Factors(ctx context.Context, productID string, date time.Time) (map[string]float64, error) {
	if !c.enabled {
		return map[string]float64{}, nil
	}

	if !c.limiter.Allow() {
		metrics.FeedRequests.WithLabelValues("rate_limited").Inc()
		return nil, ErrRateLimited
	}

	factors, err := c.cb.Execute(func() (map[string]float64, error) {
		return c.fetch(ctx, productID, date)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.FeedRequests.WithLabelValues("rejected").Inc()
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		metrics.FeedRequests.WithLabelValues("failure").Inc()
		return nil, err
	}

	metrics.FeedRequests.WithLabelValues("success").Inc()
	return factors, nil
}

func (c *Client) fetch(ctx context.Context, productID string, date time.Time) (map[string]float64, error) {
	params := url.Values{}
	params.Set("product_id", productID)
	params.Set("date", forecast.Day(date).Format(forecast.DateLayout))
	reqURL := c.baseURL + "/factors?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var body factorsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}

	factors := make(map[string]float64, len(body.Factors))
	for name, v := range body.Factors {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			c.logger.Warn().Str("factor", name).Str("product_id", productID).Msg("Dropping non-finite factor value")
			continue
		}
		factors[name] = v
	}
	return factors, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
