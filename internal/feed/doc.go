// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

/*
Package feed fetches external demand factors (weather, events, competitor
pricing and similar indicators) from an HTTP service.

The service is queried as:

	GET {base_url}/factors?product_id=sku-1&date=2026-03-14

and answers with:

	{"factors": {"temperature": 21.5, "local_event": 1}}

Requests are rate limited with golang.org/x/time/rate and guarded by a
sony/gobreaker circuit breaker. While the breaker is open, calls fail fast
with ErrUnavailable instead of waiting on a service that is known to be down.

A disabled client answers every call with an empty map, so the demand
predictor's zero default applies to every configured factor.

Metrics:
  - stockcast_feed_requests_total{result}
  - circuit_breaker_state{name="factor-feed"}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}
*/
package feed
