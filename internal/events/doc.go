// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

/*
Package events carries write traffic (catalog updates, daily sales and
purchase transactions) from the HTTP API to the store through watermill.

The API publishes and returns immediately; the Ingestor consumes the topics
on a watermill router and applies each event to the store:

	API --Publish--> gochannel --Router--> Ingestor --> store
	                                          |
	                                          +--> forecast cache invalidation

Topics:
  - products.upserted: recommend.Product payload
  - sales.recorded: SaleRecorded payload
  - transactions.recorded: recommend.Transaction payload

Messages carry a UUID and a correlation_id metadata entry copied from the
publishing request's context.

Router middleware, outermost first:
  - PoisonQueue: a message that still fails after retries is moved to
    PoisonTopic and acknowledged so it cannot block the topic
  - Recoverer: converts handler panics into errors
  - Retry: exponential backoff for transient store failures

Payloads that cannot be decoded or fail validation are acknowledged at once
and counted as invalid; retrying them cannot succeed.

The Ingestor implements suture.Service. Each Serve call builds a fresh router
so a restart by the supervisor starts from a clean state.
*/
package events
