// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

/*
Package store persists the catalog, daily sales and purchase transactions in
an embedded BadgerDB.

# Key Layout

	product:<product_id>               JSON recommend.Product
	sale:<product_id>:<yyyy-mm-dd>     JSON daily sales record
	txn:<customer_id>:<uuid>           JSON recommend.Transaction

Badger iterates keys in byte order, so a product's sales come back in
chronological order and a customer's transactions are contiguous. IDs may
not contain the ':' separator.

RecordSale is additive: recording the same product and day twice sums the
quantities. SalesHistory fills days without sales with zero-sales points so
the forecaster sees a gapless daily series.
*/
package store
