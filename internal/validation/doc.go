// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

// Package validation provides request validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Field names in errors are the
// JSON names clients send, e.g. "horizon_days" rather than "HorizonDays".
//
// Custom tags:
//
//	entityid  non-empty, at most 128 bytes, no ':' (reserved by the store key layout)
//	dateonly  a calendar date in YYYY-MM-DD form
//	finite    a float that is neither NaN nor infinite
//
// Example:
//
//	type SaleRequest struct {
//	    ProductID string  `json:"product_id" validate:"entityid"`
//	    Date      string  `json:"date" validate:"required,dateonly"`
//	    Quantity  float64 `json:"quantity" validate:"finite,gte=0"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    ...
//	}
package validation
