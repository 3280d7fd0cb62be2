// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

// Package importer loads daily sales from Excel workbooks into the store.
//
// This package lets a retailer seed Stockcast with historical sales exported
// from a point-of-sale or ERP system, without replaying them through the API.
//
// # Sheet Format
//
// The first row is a header. Column order is free and names are matched
// case-insensitively:
//
//	date        | product_id | quantity | is_holiday | has_promotion
//	2026-03-01  | sku-1      | 12       | no         | yes
//
// date, product_id and quantity are required; is_holiday and has_promotion are
// optional and default to false. Dates may be YYYY-MM-DD text or native Excel
// date cells. Booleans accept true/false, yes/no, y/n and 1/0.
//
// # Semantics
//
// Sales are additive: importing the same workbook twice doubles every day.
// Invalid rows are skipped and reported with their sheet row number; the import
// continues. Store failures are counted as errors and also do not stop the
// import, but a cancelled context does.
//
// # Usage
//
//	imp := importer.New(st, importer.Config{})
//	stats, err := imp.ImportFile(ctx, "sales.xlsx")
//	fmt.Printf("imported %d, skipped %d\n", stats.Imported, stats.Skipped)
//
// The cmd/importer binary wraps this package. It opens the badger store
// directly, so it must not run while the server holds the same directory.
package importer
