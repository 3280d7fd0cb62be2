// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package recommend

import (
	"math"
	"sort"
)

// InteractionMatrix maps customer -> product -> total quantity. Absent
// entries mean no interaction.
type InteractionMatrix map[string]map[string]float64

// BuildMatrix accumulates quantities per customer and product. Transactions
// with a missing customer, missing product or unusable quantity are skipped
// and reported as warnings; building never fails.
func BuildMatrix(transactions []Transaction) (InteractionMatrix, []Warning) {
	m := make(InteractionMatrix)
	var warnings []Warning

	for i, t := range transactions {
		switch {
		case t.CustomerID == "":
			warnings = append(warnings, Warning{Index: i, Reason: "missing customer_id"})
			continue
		case t.ProductID == "":
			warnings = append(warnings, Warning{Index: i, Reason: "missing product_id"})
			continue
		case math.IsNaN(t.Quantity) || math.IsInf(t.Quantity, 0) || t.Quantity <= 0:
			warnings = append(warnings, Warning{Index: i, Reason: "missing or non-positive quantity"})
			continue
		}
		m.Add(t.CustomerID, t.ProductID, t.Quantity)
	}

	return m, warnings
}

// Add accumulates quantity for a customer/product pair, creating the row on demand.
func (m InteractionMatrix) Add(customerID, productID string, quantity float64) {
	row, ok := m[customerID]
	if !ok {
		row = make(map[string]float64)
		m[customerID] = row
	}
	row[productID] += quantity
}

// Get returns the accumulated quantity, 0 when absent.
func (m InteractionMatrix) Get(customerID, productID string) float64 {
	return m[customerID][productID]
}

// Purchased reports whether the customer has bought the product.
func (m InteractionMatrix) Purchased(customerID, productID string) bool {
	_, ok := m[customerID][productID]
	return ok
}

// Customers returns customer IDs in ascending order.
func (m InteractionMatrix) Customers() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Products returns every product ID with at least one interaction, ascending.
func (m InteractionMatrix) Products() []string {
	seen := make(map[string]struct{})
	for _, row := range m {
		for pid := range row {
			seen[pid] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NonZero returns the number of observed entries.
func (m InteractionMatrix) NonZero() int {
	n := 0
	for _, row := range m {
		n += len(row)
	}
	return n
}
