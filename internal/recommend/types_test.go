// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package recommend

import "testing"

func TestSortCandidates(t *testing.T) {
	t.Parallel()

	c := []Candidate{
		{Product: Product{ID: "b"}, Score: 0.5},
		{Product: Product{ID: "c"}, Score: 0.9},
		{Product: Product{ID: "a"}, Score: 0.5},
		{Product: Product{ID: "d"}, Score: -1},
	}
	SortCandidates(c)

	want := []string{"c", "a", "b", "d"}
	for i, id := range want {
		if c[i].Product.ID != id {
			t.Errorf("position %d = %s, want %s", i, c[i].Product.ID, id)
		}
	}
}
