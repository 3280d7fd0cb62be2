// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package recommend

// Fuse merges collaborative and content candidates by product ID.
//
// A product in both lists scores w.Collaborative*s1 + w.Content*s2. A product
// in only one list scores that list's weight times its score, with no
// renormalization for the missing source. The result is sorted by score
// descending, ties by product ID, truncated to topN and free of duplicates.
// If a list repeats a product, its first occurrence wins.
func Fuse(collaborative, content []Candidate, w Weights, topN int) []Candidate {
	if topN <= 0 {
		return nil
	}

	fused := make(map[string]*Candidate, len(collaborative)+len(content))
	order := make([]string, 0, len(collaborative)+len(content))

	add := func(list []Candidate, weight float64) {
		seen := make(map[string]struct{}, len(list))
		for _, c := range list {
			id := c.Product.ID
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			if existing, ok := fused[id]; ok {
				existing.Score += weight * c.Score
				continue
			}
			fused[id] = &Candidate{Product: c.Product, Score: weight * c.Score}
			order = append(order, id)
		}
	}
	add(collaborative, w.Collaborative)
	add(content, w.Content)

	out := make([]Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, *fused[id])
	}
	SortCandidates(out)

	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
