// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package algorithms

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// ALS factorizes the interaction matrix R ~ X * Y' by alternating least
// squares, fitting observed entries only:
//
//	min sum_{(u,i) observed} (r_ui - x_u'y_i)^2 + lambda(|x_u|^2 + |y_i|^2)
//
// Each sweep fixes Y and solves every customer row in closed form, then
// fixes X and solves every product row.
type ALS struct {
	config recommend.ALSConfig
}

// Factors are the learned latent vectors with their index maps.
type Factors struct {
	CustomerIndex   map[string]int
	ProductIDs      []string
	CustomerFactors [][]float64
	ProductFactors  [][]float64
}

// NewALS creates a collaborative scorer.
func NewALS(cfg recommend.ALSConfig) *ALS {
	if cfg.Rank <= 0 {
		cfg.Rank = 16
	}
	if cfg.Lambda <= 0 {
		cfg.Lambda = 0.1
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 15
	}
	return &ALS{config: cfg}
}

// Name returns the scorer identifier.
func (a *ALS) Name() string {
	return "als"
}

// Score factorizes the request matrix and ranks unseen products for the customer.
func (a *ALS) Score(ctx context.Context, req *recommend.ScoreRequest) ([]recommend.Candidate, error) {
	if _, ok := req.Matrix[req.CustomerID]; !ok {
		return nil, nil
	}
	factors, err := a.Factorize(ctx, req.Matrix)
	if err != nil {
		return nil, err
	}
	return ScoreCustomer(req.CustomerID, req.Matrix, factors), nil
}

// Factorize learns customer and product factors from the observed entries of m.
func (a *ALS) Factorize(ctx context.Context, m recommend.InteractionMatrix) (*Factors, error) {
	customers := m.Customers()
	products := m.Products()
	rank := a.config.Rank

	f := &Factors{
		CustomerIndex:   make(map[string]int, len(customers)),
		ProductIDs:      products,
		CustomerFactors: make([][]float64, len(customers)),
		ProductFactors:  make([][]float64, len(products)),
	}
	if len(customers) == 0 || len(products) == 0 {
		return f, nil
	}

	productIndex := make(map[string]int, len(products))
	for i, id := range products {
		productIndex[id] = i
	}
	for u, id := range customers {
		f.CustomerIndex[id] = u
	}

	// Sparse rows in both directions, indexed.
	byCustomer := make([][]entry, len(customers))
	byProduct := make([][]entry, len(products))
	for u, cid := range customers {
		for pid, qty := range m[cid] {
			i := productIndex[pid]
			byCustomer[u] = append(byCustomer[u], entry{index: i, value: qty})
			byProduct[i] = append(byProduct[i], entry{index: u, value: qty})
		}
	}
	for u := range byCustomer {
		sortEntries(byCustomer[u])
	}
	for i := range byProduct {
		sortEntries(byProduct[i])
	}

	rng := rand.New(rand.NewSource(a.config.Seed)) //nolint:gosec // deterministic initialization, not security sensitive
	initFactors := func(rows [][]float64) {
		for r := range rows {
			rows[r] = make([]float64, rank)
			for k := range rows[r] {
				rows[r][k] = (rng.Float64() - 0.5) * 0.1
			}
		}
	}
	initFactors(f.CustomerFactors)
	initFactors(f.ProductFactors)

	for iter := 0; iter < a.config.Iterations; iter++ {
		if ContextCancelled(ctx) {
			return nil, fmt.Errorf("als iteration %d: %w", iter, ml.FromContext(ctx.Err()))
		}
		a.solveRows(f.CustomerFactors, byCustomer, f.ProductFactors)
		a.solveRows(f.ProductFactors, byProduct, f.CustomerFactors)
	}

	return f, nil
}

type entry struct {
	index int
	value float64
}

// solveRows updates every row of target given the fixed factors:
//
//	(F_o' F_o + lambda*I) x = F_o' r
//
// where F_o holds the fixed rows this target row observed.
func (a *ALS) solveRows(target [][]float64, observed [][]entry, fixed [][]float64) {
	rank := a.config.Rank
	lambda := a.config.Lambda

	parallelRange(len(target), a.config.Workers, func(start, end int) {
		for r := start; r < end; r++ {
			lhs := make([][]float64, rank)
			for k := range lhs {
				lhs[k] = make([]float64, rank)
				lhs[k][k] = lambda
			}
			rhs := make([]float64, rank)

			for _, e := range observed[r] {
				y := fixed[e.index]
				for f1 := 0; f1 < rank; f1++ {
					for f2 := f1; f2 < rank; f2++ {
						v := y[f1] * y[f2]
						lhs[f1][f2] += v
						if f1 != f2 {
							lhs[f2][f1] += v
						}
					}
					rhs[f1] += e.value * y[f1]
				}
			}

			target[r] = ml.SolveSPD(lhs, rhs)
		}
	})
}

// ScoreCustomer ranks products the customer has not bought by the dot product
// of their latent vectors. Candidates carry only the product ID. Unknown
// customers get no candidates.
func ScoreCustomer(customerID string, m recommend.InteractionMatrix, f *Factors) []recommend.Candidate {
	u, ok := f.CustomerIndex[customerID]
	if !ok {
		return nil
	}
	x := f.CustomerFactors[u]

	out := make([]recommend.Candidate, 0, len(f.ProductIDs))
	for i, pid := range f.ProductIDs {
		if m.Purchased(customerID, pid) {
			continue
		}
		out = append(out, recommend.Candidate{
			Product: recommend.Product{ID: pid},
			Score:   ml.Dot(x, f.ProductFactors[i]),
		})
	}
	recommend.SortCandidates(out)
	return out
}

// Predict reconstructs the affinity of one customer/product pair.
func (f *Factors) Predict(customerID, productID string) (float64, bool) {
	u, ok := f.CustomerIndex[customerID]
	if !ok {
		return 0, false
	}
	for i, pid := range f.ProductIDs {
		if pid == productID {
			return ml.Dot(f.CustomerFactors[u], f.ProductFactors[i]), true
		}
	}
	return 0, false
}

func sortEntries(e []entry) {
	sort.Slice(e, func(i, j int) bool { return e[i].index < e[j].index })
}

var _ recommend.Scorer = (*ALS)(nil)
