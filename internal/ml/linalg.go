// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package ml

import "math"

// SolveSPD solves A*x = b for a symmetric positive (semi)definite A using a
// Cholesky factorization. Non-positive pivots are nudged to a tiny positive
// value so a regularized normal-equation system always yields a solution.
func SolveSPD(a [][]float64, b []float64) []float64 {
	n := len(b)

	// A = L * L'
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}

			if i == j {
				if sum <= 0 {
					sum = 1e-10
				}
				l[i][j] = math.Sqrt(sum)
			} else if l[j][j] != 0 {
				l[i][j] = sum / l[j][j]
			}
		}
	}

	// Forward substitution: L * z = b
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= l[i][j] * z[j]
		}
		if l[i][i] != 0 {
			z[i] = sum / l[i][i]
		}
	}

	// Back substitution: L' * x = z
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for j := i + 1; j < n; j++ {
			sum -= l[j][i] * x[j]
		}
		if l[i][i] != 0 {
			x[i] = sum / l[i][i]
		}
	}

	return x
}
