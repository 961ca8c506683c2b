// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"github.com/cpmech/gosl/la"
)

// cgSolveJacobi solves g*x = rhs by Jacobi-preconditioned Conjugate
// Gradient. g is symmetric positive-definite: its diagonal is the sum of
// 1/R plus htc, off-diagonals -1/R. On non-convergence within the
// iteration cap it returns the last iterate rather than an error; the
// caller reports that through the residual, never as a failure.
func cgSolveJacobi(g *la.Triplet, diag, rhs []float64, tol float64) ([]float64, error) {
	n := len(rhs)
	x := make([]float64, n)
	if n == 0 {
		return x, nil
	}

	a := g.ToMatrix(nil)

	r := make([]float64, n)
	copy(r, rhs) // x starts at 0, so r = rhs - g*x = rhs

	z := make([]float64, n)
	jacobiApply(z, diag, r)

	p := make([]float64, n)
	copy(p, z)
	rzOld := dotProd(r, z)

	maxIter := 2*n + 10
	for iter := 0; iter < maxIter; iter++ {
		ap := make([]float64, n)
		la.SpMatVecMulAdd(ap, 1, a, p)

		pAp := dotProd(p, ap)
		if pAp == 0 {
			break
		}
		alpha := rzOld / pAp

		for i := 0; i < n; i++ {
			x[i] += alpha * p[i]
			r[i] -= alpha * ap[i]
		}

		if la.VecNorm(r) <= tol {
			return x, nil
		}

		jacobiApply(z, diag, r)
		rzNew := dotProd(r, z)
		if rzOld == 0 {
			break
		}
		beta := rzNew / rzOld
		for i := 0; i < n; i++ {
			p[i] = z[i] + beta*p[i]
		}
		rzOld = rzNew
	}

	return x, nil
}

// jacobiApply solves the diagonal preconditioner system z = diag⁻¹·r.
func jacobiApply(z, diag, r []float64) {
	for i := range r {
		if diag[i] != 0 {
			z[i] = r[i] / diag[i]
		} else {
			z[i] = r[i]
		}
	}
}

func dotProd(u, v []float64) float64 {
	s := 0.0
	for i := range u {
		s += u[i] * v[i]
	}
	return s
}
