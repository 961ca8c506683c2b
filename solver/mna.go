// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"github.com/cpmech/gosl/la"

	"github.com/0x0-bwu/nanoheat-go/network"
)

// MNA holds the sparse stamps produced by makeMNA. G is the
// Jacobi-preconditionable conductance matrix solved by the static path;
// C's diagonal, the B source-selection and the L observation-selection
// are exercised only by a future transient implementation of
// C*dx/dt = -G*x + B*u(t), y = L*x.
type MNA struct {
	G    *la.Triplet
	C    *la.Triplet
	B    *la.Triplet
	L    *la.Triplet
	Diag []float64 // G's diagonal, kept alongside for the Jacobi preconditioner
}

// makeMNA stamps the conductance matrix G (diagonal = the sum of 1/R
// plus htc, off-diagonal = -1/R to every other unknown-T node) and the
// capacitance diagonal C, one row per unknown-T node in im's matrix
// ordering. Fixed-T neighbors contribute to the diagonal but not to an
// off-diagonal entry; their effect on the system enters through makeRhs
// instead. B selects the source rows (one column per source node); L is
// the identity unless probe node ids are given, in which case it selects
// only their rows.
func makeMNA(net *network.Network, im *network.IndexMap, probs []int) *MNA {
	size := im.MatrixSize()

	nnz := 0
	nSources := 0
	for i := 0; i < size; i++ {
		id := im.NodeId(i)
		nnz += 1 + len(net.Nodes[id].NS)
		if net.IsSource(id) {
			nSources++
		}
	}

	g := new(la.Triplet)
	g.Init(size, size, nnz)
	c := new(la.Triplet)
	c.Init(size, size, size)
	diag := make([]float64, size)

	b := new(la.Triplet)
	b.Init(size, nSources, nSources)
	col := 0

	for i := 0; i < size; i++ {
		id := im.NodeId(i)
		node := net.Nodes[id]
		d := node.HTC
		for nb, r := range node.NS {
			if r <= 0 {
				continue
			}
			cond := 1 / r
			d += cond
			if j, ok := im.MatrixId(nb); ok {
				g.Put(i, j, -cond)
			}
		}
		g.Put(i, i, d)
		c.Put(i, i, node.C)
		diag[i] = d
		if net.IsSource(id) {
			b.Put(i, col, 1)
			col++
		}
	}

	l := new(la.Triplet)
	if len(probs) == 0 {
		l.Init(size, size, size)
		for i := 0; i < size; i++ {
			l.Put(i, i, 1)
		}
	} else {
		l.Init(len(probs), size, len(probs))
		for k, id := range probs {
			if row, ok := im.MatrixId(id); ok {
				l.Put(k, row, 1)
			}
		}
	}

	return &MNA{G: g, C: c, B: b, L: l, Diag: diag}
}

// makeRhs builds the right-hand side for G·x = rhs: each row's own
// heat flow plus its HTC coupling to the ambient, plus the sum of
// T_fixed/R over any fixed-temperature neighbors.
func makeRhs(net *network.Network, im *network.IndexMap, envT float64) []float64 {
	size := im.MatrixSize()
	rhs := make([]float64, size)

	for i := 0; i < size; i++ {
		id := im.NodeId(i)
		node := net.Nodes[id]
		v := node.HF + node.HTC*envT
		for nb, r := range node.NS {
			if r <= 0 {
				continue
			}
			if _, ok := im.MatrixId(nb); !ok {
				v += net.Nodes[nb].T / r
			}
		}
		rhs[i] = v
	}

	return rhs
}
