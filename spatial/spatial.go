// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spatial provides the R-tree-shaped query interface prism
// consumes to look up prism centroids when attaching bond wires, plus a
// gosl/gm.Bins-backed reference implementation.
package spatial

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/gm"
)

// Ndiv is the default number of bin divisions per axis.
const Ndiv = 20

// Index is the narrow spatial-query interface; an R-tree or equivalent
// can stand behind it. Implementations need only support insertion, an
// exact-location lookup and a line/segment-range query; consumers never
// need range boxes or nearest-neighbor beyond these.
type Index interface {
	// Append indexes a 2-D point under id. Points are in lattice units.
	Append(x, y int64, id int) error
	// Find returns the id of a previously-appended point at (x,y), or -1
	// if none was indexed at that exact location.
	Find(x, y int64) int
	// FindAlongLine returns the ids of all indexed points falling within
	// tol of the segment (ax,ay)-(bx,by).
	FindAlongLine(ax, ay, bx, by int64, tol float64) []int
}

// BinsIndex is the reference Index implementation, backed by gosl/gm.Bins
// (a uniform-grid spatial index).
type BinsIndex struct {
	bins gm.Bins
	init bool
}

// NewBinsIndex allocates a BinsIndex covering [xmin,xmax] with ndiv
// divisions per axis. ndiv<=0 uses Ndiv.
func NewBinsIndex(xmin, ymin, xmax, ymax int64, ndiv int) (*BinsIndex, error) {
	if ndiv <= 0 {
		ndiv = Ndiv
	}
	xi := []float64{float64(xmin), float64(ymin)}
	xf := []float64{float64(xmax), float64(ymax)}
	// gm.Bins requires xi != xf along each axis; widen a degenerate box.
	for i := range xi {
		if xi[i] == xf[i] {
			xi[i] -= 1
			xf[i] += 1
		}
	}
	b := &BinsIndex{}
	if err := b.bins.Init(xi, xf, ndiv); err != nil {
		return nil, chk.Err("spatial: bins init failed: %v", err)
	}
	b.init = true
	return b, nil
}

func (b *BinsIndex) Append(x, y int64, id int) error {
	if !b.init {
		return chk.Err("spatial: BinsIndex not initialized")
	}
	return b.bins.Append([]float64{float64(x), float64(y)}, id)
}

func (b *BinsIndex) Find(x, y int64) int {
	if !b.init {
		return -1
	}
	return b.bins.Find([]float64{float64(x), float64(y)})
}

func (b *BinsIndex) FindAlongLine(ax, ay, bx, by int64, tol float64) []int {
	if !b.init {
		return nil
	}
	return b.bins.FindAlongLine([]float64{float64(ax), float64(ay)}, []float64{float64(bx), float64(by)}, tol)
}
