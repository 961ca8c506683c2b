// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prism

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/0x0-bwu/nanoheat-go/geom2d"
	"github.com/0x0-bwu/nanoheat-go/layoutdb"
	"github.com/0x0-bwu/nanoheat-go/material"
	"github.com/0x0-bwu/nanoheat-go/meshgen"
	"github.com/0x0-bwu/nanoheat-go/stackup"
)

type fakeLayout struct{ mats []layoutdb.Material }

func (f fakeLayout) Boundary() layoutdb.Polygon             { return layoutdb.Polygon{} }
func (f fakeLayout) CoordUnit() float64                     { return 1 }
func (f fakeLayout) StackupLayers() []layoutdb.StackupLayer { return nil }
func (f fakeLayout) Components() []layoutdb.Component       { return nil }
func (f fakeLayout) ConnObjects() []layoutdb.ConnObj        { return nil }
func (f fakeLayout) Materials() []layoutdb.Material         { return f.mats }

func solidSquare() geom2d.Polygon {
	return geom2d.Polygon{Outer: []geom2d.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}}
}

func twoSlabStackup() *stackup.Model {
	sq := solidSquare()
	m := stackup.NewModel(0)
	m.AddPolygon(0, 1, sq, false, 20, 10) // top slab [10,20)
	m.AddPolygon(0, 1, sq, false, 10, 10) // bottom slab [0,10)
	m.BuildLayerPolygonLUT(0)
	return m
}

func solidLayout() layoutdb.Layout {
	return fakeLayout{mats: []layoutdb.Material{
		&material.InMemoryMaterial{IdValue: 1, TypeValue: layoutdb.Solid},
	}}
}

func newBuilderFor(variant Variant) *Builder {
	return NewBuilder(Settings{
		Variant:     variant,
		Mesh:        meshgen.Settings{Tolerance: 1},
		ScaleH2Unit: 1, Scale2Meter: 1,
	})
}

func Test_builder01(tst *testing.T) {

	chk.PrintTitle("prism: Build (SingleTemplate) shares one triangulation across every layer")

	sm := twoSlabStackup()
	b := newBuilderFor(SingleTemplate)
	m, err := b.Build(sm, solidLayout())
	if err != nil {
		tst.Errorf("Build failed: %v\n", err)
		return
	}
	if len(m.Layers) != 2 {
		tst.Errorf("expected 2 layers, got %d\n", len(m.Layers))
		return
	}
	if m.Layers[0].Triangulation != m.Layers[1].Triangulation {
		tst.Errorf("expected SingleTemplate to reuse the same *Triangulation pointer across layers\n")
	}
	chk.IntAssert(m.TotalPrismElements(), len(m.Prisms))
}

func Test_builder02(tst *testing.T) {

	chk.PrintTitle("prism: Build (SingleTemplate) wires symmetric vertical neighbors")

	sm := twoSlabStackup()
	b := newBuilderFor(SingleTemplate)
	m, err := b.Build(sm, solidLayout())
	if err != nil {
		tst.Errorf("Build failed: %v\n", err)
		return
	}
	for g, p := range m.Prisms {
		if above := p.Neighbors[3+int(TOP)]; above != NeighborSentinel {
			if m.Prisms[above].Neighbors[3+int(BOT)] != g {
				tst.Errorf("prism %d's TOP neighbor %d does not point back via BOT\n", g, above)
			}
		}
		if below := p.Neighbors[3+int(BOT)]; below != NeighborSentinel {
			if m.Prisms[below].Neighbors[3+int(TOP)] != g {
				tst.Errorf("prism %d's BOT neighbor %d does not point back via TOP\n", g, below)
			}
		}
	}
}

func Test_builder03(tst *testing.T) {

	chk.PrintTitle("prism: Build (SingleTemplate) wires symmetric same-layer neighbors")

	sm := twoSlabStackup()
	b := newBuilderFor(SingleTemplate)
	m, err := b.Build(sm, solidLayout())
	if err != nil {
		tst.Errorf("Build failed: %v\n", err)
		return
	}
	for _, layer := range m.Layers {
		for _, e := range layer.Elements {
			for k, nbLocal := range e.Neighbors {
				if nbLocal == NeighborSentinel {
					continue
				}
				nb := layer.Elements[nbLocal]
				found := false
				for _, back := range nb.Neighbors {
					if back == e.Id {
						found = true
					}
				}
				if !found {
					tst.Errorf("element %d's same-layer neighbor %d (slot %d) does not reciprocate\n", e.Id, nbLocal, k)
				}
			}
		}
	}
}

func Test_builder04(tst *testing.T) {

	chk.PrintTitle("prism: Build (Stackup) conserves contact area across fully-overlapping layers")

	sm := twoSlabStackup()
	b := newBuilderFor(Stackup)
	m, err := b.Build(sm, solidLayout())
	if err != nil {
		tst.Errorf("Build failed: %v\n", err)
		return
	}
	if len(m.Layers) != 2 {
		tst.Errorf("expected 2 layers, got %d\n", len(m.Layers))
		return
	}
	// both slabs are the identical square footprint, so the top layer's
	// bottom faces and the bottom layer's top faces are fully covered by
	// the adjacent layer: no interior face fraction is left exposed.
	for g, p := range m.Prisms {
		if p.Layer == 0 {
			frac := p.ContactExposedFraction(BOT)
			if frac > 1e-6 {
				tst.Errorf("prism %d (top layer) left %.6g of its BOT face unexplained by contacts\n", g, frac)
			}
		}
		if p.Layer == 1 {
			frac := p.ContactExposedFraction(TOP)
			if frac > 1e-6 {
				tst.Errorf("prism %d (bottom layer) left %.6g of its TOP face unexplained by contacts\n", g, frac)
			}
		}
	}
}

func Test_builder05(tst *testing.T) {

	chk.PrintTitle("prism: Build rejects a nil stackup model")

	b := newBuilderFor(SingleTemplate)
	if _, err := b.Build(nil, solidLayout()); err == nil {
		tst.Errorf("expected an error for a nil *stackup.Model\n")
	}
}

func Test_builder06(tst *testing.T) {

	chk.PrintTitle("prism: Build (Stackup) shares one triangulation across slabs with identical polygon sets")

	// one tall polygon plus a thin cap on top; the transition-ratio pass
	// bisects the tall region into several slabs that all present the same
	// single-polygon set, so they must share one triangulation.
	sq := solidSquare()
	sm := stackup.NewModel(2)
	sm.AddPolygon(0, 1, sq, false, 4.0, 4.0)
	sm.AddPolygon(0, 1, sq, false, 4.0, 0.05)
	sm.BuildLayerPolygonLUT(2)

	if sm.NumSlabs() < 3 {
		tst.Errorf("expected the ratio pass to produce at least 3 slabs, got %d\n", sm.NumSlabs())
		return
	}

	b := newBuilderFor(Stackup)
	m, err := b.Build(sm, solidLayout())
	if err != nil {
		tst.Errorf("Build failed: %v\n", err)
		return
	}

	shared := false
	for i := 1; i+1 < len(m.Layers); i++ {
		if m.Layers[i].Triangulation != nil && m.Layers[i].Triangulation == m.Layers[i+1].Triangulation {
			shared = true
		}
	}
	if !shared {
		tst.Errorf("expected at least one adjacent slab pair to share a *Triangulation pointer\n")
	}
}

func Test_builder07(tst *testing.T) {

	chk.PrintTitle("prism: bonding wires become chained line elements attached to the mesh")

	sm := twoSlabStackup()
	sm.BondingWires = append(sm.BondingWires, stackup.BondingWire{
		Radius: 1e-4, Current: 10, NetId: 0, MatId: 1,
		Heights: []float64{15, 15, 15},
		Pt2Ds:   []geom2d.Point{{X: 1, Y: 1}, {X: 5, Y: 5}, {X: 9, Y: 9}},
	})

	b := newBuilderFor(SingleTemplate)
	m, err := b.Build(sm, solidLayout())
	if err != nil {
		tst.Errorf("Build failed: %v\n", err)
		return
	}

	chk.IntAssert(len(m.Lines), 2)
	base := m.TotalPrismElements()
	chk.IntAssert(m.Lines[0].Id, base)
	chk.IntAssert(m.Lines[1].Id, base+1)

	// consecutive segments chain through their shared endpoint
	found := false
	for _, nb := range m.Lines[1].Neighbors[0] {
		if nb == base {
			found = true
		}
	}
	if !found {
		tst.Errorf("expected segment 1's start to list segment 0 as a neighbor\n")
	}

	// the wire runs at height 15, inside the top slab [10,20): the first
	// segment's free end must attach to a prism there.
	attached := false
	for _, nb := range m.Lines[0].Neighbors[0] {
		if nb < base {
			layer, _, err := m.PrismLocalIndex(nb)
			if err != nil {
				tst.Errorf("PrismLocalIndex(%d) failed: %v\n", nb, err)
				continue
			}
			chk.IntAssert(layer, 0)
			attached = true
		}
	}
	if !attached {
		tst.Errorf("expected the first segment's free end to attach to a prism\n")
	}
}
