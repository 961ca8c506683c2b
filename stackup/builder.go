// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackup

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/0x0-bwu/nanoheat-go/geom2d"
	"github.com/0x0-bwu/nanoheat-go/layoutdb"
	"github.com/0x0-bwu/nanoheat-go/threadpool"
)

// Settings controls Builder.Build.
type Settings struct {
	LayerCutPrecision             int           `json:"layerCutPrecision"`
	LayerTransitionRatio          float64       `json:"layerTransitionRatio"`
	AddCircleCenterAsSteinerPoint bool          `json:"addCircleCenterAsSteinerPoint"`
	ImprintBoxes                  []geom2d.BBox `json:"imprintBoxes"`
	MergePolygons                 bool          `json:"mergePolygons"`
	SolderFillMatId               int           `json:"solderFillMatId"`
	BondingWireMinSegs            int           `json:"bondingWireMinSegs"`
}

// Builder traverses a Layout and populates a Model.
type Builder struct {
	Settings Settings
	Merger   geom2d.PolygonMerger
	Pool     *threadpool.Pool
}

// NewBuilder returns a Builder with the reference polygon merger and a
// single-threaded pool, matching the "mandatory single-threaded fallback"
// default.
func NewBuilder(settings Settings) *Builder {
	if settings.BondingWireMinSegs <= 0 {
		settings.BondingWireMinSegs = 10
	}
	return &Builder{
		Settings: settings,
		Merger:   geom2d.DefaultPolygonMerger{},
		Pool:     threadpool.New(1),
	}
}

// Build populates and returns a new Model from layout. Returns an error
// (not a panic) only for missing preconditions; malformed-layout
// conditions (retriever failures, non-black-box components) panic via
// chk.Panic.
func (b *Builder) Build(layout layoutdb.Layout, retriever layoutdb.LayoutRetriever) (*Model, error) {
	if layout == nil || retriever == nil {
		return nil, chk.Err("stackup: Build requires a non-nil layout and retriever")
	}
	layers := layout.StackupLayers()
	if len(layers) == 0 {
		return nil, chk.Err("stackup: layout has no stackup layers")
	}

	m := NewModel(b.Settings.LayerCutPrecision)
	boundary := toGeomPolygon(layout.Boundary())

	// fill every slab with its dielectric by default
	for _, layer := range layers {
		elev, thk, ok := retriever.GetStackupLayerHeightThickness(layer)
		if !ok {
			chk.Panic("stackup: cannot resolve elevation/thickness for stackup layer %d: malformed layout", layer.Id)
		}
		m.AddShape(NoId, layer.DielectricMatId, NoId, boundary, elev, thk, nil, false)
	}

	for _, c := range layout.Components() {
		b.buildComponent(m, c, retriever)
	}

	for _, conn := range layout.ConnObjects() {
		b.buildConnObj(m, conn, layers, retriever)
	}

	for _, box := range b.Settings.ImprintBoxes {
		m.AddImprintPolygon(bboxPolygon(box))
	}

	if b.Settings.MergePolygons {
		b.mergePolygons(m)
	}

	m.BuildLayerPolygonLUT(b.Settings.LayerTransitionRatio)
	io.Pf("stackup: built %d polygons across %d slabs\n", len(m.Polygons), m.NumSlabs())
	return m, nil
}

// buildComponent adds a black-box component's footprint, either as a
// power block or a plain material polygon. Hierarchical (non-black-box)
// components are explicitly unimplemented.
func (b *Builder) buildComponent(m *Model, c layoutdb.Component, retriever layoutdb.LayoutRetriever) {
	if !c.BlackBox {
		chk.Panic("stackup: hierarchical (non-black-box) components are not implemented")
	}
	elev, thk, ok := retriever.GetComponentHeightThickness(c)
	if !ok {
		chk.Panic("stackup: cannot resolve elevation/thickness for component %d: malformed layout", c.Id)
	}
	poly := toGeomPolygon(c.Boundary)
	var pid int
	if c.LossPowerId >= 0 {
		pid = m.AddPowerBlock(c.MatId, poly, c.ScenarioId, c.PowerLutId, elev, thk, 0.1, 0.1)
	} else {
		pid = m.AddPolygon(NoId, c.MatId, poly, false, elev, thk)
	}
	if pid == NoId {
		io.Pfyel("stackup: component %d dropped (invalid vertical range)\n", c.Id)
		return
	}
	if c.SolderFillMatId >= 0 {
		b.fillSolderGap(m, c, elev, thk, poly, retriever)
	}
}

// fillSolderGap fills the assembly-layer slab between the component's die
// bottom and the board with the solder-fill material, but only when the
// component actually sits above a gap (flip-chip/die-attach); a component
// flush on its own layer has no gap to fill.
func (b *Builder) fillSolderGap(m *Model, c layoutdb.Component, elev, thk float64, poly geom2d.Polygon, retriever layoutdb.LayoutRetriever) {
	dieBottom := elev - thk
	boardElev, _, ok := retriever.GetComponentLayerHeightThickness(c, c.LayerId+1)
	if !ok || boardElev >= dieBottom {
		return // flush, or no layer below: no gap
	}
	gapThk := dieBottom - boardElev
	m.AddPolygon(NoId, c.SolderFillMatId, poly, false, dieBottom, gapThk)
}

func (b *Builder) buildConnObj(m *Model, conn layoutdb.ConnObj, layers []layoutdb.StackupLayer, retriever layoutdb.LayoutRetriever) {
	switch conn.Kind {
	case layoutdb.ConnBondingWire:
		b.buildBondingWire(m, *conn.Bonding, retriever)
	case layoutdb.ConnRoutingWire:
		b.buildRoutingWire(m, *conn.Routing, layers, retriever)
	case layoutdb.ConnPadstackInst:
		b.buildPadstack(m, *conn.Padstack, layers, retriever)
	}
}

func (b *Builder) buildBondingWire(m *Model, bw layoutdb.BondingWireSpec, retriever layoutdb.LayoutRetriever) {
	pts, heights, err := retriever.GetBondingWireSegmentsWithMinSeg(bw, b.Settings.BondingWireMinSegs)
	if err != nil {
		chk.Panic("stackup: cannot sample bonding wire %d: %v", bw.Id, err)
	}
	gpts := make([]geom2d.Point, len(pts))
	for i, p := range pts {
		gpts[i] = geom2d.Point{X: p.X, Y: p.Y}
	}
	m.BondingWires = append(m.BondingWires, BondingWire{
		Radius: bw.Radius, Current: bw.Current, NetId: bw.NetId, MatId: bw.MatId,
		ScenarioId: bw.ScenarioId, Heights: heights, Pt2Ds: gpts,
	})
	if shape, elev, thk, ok := retriever.GetBondingWireStartSolderJointParameters(bw, bw.MatId); ok {
		m.AddPolygon(bw.NetId, bw.MatId, toGeomPolygon(shape), false, elev, thk)
	}
	if shape, elev, thk, ok := retriever.GetBondingWireEndSolderJointParameters(bw, bw.MatId); ok {
		m.AddPolygon(bw.NetId, bw.MatId, toGeomPolygon(shape), false, elev, thk)
	}
}

func (b *Builder) buildRoutingWire(m *Model, rw layoutdb.RoutingWireSpec, layers []layoutdb.StackupLayer, retriever layoutdb.LayoutRetriever) {
	layer, ok := findLayer(layers, rw.LayerId)
	if !ok {
		chk.Panic("stackup: routing wire %d references unknown layer %d", rw.Id, rw.LayerId)
	}
	elev, thk, ok := retriever.GetStackupLayerHeightThickness(layer)
	if !ok {
		chk.Panic("stackup: cannot resolve elevation/thickness for routing wire %d's layer", rw.Id)
	}
	m.AddShape(rw.NetId, rw.ConductingMatId, rw.DielectricMatId, toGeomPolygon(rw.Shape), elev, thk, nil, false)
}

func (b *Builder) buildPadstack(m *Model, ps layoutdb.PadstackInstSpec, layers []layoutdb.StackupLayer, retriever layoutdb.LayoutRetriever) {
	for _, layer := range layers {
		if layer.Id < ps.FromLayer || layer.Id > ps.ToLayer {
			continue
		}
		shape, ok := ps.PadShape(layer.Id)
		if !ok {
			continue
		}
		elev, thk, ok := retriever.GetStackupLayerHeightThickness(layer)
		if !ok {
			chk.Panic("stackup: cannot resolve elevation/thickness for padstack %d at layer %d", ps.Id, layer.Id)
		}
		var center *geom2d.Point
		if ps.CircleCenter != nil {
			center = &geom2d.Point{X: ps.CircleCenter.X, Y: ps.CircleCenter.Y}
		}
		m.AddShape(ps.NetId, ps.MatId, NoId, toGeomPolygon(shape), elev, thk, center, b.Settings.AddCircleCenterAsSteinerPoint)
	}
}

// mergePolygons runs the external PolygonMerger once per distinct
// (net, material, range) group, one task per group on b.Pool; tasks
// touch disjoint state and only the post-Wait merge mutates the model.
func (b *Builder) mergePolygons(m *Model) {
	type key struct {
		net, mat int
		r        layoutdb.VerticalRange
	}
	groups := make(map[key][]int)
	var order []key
	for i, r := range m.LayerRanges {
		if !r.Valid() {
			continue
		}
		k := key{m.Nets[i], m.Materials[i], r}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	type mergedGroup struct {
		key    key
		merged []geom2d.Polygon
	}
	results := make([]mergedGroup, len(order))
	for gi, k := range order {
		gi, k := gi, k
		b.Pool.Submit(func() {
			idxs := groups[k]
			if len(idxs) < 2 {
				return
			}
			polys := make([]geom2d.Polygon, len(idxs))
			attrs := make([]int, len(idxs))
			for j, pid := range idxs {
				polys[j] = m.Polygons[pid]
				attrs[j] = k.mat // the group already shares (net, material, range)
			}
			merged, _, err := b.Merger.Merge(polys, attrs)
			if err != nil {
				io.Pfred("stackup: polygon merge failed for group %v: %v\n", k, err)
				return
			}
			results[gi] = mergedGroup{key: k, merged: merged}
		})
	}
	b.Pool.Wait()

	for _, res := range results {
		if res.merged == nil {
			continue
		}
		idxs := groups[res.key]
		for _, pid := range idxs {
			m.LayerRanges[pid] = layoutdb.VerticalRange{} // retire: merged away
		}
		for _, mp := range res.merged {
			m.addPolygonWithRange(res.key.net, res.key.mat, mp, false, res.key.r)
		}
	}
}

func findLayer(layers []layoutdb.StackupLayer, id int) (layoutdb.StackupLayer, bool) {
	for _, l := range layers {
		if l.Id == id {
			return l, true
		}
	}
	return layoutdb.StackupLayer{}, false
}

func toGeomPolygon(p layoutdb.Polygon) geom2d.Polygon {
	g := geom2d.Polygon{Outer: make([]geom2d.Point, len(p.Outer))}
	for i, pt := range p.Outer {
		g.Outer[i] = geom2d.Point{X: pt.X, Y: pt.Y}
	}
	for _, h := range p.Holes {
		gh := make([]geom2d.Point, len(h))
		for i, pt := range h {
			gh[i] = geom2d.Point{X: pt.X, Y: pt.Y}
		}
		g.Holes = append(g.Holes, gh)
	}
	return g
}

func bboxPolygon(b geom2d.BBox) geom2d.Polygon {
	return geom2d.Polygon{Outer: []geom2d.Point{
		{X: b.MinX, Y: b.MinY}, {X: b.MaxX, Y: b.MinY}, {X: b.MaxX, Y: b.MaxY}, {X: b.MinX, Y: b.MaxY},
	}}
}
