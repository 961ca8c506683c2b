// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prism

import (
	"reflect"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/0x0-bwu/nanoheat-go/geom2d"
	"github.com/0x0-bwu/nanoheat-go/layoutdb"
	"github.com/0x0-bwu/nanoheat-go/meshgen"
	"github.com/0x0-bwu/nanoheat-go/spatial"
	"github.com/0x0-bwu/nanoheat-go/stackup"
)

// Variant selects the vertical-neighbor semantics of Builder:
// SingleTemplate reuses one triangulation across every layer; Stackup
// triangulates per unique polygon slab and computes inter-layer contact
// fractions.
type Variant int

const (
	SingleTemplate Variant = iota
	Stackup
)

// Settings controls Builder.Build.
type Settings struct {
	Variant            Variant
	Mesh               meshgen.Settings
	ScaleH2Unit        float64 // lattice -> layout units
	Scale2Meter        float64 // layout units -> meters
	BondingWireMinSegs int

	// UniformBCs/BlockBCs are transferred verbatim onto the built Model;
	// block boxes are already in lattice units.
	UniformBCs [2]*ThermalBC
	BlockBCs   [2][]BlockBC
}

func (s Settings) coordUnit() float64 { return s.ScaleH2Unit * s.Scale2Meter }

// Builder constructs a prism thermal model from a layer stackup model.
type Builder struct {
	Settings Settings
	Gen      *meshgen.Generator

	layerIdx map[int]spatial.Index // lazy per-layer centroid index, see bondingwires.go
}

// NewBuilder returns a Builder using the reference mesh generator.
func NewBuilder(settings Settings) *Builder {
	if settings.BondingWireMinSegs <= 0 {
		settings.BondingWireMinSegs = 10
	}
	return &Builder{Settings: settings, Gen: meshgen.NewGenerator()}
}

// Build converts a layer stackup model into a prism thermal model:
// triangulate, classify triangles into elements, wire same-layer and
// vertical adjacency, attach bonding wires and stamp boundary conditions.
// The layout supplies the material library for fluid/solid classification.
func (b *Builder) Build(sm *stackup.Model, layout layoutdb.Layout) (*Model, error) {
	if sm == nil {
		return nil, chk.Err("prism: Build requires a non-nil LayerStackupModel")
	}
	materials := indexMaterials(layout.Materials())
	fluids := fluidMatIds(materials)

	m := &Model{}

	triByLayer, err := b.triangulate(sm)
	if err != nil {
		return nil, err
	}

	for i := 0; i < sm.NumSlabs(); i++ {
		elev, thk := sm.SlabElevationThickness(i)
		m.Layers = append(m.Layers, PrismLayer{Id: i, Elevation: elev, Thickness: thk, Triangulation: triByLayer[i]})
	}

	for i := range m.Layers {
		b.populateLayerElements(m, sm, i, fluids)
	}

	for i := range m.Layers {
		wireSameLayerNeighbors(&m.Layers[i])
	}

	// vertical neighbors are resolved in buildPrismInstances, once global
	// prism indices and vertices exist.
	b.buildPrismInstances(m)

	if err := b.addBondingWires(m, sm); err != nil {
		return nil, err
	}

	b.stampBCs(m)

	io.Pf("prism: built %d prisms across %d layers, %d lines\n", len(m.Prisms), len(m.Layers), len(m.Lines))
	return m, nil
}

func indexMaterials(mats []layoutdb.Material) map[int]layoutdb.Material {
	out := make(map[int]layoutdb.Material, len(mats))
	for _, mm := range mats {
		out[mm.Id()] = mm
	}
	return out
}

func fluidMatIds(mats map[int]layoutdb.Material) map[int]bool {
	out := make(map[int]bool)
	for id, mm := range mats {
		if mm.Type() == layoutdb.Fluid {
			out[id] = true
		}
	}
	return out
}

// triangulate generates the layer triangulations. SingleTemplate meshes
// once over the union of all polygons, sharing the pointer across every
// layer. Stackup meshes once per array-identical polygon-id slice (sm
// already structurally shares those slices, see
// stackup.Model.BuildLayerPolygonLUT), so slabs sharing input polygons
// end up sharing the *geom2d.Triangulation pointer too. With
// Mesh.ImprintUpperLayer set, the upper slab's polygons are added as
// extra constraints when meshing each slab, improving vertical alignment;
// the cache key then covers both slabs.
func (b *Builder) triangulate(sm *stackup.Model) ([]*geom2d.Triangulation, error) {
	out := make([]*geom2d.Triangulation, sm.NumSlabs())
	if b.Settings.Variant == SingleTemplate {
		var all []geom2d.Polygon
		seen := make(map[int]bool)
		for _, ids := range sm.LayerPolygons {
			for _, pid := range ids {
				if !seen[pid] && sm.Materials[pid] != stackup.NoId {
					seen[pid] = true
					all = append(all, sm.Polygons[pid])
				}
			}
		}
		tr, err := b.Gen.GenerateMesh(all, sm.SteinerPoints, b.Settings.Mesh)
		if err != nil {
			return nil, chk.Err("prism: single-template mesh generation failed: %v", err)
		}
		for i := range out {
			out[i] = &tr
		}
		return out, nil
	}

	imprint := b.Settings.Mesh.ImprintUpperLayer
	cache := make(map[[2]uintptr]*geom2d.Triangulation)
	for i, ids := range sm.LayerPolygons {
		key := [2]uintptr{sliceDataPtr(ids), 0}
		if imprint && i > 0 {
			key[1] = sliceDataPtr(sm.LayerPolygons[i-1])
		}
		if tr, ok := cache[key]; ok && key[0] != 0 {
			out[i] = tr
			continue
		}
		var polys []geom2d.Polygon
		for _, pid := range ids {
			if sm.Materials[pid] != stackup.NoId {
				polys = append(polys, sm.Polygons[pid])
			}
		}
		if len(polys) == 0 {
			continue
		}
		if imprint && i > 0 && key[1] != key[0] {
			for _, pid := range sm.LayerPolygons[i-1] {
				if sm.Materials[pid] != stackup.NoId {
					polys = append(polys, sm.Polygons[pid])
				}
			}
		}
		tr, err := b.Gen.GenerateMesh(polys, sm.SteinerPoints, b.Settings.Mesh)
		if err != nil {
			return nil, chk.Err("prism: mesh generation failed for slab %d: %v", i, err)
		}
		out[i] = &tr
		if key[0] != 0 {
			cache[key] = &tr
		}
	}
	return out, nil
}

func sliceDataPtr(s []int) uintptr {
	if len(s) == 0 {
		return 0
	}
	return reflect.ValueOf(s).Pointer()
}

// populateLayerElements classifies each triangle of a slab's
// triangulation into an element by point-in-polygon lookup at its
// centroid, skipping fluid and unattributed regions.
func (b *Builder) populateLayerElements(m *Model, sm *stackup.Model, layerIdx int, fluids map[int]bool) {
	layer := &m.Layers[layerIdx]
	if layer.Triangulation == nil {
		return
	}
	ids := sm.LayerPolygons[layerIdx]
	for t := range layer.Triangulation.Triangles {
		centroid := layer.Triangulation.TriCentroid(t)
		pid, ok := findEnclosingPolygon(sm, ids, centroid)
		if !ok {
			continue
		}
		mat := sm.Materials[pid]
		if mat == stackup.NoId || fluids[mat] {
			continue
		}
		el := PrismElement{
			Id: len(layer.Elements), NetId: sm.Nets[pid], MatId: mat,
			ScenId: stackup.NoId, PowerLutId: stackup.NoId,
			TemplateId: t, Neighbors: [3]int{NeighborSentinel, NeighborSentinel, NeighborSentinel},
		}
		if pb, isPower := sm.PowerBlocks[pid]; isPower {
			hiIdx := sm.Height2Index[pb.Range.High]
			if hiIdx == layerIdx {
				triArea := layer.Triangulation.TriArea(t)
				polyArea := geom2d.Area(sm.Polygons[pid])
				if polyArea > 0 {
					el.PowerRatio = triArea / polyArea
				}
				el.ScenId = pb.ScenarioId
				el.PowerLutId = pb.PowerLutId
			}
		}
		layer.Elements = append(layer.Elements, el)
	}
}

// findEnclosingPolygon prefers the smallest-area polygon containing p
// among ids; polygons with sentinel material never win.
func findEnclosingPolygon(sm *stackup.Model, ids []int, p geom2d.Point) (int, bool) {
	best, bestArea := -1, -1.0
	for _, pid := range ids {
		if !geom2d.Contains(sm.Polygons[pid], p) {
			continue
		}
		if sm.Materials[pid] == stackup.NoId {
			continue
		}
		a := geom2d.Area(sm.Polygons[pid])
		if best < 0 || a < bestArea {
			best, bestArea = pid, a
		}
	}
	return best, best >= 0
}

func wireSameLayerNeighbors(layer *PrismLayer) {
	tpl2elem := make(map[int]int, len(layer.Elements))
	for _, e := range layer.Elements {
		tpl2elem[e.TemplateId] = e.Id
	}
	for i := range layer.Elements {
		tri := layer.Triangulation.Triangles[layer.Elements[i].TemplateId]
		for k, nbTpl := range tri.Neighbors {
			if nbTpl < 0 {
				continue
			}
			if eid, ok := tpl2elem[nbTpl]; ok {
				layer.Elements[i].Neighbors[k] = eid
			}
		}
	}
}

func (b *Builder) buildPrismInstances(m *Model) {
	m.IndexOffset = make([]int, len(m.Layers))
	offset := 0
	for i, l := range m.Layers {
		m.IndexOffset[i] = offset
		offset += len(l.Elements)
	}
	total := offset
	m.Prisms = make([]PrismInstance, total)

	// (x, y, boundary) -> point index. Boundary i is the plane between
	// layers i-1 and i, so a layer's bottom ring and the next layer's top
	// ring collapse onto the same points in the single-template variant.
	dedup := map[[3]int64]int{}
	addPoint := func(x, y int64, z float64, layerBoundary int, sharedDedup bool) int {
		if sharedDedup {
			key := [3]int64{x, y, int64(layerBoundary)}
			if idx, ok := dedup[key]; ok {
				return idx
			}
			idx := len(m.Points)
			m.Points = append(m.Points, Point3{X: x, Y: y, Z: z})
			dedup[key] = idx
			return idx
		}
		idx := len(m.Points)
		m.Points = append(m.Points, Point3{X: x, Y: y, Z: z})
		return idx
	}

	singleTemplate := b.Settings.Variant == SingleTemplate

	for li, layer := range m.Layers {
		if layer.Triangulation == nil {
			continue
		}
		topZ, botZ := layer.Elevation, layer.Elevation-layer.Thickness
		for _, e := range layer.Elements {
			g := m.GlobalIndex(li, e.Id)
			pts := layer.Triangulation.TriPoints(e.TemplateId)
			var verts [6]int
			for k := 0; k < 3; k++ {
				verts[k] = addPoint(pts[k].X, pts[k].Y, topZ, li, singleTemplate)
				verts[k+3] = addPoint(pts[k].X, pts[k].Y, botZ, li+1, singleTemplate)
			}
			inst := PrismInstance{Layer: li, Element: e.Id, Vertices: verts}
			inst.Neighbors[3], inst.Neighbors[4] = NeighborSentinel, NeighborSentinel
			for k, nbLocal := range e.Neighbors {
				if nbLocal == NeighborSentinel {
					inst.Neighbors[k] = NeighborSentinel
				} else {
					inst.Neighbors[k] = m.GlobalIndex(li, nbLocal)
				}
			}
			m.Prisms[g] = inst
		}
	}

	switch b.Settings.Variant {
	case SingleTemplate:
		wireSingleTemplateVerticalGlobal(m)
	default:
		wireStackupVerticalGlobal(m)
	}
}

// wireSingleTemplateVerticalGlobal resolves TOP/BOT global neighbor ids:
// elements sharing a templateId in adjacent layers are vertical
// neighbors, symmetrically.
func wireSingleTemplateVerticalGlobal(m *Model) {
	for li := 1; li < len(m.Layers); li++ {
		above := make(map[int]int, len(m.Layers[li-1].Elements))
		for _, e := range m.Layers[li-1].Elements {
			above[e.TemplateId] = e.Id
		}
		for _, e := range m.Layers[li].Elements {
			if other, ok := above[e.TemplateId]; ok {
				g, og := m.GlobalIndex(li, e.Id), m.GlobalIndex(li-1, other)
				m.Prisms[g].Neighbors[3] = og
				m.Prisms[og].Neighbors[4] = g
			}
		}
	}
}

// wireStackupVerticalGlobal wires vertical adjacency from geometric
// overlap between adjacent layers' triangles: bounding boxes filter the
// candidates, exact triangle clipping supplies the contact area ratios.
func wireStackupVerticalGlobal(m *Model) {
	for li := 1; li < len(m.Layers); li++ {
		upper, lower := &m.Layers[li-1], &m.Layers[li]
		if upper.Triangulation == nil || lower.Triangulation == nil {
			continue
		}
		if upper.Triangulation == lower.Triangulation {
			// identical mesh: contacts are 1:1 by templateId, matching
			// the single-template shortcut but still recorded as contacts
			// for API uniformity.
			tpl2elemLower := make(map[int]int)
			for _, e := range lower.Elements {
				tpl2elemLower[e.TemplateId] = e.Id
			}
			for _, e := range upper.Elements {
				if otherLocal, ok := tpl2elemLower[e.TemplateId]; ok {
					pg, qg := m.GlobalIndex(li-1, e.Id), m.GlobalIndex(li, otherLocal)
					addContact(m, pg, qg, BOT, 1.0)
					addContact(m, qg, pg, TOP, 1.0)
					m.Prisms[pg].Neighbors[3+int(BOT)] = pg
					m.Prisms[qg].Neighbors[3+int(TOP)] = qg
				}
			}
			continue
		}
		for _, e := range lower.Elements {
			qg := m.GlobalIndex(li, e.Id)
			qTriPts := lower.Triangulation.TriPoints(e.TemplateId)
			qArea := lower.Triangulation.TriArea(e.TemplateId)
			qBB := geom2d.BoundingBox(qTriPts[:])
			for _, pe := range upper.Elements {
				pg := m.GlobalIndex(li-1, pe.Id)
				pTriPts := upper.Triangulation.TriPoints(pe.TemplateId)
				pBB := geom2d.BoundingBox(pTriPts[:])
				if !pBB.Overlaps(qBB) {
					continue
				}
				area := geom2d.TriangleIntersectionArea(pTriPts, qTriPts)
				if area <= 0 {
					continue
				}
				// the upper prism's bottom face covers the lower prism's
				// top face by this fraction, and vice versa.
				pArea := upper.Triangulation.TriArea(pe.TemplateId)
				if pArea > 0 {
					addContact(m, pg, qg, BOT, area/pArea)
				}
				if qArea > 0 {
					addContact(m, qg, pg, TOP, area/qArea)
				}
			}
			if m.Prisms[qg].HasContacts(TOP) {
				m.Prisms[qg].Neighbors[3+int(TOP)] = qg
			}
		}
		for _, pe := range upper.Elements {
			pg := m.GlobalIndex(li-1, pe.Id)
			if m.Prisms[pg].HasContacts(BOT) {
				m.Prisms[pg].Neighbors[3+int(BOT)] = pg
			}
		}
	}
}

func addContact(m *Model, from, to int, o Orientation, ratio float64) {
	m.Prisms[from].Contacts[o] = append(m.Prisms[from].Contacts[o], Contact{OtherGlobal: to, AreaRatio: ratio})
}

// stampBCs transfers uniform BCs directly and stores block BCs verbatim
// (already lattice-space).
func (b *Builder) stampBCs(m *Model) {
	m.UniformBCs = b.Settings.UniformBCs
	m.BlockBCs = b.Settings.BlockBCs
}

// SetUniformBC records the uniform top/bottom boundary condition.
func (m *Model) SetUniformBC(o Orientation, bc ThermalBC) { m.UniformBCs[o] = &bc }

// AddBlockBC records a per-block boundary condition in layout-space
// lattice units (already converted by the caller).
func (m *Model) AddBlockBC(o Orientation, box geom2d.BBox, bc ThermalBC) {
	m.BlockBCs[o] = append(m.BlockBCs[o], BlockBC{Box: box, BC: bc})
}

