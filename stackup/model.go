// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stackup builds the canonical, vertically-sliced polygon
// representation of a layout: per-layer polygons with net/material
// attribution, power-block annotations, bonding-wire polylines and the
// derived layer-order lookup tables.
package stackup

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"

	"github.com/0x0-bwu/nanoheat-go/geom2d"
	"github.com/0x0-bwu/nanoheat-go/layoutdb"
)

// NoId is the sentinel for an absent net, material or polygon id.
const NoId = -1

// PowerBlock is a polygon region that injects power via a scenario/LUT
// pair, tracked separately from the plain polygon/material attribution.
type PowerBlock struct {
	Polygon    geom2d.Polygon
	Range      layoutdb.VerticalRange
	ScenarioId int
	PowerLutId int
}

// BondingWire is a sampled bond-wire polyline ready for prism-model
// wiring.
type BondingWire struct {
	Radius     float64
	Current    float64
	NetId      int
	MatId      int
	ScenarioId int
	Heights    []float64
	Pt2Ds      []geom2d.Point
}

// Model is the canonical per-layer polygon soup
// plus its vertical slicing, built incrementally by Builder and finalized
// by BuildLayerPolygonLUT.
type Model struct {
	Polygons    []geom2d.Polygon
	Nets        []int
	Materials   []int
	LayerRanges []layoutdb.VerticalRange

	SteinerPoints []geom2d.Point
	PowerBlocks   map[int]*PowerBlock
	BondingWires  []BondingWire

	// derived, set by BuildLayerPolygonLUT
	LayerOrder    []int64
	Height2Index  map[int64]int
	LayerPolygons [][]int

	precision int // layerCutPrecision: vertical scale = 10^precision
}

// NewModel allocates an empty LayerStackupModel scaled by
// 10^layerCutPrecision for vertical-range quantization.
func NewModel(layerCutPrecision int) *Model {
	return &Model{
		PowerBlocks: make(map[int]*PowerBlock),
		precision:   layerCutPrecision,
	}
}

func (m *Model) scale() float64 { return math.Pow(10, float64(m.precision)) }

// GetLayerRange quantizes a (elevation, thickness) pair, both in the same
// physical units as the layout's coordUnit, into a scaled-integer
// VerticalRange. Returns ok=false when the result is not Valid
// (non-positive thickness); the caller drops such polygons.
func (m *Model) GetLayerRange(elevation, thickness float64) (layoutdb.VerticalRange, bool) {
	s := m.scale()
	r := layoutdb.VerticalRange{
		High: int64(math.Round(elevation * s)),
		Low:  int64(math.Round((elevation - thickness) * s)),
	}
	return r, r.Valid()
}

// AddPolygon appends a polygon to the soup with the given net/material
// attribution and vertical range, normalizing winding (holes clockwise,
// solids counter-clockwise). Returns NoId if the range is invalid: the
// polygon is silently dropped, not an error.
func (m *Model) AddPolygon(net, mat int, poly geom2d.Polygon, isHole bool, elevation, thickness float64) int {
	r, ok := m.GetLayerRange(elevation, thickness)
	if !ok {
		return NoId
	}
	return m.addPolygonWithRange(net, mat, poly, isHole, r)
}

func (m *Model) addPolygonWithRange(net, mat int, poly geom2d.Polygon, isHole bool, r layoutdb.VerticalRange) int {
	normalizeWinding(&poly, isHole)
	id := len(m.Polygons)
	m.Polygons = append(m.Polygons, poly)
	m.Nets = append(m.Nets, net)
	m.Materials = append(m.Materials, mat)
	m.LayerRanges = append(m.LayerRanges, r)
	return id
}

// AddImprintPolygon appends an imprint-box polygon with sentinel material
// and an invalid vertical range (High == Low). BuildLayerPolygonLUT skips
// invalid ranges, so the polygon adds no height to the slicing and is in
// no slab's polygon list; the prism builders therefore do not mesh it.
func (m *Model) AddImprintPolygon(poly geom2d.Polygon) int {
	id := len(m.Polygons)
	m.Polygons = append(m.Polygons, poly)
	m.Nets = append(m.Nets, NoId)
	m.Materials = append(m.Materials, NoId)
	m.LayerRanges = append(m.LayerRanges, layoutdb.VerticalRange{High: 0, Low: 0}) // invalid: High == Low
	return id
}

func normalizeWinding(poly *geom2d.Polygon, isHole bool) {
	wantCCW := !isHole
	if geom2d.IsCCW(poly.Outer) != wantCCW {
		geom2d.ReverseRing(poly.Outer)
	}
	for _, h := range poly.Holes {
		if geom2d.IsCCW(h) != isHole {
			geom2d.ReverseRing(h)
		}
	}
}

// clampPowerThickness clamps the power slab's thickness to the remaining
// distance between its position-offset top and the enclosing slab's
// bottom.
func clampPowerThickness(elevation, thickness, pwrPosition, pwrThickness float64) (pwrElev, pwrThk float64) {
	pwrElev = elevation - thickness*pwrPosition
	slabBottom := elevation - thickness
	remaining := pwrElev - slabBottom
	pwrThk = math.Min(thickness*pwrThickness, remaining)
	return
}

// AddPowerBlock appends a power-injecting polygon. pwrPosition and
// pwrThickness are fractions of thickness measured down from elevation
// (the component's top); see clampPowerThickness for the thickness clamp.
func (m *Model) AddPowerBlock(mat int, poly geom2d.Polygon, scenario, powerLut int, elevation, thickness, pwrPosition, pwrThickness float64) int {
	pwrElev, pwrThk := clampPowerThickness(elevation, thickness, pwrPosition, pwrThickness)
	r, ok := m.GetLayerRange(pwrElev, pwrThk)
	if !ok {
		return NoId
	}
	id := m.addPolygonWithRange(NoId, mat, poly, false, r)
	m.PowerBlocks[id] = &PowerBlock{Polygon: poly, Range: r, ScenarioId: scenario, PowerLutId: powerLut}
	return id
}

// AddShape decomposes a solid-plus-holes shape into AddPolygon calls: one
// for the outer ring (solidMat) and one per hole (holeMat). If circleCenter
// is non-nil and addCircleCenterAsSteinerPoint is set, the center is
// additionally recorded as a Steiner point, forcing a mesh node at the
// circle's center.
func (m *Model) AddShape(net, solidMat, holeMat int, shape geom2d.Polygon, elevation, thickness float64, circleCenter *geom2d.Point, addCircleCenterAsSteinerPoint bool) {
	m.AddPolygon(net, solidMat, geom2d.Polygon{Outer: shape.Outer}, false, elevation, thickness)
	for _, h := range shape.Holes {
		m.AddPolygon(net, holeMat, geom2d.Polygon{Outer: h}, true, elevation, thickness)
	}
	if circleCenter != nil && addCircleCenterAsSteinerPoint {
		m.SteinerPoints = append(m.SteinerPoints, *circleCenter)
	}
}

// BuildLayerPolygonLUT derives LayerOrder/Height2Index/LayerPolygons from
// the current polygon soup, bisecting slabs until no two adjacent slabs'
// thickness ratio exceeds vRatio (vRatio<=1 disables the pass). A slab
// whose polygon set equals its predecessor's shares the predecessor's id
// slice, so consumers can detect "same geometry as the layer above" by
// comparing slice identity.
func (m *Model) BuildLayerPolygonLUT(vRatio float64) {
	heights := make(map[int64]bool)
	for _, r := range m.LayerRanges {
		if r.Valid() {
			heights[r.High] = true
			heights[r.Low] = true
		}
	}
	for _, pb := range m.PowerBlocks {
		if pb.Range.Valid() {
			heights[pb.Range.High] = true
			heights[pb.Range.Low] = true
		}
	}
	order := make([]int64, 0, len(heights))
	for h := range heights {
		order = append(order, h)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] > order[j] })

	if vRatio > 1 && len(order) > 2 {
		order = enforceTransitionRatio(order, vRatio)
	}

	m.LayerOrder = order
	m.Height2Index = make(map[int64]int, len(order))
	for i, h := range order {
		m.Height2Index[h] = i
	}

	if len(order) < 2 {
		m.LayerPolygons = nil
		return
	}
	nSlabs := len(order) - 1
	m.LayerPolygons = make([][]int, nSlabs)
	var prev []int
	for layer := 0; layer < nSlabs; layer++ {
		hi, lo := order[layer], order[layer+1]
		var ids []int
		for pid, r := range m.LayerRanges {
			if r.Valid() && r.High >= hi && r.Low <= lo {
				ids = append(ids, pid)
			}
		}
		if prev != nil && intSliceEqual(ids, prev) {
			m.LayerPolygons[layer] = m.LayerPolygons[layer-1]
		} else {
			m.LayerPolygons[layer] = ids
		}
		prev = ids
	}
}

// enforceTransitionRatio repeatedly finds the adjacent-slab pair with the
// worst thickness ratio and bisects the thicker of the two (rounded
// midpoint) until every adjacent pair is within vRatio or the pass limit
// is hit. Bisection halves the violating slab each time, so it converges
// in O(log(maxRatio)) passes per violation.
func enforceTransitionRatio(order []int64, vRatio float64) []int64 {
	const maxPasses = 10000
	for pass := 0; pass < maxPasses; pass++ {
		worstI, worstRatio := -1, vRatio
		for i := 0; i+2 < len(order); i++ {
			a := order[i] - order[i+1]
			b := order[i+1] - order[i+2]
			if a <= 0 || b <= 0 {
				continue
			}
			r := float64(a) / float64(b)
			if r < 1 {
				r = 1 / r
			}
			if r > worstRatio {
				worstRatio = r
				worstI = i
			}
		}
		if worstI < 0 {
			break
		}
		a := order[worstI] - order[worstI+1]
		b := order[worstI+1] - order[worstI+2]
		var mid int64
		if a > b {
			mid = order[worstI] - a/2 // bisect the thicker [order[i], order[i+1]] slab
		} else {
			mid = order[worstI+1] - b/2 // bisect the thicker [order[i+1], order[i+2]] slab
		}
		before := len(order)
		order = insertDescending(order, mid)
		if len(order) == before {
			break // bisection hit the integer-quantization floor; keep best effort
		}
	}
	return order
}

func insertDescending(order []int64, h int64) []int64 {
	i := sort.Search(len(order), func(i int) bool { return order[i] <= h })
	if i < len(order) && order[i] == h {
		return order
	}
	order = append(order, 0)
	copy(order[i+1:], order[i:])
	order[i] = h
	return order
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GetPolygonsAt returns the polygon ids present at layer index layer (a
// slab index into LayerOrder/LayerPolygons), or an error if out of range.
func (m *Model) GetPolygonsAt(layer int) ([]int, error) {
	if layer < 0 || layer >= len(m.LayerPolygons) {
		return nil, chk.Err("stackup: layer index %d out of range [0,%d)", layer, len(m.LayerPolygons))
	}
	return m.LayerPolygons[layer], nil
}

// NumSlabs returns the number of vertically-sliced slabs after
// BuildLayerPolygonLUT.
func (m *Model) NumSlabs() int { return len(m.LayerPolygons) }

// SlabElevationThickness returns the (elevation, thickness) of slab i in
// the model's physical units (dividing back by 10^precision).
func (m *Model) SlabElevationThickness(i int) (elevation, thickness float64) {
	s := m.scale()
	hi, lo := m.LayerOrder[i], m.LayerOrder[i+1]
	return float64(hi) / s, float64(hi-lo) / s
}
