// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package prism implements the volumetric prism thermal model and its
// builders (single-template and stackup variants): triangular prism
// elements lifted from per-layer triangulations, with material, power and
// boundary-condition attribution plus inter-element adjacency.
package prism

import (
	"github.com/cpmech/gosl/chk"

	"github.com/0x0-bwu/nanoheat-go/geom2d"
)

// NeighborSentinel marks "no neighbor at this slot". It is distinct from
// a stackup-variant prism referencing its own global index, which means
// "see Contacts instead"; see HasContacts/IsBoundary.
const NeighborSentinel = -1

// Orientation indexes the two vertical faces of a prism/layer.
type Orientation int

const (
	TOP Orientation = 0
	BOT Orientation = 1
)

// BCKind tags a ThermalBoundaryCondition's variant.
type BCKind int

const (
	HTC BCKind = iota
	HeatFlux
	Temperature
)

// ThermalBC is a tagged boundary condition: HTC in W/(m^2*K), HeatFlux
// in W/m^2, Temperature in Kelvin.
type ThermalBC struct {
	Kind  BCKind
	Value float64
}

// BlockBC restricts a ThermalBC to prisms whose centroid falls within Box
// (layout-space lattice units).
type BlockBC struct {
	Box geom2d.BBox
	BC  ThermalBC
}

// PrismElement is a per-layer, local mesh element.
// Neighbors are same-layer local element ids (triangle-adjacency),
// NeighborSentinel when the triangle edge has no element (e.g. fluid, or
// mesh boundary).
type PrismElement struct {
	Id         int
	NetId      int
	MatId      int
	ScenId     int
	TemplateId int
	PowerLutId int
	PowerRatio float64
	Neighbors  [3]int
}

// PrismLayer is one vertically-sliced layer's worth of elements, sharing
// its Triangulation pointer with any adjacent layer presenting an
// identical polygon set.
type PrismLayer struct {
	Id            int
	Elevation     float64
	Thickness     float64
	Elements      []PrismElement
	Triangulation *geom2d.Triangulation
}

// Contact is one stackup-variant vertical overlap: the other prism's
// global index and the fraction of this prism's face it covers.
type Contact struct {
	OtherGlobal int
	AreaRatio   float64
}

// Point3 is a 3-D point: lattice (x,y) plus a physical-unit elevation.
type Point3 struct {
	X, Y int64
	Z    float64
}

// PrismInstance is a flattened, global prism. Neighbors[0:3]
// are same-layer global ids; Neighbors[3]=TOP, Neighbors[4]=BOT. In the
// stackup variant, Neighbors[3/4] hold the prism's own global index
// ("self-reference") when Contacts[TOP/BOT] is non-empty; see
// HasContacts/IsBoundary, which make the two cases explicit rather than
// re-deriving the convention at every call site.
type PrismInstance struct {
	Layer, Element int
	Vertices       [6]int
	Neighbors      [5]int
	Contacts       [2][]Contact
}

// HasContacts reports whether orientation o carries stackup-variant
// contact fractions.
func (p *PrismInstance) HasContacts(o Orientation) bool { return len(p.Contacts[o]) > 0 }

// IsBoundary reports whether face o is fully exposed to a top/bottom
// boundary condition (no neighbor and no contacts at all).
func (p *PrismInstance) IsBoundary(o Orientation) bool {
	return p.Neighbors[3+int(o)] == NeighborSentinel && !p.HasContacts(o)
}

// ContactExposedFraction returns 1 minus the sum of o's contact area
// ratios: the fraction of the face still exposed to the top/bottom BC
// even though contacts exist.
func (p *PrismInstance) ContactExposedFraction(o Orientation) float64 {
	sum := 0.0
	for _, c := range p.Contacts[o] {
		sum += c.AreaRatio
	}
	rem := 1 - sum
	if rem < 0 {
		return 0
	}
	return rem
}

// LineElement is a cylindrical bond-wire segment. Id is its global id
// (TotalPrismElements + local line index, the value Model.LineGlobalId
// returns).
type LineElement struct {
	Id         int
	NetId      int
	MatId      int
	ScenId     int
	Radius     float64
	Current    float64
	EndPts     [2]Point3
	Neighbors  [2][]int // global neighbor ids (prisms and/or lines) at each end
}

// Model is the full volumetric element graph: prism layers, flattened
// prism instances, line elements and boundary conditions.
type Model struct {
	Layers      []PrismLayer
	Prisms      []PrismInstance
	Points      []Point3
	IndexOffset []int
	Lines       []LineElement
	UniformBCs  [2]*ThermalBC
	BlockBCs    [2][]BlockBC
}

// TotalPrismElements sums each layer's local element count; equals
// len(Prisms) once Builder.Build has laid out the prism instances.
func (m *Model) TotalPrismElements() int {
	n := 0
	for _, l := range m.Layers {
		n += len(l.Elements)
	}
	return n
}

// GlobalIndex returns the flat prism index for (layer, local).
func (m *Model) GlobalIndex(layer, local int) int { return m.IndexOffset[layer] + local }

// PrismLocalIndex decodes a global prism index into (layer, local) via
// binary search over IndexOffset; it inverts GlobalIndex.
func (m *Model) PrismLocalIndex(global int) (layer, local int, err error) {
	if global < 0 || global >= len(m.Prisms) {
		return 0, 0, chk.Err("prism: global index %d out of range [0,%d)", global, len(m.Prisms))
	}
	lo, hi := 0, len(m.IndexOffset)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if m.IndexOffset[mid] <= global {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, global - m.IndexOffset[lo], nil
}

// LineGlobalId maps a local line index to its global element id.
func (m *Model) LineGlobalId(localLine int) int { return m.TotalPrismElements() + localLine }

// IsLine reports whether a global id refers to a LineElement rather than
// a PrismInstance.
func (m *Model) IsLine(global int) bool { return global >= len(m.Prisms) }
