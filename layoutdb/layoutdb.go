// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layoutdb declares the narrow interfaces this module consumes from
// an external package/layout database. Nothing here implements a real
// layout store; concrete layouts are supplied by the caller (e.g. a KiCad
// importer or a proprietary EDA database). See material.InMemoryMaterial
// and material.Table1D for minimal reference structs satisfying
// Material/LookupTable1D, used by
// this module's own tests.
package layoutdb

// PropertyKind selects which physical property is queried on a Material.
type PropertyKind int

const (
	ThermalConductivity PropertyKind = iota
	SpecificHeat
	MassDensity
	Resistivity
)

// MaterialType distinguishes solids (meshed) from fluids (excluded from
// the solid thermal mesh).
type MaterialType int

const (
	Solid MaterialType = iota
	Fluid
)

// MaterialProperty is a scalar or anisotropic, temperature-dependent
// property of a Material.
type MaterialProperty interface {
	// GetSimpleProperty returns the isotropic value of the property at
	// temperature t (Kelvin).
	GetSimpleProperty(t float64) (value float64, err error)
	// GetAnisotropicProperty returns the value along the given axis
	// (0=x, 1=y, 2=z) at temperature t.
	GetAnisotropicProperty(t float64, axis int) (value float64, err error)
}

// Material is the external material-library entry this module consumes.
type Material interface {
	Id() int
	Type() MaterialType
	GetProperty(kind PropertyKind) (MaterialProperty, error)
}

// LookupTable1D is a piecewise-linear table over temperature (or any other
// scalar key), used for power lookup tables.
type LookupTable1D interface {
	// Lookup returns the interpolated value at key x. If extrapolate is
	// false and x falls outside the table's key range, Lookup clamps to
	// the nearest endpoint instead of extrapolating.
	Lookup(x float64, extrapolate bool) (value float64, err error)
}

// Point2D is an integer-lattice 2-D coordinate.
type Point2D struct {
	X, Y int64
}

// Polygon is an ordered ring of lattice points; Holes are nested rings cut
// out of the outer ring. Winding is caller-defined; stackup.AddPolygon
// normalizes it.
type Polygon struct {
	Outer []Point2D
	Holes [][]Point2D
}

// VerticalRange is a slab's vertical extent in scaled integer units
// (signed integers scaled by 10^layerCutPrecision). Valid iff High > Low.
type VerticalRange struct {
	High, Low int64
}

// Valid reports whether the range has positive extent.
func (r VerticalRange) Valid() bool { return r.High > r.Low }

// StackupLayer is one horizontal slab of the physical stackup.
type StackupLayer struct {
	Id              int
	Name            string
	DielectricMatId int
	ConductingMatId int
}

// Component is a black-box or hierarchical part placed on the stackup.
type Component struct {
	Id          int
	Boundary    Polygon
	MatId       int
	BlackBox    bool
	LossPowerId int // >=0 if this component has a LossPower binding
	ScenarioId  int
	PowerLutId  int
	// SolderFillMatId, when >=0, is the material used to fill the
	// assembly-layer slab between the die bottom and the board; only
	// meaningful when the component sits above a gap.
	SolderFillMatId int
	// LayerId is the stackup layer this component is mounted on; used to
	// resolve the layer directly beneath it via
	// LayoutRetriever.GetComponentLayerHeightThickness when testing for a
	// die-attach/flip-chip gap.
	LayerId int
}

// ConnObjKind tags the variant held by a ConnObj.
type ConnObjKind int

const (
	ConnBondingWire ConnObjKind = iota
	ConnRoutingWire
	ConnPadstackInst
)

// BondingWireSpec is the pre-sampling description of a bond wire (its
// spline control data lives in the external layout database; only the
// attributes this module needs are exposed here).
type BondingWireSpec struct {
	Id         int
	Radius     float64 // meters
	Current    float64 // amperes
	NetId      int
	MatId      int
	ScenarioId int
	StartLayer int
	EndLayer   int
}

// RoutingWireSpec describes a routing (trace) wire on a single stackup
// layer.
type RoutingWireSpec struct {
	Id              int
	LayerId         int
	Shape           Polygon
	ConductingMatId int
	DielectricMatId int
	NetId           int
}

// PadstackInstSpec describes a via/padstack instance spanning a layer
// range.
type PadstackInstSpec struct {
	Id                 int
	MatId              int
	NetId              int
	FromLayer, ToLayer int
	PadShape           func(layer int) (Polygon, bool) // pad shape at layer, or via fallback
	CircleCenter       *Point2D                        // set when the pad/via shape is a circle
}

// ConnObj is exactly one of {BondingWire, RoutingWire, PadstackInst}.
type ConnObj struct {
	Kind     ConnObjKind
	Bonding  *BondingWireSpec
	Routing  *RoutingWireSpec
	Padstack *PadstackInstSpec
}

// Layout is the external package/layout database this module builds a
// thermal model from.
type Layout interface {
	Boundary() Polygon
	CoordUnit() float64 // meters per lattice unit (scaleH2Unit * scale2Meter)

	StackupLayers() []StackupLayer
	Components() []Component
	ConnObjects() []ConnObj
	Materials() []Material
}

// LayoutRetriever resolves elevation/thickness queries against a Layout;
// kept separate from Layout itself because a real implementation usually
// derives these from a richer stackup database.
type LayoutRetriever interface {
	GetStackupLayerHeightThickness(layer StackupLayer) (elevation, thickness float64, ok bool)
	GetComponentHeightThickness(c Component) (elevation, thickness float64, ok bool)
	GetComponentLayerHeightThickness(c Component, layerId int) (elevation, thickness float64, ok bool)

	// GetBondingWireSegmentsWithMinSeg samples the wire's spline into at
	// least minSegs straight segments.
	GetBondingWireSegmentsWithMinSeg(bw BondingWireSpec, minSegs int) (pts []Point2D, heights []float64, err error)

	// GetBondingWireStart/EndSolderJointParameters return the solder-joint
	// shape at the wire's start/end, if the wire declares one.
	GetBondingWireStartSolderJointParameters(bw BondingWireSpec, matId int) (shape Polygon, elevation, thickness float64, ok bool)
	GetBondingWireEndSolderJointParameters(bw BondingWireSpec, matId int) (shape Polygon, elevation, thickness float64, ok bool)
}
