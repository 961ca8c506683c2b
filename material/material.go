// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package material supplies reference implementations of layoutdb.Material
// and layoutdb.LookupTable1D: piecewise-linear lookup tables and
// isotropic/anisotropic, temperature-dependent property models behind a
// named-model registry.
package material

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/la"

	"github.com/0x0-bwu/nanoheat-go/layoutdb"
)

// Model is a registered temperature-dependent property model for any
// scalar property (conductivity, specific heat, density, resistivity).
type Model interface {
	Init(prms fun.Prms) error
	GetPrms(example bool) fun.Prms
	Value(t float64) float64
	DValueDT(t float64) float64
}

// allocators holds all registered Model constructors.
var allocators = map[string]func() Model{}

// Register adds a named Model constructor to the factory. Called from
// init() by each model in this package.
func Register(name string, alloc func() Model) {
	allocators[name] = alloc
}

// New instantiates a registered model by name.
func New(name string) (Model, error) {
	alloc, ok := allocators[name]
	if !ok {
		return nil, chk.Err("material: model %q is not available in the registry", name)
	}
	return alloc(), nil
}

// Polynomial implements Model as a cubic polynomial in temperature,
//
//	value(T) = a0 + a1*T + a2*T^2 + a3*T^3
type Polynomial struct {
	A0, A1, A2, A3 float64
}

func init() {
	Register("polynomial", func() Model { return new(Polynomial) })
}

// Init connects a0..a3 to the parameter database, per the
// fun.Prms.Connect idiom.
func (m *Polynomial) Init(prms fun.Prms) error {
	prms.Connect(&m.A0, "a0", "Polynomial material model")
	prms.Connect(&m.A1, "a1", "Polynomial material model")
	prms.Connect(&m.A2, "a2", "Polynomial material model")
	prms.Connect(&m.A3, "a3", "Polynomial material model")
	return nil
}

// GetPrms returns m's current a0..a3 coefficients, or, when example is
// true, an example parameter set (all-zero except a0=1, the
// constant/isotropic default).
func (m *Polynomial) GetPrms(example bool) fun.Prms {
	if !example {
		return fun.Prms{
			&fun.Prm{N: "a0", V: m.A0},
			&fun.Prm{N: "a1", V: m.A1},
			&fun.Prm{N: "a2", V: m.A2},
			&fun.Prm{N: "a3", V: m.A3},
		}
	}
	return fun.Prms{
		&fun.Prm{N: "a0", V: 1},
		&fun.Prm{N: "a1", V: 0},
		&fun.Prm{N: "a2", V: 0},
		&fun.Prm{N: "a3", V: 0},
	}
}

// Value computes value(T).
func (m *Polynomial) Value(t float64) float64 {
	return m.A0 + m.A1*t + m.A2*t*t + m.A3*t*t*t
}

// DValueDT computes d(value)/dT.
func (m *Polynomial) DValueDT(t float64) float64 {
	return m.A1 + 2*m.A2*t + 3*m.A3*t*t
}

// AnisotropicConductivity holds a per-axis Polynomial conductivity and
// assembles the 3x3 diagonal conductivity tensor.
type AnisotropicConductivity struct {
	Kx, Ky, Kz Polynomial
}

// Kten fills kten (3x3, pre-allocated via la.MatAlloc) with the
// temperature-evaluated diagonal conductivity tensor at t.
func (a *AnisotropicConductivity) Kten(kten [][]float64, t float64) {
	la.MatFill(kten, 0)
	kten[0][0] = a.Kx.Value(t)
	kten[1][1] = a.Ky.Value(t)
	kten[2][2] = a.Kz.Value(t)
}

// InMemoryProperty is a minimal layoutdb.MaterialProperty: isotropic plus
// optional per-axis anisotropic overrides, each a Polynomial in
// temperature.
type InMemoryProperty struct {
	Isotropic   Polynomial
	Anisotropic [3]Polynomial // index 0=x,1=y,2=z; zero-value (all coeffs 0) means "use Isotropic"
}

func (p *InMemoryProperty) GetSimpleProperty(t float64) (float64, error) {
	return p.Isotropic.Value(t), nil
}

func (p *InMemoryProperty) GetAnisotropicProperty(t float64, axis int) (float64, error) {
	if axis < 0 || axis > 2 {
		return 0, chk.Err("material: axis out of range: %d", axis)
	}
	m := p.Anisotropic[axis]
	if m == (Polynomial{}) {
		return p.Isotropic.Value(t), nil
	}
	return m.Value(t), nil
}

// InMemoryMaterial is a minimal layoutdb.Material reference
// implementation, backed by a map of PropertyKind to InMemoryProperty.
type InMemoryMaterial struct {
	IdValue   int
	TypeValue layoutdb.MaterialType
	Props     map[layoutdb.PropertyKind]*InMemoryProperty
}

func (m *InMemoryMaterial) Id() int                     { return m.IdValue }
func (m *InMemoryMaterial) Type() layoutdb.MaterialType { return m.TypeValue }

func (m *InMemoryMaterial) GetProperty(kind layoutdb.PropertyKind) (layoutdb.MaterialProperty, error) {
	p, ok := m.Props[kind]
	if !ok {
		return nil, chk.Err("material: material %d has no property %v", m.IdValue, kind)
	}
	return p, nil
}

// Table1D is a piecewise-linear reference implementation of
// layoutdb.LookupTable1D over (key, value) pairs sorted by key.
type Table1D struct {
	Keys   []float64
	Values []float64
}

// NewTable1D builds a Table1D from unordered samples, sorting by key.
func NewTable1D(keys, values []float64) (*Table1D, error) {
	if len(keys) != len(values) {
		return nil, chk.Err("material: keys and values must have the same length, %d != %d", len(keys), len(values))
	}
	if len(keys) == 0 {
		return nil, chk.Err("material: table must have at least one sample")
	}
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return keys[idx[i]] < keys[idx[j]] })
	t := &Table1D{Keys: make([]float64, len(keys)), Values: make([]float64, len(values))}
	for i, j := range idx {
		t.Keys[i] = keys[j]
		t.Values[i] = values[j]
	}
	return t, nil
}

// Lookup interpolates (or clamps, when extrapolate is false and x falls
// outside the table's range) the value at x.
func (t *Table1D) Lookup(x float64, extrapolate bool) (float64, error) {
	n := len(t.Keys)
	if n == 1 {
		return t.Values[0], nil
	}
	if x <= t.Keys[0] {
		if !extrapolate {
			return t.Values[0], nil
		}
		return t.interpAt(0, x), nil
	}
	if x >= t.Keys[n-1] {
		if !extrapolate {
			return t.Values[n-1], nil
		}
		return t.interpAt(n-2, x), nil
	}
	i := sort.SearchFloat64s(t.Keys, x)
	if i < len(t.Keys) && t.Keys[i] == x {
		return t.Values[i], nil
	}
	return t.interpAt(i-1, x), nil
}

func (t *Table1D) interpAt(i int, x float64) float64 {
	x0, x1 := t.Keys[i], t.Keys[i+1]
	y0, y1 := t.Values[i], t.Values[i+1]
	if x1 == x0 {
		return y0
	}
	frac := (x - x0) / (x1 - x0)
	return y0 + frac*(y1-y0)
}
