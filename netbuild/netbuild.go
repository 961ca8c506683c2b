// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package netbuild maps a prism thermal model onto a resistor network:
// it walks the model at a given temperature field and stamps resistances,
// capacitances, power sources and boundary conditions into a
// network.Network.
package netbuild

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/0x0-bwu/nanoheat-go/geom2d"
	"github.com/0x0-bwu/nanoheat-go/layoutdb"
	"github.com/0x0-bwu/nanoheat-go/network"
	"github.com/0x0-bwu/nanoheat-go/prism"
	"github.com/0x0-bwu/nanoheat-go/threadpool"
)

// Summary accumulates the scalar energy-balance bookkeeping of one
// assembly pass.
type Summary struct {
	IHeatFlow float64 // injected (power sources + inbound heat flux)
	OHeatFlow float64 // outbound heat flux
	JouleHeat float64 // bond-wire resistive heating
}

// Settings configures Builder.Build.
type Settings struct {
	// CoordUnit converts a lattice unit to meters (ScaleH2Unit*Scale2Meter).
	CoordUnit float64 `json:"coordUnit"`
}

// Builder assembles thermal networks from a prism model.
type Builder struct {
	Settings  Settings
	Materials map[int]layoutdb.Material
	PowerLuts map[int]layoutdb.LookupTable1D
	Pool      *threadpool.Pool
}

// NewBuilder indexes materials by id and returns a Builder. pool defaults
// to a single-threaded pool (the mandatory fallback) when nil.
func NewBuilder(settings Settings, materials []layoutdb.Material, powerLuts map[int]layoutdb.LookupTable1D, pool *threadpool.Pool) *Builder {
	matById := make(map[int]layoutdb.Material, len(materials))
	for _, mm := range materials {
		matById[mm.Id()] = mm
	}
	if pool == nil {
		pool = threadpool.New(1)
	}
	return &Builder{Settings: settings, Materials: matById, PowerLuts: powerLuts, Pool: pool}
}

// edgeRec is a pending resistance between two global node ids (p<q),
// collected during the parallel per-prism pass and merged into the
// network with a single-threaded net.SetR call afterward; symmetric
// writes would otherwise race across range boundaries.
type edgeRec struct {
	p, q int
	r    float64
}

type partial struct {
	edges    []edgeRec
	in, out  float64
}

// Build resolves material properties at iniT and stamps lateral and
// vertical resistances, power sources, bond-wire resistors and Joule
// heating, and boundary conditions.
func (b *Builder) Build(m *prism.Model, iniT []float64) (*network.Network, *Summary, error) {
	total := m.TotalPrismElements() + len(m.Lines)
	if len(iniT) != total {
		return nil, nil, chk.Err("netbuild: iniT has %d entries, want %d (TotalElements)", len(iniT), total)
	}
	net := network.New(total)
	summary := &Summary{}

	if err := b.assemblePrisms(net, m, iniT, summary); err != nil {
		return nil, nil, err
	}
	b.assembleLines(net, m, iniT, summary)

	return net, summary, nil
}

// assemblePrisms runs the per-prism loop over 2*Threads() contiguous
// ranges, merging cross-node resistances after the barrier.
func (b *Builder) assemblePrisms(net *network.Network, m *prism.Model, iniT []float64, summary *Summary) error {
	total := m.TotalPrismElements()
	if total == 0 {
		return nil
	}
	threads := b.Pool.Threads()
	if threads < 1 {
		threads = 1
	}
	ranges := 2 * threads
	chunk := (total + ranges - 1) / ranges

	partials := make([]partial, ranges)
	for ri := 0; ri < ranges; ri++ {
		lo := ri * chunk
		hi := lo + chunk
		if hi > total {
			hi = total
		}
		if lo >= hi {
			continue
		}
		ri, lo, hi := ri, lo, hi
		b.Pool.Submit(func() {
			var pr partial
			for g := lo; g < hi; g++ {
				edges, in, out := b.assemblePrism(net, m, iniT, g)
				pr.edges = append(pr.edges, edges...)
				pr.in += in
				pr.out += out
			}
			partials[ri] = pr
		})
	}
	b.Pool.Wait()

	for _, pr := range partials {
		for _, e := range pr.edges {
			net.SetR(e.p, e.q, e.r)
		}
		summary.IHeatFlow += pr.in
		summary.OHeatFlow += pr.out
	}
	return nil
}

// assemblePrism resolves a single prism's capacitance, power and
// resistances. It writes only to net.Nodes[g] directly (safe under
// concurrent per-range execution); cross-node resistances are returned
// for the caller to merge after the barrier.
func (b *Builder) assemblePrism(net *network.Network, m *prism.Model, iniT []float64, g int) (edges []edgeRec, in, out float64) {
	li, local, err := m.PrismLocalIndex(g)
	if err != nil {
		chk.Panic("netbuild: %v", err)
	}
	layer := &m.Layers[li]
	elem := layer.Elements[local]
	inst := &m.Prisms[g]
	t := iniT[g]

	kx, ky, kz, rho, c := b.resolveMat(elem.MatId, t)
	triArea := layer.Triangulation.TriArea(elem.TemplateId)
	areaM2 := triArea * b.Settings.CoordUnit * b.Settings.CoordUnit
	volume := areaM2 * layer.Thickness

	net.Nodes[g].C = c * rho * volume
	net.Nodes[g].Scen = elem.ScenId

	if elem.PowerLutId >= 0 {
		if lut, ok := b.PowerLuts[elem.PowerLutId]; ok {
			if val, err := lut.Lookup(t, false); err == nil {
				p := val * elem.PowerRatio
				net.Nodes[g].HF += p
				in += p
			}
		}
	}

	kxyP := (kx + ky) / 2
	for k := 0; k < 3; k++ {
		nbLocal := elem.Neighbors[k]
		if nbLocal == prism.NeighborSentinel {
			continue
		}
		og := m.GlobalIndex(li, nbLocal)
		if g >= og {
			continue
		}
		nbElem := layer.Elements[nbLocal]
		nkx, nky, _, _, _ := b.resolveMat(nbElem.MatId, iniT[og])
		nkxy := (nkx + nky) / 2

		tri := layer.Triangulation.Triangles[elem.TemplateId]
		a, bIdx := tri.V[k], tri.V[(k+1)%3]
		seg := geom2d.Segment{A: layer.Triangulation.Points[a], B: layer.Triangulation.Points[bIdx]}
		edgeLen := seg.A.Dist(seg.B) * b.Settings.CoordUnit
		cp := layer.Triangulation.TriCentroid(elem.TemplateId)
		cq := layer.Triangulation.TriCentroid(nbElem.TemplateId)
		d := cp.Dist(cq) * b.Settings.CoordUnit
		de := geom2d.DistPointToSegment(cp, seg) * b.Settings.CoordUnit
		vArea := layer.Thickness * edgeLen

		if kxyP > 0 && nkxy > 0 && vArea > 0 {
			r := de/(kxyP*vArea) + (d-de)/(nkxy*vArea)
			if r > 0 {
				edges = append(edges, edgeRec{g, og, r})
			}
		}
	}

	for _, o := range [2]prism.Orientation{prism.TOP, prism.BOT} {
		switch {
		case inst.HasContacts(o):
			for _, ct := range inst.Contacts[o] {
				q := ct.OtherGlobal
				if g >= q {
					continue
				}
				qli, qlocal, err := m.PrismLocalIndex(q)
				if err != nil {
					continue
				}
				qElem := m.Layers[qli].Elements[qlocal]
				_, _, qkz, _, _ := b.resolveMat(qElem.MatId, iniT[q])
				if kz > 0 && qkz > 0 && ct.AreaRatio > 0 {
					r := (0.5*layer.Thickness/kz + 0.5*m.Layers[qli].Thickness/qkz) / (areaM2 * ct.AreaRatio)
					if r > 0 {
						edges = append(edges, edgeRec{g, q, r})
					}
				}
			}
			if exposed := inst.ContactExposedFraction(o); exposed > 0 {
				bi, bo := b.applyOrientationBC(net, m, li, layer, elem, g, o, areaM2*exposed)
				in += bi
				out += bo
			}

		case inst.Neighbors[3+int(o)] != prism.NeighborSentinel && inst.Neighbors[3+int(o)] != g:
			nb := inst.Neighbors[3+int(o)]
			if g < nb {
				qli, qlocal, err := m.PrismLocalIndex(nb)
				if err == nil {
					qElem := m.Layers[qli].Elements[qlocal]
					_, _, qkz, _, _ := b.resolveMat(qElem.MatId, iniT[nb])
					if kz > 0 && qkz > 0 {
						r := (0.5*layer.Thickness/kz + 0.5*m.Layers[qli].Thickness/qkz) / areaM2
						if r > 0 {
							edges = append(edges, edgeRec{g, nb, r})
						}
					}
				}
			}

		default:
			bi, bo := b.applyOrientationBC(net, m, li, layer, elem, g, o, areaM2)
			in += bi
			out += bo
		}
	}

	return edges, in, out
}

// applyOrientationBC stamps a top/bot boundary condition for the given
// prism face; block BCs take precedence over the uniform BC for that
// orientation.
func (b *Builder) applyOrientationBC(net *network.Network, m *prism.Model, li int, layer *prism.PrismLayer, elem prism.PrismElement, g int, o prism.Orientation, area float64) (in, out float64) {
	bc, ok := b.resolveBC(m, layer, elem, o)
	if !ok {
		return 0, 0
	}
	switch bc.Kind {
	case prism.HTC:
		net.Nodes[g].HTC += bc.Value * area
	case prism.HeatFlux:
		p := bc.Value * area
		net.Nodes[g].HF += p
		if p >= 0 {
			in = p
		} else {
			out = -p
		}
	case prism.Temperature:
		net.Nodes[g].T = bc.Value
	}
	return in, out
}

func (b *Builder) resolveBC(m *prism.Model, layer *prism.PrismLayer, elem prism.PrismElement, o prism.Orientation) (prism.ThermalBC, bool) {
	centroid := layer.Triangulation.TriCentroid(elem.TemplateId)
	for _, blk := range m.BlockBCs[o] {
		if blk.Box.Contains(centroid) {
			return blk.BC, true
		}
	}
	if m.UniformBCs[o] != nil {
		return *m.UniformBCs[o], true
	}
	return prism.ThermalBC{}, false
}

// assembleLines stamps the line-element pass: half-length resistance per
// endpoint, Joule heating, single-threaded (bond wires are few compared
// to prisms).
func (b *Builder) assembleLines(net *network.Network, m *prism.Model, iniT []float64, summary *Summary) {
	base := m.TotalPrismElements()
	if len(m.Lines) == 0 {
		return
	}
	halfR := make([]float64, len(m.Lines))
	for i, le := range m.Lines {
		g := base + i
		t := iniT[g]
		net.Nodes[g].Scen = le.ScenId
		kx, ky, kz, _, _ := b.resolveMat(le.MatId, t)
		kAvg := (kx + ky + kz) / 3
		area := math.Pi * le.Radius * le.Radius
		dx := float64(le.EndPts[1].X-le.EndPts[0].X) * b.Settings.CoordUnit
		dy := float64(le.EndPts[1].Y-le.EndPts[0].Y) * b.Settings.CoordUnit
		dz := le.EndPts[1].Z - le.EndPts[0].Z
		length := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if kAvg > 0 && area > 0 {
			halfR[i] = 0.5 * length / (kAvg * area)
		}
		if le.Current != 0 && area > 0 {
			mat, ok := b.Materials[le.MatId]
			if !ok {
				chk.Panic("netbuild: material %d not found for line element %d", le.MatId, le.Id)
			}
			rhoProp, err := mat.GetProperty(layoutdb.Resistivity)
			if err != nil {
				chk.Panic("netbuild: %v", err)
			}
			rhoEl, err := rhoProp.GetSimpleProperty(t)
			if err != nil {
				chk.Panic("netbuild: %v", err)
			}
			p := rhoEl * length * le.Current * le.Current / area
			net.Nodes[g].HF += p
			summary.JouleHeat += p
		}
	}
	for i := range m.Lines {
		g := base + i
		for _, side := range m.Lines[i].Neighbors {
			for _, nb := range side {
				r := halfR[i]
				if m.IsLine(nb) {
					// line-line pairs appear in both endpoint lists;
					// process each once, with both halves in series.
					if nb <= g {
						continue
					}
					r += halfR[nb-base]
				}
				if r > 0 {
					net.SetR(g, nb, r)
				}
			}
		}
	}
}

// resolveMat resolves a material's conductivity tensor, density and
// specific heat at temperature t. A missing material or property
// indicates a data-import bug, so it panics.
func (b *Builder) resolveMat(matId int, t float64) (kx, ky, kz, rho, c float64) {
	mat, ok := b.Materials[matId]
	if !ok {
		chk.Panic("netbuild: material %d not found", matId)
	}
	kProp, err := mat.GetProperty(layoutdb.ThermalConductivity)
	if err != nil {
		chk.Panic("netbuild: %v", err)
	}
	kx, err = kProp.GetAnisotropicProperty(t, 0)
	if err != nil {
		chk.Panic("netbuild: %v", err)
	}
	ky, err = kProp.GetAnisotropicProperty(t, 1)
	if err != nil {
		chk.Panic("netbuild: %v", err)
	}
	kz, err = kProp.GetAnisotropicProperty(t, 2)
	if err != nil {
		chk.Panic("netbuild: %v", err)
	}
	rhoProp, err := mat.GetProperty(layoutdb.MassDensity)
	if err != nil {
		chk.Panic("netbuild: %v", err)
	}
	rho, err = rhoProp.GetSimpleProperty(t)
	if err != nil {
		chk.Panic("netbuild: %v", err)
	}
	cProp, err := mat.GetProperty(layoutdb.SpecificHeat)
	if err != nil {
		chk.Panic("netbuild: %v", err)
	}
	c, err = cProp.GetSimpleProperty(t)
	if err != nil {
		chk.Panic("netbuild: %v", err)
	}
	return kx, ky, kz, rho, c
}
