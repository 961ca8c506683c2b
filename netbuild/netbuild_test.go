// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package netbuild

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/0x0-bwu/nanoheat-go/geom2d"
	"github.com/0x0-bwu/nanoheat-go/layoutdb"
	"github.com/0x0-bwu/nanoheat-go/material"
	"github.com/0x0-bwu/nanoheat-go/prism"
	"github.com/0x0-bwu/nanoheat-go/threadpool"
)

// twoTriangleCopperModel builds a one-layer, two-prism square (split along
// its diagonal) in copper, uniform HTC on both faces: a minimal stand-in
// for scenario S1's single Cu slab.
func twoTriangleCopperModel() *prism.Model {
	pts := []geom2d.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	tri := &geom2d.Triangulation{
		Points: pts,
		Triangles: []geom2d.Triangle{
			{V: [3]int{0, 1, 2}, Neighbors: [3]int{-1, -1, 1}},
			{V: [3]int{0, 2, 3}, Neighbors: [3]int{0, -1, -1}},
		},
	}
	layer := prism.PrismLayer{
		Id: 0, Elevation: 0.0003, Thickness: 0.0003,
		Elements: []prism.PrismElement{
			{Id: 0, MatId: 1, TemplateId: 0, PowerLutId: -1, Neighbors: [3]int{prism.NeighborSentinel, prism.NeighborSentinel, 1}},
			{Id: 1, MatId: 1, TemplateId: 1, PowerLutId: -1, Neighbors: [3]int{0, prism.NeighborSentinel, prism.NeighborSentinel}},
		},
		Triangulation: tri,
	}
	m := &prism.Model{
		Layers:      []prism.PrismLayer{layer},
		Prisms:      make([]prism.PrismInstance, 2),
		IndexOffset: []int{0},
	}
	m.Prisms[0] = prism.PrismInstance{Neighbors: [5]int{prism.NeighborSentinel, prism.NeighborSentinel, 1, prism.NeighborSentinel, prism.NeighborSentinel}}
	m.Prisms[1] = prism.PrismInstance{Neighbors: [5]int{0, prism.NeighborSentinel, prism.NeighborSentinel, prism.NeighborSentinel, prism.NeighborSentinel}}
	htc := prism.ThermalBC{Kind: prism.HTC, Value: 100}
	m.SetUniformBC(prism.TOP, htc)
	m.SetUniformBC(prism.BOT, htc)
	return m
}

func copperMaterial() layoutdb.Material {
	return &material.InMemoryMaterial{
		IdValue: 1, TypeValue: layoutdb.Solid,
		Props: map[layoutdb.PropertyKind]*material.InMemoryProperty{
			layoutdb.ThermalConductivity: {Isotropic: material.Polynomial{A0: 400}},
			layoutdb.MassDensity:         {Isotropic: material.Polynomial{A0: 8960}},
			layoutdb.SpecificHeat:        {Isotropic: material.Polynomial{A0: 385}},
			layoutdb.Resistivity:         {Isotropic: material.Polynomial{A0: 1.7e-8}},
		},
	}
}

func Test_netbuild01(tst *testing.T) {

	chk.PrintTitle("netbuild: lateral resistance and uniform HTC stamping")

	m := twoTriangleCopperModel()
	b := NewBuilder(Settings{CoordUnit: 0.001}, []layoutdb.Material{copperMaterial()}, nil, threadpool.New(1))

	net, summary, err := b.Build(m, []float64{300, 300})
	if err != nil {
		tst.Errorf("Build failed: %v\n", err)
		return
	}

	if net.Nodes[0].C <= 0 || net.Nodes[1].C <= 0 {
		tst.Errorf("expected positive heat capacitance on both nodes, got %v %v\n", net.Nodes[0].C, net.Nodes[1].C)
	}
	if r, ok := net.R(0, 1); !ok || r <= 0 {
		tst.Errorf("expected a positive lateral resistance between prisms 0 and 1, got %v (ok=%v)\n", r, ok)
	}
	if net.Nodes[0].HTC <= 0 || net.Nodes[1].HTC <= 0 {
		tst.Errorf("expected both prisms fully exposed to the uniform HTC BC on both faces\n")
	}
	if summary.IHeatFlow != 0 || summary.OHeatFlow != 0 {
		tst.Errorf("HTC-only BCs should not contribute to the heat-flow summary, got in=%v out=%v\n", summary.IHeatFlow, summary.OHeatFlow)
	}
}

func Test_netbuild03(tst *testing.T) {

	chk.PrintTitle("netbuild: bond-wire Joule heating and endpoint resistance")

	// a single 3 mm copper wire segment, radius 0.1 mm, carrying 10 A:
	// P = rho*len*I^2/area = 1.7e-8 * 0.003 * 100 / (pi * 1e-8)
	m := &prism.Model{
		Lines: []prism.LineElement{{
			Id: 0, MatId: 1, Radius: 1e-4, Current: 10,
			EndPts: [2]prism.Point3{
				{X: 0, Y: 0, Z: 0.0005},
				{X: 3000, Y: 0, Z: 0.0005},
			},
		}},
	}
	b := NewBuilder(Settings{CoordUnit: 1e-6}, []layoutdb.Material{copperMaterial()}, nil, threadpool.New(1))

	net, summary, err := b.Build(m, []float64{300})
	if err != nil {
		tst.Errorf("Build failed: %v\n", err)
		return
	}

	want := 1.7e-8 * 0.003 * 100 / (math.Pi * 1e-8)
	chk.Float64(tst, "joule heat", 1e-9, summary.JouleHeat, want)
	chk.Float64(tst, "node heat flow", 1e-9, net.Nodes[0].HF, want)
}

func Test_netbuild02(tst *testing.T) {

	chk.PrintTitle("netbuild: thread-count invariance")

	mat := []layoutdb.Material{copperMaterial()}
	b1 := NewBuilder(Settings{CoordUnit: 0.001}, mat, nil, threadpool.New(1))
	b4 := NewBuilder(Settings{CoordUnit: 0.001}, mat, nil, threadpool.New(4))

	net1, _, err := b1.Build(twoTriangleCopperModel(), []float64{300, 300})
	if err != nil {
		tst.Errorf("Build (1 thread) failed: %v\n", err)
		return
	}
	net4, _, err := b4.Build(twoTriangleCopperModel(), []float64{300, 300})
	if err != nil {
		tst.Errorf("Build (4 threads) failed: %v\n", err)
		return
	}

	r1, _ := net1.R(0, 1)
	r4, _ := net4.R(0, 1)
	chk.Float64(tst, "R(0,1) thread-count invariant", 1e-12, r1, r4)
}
