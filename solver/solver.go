// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver implements the static thermal solver: modified nodal
// analysis assembly, Jacobi-preconditioned Conjugate Gradient, and a
// temperature-dependent Picard iteration over a thermal network rebuilt
// once per iteration.
package solver

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"

	"github.com/0x0-bwu/nanoheat-go/netbuild"
	"github.com/0x0-bwu/nanoheat-go/network"
	"github.com/0x0-bwu/nanoheat-go/prism"
)

// TempUnit tags whether a temperature value is Celsius or Kelvin.
type TempUnit int

const (
	Kelvin TempUnit = iota
	Celsius
)

// EnvTemp is the ambient reference temperature, in either unit.
type EnvTemp struct {
	Value float64  `json:"value"`
	Unit  TempUnit `json:"unit"`
}

// ToKelvin returns e in Kelvin regardless of its stored unit.
func (e EnvTemp) ToKelvin() float64 {
	if e.Unit == Celsius {
		return e.Value + 273.15
	}
	return e.Value
}

// Settings controls the Picard loop's convergence and reporting.
type Settings struct {
	Residual   float64 `json:"residual"`   // stop once the iteration residual drops to or below this
	MaxIter    int     `json:"maxIter"`    // hard iteration cap; 0 is treated as 1
	MaximumRes bool    `json:"maximumRes"` // true: residual = max|Δ|; false: residual = mean|Δ|
	Damping    float64 `json:"damping"`    // Picard relaxation factor in (0,1]; 0 disables damping
	Probs      []int   `json:"probs"`      // optional observation node ids for the L selection matrix
	EnvT       EnvTemp `json:"envTemp"`
}

// Result is the solver's summary output: temperature bounds plus the
// bookkeeping a caller needs to judge convergence.
type Result struct {
	Tmin, Tmax float64
	Residual   float64
	Iterations int
}

// StaticSolver rebuilds the thermal network every iteration
// (since material conductivity may depend on temperature) and re-solves
// the linear system for the unknown-T nodes.
type StaticSolver struct {
	Builder  *netbuild.Builder
	Settings Settings
}

// New returns a StaticSolver over the given network builder.
func New(b *netbuild.Builder, settings Settings) *StaticSolver {
	return &StaticSolver{Builder: b, Settings: settings}
}

// Solve runs the Picard fixed-point loop to a self-consistent
// temperature field. out must be pre-sized to model.TotalPrismElements()+len(model.Lines); on
// return it holds every element's converged (or best-effort, on
// non-convergence) temperature. The last assembled ThermalNetworkBuilder
// summary (heat-flow totals, Joule heating) is returned alongside.
func (s *StaticSolver) Solve(model *prism.Model, out []float64) (Result, *netbuild.Summary, error) {
	n := model.TotalPrismElements() + len(model.Lines)
	if len(out) != n {
		return Result{}, nil, chk.Err("solver: out has length %d, want %d\n", len(out), n)
	}

	envK := s.Settings.EnvT.ToKelvin()
	for i := range out {
		out[i] = envK
	}

	maxIter := s.Settings.MaxIter
	if maxIter <= 0 {
		maxIter = 1
	}

	var summary *netbuild.Summary
	var residual float64
	iterations := 0

	for iter := 0; iter < maxIter; iter++ {
		net, sum, err := s.Builder.Build(model, out)
		if err != nil {
			return Result{}, nil, err
		}
		summary = sum

		prev := append([]float64(nil), out...)

		for id, node := range net.Nodes {
			if !network.IsUnknown(node.T) {
				out[id] = node.T
			}
		}

		im := net.BuildIndexMap()
		if im.MatrixSize() > 0 {
			mna := makeMNA(net, im, s.Settings.Probs)
			rhs := makeRhs(net, im, envK)
			x, err := cgSolveJacobi(mna.G, mna.Diag, rhs, s.Settings.Residual)
			if err != nil {
				return Result{}, nil, err
			}
			for i := 0; i < im.MatrixSize(); i++ {
				id := im.NodeId(i)
				newT := x[i]
				if s.Settings.Damping > 0 {
					newT = s.Settings.Damping*x[i] + (1-s.Settings.Damping)*prev[id]
				}
				out[id] = newT
			}
		}

		residual = iterationResidual(out, prev, s.Settings.MaximumRes)
		iterations = iter + 1
		if residual <= s.Settings.Residual {
			break
		}
	}

	if s.Settings.EnvT.Unit == Celsius {
		for i := range out {
			out[i] -= 273.15
		}
	}

	tmin, tmax := out[0], out[0]
	for _, t := range out {
		tmin = utl.Min(tmin, t)
		tmax = utl.Max(tmax, t)
	}

	return Result{Tmin: tmin, Tmax: tmax, Residual: residual, Iterations: iterations}, summary, nil
}

// RunStatic allocates the temperature vector, runs Solve to completion
// and returns the result alongside the per-element temperatures. Solver
// non-convergence is not an error: the last iterate and its residual are
// returned regardless.
func RunStatic(b *netbuild.Builder, settings Settings, model *prism.Model) (Result, []float64, error) {
	s := New(b, settings)
	out := make([]float64, model.TotalPrismElements()+len(model.Lines))
	res, _, err := s.Solve(model, out)
	if err != nil {
		return Result{}, nil, err
	}
	return res, out, nil
}

func iterationResidual(cur, prev []float64, maximumRes bool) float64 {
	if maximumRes {
		r := 0.0
		for i := range cur {
			if d := math.Abs(cur[i] - prev[i]); d > r {
				r = d
			}
		}
		return r
	}
	sum := 0.0
	for i := range cur {
		sum += math.Abs(cur[i] - prev[i])
	}
	return sum / float64(len(cur))
}
