// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vtkout dumps a prism thermal model as a minimal ASCII VTK 2.0
// unstructured-grid file: prism cells (type 13), line cells (type 3),
// and an optional per-element temperature SCALARS block.
package vtkout

import (
	"bytes"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"

	"github.com/0x0-bwu/nanoheat-go/prism"
)

const (
	cellTypePrism = 13
	cellTypeLine  = 3

	lutSize = 100 // LOOKUP_TABLE TEMPERATURE's ramp entry count
)

// Write dumps m to path. coordUnit converts a lattice X/Y unit to meters
// (the same ScaleH2Unit*Scale2Meter factor netbuild.Settings.CoordUnit
// carries). temps, if non-nil, must hold one entry per element (prisms in
// global-index order, then lines) and is written as a CELL_DATA/SCALARS
// "temperature" block with a blue-to-red LOOKUP_TABLE TEMPERATURE ramp.
func Write(path string, m *prism.Model, coordUnit float64, temps []float64) error {
	nCells := len(m.Prisms) + len(m.Lines)
	if len(temps) > 0 && len(temps) != nCells {
		return chk.Err("vtkout: temps has %d entries, want %d (prisms+lines)", len(temps), nCells)
	}

	var buf bytes.Buffer
	io.Ff(&buf, "# vtk DataFile Version 2.0\n")
	io.Ff(&buf, "nanoheat-go thermal model\n")
	io.Ff(&buf, "ASCII\n")
	io.Ff(&buf, "DATASET UNSTRUCTURED_GRID\n")

	linePointBase := len(m.Points)
	nPoints := linePointBase + 2*len(m.Lines)

	writePoints(&buf, m, coordUnit, nPoints)
	writeCells(&buf, m, linePointBase, nCells)
	writeCellTypes(&buf, m, nCells)

	if len(temps) > 0 {
		writeTemperatures(&buf, temps)
	}

	io.WriteFileV(path, &buf)
	return nil
}

func writePoints(buf *bytes.Buffer, m *prism.Model, coordUnit float64, nPoints int) {
	io.Ff(buf, "POINTS %d float\n", nPoints)
	for _, p := range m.Points {
		io.Ff(buf, "%23.15e %23.15e %23.15e\n", float64(p.X)*coordUnit, float64(p.Y)*coordUnit, p.Z)
	}
	for _, le := range m.Lines {
		for _, p := range le.EndPts {
			io.Ff(buf, "%23.15e %23.15e %23.15e\n", float64(p.X)*coordUnit, float64(p.Y)*coordUnit, p.Z)
		}
	}
}

func writeCells(buf *bytes.Buffer, m *prism.Model, linePointBase, nCells int) {
	size := nCells + 6*len(m.Prisms) + 2*len(m.Lines)
	io.Ff(buf, "CELLS %d %d\n", nCells, size)
	for _, p := range m.Prisms {
		io.Ff(buf, "6 %d %d %d %d %d %d\n", p.Vertices[0], p.Vertices[1], p.Vertices[2], p.Vertices[3], p.Vertices[4], p.Vertices[5])
	}
	for i := range m.Lines {
		a, b := linePointBase+2*i, linePointBase+2*i+1
		io.Ff(buf, "2 %d %d\n", a, b)
	}
}

func writeCellTypes(buf *bytes.Buffer, m *prism.Model, nCells int) {
	io.Ff(buf, "CELL_TYPES %d\n", nCells)
	for range m.Prisms {
		io.Ff(buf, "%d\n", cellTypePrism)
	}
	for range m.Lines {
		io.Ff(buf, "%d\n", cellTypeLine)
	}
}

func writeTemperatures(buf *bytes.Buffer, temps []float64) {
	io.Ff(buf, "CELL_DATA %d\n", len(temps))
	io.Ff(buf, "SCALARS temperature float 1\n")
	io.Ff(buf, "LOOKUP_TABLE TEMPERATURE\n")
	for _, t := range temps {
		io.Ff(buf, "%23.15e\n", t)
	}
	io.Ff(buf, "LOOKUP_TABLE TEMPERATURE %d\n", lutSize)
	tmin, tmax := temps[0], temps[0]
	for _, t := range temps {
		tmin = utl.Min(tmin, t)
		tmax = utl.Max(tmax, t)
	}
	span := tmax - tmin
	for i := 0; i < lutSize; i++ {
		frac := float64(i) / float64(lutSize-1)
		if span <= 0 {
			frac = 0
		}
		r, g, b := rampColor(frac)
		io.Ff(buf, "%.3f %.3f %.3f 1.0\n", r, g, b)
	}
}

// rampColor maps frac in [0,1] (cold to hot) to a blue-white-red ramp.
func rampColor(frac float64) (r, g, b float64) {
	switch {
	case frac < 0.5:
		t := frac / 0.5
		return t, t, 1
	default:
		t := (frac - 0.5) / 0.5
		return 1, 1 - t, 1 - t
	}
}
