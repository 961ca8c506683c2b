// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package meshgen generates the per-layer 2-D constrained Delaunay
// triangulations the prism model is lifted from, wired against geom2d's
// Triangulator/SegmentIntersector interfaces.
package meshgen

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/0x0-bwu/nanoheat-go/geom2d"
)

// Settings controls mesh generation and refinement.
type Settings struct {
	DumpMeshFile      bool    `json:"dumpMeshFile"`
	GenMeshByLayer    bool    `json:"genMeshByLayer"`
	ImprintUpperLayer bool    `json:"imprintUpperLayer"`
	MinAlphaDeg       float64 `json:"minAlpha"`
	MinLen            float64 `json:"minLen"`
	MaxLen            float64 `json:"maxLen"`
	Tolerance         float64 `json:"tolerance"`
	MaxIter           int     `json:"maxIter"`
	PreSplitEdge      bool    `json:"preSplitEdge"`
	AddBalancedPoints bool    `json:"addBalancedPoints"`
	ReportMeshQuality bool    `json:"reportMeshQuality"`
}

func (s Settings) toMeshSettings() geom2d.MeshSettings {
	return geom2d.MeshSettings{
		MinAlphaDeg: s.MinAlphaDeg, MinLen: s.MinLen, MaxLen: s.MaxLen,
		Tolerance: s.Tolerance, MaxIter: s.MaxIter, PreSplitEdge: s.PreSplitEdge,
		AddBalancedPts: s.AddBalancedPoints,
	}
}

// Generator produces prism-ready layer triangulations.
type Generator struct {
	Triangulator geom2d.Triangulator
	Intersector  geom2d.SegmentIntersector
}

// NewGenerator returns a Generator using the reference
// Triangulator/SegmentIntersector implementations.
func NewGenerator() *Generator {
	return &Generator{
		Triangulator: geom2d.DefaultTriangulator{},
		Intersector:  geom2d.DefaultSegmentIntersector{},
	}
}

// GenerateMesh triangulates a polygon set plus Steiner points: bounding
// box seed edges, polygon-edge intersection, tolerance merge, optional
// pre-split and balanced sprinkle, then quality refinement.
func (g *Generator) GenerateMesh(polygons []geom2d.Polygon, steinerPoints []geom2d.Point, settings Settings) (geom2d.Triangulation, error) {
	if len(polygons) == 0 {
		return geom2d.Triangulation{}, chk.Err("meshgen: GenerateMesh requires at least one polygon")
	}

	// step 1: bounding box seed edges
	var allPts []geom2d.Point
	for _, p := range polygons {
		allPts = append(allPts, p.Outer...)
		for _, h := range p.Holes {
			allPts = append(allPts, h...)
		}
	}
	bbox := geom2d.BoundingBox(allPts)
	seedEdges := bboxEdges(bbox)

	// step 2: polygon edges + intersections
	var edges []geom2d.Segment
	edges = append(edges, seedEdges...)
	for _, p := range polygons {
		edges = append(edges, geom2d.Edges(p)...)
	}
	newPts, err := g.Intersector.Intersections(edges)
	if err != nil {
		return geom2d.Triangulation{}, chk.Err("meshgen: segment intersection failed: %v", err)
	}

	// step 3: point+edge topology (merge-by-tolerance is handled inside
	// the Triangulator, which owns the combined point set).
	points := append([]geom2d.Point{}, allPts...)
	points = append(points, newPts...)

	// step 4: Steiner points; the Triangulator's merge-by-tolerance treats
	// them like every other point, so one within Tolerance of another point
	// is merged away.
	points = append(points, steinerPoints...)

	// pre-split, triangulation and refinement are the Triangulator's
	// responsibility; balanced-point sprinkling is approximated by a
	// coarse grid over the bbox.
	if settings.AddBalancedPoints {
		points = append(points, balancedGridPoints(bbox, 4)...)
	}

	tr, err := g.Triangulator.Triangulate(points, edges, settings.toMeshSettings())
	if err != nil {
		return geom2d.Triangulation{}, chk.Err("meshgen: triangulation failed: %v", err)
	}
	if settings.ReportMeshQuality {
		reportQuality(tr)
	}
	return tr, nil
}

func bboxEdges(b geom2d.BBox) []geom2d.Segment {
	p := []geom2d.Point{{X: b.MinX, Y: b.MinY}, {X: b.MaxX, Y: b.MinY}, {X: b.MaxX, Y: b.MaxY}, {X: b.MinX, Y: b.MaxY}}
	segs := make([]geom2d.Segment, 4)
	for i := 0; i < 4; i++ {
		segs[i] = geom2d.Segment{A: p[i], B: p[(i+1)%4]}
	}
	return segs
}

// balancedGridPoints sprinkles an n x n interior grid over bbox, a
// conservative stand-in for a balanced-quadtree point generator.
func balancedGridPoints(b geom2d.BBox, n int) []geom2d.Point {
	if n <= 0 {
		return nil
	}
	var pts []geom2d.Point
	dx := (b.MaxX - b.MinX) / int64(n+1)
	dy := (b.MaxY - b.MinY) / int64(n+1)
	if dx == 0 || dy == 0 {
		return nil
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= n; j++ {
			pts = append(pts, geom2d.Point{X: b.MinX + int64(i)*dx, Y: b.MinY + int64(j)*dy})
		}
	}
	return pts
}

func reportQuality(tr geom2d.Triangulation) {
	if len(tr.Triangles) == 0 {
		return
	}
	minAngle, maxEdge, minEdge := geom2d.MeshQuality(&tr)
	io.Pforan("meshgen: %d triangles, minAngle=%.2fdeg, edge range [%.4g, %.4g]\n",
		len(tr.Triangles), minAngle*180/math.Pi, minEdge, maxEdge)
}
