// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom2d

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// DefaultTriangulator is a reference constrained-Delaunay triangulator:
// incremental Bowyer-Watson over a super-triangle, followed by a
// Ruppert-style refinement pass that splits triangles violating the
// minimum-angle / edge-length bounds in MeshSettings. It does not enforce
// edge constraints exactly (a production mesh2d collaborator would); it
// merely seeds the point set with the edges' endpoints, which is
// sufficient for the prism-mesh use case where edges are the stackup
// polygon boundaries and Steiner points.
type DefaultTriangulator struct{}

// Triangulate builds a Delaunay triangulation over points, then refines it
// per settings. edges are not read: they are not enforced as constraints,
// and their endpoints enter the triangulation only if they are in points.
func (DefaultTriangulator) Triangulate(points []Point, edges []Segment, settings MeshSettings) (Triangulation, error) {
	if len(points) < 3 {
		return Triangulation{}, chk.Err("geom2d: need at least 3 points to triangulate, got %d", len(points))
	}
	pts := mergeClosePoints(points, settings.Tolerance)
	tr := bowyerWatson(pts)
	if settings.PreSplitEdge && settings.MaxLen > 0 {
		tr = preSplitLongEdges(tr, settings.MaxLen)
	}
	tr = refine(tr, settings)
	return tr, nil
}

// mergeClosePoints merges points closer than tolerance into one, keeping
// first-seen order stable.
func mergeClosePoints(points []Point, tolerance float64) []Point {
	if tolerance <= 0 {
		return append([]Point(nil), points...)
	}
	out := make([]Point, 0, len(points))
	for _, p := range points {
		merged := false
		for _, q := range out {
			if p.Dist(q) <= tolerance {
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, p)
		}
	}
	return out
}

// bowyerWatson triangulates pts with a super-triangle bootstrap, the
// classical incremental Delaunay algorithm.
func bowyerWatson(pts []Point) Triangulation {
	n := len(pts)
	bb := BoundingBox(pts)
	dx := float64(bb.MaxX-bb.MinX) + 1
	dy := float64(bb.MaxY-bb.MinY) + 1
	d := math.Max(dx, dy) * 20

	cx := float64(bb.MinX+bb.MaxX) / 2
	cy := float64(bb.MinY+bb.MaxY) / 2
	super := []Point{
		{int64(cx - d), int64(cy - d)},
		{int64(cx + d), int64(cy - d)},
		{int64(cx), int64(cy + d)},
	}
	allPts := append(append([]Point(nil), pts...), super...)
	s0, s1, s2 := n, n+1, n+2

	type tri struct {
		v [3]int
	}
	tris := []tri{{[3]int{s0, s1, s2}}}

	circumcircleContains := func(t tri, p Point) bool {
		a, b, c := allPts[t.v[0]], allPts[t.v[1]], allPts[t.v[2]]
		ax, ay := float64(a.X), float64(a.Y)
		bx, by := float64(b.X), float64(b.Y)
		cx, cy := float64(c.X), float64(c.Y)
		px, py := float64(p.X), float64(p.Y)

		ax -= px
		ay -= py
		bx -= px
		by -= py
		cx -= px
		cy -= py

		det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
			(bx*bx+by*by)*(ax*cy-cx*ay) +
			(cx*cx+cy*cy)*(ax*by-bx*ay)

		// orientation-corrected: if triangle is CW, flip sign
		area2 := (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
		if area2 < 0 {
			det = -det
		}
		return det > 0
	}

	for pi := 0; pi < n; pi++ {
		p := allPts[pi]
		var bad []int
		for ti, t := range tris {
			if circumcircleContains(t, p) {
				bad = append(bad, ti)
			}
		}
		// boundary of the bad-triangle polygon: edges not shared by two
		// bad triangles
		type edge struct{ a, b int }
		edgeCount := make(map[edge]int)
		addEdge := func(a, b int) {
			e := edge{a, b}
			if e.a > e.b {
				e.a, e.b = e.b, e.a
			}
			edgeCount[e]++
		}
		for _, ti := range bad {
			t := tris[ti]
			addEdge(t.v[0], t.v[1])
			addEdge(t.v[1], t.v[2])
			addEdge(t.v[2], t.v[0])
		}
		// remove bad triangles
		newTris := make([]tri, 0, len(tris))
		badSet := make(map[int]bool)
		for _, ti := range bad {
			badSet[ti] = true
		}
		for ti, t := range tris {
			if !badSet[ti] {
				newTris = append(newTris, t)
			}
		}
		// re-triangulate the cavity with boundary edges seen exactly once
		for e, cnt := range edgeCount {
			if cnt == 1 {
				newTris = append(newTris, tri{[3]int{e.a, e.b, pi}})
			}
		}
		tris = newTris
	}

	// drop triangles touching the super-triangle
	final := make([]Triangle, 0, len(tris))
	for _, t := range tris {
		if t.v[0] >= n || t.v[1] >= n || t.v[2] >= n {
			continue
		}
		final = append(final, Triangle{V: t.v, Neighbors: [3]int{-1, -1, -1}})
	}
	tr := Triangulation{Points: pts, Triangles: final}
	wireNeighbors(&tr)
	return tr
}

// wireNeighbors fills Triangle.Neighbors by matching shared edges.
func wireNeighbors(tr *Triangulation) {
	type edge struct{ a, b int }
	norm := func(a, b int) edge {
		if a > b {
			a, b = b, a
		}
		return edge{a, b}
	}
	owner := make(map[edge][2]int) // edge -> (triIdx, localEdgeIdx) first seen
	for ti, t := range tr.Triangles {
		for le := 0; le < 3; le++ {
			a, b := t.V[le], t.V[(le+1)%3]
			e := norm(a, b)
			if prev, ok := owner[e]; ok {
				tr.Triangles[ti].Neighbors[le] = prev[0]
				tr.Triangles[prev[0]].Neighbors[prev[1]] = ti
			} else {
				owner[e] = [2]int{ti, le}
			}
		}
	}
}

// preSplitLongEdges splits triangle edges longer than maxLen by inserting
// their midpoint, then re-triangulates.
func preSplitLongEdges(tr Triangulation, maxLen float64) Triangulation {
	pts := append([]Point(nil), tr.Points...)
	added := true
	for iter := 0; added && iter < 8; iter++ {
		added = false
		seen := make(map[[2]int]bool)
		extra := make([]Point, 0)
		for _, t := range tr.Triangles {
			for i := 0; i < 3; i++ {
				a, b := t.V[i], t.V[(i+1)%3]
				key := [2]int{a, b}
				if a > b {
					key = [2]int{b, a}
				}
				if seen[key] {
					continue
				}
				seen[key] = true
				if pts[a].Dist(pts[b]) > maxLen {
					mid := Point{(pts[a].X + pts[b].X) / 2, (pts[a].Y + pts[b].Y) / 2}
					extra = append(extra, mid)
					added = true
				}
			}
		}
		if added {
			pts = append(pts, extra...)
			tr = bowyerWatson(pts)
		}
	}
	return tr
}

// refine iteratively splits triangles that violate the minimum-angle or
// edge-length bounds, inserting each offending triangle's centroid and
// re-triangulating. Bounded by settings.MaxIter; returns the best-effort
// mesh if it doesn't fully converge.
func refine(tr Triangulation, settings MeshSettings) Triangulation {
	if settings.MaxIter <= 0 {
		return tr
	}
	minAlpha := settings.MinAlphaDeg * math.Pi / 180
	pts := append([]Point(nil), tr.Points...)
	for iter := 0; iter < settings.MaxIter; iter++ {
		violated := false
		var extra []Point
		for ti := range tr.Triangles {
			if triNeedsSplit(&tr, ti, minAlpha, settings.MinLen, settings.MaxLen) {
				violated = true
				extra = append(extra, tr.TriCentroid(ti))
			}
		}
		if !violated {
			break
		}
		pts = append(pts, extra...)
		tr = bowyerWatson(pts)
	}
	return tr
}

func triNeedsSplit(tr *Triangulation, ti int, minAlpha, minLen, maxLen float64) bool {
	p := tr.TriPoints(ti)
	angle, lo, hi := triAngleAndEdges(p)
	if angle < minAlpha {
		return true
	}
	if minLen > 0 && lo < minLen {
		return false // don't split already-tiny triangles further
	}
	if maxLen > 0 && hi > maxLen {
		return true
	}
	return false
}

func triAngleAndEdges(p [3]Point) (minAngle, minEdge, maxEdge float64) {
	lens := [3]float64{p[1].Dist(p[2]), p[2].Dist(p[0]), p[0].Dist(p[1])}
	minEdge, maxEdge = lens[0], lens[0]
	for _, l := range lens[1:] {
		if l < minEdge {
			minEdge = l
		}
		if l > maxEdge {
			maxEdge = l
		}
	}
	minAngle = math.Pi
	for i := 0; i < 3; i++ {
		a, b, c := lens[i], lens[(i+1)%3], lens[(i+2)%3]
		if b == 0 || c == 0 {
			continue
		}
		cosA := (b*b + c*c - a*a) / (2 * b * c)
		cosA = math.Max(-1, math.Min(1, cosA))
		ang := math.Acos(cosA)
		if ang < minAngle {
			minAngle = ang
		}
	}
	return
}

// MeshQuality scans a triangulation and returns its minimum interior
// angle (radians) and extreme edge lengths.
func MeshQuality(tr *Triangulation) (minAngle, maxEdge, minEdge float64) {
	minAngle = math.Pi
	minEdge = math.MaxFloat64
	for ti := range tr.Triangles {
		a, lo, hi := triAngleAndEdges(tr.TriPoints(ti))
		if a < minAngle {
			minAngle = a
		}
		if hi > maxEdge {
			maxEdge = hi
		}
		if lo < minEdge {
			minEdge = lo
		}
	}
	return
}
