// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom2d provides the 2-D primitives consumed by meshgen and
// prism: points, polygons, triangles and the narrow interfaces
// (Triangulator, SegmentIntersector, PolygonMerger) that a full geometry
// kernel can implement. The Default* types are reference implementations.
package geom2d

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
)

// Point is a 2-D integer lattice coordinate.
type Point struct {
	X, Y int64
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Cross returns the 2-D cross product p × q.
func (p Point) Cross(q Point) int64 { return p.X*q.Y - p.Y*q.X }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Segment is a directed edge between two points.
type Segment struct {
	A, B Point
}

// Polygon is an outer ring plus holes, in lattice coordinates.
type Polygon struct {
	Outer []Point
	Holes [][]Point
}

// BBox is an axis-aligned bounding box.
type BBox struct {
	MinX, MinY, MaxX, MaxY int64
}

// Contains reports whether p lies within the box (inclusive).
func (b BBox) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Overlaps reports whether two boxes intersect.
func (b BBox) Overlaps(o BBox) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Area returns the box's area (lattice units squared).
func (b BBox) Area() float64 {
	return float64(b.MaxX-b.MinX) * float64(b.MaxY-b.MinY)
}

// BoundingBox computes the bounding box of a ring of points.
func BoundingBox(pts []Point) BBox {
	if len(pts) == 0 {
		return BBox{}
	}
	b := BBox{pts[0].X, pts[0].Y, pts[0].X, pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b
}

// PolygonBBox returns a polygon's bounding box (outer ring only; holes are
// contained within it by construction).
func PolygonBBox(poly Polygon) BBox { return BoundingBox(poly.Outer) }

// SignedArea2 returns twice the signed area of a ring (shoelace formula).
// Positive for counter-clockwise rings, negative for clockwise.
func SignedArea2(ring []Point) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += float64(ring[i].X)*float64(ring[j].Y) - float64(ring[j].X)*float64(ring[i].Y)
	}
	return sum
}

// IsCCW reports whether a ring is wound counter-clockwise.
func IsCCW(ring []Point) bool { return SignedArea2(ring) > 0 }

// ReverseRing reverses a ring in place.
func ReverseRing(ring []Point) {
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
}

// Area returns a polygon's area (outer minus holes), in lattice units
// squared.
func Area(poly Polygon) float64 {
	a := math.Abs(SignedArea2(poly.Outer)) / 2
	for _, h := range poly.Holes {
		a -= math.Abs(SignedArea2(h)) / 2
	}
	if a < 0 {
		return 0
	}
	return a
}

// Centroid returns a ring's centroid using the shoelace-weighted formula.
// Falls back to the vertex average for degenerate (zero-area) rings.
func Centroid(ring []Point) Point {
	var cx, cy, a float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := float64(ring[i].X)*float64(ring[j].Y) - float64(ring[j].X)*float64(ring[i].Y)
		cx += (float64(ring[i].X) + float64(ring[j].X)) * cross
		cy += (float64(ring[i].Y) + float64(ring[j].Y)) * cross
		a += cross
	}
	if math.Abs(a) < 1e-9 {
		var sx, sy float64
		for _, p := range ring {
			sx += float64(p.X)
			sy += float64(p.Y)
		}
		return Point{int64(sx / float64(n)), int64(sy / float64(n))}
	}
	a *= 0.5
	cx /= 6 * a
	cy /= 6 * a
	return Point{int64(cx), int64(cy)}
}

// PointInRing performs an exact (integer) even-odd ray-casting test.
func PointInRing(p Point, ring []Point) bool {
	in := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xint := float64(pj.X-pi.X)*float64(p.Y-pi.Y)/float64(pj.Y-pi.Y) + float64(pi.X)
			if float64(p.X) < xint {
				in = !in
			}
		}
	}
	return in
}

// Contains reports whether p lies inside poly's outer ring and outside all
// of its holes.
func Contains(poly Polygon, p Point) bool {
	if !PointInRing(p, poly.Outer) {
		return false
	}
	for _, h := range poly.Holes {
		if PointInRing(p, h) {
			return false
		}
	}
	return true
}

// DistPointToSegment returns the shortest distance from p to the segment
// s.A-s.B, clamping the projection to the segment's extent.
func DistPointToSegment(p Point, s Segment) float64 {
	ax, ay := float64(s.A.X), float64(s.A.Y)
	bx, by := float64(s.B.X), float64(s.B.Y)
	px, py := float64(p.X), float64(p.Y)
	dx, dy := bx-ax, by-ay
	len2 := dx*dx + dy*dy
	if len2 == 0 {
		return p.Dist(s.A)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx, cy := ax+t*dx, ay+t*dy
	ddx, ddy := px-cx, py-cy
	return math.Sqrt(ddx*ddx + ddy*ddy)
}

// Edges returns the outer-ring + hole-ring edges of a polygon, each edge
// appearing once.
func Edges(poly Polygon) []Segment {
	segs := ringEdges(poly.Outer)
	for _, h := range poly.Holes {
		segs = append(segs, ringEdges(h)...)
	}
	return segs
}

func ringEdges(ring []Point) []Segment {
	n := len(ring)
	segs := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		segs = append(segs, Segment{ring[i], ring[j]})
	}
	return segs
}

// Triangle is a triple of point indices into a shared Triangulation point
// array, plus the ids of its (up to 3) neighboring triangles in the same
// triangulation (-1 when the edge is on the hull/a constrained boundary).
type Triangle struct {
	V         [3]int
	Neighbors [3]int
}

// Triangulation is a constrained 2-D triangulation of a point set: the
// output of a Triangulator.
type Triangulation struct {
	Points    []Point
	Triangles []Triangle
}

// TriPoints returns the three corner points of triangle t.
func (tr *Triangulation) TriPoints(t int) [3]Point {
	tri := tr.Triangles[t]
	return [3]Point{tr.Points[tri.V[0]], tr.Points[tri.V[1]], tr.Points[tri.V[2]]}
}

// TriArea returns the (unsigned) area of triangle t.
func (tr *Triangulation) TriArea(t int) float64 {
	p := tr.TriPoints(t)
	return math.Abs(float64(p[1].Sub(p[0]).Cross(p[2].Sub(p[0])))) / 2
}

// TriCentroid returns the integer centroid of triangle t.
func (tr *Triangulation) TriCentroid(t int) Point {
	p := tr.TriPoints(t)
	return Point{
		X: (p[0].X + p[1].X + p[2].X) / 3,
		Y: (p[0].Y + p[1].Y + p[2].Y) / 3,
	}
}

// TriBBox returns the bounding box of triangle t.
func (tr *Triangulation) TriBBox(t int) BBox {
	p := tr.TriPoints(t)
	return BoundingBox(p[:])
}

// MeshSettings controls the Triangulator/refinement pipeline.
type MeshSettings struct {
	MinAlphaDeg    float64 `json:"minAlpha"`
	MinLen         float64 `json:"minLen"`
	MaxLen         float64 `json:"maxLen"`
	Tolerance      float64 `json:"tolerance"`
	MaxIter        int     `json:"maxIter"`
	PreSplitEdge   bool    `json:"preSplitEdge"`
	AddBalancedPts bool    `json:"addBalancedPoints"`
}

// Triangulator builds a constrained Delaunay triangulation from a point
// set plus constraint edges. DefaultTriangulator is a reference
// implementation; a dedicated mesh kernel can be plugged in instead.
type Triangulator interface {
	Triangulate(points []Point, edges []Segment, settings MeshSettings) (Triangulation, error)
}

// SegmentIntersector computes pairwise intersections among a set of
// segments, returning any new points introduced.
type SegmentIntersector interface {
	Intersections(segs []Segment) (points []Point, err error)
}

// PolygonMerger unions polygons that share the same attribute value,
// e.g. same-layer polygons with equal (net, material) pairs.
type PolygonMerger interface {
	Merge(polys []Polygon, attr []int) (merged []Polygon, mergedAttr []int, err error)
}

// DefaultSegmentIntersector is a brute-force O(n^2) reference
// implementation: real mesh2d collaborators would use a sweepline.
type DefaultSegmentIntersector struct{}

func (DefaultSegmentIntersector) Intersections(segs []Segment) ([]Point, error) {
	var pts []Point
	for i := 0; i < len(segs); i++ {
		for j := i + 1; j < len(segs); j++ {
			if p, ok := segmentIntersection(segs[i], segs[j]); ok {
				pts = append(pts, p)
			}
		}
	}
	return pts, nil
}

func segmentIntersection(s1, s2 Segment) (Point, bool) {
	r := s1.B.Sub(s1.A)
	s := s2.B.Sub(s2.A)
	denom := r.Cross(s)
	if denom == 0 {
		return Point{}, false // parallel or collinear; ignore for meshing seeds
	}
	qp := s2.A.Sub(s1.A)
	tNum := qp.Cross(s)
	uNum := qp.Cross(r)
	t := float64(tNum) / float64(denom)
	u := float64(uNum) / float64(denom)
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	x := float64(s1.A.X) + t*float64(r.X)
	y := float64(s1.A.Y) + t*float64(r.Y)
	return Point{int64(math.Round(x)), int64(math.Round(y))}, true
}

// DefaultPolygonMerger merges polygons only when their bounding boxes are
// identical: a conservative stand-in for a full boolean union.
type DefaultPolygonMerger struct{}

func (DefaultPolygonMerger) Merge(polys []Polygon, attr []int) ([]Polygon, []int, error) {
	if len(polys) != len(attr) {
		return nil, nil, chk.Err("geom2d: polys and attr must have the same length, %d != %d", len(polys), len(attr))
	}
	type key struct {
		a    int
		bbox BBox
	}
	groups := make(map[key][]int)
	order := make([]key, 0)
	for i, p := range polys {
		k := key{attr[i], PolygonBBox(p)}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	sort.Slice(order, func(i, j int) bool {
		return groups[order[i]][0] < groups[order[j]][0]
	})
	merged := make([]Polygon, 0, len(order))
	mergedAttr := make([]int, 0, len(order))
	for _, k := range order {
		idxs := groups[k]
		merged = append(merged, polys[idxs[0]])
		mergedAttr = append(mergedAttr, k.a)
	}
	return merged, mergedAttr, nil
}
