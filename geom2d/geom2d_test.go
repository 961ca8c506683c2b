// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom2d

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func unitSquare() []Point {
	return []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
}

func Test_geom2d01(tst *testing.T) {

	chk.PrintTitle("geom2d: Area/Centroid/Contains on a plain square")

	poly := Polygon{Outer: unitSquare()}
	chk.Float64(tst, "area", 1e-15, Area(poly), 100)

	c := Centroid(poly.Outer)
	if c.X != 5 || c.Y != 5 {
		tst.Errorf("expected centroid (5,5), got (%d,%d)\n", c.X, c.Y)
	}

	if !Contains(poly, Point{5, 5}) {
		tst.Errorf("expected (5,5) to be inside the square\n")
	}
	if Contains(poly, Point{50, 50}) {
		tst.Errorf("expected (50,50) to be outside the square\n")
	}
}

func Test_geom2d02(tst *testing.T) {

	chk.PrintTitle("geom2d: Area/Contains with a hole")

	poly := Polygon{
		Outer: unitSquare(),
		Holes: [][]Point{{{4, 4}, {6, 4}, {6, 6}, {4, 6}}},
	}
	chk.Float64(tst, "area minus hole", 1e-15, Area(poly), 100-4)

	if Contains(poly, Point{5, 5}) {
		tst.Errorf("expected (5,5) to fall inside the hole, hence outside the polygon\n")
	}
	if !Contains(poly, Point{1, 1}) {
		tst.Errorf("expected (1,1) to be inside the polygon and outside the hole\n")
	}
}

func Test_geom2d03(tst *testing.T) {

	chk.PrintTitle("geom2d: BBox Contains/Overlaps/Area")

	b1 := BoundingBox(unitSquare())
	chk.Float64(tst, "bbox area", 1e-15, b1.Area(), 100)
	if !b1.Contains(Point{5, 5}) {
		tst.Errorf("expected bbox to contain (5,5)\n")
	}
	if b1.Contains(Point{50, 50}) {
		tst.Errorf("expected bbox to not contain (50,50)\n")
	}

	b2 := BBox{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}
	if !b1.Overlaps(b2) {
		tst.Errorf("expected overlapping boxes to report Overlaps\n")
	}
	b3 := BBox{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110}
	if b1.Overlaps(b3) {
		tst.Errorf("expected disjoint boxes to not report Overlaps\n")
	}
}

func Test_geom2d04(tst *testing.T) {

	chk.PrintTitle("geom2d: SignedArea2/IsCCW sign convention")

	ccw := unitSquare()
	if !IsCCW(ccw) {
		tst.Errorf("expected the unit square (as written) to be CCW\n")
	}
	cw := append([]Point(nil), ccw...)
	ReverseRing(cw)
	if IsCCW(cw) {
		tst.Errorf("expected the reversed ring to be CW\n")
	}
	chk.Float64(tst, "signed area magnitude matches", 1e-15, SignedArea2(ccw), -SignedArea2(cw))
}

func Test_geom2d05(tst *testing.T) {

	chk.PrintTitle("geom2d: DistPointToSegment clamps to the segment's extent")

	s := Segment{A: Point{0, 0}, B: Point{10, 0}}

	chk.Float64(tst, "perpendicular to the interior", 1e-12, DistPointToSegment(Point{5, 5}, s), 5)
	chk.Float64(tst, "clamped to endpoint A", 1e-12, DistPointToSegment(Point{-5, 0}, s), 5)
	chk.Float64(tst, "clamped to endpoint B", 1e-12, DistPointToSegment(Point{15, 0}, s), 5)
	chk.Float64(tst, "on the segment", 1e-12, DistPointToSegment(Point{5, 0}, s), 0)
}

func Test_geom2d06(tst *testing.T) {

	chk.PrintTitle("geom2d: DefaultSegmentIntersector finds crossing pairs only")

	crossing := Segment{A: Point{0, 0}, B: Point{10, 10}}
	crossed := Segment{A: Point{0, 10}, B: Point{10, 0}}
	parallel := Segment{A: Point{0, 20}, B: Point{10, 20}}
	another := Segment{A: Point{0, 30}, B: Point{10, 30}}

	pts, err := DefaultSegmentIntersector{}.Intersections([]Segment{crossing, crossed, parallel, another})
	if err != nil {
		tst.Errorf("Intersections failed: %v\n", err)
		return
	}
	if len(pts) != 1 {
		tst.Errorf("expected exactly one intersection point, got %d: %v\n", len(pts), pts)
		return
	}
	if pts[0].X != 5 || pts[0].Y != 5 {
		tst.Errorf("expected the crossing point at (5,5), got (%d,%d)\n", pts[0].X, pts[0].Y)
	}
}

func Test_geom2d07(tst *testing.T) {

	chk.PrintTitle("geom2d: DefaultPolygonMerger groups by (attr, bbox)")

	square := unitSquare()
	sameBBoxDifferentWinding := append([]Point(nil), square...)
	ReverseRing(sameBBoxDifferentWinding)
	other := []Point{{100, 100}, {110, 100}, {110, 110}, {100, 110}}

	polys := []Polygon{
		{Outer: square},
		{Outer: sameBBoxDifferentWinding},
		{Outer: other},
	}
	attr := []int{1, 1, 1}

	merged, mergedAttr, err := DefaultPolygonMerger{}.Merge(polys, attr)
	if err != nil {
		tst.Errorf("Merge failed: %v\n", err)
		return
	}
	chk.IntAssert(len(merged), 2)
	chk.IntAssert(len(mergedAttr), 2)

	mismatched := []int{1}
	if _, _, err := (DefaultPolygonMerger{}).Merge(polys, mismatched); err == nil {
		tst.Errorf("expected an error when polys and attr lengths differ\n")
	}
}

func Test_geom2d08(tst *testing.T) {

	chk.PrintTitle("geom2d: TriangleIntersectionArea on overlapping right triangles")

	a := [3]Point{{0, 0}, {10, 0}, {0, 10}}
	b := [3]Point{{0, 0}, {10, 0}, {0, 10}}
	chk.Float64(tst, "identical triangles fully overlap", 1e-9, TriangleIntersectionArea(a, b), 50)

	c := [3]Point{{100, 100}, {110, 100}, {100, 110}}
	chk.Float64(tst, "disjoint triangles don't overlap", 1e-9, TriangleIntersectionArea(a, c), 0)

	// b shifted by (5,0): overlap is the triangle {(5,0),(10,0),(0,10)} clipped
	// against {(5,0),(15,0),(5,10)} -> a right triangle of leg 5, area 12.5
	d := [3]Point{{5, 0}, {15, 0}, {5, 10}}
	chk.Float64(tst, "half-shifted triangles overlap by a quarter", 1e-9, TriangleIntersectionArea(a, d), 12.5)
}

func Test_geom2d09(tst *testing.T) {

	chk.PrintTitle("geom2d: Centroid falls back to vertex average for a degenerate ring")

	degenerate := []Point{{0, 0}, {10, 0}, {20, 0}}
	c := Centroid(degenerate)
	if c.X != 10 || c.Y != 0 {
		tst.Errorf("expected the vertex-average fallback (10,0), got (%d,%d)\n", c.X, c.Y)
	}
}
