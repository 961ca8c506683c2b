// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package meshgen

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/0x0-bwu/nanoheat-go/geom2d"
)

func square(x0, y0, x1, y1 int64) geom2d.Polygon {
	return geom2d.Polygon{Outer: []geom2d.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}}
}

func Test_meshgen01(tst *testing.T) {

	chk.PrintTitle("meshgen: GenerateMesh triangulates a single square exactly")

	g := NewGenerator()
	tr, err := g.GenerateMesh([]geom2d.Polygon{square(0, 0, 10, 10)}, nil, Settings{})
	if err != nil {
		tst.Errorf("GenerateMesh failed: %v\n", err)
		return
	}
	if len(tr.Triangles) == 0 {
		tst.Errorf("expected at least one triangle\n")
		return
	}
	var total float64
	for t := range tr.Triangles {
		total += tr.TriArea(t)
	}
	chk.Float64(tst, "total triangulated area matches the square", 1e-6, total, 100)
}

func Test_meshgen02(tst *testing.T) {

	chk.PrintTitle("meshgen: GenerateMesh rejects an empty polygon set")

	g := NewGenerator()
	if _, err := g.GenerateMesh(nil, nil, Settings{}); err == nil {
		tst.Errorf("expected an error for an empty polygon set\n")
	}
}

func Test_meshgen03(tst *testing.T) {

	chk.PrintTitle("meshgen: GenerateMesh includes Steiner points in the triangulation")

	g := NewGenerator()
	steiner := []geom2d.Point{{X: 5, Y: 5}}
	tr, err := g.GenerateMesh([]geom2d.Polygon{square(0, 0, 10, 10)}, steiner, Settings{})
	if err != nil {
		tst.Errorf("GenerateMesh failed: %v\n", err)
		return
	}
	found := false
	for _, p := range tr.Points {
		if p.X == 5 && p.Y == 5 {
			found = true
		}
	}
	if !found {
		tst.Errorf("expected the Steiner point (5,5) to appear in the triangulation's point set\n")
	}
}

func Test_meshgen04(tst *testing.T) {

	chk.PrintTitle("meshgen: balancedGridPoints sprinkles an interior n x n grid")

	pts := balancedGridPoints(geom2d.BBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, 4)
	chk.IntAssert(len(pts), 16)
	for _, p := range pts {
		if p.X <= 0 || p.X >= 10 || p.Y <= 0 || p.Y >= 10 {
			tst.Errorf("expected every sprinkled point to lie strictly inside the bbox, got (%d,%d)\n", p.X, p.Y)
		}
	}

	if pts := balancedGridPoints(geom2d.BBox{MinX: 0, MinY: 0, MaxX: 0, MaxY: 10}, 4); pts != nil {
		tst.Errorf("expected a degenerate (zero-width) bbox to yield no sprinkled points, got %v\n", pts)
	}
}

func Test_meshgen05(tst *testing.T) {

	chk.PrintTitle("meshgen: GenerateMesh honors addBalancedPoints by growing the point set")

	g := NewGenerator()
	trPlain, err := g.GenerateMesh([]geom2d.Polygon{square(0, 0, 10, 10)}, nil, Settings{})
	if err != nil {
		tst.Errorf("GenerateMesh failed: %v\n", err)
		return
	}
	trSprinkled, err := g.GenerateMesh([]geom2d.Polygon{square(0, 0, 10, 10)}, nil, Settings{AddBalancedPoints: true})
	if err != nil {
		tst.Errorf("GenerateMesh (sprinkled) failed: %v\n", err)
		return
	}
	if len(trSprinkled.Points) <= len(trPlain.Points) {
		tst.Errorf("expected addBalancedPoints to grow the triangulation's point set: plain=%d sprinkled=%d\n",
			len(trPlain.Points), len(trSprinkled.Points))
	}
	var total float64
	for t := range trSprinkled.Triangles {
		total += trSprinkled.TriArea(t)
	}
	chk.Float64(tst, "sprinkled triangulation still covers the square's area", 1e-6, total, 100)
}
