// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom2d

import "math"

// TriangleIntersectionArea computes the area of the intersection of two
// triangles via Sutherland-Hodgman clipping. Used by the stackup prism
// builder to compute inter-layer contact area fractions; both inputs are
// convex, so the general polygon-boolean machinery is not needed.
func TriangleIntersectionArea(a, b [3]Point) float64 {
	subject := []Point{a[0], a[1], a[2]}
	if !IsCCW(subject) {
		subject[1], subject[2] = subject[2], subject[1]
	}
	clip := []Point{b[0], b[1], b[2]}
	if !IsCCW(clip) {
		clip[1], clip[2] = clip[2], clip[1]
	}
	out := clipConvex(subject, clip)
	if len(out) < 3 {
		return 0
	}
	return math.Abs(signedAreaFloat(out)) / 2
}

// clipConvex clips subject (CCW) against clip (CCW) with Sutherland-
// Hodgman, returning the (possibly empty) resulting convex polygon.
func clipConvex(subject, clip []Point) []Point {
	output := subject
	n := len(clip)
	for i := 0; i < n; i++ {
		if len(output) == 0 {
			break
		}
		a, b := clip[i], clip[(i+1)%n]
		input := output
		output = nil
		for j := 0; j < len(input); j++ {
			cur := input[j]
			prev := input[(j-1+len(input))%len(input)]
			curIn := leftOf(a, b, cur)
			prevIn := leftOf(a, b, prev)
			if curIn {
				if !prevIn {
					output = append(output, segIntersectFloat(prev, cur, a, b))
				}
				output = append(output, cur)
			} else if prevIn {
				output = append(output, segIntersectFloat(prev, cur, a, b))
			}
		}
	}
	return output
}

func leftOf(a, b, p Point) bool {
	return float64(b.X-a.X)*float64(p.Y-a.Y)-float64(b.Y-a.Y)*float64(p.X-a.X) >= 0
}

// segIntersectFloat returns the intersection of line p1-p2 with line
// a-b, assumed to exist (used only inside clipConvex where it always
// does), as a float-rounded lattice Point.
func segIntersectFloat(p1, p2, a, b Point) Point {
	x1, y1 := float64(p1.X), float64(p1.Y)
	x2, y2 := float64(p2.X), float64(p2.Y)
	x3, y3 := float64(a.X), float64(a.Y)
	x4, y4 := float64(b.X), float64(b.Y)
	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if denom == 0 {
		return p2
	}
	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	return Point{
		X: int64(math.Round(x1 + t*(x2-x1))),
		Y: int64(math.Round(y1 + t*(y2-y1))),
	}
}

func signedAreaFloat(ring []Point) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += float64(ring[i].X)*float64(ring[j].Y) - float64(ring[j].X)*float64(ring[i].Y)
	}
	return sum
}
