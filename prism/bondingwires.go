// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prism

import (
	"math"

	"github.com/0x0-bwu/nanoheat-go/geom2d"
	"github.com/0x0-bwu/nanoheat-go/spatial"
	"github.com/0x0-bwu/nanoheat-go/stackup"
)

// addBondingWires converts each bond wire's polyline into LineElements
// chained through shared endpoints; the first and last segment
// additionally connect to the nearest prism in the layer whose elevation
// range contains the endpoint's height. The wire's spline has already
// been sampled into sm.BondingWires by stackup.Builder, so no
// LayoutRetriever access is needed here.
func (b *Builder) addBondingWires(m *Model, sm *stackup.Model) error {
	base := m.TotalPrismElements()
	for _, bw := range sm.BondingWires {
		n := len(bw.Pt2Ds)
		if n < 2 || len(bw.Heights) != n {
			continue
		}
		var localIds []int
		for i := 0; i+1 < n; i++ {
			localId := len(m.Lines)
			le := LineElement{
				Id: base + localId, NetId: bw.NetId, MatId: bw.MatId, ScenId: bw.ScenarioId,
				Radius: bw.Radius, Current: bw.Current,
				EndPts: [2]Point3{
					{X: bw.Pt2Ds[i].X, Y: bw.Pt2Ds[i].Y, Z: bw.Heights[i]},
					{X: bw.Pt2Ds[i+1].X, Y: bw.Pt2Ds[i+1].Y, Z: bw.Heights[i+1]},
				},
			}
			m.Lines = append(m.Lines, le)
			localIds = append(localIds, localId)
			if i > 0 {
				prevLocal := localIds[i-1]
				m.Lines[localId].Neighbors[0] = append(m.Lines[localId].Neighbors[0], base+prevLocal)
				m.Lines[prevLocal].Neighbors[1] = append(m.Lines[prevLocal].Neighbors[1], base+localId)
			}
		}
		if len(localIds) == 0 {
			continue
		}
		if nearest, ok := b.nearestPrism(m, bw.Heights[0], bw.Pt2Ds[0]); ok {
			first := localIds[0]
			m.Lines[first].Neighbors[0] = append(m.Lines[first].Neighbors[0], nearest)
		}
		if nearest, ok := b.nearestPrism(m, bw.Heights[n-1], bw.Pt2Ds[n-1]); ok {
			last := localIds[len(localIds)-1]
			m.Lines[last].Neighbors[1] = append(m.Lines[last].Neighbors[1], nearest)
		}
	}
	return nil
}

// nearestPrism finds the layer whose vertical extent contains height and
// returns the global id of its nearest prism to pt by centroid distance,
// using a per-layer spatial index with a brute-force fallback when the
// index has no centroid at pt's exact location.
func (b *Builder) nearestPrism(m *Model, height float64, pt geom2d.Point) (int, bool) {
	for li, layer := range m.Layers {
		if layer.Triangulation == nil {
			continue
		}
		if height > layer.Elevation || height < layer.Elevation-layer.Thickness {
			continue
		}
		if idx := b.layerCentroidIndex(li, &layer); idx != nil {
			if local := idx.Find(pt.X, pt.Y); local >= 0 {
				return m.GlobalIndex(li, local), true
			}
		}
		best, bestD := -1, math.MaxFloat64
		for _, e := range layer.Elements {
			c := layer.Triangulation.TriCentroid(e.TemplateId)
			if d := c.Dist(pt); d < bestD {
				bestD, best = d, e.Id
			}
		}
		if best >= 0 {
			return m.GlobalIndex(li, best), true
		}
	}
	return -1, false
}

// layerCentroidIndex lazily builds and caches a spatial.Index over layer
// li's triangle centroids, local element id as the indexed value.
func (b *Builder) layerCentroidIndex(li int, layer *PrismLayer) spatial.Index {
	if b.layerIdx == nil {
		b.layerIdx = make(map[int]spatial.Index)
	}
	if idx, ok := b.layerIdx[li]; ok {
		return idx
	}
	if layer.Triangulation == nil || len(layer.Elements) == 0 {
		b.layerIdx[li] = nil
		return nil
	}
	bbox := geom2d.BoundingBox(layer.Triangulation.Points)
	idx, err := spatial.NewBinsIndex(bbox.MinX, bbox.MinY, bbox.MaxX, bbox.MaxY, 0)
	if err != nil {
		b.layerIdx[li] = nil
		return nil
	}
	for _, e := range layer.Elements {
		c := layer.Triangulation.TriCentroid(e.TemplateId)
		_ = idx.Append(c.X, c.Y, e.Id)
	}
	b.layerIdx[li] = idx
	return idx
}
