// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package archive

import (
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/0x0-bwu/nanoheat-go/geom2d"
	"github.com/0x0-bwu/nanoheat-go/prism"
)

func tinyModel() *prism.Model {
	layer := prism.PrismLayer{
		Id: 0, Elevation: 1, Thickness: 0.5,
		Elements: []prism.PrismElement{
			{Id: 0, MatId: 1, TemplateId: 0, PowerLutId: -1, Neighbors: [3]int{-1, -1, -1}},
		},
		Triangulation: &geom2d.Triangulation{
			Points:    []geom2d.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
			Triangles: []geom2d.Triangle{{V: [3]int{0, 1, 2}, Neighbors: [3]int{-1, -1, -1}}},
		},
	}
	m := &prism.Model{
		Layers:      []prism.PrismLayer{layer},
		Prisms:      []prism.PrismInstance{{Neighbors: [5]int{-1, -1, -1, -1, -1}}},
		IndexOffset: []int{0},
	}
	m.SetUniformBC(prism.TOP, prism.ThermalBC{Kind: prism.HTC, Value: 50})
	return m
}

func Test_archive01(tst *testing.T) {

	chk.PrintTitle("archive: gob round-trip")

	path := filepath.Join(tst.TempDir(), "model.gob")
	orig := tinyModel()

	if err := Save(path, orig, "gob"); err != nil {
		tst.Errorf("Save failed: %v\n", err)
		return
	}
	got, err := Load(path, "gob")
	if err != nil {
		tst.Errorf("Load failed: %v\n", err)
		return
	}

	if len(got.Layers) != 1 || len(got.Layers[0].Elements) != 1 {
		tst.Errorf("expected 1 layer with 1 element, got %d layers\n", len(got.Layers))
	}
	if got.Layers[0].Triangulation == nil || len(got.Layers[0].Triangulation.Points) != 3 {
		tst.Errorf("triangulation did not round-trip\n")
	}
	if got.UniformBCs[prism.TOP] == nil || got.UniformBCs[prism.TOP].Value != 50 {
		tst.Errorf("uniform BC did not round-trip\n")
	}
}

func Test_archive02(tst *testing.T) {

	chk.PrintTitle("archive: json round-trip")

	path := filepath.Join(tst.TempDir(), "model.json")
	orig := tinyModel()

	if err := Save(path, orig, "json"); err != nil {
		tst.Errorf("Save failed: %v\n", err)
		return
	}
	got, err := Load(path, "json")
	if err != nil {
		tst.Errorf("Load failed: %v\n", err)
		return
	}
	if len(got.Prisms) != len(orig.Prisms) {
		tst.Errorf("expected %d prisms, got %d\n", len(orig.Prisms), len(got.Prisms))
	}
}

func Test_archive03(tst *testing.T) {

	chk.PrintTitle("archive: future format version is rejected")

	path := filepath.Join(tst.TempDir(), "model.gob")
	if err := Save(path, tinyModel(), "gob"); err != nil {
		tst.Errorf("Save failed: %v\n", err)
		return
	}

	// Tamper with the on-disk version by writing a snapshot with a future
	// version directly through the same path.
	future := &snapshot{Version: FormatVersion + 1, Model: *tinyModel()}
	if err := saveSnapshot(path, future, "gob"); err != nil {
		tst.Errorf("saveSnapshot failed: %v\n", err)
		return
	}
	if _, err := Load(path, "gob"); err == nil {
		tst.Errorf("expected Load to reject a future format version\n")
	}
}
