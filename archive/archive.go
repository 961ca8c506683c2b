// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package archive implements versioned (de)serialization of a prism
// thermal model to a tagged binary (gob by default) or JSON archive.
package archive

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"io"
	"os"

	"github.com/cpmech/gosl/chk"

	"github.com/0x0-bwu/nanoheat-go/prism"
)

// FormatVersion is bumped whenever the archived snapshot's shape changes
// in a way that breaks Load on an older file.
const FormatVersion = 1

// Encoder defines encoders; gob or json.
type Encoder interface {
	Encode(e interface{}) error
}

// Decoder defines decoders; gob or json.
type Decoder interface {
	Decode(e interface{}) error
}

// GetEncoder returns a gob encoder unless enctype is "json".
func GetEncoder(w io.Writer, enctype string) Encoder {
	if enctype == "json" {
		return json.NewEncoder(w)
	}
	return gob.NewEncoder(w)
}

// GetDecoder returns a gob decoder unless enctype is "json".
func GetDecoder(r io.Reader, enctype string) Decoder {
	if enctype == "json" {
		return json.NewDecoder(r)
	}
	return gob.NewDecoder(r)
}

// snapshot is the archived form of a prism.Model, tagged with a format
// version. Every field of Model is exported; the one gob cannot take as
// is, a nil entry of UniformBCs, is archived as a ThermalBC of kind
// unsetBC and turned back into nil by Load.
type snapshot struct {
	Version int
	Model   prism.Model
}

// unsetBC marks an archived placeholder for an unset uniform BC.
const unsetBC prism.BCKind = -1

// Save writes m to path in enctype ("gob" or "json"; anything else falls
// back to gob).
func Save(path string, m *prism.Model, enctype string) error {
	return saveSnapshot(path, &snapshot{Version: FormatVersion, Model: *m}, enctype)
}

func saveSnapshot(path string, snap *snapshot, enctype string) error {
	for o, bc := range snap.Model.UniformBCs {
		if bc == nil {
			snap.Model.UniformBCs[o] = &prism.ThermalBC{Kind: unsetBC}
		}
	}
	var buf bytes.Buffer
	enc := GetEncoder(&buf, enctype)
	if err := enc.Encode(snap); err != nil {
		return chk.Err("archive: cannot encode model\n%v", err)
	}
	fil, err := os.Create(path)
	if err != nil {
		return chk.Err("archive: cannot create %q\n%v", path, err)
	}
	defer fil.Close()
	if _, err := fil.Write(buf.Bytes()); err != nil {
		return chk.Err("archive: cannot write %q\n%v", path, err)
	}
	return nil
}

// Load reads a prism.Model previously written by Save.
func Load(path string, enctype string) (*prism.Model, error) {
	fil, err := os.Open(path)
	if err != nil {
		return nil, chk.Err("archive: cannot open %q\n%v", path, err)
	}
	defer fil.Close()

	var snap snapshot
	dec := GetDecoder(fil, enctype)
	if err := dec.Decode(&snap); err != nil {
		return nil, chk.Err("archive: cannot decode %q\n%v", path, err)
	}
	if snap.Version > FormatVersion {
		return nil, chk.Err("archive: %q has format version %d, this build supports up to %d", path, snap.Version, FormatVersion)
	}
	for o, bc := range snap.Model.UniformBCs {
		if bc != nil && bc.Kind == unsetBC {
			snap.Model.UniformBCs[o] = nil
		}
	}
	return &snap.Model, nil
}
