// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spatial

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_spatial01(tst *testing.T) {

	chk.PrintTitle("spatial: append then find at the same location")

	idx, err := NewBinsIndex(0, 0, 100, 100, 0)
	if err != nil {
		tst.Errorf("NewBinsIndex failed: %v\n", err)
		return
	}
	if err := idx.Append(10, 10, 42); err != nil {
		tst.Errorf("Append failed: %v\n", err)
		return
	}
	if id := idx.Find(10, 10); id != 42 {
		tst.Errorf("expected Find to return the appended id 42, got %d\n", id)
	}
}

func Test_spatial02(tst *testing.T) {

	chk.PrintTitle("spatial: FindAlongLine picks up a point on the segment")

	idx, err := NewBinsIndex(0, 0, 100, 100, 0)
	if err != nil {
		tst.Errorf("NewBinsIndex failed: %v\n", err)
		return
	}
	if err := idx.Append(50, 0, 7); err != nil {
		tst.Errorf("Append failed: %v\n", err)
		return
	}
	ids := idx.FindAlongLine(0, 0, 100, 0, 1)
	found := false
	for _, id := range ids {
		if id == 7 {
			found = true
		}
	}
	if !found {
		tst.Errorf("expected FindAlongLine(0,0)-(100,0) to include point (50,0) id=7, got %v\n", ids)
	}
}

func Test_spatial03(tst *testing.T) {

	chk.PrintTitle("spatial: a degenerate bounding box is widened, not rejected")

	if _, err := NewBinsIndex(5, 5, 5, 5, 0); err != nil {
		tst.Errorf("expected a degenerate box to be widened rather than erroring, got: %v\n", err)
	}
}

func Test_spatial04(tst *testing.T) {

	chk.PrintTitle("spatial: an uninitialized BinsIndex fails safe")

	var idx BinsIndex
	if id := idx.Find(0, 0); id != -1 {
		tst.Errorf("expected Find on an uninitialized index to return -1, got %d\n", id)
	}
	if ids := idx.FindAlongLine(0, 0, 1, 1, 1); ids != nil {
		tst.Errorf("expected FindAlongLine on an uninitialized index to return nil, got %v\n", ids)
	}
	if err := idx.Append(0, 0, 1); err == nil {
		tst.Errorf("expected Append on an uninitialized index to fail\n")
	}
}
