// Copyright 2025 The Nanoheat Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"errors"

	"github.com/0x0-bwu/nanoheat-go/prism"
)

// ErrNotImplemented is returned by every Transient implementation in
// this package. An explicit ODE integrator over C*dx/dt = -G*x + B*u(t)
// is future work, not part of this solver.
var ErrNotImplemented = errors.New("solver: transient solve is not implemented")

// Transient is the stub surface a future time-domain solver would fill
// in, built over the same MNA stamps StaticSolver already produces.
type Transient interface {
	Solve(model *prism.Model, t0, t1 float64, out [][]float64) error
}

type transientStub struct{}

// NewTransient returns a Transient that always fails with
// ErrNotImplemented.
func NewTransient() Transient { return transientStub{} }

func (transientStub) Solve(model *prism.Model, t0, t1 float64, out [][]float64) error {
	return ErrNotImplemented
}
