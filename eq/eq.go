// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package eq wraps external equilibrium-concentration solvers (COFFEE and
// NUPACK-concentrations) behind a single interface
package eq

import (
	"github.com/tbnlab/tbnexplorer2/model"
)

// Solver computes equilibrium concentrations of polymers given monomer
// concentrations. Implementations write the solver's native input files into
// a scoped temporary workspace, spawn the solver, parse its output and
// remove the workspace regardless of outcome. Exactly one concentration per
// polymer is returned, in Molar, preserving input order
type Solver interface {

	// Compute returns the equilibrium concentrations of the given polymers
	Compute(polymers []*model.Polymer, tbn *model.TBN, assoc *model.AssocEnergy, tempC float64) ([]float64, error)

	// Available reports whether the solver executable can be invoked
	Available() bool

	// Name returns the display name of the solver
	Name() string
}
