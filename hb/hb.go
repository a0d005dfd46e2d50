// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package hb wraps external Hilbert-basis solvers (Normaliz and 4ti2) behind
// a single capability interface
package hb

// Solver computes Hilbert bases of integer lattice cones. Implementations
// serialize the problem into the solver's native input files, spawn the
// solver subprocess inside a scoped temporary workspace, parse the outputs
// and remove the workspace regardless of outcome
type Solver interface {

	// HilbertBasis returns the minimal generating set of {x >= 0 : A x = 0}
	HilbertBasis(A [][]int64) ([][]int64, error)

	// ModuleGeneratorsWithSlice returns the minimal inhomogeneous solutions
	// of {x >= 0 : eq x = 0, slice x >= 1}
	ModuleGeneratorsWithSlice(eq [][]int64, slice []int64) ([][]int64, error)

	// Available reports whether the solver executable can be invoked
	Available() bool

	// Name returns the display name of the solver
	Name() string
}
