// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package react

import (
	"sort"

	"github.com/cpmech/gosl/chk"

	"github.com/tbnlab/tbnexplorer2/hb"
	"github.com/tbnlab/tbnexplorer2/inp"
	"github.com/tbnlab/tbnexplorer2/model"
)

// Computer enumerates irreducible canonical reactions for a TBN system
type Computer struct {
	Tbn    *model.TBN
	Solver hb.Solver

	// set by SetupMatrices
	Polymers  [][]int64 // polymer basis vectors
	OnTarget  []int     // sorted on-target indices
	OffTarget []int     // sorted off-target indices
	B         [][]int64 // monomer-conservation matrix: one row per monomer, one column per polymer

	onTargetSet map[int]bool
}

// LoadOnTargetPolymers parses the on-target .tbnpolys file and locates each
// polymer in the basis by exact vector equality. A polymer absent from the
// basis is a fatal error
func (o *Computer) LoadOnTargetPolymers(path string, basis [][]int64) (indices []int, err error) {
	parsed, err := inp.ParsePolysFile(path, o.Tbn)
	if err != nil {
		return
	}
	found := make(map[int]bool)
	for _, entries := range parsed {
		counts := inp.PolymerCounts(entries, o.Tbn)
		idx := -1
		for i, p := range basis {
			if equalCounts(counts, p) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, chk.Err("on-target polymer %v not found in polymer basis", counts)
		}
		found[idx] = true
	}
	for idx := range found {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return
}

// SetupMatrices builds the monomer-conservation matrix B and the on/off
// target index lists
func (o *Computer) SetupMatrices(basis [][]int64, onTarget []int) {
	o.Polymers = basis
	o.onTargetSet = make(map[int]bool)
	o.OnTarget = append([]int{}, onTarget...)
	sort.Ints(o.OnTarget)
	for _, idx := range o.OnTarget {
		o.onTargetSet[idx] = true
	}
	o.OffTarget = nil
	for i := range basis {
		if !o.onTargetSet[i] {
			o.OffTarget = append(o.OffTarget, i)
		}
	}
	sort.Ints(o.OffTarget)

	nmon := o.Tbn.NumMonomers()
	o.B = make([][]int64, nmon)
	for m := 0; m < nmon; m++ {
		o.B[m] = make([]int64, len(basis))
		for p, counts := range basis {
			o.B[m][p] = counts[m]
		}
	}
}

// ComputeIrreducible computes the irreducible canonical reactions: the
// Hilbert basis of {r : B r = 0, r[j] >= 0 for off-target j}, excluding the
// zero reaction. On-target coordinates are sign-split into nonnegative
// variable pairs before handing the cone to the solver
func (o *Computer) ComputeIrreducible() (reactions []*Reaction, err error) {
	if o.B == nil {
		return nil, chk.Err("matrices not set up. call SetupMatrices first")
	}
	lifted := o.liftMatrix()
	vectors, err := o.Solver.HilbertBasis(lifted)
	if err != nil {
		return
	}
	for _, h := range vectors {
		r := o.recoverReaction(h)
		if r != nil {
			reactions = append(reactions, r)
		}
	}
	return
}

// ComputeIrreducibleForTargets computes the irreducible canonical reactions
// that produce at least one of the given target polymers: the full Hilbert
// basis is computed and reactions with a positive total over the targets are
// kept
func (o *Computer) ComputeIrreducibleForTargets(targets map[int]bool) (reactions []*Reaction, err error) {
	if o.B == nil {
		return nil, chk.Err("matrices not set up. call SetupMatrices first")
	}
	for idx := range targets {
		if o.onTargetSet[idx] {
			return nil, chk.Err("target polymers must be off-target. invalid index: %d", idx)
		}
		if idx < 0 || idx >= len(o.Polymers) {
			return nil, chk.Err("target polymer index out of range: %d", idx)
		}
	}
	all, err := o.ComputeIrreducible()
	if err != nil {
		return
	}
	for _, r := range all {
		var total int64
		for idx := range targets {
			if r.Vector[idx] > 0 {
				total += r.Vector[idx]
			}
		}
		if total > 0 {
			reactions = append(reactions, r)
		}
	}
	return
}

// CheckOnTargetDetailedBalance verifies that every reaction entirely over
// on-target polymers is balanced, returning the first violator or nil
func (o *Computer) CheckOnTargetDetailedBalance(reactions []*Reaction) *Reaction {
	for _, r := range reactions {
		allOn := true
		for i, c := range r.Vector {
			if c != 0 && !o.onTargetSet[i] {
				allOn = false
				break
			}
		}
		if allOn && !r.IsBalanced() {
			return r
		}
	}
	return nil
}

// liftMatrix builds the lifted matrix over the sign-split variable space
// [r+_ontarget, r-_ontarget, r_offtarget], all nonnegative
func (o *Computer) liftMatrix() (lifted [][]int64) {
	non := len(o.OnTarget)
	noff := len(o.OffTarget)
	nmon := len(o.B)
	lifted = make([][]int64, nmon)
	for m := 0; m < nmon; m++ {
		lifted[m] = make([]int64, 2*non+noff)
		for i, p := range o.OnTarget {
			lifted[m][i] = o.B[m][p]
			lifted[m][non+i] = -o.B[m][p]
		}
		for k, p := range o.OffTarget {
			lifted[m][2*non+k] = o.B[m][p]
		}
	}
	return
}

// recoverReaction maps a lifted lattice vector back to a reaction vector,
// returning nil for the zero reaction
func (o *Computer) recoverReaction(h []int64) *Reaction {
	non := len(o.OnTarget)
	r := make([]int64, len(o.Polymers))
	for i, p := range o.OnTarget {
		r[p] = h[i] - h[non+i]
	}
	for k, p := range o.OffTarget {
		r[p] = h[2*non+k]
	}
	for _, c := range r {
		if c != 0 {
			return &Reaction{Vector: r}
		}
	}
	return nil
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func equalCounts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
