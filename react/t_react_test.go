// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package react

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/inp"
	"github.com/tbnlab/tbnexplorer2/model"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// cannedSolver returns fixed Hilbert-basis vectors
type cannedSolver struct {
	vectors [][]int64
	lastA   [][]int64
}

func (o *cannedSolver) HilbertBasis(A [][]int64) ([][]int64, error) {
	o.lastA = A
	return o.vectors, nil
}

func (o *cannedSolver) ModuleGeneratorsWithSlice(eq [][]int64, slice []int64) ([][]int64, error) {
	return o.vectors, nil
}

func (o *cannedSolver) Available() bool { return true }
func (o *cannedSolver) Name() string    { return "canned" }

// gateTBN builds the {G: a b, X: a*, Y: b*} system. Its polymer basis is
// G, GX, GY, GXY
func gateTBN() *model.TBN {
	monomers, siteIndex, units, _, err := inp.ParseTBN("G: a b\nX: a*\nY: b*\n", nil)
	if err != nil {
		chk.Panic("cannot parse test TBN:\n%v", err)
	}
	tbn, err := model.NewTBN(monomers, siteIndex, units)
	if err != nil {
		chk.Panic("cannot build test TBN:\n%v", err)
	}
	return tbn
}

func gateBasis() [][]int64 {
	return [][]int64{
		{1, 0, 0}, // G
		{1, 1, 0}, // GX
		{1, 0, 1}, // GY
		{1, 1, 1}, // GXY
	}
}

func Test_react01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("react01. on-target loading and matrix setup")

	tbn := gateTBN()
	basis := gateBasis()
	computer := &Computer{Tbn: tbn, Solver: &cannedSolver{}}

	dir := tst.TempDir()
	path := filepath.Join(dir, "ontarget.tbnpolys")
	os.WriteFile(path, []byte("G\nX\n\nG\nY\n"), 0644)

	onTarget, err := computer.LoadOnTargetPolymers(path, basis)
	if err != nil {
		tst.Errorf("loading failed:\n%v", err)
		return
	}
	if len(onTarget) != 2 || onTarget[0] != 1 || onTarget[1] != 2 {
		tst.Errorf("on-target indices must be [1 2]: %v\n", onTarget)
		return
	}

	computer.SetupMatrices(basis, onTarget)
	if len(computer.OffTarget) != 2 || computer.OffTarget[0] != 0 || computer.OffTarget[1] != 3 {
		tst.Errorf("off-target indices must be [0 3]: %v\n", computer.OffTarget)
		return
	}
	// B columns are the polymer vectors
	if computer.B[0][3] != 1 || computer.B[1][1] != 1 || computer.B[1][2] != 0 {
		tst.Errorf("wrong B matrix: %v\n", computer.B)
		return
	}

	// a polymer absent from the basis is fatal
	path2 := filepath.Join(dir, "bad.tbnpolys")
	os.WriteFile(path2, []byte("X\nY\n"), 0644)
	if _, err = computer.LoadOnTargetPolymers(path2, basis); err == nil {
		tst.Errorf("missing polymer must be fatal\n")
	}
}

func Test_react02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("react02. lifting, recovery and invariants")

	tbn := gateTBN()
	basis := gateBasis()

	// lifted solutions: the GX + GY -> G + GXY exchange, plus the trivial
	// pair that recovers to the zero reaction
	solver := &cannedSolver{vectors: [][]int64{
		{0, 0, 1, 1, 1, 1},
		{1, 0, 1, 0, 0, 0},
	}}
	computer := &Computer{Tbn: tbn, Solver: solver}
	computer.SetupMatrices(basis, []int{1, 2})

	reactions, err := computer.ComputeIrreducible()
	if err != nil {
		tst.Errorf("computation failed:\n%v", err)
		return
	}

	// the lifted matrix has 2|O|+|T| columns and the split structure
	if len(solver.lastA) != 3 || len(solver.lastA[0]) != 6 {
		tst.Errorf("lifted matrix must be 3x6: %v\n", solver.lastA)
		return
	}
	// column for r+_GX equals B[:,1]; column for r-_GX is its negation
	if solver.lastA[1][0] != 1 || solver.lastA[1][2] != -1 {
		tst.Errorf("wrong sign-split columns: %v\n", solver.lastA)
		return
	}

	// the zero reaction is dropped
	if len(reactions) != 1 {
		tst.Errorf("must have exactly one reaction: %d\n", len(reactions))
		return
	}
	r := reactions[0]
	if r.Vector[0] != 1 || r.Vector[1] != -1 || r.Vector[2] != -1 || r.Vector[3] != 1 {
		tst.Errorf("wrong reaction vector: %v\n", r.Vector)
		return
	}

	// invariants: B r = 0 and r[j] >= 0 for off-target j
	for _, v := range model.MatVecMul(computer.B, r.Vector) {
		if v != 0 {
			tst.Errorf("mass conservation violated: %v\n", r.Vector)
			return
		}
	}
	for _, j := range computer.OffTarget {
		if r.Vector[j] < 0 {
			tst.Errorf("off-target polymer consumed: %v\n", r.Vector)
			return
		}
	}

	// detailed balance holds (the only reaction touches off-target polymers)
	if computer.CheckOnTargetDetailedBalance(reactions) != nil {
		tst.Errorf("detailed balance must hold\n")
		return
	}

	// an unbalanced on-target-only reaction is reported
	bad := &Reaction{Vector: []int64{0, -1, 2, 0}}
	if computer.CheckOnTargetDetailedBalance([]*Reaction{bad}) != bad {
		tst.Errorf("unbalanced on-target reaction must be reported\n")
	}
}

func Test_react03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("react03. target-restricted variant")

	tbn := gateTBN()
	basis := gateBasis()
	solver := &cannedSolver{vectors: [][]int64{
		{0, 0, 1, 1, 1, 1},
	}}
	computer := &Computer{Tbn: tbn, Solver: solver}
	computer.SetupMatrices(basis, []int{1, 2})

	// the reaction produces both off-target polymers (indices 0 and 3)
	reactions, err := computer.ComputeIrreducibleForTargets(map[int]bool{3: true})
	if err != nil {
		tst.Errorf("computation failed:\n%v", err)
		return
	}
	if len(reactions) != 1 {
		tst.Errorf("reaction producing the target must be kept: %d\n", len(reactions))
		return
	}

	// the same reaction also produces the other off-target polymer (index 0),
	// so a target set of {0} keeps it as well
	solver.vectors = [][]int64{{0, 0, 1, 1, 1, 1}}
	reactions, err = computer.ComputeIrreducibleForTargets(map[int]bool{0: true})
	if err != nil || len(reactions) != 1 {
		tst.Errorf("target at index 0 must keep the reaction: %v %v\n", reactions, err)
		return
	}

	// on-target targets are rejected
	if _, err = computer.ComputeIrreducibleForTargets(map[int]bool{1: true}); err == nil {
		tst.Errorf("on-target target must be rejected\n")
		return
	}

	// out-of-range targets are rejected
	if _, err = computer.ComputeIrreducibleForTargets(map[int]bool{99: true}); err == nil {
		tst.Errorf("out-of-range target must be rejected\n")
	}
}

func Test_react04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("react04. reaction formatting and balance")

	r := &Reaction{Vector: []int64{1, -1, -1, 1}}
	if !r.IsBalanced() {
		tst.Errorf("exchange reaction must be balanced\n")
		return
	}
	if r.String() != "P1 + P2 -> P0 + P3" {
		tst.Errorf("wrong formatting: %q\n", r.String())
		return
	}

	r2 := &Reaction{Vector: []int64{0, -2, 3, 0}}
	if r2.IsBalanced() {
		tst.Errorf("2 -> 3 must be unbalanced\n")
		return
	}
	if r2.String() != "2 P1 -> 3 P2" {
		tst.Errorf("wrong formatting: %q\n", r2.String())
	}
}
