// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package basis

import (
	"os"
	"path/filepath"
	"strings"
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

// dimerTBN builds the {a b, a* b*} system
func dimerTBN() *model.TBN {
	siteIndex := map[string]int{"a": 0, "b": 1}
	mons := []*model.Monomer{
		{Name: "X", Sites: []model.BindingSite{{Name: "a"}, {Name: "b"}}},
		{Name: "Y", Sites: []model.BindingSite{{Name: "a", Star: true}, {Name: "b", Star: true}}},
	}
	tbn, err := model.NewTBN(mons, siteIndex, "")
	if err != nil {
		chk.Panic("cannot build test TBN:\n%v", err)
	}
	return tbn
}

func Test_basis01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("basis01. computation with projection and deduplication")

	tbn := dimerTBN()

	// lifted vectors over (X, Y, -e_a, -e_b): projections (1,1), (1,0), (1,0)
	solver := &cannedSolver{vectors: [][]int64{
		{1, 1, 0, 0},
		{1, 0, 1, 1},
		{1, 0, 1, 1},
	}}
	computer := &Computer{Tbn: tbn, Solver: solver}
	polymers, err := computer.ComputePolymerBasis()
	if err != nil {
		tst.Errorf("computation failed:\n%v", err)
		return
	}

	// the solver received the augmented matrix
	if len(solver.lastA) != 2 || len(solver.lastA[0]) != 4 {
		tst.Errorf("solver must receive the augmented 2x4 matrix: %v\n", solver.lastA)
		return
	}

	// dimer (1,1) kept; duplicate (1,0) dropped in first-seen order
	if len(polymers) != 2 {
		tst.Errorf("must have 2 polymers after deduplication: %d\n", len(polymers))
		return
	}
	if polymers[0].Counts[0] != 1 || polymers[0].Counts[1] != 1 {
		tst.Errorf("first polymer must be the dimer: %v\n", polymers[0].Counts)
		return
	}
	if polymers[1].Counts[0] != 1 || polymers[1].Counts[1] != 0 {
		tst.Errorf("second polymer must be the singleton: %v\n", polymers[1].Counts)
		return
	}

	// the basis polymers satisfy A p >= 0
	A := tbn.MatrixA()
	for _, p := range polymers {
		for _, v := range model.MatVecMul(A, p.Counts) {
			if v < 0 {
				tst.Errorf("basis polymer violates A p >= 0: %v\n", p.Counts)
				return
			}
		}
	}

	// empty solver output is an error
	computer2 := &Computer{Tbn: tbn, Solver: &cannedSolver{}}
	_, err = computer2.ComputePolymerBasis()
	if err == nil || !strings.Contains(err.Error(), "no basis found") {
		tst.Errorf("empty solver output must be 'no basis found': %v\n", err)
	}
}

func Test_basis02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("basis02. cache load gated by matrix hash")

	tbn := dimerTBN()
	solver := &cannedSolver{vectors: [][]int64{{1, 1, 0, 0}, {1, 0, 1, 1}}}
	computer := &Computer{Tbn: tbn, Solver: solver}
	polymers, err := computer.ComputePolymerBasis()
	if err != nil {
		tst.Errorf("computation failed:\n%v", err)
		return
	}

	dir := tst.TempDir()
	path := filepath.Join(dir, "sys.tbnpolymat")
	err = computer.SavePolymat(polymers, path, &SaveOptions{FreeEnergies: true})
	if err != nil {
		tst.Errorf("save failed:\n%v", err)
		return
	}

	// matching hash: loaded basis equals the computed one
	loaded := computer.LoadCached(path)
	if len(loaded) != len(polymers) {
		tst.Errorf("cache must hit: %d != %d\n", len(loaded), len(polymers))
		return
	}
	for i := range loaded {
		if !loaded[i].Equal(polymers[i]) {
			tst.Errorf("cached polymer %d differs: %v != %v\n", i, loaded[i].Counts, polymers[i].Counts)
			return
		}
	}

	// tampered hash: miss
	b, _ := os.ReadFile(path)
	tampered := strings.Replace(string(b), tbn.MatrixHash(), strings.Repeat("00", 32), 1)
	path2 := filepath.Join(dir, "tampered.tbnpolymat")
	os.WriteFile(path2, []byte(tampered), 0644)
	if computer.LoadCached(path2) != nil {
		tst.Errorf("tampered hash must miss\n")
		return
	}

	// unparseable polymer rows: miss
	corrupt := strings.Replace(string(b), "1 1", "1 x", 1)
	path3 := filepath.Join(dir, "corrupt.tbnpolymat")
	os.WriteFile(path3, []byte(corrupt), 0644)
	if computer.LoadCached(path3) != nil {
		tst.Errorf("corrupt rows must miss\n")
		return
	}

	// missing file: miss
	if computer.LoadCached(filepath.Join(dir, "nosuch.tbnpolymat")) != nil {
		tst.Errorf("missing file must miss\n")
	}
}

func Test_basis03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("basis03. user-friendly basis file")

	tbn := dimerTBN()
	polymers := []*model.Polymer{
		model.NewPolymer([]int64{1, 1}, tbn),
		model.NewPolymer([]int64{2, 0}, tbn),
	}
	computer := &Computer{Tbn: tbn, Solver: &cannedSolver{}}

	dir := tst.TempDir()
	path := filepath.Join(dir, "sys-polymer-basis.txt")
	err := computer.SaveUserFriendly(polymers, path, false)
	if err != nil {
		tst.Errorf("save failed:\n%v", err)
		return
	}
	b, _ := os.ReadFile(path)
	content := string(b)
	io.Pforan("%s\n", content)
	if !strings.Contains(content, "# Polymer basis - 2 polymers") {
		tst.Errorf("header missing\n")
		return
	}
	if !strings.Contains(content, "1 | X\n1 | Y") {
		tst.Errorf("dimer lines missing\n")
		return
	}
	if !strings.Contains(content, "2 | X") {
		tst.Errorf("multiplicity line missing\n")
	}
}

func Test_basis04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("basis04. polymat emission sorted by concentration")

	siteIndex := map[string]int{"a": 0, "b": 1}
	mons := []*model.Monomer{
		{Name: "X", Sites: []model.BindingSite{{Name: "a"}, {Name: "b"}}, Conc: 100, HasConc: true},
		{Name: "Y", Sites: []model.BindingSite{{Name: "a", Star: true}, {Name: "b", Star: true}}, Conc: 50, HasConc: true},
	}
	tbn, err := model.NewTBN(mons, siteIndex, "nM")
	if err != nil {
		tst.Errorf("NewTBN failed:\n%v", err)
		return
	}
	polymers := []*model.Polymer{
		model.NewPolymer([]int64{1, 0}, tbn),
		model.NewPolymer([]int64{1, 1}, tbn),
	}
	computer := &Computer{Tbn: tbn, Solver: &cannedSolver{}}

	dir := tst.TempDir()
	path := filepath.Join(dir, "sys.tbnpolymat")
	err = computer.SavePolymat(polymers, path, &SaveOptions{
		FreeEnergies:   true,
		Concentrations: true,
		EqSolver:       &cannedEq{concentrations: []float64{1e-9, 9e-8}},
	})
	if err != nil {
		tst.Errorf("save failed:\n%v", err)
		return
	}

	data, err := inp.ReadPolymat(path)
	if err != nil {
		tst.Errorf("read failed:\n%v", err)
		return
	}
	if data.NumPolymers != 2 {
		tst.Errorf("must have 2 polymers: %d\n", data.NumPolymers)
		return
	}
	// the dimer (higher concentration) comes first
	if data.Polymers[0][1] != 1 {
		tst.Errorf("rows must be sorted by descending concentration: %v\n", data.Polymers)
		return
	}
	chk.Array(tst, "concentrations [nM]", 1e-10, data.Concentrations, []float64{90, 1})
	if data.Units != "nanoMolar (nM)" {
		tst.Errorf("wrong units header: %q\n", data.Units)
	}
}

// cannedEq returns fixed equilibrium concentrations
type cannedEq struct {
	concentrations []float64
}

func (o *cannedEq) Compute(polymers []*model.Polymer, tbn *model.TBN, assoc *model.AssocEnergy, tempC float64) ([]float64, error) {
	return o.concentrations, nil
}

func (o *cannedEq) Available() bool { return true }
func (o *cannedEq) Name() string    { return "canned" }
