// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ibot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/inp"
	"github.com/tbnlab/tbnexplorer2/model"
	"github.com/tbnlab/tbnexplorer2/react"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// gateTBN builds the {G: a b, X: a*, Y: b*} system with polymer basis
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

func Test_ibot01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ibot01. initial state and metrics")

	tbn := gateTBN()
	reactions := []*react.Reaction{{Vector: []int64{1, -1, -1, 1}}}
	algo := New(tbn, gateBasis(), []int{1, 2}, reactions)

	chk.Array(tst, "mu0", 1e-17, algo.Mu, []float64{0, 1, 1, 0})
	if len(algo.Unassigned) != 2 {
		tst.Errorf("two off-target polymers must start unassigned: %d\n", len(algo.Unassigned))
		return
	}

	m := algo.ComputeMetrics(reactions[0])
	if m.Novelty != 2 {
		tst.Errorf("novelty must be 2: %d\n", m.Novelty)
		return
	}
	chk.Float64(tst, "imbalance", 1e-15, m.Imbalance, 2)
	chk.Float64(tst, "ratio", 1e-15, m.Ratio, 1)
}

func Test_ibot02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ibot02. run on the gate fixture")

	tbn := gateTBN()
	reactions := []*react.Reaction{{Vector: []int64{1, -1, -1, 1}}}
	algo := New(tbn, gateBasis(), []int{1, 2}, reactions)
	result := algo.Run(chk.Verbose)

	// on-target exponents stay 1; both off-target polymers are reached
	algo.checkState()
	if len(result) != 4 {
		tst.Errorf("all four polymers must be assigned: %v\n", result)
		return
	}
	chk.Float64(tst, "mu[0]", 1e-15, result[0], 1)
	chk.Float64(tst, "mu[1]", 1e-17, result[1], 1)
	chk.Float64(tst, "mu[3]", 1e-15, result[3], 1)
	if len(algo.Iterations) != 1 {
		tst.Errorf("must converge in one iteration: %d\n", len(algo.Iterations))
	}
}

func Test_ibot03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ibot03. monotone mu_min, ties and unreachable polymers")

	// one on-target polymer and three off-target ones over a single monomer
	siteIndex := map[string]int{"a": 0}
	mons := []*model.Monomer{{Name: "M", Sites: []model.BindingSite{{Name: "a"}}}}
	tbn, _ := model.NewTBN(mons, siteIndex, "")
	polymers := [][]int64{{1}, {2}, {3}, {2}}

	reactions := []*react.Reaction{
		{Vector: []int64{-2, 1, 0, 0}}, // 2 P0 -> P1, ratio 2
		{Vector: []int64{-3, 0, 1, 0}}, // 3 P0 -> P2, ratio 3
		{Vector: []int64{-2, 0, 0, 1}}, // 2 P0 -> P3, ratio 2 (ties with the first)
	}
	algo := New(tbn, polymers, []int{0}, reactions)
	result := algo.Run(false)

	// iteration 1 assigns P1 and P3 together (tie), iteration 2 assigns P2
	if len(algo.Iterations) != 2 {
		tst.Errorf("must take two iterations: %d\n", len(algo.Iterations))
		return
	}
	chk.Float64(tst, "mu_min 1", 1e-15, algo.Iterations[0].MuMin, 2)
	chk.Float64(tst, "mu_min 2", 1e-15, algo.Iterations[1].MuMin, 3)
	if algo.Iterations[0].MuMin > algo.Iterations[1].MuMin {
		tst.Errorf("mu_min sequence must be non-decreasing\n")
		return
	}
	if len(algo.Iterations[0].Assigned) != 2 || algo.Iterations[0].Assigned[0] != 1 || algo.Iterations[0].Assigned[1] != 3 {
		tst.Errorf("tie set must assign [1 3] in encounter order: %v\n", algo.Iterations[0].Assigned)
		return
	}
	chk.Float64(tst, "mu[1]", 1e-15, result[1], 2)
	chk.Float64(tst, "mu[3]", 1e-15, result[3], 2)
	chk.Float64(tst, "mu[2]", 1e-15, result[2], 3)

	// an unreachable polymer stays out of the result
	polymers2 := [][]int64{{1}, {2}, {4}}
	reactions2 := []*react.Reaction{{Vector: []int64{-2, 1, 0}}}
	algo2 := New(tbn, polymers2, []int{0}, reactions2)
	result2 := algo2.Run(false)
	if _, ok := result2[2]; ok {
		tst.Errorf("unreachable polymer must be omitted: %v\n", result2)
		return
	}
	if len(result2) != 2 {
		tst.Errorf("result must hold the on-target and the reached polymer: %v\n", result2)
	}
}

func Test_ibot04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ibot04. .tbnpolys and reactions outputs")

	tbn := gateTBN()
	reactions := []*react.Reaction{{Vector: []int64{1, -1, -1, 1}}}
	algo := New(tbn, gateBasis(), []int{1, 2}, reactions)
	algo.Run(false)

	dir := tst.TempDir()
	polysPath := filepath.Join(dir, "sys-ibot.tbnpolys")
	err := algo.WritePolysOutput(polysPath, false)
	if err != nil {
		tst.Errorf("polys output failed:\n%v", err)
		return
	}
	b, _ := os.ReadFile(polysPath)
	content := string(b)
	io.Pforan("%s\n", content)
	if !strings.Contains(content, "# === ON-TARGET POLYMERS ===") {
		tst.Errorf("on-target section missing\n")
		return
	}
	if !strings.Contains(content, "# === OFF-TARGET POLYMERS ===") {
		tst.Errorf("off-target section missing\n")
		return
	}
	if !strings.Contains(content, "# µ: 1.000000") {
		tst.Errorf("exponent comments missing\n")
		return
	}

	reactionsPath := filepath.Join(dir, "sys-ibot-reactions.txt")
	err = algo.WriteReactionsOutput(reactionsPath, false)
	if err != nil {
		tst.Errorf("reactions output failed:\n%v", err)
		return
	}
	b, _ = os.ReadFile(reactionsPath)
	content = string(b)
	io.Pforan("%s\n", content)
	if !strings.Contains(content, "## Iteration 1") {
		tst.Errorf("iteration header missing\n")
		return
	}
	if !strings.Contains(content, "µ_min = 1.000000") {
		tst.Errorf("mu_min line missing\n")
		return
	}
	// both newly assigned polymers carry the ^ marker
	if !strings.Contains(content, "{G}^") || !strings.Contains(content, "{G; X; Y}^") {
		tst.Errorf("newly assigned polymers must be marked with ^:\n%s", content)
	}
}

func Test_ibot05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ibot05. synthesized .tbn concentrations")

	// two on-target polymers: {M1} and {M2}; M3 never assigned
	monomers, siteIndex, _, _, err := inp.ParseTBN("M1: a\nM2: a*\nM3: b b*\n", nil)
	if err != nil {
		tst.Errorf("parse failed:\n%v", err)
		return
	}
	tbn, _ := model.NewTBN(monomers, siteIndex, "")
	polymers := [][]int64{{1, 0, 0}, {0, 1, 0}}
	algo := New(tbn, polymers, []int{0, 1}, nil)
	algo.Run(false)

	dir := tst.TempDir()
	path := filepath.Join(dir, "sys-ibot-c100.tbn")
	err = algo.WriteTBNOutput(path, 100, "nM", false)
	if err != nil {
		tst.Errorf("tbn output failed:\n%v", err)
		return
	}

	// parse the generated file back: M1 and M2 get 100 nM, M3 gets 0
	outMonomers, _, outUnits, _, err := inp.ParseTBNFile(path, nil)
	if err != nil {
		tst.Errorf("cannot parse generated file:\n%v", err)
		return
	}
	if outUnits != "nM" {
		tst.Errorf("wrong units: %q\n", outUnits)
		return
	}
	byName := make(map[string]float64)
	for _, m := range outMonomers {
		byName[m.Name] = m.Conc
	}
	chk.Float64(tst, "M1", 1e-9, byName["M1"], 100)
	chk.Float64(tst, "M2", 1e-9, byName["M2"], 100)
	chk.Float64(tst, "M3", 1e-17, byName["M3"], 0)

	// invalid unit is rejected
	if err = algo.WriteTBNOutput(filepath.Join(dir, "bad.tbn"), 100, "kM", false); err == nil {
		tst.Errorf("invalid unit must be rejected\n")
	}
}
