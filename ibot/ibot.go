// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ibot implements the iterative balancing of off-target polymers:
// assigning concentration exponents by repeatedly selecting reactions of
// minimum imbalance-to-novelty ratio
package ibot

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/model"
	"github.com/tbnlab/tbnexplorer2/react"
)

// ratio ties within this tolerance are selected together
const tieTolerance = 1e-10

// Metrics holds the per-reaction quantities driving an iteration
type Metrics struct {
	Novelty   int     // number of unassigned off-target polymers touched
	Imbalance float64 // total reactant exponent minus total product exponent
	Ratio     float64 // Imbalance / Novelty; +Inf when Novelty is zero
}

// IterationInfo records one iteration: the selected ratio, the tie set of
// reactions and the polymers newly assigned
type IterationInfo struct {
	Iteration int
	MuMin     float64
	Reactions []*react.Reaction
	Assigned  []int // newly assigned polymer indices, in encounter order
}

// Algorithm holds the IBOT state
type Algorithm struct {
	Tbn       *model.TBN
	Polymers  [][]int64 // polymer basis vectors
	OnTarget  []int     // sorted on-target indices
	Reactions []*react.Reaction

	Mu         []float64 // concentration exponents; on-target entries stay 1
	Unassigned map[int]bool
	Iterations []IterationInfo

	onTargetSet map[int]bool
}

// New returns a new IBOT state: mu = 1 for on-target polymers, 0 otherwise,
// and every off-target polymer unassigned
func New(tbn *model.TBN, polymers [][]int64, onTarget []int, reactions []*react.Reaction) (o *Algorithm) {
	o = &Algorithm{
		Tbn:         tbn,
		Polymers:    polymers,
		OnTarget:    onTarget,
		Reactions:   reactions,
		Mu:          make([]float64, len(polymers)),
		Unassigned:  make(map[int]bool),
		onTargetSet: make(map[int]bool),
	}
	for _, idx := range onTarget {
		o.Mu[idx] = 1.0
		o.onTargetSet[idx] = true
	}
	for i := range polymers {
		if !o.onTargetSet[i] {
			o.Unassigned[i] = true
		}
	}
	return
}

// ComputeMetrics evaluates novelty, imbalance and their ratio for one
// reaction under the current state
func (o *Algorithm) ComputeMetrics(r *react.Reaction) (m Metrics) {
	for i, c := range r.Vector {
		if c == 0 {
			continue
		}
		if o.Unassigned[i] {
			m.Novelty++
		}
		if c < 0 {
			m.Imbalance += float64(-c) * o.Mu[i]
		} else {
			m.Imbalance -= float64(c) * o.Mu[i]
		}
	}
	if m.Novelty > 0 {
		m.Ratio = m.Imbalance / float64(m.Novelty)
	} else {
		m.Ratio = math.Inf(1)
	}
	return
}

// Run executes the IBOT loop until every reachable off-target polymer is
// assigned. The returned map holds the exponents of all on-target indices
// and all reached off-target indices; unreached indices are omitted
func (o *Algorithm) Run(verbose bool) map[int]float64 {
	iteration := 0
	for len(o.Unassigned) > 0 {
		iteration++

		// reactions still touching unassigned polymers
		var active []*react.Reaction
		var metrics []Metrics
		for _, r := range o.Reactions {
			m := o.ComputeMetrics(r)
			if m.Novelty > 0 {
				active = append(active, r)
				metrics = append(metrics, m)
			}
		}
		if len(active) == 0 {
			break // remaining off-target polymers are unreachable
		}

		muMin := metrics[0].Ratio
		for _, m := range metrics[1:] {
			if m.Ratio < muMin {
				muMin = m.Ratio
			}
		}

		// tie set and the polymers they touch, in encounter order
		var selected []*react.Reaction
		var assigned []int
		queued := make(map[int]bool)
		for k, r := range active {
			if math.Abs(metrics[k].Ratio-muMin) >= tieTolerance {
				continue
			}
			selected = append(selected, r)
			for i, c := range r.Vector {
				if c != 0 && o.Unassigned[i] && !queued[i] {
					queued[i] = true
					assigned = append(assigned, i)
				}
			}
		}

		o.Iterations = append(o.Iterations, IterationInfo{
			Iteration: iteration,
			MuMin:     muMin,
			Reactions: selected,
			Assigned:  assigned,
		})
		for _, i := range assigned {
			o.Mu[i] = muMin
			delete(o.Unassigned, i)
		}
		if verbose {
			io.Pf("IBOT iteration %d: assigned mu=%.6f to %d polymers\n", iteration, muMin, len(assigned))
		}
	}

	// keep on-target polymers and reached off-target polymers only
	result := make(map[int]float64)
	for i := range o.Polymers {
		if o.onTargetSet[i] || o.Mu[i] > 0 {
			result[i] = o.Mu[i]
		}
	}
	return result
}

// Assigned reports whether polymer i carries an exponent (on-target or
// reached off-target)
func (o *Algorithm) Assigned(i int) bool {
	return o.onTargetSet[i] || o.Mu[i] > 0
}

// checkState panics if an on-target exponent was mutated; used by tests
func (o *Algorithm) checkState() {
	for _, idx := range o.OnTarget {
		if o.Mu[idx] != 1.0 {
			chk.Panic("on-target exponent mutated at index %d", idx)
		}
	}
}
