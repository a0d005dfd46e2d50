// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package basis implements the polymer-basis pipeline: augmentation, solver
// invocation, deduplication, the hash-gated cache, and .tbnpolymat emission
package basis

import (
	"bytes"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/eq"
	"github.com/tbnlab/tbnexplorer2/hb"
	"github.com/tbnlab/tbnexplorer2/inp"
	"github.com/tbnlab/tbnexplorer2/model"
)

// Computer computes the polymer basis (Hilbert basis) of a TBN
type Computer struct {
	Tbn    *model.TBN // the model
	Solver hb.Solver  // Hilbert-basis solver oracle
}

// ComputePolymerBasis computes the polymer basis: the unsplittable polymers
// that cannot be decomposed into two without losing bonds. The solver order
// is kept, with exact duplicates dropped in first-seen order
func (o *Computer) ComputePolymerBasis() (polymers []*model.Polymer, err error) {
	Aprime, n := o.Tbn.AugmentedForBasis()
	vectors, err := o.Solver.HilbertBasis(Aprime)
	if err != nil {
		return
	}
	if len(vectors) == 0 {
		return nil, chk.Err("no basis found: Hilbert-basis solver returned no vectors")
	}
	seen := make(map[string]bool)
	for _, h := range vectors {
		if len(h) < n {
			return nil, chk.Err("solver returned a vector of length %d but %d monomers are required", len(h), n)
		}
		p := make([]int64, n)
		copy(p, h[:n])
		key := countsKey(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		polymers = append(polymers, model.NewPolymer(p, o.Tbn))
	}
	return
}

// LoadCached loads the polymer basis from a .tbnpolymat file if its matrix
// hash equals the current one. It returns nil on any miss: missing file,
// hash mismatch, or unparseable polymer rows
func (o *Computer) LoadCached(polymatFile string) (polymers []*model.Polymer) {
	if !inp.CheckMatrixHash(polymatFile, o.Tbn.MatrixHash()) {
		return nil
	}
	b, err := os.ReadFile(polymatFile)
	if err != nil {
		return nil
	}
	n := o.Tbn.NumMonomers()
	for _, raw := range strings.Split(string(b), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "\\") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < n {
			return nil // short row: corrupt cache
		}
		counts := make([]int64, n)
		ok := true
		for j := 0; j < n; j++ {
			counts[j], err = strconv.ParseInt(parts[j], 10, 64)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			return nil // corrupt cache falls through to recomputation
		}
		polymers = append(polymers, model.NewPolymer(counts, o.Tbn))
	}
	return
}

// SaveUserFriendly saves the polymer basis in the human-readable text
// format: one "# Polymer i" section per polymer with "k | monomer" lines
func (o *Computer) SaveUserFriendly(polymers []*model.Polymer, outputFile string, verbose bool) (err error) {
	var buf bytes.Buffer
	io.Ff(&buf, "# Polymer basis - %d polymers\n", len(polymers))
	io.Ff(&buf, "#\n")
	for i, p := range polymers {
		if i > 0 {
			io.Ff(&buf, "\n")
		}
		io.Ff(&buf, "# Polymer %d\n", i+1)
		for j, c := range p.Counts {
			if c > 0 {
				io.Ff(&buf, "%d | %s\n", c, o.Tbn.Monomers[j].Spec())
			}
		}
	}
	err = inp.SaveFile(outputFile, buf.Bytes(), verbose)
	if err != nil {
		return
	}
	if verbose {
		io.Pf("saved polymer basis with %d polymers to %s\n", len(polymers), outputFile)
	}
	return
}

// SaveOptions controls what SavePolymat computes and writes
type SaveOptions struct {
	FreeEnergies   bool               // compute and write free energies
	Concentrations bool               // compute and write equilibrium concentrations
	EqSolver       eq.Solver          // equilibrium solver; required when Concentrations
	Assoc          *model.AssocEnergy // association parameters; nil suppresses the bond term
	TempC          float64            // temperature in Celsius
	Verbose        bool
}

// SavePolymat computes the requested per-polymer quantities and writes the
// .tbnpolymat file. When concentrations are computed, polymers are sorted by
// descending concentration with ties kept in input order
func (o *Computer) SavePolymat(polymers []*model.Polymer, outputFile string, opts *SaveOptions) (err error) {

	includeFE := opts.FreeEnergies
	includeConc := opts.Concentrations && includeFE && o.Tbn.Concentrations() != nil

	var concentrations []float64
	sorted := polymers
	if includeConc {
		concentrations, err = opts.EqSolver.Compute(polymers, o.Tbn, opts.Assoc, opts.TempC)
		if err != nil {
			return chk.Err("cannot compute equilibrium concentrations:\n%v", err)
		}
		if opts.Verbose {
			io.Pf("equilibrium concentrations computed\n")
		}
		idx := make([]int, len(polymers))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return concentrations[idx[a]] > concentrations[idx[b]]
		})
		sorted = make([]*model.Polymer, len(polymers))
		sortedConc := make([]float64, len(polymers))
		for i, j := range idx {
			sorted[i] = polymers[j]
			sortedConc[i] = concentrations[j]
		}
		concentrations = sortedConc
	}

	data := &inp.PolymatData{
		PolymatHeader: inp.PolymatHeader{
			NumMonomers:       o.Tbn.NumMonomers(),
			MatrixHash:        o.Tbn.MatrixHash(),
			HasFreeEnergies:   includeFE,
			HasConcentrations: includeConc,
		},
		Concentrations: concentrations,
	}
	if includeConc {
		data.Units = model.UnitDisplayName(o.Tbn.Units)
	}
	for _, p := range sorted {
		data.Polymers = append(data.Polymers, p.Counts)
		if includeFE {
			data.FreeEnergies = append(data.FreeEnergies, p.FreeEnergy(opts.Assoc))
		}
	}
	units := ""
	if includeConc {
		units = o.Tbn.Units
	}
	return inp.WritePolymat(outputFile, data, units, opts.Verbose)
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func countsKey(counts []int64) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = strconv.FormatInt(c, 10)
	}
	return strings.Join(parts, " ")
}
