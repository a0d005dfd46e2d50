// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ibot

import (
	"bytes"
	"math"
	"sort"
	"strings"

	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/inp"
	"github.com/tbnlab/tbnexplorer2/model"
	"github.com/tbnlab/tbnexplorer2/react"
)

// reference density of water at 37 Celsius, in Molar
const WaterDensityM = 55.14

// WritePolysOutput writes the .tbnpolys file with concentration exponents:
// on-target polymers first, then off-target polymers sorted by ascending mu.
// Unassigned off-target polymers are omitted
func (o *Algorithm) WritePolysOutput(path string, verbose bool) (err error) {
	writer := inp.PolysWriter{Tbn: o.Tbn}

	var onIdx, offIdx []int
	for i := range o.Polymers {
		if o.onTargetSet[i] {
			onIdx = append(onIdx, i)
		} else if o.Mu[i] > 0 {
			offIdx = append(offIdx, i)
		}
	}
	sort.SliceStable(offIdx, func(a, b int) bool { return o.Mu[offIdx[a]] < o.Mu[offIdx[b]] })

	var lines []string
	lines = append(lines,
		"# IBOT results - concentration exponents",
		io.Sf("# Total polymers: %d", len(o.Polymers)),
		io.Sf("# On-target polymers: %d", len(onIdx)),
		io.Sf("# Off-target polymers: %d", len(offIdx)),
		"",
		"# === ON-TARGET POLYMERS ===",
		"")
	for _, i := range onIdx {
		lines = append(lines, writer.FormatSinglePolymer(o.Polymers[i])...)
		lines = append(lines, io.Sf("# µ: %.6f", o.Mu[i]), "")
	}
	if len(offIdx) > 0 {
		lines = append(lines,
			"# === OFF-TARGET POLYMERS ===",
			"# (sorted by concentration exponent)",
			"")
		for _, i := range offIdx {
			lines = append(lines, writer.FormatSinglePolymer(o.Polymers[i])...)
			lines = append(lines, io.Sf("# µ: %.6f", o.Mu[i]), "")
		}
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	err = inp.SaveFile(path, []byte(strings.Join(lines, "\n")+"\n"), verbose)
	if err != nil {
		return
	}
	if verbose {
		io.Pf("saved IBOT results to %s\n", path)
	}
	return
}

// WriteReactionsOutput writes the canonical-reactions trace: for each
// iteration, the selected mu_min and the tie-set reactions with polymers
// bracketed and newly assigned polymers marked with ^
func (o *Algorithm) WriteReactionsOutput(path string, verbose bool) (err error) {
	var buf bytes.Buffer
	io.Ff(&buf, "# Irreducible canonical reactions ordered by IBOT iteration\n")
	io.Ff(&buf, "# Total reactions: %d\n", len(o.Reactions))
	io.Ff(&buf, "# Total iterations: %d\n", len(o.Iterations))
	io.Ff(&buf, "#\n")
	io.Ff(&buf, "# Notation:\n")
	io.Ff(&buf, "#   - polymers are shown in brackets: {monomer1; monomer2; ...}\n")
	io.Ff(&buf, "#   - monomer multiplicities shown as prefix: {2 monomer1; monomer2}\n")
	io.Ff(&buf, "#   - polymers marked with ^ were assigned µ in that iteration\n")
	io.Ff(&buf, "%s\n\n", strings.Repeat("=", 80))

	for _, info := range o.Iterations {
		io.Ff(&buf, "## Iteration %d\n", info.Iteration)
		io.Ff(&buf, "## µ_min = %.6f\n", info.MuMin)
		io.Ff(&buf, "## Number of reactions in R: %d\n", len(info.Reactions))
		io.Ff(&buf, "## Polymers assigned µ in this iteration: %d\n\n", len(info.Assigned))
		assigned := make(map[int]bool)
		for _, i := range info.Assigned {
			assigned[i] = true
		}
		for _, r := range info.Reactions {
			io.Ff(&buf, "%s\n", o.formatReaction(r, assigned))
		}
		io.Ff(&buf, "\n%s\n\n", strings.Repeat("-", 40))
	}
	content := buf.String()
	if suffix := "\n" + strings.Repeat("-", 40) + "\n\n"; strings.HasSuffix(content, suffix) {
		content = strings.TrimSuffix(content, suffix) + "\n"
	}
	err = inp.SaveFile(path, []byte(content), verbose)
	if err != nil {
		return
	}
	if verbose {
		io.Pf("saved canonical reactions output to %s\n", path)
	}
	return
}

// WriteTBNOutput writes a .tbn file with synthesized monomer concentrations
// for base concentration c in the given unit: each assigned polymer
// contributes counts times (c'/rho)^mu * rho, with rho the reference water
// density
func (o *Algorithm) WriteTBNOutput(path string, c float64, units string, verbose bool) (err error) {
	if err = model.CheckUnit(units); err != nil {
		return
	}
	cMolar := model.ToMolar(c, units)

	monomerConc := make([]float64, o.Tbn.NumMonomers())
	for pIdx, polymer := range o.Polymers {
		if !o.Assigned(pIdx) {
			continue
		}
		factor := math.Pow(cMolar/WaterDensityM, o.Mu[pIdx]) * WaterDensityM
		for m, count := range polymer {
			if count > 0 {
				monomerConc[m] += float64(count) * factor
			}
		}
	}

	var buf bytes.Buffer
	io.Ff(&buf, "\\UNITS: %s\n\n", units)
	for m, mon := range o.Tbn.Monomers {
		conc := model.FromMolar(monomerConc[m], units)
		line := mon.SitesString()
		if mon.Name != "" {
			if strings.Contains(mon.Line, ":") {
				line = io.Sf("%s: %s", mon.Name, mon.SitesString())
			} else {
				line = io.Sf("%s >%s", mon.SitesString(), mon.Name)
			}
		}
		io.Ff(&buf, "%s, %.6g\n", line, conc)
	}
	err = inp.SaveFile(path, buf.Bytes(), verbose)
	if err != nil {
		return
	}
	if verbose {
		io.Pf("generated .tbn file with concentrations at %s (c = %g %s)\n", path, c, units)
	}
	return
}

// formatReaction renders one reaction with bracketed polymer contents and ^
// markers on newly assigned polymers
func (o *Algorithm) formatReaction(r *react.Reaction, assigned map[int]bool) string {
	reactants, products := r.ReactantsProducts()
	format := func(terms []react.Term) string {
		if len(terms) == 0 {
			return "0"
		}
		parts := make([]string, len(terms))
		for i, t := range terms {
			s := o.polymerBrackets(t.Index)
			if assigned[t.Index] {
				s += "^"
			}
			if t.Mult > 1 {
				s = io.Sf("%d %s", t.Mult, s)
			}
			parts[i] = s
		}
		return strings.Join(parts, " + ")
	}
	return io.Sf("%s -> %s", format(reactants), format(products))
}

// polymerBrackets renders polymer idx as {monomer1; 2 monomer2; ...}
func (o *Algorithm) polymerBrackets(idx int) string {
	var specs []string
	for m, count := range o.Polymers[idx] {
		if count <= 0 {
			continue
		}
		spec := o.Tbn.Monomers[m].Spec()
		if count > 1 {
			spec = io.Sf("%d %s", count, spec)
		}
		specs = append(specs, spec)
	}
	return "{" + strings.Join(specs, "; ") + "}"
}

