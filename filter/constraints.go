// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"os"
	"strings"

	"github.com/cpmech/gosl/chk"
)

// Constraint is one line of a constraints file. CONTAINS requires at least
// the listed monomer multiplicities; EXACTLY requires the polymer's nonzero
// support and counts to equal the listed monomers
type Constraint struct {
	Exactly bool
	Names   []string
}

// ParseConstraintsFile parses a constraints file: each nonempty non-comment
// line is "CONTAINS name..." or "EXACTLY name...". Lines are OR-ed
func ParseConstraintsFile(path string) (constraints []Constraint, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, chk.Err("cannot read constraints file:\n%v", err)
	}
	for lnum, raw := range strings.Split(string(b), "\n") {
		line := raw
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "CONTAINS":
			constraints = append(constraints, Constraint{Names: fields[1:]})
		case "EXACTLY":
			constraints = append(constraints, Constraint{Exactly: true, Names: fields[1:]})
		default:
			return nil, chk.Err("line %d: constraint must start with CONTAINS or EXACTLY: %q", lnum+1, fields[0])
		}
		if len(fields) == 1 {
			return nil, chk.Err("line %d: constraint %q lists no monomers", lnum+1, fields[0])
		}
	}
	if len(constraints) == 0 {
		return nil, chk.Err("constraints file has no constraints")
	}
	return
}

// ByConstraintsFile retains polymers satisfying at least one constraint of
// the file, then applies the percent limit and count truncation as
// ByMonomers does
func (o *Filter) ByConstraintsFile(path string, percentLimit float64, hasPercent bool, maxCount int) (matches []Match, err error) {
	constraints, err := ParseConstraintsFile(path)
	if err != nil {
		return
	}
	nameToIndices := o.monomerIdentifiers()
	total := o.totalConcentration()
	for i, counts := range o.Data.Polymers {
		ok := false
		for _, c := range constraints {
			if o.satisfies(counts, c, nameToIndices) {
				ok = true
				break
			}
		}
		if !ok {
			continue
		}
		m := o.match(i, counts)
		if hasPercent && m.HasConc && total > 0 {
			if m.Conc/total*100 < percentLimit {
				continue
			}
		}
		matches = append(matches, m)
	}
	o.sortAndTruncate(&matches, maxCount)
	return
}

// satisfies checks one polymer against one constraint
func (o *Filter) satisfies(counts []int64, c Constraint, nameToIndices map[string][]int) bool {
	required := make(map[string]int64)
	for _, name := range c.Names {
		required[name]++
	}
	for name, req := range required {
		indices := nameToIndices[name]
		if len(indices) == 0 {
			return false
		}
		var actual int64
		for _, idx := range indices {
			actual += counts[idx]
		}
		if c.Exactly {
			if actual != req {
				return false
			}
		} else if actual < req {
			return false
		}
	}
	if c.Exactly {
		// no monomer outside the listed set may appear
		listed := make(map[int]bool)
		for name := range required {
			for _, idx := range nameToIndices[name] {
				listed[idx] = true
			}
		}
		for idx, count := range counts {
			if count > 0 && !listed[idx] {
				return false
			}
		}
	}
	return true
}
