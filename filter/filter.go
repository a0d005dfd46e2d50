// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package filter queries .tbnpolymat files: selecting polymers by monomer
// content, concentration share and count limits
package filter

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/inp"
	"github.com/tbnlab/tbnexplorer2/model"
)

// Match is one selected polymer with its optional quantities
type Match struct {
	Index   int
	Counts  []int64
	Energy  float64
	HasFE   bool
	Conc    float64
	HasConc bool
}

// Filter selects polymers from the .tbnpolymat file adjacent to a .tbn file
type Filter struct {
	Tbn         *model.TBN
	Data        *inp.PolymatData
	PolymatFile string
}

// New parses the .tbn file (which must declare \UNITS) and loads the
// adjacent .tbnpolymat file
func New(tbnFile string) (o *Filter, err error) {
	monomers, siteIndex, units, _, err := inp.ParseTBNFile(tbnFile, nil)
	if err != nil {
		return
	}
	if units == "" {
		return nil, chk.Err("filtering requires a .tbn file with the \\UNITS keyword and concentrations. file %q does not declare \\UNITS", tbnFile)
	}
	tbn, err := model.NewTBN(monomers, siteIndex, units)
	if err != nil {
		return
	}
	ext := filepath.Ext(tbnFile)
	polymatFile := strings.TrimSuffix(tbnFile, ext) + ".tbnpolymat"
	data, err := inp.ReadPolymat(polymatFile)
	if err != nil {
		return nil, chk.Err("cannot find polymer matrix file:\n%v", err)
	}
	return &Filter{Tbn: tbn, Data: data, PolymatFile: polymatFile}, nil
}

// ByMonomers retains polymers carrying at least the requested multiplicity
// of every named monomer (duplicates in names raise the requirement). An
// empty name list matches every polymer. With a percent limit, polymers
// below that share of the total concentration are dropped. Results are
// sorted by descending concentration (stable) and truncated to maxCount
// when positive
func (o *Filter) ByMonomers(names []string, percentLimit float64, hasPercent bool, maxCount int) (matches []Match) {
	required := make(map[string]int64)
	for _, name := range names {
		required[name]++
	}
	nameToIndices := o.monomerIdentifiers()
	for name := range required {
		if len(nameToIndices[name]) == 0 {
			return nil // unknown monomer name matches nothing
		}
	}

	total := o.totalConcentration()
	for i, counts := range o.Data.Polymers {
		ok := true
		for name, req := range required {
			var actual int64
			for _, idx := range nameToIndices[name] {
				actual += counts[idx]
			}
			if actual < req {
				ok = false
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

// monomerIdentifiers maps each monomer identifier (name, or binding-sites
// string for unnamed monomers) to the monomer indices carrying it
func (o *Filter) monomerIdentifiers() map[string][]int {
	res := make(map[string][]int)
	for i, m := range o.Tbn.Monomers {
		id := m.Spec()
		res[id] = append(res[id], i)
	}
	return res
}

func (o *Filter) totalConcentration() (total float64) {
	for _, c := range o.Data.Concentrations {
		total += c
	}
	return
}

func (o *Filter) match(i int, counts []int64) (m Match) {
	m = Match{Index: i, Counts: counts}
	if o.Data.HasFreeEnergies && i < len(o.Data.FreeEnergies) {
		m.Energy = o.Data.FreeEnergies[i]
		m.HasFE = true
	}
	if o.Data.HasConcentrations && i < len(o.Data.Concentrations) {
		m.Conc = o.Data.Concentrations[i]
		m.HasConc = true
	}
	return
}

func (o *Filter) sortAndTruncate(matches *[]Match, maxCount int) {
	if o.Data.HasConcentrations {
		sort.SliceStable(*matches, func(a, b int) bool {
			return (*matches)[a].Conc > (*matches)[b].Conc
		})
	}
	if maxCount > 0 && len(*matches) > maxCount {
		*matches = (*matches)[:maxCount]
	}
}

// FormatOutput renders the selected polymers in the human-readable list
// format with the filtering summary header
func (o *Filter) FormatOutput(matches []Match, names []string, percentLimit float64, hasPercent bool, maxCount int) string {
	var lines []string
	if len(names) > 0 {
		lines = append(lines, io.Sf("# Filtered polymers containing: %s", strings.Join(names, " ")))
	} else {
		lines = append(lines, "# All polymers")
	}
	if hasPercent {
		lines = append(lines, io.Sf("# Percent limit: %g%%", percentLimit))
	}
	if maxCount > 0 {
		lines = append(lines, io.Sf("# Maximum count limit: %d", maxCount))
	}
	lines = append(lines, io.Sf("# Number of matching polymers: %d", len(matches)))

	if o.Data.HasConcentrations {
		total := o.totalConcentration()
		var matching float64
		for _, m := range matches {
			if m.HasConc {
				matching += m.Conc
			}
		}
		percentage := 0.0
		if total > 0 {
			percentage = matching / total * 100
		}
		lines = append(lines, io.Sf("# Total concentration fraction: %.2f%%", percentage))
		lines = append(lines, io.Sf("# Concentration units: %s", o.Tbn.Units))
	}
	lines = append(lines, "#")

	for k, m := range matches {
		lines = append(lines, io.Sf("# Polymer %d", k+1))
		for j, count := range m.Counts {
			if count > 0 {
				lines = append(lines, io.Sf("%d | %s", count, o.Tbn.Monomers[j].Spec()))
			}
		}
		if m.HasConc {
			lines = append(lines, io.Sf("Concentration: %s", inp.FormatConcentration(m.Conc, o.Tbn.Units)))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
