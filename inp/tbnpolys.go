// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/model"
)

// PolyEntry is one line of a .tbnpolys polymer: a multiplicity and the index
// of the resolved monomer in the TBN
type PolyEntry struct {
	Mult  int64
	Index int
}

// multPrefix matches the "n | " multiplicity prefix of a monomer line
var multPrefix = regexp.MustCompile(`^(\d+)\s*\|\s*(.+)$`)

// ParsePolysFile parses a .tbnpolys file: polymers separated by blank lines,
// one monomer per line with an optional "n | " multiplicity prefix. Monomers
// are resolved by name or by order-insensitive binding-site match against tbn
func ParsePolysFile(path string, tbn *model.TBN) (polymers [][]PolyEntry, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, chk.Err("cannot read .tbnpolys file:\n%v", err)
	}
	return ParsePolysContent(string(b), tbn)
}

// ParsePolysContent parses .tbnpolys content. See ParsePolysFile
func ParsePolysContent(content string, tbn *model.TBN) (polymers [][]PolyEntry, err error) {
	var current []PolyEntry
	for lnum, raw := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(raw)
		isCommentOnly := strings.HasPrefix(trimmed, "#")
		line := trimmed
		if !isCommentOnly {
			line = stripComment(raw)
		}
		switch {
		case isCommentOnly:
			// comment-only lines do not terminate a polymer
		case line == "":
			if len(current) > 0 {
				polymers = append(polymers, current)
				current = nil
			}
		default:
			mult := int64(1)
			spec := line
			if m := multPrefix.FindStringSubmatch(line); m != nil {
				mult, _ = strconv.ParseInt(m[1], 10, 64)
				spec = strings.TrimSpace(m[2])
			}
			idx, e := ResolveMonomer(spec, tbn)
			if e != nil {
				return nil, chk.Err("line %d: %v", lnum+1, e)
			}
			current = append(current, PolyEntry{Mult: mult, Index: idx})
		}
	}
	if len(current) > 0 {
		polymers = append(polymers, current)
	}
	return
}

// ResolveMonomer resolves a monomer specification to a monomer index in the
// TBN. The specification is a monomer name, a "name: sites" pair, or a
// space-separated binding-site list matched regardless of order
func ResolveMonomer(spec string, tbn *model.TBN) (idx int, err error) {

	// "name: sites" form: the name must exist and the sites must match
	if cidx := strings.Index(spec, ":"); cidx >= 0 {
		name := strings.TrimSpace(spec[:cidx])
		sitesStr := strings.TrimSpace(spec[cidx+1:])
		for i, m := range tbn.Monomers {
			if m.Name != name {
				continue
			}
			provided := strings.Fields(sitesStr)
			sort.Strings(provided)
			actual := monomerSiteStrings(m)
			sort.Strings(actual)
			if !equalStrings(provided, actual) {
				return 0, chk.Err("monomer %q exists but binding sites do not match. expected: %s, got: %s",
					name, strings.Join(actual, " "), strings.Join(provided, " "))
			}
			return i, nil
		}
		return 0, chk.Err("monomer with name %q not found in TBN", name)
	}

	// plain monomer name
	for i, m := range tbn.Monomers {
		if m.Name != "" && m.Name == spec {
			return i, nil
		}
	}

	// binding-site list, order insensitive
	provided := strings.Fields(spec)
	sort.Strings(provided)
	for i, m := range tbn.Monomers {
		actual := monomerSiteStrings(m)
		sort.Strings(actual)
		if equalStrings(provided, actual) {
			return i, nil
		}
	}
	return 0, chk.Err("cannot resolve monomer: %s", spec)
}

// PolymerCounts converts a parsed polymer into its monomer-count vector
func PolymerCounts(entries []PolyEntry, tbn *model.TBN) (counts []int64) {
	counts = make([]int64, tbn.NumMonomers())
	for _, e := range entries {
		counts[e.Index] += e.Mult
	}
	return
}

// PolysWriter writes polymers in the .tbnpolys format
type PolysWriter struct {
	Tbn *model.TBN
}

// FormatSinglePolymer formats one polymer as .tbnpolys lines
func (o *PolysWriter) FormatSinglePolymer(counts []int64) (lines []string) {
	for j, c := range counts {
		if c <= 0 {
			continue
		}
		spec := o.Tbn.Monomers[j].Spec()
		if c == 1 {
			lines = append(lines, spec)
		} else {
			lines = append(lines, io.Sf("%d | %s", c, spec))
		}
	}
	return
}

// FormatPolymers formats a list of polymers as .tbnpolys content, with
// optional per-polymer concentration comments and an optional header comment
func (o *PolysWriter) FormatPolymers(polymers [][]int64, concentrations []float64, units, headerComment string) string {
	var lines []string
	if headerComment != "" {
		for _, hl := range strings.Split(headerComment, "\n") {
			lines = append(lines, "# "+hl)
		}
		lines = append(lines, "")
	}
	for i, p := range polymers {
		lines = append(lines, o.FormatSinglePolymer(p)...)
		if concentrations != nil && i < len(concentrations) {
			lines = append(lines, io.Sf("# Concentration: %s", FormatConcentration(concentrations[i], units)))
		}
		lines = append(lines, "")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n") + "\n"
}

// Write writes polymers to a .tbnpolys file
func (o *PolysWriter) Write(path string, polymers [][]int64, concentrations []float64, units, headerComment string) error {
	return SaveFile(path, []byte(o.FormatPolymers(polymers, concentrations, units, headerComment)), false)
}

// FormatConcentration renders a concentration value with range-dependent
// precision; e.g. "99.90 nM" rather than "9.99e+01 nM"
func FormatConcentration(value float64, units string) (s string) {
	switch {
	case value == 0:
		s = "0"
	case value >= 1000:
		s = io.Sf("%.1e", value)
	case value >= 100:
		s = io.Sf("%.1f", value)
	case value >= 10:
		s = io.Sf("%.2f", value)
	case value >= 1:
		s = io.Sf("%.3f", value)
	case value >= 0.01:
		s = io.Sf("%.4f", value)
	default:
		s = io.Sf("%.2e", value)
	}
	if units != "" {
		s += " " + units
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func monomerSiteStrings(m *model.Monomer) (res []string) {
	for _, s := range m.Sites {
		res = append(res, s.String())
	}
	return
}

func equalStrings(a, b []string) bool {
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
