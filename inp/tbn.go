// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the textual input/output contracts: the .tbn,
// .tbnpolys and .tbnpolymat file formats
package inp

import (
	"os"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/model"
)

// ParseTBNFile parses a .tbn file into monomers, the ordered binding-site
// index and the concentration unit tag ("" if none). Template markers
// {{expr}} are substituted using the supplied variables; the variables
// actually used are returned
func ParseTBNFile(path string, variables map[string]float64) (monomers []*model.Monomer, siteIndex map[string]int, units string, used map[string]float64, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, "", nil, chk.Err("cannot read TBN file:\n%v", err)
	}
	return ParseTBN(string(b), variables)
}

// ParseTBN parses .tbn content. See ParseTBNFile
func ParseTBN(content string, variables map[string]float64) (monomers []*model.Monomer, siteIndex map[string]int, units string, used map[string]float64, err error) {

	lines := strings.Split(content, "\n")
	used = make(map[string]float64)

	// first pass: scan for the \UNITS keyword
	for lnum, raw := range lines {
		line := stripComment(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "\\UNITS:") {
			if units != "" {
				return nil, nil, "", nil, chk.Err("line %d: multiple \\UNITS specifications found", lnum+1)
			}
			units = strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
			if units == "" {
				return nil, nil, "", nil, chk.Err("line %d: invalid \\UNITS format. expected '\\UNITS: <unit>'", lnum+1)
			}
			if e := model.CheckUnit(units); e != nil {
				return nil, nil, "", nil, chk.Err("line %d: %v", lnum+1, e)
			}
			continue
		}
		break
	}

	// second pass: parse monomer lines
	siteIndex = make(map[string]int)
	monomerNames := make(map[string]bool)
	for lnum, raw := range lines {
		line := stripComment(raw)
		if line == "" || strings.HasPrefix(line, "\\UNITS:") {
			continue
		}
		line, err = substituteMarkers(line, variables, used)
		if err != nil {
			return nil, nil, "", nil, chk.Err("line %d: %v", lnum+1, err)
		}
		mon, e := parseMonomerLine(line, lnum+1, units)
		if e != nil {
			return nil, nil, "", nil, e
		}
		if mon == nil {
			continue
		}

		// \UNITS and concentration specifications must match
		if units != "" && !mon.HasConc {
			return nil, nil, "", nil, chk.Err("line %d: \\UNITS specified but monomer lacks concentration. when \\UNITS is present, all monomers must have concentrations", lnum+1)
		}
		if units == "" && mon.HasConc {
			return nil, nil, "", nil, chk.Err("line %d: monomer has concentration but no \\UNITS specified. when concentrations are used, \\UNITS must be specified", lnum+1)
		}

		// monomer name rules
		if mon.Name != "" {
			if strings.HasPrefix(mon.Name, "\\") {
				return nil, nil, "", nil, chk.Err("line %d: monomer name %q cannot start with backslash. backslash is reserved for keywords", lnum+1, mon.Name)
			}
			if mon.Name == "UNITS" || mon.Name == "MATRIX-HASH" {
				return nil, nil, "", nil, chk.Err("line %d: monomer name %q is a reserved keyword", lnum+1, mon.Name)
			}
			if _, ok := siteIndex[mon.Name]; ok {
				return nil, nil, "", nil, chk.Err("line %d: monomer name %q conflicts with binding-site name", lnum+1, mon.Name)
			}
			monomerNames[mon.Name] = true
		}

		// update binding-site index
		for _, site := range mon.Sites {
			if monomerNames[site.Name] {
				return nil, nil, "", nil, chk.Err("line %d: binding site %q conflicts with monomer name", lnum+1, site.Name)
			}
			if _, ok := siteIndex[site.Name]; !ok {
				siteIndex[site.Name] = len(siteIndex)
			}
		}
		monomers = append(monomers, mon)
	}

	if len(monomers) == 0 {
		return nil, nil, "", nil, chk.Err("no valid monomers found in file")
	}

	// aggregate repeated monomers when concentrations are present
	if units != "" {
		monomers, err = aggregateMonomers(monomers, siteIndex)
		if err != nil {
			return nil, nil, "", nil, err
		}
	}
	return
}

// parseMonomerLine parses one monomer line:
//  [name:] site1 site2 ... [>name] [, concentration]
func parseMonomerLine(line string, lnum int, units string) (mon *model.Monomer, err error) {

	original := line
	namePrefix := ""
	hasPrefix := false
	remaining := line

	// name prefix (before a colon)
	if idx := strings.Index(line, ":"); idx >= 0 {
		namePrefix = strings.TrimSpace(line[:idx])
		remaining = strings.TrimSpace(line[idx+1:])
		hasPrefix = true
		if err = checkName(namePrefix, lnum); err != nil {
			return
		}
	}

	// name suffix (after '>'), possibly followed by a concentration
	nameSuffix := ""
	hasSuffix := false
	if idx := strings.Index(remaining, ">"); idx >= 0 {
		nameAndConc := strings.TrimSpace(remaining[idx+1:])
		remaining = strings.TrimSpace(remaining[:idx])
		hasSuffix = true
		if cidx := strings.LastIndex(nameAndConc, ","); cidx >= 0 {
			potential := strings.TrimSpace(nameAndConc[cidx+1:])
			if _, e := strconv.ParseFloat(potential, 64); e == nil {
				nameSuffix = strings.TrimSpace(nameAndConc[:cidx])
				remaining = remaining + "," + potential
			} else {
				nameSuffix = nameAndConc
			}
		} else {
			nameSuffix = nameAndConc
		}
		if nameSuffix == "" {
			return nil, chk.Err("line %d: empty monomer name after '>'", lnum)
		}
		if err = checkName(nameSuffix, lnum); err != nil {
			return
		}
	}

	// concentration (after the last comma)
	conc := 0.0
	hasConc := false
	if cidx := strings.LastIndex(remaining, ","); cidx >= 0 {
		concStr := strings.TrimSpace(remaining[cidx+1:])
		remaining = strings.TrimSpace(remaining[:cidx])
		conc, err = strconv.ParseFloat(concStr, 64)
		if err != nil {
			return nil, chk.Err("line %d: invalid concentration value %q", lnum, concStr)
		}
		if conc < 0 && units == "" {
			return nil, chk.Err("line %d: negative concentration not allowed", lnum)
		}
		hasConc = true
	}

	// only one naming form per line
	if hasPrefix && hasSuffix {
		return nil, chk.Err("line %d: cannot use both 'name:' prefix and '>name' suffix on the same line", lnum)
	}
	name := namePrefix
	if hasSuffix {
		name = nameSuffix
	}

	// binding sites
	siteStrings := strings.Fields(remaining)
	if len(siteStrings) == 0 {
		return nil, nil
	}
	var bindingSites []model.BindingSite
	for _, s := range siteStrings {
		if strings.ContainsAny(s, ",|:") {
			return nil, chk.Err("line %d: invalid binding site %q. cannot contain ,|:", lnum, s)
		}
		if strings.HasPrefix(s, "\\") {
			return nil, chk.Err("line %d: binding site %q cannot start with backslash. backslash is reserved for keywords", lnum, s)
		}
		star := strings.HasSuffix(s, "*")
		base := strings.TrimSuffix(s, "*")
		if base == "" {
			return nil, chk.Err("line %d: invalid binding site %q", lnum, s)
		}
		bindingSites = append(bindingSites, model.BindingSite{Name: base, Star: star})
	}

	mon = &model.Monomer{Name: name, Sites: bindingSites, Conc: conc, HasConc: hasConc, Line: original}
	return
}

// aggregateMonomers merges monomers with identical canonical vectors by
// summing their concentrations. Names of merged monomers must agree (or be
// absent) and the aggregate concentration must be nonnegative
func aggregateMonomers(monomers []*model.Monomer, siteIndex map[string]int) (res []*model.Monomer, err error) {
	type group struct {
		mons []*model.Monomer
	}
	var order []string
	groups := make(map[string]*group)
	for _, m := range monomers {
		key := vectorKey(m.Vector(siteIndex))
		g, ok := groups[key]
		if !ok {
			g = new(group)
			groups[key] = g
			order = append(order, key)
		}
		g.mons = append(g.mons, m)
	}
	for _, key := range order {
		g := groups[key]
		if len(g.mons) == 1 {
			res = append(res, g.mons[0])
			continue
		}
		name := ""
		for _, m := range g.mons {
			if m.Name == "" {
				continue
			}
			if name == "" {
				name = m.Name
			} else if name != m.Name {
				return nil, chk.Err("duplicate monomers with different names: %q, %q. identical monomers must have the same name or be nameless", name, m.Name)
			}
		}
		total := 0.0
		for _, m := range g.mons {
			total += m.Conc
		}
		if total < 0 {
			return nil, chk.Err("negative final concentration (%v) after aggregating identical monomers: %s", total, g.mons[0].SitesString())
		}
		res = append(res, &model.Monomer{
			Name:    name,
			Sites:   g.mons[0].Sites,
			Conc:    total,
			HasConc: true,
			Line:    io.Sf("# aggregated from %d identical monomers", len(g.mons)),
		})
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func stripComment(line string) string {
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

func checkName(name string, lnum int) error {
	if strings.ContainsAny(name, ">,*|:\\") {
		return chk.Err("line %d: invalid monomer name %q. cannot contain >,*|:\\", lnum, name)
	}
	if strings.Contains(name, " ") {
		return chk.Err("line %d: invalid monomer name %q. cannot contain spaces", lnum, name)
	}
	return nil
}

func vectorKey(v []int64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatInt(x, 10)
	}
	return strings.Join(parts, " ")
}
