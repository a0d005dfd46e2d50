// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eq

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/model"
)

// Nupack runs the NUPACK concentrations executable
type Nupack struct {
	Path string // path to the concentrations executable
}

// Name returns the display name of the solver
func (o *Nupack) Name() string { return "NUPACK-concentrations" }

// Available reports whether the NUPACK executable exists and is executable
func (o *Nupack) Available() bool {
	fi, err := os.Stat(o.Path)
	return err == nil && !fi.IsDir() && fi.Mode()&0111 != 0
}

// Compute returns the equilibrium concentrations of the given polymers in
// Molar, preserving input order
func (o *Nupack) Compute(polymers []*model.Polymer, tbn *model.TBN, assoc *model.AssocEnergy, tempC float64) (concentrations []float64, err error) {
	if tbn.Concentrations() == nil {
		return nil, chk.Err("cannot compute equilibrium concentrations without monomer concentrations")
	}
	if !o.Available() {
		return nil, chk.Err("NUPACK not found at %q", o.Path)
	}

	tmpdir, err := os.MkdirTemp("", "nupack")
	if err != nil {
		return nil, chk.Err("cannot create workspace for NUPACK: %v", err)
	}
	defer os.RemoveAll(tmpdir)

	base := filepath.Join(tmpdir, "nupack_input")
	err = os.WriteFile(base+".ocx", []byte(nupackOcx(polymers, assoc)), 0644)
	if err != nil {
		return nil, chk.Err("cannot write .ocx file: %v", err)
	}
	err = os.WriteFile(base+".con", []byte(conFile(tbn)), 0644)
	if err != nil {
		return nil, chk.Err("cannot write .con file: %v", err)
	}

	// -sort 0 preserves input order
	var stderr bytes.Buffer
	cmd := exec.Command(o.Path, "-sort", "0", "-T", strconv.FormatFloat(tempC, 'g', -1, 64), base)
	cmd.Dir = tmpdir
	cmd.Stderr = &stderr
	err = cmd.Run()
	if err != nil {
		return nil, chk.Err("NUPACK failed: %s", stderr.String())
	}

	b, err := os.ReadFile(base + ".eq")
	if err != nil {
		return nil, chk.Err("NUPACK output file not found: %s", base+".eq")
	}
	concentrations, err = parseNupackEq(string(b))
	if err != nil {
		return
	}
	if len(concentrations) != len(polymers) {
		return nil, chk.Err("NUPACK output has %d concentrations but expected %d", len(concentrations), len(polymers))
	}
	return
}

// nupackOcx builds the .ocx file: tab-separated rows of 1-based id, the
// constant 1, the monomer counts, and the free energy
func nupackOcx(polymers []*model.Polymer, assoc *model.AssocEnergy) string {
	var buf bytes.Buffer
	for i, p := range polymers {
		row := []string{strconv.Itoa(i + 1), "1"}
		for _, c := range p.Counts {
			row = append(row, strconv.FormatInt(c, 10))
		}
		row = append(row, io.Sf("%g", p.FreeEnergy(assoc)))
		io.Ff(&buf, "%s\n", strings.Join(row, "\t"))
	}
	return buf.String()
}

// parseNupackEq parses the .eq file: the .ocx layout with a trailing
// concentration column in Molar
func parseNupackEq(content string) (concentrations []float64, err error) {
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		c, e := strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-1]), 64)
		if e != nil {
			continue
		}
		concentrations = append(concentrations, c)
	}
	if len(concentrations) == 0 {
		return nil, chk.Err("invalid .eq file format: no concentration data parsed")
	}
	return
}
