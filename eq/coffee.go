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

// Coffee runs the COFFEE (Computation Of Free-Energy Equilibria) CLI
type Coffee struct {
	Path string // path to the coffee-cli executable
}

// Name returns the display name of the solver
func (o *Coffee) Name() string { return "COFFEE" }

// Available reports whether the COFFEE executable exists and is executable
func (o *Coffee) Available() bool {
	fi, err := os.Stat(o.Path)
	return err == nil && !fi.IsDir() && fi.Mode()&0111 != 0
}

// Compute returns the equilibrium concentrations of the given polymers in
// Molar, preserving input order. The temperature is passed to COFFEE only
// when it differs from 37 Celsius
func (o *Coffee) Compute(polymers []*model.Polymer, tbn *model.TBN, assoc *model.AssocEnergy, tempC float64) (concentrations []float64, err error) {
	if tbn.Concentrations() == nil {
		return nil, chk.Err("cannot compute equilibrium concentrations without monomer concentrations")
	}
	if !o.Available() {
		return nil, chk.Err("COFFEE not found at %q", o.Path)
	}

	tmpdir, err := os.MkdirTemp("", "coffee")
	if err != nil {
		return nil, chk.Err("cannot create workspace for COFFEE: %v", err)
	}
	defer os.RemoveAll(tmpdir)

	cfePath := filepath.Join(tmpdir, "polymers.cfe")
	err = os.WriteFile(cfePath, []byte(coffeeCfe(polymers, assoc)), 0644)
	if err != nil {
		return nil, chk.Err("cannot write .cfe file: %v", err)
	}
	conPath := filepath.Join(tmpdir, "monomers.con")
	err = os.WriteFile(conPath, []byte(conFile(tbn)), 0644)
	if err != nil {
		return nil, chk.Err("cannot write .con file: %v", err)
	}

	outPath := filepath.Join(tmpdir, "equilibrium.txt")
	args := []string{cfePath, conPath, "-o", outPath}
	if tempC != 37.0 {
		args = append(args, "--temp", strconv.FormatFloat(tempC, 'g', -1, 64))
	}
	var stderr bytes.Buffer
	cmd := exec.Command(o.Path, args...)
	cmd.Stderr = &stderr
	err = cmd.Run()
	if err != nil {
		return nil, chk.Err("COFFEE failed: %s", stderr.String())
	}

	b, err := os.ReadFile(outPath)
	if err != nil {
		return nil, chk.Err("COFFEE output file not found: %s", outPath)
	}
	concentrations, err = parseCoffeeOutput(string(b))
	if err != nil {
		return
	}
	if len(concentrations) != len(polymers) {
		return nil, chk.Err("COFFEE output has %d concentrations but expected %d", len(concentrations), len(polymers))
	}
	return
}

// coffeeCfe builds the .cfe file: per polymer, the monomer counts followed
// by the free energy
func coffeeCfe(polymers []*model.Polymer, assoc *model.AssocEnergy) string {
	var buf bytes.Buffer
	for _, p := range polymers {
		for _, c := range p.Counts {
			io.Ff(&buf, "%d ", c)
		}
		io.Ff(&buf, "%g\n", p.FreeEnergy(assoc))
	}
	return buf.String()
}

// conFile builds the .con file: one Molar concentration per monomer per
// line, in monomer order, with 15 significant digits so that unit-conversion
// rounding noise does not show (100 nM is written as 1e-07)
func conFile(tbn *model.TBN) string {
	var buf bytes.Buffer
	for _, c := range tbn.Concentrations() {
		io.Ff(&buf, "%.15g\n", c)
	}
	return buf.String()
}

// parseCoffeeOutput parses the whitespace-separated concentrations
func parseCoffeeOutput(content string) (concentrations []float64, err error) {
	for _, f := range strings.Fields(content) {
		c, e := strconv.ParseFloat(f, 64)
		if e != nil {
			return nil, chk.Err("cannot parse concentration value %q", f)
		}
		concentrations = append(concentrations, c)
	}
	return
}
