// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hb

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Normaliz runs the Normaliz executable to compute Hilbert bases
type Normaliz struct {
	Path string // path to the normaliz executable
}

// Name returns the display name of the solver
func (o *Normaliz) Name() string { return "Normaliz" }

// Available reports whether Normaliz responds to --version
func (o *Normaliz) Available() bool {
	cmd := exec.Command(o.Path, "--version")
	return cmd.Run() == nil
}

// HilbertBasis computes the Hilbert basis of {x >= 0 : A x = 0}
func (o *Normaliz) HilbertBasis(A [][]int64) (basis [][]int64, err error) {
	input := normalizInput(A, nil)
	out, err := o.run(input)
	if err != nil {
		return
	}
	return parseNormalizBasis(out), nil
}

// ModuleGeneratorsWithSlice computes the minimal solutions of
// {x >= 0 : eq x = 0, slice x >= 1} using a strict-inequalities row
func (o *Normaliz) ModuleGeneratorsWithSlice(eq [][]int64, slice []int64) (gens [][]int64, err error) {
	input := normalizInput(eq, slice)
	out, err := o.run(input)
	if err != nil {
		return
	}
	return parseNormalizBasis(out), nil
}

// run writes the input file into a scoped workspace, spawns Normaliz, and
// returns the contents of the .out file
func (o *Normaliz) run(input string) (output string, err error) {
	tmpdir, err := os.MkdirTemp("", "normaliz")
	if err != nil {
		return "", chk.Err("cannot create workspace for Normaliz: %v", err)
	}
	defer os.RemoveAll(tmpdir)
	infile := filepath.Join(tmpdir, "input.in")
	err = os.WriteFile(infile, []byte(input), 0644)
	if err != nil {
		return "", chk.Err("cannot write Normaliz input: %v", err)
	}
	var stderr, stdout bytes.Buffer
	cmd := exec.Command(o.Path, infile)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err = cmd.Run()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return "", chk.Err("Normaliz executable not found at %q. install Normaliz or set NORMALIZ_PATH", o.Path)
		}
		msg := stderr.String()
		if msg == "" {
			msg = stdout.String()
		}
		return "", chk.Err("Normaliz failed: %s", msg)
	}
	outfile := filepath.Join(tmpdir, "input.out")
	b, err := os.ReadFile(outfile)
	if err != nil {
		return "", chk.Err("Normaliz output file not found: %s", outfile)
	}
	return string(b), nil
}

// normalizInput builds the Normaliz input file: equations plus an optional
// strict-inequalities slice row, then the HilbertBasis request
func normalizInput(equations [][]int64, slice []int64) string {
	nvars := 0
	if len(equations) > 0 {
		nvars = len(equations[0])
	} else if slice != nil {
		nvars = len(slice)
	}
	var buf bytes.Buffer
	io.Ff(&buf, "amb_space %d\n", nvars)
	if len(equations) > 0 {
		io.Ff(&buf, "equations %d\n", len(equations))
		for _, row := range equations {
			io.Ff(&buf, "%s\n", joinInt64(row))
		}
	}
	if slice != nil {
		io.Ff(&buf, "strict_inequalities 1\n")
		io.Ff(&buf, "%s\n", joinInt64(slice))
	}
	io.Ff(&buf, "HilbertBasis\n")
	return buf.String()
}

// parseNormalizBasis extracts the basis rows from a Normaliz output file.
// The section starts at one of the known headers and ends at the next
// section marker
func parseNormalizBasis(output string) (basis [][]int64) {
	inSection := false
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if strings.Contains(line, "lattice points in polytope (Hilbert basis elements of degree 1):") ||
			strings.Contains(line, "Hilbert basis elements:") ||
			strings.Contains(line, "module generators:") {
			inSection = true
			continue
		}
		if inSection {
			if strings.Contains(line, "extreme rays:") ||
				strings.Contains(line, "support hyperplanes:") ||
				strings.Contains(line, "equations:") ||
				strings.Contains(line, "basis elements of generated") ||
				strings.Contains(line, "***") {
				break
			}
			if line == "" || strings.HasPrefix(line, "*") || !digitsMinusSpaces(line) {
				continue
			}
			v := parseInt64Row(line)
			if v != nil {
				basis = append(basis, v)
			}
		}
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func joinInt64(row []int64) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, " ")
}

func digitsMinusSpaces(line string) bool {
	for _, r := range line {
		if !strings.ContainsRune("0123456789 -", r) {
			return false
		}
	}
	return true
}

func parseInt64Row(line string) (v []int64) {
	for _, f := range strings.Fields(line) {
		x, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil
		}
		v = append(v, x)
	}
	return
}
