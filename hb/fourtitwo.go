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

// FourTiTwo runs the 4ti2 suite (hilbert, with zsolve as fallback) to
// compute Hilbert bases
type FourTiTwo struct {
	Path string // 4ti2 installation directory containing bin/hilbert and bin/zsolve
}

// Name returns the display name of the solver
func (o *FourTiTwo) Name() string { return "4ti2" }

func (o *FourTiTwo) hilbertExe() string { return filepath.Join(o.Path, "bin", "hilbert") }
func (o *FourTiTwo) zsolveExe() string  { return filepath.Join(o.Path, "bin", "zsolve") }

// Available reports whether either the hilbert or the zsolve executable
// exists and is executable
func (o *FourTiTwo) Available() bool {
	return isExecutable(o.hilbertExe()) || isExecutable(o.zsolveExe())
}

// HilbertBasis computes the Hilbert basis of {x >= 0 : A x = 0}, trying the
// hilbert executable first and falling back to zsolve
func (o *FourTiTwo) HilbertBasis(A [][]int64) (basis [][]int64, err error) {
	tmpdir, err := os.MkdirTemp("", "fourtitwo")
	if err != nil {
		return nil, chk.Err("cannot create workspace for 4ti2: %v", err)
	}
	defer os.RemoveAll(tmpdir)
	base := filepath.Join(tmpdir, "problem")
	err = writeFourTiTwoInput(A, base)
	if err != nil {
		return
	}
	out, errHil := o.runTool(o.hilbertExe(), base, base+".hil")
	if errHil != nil {
		var errZ error
		out, errZ = o.runTool(o.zsolveExe(), base, base+".zhom")
		if errZ != nil {
			return nil, chk.Err("4ti2 hilbert failed (%v) and zsolve failed (%v)", errHil, errZ)
		}
	}
	return parseFourTiTwoMatrix(out)
}

// ModuleGeneratorsWithSlice computes the minimal inhomogeneous solutions of
// {x >= 0 : eq x = 0, slice x >= 1} via zsolve
func (o *FourTiTwo) ModuleGeneratorsWithSlice(eq [][]int64, slice []int64) (gens [][]int64, err error) {
	tmpdir, err := os.MkdirTemp("", "fourtitwo")
	if err != nil {
		return nil, chk.Err("cannot create workspace for 4ti2: %v", err)
	}
	defer os.RemoveAll(tmpdir)
	base := filepath.Join(tmpdir, "slice")
	err = writeZsolveSliceInput(eq, slice, base)
	if err != nil {
		return
	}
	out, err := o.runTool(o.zsolveExe(), base, base+".zinhom")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no inhomogeneous solutions
		}
		return nil, chk.Err("4ti2 zsolve failed: %v", err)
	}
	return parseFourTiTwoMatrix(out)
}

// runTool spawns one 4ti2 executable and reads the expected output file
func (o *FourTiTwo) runTool(exe, base, outfile string) (output string, err error) {
	var stderr bytes.Buffer
	cmd := exec.Command(exe, base)
	cmd.Stderr = &stderr
	err = cmd.Run()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return "", chk.Err("4ti2 executable not found at %q. install 4ti2 or set FOURTI2_PATH", exe)
		}
		return "", chk.Err("%s", stderr.String())
	}
	b, err := os.ReadFile(outfile)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// writeFourTiTwoInput writes the .mat, .sign and .rel files for the
// homogeneous problem {x >= 0 : A x = 0}
func writeFourTiTwoInput(A [][]int64, base string) (err error) {
	neq := len(A)
	nvars := 0
	if neq > 0 {
		nvars = len(A[0])
	}

	var mat bytes.Buffer
	io.Ff(&mat, "%d %d\n", neq, nvars)
	for _, row := range A {
		io.Ff(&mat, "%s\n", joinInt64(row))
	}
	err = os.WriteFile(base+".mat", mat.Bytes(), 0644)
	if err != nil {
		return chk.Err("cannot write 4ti2 .mat file: %v", err)
	}

	var sign bytes.Buffer
	io.Ff(&sign, "1 %d\n", nvars)
	io.Ff(&sign, "%s\n", strings.TrimSpace(strings.Repeat("+ ", nvars)))
	err = os.WriteFile(base+".sign", sign.Bytes(), 0644)
	if err != nil {
		return chk.Err("cannot write 4ti2 .sign file: %v", err)
	}

	var rel bytes.Buffer
	io.Ff(&rel, "1 %d\n", neq)
	io.Ff(&rel, "%s\n", strings.TrimSpace(strings.Repeat("= ", neq)))
	err = os.WriteFile(base+".rel", rel.Bytes(), 0644)
	if err != nil {
		return chk.Err("cannot write 4ti2 .rel file: %v", err)
	}
	return
}

// writeZsolveSliceInput writes the .mat, .rel, .rhs and .sign files for the
// sliced problem {x >= 0 : eq x = 0, slice x >= 1}
func writeZsolveSliceInput(eq [][]int64, slice []int64, base string) (err error) {
	neq := len(eq)
	nvars := len(slice)
	nrows := neq + 1

	var mat bytes.Buffer
	io.Ff(&mat, "%d %d\n", nrows, nvars)
	for _, row := range eq {
		io.Ff(&mat, "%s\n", joinInt64(row))
	}
	io.Ff(&mat, "%s\n", joinInt64(slice))
	err = os.WriteFile(base+".mat", mat.Bytes(), 0644)
	if err != nil {
		return chk.Err("cannot write 4ti2 .mat file: %v", err)
	}

	var rel bytes.Buffer
	io.Ff(&rel, "1 %d\n", nrows)
	io.Ff(&rel, "%s\n", strings.TrimSpace(strings.Repeat("= ", neq)+">"))
	err = os.WriteFile(base+".rel", rel.Bytes(), 0644)
	if err != nil {
		return chk.Err("cannot write 4ti2 .rel file: %v", err)
	}

	var rhs bytes.Buffer
	io.Ff(&rhs, "1 %d\n", nrows)
	io.Ff(&rhs, "%s\n", strings.TrimSpace(strings.Repeat("0 ", neq)+"1"))
	err = os.WriteFile(base+".rhs", rhs.Bytes(), 0644)
	if err != nil {
		return chk.Err("cannot write 4ti2 .rhs file: %v", err)
	}

	var sign bytes.Buffer
	io.Ff(&sign, "1 %d\n", nvars)
	io.Ff(&sign, "%s\n", strings.TrimSpace(strings.Repeat("1 ", nvars)))
	err = os.WriteFile(base+".sign", sign.Bytes(), 0644)
	if err != nil {
		return chk.Err("cannot write 4ti2 .sign file: %v", err)
	}
	return
}

// parseFourTiTwoMatrix parses a 4ti2 matrix file: a "rows cols" line
// followed by that many rows of cols integers
func parseFourTiTwoMatrix(content string) (basis [][]int64, err error) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, nil
	}
	first := strings.Fields(lines[0])
	if len(first) != 2 {
		return nil, chk.Err("invalid 4ti2 output format: %q", lines[0])
	}
	nvec, err := strconv.Atoi(first[0])
	if err != nil {
		return nil, chk.Err("invalid 4ti2 output format: %q", lines[0])
	}
	nvars, err := strconv.Atoi(first[1])
	if err != nil {
		return nil, chk.Err("invalid 4ti2 output format: %q", lines[0])
	}
	for i := 1; i < len(lines) && i <= nvec; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		v := parseInt64Row(line)
		if len(v) == nvars {
			basis = append(basis, v)
		}
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	return fi.Mode()&0111 != 0
}
