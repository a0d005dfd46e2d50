// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func readStr(tst *testing.T, path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		tst.Fatalf("cannot read %s: %v", path, err)
	}
	return string(b)
}

func Test_ftt01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ftt01. 4ti2 input files for the homogeneous problem")

	A := [][]int64{{1, -1, 0}, {0, 1, -1}}
	base := filepath.Join(tst.TempDir(), "problem")
	err := writeFourTiTwoInput(A, base)
	if err != nil {
		tst.Errorf("write failed:\n%v", err)
		return
	}

	mat := readStr(tst, base+".mat")
	io.Pforan("mat:\n%s\n", mat)
	if mat != "2 3\n1 -1 0\n0 1 -1\n" {
		tst.Errorf("wrong .mat file: %q\n", mat)
		return
	}
	if readStr(tst, base+".sign") != "1 3\n+ + +\n" {
		tst.Errorf("wrong .sign file\n")
		return
	}
	if readStr(tst, base+".rel") != "1 2\n= =\n" {
		tst.Errorf("wrong .rel file\n")
	}
}

func Test_ftt02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ftt02. 4ti2 input files for the sliced problem")

	eq := [][]int64{{1, 1, -2}}
	slice := []int64{0, 0, 1}
	base := filepath.Join(tst.TempDir(), "slice")
	err := writeZsolveSliceInput(eq, slice, base)
	if err != nil {
		tst.Errorf("write failed:\n%v", err)
		return
	}
	if readStr(tst, base+".mat") != "2 3\n1 1 -2\n0 0 1\n" {
		tst.Errorf("wrong .mat file\n")
		return
	}
	if readStr(tst, base+".rel") != "1 2\n= >\n" {
		tst.Errorf("wrong .rel file\n")
		return
	}
	if readStr(tst, base+".rhs") != "1 2\n0 1\n" {
		tst.Errorf("wrong .rhs file\n")
		return
	}
	if readStr(tst, base+".sign") != "1 3\n1 1 1\n" {
		tst.Errorf("wrong .sign file\n")
	}
}

func Test_ftt03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ftt03. 4ti2 output parsing")

	basis, err := parseFourTiTwoMatrix("3 4\n1 1 0 0\n1 0 1 1\n0 1 2 0\n")
	if err != nil {
		tst.Errorf("parse failed:\n%v", err)
		return
	}
	if len(basis) != 3 || basis[2][2] != 2 {
		tst.Errorf("wrong basis: %v\n", basis)
		return
	}

	// empty output
	basis, err = parseFourTiTwoMatrix("")
	if err != nil || basis != nil {
		tst.Errorf("empty output must yield no vectors: %v %v\n", basis, err)
		return
	}

	// malformed first line
	if _, err = parseFourTiTwoMatrix("garbage\n"); err == nil {
		tst.Errorf("malformed output must be an error\n")
	}
}
