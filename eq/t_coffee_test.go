// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eq

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/model"
)

func Test_cfe01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cfe01. .cfe and .con files")

	tbn := dimerTBN()
	polymers := []*model.Polymer{
		model.NewPolymer([]int64{1, 1}, tbn),
		model.NewPolymer([]int64{1, 0}, tbn),
	}

	// without association parameters the free energies are zero
	cfe := coffeeCfe(polymers, nil)
	io.Pforan("cfe:\n%s\n", cfe)
	if cfe != "1 1 0\n1 0 0\n" {
		tst.Errorf("wrong .cfe content: %q\n", cfe)
		return
	}

	// with association parameters the dimer gets -bonds + bimol
	assoc := &model.AssocEnergy{Gassoc: 0, Hassoc: 0, TempC: 37}
	fe := polymers[0].FreeEnergy(assoc)
	chk.Float64(tst, "dimer G", 1e-12, fe, -2+model.Bimolecular(37, 0, 0))

	con := conFile(tbn)
	if con != "1e-07\n5e-08\n" {
		tst.Errorf("wrong .con content: %q\n", con)
	}
}

func Test_cfe02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cfe02. COFFEE output parsing")

	concentrations, err := parseCoffeeOutput("9.99e-08 4.47e-53\n1.0e-9\n")
	if err != nil {
		tst.Errorf("parse failed:\n%v", err)
		return
	}
	chk.Array(tst, "concentrations", 1e-60, concentrations, []float64{9.99e-8, 4.47e-53, 1e-9})

	if _, err = parseCoffeeOutput("1.0 abc"); err == nil {
		tst.Errorf("non-numeric output must be an error\n")
	}
}
