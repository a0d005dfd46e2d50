// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eq

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/model"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// dimerTBN builds the {a b, a* b*} system with 100 nM / 50 nM concentrations
func dimerTBN() *model.TBN {
	siteIndex := map[string]int{"a": 0, "b": 1}
	mons := []*model.Monomer{
		{Name: "X", Sites: []model.BindingSite{{Name: "a"}, {Name: "b"}}, Conc: 100, HasConc: true},
		{Name: "Y", Sites: []model.BindingSite{{Name: "a", Star: true}, {Name: "b", Star: true}}, Conc: 50, HasConc: true},
	}
	tbn, err := model.NewTBN(mons, siteIndex, "nM")
	if err != nil {
		chk.Panic("cannot build test TBN:\n%v", err)
	}
	return tbn
}
