// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

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

// mustTBN parses .tbn content and builds the model, panicking on error
func mustTBN(content string, variables map[string]float64) *model.TBN {
	monomers, siteIndex, units, _, err := ParseTBN(content, variables)
	if err != nil {
		chk.Panic("cannot parse test TBN:\n%v", err)
	}
	tbn, err := model.NewTBN(monomers, siteIndex, units)
	if err != nil {
		chk.Panic("cannot build test TBN:\n%v", err)
	}
	return tbn
}
