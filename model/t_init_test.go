// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// site is a shorthand to build binding sites in tests; "a*" => star
func site(s string) BindingSite {
	if len(s) > 0 && s[len(s)-1] == '*' {
		return BindingSite{Name: s[:len(s)-1], Star: true}
	}
	return BindingSite{Name: s, Star: false}
}

func sites(ss ...string) (res []BindingSite) {
	for _, s := range ss {
		res = append(res, site(s))
	}
	return
}
