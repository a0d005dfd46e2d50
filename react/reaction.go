// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package react computes irreducible canonical reactions between polymers:
// mass-conserving integer combinations of basis polymers that consume no
// off-target polymer
package react

import (
	"strings"

	"github.com/cpmech/gosl/io"
)

// Reaction is an integer vector over the polymer basis: negative entries are
// reactants, positive entries are products
type Reaction struct {
	Vector []int64
}

// Term is one side entry of a reaction: a polymer index and a positive
// multiplicity
type Term struct {
	Index int
	Mult  int64
}

// ReactantsProducts splits the reaction vector into reactant and product
// terms, in index order
func (o *Reaction) ReactantsProducts() (reactants, products []Term) {
	for i, c := range o.Vector {
		if c < 0 {
			reactants = append(reactants, Term{Index: i, Mult: -c})
		} else if c > 0 {
			products = append(products, Term{Index: i, Mult: c})
		}
	}
	return
}

// IsBalanced reports whether the total reactant multiplicity equals the
// total product multiplicity
func (o *Reaction) IsBalanced() bool {
	var nr, np int64
	for _, c := range o.Vector {
		if c < 0 {
			nr -= c
		} else {
			np += c
		}
	}
	return nr == np
}

// String renders the reaction as "reactants -> products" with P<i> polymer
// names
func (o *Reaction) String() string {
	reactants, products := o.ReactantsProducts()
	format := func(terms []Term) string {
		if len(terms) == 0 {
			return "0"
		}
		parts := make([]string, len(terms))
		for i, t := range terms {
			if t.Mult == 1 {
				parts[i] = io.Sf("P%d", t.Index)
			} else {
				parts[i] = io.Sf("%d P%d", t.Mult, t.Index)
			}
		}
		return strings.Join(parts, " + ")
	}
	return io.Sf("%s -> %s", format(reactants), format(products))
}
