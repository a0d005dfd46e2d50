// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package model implements the stoichiometry model of thermodynamics of
// binding networks: binding sites, monomers, the TBN and its matrix A
package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// BindingSite represents one binding site: a base name and a star flag.
// A starred site bonds with the unstarred site of the same name.
type BindingSite struct {
	Name string // base name, without star
	Star bool   // whether this is the starred (conjugate) site
}

// String returns the textual form of the binding site; e.g. "a" or "a*"
func (o BindingSite) String() string {
	if o.Star {
		return o.Name + "*"
	}
	return o.Name
}

// Monomer represents one monomer: an ordered multiset of binding sites with
// an optional name and an optional concentration in the TBN's declared units
type Monomer struct {
	Name    string        // optional human name; "" if unnamed
	Sites   []BindingSite // binding sites in original order
	Conc    float64       // concentration in declared units; valid if HasConc
	HasConc bool          // whether a concentration was declared
	Line    string        // verbatim source line
}

// Vector computes the canonical integer vector of the monomer over the
// ordered set of binding-site base names: +1 per unstar, -1 per star
func (o *Monomer) Vector(siteIndex map[string]int) (v []int64) {
	v = make([]int64, len(siteIndex))
	for _, site := range o.Sites {
		idx, ok := siteIndex[site.Name]
		if !ok {
			chk.Panic("binding site %q is not in the binding-site index", site.Name)
		}
		if site.Star {
			v[idx]--
		} else {
			v[idx]++
		}
	}
	return
}

// SitesString returns the binding sites as a space-separated string in
// original order; e.g. "a a* b"
func (o *Monomer) SitesString() string {
	parts := make([]string, len(o.Sites))
	for i, site := range o.Sites {
		parts[i] = site.String()
	}
	return strings.Join(parts, " ")
}

// Spec returns the name of the monomer if available, otherwise its
// binding-sites string
func (o *Monomer) Spec() string {
	if o.Name != "" {
		return o.Name
	}
	return o.SitesString()
}

// TBN represents a complete thermodynamics-of-binding-networks model
type TBN struct {

	// input data
	Monomers  []*Monomer     // ordered monomers
	SiteIndex map[string]int // binding-site base name => row index in A
	Units     string         // concentration unit tag; "" if no concentrations

	// derived (cached)
	siteNames  []string  // row index => base name
	matrixA    [][]int64 // matrix A: |S| x n
	concMolar  []float64 // concentrations in Molar; nil if not all present
	concOrig   []float64 // concentrations in declared units
	matrixHash string    // 64 hex chars
}

// NewTBN returns a new TBN model. It fails if a monomer name misuses a
// reserved keyword or collides with a binding-site base name
func NewTBN(monomers []*Monomer, siteIndex map[string]int, units string) (o *TBN, err error) {
	if units != "" {
		err = CheckUnit(units)
		if err != nil {
			return
		}
	}
	for _, m := range monomers {
		if m.Name == "" {
			continue
		}
		if strings.HasPrefix(m.Name, "\\") {
			return nil, chk.Err("monomer name %q cannot start with backslash. backslash is reserved for keywords", m.Name)
		}
		if m.Name == "UNITS" || m.Name == "MATRIX-HASH" {
			return nil, chk.Err("monomer name %q is a reserved keyword", m.Name)
		}
		if _, ok := siteIndex[m.Name]; ok {
			return nil, chk.Err("monomer name %q conflicts with a binding-site name", m.Name)
		}
	}
	o = &TBN{Monomers: monomers, SiteIndex: siteIndex, Units: units}
	return
}

// NumSites returns the number of distinct binding-site base names
func (o *TBN) NumSites() int { return len(o.SiteIndex) }

// NumMonomers returns the number of monomers
func (o *TBN) NumMonomers() int { return len(o.Monomers) }

// SiteNames returns the binding-site base names ordered by row index
func (o *TBN) SiteNames() []string {
	if o.siteNames == nil {
		o.siteNames = make([]string, len(o.SiteIndex))
		for name, idx := range o.SiteIndex {
			o.siteNames[idx] = name
		}
	}
	return o.siteNames
}

// MatrixA returns the matrix A where column j is the canonical vector of
// monomer j. The matrix is computed once and cached
func (o *TBN) MatrixA() [][]int64 {
	if o.matrixA == nil {
		nsites := o.NumSites()
		n := o.NumMonomers()
		o.matrixA = make([][]int64, nsites)
		for i := 0; i < nsites; i++ {
			o.matrixA[i] = make([]int64, n)
		}
		for j, m := range o.Monomers {
			v := m.Vector(o.SiteIndex)
			for i := 0; i < nsites; i++ {
				o.matrixA[i][j] = v[i]
			}
		}
	}
	return o.matrixA
}

// Concentrations returns the length-n concentration vector in Molar, or nil
// if concentrations are not declared for all monomers
func (o *TBN) Concentrations() []float64 {
	if o.concMolar == nil {
		if o.Units == "" {
			return nil
		}
		for _, m := range o.Monomers {
			if !m.HasConc {
				return nil
			}
		}
		o.concMolar = make([]float64, len(o.Monomers))
		for j, m := range o.Monomers {
			o.concMolar[j] = ToMolar(m.Conc, o.Units)
		}
	}
	return o.concMolar
}

// ConcentrationsOriginalUnits returns the concentration vector in the
// declared units, or nil if concentrations are not declared for all monomers
func (o *TBN) ConcentrationsOriginalUnits() []float64 {
	if o.concOrig == nil {
		for _, m := range o.Monomers {
			if !m.HasConc {
				return nil
			}
		}
		o.concOrig = make([]float64, len(o.Monomers))
		for j, m := range o.Monomers {
			o.concOrig[j] = m.Conc
		}
	}
	return o.concOrig
}

// CheckStarLimiting checks the star-limiting restriction: A*c >= 0
// componentwise, where c is the concentration vector if present, else the
// all-ones vector. On violation the error lists every row with negative
// excess
func (o *TBN) CheckStarLimiting() (err error) {
	A := o.MatrixA()
	c := o.Concentrations()
	names := o.SiteNames()
	var bad []string
	for i := 0; i < o.NumSites(); i++ {
		excess := 0.0
		for j := 0; j < o.NumMonomers(); j++ {
			if c == nil {
				excess += float64(A[i][j])
			} else {
				excess += float64(A[i][j]) * c[j]
			}
		}
		if excess < 0 {
			bad = append(bad, io.Sf("  %s: %.2f", names[i], excess))
		}
	}
	if len(bad) > 0 {
		return chk.Err("TBN is not star-limited. binding sites with negative excess:\n%s", strings.Join(bad, "\n"))
	}
	return
}

// AugmentedForBasis returns the augmented matrix A' for the polymer-basis
// computation and the original number of monomers n. For every base name x
// without a singleton {x*} monomer column, the column -e_x is appended, so
// that the cone {p >= 0 : A'p = 0} projects onto {p >= 0 : A p >= 0} on the
// first n coordinates
func (o *TBN) AugmentedForBasis() (Aprime [][]int64, n int) {
	A := o.MatrixA()
	nsites := o.NumSites()
	n = o.NumMonomers()
	var extra []int
	for idx := 0; idx < nsites; idx++ {
		need := true
		for j := 0; j < n; j++ {
			if A[idx][j] != -1 {
				continue
			}
			sum := int64(0)
			for i := 0; i < nsites; i++ {
				sum += absInt64(A[i][j])
			}
			if sum == 1 {
				need = false
				break
			}
		}
		if need {
			extra = append(extra, idx)
		}
	}
	Aprime = make([][]int64, nsites)
	for i := 0; i < nsites; i++ {
		Aprime[i] = make([]int64, n+len(extra))
		copy(Aprime[i], A[i])
	}
	for k, idx := range extra {
		Aprime[idx][n+k] = -1
	}
	return
}

// MatrixHash returns the SHA-256 fingerprint of the matrix A as 64 hex
// characters, computed over the shape (u64 little-endian rows, cols) followed
// by the row-major int64 little-endian cells
func (o *TBN) MatrixHash() string {
	if o.matrixHash == "" {
		A := o.MatrixA()
		h := sha256.New()
		var b8 [8]byte
		binary.LittleEndian.PutUint64(b8[:], uint64(o.NumSites()))
		h.Write(b8[:])
		binary.LittleEndian.PutUint64(b8[:], uint64(o.NumMonomers()))
		h.Write(b8[:])
		for i := 0; i < o.NumSites(); i++ {
			for j := 0; j < o.NumMonomers(); j++ {
				binary.LittleEndian.PutUint64(b8[:], uint64(A[i][j]))
				h.Write(b8[:])
			}
		}
		o.matrixHash = hex.EncodeToString(h.Sum(nil))
	}
	return o.matrixHash
}

// Info returns a short formatted description of the model
func (o *TBN) Info() string {
	return io.Sf("TBN model: %d binding sites, %d monomers, concentrations: %v",
		o.NumSites(), o.NumMonomers(), o.Concentrations() != nil)
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func absInt64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// addInt64 adds two int64 values and panics on overflow
func addInt64(a, b int64) int64 {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		chk.Panic("int64 overflow in addition: %d + %d", a, b)
	}
	return s
}

// mulInt64 multiplies two int64 values and panics on overflow
func mulInt64(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		chk.Panic("int64 overflow in multiplication: %d * %d", a, b)
	}
	return p
}

// MatVecMul multiplies an integer matrix by an integer vector with overflow
// checks
func MatVecMul(A [][]int64, x []int64) (res []int64) {
	res = make([]int64, len(A))
	for i := range A {
		if len(A[i]) != len(x) {
			chk.Panic("matrix-vector dimensions mismatch: %d != %d", len(A[i]), len(x))
		}
		var sum int64
		for j := range x {
			sum = addInt64(sum, mulInt64(A[i][j], x[j]))
		}
		res[i] = sum
	}
	return
}
