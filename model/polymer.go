// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// gas constant in kcal/(mol K)
const GasConstant = 0.001987204259

// reference temperature in Kelvin (37 Celsius)
const RefTemperatureK = 310.15

// AssocEnergy holds the association-penalty parameters
type AssocEnergy struct {
	Gassoc float64 // association free energy at the reference temperature
	Hassoc float64 // association enthalpy
	TempC  float64 // temperature in Celsius
}

// Polymer represents a polymer as a nonnegative integer combination of the
// monomers of a TBN
type Polymer struct {
	Counts []int64 // monomer counts; length = number of monomers
	Tbn    *TBN    // model used to interpret the counts

	// memoised values
	feMemo map[AssocEnergy]float64
}

// NewPolymer returns a new polymer over the monomers of tbn
func NewPolymer(counts []int64, tbn *TBN) (o *Polymer) {
	if len(counts) != tbn.NumMonomers() {
		chk.Panic("polymer vector has %d entries but TBN has %d monomers", len(counts), tbn.NumMonomers())
	}
	return &Polymer{Counts: counts, Tbn: tbn}
}

// TotalMonomers returns the total number of monomers in the polymer
func (o *Polymer) TotalMonomers() (m int64) {
	for _, c := range o.Counts {
		m = addInt64(m, c)
	}
	return
}

// NumBonds returns the number of bonds formed within the polymer:
// (Sum[|A|p] - Sum[A p]) / 2, since each bond consumes one star and one
// unstar binding site on the same row
func (o *Polymer) NumBonds() int64 {
	A := o.Tbn.MatrixA()
	var total, excess int64
	for i := range A {
		for j := range o.Counts {
			total = addInt64(total, mulInt64(absInt64(A[i][j]), o.Counts[j]))
			excess = addInt64(excess, mulInt64(A[i][j], o.Counts[j]))
		}
	}
	return (total - excess) / 2
}

// FreeEnergy computes the free energy of the polymer. Without association
// parameters the bond term is suppressed and the result is zero. With
// parameters the result is -bonds + bimolecular(T,G,H)*(m-1) where m is the
// total monomer count. The value is memoised per parameter set
func (o *Polymer) FreeEnergy(assoc *AssocEnergy) float64 {
	if assoc == nil {
		return 0.0
	}
	if o.feMemo == nil {
		o.feMemo = make(map[AssocEnergy]float64)
	}
	if fe, ok := o.feMemo[*assoc]; ok {
		return fe
	}
	fe := -float64(o.NumBonds()) + AssocEnergyPenalty(o.TotalMonomers(), assoc.TempC, assoc.Gassoc, assoc.Hassoc)
	o.feMemo[*assoc] = fe
	return fe
}

// Equal compares two polymers by their count vectors
func (o *Polymer) Equal(other *Polymer) bool {
	if len(o.Counts) != len(other.Counts) {
		return false
	}
	for i := range o.Counts {
		if o.Counts[i] != other.Counts[i] {
			return false
		}
	}
	return true
}

// association energy //////////////////////////////////////////////////////////////////////////////

// CelsiusToKelvin converts a temperature from Celsius to Kelvin
func CelsiusToKelvin(tc float64) float64 {
	return tc + 273.15
}

// WaterDensityMolPerL returns the density of water in mol/L at the given
// temperature in Celsius, using the Kell density polynomial divided by the
// molar mass of water (18.0152 g/mol)
func WaterDensityMolPerL(tc float64) float64 {
	gPerL := (999.83952 + 16.945176*tc - 7.9870401e-3*tc*tc -
		46.170461e-6*tc*tc*tc + 105.56302e-9*tc*tc*tc*tc -
		280.54253e-12*tc*tc*tc*tc*tc) / (1.0 + 16.879850e-3*tc)
	return gPerL / 18.0152
}

// Bimolecular returns the bimolecular association term at temperature tc
// (Celsius) with association parameters G and H:
//  (G-H)*Tk/Tref + H - R*Tk*ln(rho(tc))
func Bimolecular(tc, G, H float64) float64 {
	tk := CelsiusToKelvin(tc)
	return (G-H)*tk/RefTemperatureK + H - GasConstant*tk*math.Log(WaterDensityMolPerL(tc))
}

// AssocEnergyPenalty returns the association-energy penalty of a polymer with
// nMonomers total monomers: bimolecular(tc,G,H) * (nMonomers - 1)
func AssocEnergyPenalty(nMonomers int64, tc, G, H float64) float64 {
	if nMonomers <= 1 {
		return 0.0
	}
	return Bimolecular(tc, G, H) * float64(nMonomers-1)
}
