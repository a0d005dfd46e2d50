// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"github.com/cpmech/gosl/chk"
)

// UnitToMolar maps a concentration unit tag to its factor in Molar
var UnitToMolar = map[string]float64{
	"pM": 1e-12,
	"nM": 1e-9,
	"uM": 1e-6,
	"mM": 1e-3,
	"M":  1.0,
}

// ValidUnits holds the supported concentration unit tags, smallest first
var ValidUnits = []string{"pM", "nM", "uM", "mM", "M"}

// CheckUnit returns an error if unit is not one of ValidUnits
func CheckUnit(unit string) (err error) {
	if _, ok := UnitToMolar[unit]; !ok {
		return chk.Err("invalid concentration unit %q. supported units: pM, nM, uM, mM, M", unit)
	}
	return
}

// ToMolar converts value from the given unit to Molar
func ToMolar(value float64, fromUnit string) float64 {
	factor, ok := UnitToMolar[fromUnit]
	if !ok {
		chk.Panic("cannot convert from unknown unit %q", fromUnit)
	}
	return value * factor
}

// FromMolar converts value from Molar to the given unit
func FromMolar(value float64, toUnit string) float64 {
	factor, ok := UnitToMolar[toUnit]
	if !ok {
		chk.Panic("cannot convert to unknown unit %q", toUnit)
	}
	return value / factor
}

// UnitDisplayName returns the full display name of a concentration unit
func UnitDisplayName(unit string) string {
	switch unit {
	case "pM":
		return "picoMolar (pM)"
	case "nM":
		return "nanoMolar (nM)"
	case "uM":
		return "microMolar (uM)"
	case "mM":
		return "milliMolar (mM)"
	case "M":
		return "Molar (M)"
	}
	chk.Panic("cannot find display name of unknown unit %q", unit)
	return ""
}
