// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/tbnlab/tbnexplorer2/model"
)

// PolymatHeader holds the header information of a .tbnpolymat file
type PolymatHeader struct {
	NumPolymers       int
	NumMonomers       int
	MatrixHash        string // 64 hex chars; "" if absent
	Units             string // concentration units display name; "" if absent
	HasFreeEnergies   bool
	HasConcentrations bool
}

// PolymatData holds the full contents of a .tbnpolymat file. Free energies
// and concentrations are as written in the file (concentrations in the
// declared units)
type PolymatData struct {
	PolymatHeader
	Polymers       [][]int64
	FreeEnergies   []float64
	Concentrations []float64
}

// ReadPolymatHeader reads only the header block of a .tbnpolymat file
func ReadPolymatHeader(path string) (h *PolymatHeader, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, chk.Err("cannot read .tbnpolymat file:\n%v", err)
	}
	h = new(PolymatHeader)
	parsePolymatHeader(string(b), h)
	if h.NumMonomers == 0 {
		// fall back to the width of the first data line
		for _, raw := range strings.Split(string(b), "\n") {
			if isHeaderLine(raw) || strings.TrimSpace(raw) == "" {
				continue
			}
			h.NumMonomers = len(strings.Fields(raw))
			break
		}
	}
	if h.NumMonomers == 0 {
		return nil, chk.Err("invalid .tbnpolymat file: cannot determine number of monomers")
	}
	return
}

// ReadPolymat reads a complete .tbnpolymat file
func ReadPolymat(path string) (data *PolymatData, err error) {
	h, err := ReadPolymatHeader(path)
	if err != nil {
		return
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, chk.Err("cannot read .tbnpolymat file:\n%v", err)
	}
	data = &PolymatData{PolymatHeader: *h}
	for lnum, raw := range strings.Split(string(b), "\n") {
		if isHeaderLine(raw) || strings.TrimSpace(raw) == "" {
			continue
		}
		parts := strings.Fields(raw)
		if len(parts) < h.NumMonomers {
			return nil, chk.Err("line %d: polymer row has %d columns but %d monomer counts are required", lnum+1, len(parts), h.NumMonomers)
		}
		counts := make([]int64, h.NumMonomers)
		for j := 0; j < h.NumMonomers; j++ {
			counts[j], err = strconv.ParseInt(parts[j], 10, 64)
			if err != nil {
				return nil, chk.Err("line %d: cannot parse monomer count %q", lnum+1, parts[j])
			}
		}
		data.Polymers = append(data.Polymers, counts)
		col := h.NumMonomers
		if h.HasFreeEnergies && col < len(parts) {
			fe, e := strconv.ParseFloat(parts[col], 64)
			if e != nil {
				return nil, chk.Err("line %d: cannot parse free energy %q", lnum+1, parts[col])
			}
			data.FreeEnergies = append(data.FreeEnergies, fe)
			col++
		}
		if h.HasConcentrations && col < len(parts) {
			c, e := strconv.ParseFloat(parts[col], 64)
			if e != nil {
				return nil, chk.Err("line %d: cannot parse concentration %q", lnum+1, parts[col])
			}
			data.Concentrations = append(data.Concentrations, c)
		}
	}
	data.NumPolymers = len(data.Polymers)
	return
}

// CheckMatrixHash reports whether the .tbnpolymat file at path carries the
// expected matrix hash
func CheckMatrixHash(path, expected string) bool {
	h, err := ReadPolymatHeader(path)
	if err != nil {
		return false
	}
	return h.MatrixHash != "" && h.MatrixHash == expected
}

// WritePolymat writes a .tbnpolymat file. Concentrations are given in Molar
// and converted to tbnUnits for output; rows must already be in the desired
// order. The file is truncated and rewritten in full
func WritePolymat(path string, data *PolymatData, tbnUnits string, verbose bool) (err error) {
	var buf bytes.Buffer
	io.Ff(&buf, "# TBN Polymer Matrix\n")
	io.Ff(&buf, "# Number of polymers: %d\n", len(data.Polymers))
	io.Ff(&buf, "# Number of monomers: %d\n", data.NumMonomers)
	if data.MatrixHash != "" {
		io.Ff(&buf, "\\MATRIX-HASH: %s\n", data.MatrixHash)
	}
	if data.Units != "" {
		io.Ff(&buf, "# Concentration units: %s\n", data.Units)
	}
	columns := io.Sf("monomer_counts[1..%d]", data.NumMonomers)
	if data.HasFreeEnergies {
		columns += " free_energy"
	}
	if data.HasConcentrations {
		columns += " concentration"
	}
	io.Ff(&buf, "# Columns: %s\n", columns)
	io.Ff(&buf, "#\n")
	for i, counts := range data.Polymers {
		row := make([]string, 0, len(counts)+2)
		for _, c := range counts {
			row = append(row, strconv.FormatInt(c, 10))
		}
		if data.HasFreeEnergies {
			row = append(row, io.Sf("%g", data.FreeEnergies[i]))
		}
		if data.HasConcentrations {
			conc := data.Concentrations[i]
			if tbnUnits != "" {
				conc = model.FromMolar(conc, tbnUnits)
			}
			if conc == 0 {
				row = append(row, "0.00e0")
			} else {
				row = append(row, io.Sf("%.2e", conc))
			}
		}
		io.Ff(&buf, "%s\n", strings.Join(row, " "))
	}
	return SaveFile(path, buf.Bytes(), verbose)
}

// SaveFile writes the given bytes to filename, truncating any previous
// contents
func SaveFile(filename string, b []byte, verbose bool) (err error) {
	fil, err := os.Create(filename)
	if err != nil {
		return
	}
	defer func() { err = fil.Close() }()
	_, err = fil.Write(b)
	if err != nil {
		return
	}
	if verbose {
		io.Pfblue2("file <%s> written\n", filename)
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func isHeaderLine(raw string) bool {
	t := strings.TrimSpace(raw)
	return strings.HasPrefix(t, "#") || strings.HasPrefix(t, "\\")
}

func parsePolymatHeader(content string, h *PolymatHeader) {
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "\\") {
			if line != "" {
				return // end of header
			}
			continue
		}
		switch {
		case strings.Contains(line, "Number of monomers:"):
			fields := strings.SplitN(line, ":", 2)
			if n, err := strconv.Atoi(strings.TrimSpace(fields[1])); err == nil {
				h.NumMonomers = n
			}
		case strings.Contains(line, "Number of polymers:"):
			fields := strings.SplitN(line, ":", 2)
			if n, err := strconv.Atoi(strings.TrimSpace(fields[1])); err == nil {
				h.NumPolymers = n
			}
		case strings.Contains(line, "MATRIX-HASH:"):
			idx := strings.Index(line, "MATRIX-HASH:")
			h.MatrixHash = strings.TrimSpace(line[idx+len("MATRIX-HASH:"):])
		case strings.Contains(line, "Concentration units:"):
			fields := strings.SplitN(line, ":", 2)
			h.Units = strings.TrimSpace(fields[1])
		case strings.Contains(line, "Columns:"):
			fields := strings.SplitN(line, ":", 2)
			h.HasFreeEnergies = strings.Contains(fields[1], "free_energy")
			h.HasConcentrations = strings.Contains(fields[1], "concentration")
		}
	}
}
