// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"

	"github.com/tbnlab/tbnexplorer2/basis"
	"github.com/tbnlab/tbnexplorer2/cfg"
	"github.com/tbnlab/tbnexplorer2/eq"
	"github.com/tbnlab/tbnexplorer2/hb"
	"github.com/tbnlab/tbnexplorer2/inp"
	"github.com/tbnlab/tbnexplorer2/model"
)

// analyzeCommand builds the "analyze" subcommand: polymer basis, free
// energies and equilibrium concentrations for one .tbn file
func analyzeCommand(config *cfg.Config) *cobra.Command {
	var (
		output           string
		userFriendly     bool
		checkOnly        bool
		noConcentrations bool
		noFreeEnergies   bool
		use4ti2          bool
		useNupack        bool
		deltaG           string
		temperature      float64
		variables        []string
		verbose          bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <tbn>",
		Short: "Compute the polymer basis and equilibrium quantities of a TBN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(config, args[0], analyzeOptions{
				output:           output,
				userFriendly:     userFriendly,
				checkOnly:        checkOnly,
				noConcentrations: noConcentrations,
				noFreeEnergies:   noFreeEnergies,
				use4ti2:          use4ti2,
				useNupack:        useNupack,
				deltaG:           deltaG,
				temperature:      temperature,
				variables:        variables,
				verbose:          verbose,
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for the user-friendly polymer basis")
	cmd.Flags().BoolVar(&userFriendly, "user-friendly-polymer-basis", false, "save the polymer basis in human-readable form")
	cmd.Flags().BoolVar(&checkOnly, "check-only", false, "only check the star-limiting restriction")
	cmd.Flags().BoolVar(&noConcentrations, "no-concentrations", false, "do not compute equilibrium concentrations")
	cmd.Flags().BoolVar(&noFreeEnergies, "no-free-energies", false, "do not compute free energies (disables concentrations too)")
	cmd.Flags().BoolVar(&use4ti2, "use-4ti2", false, "use 4ti2 instead of Normaliz")
	cmd.Flags().BoolVar(&useNupack, "use-nupack-concentrations", false, "use NUPACK concentrations instead of COFFEE")
	cmd.Flags().StringVar(&deltaG, "deltaG", "", "association parameters G,H (requires --use-nupack-concentrations)")
	cmd.Flags().Float64Var(&temperature, "temperature", 37.0, "temperature in Celsius")
	cmd.Flags().StringArrayVar(&variables, "var", nil, "template variable name=value (repeatable)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show progress messages")
	return cmd
}

type analyzeOptions struct {
	output           string
	userFriendly     bool
	checkOnly        bool
	noConcentrations bool
	noFreeEnergies   bool
	use4ti2          bool
	useNupack        bool
	deltaG           string
	temperature      float64
	variables        []string
	verbose          bool
}

func runAnalyze(config *cfg.Config, tbnFile string, opts analyzeOptions) (err error) {

	if opts.deltaG != "" && !opts.useNupack {
		return chk.Err("--deltaG requires --use-nupack-concentrations")
	}
	variables, err := parseVariables(opts.variables)
	if err != nil {
		return
	}

	// parse and build the model
	if opts.verbose {
		io.Pf("parsing TBN file: %s\n", tbnFile)
	}
	monomers, siteIndex, units, _, err := inp.ParseTBNFile(tbnFile, variables)
	if err != nil {
		return
	}
	tbn, err := model.NewTBN(monomers, siteIndex, units)
	if err != nil {
		return
	}
	if opts.verbose {
		io.Pf("found %d monomers and %d binding sites\n", tbn.NumMonomers(), tbn.NumSites())
	}

	// star-limiting restriction
	err = tbn.CheckStarLimiting()
	if err != nil {
		return
	}
	if opts.checkOnly {
		io.Pf("star-limiting check passed\n")
		return
	}

	// Hilbert-basis solver
	solver := hilbertSolver(config, opts.use4ti2)
	if !solver.Available() {
		return chk.Err("%s is not available. install it or set the solver path environment variable", solver.Name())
	}

	// polymer basis: cached or recomputed
	stem := strings.TrimSuffix(tbnFile, filepath.Ext(tbnFile))
	polymatFile := stem + ".tbnpolymat"
	computer := &basis.Computer{Tbn: tbn, Solver: solver}
	polymers := computer.LoadCached(polymatFile)
	usedCache := polymers != nil
	if usedCache {
		if opts.verbose {
			io.Pf("using cached polymer basis (matrix hashes match): %d polymers\n", len(polymers))
		}
	} else {
		if opts.verbose {
			io.Pf("computing polymer basis with %s...\n", solver.Name())
		}
		polymers, err = computer.ComputePolymerBasis()
		if err != nil {
			return
		}
		if opts.verbose {
			io.Pf("found %d polymers in the basis\n", len(polymers))
		}
	}

	// user-friendly polymer basis
	if opts.userFriendly {
		outputFile := opts.output
		if outputFile == "" {
			outputFile = stem + "-polymer-basis.txt"
		}
		err = computer.SaveUserFriendly(polymers, outputFile, opts.verbose)
		if err != nil {
			return
		}
	}

	// association parameters
	var assoc *model.AssocEnergy
	if opts.deltaG != "" {
		assoc, err = parseDeltaG(opts.deltaG, opts.temperature)
		if err != nil {
			return
		}
	}

	// equilibrium solver
	computeFE := !opts.noFreeEnergies
	computeConc := !opts.noConcentrations && computeFE && tbn.Concentrations() != nil
	var eqSolver eq.Solver
	if computeConc {
		eqSolver = equilibriumSolver(config, opts.useNupack)
		if !eqSolver.Available() {
			io.Pf("warning: %s is not available, skipping concentration computation\n", eqSolver.Name())
			computeConc = false
			eqSolver = nil
		}
	}

	// emit .tbnpolymat
	err = computer.SavePolymat(polymers, polymatFile, &basis.SaveOptions{
		FreeEnergies:   computeFE,
		Concentrations: computeConc,
		EqSolver:       eqSolver,
		Assoc:          assoc,
		TempC:          opts.temperature,
		Verbose:        opts.verbose,
	})
	if err != nil {
		return
	}

	// summary
	if usedCache {
		io.Pf("polymer basis: %d polymers (cached)\n", len(polymers))
	} else {
		io.Pf("polymer basis: %d polymers\n", len(polymers))
	}
	if tbn.Concentrations() != nil {
		io.Pf("concentration units: %s\n", model.UnitDisplayName(units))
	}
	io.Pf("results saved to %s\n", polymatFile)
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func hilbertSolver(config *cfg.Config, use4ti2 bool) hb.Solver {
	if use4ti2 {
		return &hb.FourTiTwo{Path: config.FourTiTwoPath}
	}
	return &hb.Normaliz{Path: config.NormalizPath}
}

func equilibriumSolver(config *cfg.Config, useNupack bool) eq.Solver {
	if useNupack {
		return &eq.Nupack{Path: config.NupackPath}
	}
	return &eq.Coffee{Path: config.CoffeePath}
}

func parseVariables(specs []string) (variables map[string]float64, err error) {
	if len(specs) == 0 {
		return
	}
	variables = make(map[string]float64)
	for _, spec := range specs {
		idx := strings.Index(spec, "=")
		if idx <= 0 {
			return nil, chk.Err("invalid --var %q. expected name=value", spec)
		}
		val, e := strconv.ParseFloat(spec[idx+1:], 64)
		if e != nil {
			return nil, chk.Err("invalid --var value %q. expected a number", spec[idx+1:])
		}
		variables[spec[:idx]] = val
	}
	return
}

func parseDeltaG(spec string, tempC float64) (assoc *model.AssocEnergy, err error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 2 {
		return nil, chk.Err("invalid --deltaG %q. expected G,H", spec)
	}
	G, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, chk.Err("invalid --deltaG value %q", parts[0])
	}
	H, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, chk.Err("invalid --deltaG value %q", parts[1])
	}
	return &model.AssocEnergy{Gassoc: G, Hassoc: H, TempC: tempC}, nil
}
