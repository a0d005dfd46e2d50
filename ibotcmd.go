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
	"github.com/tbnlab/tbnexplorer2/ibot"
	"github.com/tbnlab/tbnexplorer2/inp"
	"github.com/tbnlab/tbnexplorer2/model"
	"github.com/tbnlab/tbnexplorer2/react"
)

// ibotCommand builds the "ibot" subcommand: assigning concentration
// exponents to off-target polymers via irreducible canonical reactions
func ibotCommand(config *cfg.Config) *cobra.Command {
	var (
		use4ti2      bool
		generateTbn  string
		outputPrefix string
		outReactions bool
		upperBound   string
		verbose      bool
	)
	cmd := &cobra.Command{
		Use:   "ibot <tbn> <on_target.tbnpolys>",
		Short: "Run the iterative balancing of off-target polymers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIbot(config, args[0], args[1], ibotOptions{
				use4ti2:      use4ti2,
				generateTbn:  generateTbn,
				outputPrefix: outputPrefix,
				outReactions: outReactions,
				upperBound:   upperBound,
				verbose:      verbose,
			})
		},
	}
	cmd.Flags().BoolVar(&use4ti2, "use-4ti2", false, "use 4ti2 instead of Normaliz for both Hilbert-basis computations")
	cmd.Flags().StringVar(&generateTbn, "generate-tbn", "", "generate a .tbn file with concentrations; value is C,UNIT")
	cmd.Flags().StringVar(&outputPrefix, "output-prefix", "", "prefix for output files (default: input stem)")
	cmd.Flags().BoolVar(&outReactions, "output-canonical-reactions", false, "write the canonical-reactions trace ordered by IBOT iteration")
	cmd.Flags().StringVar(&upperBound, "upper-bound-on-polymers", "", ".tbnpolys file restricting the computation to specific off-target polymers")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show progress messages")
	return cmd
}

type ibotOptions struct {
	use4ti2      bool
	generateTbn  string
	outputPrefix string
	outReactions bool
	upperBound   string
	verbose      bool
}

func runIbot(config *cfg.Config, tbnFile, onTargetFile string, opts ibotOptions) (err error) {

	if opts.upperBound != "" && opts.generateTbn != "" {
		return chk.Err("--upper-bound-on-polymers cannot be used with --generate-tbn (not all polymer concentrations are known)")
	}
	var genC float64
	var genUnits string
	if opts.generateTbn != "" {
		genC, genUnits, err = parseGenerateTbn(opts.generateTbn)
		if err != nil {
			return
		}
	}

	// parse the TBN; it must not declare concentrations
	if opts.verbose {
		io.Pf("parsing TBN file: %s\n", tbnFile)
	}
	monomers, siteIndex, units, _, err := inp.ParseTBNFile(tbnFile, nil)
	if err != nil {
		return
	}
	if units != "" {
		return chk.Err("TBN file must not contain concentrations (no \\UNITS)")
	}
	tbn, err := model.NewTBN(monomers, siteIndex, units)
	if err != nil {
		return
	}
	err = tbn.CheckStarLimiting()
	if err != nil {
		return
	}

	solver := hilbertSolver(config, opts.use4ti2)
	if !solver.Available() {
		return chk.Err("%s is not available. install it or set the solver path environment variable", solver.Name())
	}
	if opts.verbose {
		io.Pf("using %s for Hilbert basis computation\n", solver.Name())
	}

	// polymer basis
	computer := &basis.Computer{Tbn: tbn, Solver: solver}
	polymers, err := computer.ComputePolymerBasis()
	if err != nil {
		return
	}
	vectors := make([][]int64, len(polymers))
	for i, p := range polymers {
		vectors[i] = p.Counts
	}
	if opts.verbose {
		io.Pf("found %d polymers in the basis\n", len(polymers))
	}

	// canonical reactions
	reactionsComputer := &react.Computer{Tbn: tbn, Solver: solver}
	onTarget, err := reactionsComputer.LoadOnTargetPolymers(onTargetFile, vectors)
	if err != nil {
		return
	}
	if opts.verbose {
		io.Pf("loaded %d on-target polymers\n", len(onTarget))
	}
	reactionsComputer.SetupMatrices(vectors, onTarget)

	var reactions []*react.Reaction
	if opts.upperBound != "" {
		targets, e := loadTargetIndices(opts.upperBound, tbn, vectors)
		if e != nil {
			return e
		}
		reactions, err = reactionsComputer.ComputeIrreducibleForTargets(targets)
	} else {
		reactions, err = reactionsComputer.ComputeIrreducible()
	}
	if err != nil {
		return
	}
	if opts.verbose {
		io.Pf("found %d irreducible canonical reactions\n", len(reactions))
	}

	// on-target polymers must be in detailed balance
	if violator := reactionsComputer.CheckOnTargetDetailedBalance(reactions); violator != nil {
		return chk.Err("on-target polymers not in detailed balance. violating reaction: %s", violator.String())
	}

	// run IBOT
	algo := ibot.New(tbn, vectors, onTarget, reactions)
	result := algo.Run(opts.verbose)

	// outputs
	prefix := opts.outputPrefix
	if prefix == "" {
		prefix = strings.TrimSuffix(tbnFile, filepath.Ext(tbnFile))
	}
	suffix := ""
	if opts.upperBound != "" {
		suffix = "-upper-bounds"
	}
	polysPath := io.Sf("%s-ibot%s.tbnpolys", prefix, suffix)
	err = algo.WritePolysOutput(polysPath, opts.verbose)
	if err != nil {
		return
	}
	if opts.outReactions {
		err = algo.WriteReactionsOutput(io.Sf("%s-ibot%s-reactions.txt", prefix, suffix), opts.verbose)
		if err != nil {
			return
		}
	}
	if opts.generateTbn != "" {
		err = algo.WriteTBNOutput(io.Sf("%s-ibot-c%g.tbn", prefix, genC), genC, genUnits, opts.verbose)
		if err != nil {
			return
		}
	}

	// summary
	uniqueMus := make(map[float64]bool)
	for _, mu := range result {
		uniqueMus[mu] = true
	}
	io.Pf("total polymers: %d\n", len(vectors))
	io.Pf("on-target polymers: %d\n", len(onTarget))
	io.Pf("off-target polymers: %d\n", len(vectors)-len(onTarget))
	io.Pf("unique concentration exponents: %d\n", len(uniqueMus))
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// parseGenerateTbn parses the --generate-tbn value "C,UNIT" (or "C UNIT")
func parseGenerateTbn(spec string) (c float64, units string, err error) {
	parts := strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) != 2 {
		return 0, "", chk.Err("invalid --generate-tbn %q. expected C,UNIT", spec)
	}
	c, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, "", chk.Err("invalid --generate-tbn concentration %q", parts[0])
	}
	units = parts[1]
	err = model.CheckUnit(units)
	if err != nil {
		return 0, "", err
	}
	return
}

// loadTargetIndices parses the upper-bound .tbnpolys file and resolves each
// polymer to its basis index
func loadTargetIndices(path string, tbn *model.TBN, vectors [][]int64) (targets map[int]bool, err error) {
	parsed, err := inp.ParsePolysFile(path, tbn)
	if err != nil {
		return
	}
	targets = make(map[int]bool)
	for _, entries := range parsed {
		counts := inp.PolymerCounts(entries, tbn)
		found := false
		for i, v := range vectors {
			if countsEqual(counts, v) {
				targets[i] = true
				found = true
				break
			}
		}
		if !found {
			io.Pf("warning: target polymer %v not found in polymer basis\n", counts)
		}
	}
	if len(targets) == 0 {
		return nil, chk.Err("no valid target polymers found in polymer basis")
	}
	return
}

func countsEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
