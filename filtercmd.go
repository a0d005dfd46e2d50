// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"

	"github.com/tbnlab/tbnexplorer2/cfg"
	"github.com/tbnlab/tbnexplorer2/filter"
)

// filterCommand builds the "filter" subcommand: querying the polymer matrix
// adjacent to a .tbn file by monomer names or a constraints file
func filterCommand(config *cfg.Config) *cobra.Command {
	var (
		num             int
		percentLimit    float64
		constraintsFile string
	)
	cmd := &cobra.Command{
		Use:   "filter <tbn> [names...]",
		Short: "Filter polymers from a .tbnpolymat file by monomer names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			tbnFile := args[0]
			names := args[1:]

			if constraintsFile != "" && len(names) > 0 {
				return chk.Err("cannot specify monomer names on the command line when using --constraints-file")
			}
			hasPercent := cmd.Flags().Changed("percent-limit")
			if hasPercent && (percentLimit < 0 || percentLimit > 100) {
				return chk.Err("--percent-limit must be between 0 and 100")
			}
			if num < 1 {
				return chk.Err("--num must be at least 1")
			}

			f, err := filter.New(tbnFile)
			if err != nil {
				return
			}
			var matches []filter.Match
			if constraintsFile != "" {
				matches, err = f.ByConstraintsFile(constraintsFile, percentLimit, hasPercent, num)
				if err != nil {
					return
				}
			} else {
				matches = f.ByMonomers(names, percentLimit, hasPercent, num)
			}
			io.Pf("%s\n", f.FormatOutput(matches, names, percentLimit, hasPercent, num))
			return
		},
	}
	cmd.Flags().IntVarP(&num, "num", "n", 100, "maximum number of polymers to output")
	cmd.Flags().Float64VarP(&percentLimit, "percent-limit", "p", 0, "only show polymers above this percentage of the total concentration")
	cmd.Flags().StringVar(&constraintsFile, "constraints-file", "", "file with CONTAINS/EXACTLY filtering constraints")
	return cmd
}
