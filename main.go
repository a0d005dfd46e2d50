// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// tbnexplorer analyzes thermodynamics of binding networks: it enumerates the
// polymer basis of a TBN, computes equilibrium quantities, filters polymer
// matrices and assigns concentration exponents with the IBOT algorithm
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tbnlab/tbnexplorer2/cfg"
)

func main() {
	root := &cobra.Command{
		Use:          "tbnexplorer",
		Short:        "Analyze Thermodynamics of Binding Networks (TBN) models",
		SilenceUsage: true,
	}
	config := cfg.Load()
	root.AddCommand(analyzeCommand(config))
	root.AddCommand(filterCommand(config))
	root.AddCommand(ibotCommand(config))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
