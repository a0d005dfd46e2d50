// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cfg reads environment-derived configuration: the paths to the
// external Hilbert-basis and equilibrium solver executables
package cfg

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the solver paths. It is read once at process start and passed
// explicitly to the components that spawn solvers
type Config struct {
	NormalizPath  string // Normaliz executable
	FourTiTwoPath string // 4ti2 installation directory (with bin/hilbert, bin/zsolve)
	CoffeePath    string // COFFEE CLI executable
	NupackPath    string // NUPACK concentrations executable
}

// Load reads the configuration from the process environment. An adjacent
// .env file of KEY=VALUE lines is honored only for keys the environment does
// not already define
func Load() (o *Config) {
	godotenv.Load() // missing .env file is fine; existing env vars win
	o = &Config{
		NormalizPath:  getenv("NORMALIZ_PATH", "normaliz"),
		FourTiTwoPath: getenv("FOURTI2_PATH", "4ti2"),
		CoffeePath:    getenv("COFFEE_CLI_PATH", "coffee-cli"),
		NupackPath:    getenv("NUPACK_CONCENTRATIONS_PATH", "concentrations"),
	}
	return
}

func getenv(key, dflt string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return dflt
}
