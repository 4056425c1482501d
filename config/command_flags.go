// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "flag"

// parseCommandLineArgs parses command-line flags and returns the value of
// the -config flag.
func parseCommandLineArgs() string {
	configFilePath := flag.String("config", "./config.yaml", "Path to the YAML configuration file")

	flag.Parse()

	return *configFilePath
}
