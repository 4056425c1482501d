// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetDefaultLogger provides an ok log output format on startup before the
// configuration is loaded: a console writer when stderr is a terminal,
// plain JSON otherwise.
func SetDefaultLogger() {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// Configure applies the configured log level and format.
func Configure(level, format string) {
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.Warn().
			Str("level", level).
			Msg("Unknown log level, keeping the current one")
	} else {
		zerolog.SetGlobalLevel(parsedLevel)
	}

	switch format {
	case "console":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	case "json":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		log.Warn().
			Str("format", format).
			Msg("Unknown log format, keeping the current one")
	}
}
