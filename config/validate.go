// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"
)

// validation errors.
var (
	errMissingDatabaseUser     = errors.New("database user is not set (MONGO_USER)")
	errMissingDatabasePassword = errors.New("database password is not set (MONGO_PASSWORD)")
	errMissingDatabaseName     = errors.New("database name is not set (MONGO_DATABASE)")
	errInvalidPort             = errors.New("listener port must be numeric")
	errEmptyUploadDirectory    = errors.New("upload directory cannot be empty")
	errEmptyUploadFieldName    = errors.New("upload field name cannot be empty")
	errEmptyCookieName         = errors.New("session cookie name cannot be empty")
	errNonPositiveSessionTTL   = errors.New("session TTL must be positive")
)

var digitsRegexp = regexp.MustCompile(`^[0-9]+$`)

// validate checks the configuration for values the server cannot start
// without. Credential checks are skipped when a full connection URI was
// supplied directly.
func (cfg *ServerConfig) validate() error {
	if cfg.Basic.Port == "" {
		cfg.Basic.Port = "3000"

		log.Info().
			Str("port", cfg.Basic.Port).
			Msg("Using default port")
	}

	if !digitsRegexp.MatchString(cfg.Basic.Port) {
		return fmt.Errorf("%w: %q", errInvalidPort, cfg.Basic.Port)
	}

	if cfg.Database.RawURI == "" {
		if cfg.Database.User == "" {
			return errMissingDatabaseUser
		}

		if cfg.Database.Password == "" {
			return errMissingDatabasePassword
		}
	}

	// The database is selected by name even when a full URI is supplied.
	if cfg.Database.Name == "" {
		return errMissingDatabaseName
	}

	if cfg.Upload.Directory == "" {
		return errEmptyUploadDirectory
	}

	if cfg.Upload.FieldName == "" {
		return errEmptyUploadFieldName
	}

	if cfg.Session.CookieName == "" {
		return errEmptyCookieName
	}

	if cfg.Session.TTL <= 0 {
		return errNonPositiveSessionTTL
	}

	return nil
}
