// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "time"

const (
	// Default session lifetime in days, matching the session store's
	// two-week expiry window.
	defaultSessionTTLDays = 14

	// Default database connect timeout in seconds.
	defaultConnectTimeoutSeconds = 10
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	cfg.Basic.Host = ""
	cfg.Basic.Port = "3000"

	cfg.Database.ClusterHost = "clusterfunix.togdz.mongodb.net"
	cfg.Database.ConnectTimeout = defaultConnectTimeoutSeconds * time.Second

	cfg.Session.CookieName = "session_id"
	cfg.Session.TTL = defaultSessionTTLDays * 24 * time.Hour

	cfg.Upload.Directory = "images"
	cfg.Upload.FieldName = "image"

	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
}
