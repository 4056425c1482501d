// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package assets exposes the embedded static web content and view
// templates. The embed.FS is assigned by main, where the go:embed
// directives live.
package assets

import "embed"

// FS holds our static web server content.
var FS embed.FS
