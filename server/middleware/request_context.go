// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"

	"codeberg.org/funix/storefront/server/request_context"
)

// WithRequestContext is a middleware that attaches a fresh RequestContext
// to each HTTP request. It must run before every stage that reads or
// writes request-scoped state.
func WithRequestContext(w http.ResponseWriter, r *http.Request, next http.Handler) {
	next.ServeHTTP(w, r.WithContext(request_context.WithRequestContext(r.Context())))
}
