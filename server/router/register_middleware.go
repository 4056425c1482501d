// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"codeberg.org/funix/storefront/server/middleware"
)

// Stages holds the stateful pipeline stages registered on the router.
type Stages struct {
	Upload   *middleware.UploadStage
	Session  *middleware.SessionStage
	CSRF     *middleware.CSRFStage
	Identity *middleware.IdentityStage
}

func (router *Router) RegisterMiddleware(s Stages) {
	// the first middleware is the most outer / first executed one
	router.Use(middleware.WithServerTiming)
	router.Use(middleware.WithRequestContext) // needed for everything else
	router.Use(s.Upload.Intercept)            // must see the body before CSRF reads the form
	router.Use(s.Session.Resolve)
	router.Use(s.CSRF.Validate)
	router.Use(s.Identity.Resolve)
}
