// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"codeberg.org/funix/storefront/server/middleware"
)

// ErrorPages exposes the failure views as routable pages.
type ErrorPages struct {
	presenter *middleware.ErrorPresenter
}

func NewErrorPages(presenter *middleware.ErrorPresenter) *ErrorPages {
	return &ErrorPages{presenter: presenter}
}

// ServerErrorPage renders the failure view on demand so operators can
// inspect it without breaking anything first.
func (h *ErrorPages) ServerErrorPage(w http.ResponseWriter, r *http.Request) error {
	h.presenter.ServerError(w, r)

	return nil
}

// NotFoundPage is the catch-all for unmatched paths. Writing the status
// is enough; the presenter swaps in the not-found view.
func (h *ErrorPages) NotFoundPage(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(http.StatusNotFound)

	return nil
}
