// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"context"
	"net/http"

	"codeberg.org/funix/storefront/server/request_context"
	"codeberg.org/funix/storefront/store"
)

// UserFinder is the identity lookup consumed by the pipeline. A miss is
// (nil, nil); only store failures return errors.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*store.User, error)
}

// IdentityStage hydrates the full user record for sessions that carry a
// user reference.
//
// This is the only stage in the pipeline with a true error edge: a store
// failure aborts the request rather than continuing to routing with a
// half-resolved identity. A stale reference (record deleted since the
// session was issued) degrades to anonymous instead.
type IdentityStage struct {
	users  UserFinder
	errors *ErrorPresenter
}

func NewIdentityStage(users UserFinder, errors *ErrorPresenter) *IdentityStage {
	return &IdentityStage{users: users, errors: errors}
}

// Resolve attaches the user record to the request context, or continues
// anonymously when there is nothing to resolve.
func (s *IdentityStage) Resolve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	rc := request_context.FromRequest(r)

	if rc.Session == nil || rc.Session.UserID == "" {
		next.ServeHTTP(w, r)

		return
	}

	user, err := s.users.FindByID(r.Context(), rc.Session.UserID)
	if err != nil {
		rc.RequestError = err
		s.errors.ServerError(w, r)

		return
	}

	if user == nil {
		// Deleted account; the request proceeds as anonymous.
		next.ServeHTTP(w, r)

		return
	}

	rc.User = user

	next.ServeHTTP(w, r)
}
