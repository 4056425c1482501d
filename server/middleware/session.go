// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/funix/storefront/server/request_context"
	"codeberg.org/funix/storefront/server/session"
)

// SessionStage resolves the store-backed session for every request.
//
// A request without a cookie, or with a cookie referencing an expired or
// unknown record, gets a fresh anonymous session; neither case is an
// error. Only a store failure aborts the pipeline.
type SessionStage struct {
	store  session.Store
	opts   session.CookieOptions
	ttl    time.Duration
	errors *ErrorPresenter
}

func NewSessionStage(store session.Store, opts session.CookieOptions, ttl time.Duration, errors *ErrorPresenter) *SessionStage {
	return &SessionStage{store: store, opts: opts, ttl: ttl, errors: errors}
}

// Resolve attaches the session to the request context, issues the CSRF
// secret when missing, and writes the session back after the inner
// stages if anything modified it.
//
// The IsAuthenticated flag handed to the rendering layer is copied here,
// from the session as it was loaded; the later identity lookup never
// changes it.
func (s *SessionStage) Resolve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	rc := request_context.FromRequest(r)

	var sess *session.Session

	if id := session.ReadCookie(r, s.opts); id != "" {
		loaded, err := s.store.Get(r.Context(), id)
		if err != nil {
			rc.RequestError = err
			s.errors.ServerError(w, r)

			return
		}

		sess = loaded
	}

	if sess == nil {
		sess = session.New(s.ttl)
	}

	if sess.CSRFSecret == "" {
		secret, err := generateCSRFSecret()
		if err != nil {
			rc.RequestError = err
			s.errors.ServerError(w, r)

			return
		}

		sess.SetCSRFSecret(secret)
	}

	token, err := makeCSRFToken(sess.CSRFSecret)
	if err != nil {
		rc.RequestError = err
		s.errors.ServerError(w, r)

		return
	}

	rc.Session = sess
	rc.IsAuthenticated = sess.IsLoggedIn
	rc.CSRFToken = token

	// The cookie must be issued before the handler writes the response;
	// persisting the record itself can wait until after.
	if sess.IsNew() {
		session.SetCookie(w, sess.ID, sess.ExpiresAt, s.opts)
	}

	next.ServeHTTP(w, r)

	if sess.Dirty() && !sess.Destroyed() {
		if err := s.store.Put(r.Context(), sess); err != nil {
			// The response is already on the wire; all we can do is log.
			log.Err(err).
				Str("session_id", sess.ID).
				Msg("Failed to persist session")

			return
		}

		sess.MarkClean()
	}
}
