// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/funix/storefront/server/request_context"
)

const (
	// csrfFieldName is the form field carrying the token on state-changing
	// requests; csrfHeaderName is the alternative for non-form clients.
	csrfFieldName  = "_csrf"
	csrfHeaderName = "X-Csrf-Token"

	csrfSecretBytes = 24
	csrfSaltBytes   = 8
)

// CSRFStage validates anti-forgery tokens on state-changing requests.
//
// One secret lives per session; tokens are salted digests of that secret,
// so every token issued for the current secret keeps validating until the
// session is replaced. Safe methods pass through untouched.
type CSRFStage struct {
	errors *ErrorPresenter
}

func NewCSRFStage(errors *ErrorPresenter) *CSRFStage {
	return &CSRFStage{errors: errors}
}

// Validate short-circuits with a dedicated rejection when the token is
// missing or does not match; the rejection is deliberately not the
// generic failure view.
func (c *CSRFStage) Validate(w http.ResponseWriter, r *http.Request, next http.Handler) {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		next.ServeHTTP(w, r)

		return
	}

	rc := request_context.FromRequest(r)

	if rc.Session == nil {
		c.errors.Forbidden(w, r)

		return
	}

	token := r.PostFormValue(csrfFieldName)
	if token == "" {
		token = r.Header.Get(csrfHeaderName)
	}

	if !verifyCSRFToken(rc.Session.CSRFSecret, token) {
		log.Warn().
			Str("request_id", rc.RequestID).
			Str("path", r.URL.Path).
			Msg("Rejected request with invalid CSRF token")

		c.errors.Forbidden(w, r)

		return
	}

	next.ServeHTTP(w, r)
}

// generateCSRFSecret creates the per-session anti-forgery secret.
func generateCSRFSecret() (string, error) {
	secretBytes := make([]byte, csrfSecretBytes)

	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("failed to generate CSRF secret: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(secretBytes), nil
}

// makeCSRFToken derives a fresh token for the given secret. The salt
// makes tokens differ between renders while all of them stay valid for
// the same secret.
func makeCSRFToken(secret string) (string, error) {
	saltBytes := make([]byte, csrfSaltBytes)

	if _, err := rand.Read(saltBytes); err != nil {
		return "", fmt.Errorf("failed to generate CSRF token salt: %w", err)
	}

	salt := base64.RawURLEncoding.EncodeToString(saltBytes)

	return salt + "." + csrfDigest(salt, secret), nil
}

// verifyCSRFToken recomputes the digest for the token's salt and compares
// in constant time.
func verifyCSRFToken(secret, token string) bool {
	if secret == "" || token == "" {
		return false
	}

	salt, digest, found := strings.Cut(token, ".")
	if !found {
		return false
	}

	expected := csrfDigest(salt, secret)

	return subtle.ConstantTimeCompare([]byte(expected), []byte(digest)) == 1
}

func csrfDigest(salt, secret string) string {
	sum := sha256.Sum256([]byte(salt + "." + secret))

	return base64.RawURLEncoding.EncodeToString(sum[:])
}
