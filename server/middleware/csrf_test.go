// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/funix/storefront/server/request_context"
	"codeberg.org/funix/storefront/server/session"
)

// withSession attaches a session carrying the given secret to the
// request context, as the session stage would have.
func withSession(r *http.Request, secret string) {
	rc := request_context.FromRequest(r)
	rc.Session = &session.Session{
		ID:         "abc",
		CSRFSecret: secret,
		ExpiresAt:  time.Now().Add(time.Hour),
	}
}

func TestValidateSkipsSafeMethods(t *testing.T) {
	t.Parallel()

	stage := NewCSRFStage(newTestPresenter(t))

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		recorder := httptest.NewRecorder()
		request := newTestRequest(method, "/products", nil)
		next := &nextRecorder{}

		Wrap(stage.Validate, next)(recorder, request)

		assert.True(t, next.called, "method %s must pass without a token", method)
	}
}

func TestValidateRejectsMissingToken(t *testing.T) {
	t.Parallel()

	stage := NewCSRFStage(newTestPresenter(t))

	recorder := httptest.NewRecorder()
	request := newTestRequest(http.MethodPost, "/admin/add-product", nil)
	withSession(request, "secret")

	next := &nextRecorder{}

	stage.Validate(recorder, request, next)

	assert.False(t, next.called)
	// A token mismatch is a rejection, never the generic failure view.
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "view:forbidden")
}

func TestValidateRejectsWithoutSession(t *testing.T) {
	t.Parallel()

	stage := NewCSRFStage(newTestPresenter(t))

	recorder := httptest.NewRecorder()
	request := newTestRequest(http.MethodPost, "/login", nil)
	next := &nextRecorder{}

	stage.Validate(recorder, request, next)

	assert.False(t, next.called)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestValidateAcceptsFormToken(t *testing.T) {
	t.Parallel()

	stage := NewCSRFStage(newTestPresenter(t))

	secret, err := generateCSRFSecret()
	require.NoError(t, err)

	token, err := makeCSRFToken(secret)
	require.NoError(t, err)

	form := url.Values{"_csrf": {token}}
	request := newTestRequest(http.MethodPost, "/logout", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	withSession(request, secret)

	recorder := httptest.NewRecorder()
	next := &nextRecorder{}

	stage.Validate(recorder, request, next)

	assert.True(t, next.called)
}

func TestValidateAcceptsHeaderToken(t *testing.T) {
	t.Parallel()

	stage := NewCSRFStage(newTestPresenter(t))

	secret, err := generateCSRFSecret()
	require.NoError(t, err)

	token, err := makeCSRFToken(secret)
	require.NoError(t, err)

	request := newTestRequest(http.MethodPost, "/logout", nil)
	request.Header.Set("X-Csrf-Token", token)
	withSession(request, secret)

	recorder := httptest.NewRecorder()
	next := &nextRecorder{}

	stage.Validate(recorder, request, next)

	assert.True(t, next.called)
}

func TestTokensStayValidPerSecret(t *testing.T) {
	t.Parallel()

	secret, err := generateCSRFSecret()
	require.NoError(t, err)

	// Two renders issue two distinct tokens; both validate against the
	// same session secret.
	first, err := makeCSRFToken(secret)
	require.NoError(t, err)

	second, err := makeCSRFToken(secret)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, verifyCSRFToken(secret, first))
	assert.True(t, verifyCSRFToken(secret, second))
}

func TestVerifyCSRFToken(t *testing.T) {
	t.Parallel()

	secret, err := generateCSRFSecret()
	require.NoError(t, err)

	token, err := makeCSRFToken(secret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
		want   bool
	}{
		{name: "valid", secret: secret, token: token, want: true},
		{name: "wrong secret", secret: "other", token: token, want: false},
		{name: "empty token", secret: secret, token: "", want: false},
		{name: "no separator", secret: secret, token: "garbage", want: false},
		{name: "empty secret", secret: "", token: token, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, verifyCSRFToken(tt.secret, tt.token))
		})
	}
}
