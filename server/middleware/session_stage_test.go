// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/funix/storefront/server/request_context"
	"codeberg.org/funix/storefront/server/session"
)

const testSessionTTL = time.Hour

func testCookieOptions() session.CookieOptions {
	return session.CookieOptions{Name: "session_id"}
}

func TestResolveCreatesFreshSession(t *testing.T) {
	t.Parallel()

	sessions := newMemorySessionStore()
	stage := NewSessionStage(sessions, testCookieOptions(), testSessionTTL, newTestPresenter(t))

	recorder := httptest.NewRecorder()
	request := newTestRequest(http.MethodGet, "/", nil)
	next := &nextRecorder{}

	Wrap(stage.Resolve, next)(recorder, request)

	require.True(t, next.called)

	rc := request_context.FromRequest(request)
	require.NotNil(t, rc.Session)
	assert.False(t, rc.IsAuthenticated)
	assert.NotEmpty(t, rc.Session.CSRFSecret)

	// The issued token must validate against the session's secret.
	assert.True(t, verifyCSRFToken(rc.Session.CSRFSecret, rc.CSRFToken))

	// A fresh session gets its cookie immediately and is persisted after
	// the inner stages ran (the secret issuance dirtied it).
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_id", cookies[0].Name)
	assert.Equal(t, rc.Session.ID, cookies[0].Value)
	assert.Equal(t, 1, sessions.puts)
}

func TestResolveLoadsExistingSession(t *testing.T) {
	t.Parallel()

	sessions := newMemorySessionStore()
	existing := &session.Session{
		ID:         "abc",
		IsLoggedIn: true,
		UserID:     "507f1f77bcf86cd799439011",
		CSRFSecret: "secret",
		ExpiresAt:  time.Now().Add(testSessionTTL),
	}
	sessions.sessions[existing.ID] = existing

	stage := NewSessionStage(sessions, testCookieOptions(), testSessionTTL, newTestPresenter(t))

	recorder := httptest.NewRecorder()
	request := newTestRequest(http.MethodGet, "/admin/products", nil)
	request.AddCookie(&http.Cookie{Name: "session_id", Value: "abc"})

	next := &nextRecorder{}

	stage.Resolve(recorder, request, next)

	require.True(t, next.called)

	rc := request_context.FromRequest(request)
	assert.Same(t, existing, rc.Session)
	assert.True(t, rc.IsAuthenticated)

	// Nothing changed, so no cookie re-issue and no write-back.
	assert.Empty(t, recorder.Result().Cookies())
	assert.Equal(t, 0, sessions.puts)
}

func TestResolveAbortsOnStoreFailure(t *testing.T) {
	t.Parallel()

	sessions := newMemorySessionStore()
	sessions.getErr = errors.New("mongo down")

	stage := NewSessionStage(sessions, testCookieOptions(), testSessionTTL, newTestPresenter(t))

	recorder := httptest.NewRecorder()
	request := newTestRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: "session_id", Value: "abc"})

	next := &nextRecorder{}

	stage.Resolve(recorder, request, next)

	assert.False(t, next.called)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "view:failure")
}

func TestResolveSkipsWriteBackAfterDestroy(t *testing.T) {
	t.Parallel()

	sessions := newMemorySessionStore()
	stage := NewSessionStage(sessions, testCookieOptions(), testSessionTTL, newTestPresenter(t))

	recorder := httptest.NewRecorder()
	request := newTestRequest(http.MethodPost, "/logout", nil)

	// The logout handler destroys the session; a destroyed session must
	// not be resurrected by the post-handler write-back.
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request_context.FromRequest(r).Session.Destroy()
	})

	stage.Resolve(recorder, request, next)

	assert.Equal(t, 0, sessions.puts)
}

func TestResolvePersistsHandlerMutations(t *testing.T) {
	t.Parallel()

	sessions := newMemorySessionStore()
	existing := &session.Session{
		ID:         "abc",
		CSRFSecret: "secret",
		ExpiresAt:  time.Now().Add(testSessionTTL),
	}
	sessions.sessions[existing.ID] = existing

	stage := NewSessionStage(sessions, testCookieOptions(), testSessionTTL, newTestPresenter(t))

	recorder := httptest.NewRecorder()
	request := newTestRequest(http.MethodPost, "/login", nil)
	request.AddCookie(&http.Cookie{Name: "session_id", Value: "abc"})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request_context.FromRequest(r).Session.Login("507f1f77bcf86cd799439011")
	})

	stage.Resolve(recorder, request, next)

	assert.Equal(t, 1, sessions.puts)
	assert.True(t, sessions.sessions["abc"].IsLoggedIn)
	assert.False(t, existing.Dirty())
}
