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
	"codeberg.org/funix/storefront/store"
)

func requestWithUserSession(userID string) *http.Request {
	request := newTestRequest(http.MethodGet, "/admin/products", nil)

	rc := request_context.FromRequest(request)
	rc.Session = &session.Session{
		ID:         "abc",
		IsLoggedIn: userID != "",
		UserID:     userID,
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	rc.IsAuthenticated = rc.Session.IsLoggedIn

	return request
}

func TestResolveSkipsAnonymousSessions(t *testing.T) {
	t.Parallel()

	finder := &stubUserFinder{}
	stage := NewIdentityStage(finder, newTestPresenter(t))

	recorder := httptest.NewRecorder()
	request := requestWithUserSession("")
	next := &nextRecorder{}

	stage.Resolve(recorder, request, next)

	assert.True(t, next.called)
	// No user reference means no store round trip at all.
	assert.Equal(t, 0, finder.calls)
	assert.Nil(t, request_context.FromRequest(request).User)
}

func TestResolveDegradesStaleUserToAnonymous(t *testing.T) {
	t.Parallel()

	finder := &stubUserFinder{}
	stage := NewIdentityStage(finder, newTestPresenter(t))

	recorder := httptest.NewRecorder()
	request := requestWithUserSession("507f1f77bcf86cd799439011")
	next := &nextRecorder{}

	stage.Resolve(recorder, request, next)

	assert.True(t, next.called)
	assert.Equal(t, 1, finder.calls)
	assert.Nil(t, request_context.FromRequest(request).User)
}

func TestResolveAbortsOnLookupFailure(t *testing.T) {
	t.Parallel()

	finder := &stubUserFinder{err: errors.New("mongo down")}
	stage := NewIdentityStage(finder, newTestPresenter(t))

	recorder := httptest.NewRecorder()
	request := requestWithUserSession("507f1f77bcf86cd799439011")
	next := &nextRecorder{}

	stage.Resolve(recorder, request, next)

	assert.False(t, next.called)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "view:failure")
}

func TestResolveHydratesUser(t *testing.T) {
	t.Parallel()

	user := &store.User{Email: "shopper@example.com", Name: "Shopper"}
	finder := &stubUserFinder{user: user}
	stage := NewIdentityStage(finder, newTestPresenter(t))

	recorder := httptest.NewRecorder()
	request := requestWithUserSession("507f1f77bcf86cd799439011")
	next := &nextRecorder{}

	stage.Resolve(recorder, request, next)

	require.True(t, next.called)

	rc := request_context.FromRequest(request)
	assert.Same(t, user, rc.User)
	assert.True(t, rc.IsAuthenticated)
}
