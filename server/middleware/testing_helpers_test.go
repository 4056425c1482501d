// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"codeberg.org/funix/storefront/server/request_context"
	"codeberg.org/funix/storefront/server/session"
	"codeberg.org/funix/storefront/server/template"
	"codeberg.org/funix/storefront/store"
)

// newTestViews builds a renderer with minimal stand-ins for the failure
// views so assertions can match on their markers.
func newTestViews(t *testing.T) *template.Renderer {
	t.Helper()

	fsys := fstest.MapFS{
		"assets/views/404.html": {Data: []byte("view:not-found title={{.PageTitle}}")},
		"assets/views/500.html": {Data: []byte("view:failure title={{.PageTitle}}")},
		"assets/views/403.html": {Data: []byte("view:forbidden title={{.PageTitle}}")},
	}

	views, err := template.NewRenderer(fsys)
	require.NoError(t, err)

	return views
}

func newTestPresenter(t *testing.T) *ErrorPresenter {
	t.Helper()

	return NewErrorPresenter(newTestViews(t))
}

// newTestRequest builds a request with an initialized request context, the
// way the first pipeline stage would hand it on.
func newTestRequest(method, target string, body io.Reader) *http.Request {
	r := httptest.NewRequest(method, target, body)

	return r.WithContext(request_context.WithRequestContext(r.Context()))
}

// nextRecorder is the terminal handler for pipeline stage tests; it
// records whether the chain continued.
type nextRecorder struct {
	called bool
}

func (n *nextRecorder) ServeHTTP(http.ResponseWriter, *http.Request) {
	n.called = true
}

// memorySessionStore is an in-memory session.Store with injectable
// failures.
type memorySessionStore struct {
	sessions map[string]*session.Session
	getErr   error
	putErr   error
	puts     int
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]*session.Session)}
}

func (m *memorySessionStore) Get(_ context.Context, id string) (*session.Session, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}

	return m.sessions[id], nil
}

func (m *memorySessionStore) Put(_ context.Context, sess *session.Session) error {
	if m.putErr != nil {
		return m.putErr
	}

	m.puts++
	m.sessions[sess.ID] = sess

	return nil
}

func (m *memorySessionStore) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)

	return nil
}

// stubUserFinder is an in-memory UserFinder that counts lookups.
type stubUserFinder struct {
	user  *store.User
	err   error
	calls int
}

func (s *stubUserFinder) FindByID(context.Context, string) (*store.User, error) {
	s.calls++

	return s.user, s.err
}
