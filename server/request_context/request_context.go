// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package request_context provides per-request state management for HTTP
handlers.

This package is separate because Go disallows a cyclic import graph.
*/
package request_context

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"codeberg.org/funix/storefront/server/session"
	"codeberg.org/funix/storefront/store"
)

// UploadedFile describes a file accepted by the upload interceptor.
// Rejected files leave no trace here.
type UploadedFile struct {
	FieldName    string
	OriginalName string
	Path         string
}

// RequestContext carries request-scoped data through the middleware chain.
//
// This data survives the entire lifetime of a single HTTP request and is
// discarded when the response is finalized. Nothing in it crosses
// requests.
type RequestContext struct {
	// RequestID is an identifier for tracing requests.
	RequestID string

	// Session is attached by the session stage; never nil after it ran.
	Session *session.Session

	// User is the hydrated account record, nil for anonymous requests.
	User *store.User

	// IsAuthenticated mirrors the session's IsLoggedIn flag as it was at
	// session-resolution time. The rendering layer must see this value,
	// not the outcome of the later identity lookup.
	IsAuthenticated bool

	// CSRFToken is the token exposed to the rendering layer.
	CSRFToken string

	// UploadedFile is set when the upload interceptor accepted a file.
	UploadedFile *UploadedFile

	// Holds any critical error encountered during request processing.
	//
	// Populated by the error presenter when handlers return errors, which
	// interrupts normal response handling and renders an error page
	// instead.
	RequestError error

	// HTTP status code to be sent in the response. Defaults to 200 OK.
	StatusCode int
}

// requestContextKeyType defines a unique type for a RequestContext key.
type requestContextKeyType struct{}

var requestContextKey = requestContextKeyType{}

// WithRequestContext initializes a new request context and attaches it to
// the parent context.
//
// This is called once per request, first in the middleware chain.
func WithRequestContext(ctx context.Context) context.Context {
	rc := RequestContext{
		RequestID:  uuid.NewString(),
		StatusCode: http.StatusOK,
	}

	return context.WithValue(ctx, requestContextKey, &rc)
}

// FromContext extracts the RequestContext from a context, always returning
// a valid pointer.
//
// If no context is found, returns a zero-value instance.
func FromContext(ctx context.Context) *RequestContext {
	if v := ctx.Value(requestContextKey); v != nil {
		if rc, ok := v.(*RequestContext); ok {
			return rc
		}
	}

	return &RequestContext{StatusCode: http.StatusOK}
}

// FromRequest is a convenience wrapper for extracting RequestContext
// directly from HTTP requests.
//
// Prefer this in handlers that have access to the *http.Request object.
func FromRequest(r *http.Request) *RequestContext {
	return FromContext(r.Context())
}
