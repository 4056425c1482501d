// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"

	"github.com/rs/zerolog/log"

	"codeberg.org/funix/storefront/core/audit"
	"codeberg.org/funix/storefront/server/request_context"
	"codeberg.org/funix/storefront/server/template"
)

// ErrorPresenter is the single point that converts request failures into
// user-visible responses. Three terminal outcomes exist: the not-found
// view, the generic failure view, and the CSRF rejection; terminal states
// never chain into each other.
type ErrorPresenter struct {
	views *template.Renderer
}

func NewErrorPresenter(views *template.Renderer) *ErrorPresenter {
	return &ErrorPresenter{views: views}
}

// CatchError wraps HTTP handlers that return an error, providing
// centralized error handling, response buffering, and request logging.
//
// It operates as follows:
//  1. It times the request for logging purposes.
//  2. It wraps the execution of the given handler, which has the
//     signature `func(w http.ResponseWriter, r *http.Request) error`.
//     The handler's output is buffered using an httptest.ResponseRecorder.
//  3. Any error returned by the handler (or a recovered panic) is stored
//     in the request context.
//
// After the handler runs, it decides on the final response:
//   - If the handler returned an error without writing an HTTP error
//     status code (i.e., status < 400), it's treated as an unhandled
//     internal error. The buffered response is discarded, and the generic
//     failure view is rendered.
//   - If the handler wrote a 404 Not Found status, the buffered response
//     is also discarded and replaced with the not-found view.
//   - In all other cases (e.g., a successful response), the buffered
//     response is written to the client.
//
// Finally, it logs the completed request details (status, duration,
// error, request id) via the audit package.
func (p *ErrorPresenter) CatchError(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := request_context.FromRequest(r)

		span := audit.Span{
			RequestID: rc.RequestID,
			Method:    r.Method,
			URL:       r.URL.String(),
		}

		_ = span.Begin(r.Context())
		defer span.End()

		recorder := httptest.NewRecorder()

		// Execute the handler, capturing its output, any returned error,
		// and any panic raised along the way.
		err := func() (err error) {
			defer func() {
				if recovered := recover(); recovered != nil {
					err = fmt.Errorf("handler panicked: %v", recovered)
				}
			}()

			return handler(recorder, r)
		}()

		rc.RequestError = err

		switch {
		case err != nil && recorder.Code < http.StatusBadRequest:
			// An unhandled error. Discard the recorder's contents and
			// render the generic failure view.
			rc.StatusCode = http.StatusInternalServerError
			p.ServerError(w, r)

		case recorder.Code == http.StatusNotFound:
			rc.StatusCode = http.StatusNotFound
			p.NotFound(w, r)

		default:
			// This is a successful response or a handled error. We trust
			// the recorder's output.
			if recorder.Code == 0 {
				recorder.Code = http.StatusOK
			}

			rc.StatusCode = recorder.Code
			maps.Copy(w.Header(), recorder.Header())
			w.WriteHeader(recorder.Code)

			if _, err := recorder.Body.WriteTo(w); err != nil {
				log.Err(err).Msg("Failed to write response body")
			}
		}

		span.StatusCode = rc.StatusCode
		span.Error = rc.RequestError

		span.Log()
	}
}

// NotFound renders the not-found view. Terminal.
func (p *ErrorPresenter) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	rc := request_context.FromRequest(r)
	rc.StatusCode = http.StatusNotFound

	data := template.Page(r, "Page Not Found", nil)

	if err := p.views.Render(w, http.StatusNotFound, "404.html", data); err != nil {
		log.Err(err).Msg("Failed to render the not-found page")
	}
}

// ServerError renders the generic failure view with a fixed status.
// Terminal: no stack traces, no differentiated messaging by error kind.
func (p *ErrorPresenter) ServerError(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	rc := request_context.FromRequest(r)
	rc.StatusCode = http.StatusInternalServerError

	if rc.RequestError != nil {
		log.Err(rc.RequestError).
			Str("request_id", rc.RequestID).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}

	data := template.Page(r, "Error!", nil)
	data.Path = "/500"

	if err := p.views.Render(w, http.StatusInternalServerError, "500.html", data); err != nil {
		log.Err(err).Msg("Failed to render the failure page")
	}
}

// Forbidden renders the CSRF rejection. A dedicated response so that a
// token mismatch stays distinguishable from a generic server error.
func (p *ErrorPresenter) Forbidden(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	rc := request_context.FromRequest(r)
	rc.StatusCode = http.StatusForbidden

	data := template.Page(r, "Forbidden", nil)

	if err := p.views.Render(w, http.StatusForbidden, "403.html", data); err != nil {
		log.Err(err).Msg("Failed to render the forbidden page")
	}
}
