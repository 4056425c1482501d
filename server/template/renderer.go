// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package template renders named view templates with a per-page variable
bag.

Every page receives the same envelope (title, path, authentication state,
CSRF token, flash messages) plus page-specific data, so templates never
reach into the request themselves.
*/
package template

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"net/http"

	"codeberg.org/funix/storefront/server/request_context"
)

// PageData is the variable bag handed to every view template.
type PageData struct {
	PageTitle       string
	Path            string
	IsAuthenticated bool
	CSRFToken       string
	Flash           []string
	Data            any
}

// Renderer executes named view templates.
type Renderer struct {
	templates *htmltemplate.Template
}

// NewRenderer parses all view templates from the given filesystem.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	funcs := htmltemplate.FuncMap{
		"currency": func(price float64) string {
			return fmt.Sprintf("$%.2f", price)
		},
	}

	templates, err := htmltemplate.New("views").Funcs(funcs).ParseFS(fsys, "assets/views/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse view templates: %w", err)
	}

	return &Renderer{templates: templates}, nil
}

// Render executes the named template and writes it with the given status.
//
// The body is buffered first so a template failure never produces a
// half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data PageData) error {
	var buf bytes.Buffer

	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render template %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write template %q: %w", name, err)
	}

	return nil
}

// Page builds the common envelope for a request: path, authentication
// flag and CSRF token from the request context, plus any pending flash
// messages (popped here, so they render exactly once).
func Page(req *http.Request, title string, data any) PageData {
	rc := request_context.FromRequest(req)

	page := PageData{
		PageTitle:       title,
		Path:            req.URL.Path,
		IsAuthenticated: rc.IsAuthenticated,
		CSRFToken:       rc.CSRFToken,
		Data:            data,
	}

	if rc.Session != nil {
		page.Flash = rc.Session.PopFlash()
	}

	return page
}
