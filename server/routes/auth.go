// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"codeberg.org/funix/storefront/server/request_context"
	"codeberg.org/funix/storefront/server/session"
	"codeberg.org/funix/storefront/server/template"
	"codeberg.org/funix/storefront/store"
)

const bcryptCost = 12

// AuthHandler owns the authentication route group: login, signup,
// logout. It is the only code that mutates sessions and user records.
type AuthHandler struct {
	users    UserAccounts
	sessions session.Store
	cookies  session.CookieOptions
	views    *template.Renderer
}

func NewAuthHandler(users UserAccounts, sessions session.Store, cookies session.CookieOptions, views *template.Renderer) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, cookies: cookies, views: views}
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Cache-Control", "no-store")

	return h.views.Render(w, http.StatusOK, "login.html",
		template.Page(r, "Login", nil))
}

// LoginSubmit validates credentials and binds the session to the user.
// A failed attempt flashes a message and returns to the form; the
// response never says whether the email or the password was wrong.
func (h *AuthHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) error {
	rc := request_context.FromRequest(r)

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		return err
	}

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		rc.Session.AddFlash("Invalid email or password.")
		http.Redirect(w, r, "/login", http.StatusFound)

		return nil
	}

	rc.Session.Login(user.ID.Hex())
	http.Redirect(w, r, "/", http.StatusFound)

	return nil
}

// SignupPage renders the signup form.
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Cache-Control", "no-store")

	return h.views.Render(w, http.StatusOK, "signup.html",
		template.Page(r, "Signup", nil))
}

// SignupSubmit creates an account with a bcrypt-hashed password.
func (h *AuthHandler) SignupSubmit(w http.ResponseWriter, r *http.Request) error {
	rc := request_context.FromRequest(r)

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	name := r.PostFormValue("name")

	existing, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		return err
	}

	if existing != nil {
		rc.Session.AddFlash("E-Mail exists already, please pick a different one.")
		http.Redirect(w, r, "/signup", http.StatusFound)

		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}

	if _, err := h.users.Insert(r.Context(), &store.User{
		Email:    email,
		Password: string(hashed),
		Name:     name,
	}); err != nil {
		return err
	}

	http.Redirect(w, r, "/login", http.StatusFound)

	return nil
}

// Logout destroys the session record and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	rc := request_context.FromRequest(r)

	if rc.Session != nil && !rc.Session.IsNew() {
		if err := h.sessions.Delete(r.Context(), rc.Session.ID); err != nil {
			return err
		}
	}

	if rc.Session != nil {
		rc.Session.Destroy()
	}

	session.ClearCookie(w, h.cookies)
	http.Redirect(w, r, "/", http.StatusFound)

	return nil
}
