// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"
	"strconv"

	"codeberg.org/funix/storefront/server/request_context"
	"codeberg.org/funix/storefront/server/template"
	"codeberg.org/funix/storefront/store"
)

// EventBroadcaster pushes storefront events to connected clients.
type EventBroadcaster interface {
	Broadcast(event string, payload any)
}

// AdminHandler owns the administrative route group. Every page requires
// a resolved user; anonymous visitors are sent to the login form.
type AdminHandler struct {
	products ProductCatalog
	events   EventBroadcaster
	views    *template.Renderer
}

func NewAdminHandler(products ProductCatalog, events EventBroadcaster, views *template.Renderer) *AdminHandler {
	return &AdminHandler{products: products, events: events, views: views}
}

// requireUser redirects anonymous requests to /login. Returns false when
// the caller should stop.
func requireUser(w http.ResponseWriter, r *http.Request) bool {
	if request_context.FromRequest(r).User == nil {
		http.Redirect(w, r, "/login", http.StatusFound)

		return false
	}

	return true
}

// ProductsPage lists the listings owned by the current user.
func (h *AdminHandler) ProductsPage(w http.ResponseWriter, r *http.Request) error {
	if !requireUser(w, r) {
		return nil
	}

	rc := request_context.FromRequest(r)

	products, err := h.products.FindByUser(r.Context(), rc.User.ID)
	if err != nil {
		return err
	}

	return h.views.Render(w, http.StatusOK, "admin-products.html",
		template.Page(r, "Admin Products", products))
}

// AddProductPage renders the listing form.
func (h *AdminHandler) AddProductPage(w http.ResponseWriter, r *http.Request) error {
	if !requireUser(w, r) {
		return nil
	}

	return h.views.Render(w, http.StatusOK, "edit-product.html",
		template.Page(r, "Add Product", nil))
}

// AddProductSubmit creates a listing from the form and the file accepted
// by the upload interceptor. A dropped upload (wrong type, or none sent)
// flashes a message and returns to the form.
func (h *AdminHandler) AddProductSubmit(w http.ResponseWriter, r *http.Request) error {
	if !requireUser(w, r) {
		return nil
	}

	rc := request_context.FromRequest(r)

	if rc.UploadedFile == nil {
		rc.Session.AddFlash("Attached file is not an image.")
		http.Redirect(w, r, "/admin/add-product", http.StatusFound)

		return nil
	}

	price, err := strconv.ParseFloat(r.PostFormValue("price"), 64)
	if err != nil {
		rc.Session.AddFlash("Price must be a number.")
		http.Redirect(w, r, "/admin/add-product", http.StatusFound)

		return nil
	}

	product := &store.Product{
		Title:       r.PostFormValue("title"),
		Price:       price,
		Description: r.PostFormValue("description"),
		ImagePath:   rc.UploadedFile.Path,
		UserID:      rc.User.ID,
	}

	if err := h.products.Insert(r.Context(), product); err != nil {
		return err
	}

	h.events.Broadcast("product-added", map[string]string{"title": product.Title})

	http.Redirect(w, r, "/admin/products", http.StatusFound)

	return nil
}

// DeleteProductSubmit removes a listing owned by the current user.
func (h *AdminHandler) DeleteProductSubmit(w http.ResponseWriter, r *http.Request) error {
	if !requireUser(w, r) {
		return nil
	}

	rc := request_context.FromRequest(r)

	if err := h.products.Delete(r.Context(), r.PostFormValue("productId"), rc.User.ID); err != nil {
		return err
	}

	http.Redirect(w, r, "/admin/products", http.StatusFound)

	return nil
}
