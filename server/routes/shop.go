// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"codeberg.org/funix/storefront/server/template"
)

// ShopHandler serves the public storefront pages.
type ShopHandler struct {
	products ProductCatalog
	views    *template.Renderer
}

func NewShopHandler(products ProductCatalog, views *template.Renderer) *ShopHandler {
	return &ShopHandler{products: products, views: views}
}

// IndexPage renders the landing page with all listings.
func (h *ShopHandler) IndexPage(w http.ResponseWriter, r *http.Request) error {
	products, err := h.products.FindAll(r.Context())
	if err != nil {
		return err
	}

	return h.views.Render(w, http.StatusOK, "index.html",
		template.Page(r, "Shop", products))
}

// ProductsPage renders the product list.
func (h *ShopHandler) ProductsPage(w http.ResponseWriter, r *http.Request) error {
	products, err := h.products.FindAll(r.Context())
	if err != nil {
		return err
	}

	return h.views.Render(w, http.StatusOK, "product-list.html",
		template.Page(r, "All Products", products))
}

// ProductDetailPage renders a single listing.
func (h *ShopHandler) ProductDetailPage(w http.ResponseWriter, r *http.Request) error {
	product, err := h.products.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}

	if product == nil {
		// The presenter turns this into the not-found view.
		w.WriteHeader(http.StatusNotFound)

		return nil
	}

	return h.views.Render(w, http.StatusOK, "product-detail.html",
		template.Page(r, product.Title, product))
}
