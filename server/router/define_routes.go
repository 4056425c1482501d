// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"fmt"
	"io/fs"
	"net/http"

	"codeberg.org/funix/storefront/server/assets"
	"codeberg.org/funix/storefront/server/middleware"
	"codeberg.org/funix/storefront/server/realtime"
	"codeberg.org/funix/storefront/server/routes"
)

// Handlers bundles the route groups mounted by DefineRoutes.
type Handlers struct {
	Shop     *routes.ShopHandler
	Admin    *routes.AdminHandler
	Auth     *routes.AuthHandler
	Errors   *routes.ErrorPages
	Realtime *realtime.Hub

	Presenter *middleware.ErrorPresenter

	// UploadDirectory is served under /images/ so stored product
	// pictures stay reachable at the path recorded on the listing.
	UploadDirectory string
}

// DefineRoutes sets up all the routes for the application using our custom Router.
//
// It returns a *Router without middleware.
func (router *Router) DefineRoutes(h Handlers) {
	catch := h.Presenter.CatchError

	// Serve stylesheets from the embedded assets.
	router.Handle("GET /css/", fileServer())

	// Uploaded product images live on disk, not in the embed.
	router.Handle("GET /images/", http.StripPrefix("/images/",
		http.FileServer(http.Dir(h.UploadDirectory))))

	// Storefront routes
	// /{$} matches only the root path
	router.HandleFunc("GET /{$}", catch(h.Shop.IndexPage))
	router.HandleFunc("GET /products", catch(h.Shop.ProductsPage))
	router.HandleFunc("GET /products/{id}", catch(h.Shop.ProductDetailPage))

	// Admin routes
	router.HandleFunc("GET /admin/products", catch(h.Admin.ProductsPage))
	router.HandleFunc("GET /admin/add-product", catch(h.Admin.AddProductPage))
	router.HandleFunc("POST /admin/add-product", catch(h.Admin.AddProductSubmit))
	router.HandleFunc("POST /admin/delete-product", catch(h.Admin.DeleteProductSubmit))

	// Auth routes
	router.HandleFunc("GET /login", catch(h.Auth.LoginPage))
	router.HandleFunc("POST /login", catch(h.Auth.LoginSubmit))
	router.HandleFunc("GET /signup", catch(h.Auth.SignupPage))
	router.HandleFunc("POST /signup", catch(h.Auth.SignupSubmit))
	router.HandleFunc("POST /logout", catch(h.Auth.Logout))

	// Diagnostic view of the failure page
	router.HandleFunc("GET /500", catch(h.Errors.ServerErrorPage))

	// Realtime channel. Mounted without the error presenter: the
	// websocket upgrade hijacks the connection and cannot go through a
	// buffered response.
	router.HandleFunc("GET /ws", h.Realtime.HandleConnection)

	// Everything unmatched falls through to the not-found view.
	router.HandleFunc("/", catch(h.Errors.NotFoundPage))
}

// Serve static files from embedded assets.
func fileServer() http.HandlerFunc {
	staticContentFS, err := fs.Sub(assets.FS, "assets")
	if err != nil {
		panic(fmt.Errorf("failed to create sub-filesystem for embedded 'assets' directory: %w", err))
	}

	fileServer := http.FileServer(http.FS(staticContentFS))

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=3600")
		fileServer.ServeHTTP(w, r)
	}
}
