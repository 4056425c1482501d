// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"codeberg.org/funix/storefront/server/request_context"
	"codeberg.org/funix/storefront/server/session"
	"codeberg.org/funix/storefront/server/template"
	"codeberg.org/funix/storefront/store"
)

// newTestViews parses minimal stand-ins for every view the route groups
// render, each emitting a recognizable marker.
func newTestViews(t *testing.T) *template.Renderer {
	t.Helper()

	pages := []string{
		"index.html", "product-list.html", "product-detail.html",
		"login.html", "signup.html", "admin-products.html", "edit-product.html",
		"404.html", "500.html", "403.html",
	}

	fsys := fstest.MapFS{}
	for _, page := range pages {
		fsys["assets/views/"+page] = &fstest.MapFile{
			Data: []byte("view:" + page + " title={{.PageTitle}}"),
		}
	}

	views, err := template.NewRenderer(fsys)
	require.NoError(t, err)

	return views
}

// newShopRequest builds a request carrying a request context and an
// anonymous session, the way the pipeline hands it to a route handler.
func newShopRequest(method, target string, form map[string]string) *http.Request {
	request := httptest.NewRequest(method, target, nil)
	request = request.WithContext(request_context.WithRequestContext(request.Context()))

	if form != nil {
		request.PostForm = map[string][]string{}
		for key, value := range form {
			request.PostForm.Set(key, value)
		}
	}

	rc := request_context.FromRequest(request)
	rc.Session = session.New(time.Hour)
	rc.Session.MarkClean()

	return request
}

// asUser attaches a hydrated user to the request, as the identity stage
// would for a logged-in session.
func asUser(request *http.Request, user *store.User) {
	rc := request_context.FromRequest(request)
	rc.User = user
	rc.IsAuthenticated = true
	rc.Session.IsLoggedIn = true
	rc.Session.UserID = user.ID.Hex()
}

// fakeCatalog is an in-memory ProductCatalog.
type fakeCatalog struct {
	products []store.Product
	err      error

	inserted []*store.Product
	deleted  []string
}

func (f *fakeCatalog) FindAll(context.Context) ([]store.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalog) FindByUser(_ context.Context, userID primitive.ObjectID) ([]store.Product, error) {
	if f.err != nil {
		return nil, f.err
	}

	var owned []store.Product

	for _, product := range f.products {
		if product.UserID == userID {
			owned = append(owned, product)
		}
	}

	return owned, nil
}

func (f *fakeCatalog) FindByID(_ context.Context, id string) (*store.Product, error) {
	if f.err != nil {
		return nil, f.err
	}

	for i := range f.products {
		if f.products[i].ID.Hex() == id {
			return &f.products[i], nil
		}
	}

	return nil, nil
}

func (f *fakeCatalog) Insert(_ context.Context, product *store.Product) error {
	if f.err != nil {
		return f.err
	}

	f.inserted = append(f.inserted, product)

	return nil
}

func (f *fakeCatalog) Delete(_ context.Context, id string, _ primitive.ObjectID) error {
	if f.err != nil {
		return f.err
	}

	f.deleted = append(f.deleted, id)

	return nil
}

// fakeAccounts is an in-memory UserAccounts.
type fakeAccounts struct {
	byEmail map[string]*store.User
	err     error

	inserted []*store.User
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*store.User, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.byEmail[email], nil
}

func (f *fakeAccounts) Insert(_ context.Context, user *store.User) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	f.inserted = append(f.inserted, user)

	return primitive.NewObjectID().Hex(), nil
}

// fakeBroadcaster records events instead of pushing them to sockets.
type fakeBroadcaster struct {
	events []string
}

func (f *fakeBroadcaster) Broadcast(event string, _ any) {
	f.events = append(f.events, event)
}

// fakeSessions is an in-memory session.Store for Logout tests.
type fakeSessions struct {
	deleted []string
}

func (f *fakeSessions) Get(context.Context, string) (*session.Session, error) { return nil, nil }

func (f *fakeSessions) Put(context.Context, *session.Session) error { return nil }

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)

	return nil
}
