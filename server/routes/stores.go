// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"codeberg.org/funix/storefront/store"
)

// ProductCatalog is the slice of the product store the route groups
// consume.
type ProductCatalog interface {
	FindAll(ctx context.Context) ([]store.Product, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]store.Product, error)
	FindByID(ctx context.Context, id string) (*store.Product, error)
	Insert(ctx context.Context, product *store.Product) error
	Delete(ctx context.Context, id string, userID primitive.ObjectID) error
}

// UserAccounts is the slice of the user store the auth group consumes.
type UserAccounts interface {
	FindByEmail(ctx context.Context, email string) (*store.User, error)
	Insert(ctx context.Context, user *store.User) (string, error)
}
