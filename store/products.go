// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Product is a storefront listing owned by the user who created it.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Price       float64            `bson:"price"`
	Description string             `bson:"description"`
	ImagePath   string             `bson:"imagePath"`
	UserID      primitive.ObjectID `bson:"userId"`
}

// ProductStore reads and writes the products collection.
type ProductStore struct {
	coll *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{coll: db.Collection("products")}
}

// FindAll returns every listing, newest first.
func (s *ProductStore) FindAll(ctx context.Context) ([]Product, error) {
	cursor, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("product listing failed: %w", err)
	}

	var products []Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("product listing failed: %w", err)
	}

	return products, nil
}

// FindByUser returns the listings created by the given user.
func (s *ProductStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]Product, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("product listing failed: %w", err)
	}

	var products []Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("product listing failed: %w", err)
	}

	return products, nil
}

// FindByID looks a product up by its hex id; (nil, nil) on a miss or a
// malformed id.
func (s *ProductStore) FindByID(ctx context.Context, id string) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var product Product

	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}

	return &product, nil
}

// Insert stores a new listing.
func (s *ProductStore) Insert(ctx context.Context, product *Product) error {
	if _, err := s.coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("product insert failed: %w", err)
	}

	return nil
}

// Delete removes a listing, scoped to its owner.
func (s *ProductStore) Delete(ctx context.Context, id string, userID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid, "userId": userID}); err != nil {
		return fmt.Errorf("product delete failed: %w", err)
	}

	return nil
}
