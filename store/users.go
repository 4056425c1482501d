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
)

// User is a persisted account record. The pipeline only ever reads it;
// mutation belongs to the authentication route group.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"` // bcrypt hash
	Name     string             `bson:"name"`
}

// UserStore reads and writes the users collection.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection("users")}
}

// FindByID looks a user up by its hex id.
//
// A malformed id or a missing record both return (nil, nil): a stale user
// reference is not an error, the caller degrades to anonymous. Only a
// store failure returns a non-nil error.
func (s *UserStore) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var user User

	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	return &user, nil
}

// FindByEmail looks a user up by email; (nil, nil) on a miss.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User

	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	return &user, nil
}

// Insert stores a new user and returns its hex id.
func (s *UserStore) Insert(ctx context.Context, user *User) (string, error) {
	result, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		return "", fmt.Errorf("user insert failed: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("user insert returned unexpected id type %T", result.InsertedID)
	}

	return oid.Hex(), nil
}
