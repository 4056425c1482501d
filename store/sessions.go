// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"codeberg.org/funix/storefront/server/session"
)

// SessionStore persists session records in the sessions collection.
//
// It implements session.Store. Expiry is delegated to a TTL index on
// expiresAt, with an explicit check on read so that a record the
// background reaper has not collected yet still counts as a miss.
type SessionStore struct {
	coll *mongo.Collection
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{coll: db.Collection("sessions")}
}

// EnsureIndexes creates the TTL index that expires session records.
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create session TTL index: %w", err)
	}

	return nil
}

// Get returns the session for the given id, or (nil, nil) when no live
// record exists.
func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	var record session.Session

	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}

	if record.Expired() {
		// The TTL reaper runs periodically; don't resurrect a dead session.
		_ = s.coll.FindOneAndDelete(ctx, bson.M{"_id": id})

		return nil, nil
	}

	return &record, nil
}

// Put writes the session back, creating it when absent.
func (s *SessionStore) Put(ctx context.Context, sess *session.Session) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": sess.ID},
		sess,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("session write failed: %w", err)
	}

	return nil
}

// Delete removes the session record.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("session delete failed: %w", err)
	}

	return nil
}
