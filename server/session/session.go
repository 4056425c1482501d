// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package session defines the store-backed session record shared between the
middleware pipeline and the authentication route group.

A session is an ephemeral record keyed by an opaque id exchanged through a
cookie. It holds a weak reference to a user (an id, never an owned copy),
the per-session CSRF secret, and one-shot flash messages. Records are only
persisted once something has been written to them.
*/
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is an ephemeral, store-backed record keyed by an opaque id.
type Session struct {
	ID         string    `bson:"_id"`
	IsLoggedIn bool      `bson:"isLoggedIn"`
	UserID     string    `bson:"user,omitempty"`
	CSRFSecret string    `bson:"csrfSecret,omitempty"`
	Flash      []string  `bson:"flash,omitempty"`
	ExpiresAt  time.Time `bson:"expiresAt"`

	isNew     bool
	dirty     bool
	destroyed bool
}

// Store defines how sessions are persisted and retrieved.
//
// Get returns (nil, nil) on a miss; expiry is store-managed and an expired
// record counts as a miss.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// New creates a fresh, unsaved session.
func New(ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().Add(ttl),
		isNew:     true,
	}
}

// IsNew reports whether the session was created for the current request
// and has never been read from the store.
func (s *Session) IsNew() bool { return s.isNew }

// Dirty reports whether the session has been modified since it was loaded
// and must be written back.
func (s *Session) Dirty() bool { return s.dirty }

// MarkClean resets the dirty flag after a successful write-back.
func (s *Session) MarkClean() { s.dirty = false }

// SetCSRFSecret records the per-session anti-forgery secret.
func (s *Session) SetCSRFSecret(secret string) {
	s.CSRFSecret = secret
	s.dirty = true
}

// Login binds the session to a user id.
func (s *Session) Login(userID string) {
	s.IsLoggedIn = true
	s.UserID = userID
	s.dirty = true
}

// AddFlash queues a one-shot message for the next rendered page.
func (s *Session) AddFlash(message string) {
	s.Flash = append(s.Flash, message)
	s.dirty = true
}

// PopFlash drains and returns all queued flash messages.
func (s *Session) PopFlash() []string {
	if len(s.Flash) == 0 {
		return nil
	}

	messages := s.Flash
	s.Flash = nil
	s.dirty = true

	return messages
}

// Destroy marks the session as gone; the pipeline must not write it back
// after the owning store record was deleted.
func (s *Session) Destroy() {
	s.destroyed = true
	s.dirty = false
}

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool { return s.destroyed }

// Expired reports whether the session's absolute expiry has passed.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
