// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package store provides the MongoDB-backed persistence layer: connection
bootstrap plus the users, products and sessions collections.

The startup contract matters here: Connect must succeed (including a
round-trip ping) before the HTTP listener is allowed to open, so a failed
storage connection never surfaces as per-request identity errors.
*/
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens a client for the given connection URI and verifies the
// deployment is reachable before returning.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		// Best effort; the client never served anything.
		_ = client.Disconnect(context.WithoutCancel(ctx))

		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	log.Info().Msg("Database connection established")

	return client, nil
}
