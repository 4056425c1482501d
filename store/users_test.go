// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByIDMalformedHexIsAMiss(t *testing.T) {
	t.Parallel()

	// A malformed id never reaches the collection, so a zero store is
	// enough here.
	s := &UserStore{}

	tests := []string{"", "not-hex", "507f1f77", "zzzf1f77bcf86cd799439011"}

	for _, id := range tests {
		user, err := s.FindByID(context.Background(), id)
		require.NoError(t, err, "id %q", id)
		assert.Nil(t, user, "id %q", id)
	}
}
