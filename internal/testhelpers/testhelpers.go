// Package testhelpers provides shared helpers for package tests.
package testhelpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tikspyder/internal/database"
	"github.com/jonesrussell/tikspyder/internal/logger"
)

// NewStore returns a Store over a private in-memory database with all tables
// created. The database is closed when the test finishes.
func NewStore(t *testing.T, policy database.RelatedPolicy) *database.Store {
	t.Helper()

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := database.NewStore(db, logger.NewNop(), policy)
	require.NoError(t, store.CreateTables(context.Background()))

	return store
}
