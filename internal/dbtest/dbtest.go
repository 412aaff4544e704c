// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/db"
)

// New returns a migrated in-memory sqlite database closed at test cleanup.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, models.Migrate(gdb))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}
