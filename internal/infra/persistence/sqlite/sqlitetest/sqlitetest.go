// Package sqlitetest opens throwaway migrated databases for tests.
package sqlitetest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"medtrack/config"
	"medtrack/internal/infra/persistence/migrations"
	"medtrack/internal/infra/persistence/sqlite"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewDB opens a migrated database in a temporary directory that is closed
// when the test ends.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &config.StorageConfig{Path: filepath.Join(tb.TempDir(), "medtrack.db")}

	db, err := sqlite.Open(cfg, DiscardLogger(), false)
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(tb, migrations.Up(context.Background(), sqlDB, DiscardLogger()))

	return db
}
