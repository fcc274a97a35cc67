// Package dbtest opens throwaway SQLite databases for repository tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eduvista/site/internal/data/database"
)

// Open creates a SQLite database in a temporary directory and migrates models into it.
func Open(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Options{
		Path:   filepath.Join(t.TempDir(), "test.db"),
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := database.Close(db); closeErr != nil {
			t.Errorf("closing database failed: %v", closeErr)
		}
	})

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrating models: %v", err)
		}
	}
	return db
}
