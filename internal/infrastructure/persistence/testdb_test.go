package persistence

import (
	"testing"

	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the full schema.
// SQLite accepts the postgres column types as plain affinities, so the
// production models migrate as-is.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.QuoteModel{},
		&models.QuoteLineModel{},
		&models.InvoiceModel{},
		&models.InvoiceLineModel{},
		&models.NumberCounterModel{},
		&models.CatalogItemModel{},
	)
	require.NoError(t, err)

	// The in-memory database lives per connection; a single connection
	// keeps every query on the same schema and serializes concurrent
	// access the way a real server would.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}
