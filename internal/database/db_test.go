package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/lazyload/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t, Config{Driver: "sqlite"})

	require.NoError(t, db.Exec("SELECT 1").Error)
}

func TestOpenSQLiteCreatesFileFromURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "user.db")

	db := openTestDB(t, Config{Driver: "sqlite", DSN: "sqlite://" + path})
	require.NoError(t, AutoMigrate(db))

	_, err := os.Stat(path)
	require.NoError(t, err, "expected sqlite file to be created")
}

func TestOpenAppliesPoolSize(t *testing.T) {
	db := openTestDB(t, Config{Driver: "sqlite", MaxOpenConns: 3})

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenDefaultsPoolSize(t *testing.T) {
	db := openTestDB(t, Config{})

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.Equal(t, DefaultMaxOpenConns, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestAutoMigrate(t *testing.T) {
	db := openTestDB(t, Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "migrate.db")})

	require.NoError(t, AutoMigrate(db))
	require.True(t, db.Migrator().HasTable(&models.User{}))
	require.False(t, db.Migrator().HasTable(&models.CacheEntry{}))

	require.NoError(t, AutoMigrateCache(db))
	require.True(t, db.Migrator().HasTable(&models.CacheEntry{}))

	// idempotent on an existing schema
	require.NoError(t, AutoMigrate(db))

	require.Error(t, AutoMigrate(nil))
	require.Error(t, AutoMigrateCache(nil))
}

func openTestDB(t *testing.T, cfg Config) *gorm.DB {
	t.Helper()

	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = Close(db)
	})

	return db
}

func TestCloseOnErrorReleasesPool(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	cause := errors.New("pool setup failed")
	err = closeOnError(db, cause)
	require.ErrorIs(t, err, cause)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.Error(t, sqlDB.Ping(), "pool should be closed")
}
