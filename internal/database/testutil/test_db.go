package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/lazyload/internal/database"
	"github.com/charlesng35/lazyload/internal/models"
)

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	autoMigrate bool
	cacheTable  bool
	users       []models.User
}

// WithAutoMigrate enables migration of the users table after opening the test database.
func WithAutoMigrate() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
	}
}

// WithCacheTable creates the cache_entries table used by the database cache driver.
func WithCacheTable() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.cacheTable = true
	}
}

// WithUsers migrates the users table and inserts the supplied rows.
func WithUsers(users ...models.User) TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
		cfg.users = append(cfg.users, users...)
	}
}

// MustOpenTestDB opens a private in-memory SQLite database for tests, applying optional
// migrations and rows. Each call gets its own database so tests may run in parallel.
// The returned connection is automatically closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := database.Open(database.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close(db)
	})

	if cfg.autoMigrate {
		require.NoError(t, database.AutoMigrate(db))
	}
	if cfg.cacheTable {
		require.NoError(t, database.AutoMigrateCache(db))
	}
	for i := range cfg.users {
		require.NoError(t, db.Create(&cfg.users[i]).Error)
	}

	return db
}
