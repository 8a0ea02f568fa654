package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/charlesng35/lazyload/pkg/logger"
)

const sqliteURLScheme = "sqlite://"

func openSQLite(cfg Config) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	path := strings.TrimSpace(cfg.Path)

	// sqlite://user.db style URLs name a file path rather than a driver DSN.
	if strings.HasPrefix(dsn, sqliteURLScheme) {
		path = strings.TrimPrefix(dsn, sqliteURLScheme)
		dsn = ""
	}

	if dsn == "" {
		switch {
		case path == "", strings.EqualFold(path, ":memory:"):
			dsn = "file::memory:?cache=shared&_foreign_keys=1"
		default:
			if err := ensureDatabaseFile(path); err != nil {
				return nil, err
			}
			dsn = fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL", filepath.ToSlash(path))
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}

	if err := enableForeignKeys(db); err != nil {
		return nil, closeOnError(db, err)
	}

	return db, nil
}

// ensureDatabaseFile creates the parent directory and logs when a new database file
// is about to be created by the driver.
func ensureDatabaseFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		logger.WithModule("database").Debug("sqlite database already exists", zap.String("path", path))
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat sqlite database: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	logger.WithModule("database").Info("creating sqlite database", zap.String("path", path))
	return nil
}

func enableForeignKeys(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil && err != sql.ErrConnDone {
		return err
	}
	return nil
}
