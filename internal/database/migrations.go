package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/charlesng35/lazyload/internal/models"
)

// AutoMigrate creates or updates the users table read by the lazy loader.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	return db.AutoMigrate(&models.User{})
}

// AutoMigrateCache creates the cache_entries table used by the database cache driver.
func AutoMigrateCache(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	return db.AutoMigrate(&models.CacheEntry{})
}
