package models

import (
	"time"
)

// CacheEntry represents a cached payload stored in the database-backed cache driver.
// A zero ExpiresAt means the entry never expires.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     []byte    `gorm:"type:blob"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the cache table name stable across drivers.
func (CacheEntry) TableName() string {
	return "cache_entries"
}
