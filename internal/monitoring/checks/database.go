package checks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/lazyload/internal/monitoring"
)

// Database returns a readiness probe that pings the durable store's connection pool.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	if db == nil {
		return unavailable("database", "database not configured")
	}
	return timedProbe("database", timeout, db.Dialector.Name(), func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}
