package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/charlesng35/lazyload/internal/cache"
	"github.com/charlesng35/lazyload/internal/monitoring"
)

// Cache returns a readiness probe for the configured cache store. Stores that cannot be
// pinged report up with a note naming the driver.
func Cache(store cache.Store, driver string, timeout time.Duration) monitoring.Check {
	if store == nil {
		return unavailable("cache", "cache not configured")
	}

	pinger, ok := store.(cache.Pinger)
	if !ok {
		return monitoring.NewCheck("cache", func(context.Context) monitoring.ProbeResult {
			return monitoring.ProbeResult{
				Status:  monitoring.StatusUp,
				Details: fmt.Sprintf("%s driver does not support ping", driver),
			}
		})
	}
	return timedProbe("cache", timeout, driver, pinger.Ping)
}
