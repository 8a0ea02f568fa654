// Package checks provides readiness probes for the service's backing stores.
package checks

import (
	"context"
	"time"

	"github.com/charlesng35/lazyload/internal/monitoring"
)

const defaultProbeTimeout = 2 * time.Second

// timedProbe wraps ping with a bounded context and converts its error into a probe result.
// details is reported when the probe succeeds.
func timedProbe(name string, timeout time.Duration, details string, ping func(ctx context.Context) error) monitoring.Check {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return monitoring.NewCheck(name, func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := ping(probeCtx); err != nil {
			return monitoring.ResultFromError(name, err, time.Since(start))
		}
		return monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Details:  details,
			Duration: time.Since(start),
		}
	})
}

func unavailable(name, details string) monitoring.Check {
	return monitoring.NewCheck(name, func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: details}
	})
}
