package cache

import (
	"context"
	"time"
)

// Store is the key-value contract the lazy loader reads through. Get reports a genuine
// miss as found == false with a nil error; any error means the backend could not answer.
// Set with ttl <= 0 stores the value without expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Pinger is implemented by stores that can probe their backend for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Supported cache drivers.
const (
	DriverRedis    = "redis"
	DriverDatabase = "database"
	DriverMemory   = "memory"
)
