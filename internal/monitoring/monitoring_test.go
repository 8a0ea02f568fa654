package monitoring_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/lazyload/internal/cache"
	"github.com/charlesng35/lazyload/internal/monitoring"
	"github.com/charlesng35/lazyload/internal/monitoring/checks"
)

func setupModule(t *testing.T) *monitoring.Module {
	t.Helper()

	mod, err := monitoring.NewModule(monitoring.Options{DisableGoCollector: true, DisableProcessCollector: true})
	require.NoError(t, err)
	monitoring.SetModule(mod)
	return mod
}

func TestSummaryAggregatesReadPath(t *testing.T) {
	setupModule(t)

	monitoring.RecordCacheLookup(monitoring.LookupHit)
	monitoring.RecordCacheLookup(monitoring.LookupHit)
	monitoring.RecordCacheLookup(monitoring.LookupMiss)
	monitoring.RecordCacheLookup(monitoring.LookupError)
	monitoring.RecordStoreQuery(monitoring.QueryFound)
	monitoring.RecordStoreQuery(monitoring.QueryNotFound)
	monitoring.RecordCachePopulate(monitoring.PopulateSuccess, "")
	monitoring.RecordCachePopulate(monitoring.PopulateFailure, " connection refused ")

	summary := monitoring.Snapshot()
	require.Equal(t, uint64(2), summary.Cache.Hits)
	require.Equal(t, uint64(1), summary.Cache.Misses)
	require.Equal(t, uint64(1), summary.Cache.Errors)
	require.InDelta(t, 0.5, summary.Cache.HitRatio, 0.0001)
	require.Equal(t, uint64(1), summary.Store.Found)
	require.Equal(t, uint64(1), summary.Store.NotFound)
	require.Equal(t, uint64(1), summary.Populate.Success)
	require.Equal(t, uint64(1), summary.Populate.Failure)
	require.NotNil(t, summary.Populate.LastFailure)
	require.Equal(t, "connection refused", summary.Populate.LastFailure.Message)
}

func TestUnknownLookupResultCountsAsError(t *testing.T) {
	setupModule(t)

	monitoring.RecordCacheLookup("")
	monitoring.RecordCacheLookup(monitoring.LookupCorrupt)

	summary := monitoring.Snapshot()
	require.Equal(t, uint64(1), summary.Cache.Errors)
	require.Equal(t, uint64(1), summary.Cache.Corrupt)
	require.Zero(t, summary.Cache.HitRatio)
}

func TestHandlerExposesCollectors(t *testing.T) {
	mod := setupModule(t)

	monitoring.RecordCacheLookup(monitoring.LookupMiss)
	monitoring.ObserveLoad(monitoring.SourceStore, 3*time.Millisecond)
	monitoring.ObserveAPILatency("get", "/api/users/:id", "200", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	mod.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.True(t, strings.Contains(body, `lazyload_cache_lookups_total{result="miss"} 1`))
	require.True(t, strings.Contains(body, `lazyload_load_duration_seconds_count{source="store"} 1`))
	require.True(t, strings.Contains(body, `lazyload_api_latency_seconds_count{method="GET",path="api/users/:id",status="200"} 1`))
}

func TestNilModuleHandlerUnavailable(t *testing.T) {
	t.Parallel()

	var mod *monitoring.Module
	rec := httptest.NewRecorder()
	mod.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthManagerEvaluate(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager()
	manager.RegisterReadiness(monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("cache", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "connection refused"}
	}))

	report := manager.EvaluateReadiness(context.Background())
	require.False(t, report.Success)
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Len(t, report.Checks, 2)
}

func TestHealthManagerRecoversPanics(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager()
	manager.RegisterLiveness(monitoring.NewCheck("boom", func(context.Context) monitoring.ProbeResult {
		panic("probe exploded")
	}))

	report := manager.EvaluateLiveness(context.Background())
	require.False(t, report.Success)
	require.Len(t, report.Checks, 1)
	require.Equal(t, "boom", report.Checks[0].Component)
	require.Equal(t, "probe exploded", report.Checks[0].Details)
}

func TestResultFromErrorDegradesOnTimeout(t *testing.T) {
	t.Parallel()

	result := monitoring.ResultFromError("cache", context.DeadlineExceeded, time.Millisecond)
	require.Equal(t, monitoring.StatusDegraded, result.Status)

	result = monitoring.ResultFromError("cache", errors.New("dial tcp: refused"), time.Millisecond)
	require.Equal(t, monitoring.StatusDown, result.Status)
}

type failingPinger struct {
	cache.Store
}

func (failingPinger) Ping(context.Context) error { return errors.New("redis: connection refused") }

func TestCacheCheck(t *testing.T) {
	t.Parallel()

	result := checks.Cache(cache.NewMemoryStore(), cache.DriverMemory, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)
	require.Equal(t, cache.DriverMemory, result.Details)

	result = checks.Cache(failingPinger{Store: cache.NewMemoryStore()}, cache.DriverRedis, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
	require.Contains(t, result.Details, "connection refused")

	result = checks.Cache(nil, cache.DriverRedis, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
}

func TestDatabaseCheckWithoutHandle(t *testing.T) {
	t.Parallel()

	result := checks.Database(nil, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
	require.Equal(t, "database not configured", result.Details)
}
