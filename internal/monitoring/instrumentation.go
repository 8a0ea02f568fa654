package monitoring

import (
	"strings"
	"time"
)

// Cache lookup outcomes.
const (
	LookupHit     = "hit"
	LookupMiss    = "miss"
	LookupError   = "error"
	LookupCorrupt = "corrupt"
)

// Store query outcomes.
const (
	QueryFound    = "found"
	QueryNotFound = "not_found"
	QueryError    = "error"
)

// Cache populate outcomes.
const (
	PopulateSuccess = "success"
	PopulateFailure = "failure"
)

// Load sources.
const (
	SourceCache = "cache"
	SourceStore = "store"
	SourceNone  = "none"
)

// RecordCacheLookup counts the outcome of a loader cache lookup.
func RecordCacheLookup(result string) {
	module := CurrentModule()
	if module == nil {
		return
	}
	label := normalizeLabel(result)
	module.metrics.cacheLookups.WithLabelValues(label).Inc()
	module.stats.recordLookup(label)
}

// RecordStoreQuery counts the outcome of a durable store lookup.
func RecordStoreQuery(result string) {
	module := CurrentModule()
	if module == nil {
		return
	}
	label := normalizeLabel(result)
	module.metrics.storeQueries.WithLabelValues(label).Inc()
	module.stats.recordQuery(label)
}

// RecordCachePopulate counts a cache write issued after a store hit. Failures keep the
// message so operators can see why the cache is not warming.
func RecordCachePopulate(result, message string) {
	module := CurrentModule()
	if module == nil {
		return
	}
	label := normalizeLabel(result)
	module.metrics.cachePopulates.WithLabelValues(label).Inc()
	module.stats.recordPopulate(label, strings.TrimSpace(message))
}

// ObserveLoad records how long a loader read took and which tier answered it.
func ObserveLoad(source string, duration time.Duration) {
	module := CurrentModule()
	if module == nil {
		return
	}
	observeDuration(module.metrics.loadDuration.WithLabelValues(normalizeLabel(source)), duration)
}

// ObserveAPILatency captures the HTTP request latency for the supplied route.
func ObserveAPILatency(method, path, status string, duration time.Duration) {
	module := CurrentModule()
	if module == nil {
		return
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "UNKNOWN"
	}
	path = sanitizePath(path)
	if path == "" {
		path = "unknown"
	}
	status = strings.TrimSpace(status)
	if status == "" {
		status = "unknown"
	}
	observeDuration(module.metrics.apiLatency.WithLabelValues(method, path, status), duration)
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}

func sanitizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "/" {
		return "root"
	}
	path = strings.Trim(path, "/")
	return strings.ReplaceAll(path, " ", "_")
}
