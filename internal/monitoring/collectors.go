package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type readPathCollectors struct {
	cacheLookups   *prometheus.CounterVec
	storeQueries   *prometheus.CounterVec
	cachePopulates *prometheus.CounterVec
	loadDuration   *prometheus.HistogramVec
	apiLatency     *prometheus.HistogramVec
}

func newReadPathCollectors(namespace string) *readPathCollectors {
	buckets := prometheus.DefBuckets
	loadBuckets := []float64{
		0.0005, 0.001, 0.0025, 0.005, 0.01, // sub-millisecond cache hits up to slow queries
		0.025, 0.05, 0.1, 0.25, 0.5, 1,
	}

	return &readPathCollectors{
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups performed by the loader grouped by result (hit|miss|error|corrupt)",
			},
			[]string{"result"},
		),
		storeQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_queries_total",
				Help:      "Durable store lookups after a cache miss grouped by result (found|not_found|error)",
			},
			[]string{"result"},
		),
		cachePopulates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_populates_total",
				Help:      "Cache writes issued after a store hit grouped by result (success|failure)",
			},
			[]string{"result"},
		),
		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Duration of loader reads by the tier that answered (cache|store|none)",
				Buckets:   loadBuckets,
			},
			[]string{"source"},
		),
		apiLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_latency_seconds",
				Help:      "API endpoint latency",
				Buckets:   buckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (c *readPathCollectors) all() []prometheus.Collector {
	return []prometheus.Collector{
		c.cacheLookups,
		c.storeQueries,
		c.cachePopulates,
		c.loadDuration,
		c.apiLatency,
	}
}

// observeDuration records a duration in seconds on the supplied histogram observer.
func observeDuration(observer prometheus.Observer, d time.Duration) {
	if observer == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	observer.Observe(d.Seconds())
}
