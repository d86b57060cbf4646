package comments

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics tracks comment cache behavior.
type Metrics struct {
	HitsTotal   prometheus.Counter
	MissesTotal prometheus.Counter
	CacheSize   prometheus.Gauge
}

// NewMetrics registers the comment cache metrics once per process.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			HitsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "campusfeed_comment_cache_hits_total",
				Help: "Total number of comment thread cache hits",
			}),
			MissesTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "campusfeed_comment_cache_misses_total",
				Help: "Total number of comment thread cache misses",
			}),
			CacheSize: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "campusfeed_comment_cache_size",
				Help: "Number of posts with a cached comment thread",
			}),
		}
	})
	return globalMetrics
}

// RecordHit records a cache hit.
func (m *Metrics) RecordHit() { m.HitsTotal.Inc() }

// RecordMiss records a cache miss.
func (m *Metrics) RecordMiss() { m.MissesTotal.Inc() }

// SetSize updates the cache size gauge.
func (m *Metrics) SetSize(size int) { m.CacheSize.Set(float64(size)) }
