package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records REST, cache and stream activity. A nil *Collector is
// valid and records nothing.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	framesTotal     *prometheus.CounterVec
	heartbeatsTotal prometheus.Counter
	reconnectsTotal prometheus.Counter
}

// New registers the collector's metrics on registry.
func New(registry prometheus.Registerer) *Collector {
	f := promauto.With(registry)

	return &Collector{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nhgate_requests_total",
				Help: "Total number of API requests by outcome",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nhgate_request_duration_seconds",
				Help:    "Duration of API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		cacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nhgate_cache_hits_total",
				Help: "Responses served from the cache",
			},
			[]string{"key"},
		),
		cacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nhgate_cache_misses_total",
				Help: "Cache lookups that required a dispatch",
			},
			[]string{"key"},
		),
		framesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nhgate_stream_frames_total",
				Help: "Stream frames delivered by tag",
			},
			[]string{"tag"},
		),
		heartbeatsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "nhgate_stream_heartbeats_total",
				Help: "Heartbeat frames discarded",
			},
		),
		reconnectsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "nhgate_stream_reconnects_total",
				Help: "Stream reconnect attempts",
			},
		),
	}
}

// StatusLabel maps a response status to its label. Zero means the request
// never produced a response.
func StatusLabel(status int) string {
	if status == 0 {
		return "transport_error"
	}
	return strconv.Itoa(status)
}

func (c *Collector) RecordRequest(method, path string, status int, took time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(method, path, StatusLabel(status)).Inc()
	c.requestDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

func (c *Collector) RecordCache(key string, hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.cacheHits.WithLabelValues(key).Inc()
		return
	}
	c.cacheMisses.WithLabelValues(key).Inc()
}

func (c *Collector) RecordFrame(tag string) {
	if c == nil {
		return
	}
	c.framesTotal.WithLabelValues(tag).Inc()
}

func (c *Collector) RecordHeartbeat() {
	if c == nil {
		return
	}
	c.heartbeatsTotal.Inc()
}

func (c *Collector) RecordReconnect() {
	if c == nil {
		return
	}
	c.reconnectsTotal.Inc()
}
