package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.RecordRequest("GET", "/api/v2/time", 200, 10*time.Millisecond)
	c.RecordRequest("GET", "/api/v2/time", 200, 10*time.Millisecond)
	c.RecordRequest("GET", "/api/v2/time", 0, time.Millisecond)
	c.RecordCache("buy_info", true)
	c.RecordCache("buy_info", false)
	c.RecordCache("buy_info", false)
	c.RecordFrame("o.u")
	c.RecordHeartbeat()
	c.RecordReconnect()

	require.Equal(t, 2.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "/api/v2/time", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "/api/v2/time", "transport_error")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.cacheHits.WithLabelValues("buy_info")))
	require.Equal(t, 2.0, testutil.ToFloat64(c.cacheMisses.WithLabelValues("buy_info")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.framesTotal.WithLabelValues("o.u")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.heartbeatsTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(c.reconnectsTotal))
}

func TestNilCollector(t *testing.T) {
	var c *Collector

	require.NotPanics(t, func() {
		c.RecordRequest("GET", "/", 500, time.Second)
		c.RecordCache("k", true)
		c.RecordFrame("t")
		c.RecordHeartbeat()
		c.RecordReconnect()
	})
}
