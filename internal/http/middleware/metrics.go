// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the Prometheus collectors. HTTP series are labeled by
// method, registered route template and status code; the template keeps
// label cardinality bounded no matter what URLs clients send. Domain
// counters for listing lifecycle events and notification fanout live here
// too so the services have a single place to report to.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// Status is left off the latency series to halve its cardinality.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// Buckets span a lone error envelope up to a fully preloaded listing
	// page with images and features.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10,
				10 << 10, 25 << 10, 50 << 10,
				100 << 10, 250 << 10, 500 << 10,
				1 << 20, 2 << 20, 5 << 20,
			},
		},
		[]string{"method", "path"},
	)

	// kind is one of "created", "sold", "price_drop".
	listingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_listing_events_total",
			Help: "Total number of listing lifecycle events.",
		},
		[]string{"kind"},
	)

	notificationFanout = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketplace_notification_fanout",
			Help:    "Number of recipients per notification fanout.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, listingEvents, notificationFanout)
}

// ObserveListingEvent counts one lifecycle event. kind must come from the
// fixed set above; free-form values would blow up the label space.
func ObserveListingEvent(kind string) {
	listingEvents.WithLabelValues(kind).Inc()
}

// ObserveNotificationFanout records how many accounts one fanout burst
// reached. Negative counts are dropped.
func ObserveNotificationFanout(n int) {
	if n < 0 {
		return
	}
	notificationFanout.Observe(float64(n))
}

// Metrics instruments every request: the counter, the latency histogram,
// the in-flight gauge and, when a body was written, the size histogram.
// Unmatched routes fall back to the raw URL path for the path label.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		// Size reads -1 when nothing was written.
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
