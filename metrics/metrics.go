// Package metrics provides Prometheus instrumentation for the pricing server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PricingRequests counts pricing calls by outcome: ok, degenerate, error.
	PricingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hedger_pricing_requests_total",
		Help: "Pricing requests served, by outcome",
	}, []string{"outcome"})

	PricingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hedger_pricing_duration_seconds",
		Help:    "Monte-Carlo pricing time in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hedger_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hedger_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hedger_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Gin returns a gin middleware that records request metrics under the
// matched route pattern.
func Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
