package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toteapi_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "toteapi_http_request_duration_ms",
			Help: "Duration of HTTP requests in ms",
			// Stripe round-trips dominate; buckets reach into seconds.
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"method", "path"},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "toteapi_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := float64(time.Since(start).Milliseconds())
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		status := c.Writer.Status()
		if status == http.StatusTooManyRequests {
			rateLimited.Inc()
		}

		httpRequests.WithLabelValues(c.Request.Method, path, http.StatusText(status)).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}
