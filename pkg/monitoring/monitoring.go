package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutoring_sessions_started_total",
			Help: "Total number of tutoring sessions started",
		},
	)

	SessionsEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutoring_sessions_ended_total",
			Help: "Total number of tutoring sessions reaching a terminal state",
		},
		[]string{"status"},
	)

	MistakesClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutoring_mistakes_classified_total",
			Help: "Total number of classified mistakes by kind",
		},
		[]string{"kind"},
	)

	ProviderFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_provider_fallbacks_total",
			Help: "Total number of generation calls served by the fallback provider",
		},
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_provider_latency_seconds",
			Help:    "Latency of AI provider generation calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SessionsStarted)
	prometheus.MustRegister(SessionsEnded)
	prometheus.MustRegister(MistakesClassified)
	prometheus.MustRegister(ProviderFallbacks)
	prometheus.MustRegister(ProviderLatency)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
