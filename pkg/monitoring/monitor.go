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

	// MasteryUpdates 按答题正误统计掌握度更新次数
	MasteryUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mastery_updates_total",
			Help: "Total number of mastery score updates by answer correctness",
		},
		[]string{"correct"},
	)

	// PlansGenerated 学习计划生成总数
	PlansGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "study_plans_generated_total",
			Help: "Total number of generated study plans",
		},
	)

	// IngestionJobs 按终态统计内容摄取任务
	IngestionJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_jobs_total",
			Help: "Total number of content ingestion jobs by final status",
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(MasteryUpdates)
	prometheus.MustRegister(PlansGenerated)
	prometheus.MustRegister(IngestionJobs)
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
