package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	HttpRequestSize     *prometheus.HistogramVec
	HttpResponseSize    *prometheus.HistogramVec

	// Catalog sync metrics
	SyncTotal        *prometheus.CounterVec
	SyncDuration     *prometheus.HistogramVec
	SyncTablesCached *prometheus.CounterVec

	// Connection pool metrics
	ConnectionPoolActive *prometheus.GaugeVec
	ConnectionPoolIdle   *prometheus.GaugeVec

	// Data source health metrics
	DataSourceHealth *prometheus.GaugeVec
	DataSourceUp     *prometheus.GaugeVec
}

var (
	metrics *PrometheusMetrics
)

// InitMetrics initializes all Prometheus metrics
func InitMetrics() {
	metrics = &PrometheusMetrics{
		// HTTP request metrics
		HttpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HttpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		HttpRequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "endpoint"},
		),
		HttpResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "endpoint"},
		),

		// Catalog sync metrics
		SyncTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_sync_total",
				Help: "Total number of catalog synchronizations",
			},
			[]string{"datasource_id", "status"},
		),
		SyncDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_sync_duration_seconds",
				Help:    "Catalog synchronization time in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"datasource_id"},
		),
		SyncTablesCached: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_sync_tables_cached_total",
				Help: "Total number of table rows written to the catalog cache",
			},
			[]string{"datasource_id"},
		),

		// Connection pool metrics
		ConnectionPoolActive: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_connection_pool_active",
				Help: "Number of active connections in the pool",
			},
			[]string{"datasource_id"},
		),
		ConnectionPoolIdle: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_connection_pool_idle",
				Help: "Number of idle connections in the pool",
			},
			[]string{"datasource_id"},
		),

		// Data source health metrics
		DataSourceHealth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_datasource_health",
				Help: "Data source health status (1=healthy, 0=unhealthy)",
			},
			[]string{"datasource_id"},
		),
		DataSourceUp: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_datasource_up",
				Help: "Whether the data source is up (1=up, 0=down)",
			},
			[]string{"datasource_id"},
		),
	}
}

// GetMetrics returns the initialized metrics
func GetMetrics() *PrometheusMetrics {
	return metrics
}

// PrometheusMiddleware is a Gin middleware that records HTTP metrics
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		// Start timer
		start := time.Now()

		// Process request
		c.Next()

		// Calculate metrics
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		endpoint := c.FullPath()

		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		// Record metrics
		metrics.HttpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		metrics.HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration)

		// Record request size if available
		if c.Request.ContentLength > 0 {
			metrics.HttpRequestSize.WithLabelValues(method, endpoint).Observe(float64(c.Request.ContentLength))
		}

		// Record response size if available
		if c.Writer.Size() > 0 {
			metrics.HttpResponseSize.WithLabelValues(method, endpoint).Observe(float64(c.Writer.Size()))
		}
	}
}

// RecordSyncMetrics records one catalog synchronization attempt
func RecordSyncMetrics(datasourceID, status string, duration time.Duration, tablesCached int64) {
	if metrics == nil {
		return
	}

	metrics.SyncTotal.WithLabelValues(datasourceID, status).Inc()
	metrics.SyncDuration.WithLabelValues(datasourceID).Observe(duration.Seconds())

	if tablesCached > 0 {
		metrics.SyncTablesCached.WithLabelValues(datasourceID).Add(float64(tablesCached))
	}
}

// UpdateConnectionPoolMetrics updates connection pool metrics
func UpdateConnectionPoolMetrics(datasourceID string, active, idle int) {
	if metrics == nil {
		return
	}

	metrics.ConnectionPoolActive.WithLabelValues(datasourceID).Set(float64(active))
	metrics.ConnectionPoolIdle.WithLabelValues(datasourceID).Set(float64(idle))
}

// UpdateDataSourceHealth updates data source health metrics
func UpdateDataSourceHealth(datasourceID string, healthy, up bool) {
	if metrics == nil {
		return
	}

	healthValue := 0.0
	if healthy {
		healthValue = 1.0
	}
	metrics.DataSourceHealth.WithLabelValues(datasourceID).Set(healthValue)

	upValue := 0.0
	if up {
		upValue = 1.0
	}
	metrics.DataSourceUp.WithLabelValues(datasourceID).Set(upValue)
}
