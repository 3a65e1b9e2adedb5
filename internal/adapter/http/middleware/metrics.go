package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for HTTP requests and auth flows.
// Prometheus метрики для HTTP запросов и auth потоков.
var (
	// httpRequestsTotal counts total HTTP requests by method, path, and status.
	// httpRequestsTotal подсчитывает общее количество HTTP запросов по методу, пути и статусу.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration measures HTTP request duration in seconds.
	// httpRequestDuration измеряет длительность HTTP запросов в секундах.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planwise_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// httpRequestsInFlight tracks current number of in-flight requests.
	// httpRequestsInFlight отслеживает текущее количество обрабатываемых запросов.
	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "planwise_http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// authAttemptsTotal counts authentication attempts by result.
	// authAttemptsTotal подсчитывает попытки аутентификации по результату.
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// tokenRefreshesTotal counts refresh-token rotations by result.
	// tokenRefreshesTotal подсчитывает ротации refresh токенов по результату.
	tokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_token_refreshes_total",
			Help: "Total number of refresh token rotations",
		},
		[]string{"result"},
	)
)

// Metrics returns a middleware that records Prometheus metrics for HTTP requests.
// Metrics возвращает middleware, который записывает Prometheus метрики для HTTP запросов.
//
// Records request count, duration, and in-flight requests.
// Записывает количество запросов, длительность и запросы в обработке.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown" // Unknown route / Неизвестный маршрут
		}

		// Increment in-flight counter / Увеличиваем счётчик запросов в обработке
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		// Record metrics after request completion / Записываем метрики после завершения запроса
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// RecordAuthAttempt records an authentication attempt in metrics.
// RecordAuthAttempt записывает попытку аутентификации в метрики.
func RecordAuthAttempt(success bool) {
	result := "failure" // Неудача
	if success {
		result = "success" // Успех
	}
	authAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordTokenRefresh records a refresh-token rotation in metrics.
// RecordTokenRefresh записывает ротацию refresh токена в метрики.
func RecordTokenRefresh(success bool) {
	result := "failure" // Неудача
	if success {
		result = "success" // Успех
	}
	tokenRefreshesTotal.WithLabelValues(result).Inc()
}
