// metrics.go - Prometheus HTTP метрики healthvault.
// Регистрирует метрики: hv_http_requests_total, hv_http_request_duration_seconds,
// hv_http_requests_in_flight.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal - общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hv_http_requests_total",
			Help: "Общее количество HTTP-запросов к healthvault",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration - гистограмма длительности HTTP-запросов.
	// Загрузка записи включает имитацию передачи файла, поэтому верхние бакеты шире DefBuckets.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hv_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к healthvault в секундах",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// httpInFlight - количество обрабатываемых запросов.
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hv_http_requests_in_flight",
			Help: "Количество HTTP-запросов в обработке",
		},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			httpInFlight.Inc()
			defer httpInFlight.Dec()

			wrapped := newStatusRecorder(w)
			next.ServeHTTP(wrapped, r)

			status := strconv.Itoa(wrapped.statusCode)
			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath заменяет ID записи на {id} и сворачивает неизвестные пути
// в "other" для ограничения кардинальности метрик.
// /api/v1/records/8c0f4a52-... → /api/v1/records/{id}
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/v1/records", "/api/v1/stats", "/api/v1/categories":
		return path
	}

	const recordsPrefix = "/api/v1/records/"
	if rest, ok := strings.CutPrefix(path, recordsPrefix); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/api/v1/records/{id}"
	}

	return "other"
}
