// health.go - обработчики health endpoints healthvault.
// /health/live - liveness probe (процесс жив)
// /health/ready - readiness probe (начальная загрузка завершена, зависимости доступны)
// /metrics - Prometheus метрики
package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/healthvault/internal/config"
)

// serviceName - имя сервиса в ответах health endpoints.
const serviceName = "healthvault"

// Константы статусов health check.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusFail     = "fail"
)

// ReadinessChecker - интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// Name - ключ проверки в ответе readiness.
	Name() string
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status, message string)
}

// StoreState - состояние начальной загрузки хранилища.
type StoreState interface {
	Loading() bool
	LoadErr() error
}

// HealthHandler - обработчик health endpoints.
type HealthHandler struct {
	store       StoreState
	checkers    []ReadinessChecker
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// checkers - дополнительные проверки зависимостей (PostgreSQL при HV_SOURCE=postgres).
func NewHealthHandler(store StoreState, checkers ...ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		store:       store,
		checkers:    checkers,
		promHandler: promhttp.Handler(),
	}
}

// healthCheckResult - результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthLiveResponse - ответ liveness probe.
type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

// healthReadyResponse - ответ readiness probe.
type healthReadyResponse struct {
	Status    string                       `json:"status"`
	Timestamp string                       `json:"timestamp"`
	Version   string                       `json:"version"`
	Service   string                       `json:"service"`
	Checks    map[string]healthCheckResult `json:"checks"`
}

// HealthLive - liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    statusOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady - readiness probe. Проверяет хранилище и зависимости.
// Возвращает 200 (ok/degraded) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
		Checks:    make(map[string]healthCheckResult, 1+len(h.checkers)),
	}

	resp.Checks["records"] = h.checkStore()
	statuses := []string{resp.Checks["records"].Status}

	for _, c := range h.checkers {
		status, msg := c.CheckReady()
		resp.Checks[c.Name()] = healthCheckResult{Status: status, Message: msg}
		statuses = append(statuses, status)
	}

	resp.Status = overallStatus(statuses...)

	code := http.StatusOK
	if resp.Status == statusFail {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// checkStore проверяет состояние начальной загрузки записей.
func (h *HealthHandler) checkStore() healthCheckResult {
	if h.store == nil {
		return healthCheckResult{Status: statusFail, Message: "не инициализировано"}
	}
	if h.store.Loading() {
		return healthCheckResult{Status: statusFail, Message: "начальная загрузка записей"}
	}
	if err := h.store.LoadErr(); err != nil {
		return healthCheckResult{Status: statusFail, Message: "ошибка загрузки: " + err.Error()}
	}
	return healthCheckResult{Status: statusOK, Message: "записи загружены"}
}

// GetMetrics - Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// overallStatus определяет итоговый статус из статусов зависимостей.
// Если хотя бы одна зависимость fail - итог fail.
// Если хотя бы одна degraded - итог degraded.
// Иначе - ok.
func overallStatus(statuses ...string) string {
	hasDegraded := false
	for _, s := range statuses {
		if s == statusFail {
			return statusFail
		}
		if s == statusDegraded {
			hasDegraded = true
		}
	}
	if hasDegraded {
		return statusDegraded
	}
	return statusOK
}
