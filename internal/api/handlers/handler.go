// handler.go - основной обработчик API healthvault, реализующий generated.ServerInterface.
// Объединяет health и бизнес-обработчики, делегирует запросы в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/healthvault/internal/api/errors"
	"github.com/bigkaa/healthvault/internal/api/generated"
	"github.com/bigkaa/healthvault/internal/service"
	"github.com/bigkaa/healthvault/internal/store"
)

// Границы пагинации списка записей.
const (
	defaultLimit = 100
	maxLimit     = 1000
)

// maxRequestBody - максимальный размер JSON-тела запроса.
const maxRequestBody = 1 << 20

// APIHandler - основной обработчик API healthvault.
// Реализует generated.ServerInterface.
type APIHandler struct {
	records *service.RecordService
	search  *service.SearchService
	health  *HealthHandler
	logger  *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	records *service.RecordService,
	search *service.SearchService,
	health *HealthHandler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		records: records,
		search:  search,
		health:  health,
		logger:  logger.With(slog.String("component", "api_handler")),
	}
}

var _ generated.ServerInterface = (*APIHandler)(nil)

// HealthLive - liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady - readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics - Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// paginationDefaults нормализует параметры пагинации.
// Возвращает корректные limit и offset.
func paginationDefaults(limit, offset *int) (limitVal, offsetVal int) {
	l := defaultLimit
	o := 0

	if limit != nil {
		l = *limit
		if l < 1 {
			l = 1
		}
		if l > maxLimit {
			l = maxLimit
		}
	}

	if offset != nil {
		o = *offset
		if o < 0 {
			o = 0
		}
	}

	return l, o
}

// writeServiceError преобразует ошибку сервисного слоя в HTTP-ответ.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		apierrors.FileTooLarge(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "Запись не найдена")
	case errors.Is(err, context.Canceled):
		// Клиент отключился, ответ никто не прочитает
		h.logger.Debug("Запрос отменён клиентом", slog.String("path", r.URL.Path))
	default:
		h.logger.Error("Ошибка обработки запроса",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}
