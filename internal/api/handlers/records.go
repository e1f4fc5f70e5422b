// records.go - обработчики /api/v1/records.
// Параметры запроса привязывает generated.ServerInterfaceWrapper,
// здесь только вызов сервисов и сериализация ответов с полями для отображения.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/healthvault/internal/api/errors"
	"github.com/bigkaa/healthvault/internal/api/generated"
	"github.com/bigkaa/healthvault/internal/domain/model"
	"github.com/bigkaa/healthvault/internal/service"
)

// mapRecord преобразует доменную запись в generated.Record.
func mapRecord(r model.HealthRecord) generated.Record {
	return generated.Record{
		Id:              r.ID,
		FileName:        r.FileName,
		FileType:        r.FileType,
		FileSize:        r.FileSize,
		FileSizeDisplay: model.FormatSize(r.FileSize),
		UploadDate:      r.UploadDate.UTC(),
		Category:        string(r.Category),
		CategoryLabel:   r.Category.Label(),
		Uri:             r.URI,
		Preview:         r.Preview,
	}
}

// mapRecords преобразует срез записей; пустой срез сериализуется как [].
func mapRecords(records []model.HealthRecord) []generated.Record {
	out := make([]generated.Record, 0, len(records))
	for _, r := range records {
		out = append(out, mapRecord(r))
	}
	return out
}

// ListRecords - GET /api/v1/records.
func (h *APIHandler) ListRecords(w http.ResponseWriter, r *http.Request, params generated.ListRecordsParams) {
	limit, offset := paginationDefaults(params.Limit, params.Offset)
	searchParams := service.SearchParams{Limit: limit, Offset: offset}
	if params.Q != nil {
		searchParams.Query = *params.Q
	}
	if params.Category != nil {
		searchParams.Category = model.Category(*params.Category)
	}

	result, err := h.search.Search(r.Context(), searchParams)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generated.RecordList{
		Items:   mapRecords(result.Items),
		Total:   result.Total,
		Limit:   result.Limit,
		Offset:  result.Offset,
		HasMore: result.HasMore,
		Loading: h.records.Loading(),
	})
}

// CreateRecord - POST /api/v1/records.
// Ответ 201 отправляется после имитации передачи файла.
func (h *APIHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req generated.CreateRecordJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return
	}

	params := service.UploadParams{
		FileName: req.FileName,
		FileSize: req.FileSize,
		URI:      req.Uri,
		Preview:  req.Preview,
	}
	if req.FileType != nil {
		params.FileType = *req.FileType
	}
	if req.Category != nil {
		params.Category = model.Category(*req.Category)
	}

	record, err := h.records.Upload(r.Context(), params)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapRecord(record))
}

// GetRecord - GET /api/v1/records/{record_id}.
func (h *APIHandler) GetRecord(w http.ResponseWriter, r *http.Request, recordId generated.RecordId) { //nolint:revive // имя из сгенерированного интерфейса oapi-codegen
	record, err := h.records.Get(recordId.String())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapRecord(record))
}

// DeleteRecord - DELETE /api/v1/records/{record_id}.
func (h *APIHandler) DeleteRecord(w http.ResponseWriter, r *http.Request, recordId generated.RecordId) { //nolint:revive // имя из сгенерированного интерфейса oapi-codegen
	id := recordId.String()
	if err := h.records.Delete(id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Debug("Запись удалена через API", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}
