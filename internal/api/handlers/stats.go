// stats.go - обработчики агрегированной статистики:
// GET /api/v1/stats и GET /api/v1/categories.
package handlers

import (
	"net/http"

	"github.com/bigkaa/healthvault/internal/api/generated"
	"github.com/bigkaa/healthvault/internal/domain/model"
)

// mapStats преобразует агрегат в generated.Stats.
func mapStats(stats model.UploadStats, loading bool) generated.Stats {
	categories := make(map[string]int, len(stats.Categories))
	for c, n := range stats.Categories {
		categories[string(c)] = n
	}

	return generated.Stats{
		TotalFiles:       stats.TotalFiles,
		TotalSize:        stats.TotalSize,
		TotalSizeDisplay: model.FormatSize(stats.TotalSize),
		Categories:       categories,
		RecentUploads:    mapRecords(stats.RecentUploads),
		Loading:          loading,
	}
}

// GetStats - GET /api/v1/stats.
func (h *APIHandler) GetStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, mapStats(h.records.Stats(), h.records.Loading()))
}

// ListCategories - GET /api/v1/categories.
// Все категории перечисления (включая пустые), затем неизвестные сохранённые.
func (h *APIHandler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	summary := h.records.CategorySummary()

	items := make([]generated.CategoryCount, 0, len(summary))
	for _, c := range summary {
		items = append(items, generated.CategoryCount{
			Category: string(c.Category),
			Label:    c.Label,
			Count:    c.Count,
		})
	}

	writeJSON(w, http.StatusOK, generated.CategoryList{Items: items})
}
