// Пакет model - доменные модели healthvault.
// HealthRecord - метаданные загруженного медицинского документа,
// UploadStats - агрегированная статистика по текущей коллекции записей.
package model

import (
	"time"
)

// Category - категория медицинского документа.
type Category string

const (
	// CategoryLabResults - результаты анализов
	CategoryLabResults Category = "lab-results"
	// CategoryPrescriptions - рецепты и назначения
	CategoryPrescriptions Category = "prescriptions"
	// CategoryImaging - снимки (рентген, МРТ, КТ)
	CategoryImaging Category = "imaging"
	// CategoryReports - заключения и выписки
	CategoryReports Category = "reports"
	// CategoryOther - всё остальное (значение по умолчанию при загрузке)
	CategoryOther Category = "other"
)

// Categories возвращает фиксированный список категорий в порядке отображения.
func Categories() []Category {
	return []Category{
		CategoryLabResults,
		CategoryPrescriptions,
		CategoryImaging,
		CategoryReports,
		CategoryOther,
	}
}

// Known проверяет, входит ли категория в фиксированный список.
func (c Category) Known() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label возвращает отображаемое название категории.
func (c Category) Label() string {
	return CategoryLabel(string(c))
}

// HealthRecord - метаданные медицинского документа.
// Неизменяема после создания: удаляется только целиком по ID.
type HealthRecord struct {
	// ID - уникальный идентификатор (UUID v4), назначается хранилищем
	ID string `json:"id"`

	// FileName - имя файла, выбранного пользователем
	FileName string `json:"file_name"`

	// FileType - MIME-тип файла
	FileType string `json:"file_type"`

	// FileSize - размер файла в байтах (>= 0)
	FileSize int64 `json:"file_size"`

	// UploadDate - время добавления записи (UTC), назначается хранилищем
	UploadDate time.Time `json:"upload_date"`

	// Category - категория документа. Значения вне фиксированного
	// списка сохраняются как есть.
	Category Category `json:"category"`

	// URI - непрозрачная ссылка на содержимое файла.
	// Хранилище её не разрешает и не проверяет.
	URI string `json:"uri"`

	// Preview - ссылка на превью (опционально)
	Preview *string `json:"preview,omitempty"`
}

// Clone возвращает независимую копию записи.
func (r HealthRecord) Clone() HealthRecord {
	if r.Preview != nil {
		p := *r.Preview
		r.Preview = &p
	}
	return r
}

// NewRecord - данные новой записи без ID и даты загрузки.
type NewRecord struct {
	FileName string
	FileType string
	FileSize int64
	Category Category
	URI      string
	Preview  *string
}

// RecentUploadsLimit - размер списка последних загрузок в UploadStats.
const RecentUploadsLimit = 3

// UploadStats - агрегат, вычисляемый из текущей коллекции записей.
// Отдельно не хранится.
type UploadStats struct {
	// TotalFiles - количество записей
	TotalFiles int `json:"total_files"`

	// TotalSize - суммарный размер файлов в байтах
	TotalSize int64 `json:"total_size"`

	// Categories - количество записей по категориям.
	// Категории без записей отсутствуют в карте.
	Categories map[Category]int `json:"categories"`

	// RecentUploads - последние добавленные записи (не более 3, новые первые)
	RecentUploads []HealthRecord `json:"recent_uploads"`
}

// Clone возвращает глубокую копию статистики.
func (s UploadStats) Clone() UploadStats {
	out := UploadStats{
		TotalFiles:    s.TotalFiles,
		TotalSize:     s.TotalSize,
		Categories:    make(map[Category]int, len(s.Categories)),
		RecentUploads: make([]HealthRecord, 0, len(s.RecentUploads)),
	}
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	for _, r := range s.RecentUploads {
		out.RecentUploads = append(out.RecentUploads, r.Clone())
	}
	return out
}

// ComputeStats строит UploadStats по коллекции, упорядоченной от новых к старым.
func ComputeStats(records []HealthRecord) UploadStats {
	stats := UploadStats{
		TotalFiles:    len(records),
		Categories:    make(map[Category]int),
		RecentUploads: make([]HealthRecord, 0, RecentUploadsLimit),
	}
	for _, r := range records {
		stats.TotalSize += r.FileSize
		stats.Categories[r.Category]++
	}
	for i := 0; i < len(records) && i < RecentUploadsLimit; i++ {
		stats.RecentUploads = append(stats.RecentUploads, records[i].Clone())
	}
	return stats
}
