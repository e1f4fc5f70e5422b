// Пакет source - источники начального набора медицинских записей для store.
//
// SeedSource - фиксированный демонстрационный список с имитацией задержки сети.
// PostgresSource - read-only чтение таблицы health_records через pgx.
package source

import (
	"context"
	"time"

	"github.com/bigkaa/healthvault/internal/domain/model"
)

// DefaultSeedDelay - задержка SeedSource по умолчанию (имитация API).
const DefaultSeedDelay = time.Second

// SeedSource - источник с фиксированным набором записей.
// Delay имитирует сетевую задержку; 0 - мгновенная загрузка (тесты).
type SeedSource struct {
	Delay time.Duration
}

// NewSeedSource создаёт источник демонстрационных записей.
func NewSeedSource(delay time.Duration) *SeedSource {
	return &SeedSource{Delay: delay}
}

// Load возвращает копию демонстрационного набора после задержки.
// Прерывается отменой контекста.
func (s *SeedSource) Load(ctx context.Context) ([]model.HealthRecord, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	return SeedRecords(), nil
}

// SeedRecords возвращает демонстрационный набор (от новых к старым).
// Идентификаторы совпадают с миграцией 000002_seed_health_records.
func SeedRecords() []model.HealthRecord {
	return []model.HealthRecord{
		{
			ID:         "8c0f4a52-6d0e-4b59-9d53-1f7a2b1c0a01",
			FileName:   "Blood Test Results - Jan 2024.pdf",
			FileType:   "application/pdf",
			FileSize:   245000,
			UploadDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Category:   model.CategoryLabResults,
			URI:        "https://example.com/blood-test.pdf",
		},
		{
			ID:         "8c0f4a52-6d0e-4b59-9d53-1f7a2b1c0a02",
			FileName:   "Prescription - Medication List.pdf",
			FileType:   "application/pdf",
			FileSize:   180000,
			UploadDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Category:   model.CategoryPrescriptions,
			URI:        "https://example.com/prescription.pdf",
		},
		{
			ID:         "8c0f4a52-6d0e-4b59-9d53-1f7a2b1c0a03",
			FileName:   "X-Ray Chest.pdf",
			FileType:   "application/pdf",
			FileSize:   1200000,
			UploadDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Category:   model.CategoryImaging,
			URI:        "https://example.com/xray.pdf",
		},
	}
}
