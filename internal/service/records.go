// records.go - сервис загрузки, получения и удаления медицинских записей.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/healthvault/internal/domain/model"
	"github.com/bigkaa/healthvault/internal/store"
)

// DefaultFileType - MIME-тип загружаемого файла, если клиент его не передал.
const DefaultFileType = "application/pdf"

// Prometheus-метрики загрузки.
var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hv_uploads_total",
		Help: "Общее количество загрузок записей по результату.",
	}, []string{"result"})
	uploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hv_upload_duration_seconds",
		Help:    "Длительность загрузки записи, включая имитацию передачи файла.",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordStore - операции хранилища, используемые сервисным слоем.
// Реализуется *store.Store.
type RecordStore interface {
	Add(in model.NewRecord) (model.HealthRecord, error)
	Delete(id string) bool
	Get(id string) (model.HealthRecord, bool)
	Snapshot() ([]model.HealthRecord, uint64)
	Stats() model.UploadStats
	Version() uint64
	Loading() bool
	LoadErr() error
}

// UploadParams - параметры загрузки новой записи.
type UploadParams struct {
	FileName string
	// FileType - MIME-тип; пустой заменяется на DefaultFileType
	FileType string
	FileSize int64
	// Category - пустая заменяется на model.CategoryOther
	Category model.Category
	URI      string
	Preview  *string
}

// CategoryCount - количество записей в категории с отображаемым названием.
type CategoryCount struct {
	Category model.Category
	Label    string
	Count    int
}

// RecordService - сервис работы с записями.
type RecordService struct {
	store       RecordStore
	uploadDelay time.Duration
	maxFileSize int64
	logger      *slog.Logger
}

// NewRecordService создаёт сервис записей.
// uploadDelay - имитация передачи файла (0 - без задержки).
// maxFileSize - максимальный размер файла в байтах (0 - без ограничения).
func NewRecordService(
	st RecordStore,
	uploadDelay time.Duration,
	maxFileSize int64,
	logger *slog.Logger,
) *RecordService {
	return &RecordService{
		store:       st,
		uploadDelay: uploadDelay,
		maxFileSize: maxFileSize,
		logger:      logger.With(slog.String("component", "record_service")),
	}
}

// Upload добавляет новую запись.
// Проверки выполняются до имитации передачи файла; отмена ctx прерывает ожидание.
func (s *RecordService) Upload(ctx context.Context, params UploadParams) (model.HealthRecord, error) {
	start := time.Now()

	in := model.NewRecord{
		FileName: strings.TrimSpace(params.FileName),
		FileType: strings.TrimSpace(params.FileType),
		FileSize: params.FileSize,
		Category: params.Category,
		URI:      strings.TrimSpace(params.URI),
		Preview:  params.Preview,
	}
	if in.FileType == "" {
		in.FileType = DefaultFileType
	}
	if in.Category == "" {
		in.Category = model.CategoryOther
	}

	if s.maxFileSize > 0 && in.FileSize > s.maxFileSize {
		uploadsTotal.WithLabelValues("too_large").Inc()
		return model.HealthRecord{}, fmt.Errorf("%w: %d байт (максимум %d)",
			ErrFileTooLarge, in.FileSize, s.maxFileSize)
	}
	if err := store.Validate(in); err != nil {
		uploadsTotal.WithLabelValues("invalid").Inc()
		return model.HealthRecord{}, err
	}

	if err := s.waitTransfer(ctx); err != nil {
		uploadsTotal.WithLabelValues("canceled").Inc()
		return model.HealthRecord{}, fmt.Errorf("загрузка прервана: %w", err)
	}

	record, err := s.store.Add(in)
	if err != nil {
		uploadsTotal.WithLabelValues("invalid").Inc()
		return model.HealthRecord{}, err
	}

	duration := time.Since(start)
	uploadsTotal.WithLabelValues("success").Inc()
	uploadDuration.Observe(duration.Seconds())

	s.logger.Info("Запись загружена",
		slog.String("id", record.ID),
		slog.String("file_name", record.FileName),
		slog.Int64("file_size", record.FileSize),
		slog.String("category", string(record.Category)),
		slog.Duration("duration", duration),
	)

	return record, nil
}

// waitTransfer ожидает uploadDelay или отмену контекста.
func (s *RecordService) waitTransfer(ctx context.Context) error {
	if s.uploadDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.uploadDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get возвращает запись по ID.
func (s *RecordService) Get(id string) (model.HealthRecord, error) {
	record, ok := s.store.Get(id)
	if !ok {
		return model.HealthRecord{}, ErrNotFound
	}
	return record, nil
}

// Delete удаляет запись по ID.
// Хранилище не считает отсутствующий ID ошибкой; для API это ErrNotFound.
func (s *RecordService) Delete(id string) error {
	if !s.store.Delete(id) {
		return ErrNotFound
	}
	s.logger.Info("Запись удалена", slog.String("id", id))
	return nil
}

// Stats возвращает текущий агрегат.
func (s *RecordService) Stats() model.UploadStats {
	return s.store.Stats()
}

// Loading сообщает, идёт ли начальная загрузка записей.
func (s *RecordService) Loading() bool {
	return s.store.Loading()
}

// CategorySummary возвращает все категории перечисления в фиксированном порядке
// (включая пустые), затем сохранённые неизвестные категории по алфавиту.
func (s *RecordService) CategorySummary() []CategoryCount {
	counts := s.store.Stats().Categories

	known := model.Categories()
	out := make([]CategoryCount, 0, len(known)+len(counts))
	for _, c := range known {
		out = append(out, CategoryCount{
			Category: c,
			Label:    c.Label(),
			Count:    counts[c],
		})
	}

	var unknown []model.Category
	for c := range counts {
		if !c.Known() {
			unknown = append(unknown, c)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	for _, c := range unknown {
		out = append(out, CategoryCount{
			Category: c,
			Label:    c.Label(),
			Count:    counts[c],
		})
	}

	return out
}
