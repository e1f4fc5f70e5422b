// Пакет store - потокобезопасное in-memory хранилище медицинских записей
// с агрегированной статистикой.
//
// Хранилище - единственный владелец коллекции записей и агрегата UploadStats.
// Коллекция упорядочена от новых к старым. Агрегат пересчитывается из коллекции
// синхронно после каждой мутации (Add, Delete, завершение загрузки), поэтому
// устаревшая статистика между мутацией и следующим чтением не наблюдаема.
//
// Не персистентное: при рестарте заполняется заново из Source.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/healthvault/internal/domain/model"
)

// Ошибки хранилища.
var (
	// ErrValidation - запись не прошла проверку обязательных полей.
	ErrValidation = errors.New("некорректные данные записи")
	// ErrStopped - хранилище остановлено, загрузка прервана.
	ErrStopped = errors.New("хранилище остановлено")
)

// ValidationError - ошибка проверки конкретного поля записи.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Source - источник начального набора записей.
// Реализации: source.SeedSource (фиксированный список), source.PostgresSource.
type Source interface {
	Load(ctx context.Context) ([]model.HealthRecord, error)
}

// Option - функциональная опция Store.
type Option func(*Store)

// WithClock задаёт источник текущего времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator задаёт генератор идентификаторов (для тестов).
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store - хранилище записей.
// Использует sync.RWMutex для конкурентного чтения и эксклюзивной записи.
type Store struct {
	mu      sync.RWMutex
	records []model.HealthRecord // от новых к старым
	stats   model.UploadStats
	loading bool
	loadErr error
	version uint64

	source Source
	now    func() time.Time
	newID  func() string
	logger *slog.Logger

	// Управление фоновой загрузкой
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New создаёт пустое хранилище. Для заполнения вызовите Start или Load.
func New(source Source, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		stats:  model.ComputeStats(nil),
		source: source,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
		logger: logger.With(slog.String("component", "record_store")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start запускает асинхронную загрузку записей из Source.
// Флаг Loading выставляется до возврата и снимается по завершении загрузки.
// Возвращаемый канал получает результат загрузки (nil при успехе) и закрывается.
func (s *Store) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)

	s.mu.Lock()
	s.loading = true
	s.loadErr = nil
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		done <- s.load(ctx)
		close(done)
	}()

	return done
}

// Load синхронно загружает записи из Source.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.loadErr = nil
	s.mu.Unlock()

	return s.load(ctx)
}

// load выполняет загрузку и применяет результат.
// Записи, добавленные во время загрузки, остаются впереди загруженных.
func (s *Store) load(ctx context.Context) error {
	start := time.Now()

	loaded, err := s.source.Load(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %w", ErrStopped, err)
		}
		s.mu.Lock()
		s.loading = false
		s.loadErr = err
		s.mu.Unlock()

		loadsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Ошибка загрузки записей",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("загрузка записей: %w", err)
	}

	s.mu.Lock()
	existing := make(map[string]struct{}, len(s.records))
	for _, r := range s.records {
		existing[r.ID] = struct{}{}
	}
	merged := make([]model.HealthRecord, 0, len(s.records)+len(loaded))
	merged = append(merged, s.records...)
	for _, r := range loaded {
		if _, dup := existing[r.ID]; dup {
			continue
		}
		merged = append(merged, r.Clone())
	}
	s.records = merged
	s.loading = false
	s.recomputeLocked()
	total := len(s.records)
	s.mu.Unlock()

	loadsTotal.WithLabelValues("success").Inc()
	s.logger.Info("Записи загружены",
		slog.Int("loaded", len(loaded)),
		slog.Int("records", total),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// Stop прерывает фоновую загрузку (если она идёт) и ожидает её завершения.
func (s *Store) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// Loading возвращает true, пока начальная загрузка не завершена.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LoadErr возвращает ошибку последней загрузки (nil при успехе).
func (s *Store) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Version возвращает счётчик мутаций коллекции.
// Используется как часть ключа кэша результатов поиска.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Add добавляет новую запись в начало коллекции.
// ID и дата загрузки назначаются хранилищем. Категория не проверяется
// и сохраняется как передана, включая неизвестные и пустые значения.
func (s *Store) Add(in model.NewRecord) (model.HealthRecord, error) {
	if err := Validate(in); err != nil {
		opsTotal.WithLabelValues("add", "invalid").Inc()
		return model.HealthRecord{}, err
	}

	record := model.HealthRecord{
		ID:         s.newID(),
		FileName:   in.FileName,
		FileType:   in.FileType,
		FileSize:   in.FileSize,
		UploadDate: s.now(),
		Category:   in.Category,
		URI:        in.URI,
		Preview:    in.Preview,
	}
	record = record.Clone()

	s.mu.Lock()
	records := make([]model.HealthRecord, 0, len(s.records)+1)
	records = append(records, record)
	records = append(records, s.records...)
	s.records = records
	s.recomputeLocked()
	s.mu.Unlock()

	opsTotal.WithLabelValues("add", "success").Inc()
	s.logger.Debug("Запись добавлена",
		slog.String("id", record.ID),
		slog.String("file_name", record.FileName),
		slog.Int64("file_size", record.FileSize),
		slog.String("category", string(record.Category)),
	)

	return record.Clone(), nil
}

// Delete удаляет запись по ID.
// Возвращает true, если запись была найдена и удалена.
// Отсутствующий ID - не ошибка: состояние не меняется.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := -1
	for i := range s.records {
		if s.records[i].ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		opsTotal.WithLabelValues("delete", "not_found").Inc()
		return false
	}

	records := make([]model.HealthRecord, 0, len(s.records)-1)
	records = append(records, s.records[:pos]...)
	records = append(records, s.records[pos+1:]...)
	s.records = records
	s.recomputeLocked()

	opsTotal.WithLabelValues("delete", "success").Inc()
	s.logger.Debug("Запись удалена", slog.String("id", id))
	return true
}

// Get возвращает копию записи по ID.
func (s *Store) Get(id string) (model.HealthRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return model.HealthRecord{}, false
}

// Records возвращает копию коллекции (от новых к старым).
// Во время начальной загрузки коллекция пуста, если ничего не добавлено.
func (s *Store) Records() []model.HealthRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.HealthRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	return out
}

// Snapshot возвращает копию коллекции вместе с версией, к которой она относится.
func (s *Store) Snapshot() ([]model.HealthRecord, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.HealthRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	return out, s.version
}

// Stats возвращает копию текущего агрегата.
func (s *Store) Stats() model.UploadStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats.Clone()
}

// recomputeLocked пересчитывает агрегат и метрики. Вызывать под s.mu.Lock.
func (s *Store) recomputeLocked() {
	s.stats = model.ComputeStats(s.records)
	s.version++

	recordsGauge.Set(float64(s.stats.TotalFiles))
	recordsSizeGauge.Set(float64(s.stats.TotalSize))
}

// Validate проверяет обязательные поля новой записи.
func Validate(in model.NewRecord) error {
	if strings.TrimSpace(in.FileName) == "" {
		return &ValidationError{Field: "file_name", Message: "обязательное поле"}
	}
	if strings.TrimSpace(in.FileType) == "" {
		return &ValidationError{Field: "file_type", Message: "обязательное поле"}
	}
	if in.FileSize < 0 {
		return &ValidationError{Field: "file_size", Message: "размер не может быть отрицательным"}
	}
	if strings.TrimSpace(in.URI) == "" {
		return &ValidationError{Field: "uri", Message: "обязательное поле"}
	}
	return nil
}
