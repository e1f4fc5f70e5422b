package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/bigkaa/healthvault/internal/domain/model"
	"github.com/bigkaa/healthvault/internal/source"
	"github.com/bigkaa/healthvault/internal/store"
)

// --- Mock store ---

// mockStore - мок RecordStore для unit-тестов.
type mockStore struct {
	addFn    func(in model.NewRecord) (model.HealthRecord, error)
	deleteFn func(id string) bool
	getFn    func(id string) (model.HealthRecord, bool)
	stats    model.UploadStats
}

func (m *mockStore) Add(in model.NewRecord) (model.HealthRecord, error) {
	if m.addFn != nil {
		return m.addFn(in)
	}
	return model.HealthRecord{ID: "mock-id", FileName: in.FileName}, nil
}

func (m *mockStore) Delete(id string) bool {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return false
}

func (m *mockStore) Get(id string) (model.HealthRecord, bool) {
	if m.getFn != nil {
		return m.getFn(id)
	}
	return model.HealthRecord{}, false
}

func (m *mockStore) Snapshot() ([]model.HealthRecord, uint64) { return nil, 0 }
func (m *mockStore) Stats() model.UploadStats                 { return m.stats }
func (m *mockStore) Version() uint64                          { return 0 }
func (m *mockStore) Loading() bool                            { return false }
func (m *mockStore) LoadErr() error                           { return nil }

// testLogger возвращает логгер для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newSeededStore создаёт хранилище, загруженное демонстрационным набором.
func newSeededStore(t *testing.T) *store.Store {
	t.Helper()

	st := store.New(source.NewSeedSource(0), testLogger())
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("Load ошибка: %v", err)
	}
	return st
}

// --- Тесты RecordService ---

// TestRecordService_Upload_Defaults проверяет значения по умолчанию для типа и категории.
func TestRecordService_Upload_Defaults(t *testing.T) {
	var got model.NewRecord
	st := &mockStore{
		addFn: func(in model.NewRecord) (model.HealthRecord, error) {
			got = in
			return model.HealthRecord{ID: "new-id", FileName: in.FileName, Category: in.Category}, nil
		},
	}
	svc := NewRecordService(st, 0, 1024, testLogger())

	rec, err := svc.Upload(context.Background(), UploadParams{
		FileName: "  scan.pdf ",
		FileSize: 100,
		URI:      "file:///scan.pdf",
	})
	if err != nil {
		t.Fatalf("Upload ошибка: %v", err)
	}
	if rec.ID != "new-id" {
		t.Errorf("ID = %q, ожидался new-id", rec.ID)
	}
	if got.FileName != "scan.pdf" {
		t.Errorf("FileName = %q, ожидалось scan.pdf", got.FileName)
	}
	if got.FileType != DefaultFileType {
		t.Errorf("FileType = %q, ожидался %q", got.FileType, DefaultFileType)
	}
	if got.Category != model.CategoryOther {
		t.Errorf("Category = %q, ожидалась other", got.Category)
	}
}

// TestRecordService_Upload_TooLarge проверяет ограничение размера файла.
func TestRecordService_Upload_TooLarge(t *testing.T) {
	called := false
	st := &mockStore{
		addFn: func(in model.NewRecord) (model.HealthRecord, error) {
			called = true
			return model.HealthRecord{}, nil
		},
	}
	svc := NewRecordService(st, 0, 1024, testLogger())

	_, err := svc.Upload(context.Background(), UploadParams{
		FileName: "big.pdf",
		FileSize: 1025,
		URI:      "file:///big.pdf",
	})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("ошибка = %v, ожидалась ErrFileTooLarge", err)
	}
	if called {
		t.Error("Add не должен вызываться для слишком большого файла")
	}
}

// TestRecordService_Upload_ValidationBeforeDelay проверяет, что некорректные
// данные отклоняются без ожидания передачи файла.
func TestRecordService_Upload_ValidationBeforeDelay(t *testing.T) {
	svc := NewRecordService(&mockStore{}, time.Hour, 0, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := svc.Upload(ctx, UploadParams{FileName: "", URI: "file:///x"})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("ошибка = %v, ожидалась store.ErrValidation", err)
	}

	var verr *store.ValidationError
	if !errors.As(err, &verr) || verr.Field != "file_name" {
		t.Errorf("ожидалась ошибка поля file_name, получено %v", err)
	}
}

// TestRecordService_Upload_Canceled проверяет прерывание имитации передачи.
func TestRecordService_Upload_Canceled(t *testing.T) {
	called := false
	st := &mockStore{
		addFn: func(in model.NewRecord) (model.HealthRecord, error) {
			called = true
			return model.HealthRecord{}, nil
		},
	}
	svc := NewRecordService(st, time.Hour, 0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Upload(ctx, UploadParams{FileName: "a.pdf", URI: "file:///a.pdf"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ошибка = %v, ожидалась context.Canceled", err)
	}
	if called {
		t.Error("Add не должен вызываться после отмены")
	}
}

// TestRecordService_Upload_Store проверяет загрузку в реальное хранилище с задержкой.
func TestRecordService_Upload_Store(t *testing.T) {
	st := newSeededStore(t)
	svc := NewRecordService(st, 20*time.Millisecond, 10485760, testLogger())

	start := time.Now()
	rec, err := svc.Upload(context.Background(), UploadParams{
		FileName: "MRI Knee.pdf",
		FileSize: 1000,
		Category: model.CategoryImaging,
		URI:      "file:///mri.pdf",
	})
	if err != nil {
		t.Fatalf("Upload ошибка: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Upload завершился за %v, ожидалось >= 20ms", elapsed)
	}

	stats := svc.Stats()
	if stats.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, ожидалось 4", stats.TotalFiles)
	}
	if stats.TotalSize != 1626000 {
		t.Errorf("TotalSize = %d, ожидалось 1626000", stats.TotalSize)
	}
	if stats.Categories[model.CategoryImaging] != 2 {
		t.Errorf("Categories[imaging] = %d, ожидалось 2", stats.Categories[model.CategoryImaging])
	}
	if stats.RecentUploads[0].ID != rec.ID {
		t.Errorf("RecentUploads[0] = %q, ожидалась новая запись %q", stats.RecentUploads[0].ID, rec.ID)
	}
}

// TestRecordService_Get проверяет получение записи и ErrNotFound.
func TestRecordService_Get(t *testing.T) {
	svc := NewRecordService(newSeededStore(t), 0, 0, testLogger())
	seed := source.SeedRecords()

	rec, err := svc.Get(seed[1].ID)
	if err != nil {
		t.Fatalf("Get ошибка: %v", err)
	}
	if rec.FileName != seed[1].FileName {
		t.Errorf("FileName = %q, ожидалось %q", rec.FileName, seed[1].FileName)
	}

	if _, err := svc.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ошибка = %v, ожидалась ErrNotFound", err)
	}
}

// TestRecordService_Delete проверяет удаление и пересчёт агрегата.
func TestRecordService_Delete(t *testing.T) {
	svc := NewRecordService(newSeededStore(t), 0, 0, testLogger())
	seed := source.SeedRecords()

	if err := svc.Delete(seed[2].ID); err != nil {
		t.Fatalf("Delete ошибка: %v", err)
	}

	stats := svc.Stats()
	if stats.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, ожидалось 2", stats.TotalFiles)
	}
	if stats.TotalSize != 425000 {
		t.Errorf("TotalSize = %d, ожидалось 425000", stats.TotalSize)
	}
	if _, ok := stats.Categories[model.CategoryImaging]; ok {
		t.Error("категория imaging должна исчезнуть из агрегата")
	}

	if err := svc.Delete(seed[2].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторное удаление: ошибка = %v, ожидалась ErrNotFound", err)
	}
}

// TestRecordService_CategorySummary проверяет порядок и счётчики категорий.
func TestRecordService_CategorySummary(t *testing.T) {
	st := &mockStore{
		stats: model.UploadStats{
			Categories: map[model.Category]int{
				model.CategoryLabResults: 2,
				model.CategoryImaging:    1,
				"vaccination":            1,
				"dental":                 3,
			},
		},
	}
	svc := NewRecordService(st, 0, 0, testLogger())

	got := svc.CategorySummary()
	want := []CategoryCount{
		{Category: model.CategoryLabResults, Label: "Lab Results", Count: 2},
		{Category: model.CategoryPrescriptions, Label: "Prescriptions", Count: 0},
		{Category: model.CategoryImaging, Label: "Imaging", Count: 1},
		{Category: model.CategoryReports, Label: "Reports", Count: 0},
		{Category: model.CategoryOther, Label: "Other", Count: 0},
		{Category: "dental", Label: "dental", Count: 3},
		{Category: "vaccination", Label: "vaccination", Count: 1},
	}

	if len(got) != len(want) {
		t.Fatalf("len = %d, ожидалось %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, ожидалось %+v", i, got[i], want[i])
		}
	}
}
