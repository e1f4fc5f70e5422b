package service

import (
	"context"
	"testing"
	"time"

	"github.com/bigkaa/healthvault/internal/domain/model"
	"github.com/bigkaa/healthvault/internal/source"
	"github.com/bigkaa/healthvault/internal/store"
)

// newTestSearchService создаёт сервис поиска над демонстрационным набором.
func newTestSearchService(t *testing.T) (*SearchService, *CacheService, *RecordService) {
	t.Helper()

	st := newSeededStore(t)
	cache := NewCacheService(100, 5*time.Minute)
	return NewSearchService(st, cache, testLogger()), cache, NewRecordService(st, 0, 0, testLogger())
}

// ids возвращает идентификаторы записей результата.
func ids(result *SearchResult) []string {
	out := make([]string, 0, len(result.Items))
	for _, r := range result.Items {
		out = append(out, r.ID)
	}
	return out
}

// TestSearchService_Search проверяет поиск по имени файла и названию категории.
func TestSearchService_Search(t *testing.T) {
	seed := source.SeedRecords()

	tests := []struct {
		name     string
		params   SearchParams
		expected []string
	}{
		{
			name:     "пустой запрос - все записи",
			params:   SearchParams{Limit: 100},
			expected: []string{seed[0].ID, seed[1].ID, seed[2].ID},
		},
		{
			name:     "по имени файла",
			params:   SearchParams{Query: "blood", Limit: 100},
			expected: []string{seed[0].ID},
		},
		{
			name:     "без учёта регистра",
			params:   SearchParams{Query: "X-RAY", Limit: 100},
			expected: []string{seed[2].ID},
		},
		{
			name:     "по названию категории",
			params:   SearchParams{Query: "lab res", Limit: 100},
			expected: []string{seed[0].ID},
		},
		{
			name:     "общая подстрока",
			params:   SearchParams{Query: ".pdf", Limit: 100},
			expected: []string{seed[0].ID, seed[1].ID, seed[2].ID},
		},
		{
			name:     "ведущий пробел входит в подстроку",
			params:   SearchParams{Query: " chest", Limit: 100},
			expected: []string{seed[2].ID},
		},
		{
			name:     "хвостовой пробел не обрезается",
			params:   SearchParams{Query: "chest ", Limit: 100},
			expected: []string{},
		},
		{
			name:     "строка из пробелов не равна пустому запросу",
			params:   SearchParams{Query: "   ", Limit: 100},
			expected: []string{},
		},
		{
			name:     "фильтр категории",
			params:   SearchParams{Category: model.CategoryPrescriptions, Limit: 100},
			expected: []string{seed[1].ID},
		},
		{
			name:     "фильтр категории и запрос без совпадений",
			params:   SearchParams{Query: "blood", Category: model.CategoryImaging, Limit: 100},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestSearchService(t)

			result, err := svc.Search(context.Background(), tt.params)
			if err != nil {
				t.Fatalf("Search ошибка: %v", err)
			}

			got := ids(result)
			if len(got) != len(tt.expected) {
				t.Fatalf("получено %v, ожидалось %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("[%d] = %q, ожидалось %q", i, got[i], tt.expected[i])
				}
			}
			if result.Total != len(tt.expected) {
				t.Errorf("Total = %d, ожидалось %d", result.Total, len(tt.expected))
			}
		})
	}
}

// TestSearchService_Search_Pagination проверяет limit/offset и HasMore.
func TestSearchService_Search_Pagination(t *testing.T) {
	svc, _, _ := newTestSearchService(t)
	seed := source.SeedRecords()

	result, err := svc.Search(context.Background(), SearchParams{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("Search ошибка: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != seed[1].ID {
		t.Errorf("Items = %v, ожидалось [%s]", ids(result), seed[1].ID)
	}
	if result.Total != 3 {
		t.Errorf("Total = %d, ожидалось 3", result.Total)
	}
	if !result.HasMore {
		t.Error("HasMore = false, ожидался true")
	}

	result, _ = svc.Search(context.Background(), SearchParams{Limit: 2, Offset: 2})
	if len(result.Items) != 1 || result.HasMore {
		t.Errorf("последняя страница: items=%d hasMore=%v", len(result.Items), result.HasMore)
	}

	result, _ = svc.Search(context.Background(), SearchParams{Limit: 10, Offset: 10})
	if len(result.Items) != 0 || result.HasMore {
		t.Errorf("offset за пределами: items=%d hasMore=%v", len(result.Items), result.HasMore)
	}
}

// TestSearchService_Search_Cache проверяет кэширование и учёт мутаций хранилища.
func TestSearchService_Search_Cache(t *testing.T) {
	svc, cache, records := newTestSearchService(t)
	params := SearchParams{Query: "pdf", Limit: 100}

	first, err := svc.Search(context.Background(), params)
	if err != nil {
		t.Fatalf("Search ошибка: %v", err)
	}
	if _, err := svc.Search(context.Background(), params); err != nil {
		t.Fatalf("Search ошибка: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("cache.Len = %d, ожидался 1", cache.Len())
	}

	// Изменение результата не затрагивает кэш
	first.Items[0].FileName = "mutated"
	again, _ := svc.Search(context.Background(), params)
	if again.Items[0].FileName == "mutated" {
		t.Error("результат из кэша должен быть независимой копией")
	}

	// Мутация хранилища меняет версию, новый результат вычисляется заново
	if _, err := records.Upload(context.Background(), UploadParams{
		FileName: "Annual Report.pdf",
		URI:      "file:///report.pdf",
	}); err != nil {
		t.Fatalf("Upload ошибка: %v", err)
	}

	after, _ := svc.Search(context.Background(), params)
	if after.Total != 4 {
		t.Errorf("Total после загрузки = %d, ожидалось 4", after.Total)
	}
	if after.Items[0].FileName != "Annual Report.pdf" {
		t.Errorf("первая запись = %q, ожидалась новая", after.Items[0].FileName)
	}
}

// TestSearchService_Search_Canceled проверяет отмену контекста.
func TestSearchService_Search_Canceled(t *testing.T) {
	svc, _, _ := newTestSearchService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Search(ctx, SearchParams{Limit: 10}); err == nil {
		t.Fatal("ожидалась ошибка отменённого контекста")
	}
}

// TestSearchService_InvalidateCache проверяет сброс кэша после начальной загрузки.
func TestSearchService_InvalidateCache(t *testing.T) {
	st := store.New(source.NewSeedSource(50*time.Millisecond), testLogger())
	loaded := st.Start(context.Background())
	t.Cleanup(st.Stop)

	cache := NewCacheService(100, 5*time.Minute)
	svc := NewSearchService(st, cache, testLogger())

	during, err := svc.Search(context.Background(), SearchParams{Limit: 100})
	if err != nil {
		t.Fatalf("Search ошибка: %v", err)
	}
	if during.Total != 0 {
		t.Fatalf("во время загрузки Total = %d, ожидалось 0", during.Total)
	}

	if err := <-loaded; err != nil {
		t.Fatalf("загрузка: %v", err)
	}

	if n := svc.InvalidateCache(); n != 1 {
		t.Errorf("InvalidateCache = %d, ожидалось 1", n)
	}
	if cache.Len() != 0 {
		t.Errorf("cache.Len = %d, ожидался 0", cache.Len())
	}

	after, _ := svc.Search(context.Background(), SearchParams{Limit: 100})
	if after.Total != 3 {
		t.Errorf("после загрузки Total = %d, ожидалось 3", after.Total)
	}
}
