// search.go - сервис поиска записей.
// Координирует хранилище, LRU cache и Prometheus-метрики.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/healthvault/internal/domain/model"
)

// Prometheus-метрики поиска.
var (
	searchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hv_search_total",
		Help: "Общее количество поисковых запросов.",
	})
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hv_search_duration_seconds",
		Help:    "Длительность поисковых запросов.",
		Buckets: prometheus.DefBuckets,
	})
)

// SearchParams - параметры поиска записей.
type SearchParams struct {
	// Query - подстрока имени файла или названия категории (без учёта регистра)
	Query string
	// Category - фильтр по категории (пустой - все)
	Category model.Category
	// Limit - размер страницы
	Limit int
	// Offset - смещение
	Offset int
}

// key - ключ кэша для версии хранилища.
func (p SearchParams) key(version uint64) string {
	return fmt.Sprintf("%d|%q|%q|%d|%d",
		version, normalizeQuery(p.Query), p.Category, p.Limit, p.Offset)
}

// SearchResult - результат поиска с пагинацией.
type SearchResult struct {
	// Items - найденные записи (от новых к старым)
	Items []model.HealthRecord
	// Total - общее количество совпадений
	Total int
	// Limit - запрошенный лимит
	Limit int
	// Offset - текущее смещение
	Offset int
	// HasMore - есть ли ещё результаты
	HasMore bool
}

// clone возвращает независимую копию результата.
func (r *SearchResult) clone() *SearchResult {
	out := *r
	out.Items = make([]model.HealthRecord, 0, len(r.Items))
	for _, item := range r.Items {
		out.Items = append(out.Items, item.Clone())
	}
	return &out
}

// SearchService - сервис поиска записей.
type SearchService struct {
	store  RecordStore
	cache  *CacheService
	logger *slog.Logger
}

// NewSearchService создаёт сервис поиска.
func NewSearchService(st RecordStore, cache *CacheService, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  st,
		cache:  cache,
		logger: logger.With(slog.String("component", "search_service")),
	}
}

// Search выполняет поиск записей по параметрам.
// Результат кэшируется по версии хранилища и параметрам.
func (s *SearchService) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("поиск записей: %w", err)
	}

	start := time.Now()
	searchTotal.Inc()

	if cached, ok := s.cache.Get(params.key(s.store.Version())); ok {
		return cached.clone(), nil
	}

	records, version := s.store.Snapshot()
	query := normalizeQuery(params.Query)

	matched := make([]model.HealthRecord, 0, len(records))
	for _, r := range records {
		if params.Category != "" && r.Category != params.Category {
			continue
		}
		if !matches(r, query) {
			continue
		}
		matched = append(matched, r)
	}

	total := len(matched)
	from := min(params.Offset, total)
	to := total
	if params.Limit > 0 {
		to = min(from+params.Limit, total)
	}

	result := &SearchResult{
		Items:   matched[from:to],
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: to < total,
	}
	s.cache.Set(params.key(version), result)

	duration := time.Since(start)
	searchDuration.Observe(duration.Seconds())

	s.logger.Debug("Поиск выполнен",
		slog.String("query", query),
		slog.String("category", string(params.Category)),
		slog.Int("total", total),
		slog.Int("returned", len(result.Items)),
		slog.Duration("duration", duration),
	)

	return result.clone(), nil
}

// InvalidateCache сбрасывает кэш результатов.
// Вызывается по завершении начальной загрузки: результаты, вычисленные
// над пустой коллекцией, больше не будут запрошены.
func (s *SearchService) InvalidateCache() int {
	n := s.cache.Purge()
	s.logger.Debug("Кэш поиска сброшен", slog.Int("entries", n))
	return n
}

// normalizeQuery приводит строку поиска к нижнему регистру.
// Пробелы сохраняются: "chest " не совпадает с "X-Ray Chest.pdf".
func normalizeQuery(q string) string {
	return strings.ToLower(q)
}

// matches проверяет совпадение по имени файла или названию категории.
// Пустая строка поиска совпадает с любой записью.
func matches(r model.HealthRecord, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.FileName), query) {
		return true
	}
	return strings.Contains(strings.ToLower(r.Category.Label()), query)
}
