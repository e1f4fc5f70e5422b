// Пакет service - бизнес-логика healthvault поверх хранилища записей.
// CacheService - LRU-кэш результатов поиска с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hv_search_cache_hits_total",
		Help: "Общее количество попаданий в кэш результатов поиска.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hv_search_cache_misses_total",
		Help: "Общее количество промахов кэша результатов поиска.",
	})
)

// CacheService - LRU-кэш результатов поиска с автоматическим TTL.
// Ключ включает версию хранилища, поэтому после мутации старые
// результаты просто перестают запрашиваться и вытесняются по TTL/LRU.
type CacheService struct {
	cache *expirable.LRU[string, *SearchResult]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *SearchResult](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает результат поиска из кэша по ключу.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(key string) (*SearchResult, bool) {
	val, ok := c.cache.Get(key)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет результат в кэше.
func (c *CacheService) Set(key string, result *SearchResult) {
	c.cache.Add(key, result)
}

// Purge очищает кэш и возвращает количество удалённых результатов.
func (c *CacheService) Purge() int {
	n := c.cache.Len()
	c.cache.Purge()
	return n
}

// Len возвращает количество результатов в кэше.
func (c *CacheService) Len() int {
	return c.cache.Len()
}
