// Пакет config - загрузка и валидация конфигурации healthvault
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Источники начального набора записей.
const (
	// SourceSeed - фиксированный демонстрационный список
	SourceSeed = "seed"
	// SourcePostgres - таблица health_records в PostgreSQL
	SourcePostgres = "postgres"
)

// Config содержит все параметры конфигурации healthvault.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (по умолчанию 8040)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- Хранилище записей ---

	// Источник начальных записей: seed или postgres
	Source string
	// Имитация задержки начальной загрузки seed-источника (по умолчанию 1s)
	LoadDelay time.Duration
	// Имитация задержки передачи файла при загрузке (по умолчанию 2s)
	UploadDelay time.Duration
	// Максимальный размер загружаемого файла в байтах (по умолчанию 10 МБ)
	MaxFileSize int64

	// --- Кэш поиска ---

	// Максимальное количество закэшированных результатов поиска
	SearchCacheSize int
	// Время жизни результата поиска в кэше
	SearchCacheTTL time.Duration

	// --- PostgreSQL (только для источника postgres) ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// --- topologymetrics ---

	// Группа сервиса в метриках зависимостей
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// HV_PORT - порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("HV_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("HV_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("HV_PORT: порт %d вне диапазона 1-65535", cfg.Port)
	}

	// HV_LOG_LEVEL - уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("HV_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("HV_LOG_LEVEL: %w", err)
	}

	// HV_LOG_FORMAT - формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("HV_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("HV_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("HV_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("HV_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("HV_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("HV_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("HV_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("HV_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("HV_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("HV_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- Хранилище записей ---

	// HV_SOURCE - источник начальных записей (по умолчанию seed)
	cfg.Source = strings.ToLower(getEnvDefault("HV_SOURCE", SourceSeed))
	if cfg.Source != SourceSeed && cfg.Source != SourcePostgres {
		return nil, fmt.Errorf("HV_SOURCE: недопустимый источник %q, допустимые: seed, postgres", cfg.Source)
	}

	// HV_LOAD_DELAY - имитация задержки загрузки (0 - без задержки)
	cfg.LoadDelay, err = getEnvDuration("HV_LOAD_DELAY", time.Second)
	if err != nil {
		return nil, fmt.Errorf("HV_LOAD_DELAY: %w", err)
	}
	if cfg.LoadDelay < 0 {
		return nil, fmt.Errorf("HV_LOAD_DELAY: значение не может быть отрицательным")
	}

	// HV_UPLOAD_DELAY - имитация передачи файла (0 - без задержки)
	cfg.UploadDelay, err = getEnvDuration("HV_UPLOAD_DELAY", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("HV_UPLOAD_DELAY: %w", err)
	}
	if cfg.UploadDelay < 0 {
		return nil, fmt.Errorf("HV_UPLOAD_DELAY: значение не может быть отрицательным")
	}

	// HV_MAX_FILE_SIZE - максимальный размер файла (по умолчанию 10 МБ)
	cfg.MaxFileSize, err = getEnvInt64("HV_MAX_FILE_SIZE", 10*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("HV_MAX_FILE_SIZE: %w", err)
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("HV_MAX_FILE_SIZE: значение должно быть > 0")
	}

	// --- Кэш поиска ---

	cfg.SearchCacheSize, err = getEnvInt("HV_SEARCH_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("HV_SEARCH_CACHE_SIZE: %w", err)
	}
	if cfg.SearchCacheSize <= 0 {
		return nil, fmt.Errorf("HV_SEARCH_CACHE_SIZE: значение должно быть > 0")
	}

	cfg.SearchCacheTTL, err = getEnvDurationFallback("HV_SEARCH_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("HV_SEARCH_CACHE_TTL: %w", err)
	}

	// --- PostgreSQL ---

	if cfg.Source == SourcePostgres {
		if err := loadDatabase(cfg); err != nil {
			return nil, err
		}
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("HV_DEPHEALTH_GROUP", "healthvault")
	cfg.DephealthCheckInterval, err = getEnvDurationFallback("HV_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("HV_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	return cfg, nil
}

// loadDatabase загружает параметры PostgreSQL (обязательны для источника postgres).
func loadDatabase(cfg *Config) error {
	var err error

	if cfg.DBHost, err = getEnvRequired("HV_DB_HOST"); err != nil {
		return err
	}
	if cfg.DBPort, err = getEnvInt("HV_DB_PORT", 5432); err != nil {
		return fmt.Errorf("HV_DB_PORT: %w", err)
	}
	if cfg.DBName, err = getEnvRequired("HV_DB_NAME"); err != nil {
		return err
	}
	if cfg.DBUser, err = getEnvRequired("HV_DB_USER"); err != nil {
		return err
	}
	if cfg.DBPassword, err = getEnvRequired("HV_DB_PASSWORD"); err != nil {
		return err
	}

	cfg.DBSSLMode = getEnvDefault("HV_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return fmt.Errorf("HV_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}
	return nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL для pgxpool.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL.
// scheme - "postgres" для лейблов topologymetrics, "pgx5" для golang-migrate.
func (c *Config) DatabaseURL(scheme string) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 из переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvDurationFallback возвращает time.Duration из переменной окружения.
// Если переменная не задана, используется fallbackVal.
// Если задана - парсится и валидируется (> 0).
func getEnvDurationFallback(key string, fallbackVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallbackVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
