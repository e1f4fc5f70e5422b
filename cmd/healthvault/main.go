// main.go - точка входа healthvault.
// Сборка зависимостей: config → logger → источник записей → store (асинхронная
// начальная загрузка) → сервисы → handlers → HTTP-сервер.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/healthvault/internal/api/handlers"
	"github.com/bigkaa/healthvault/internal/api/middleware"
	"github.com/bigkaa/healthvault/internal/api/openapi"
	"github.com/bigkaa/healthvault/internal/config"
	"github.com/bigkaa/healthvault/internal/database"
	"github.com/bigkaa/healthvault/internal/server"
	"github.com/bigkaa/healthvault/internal/service"
	"github.com/bigkaa/healthvault/internal/source"
	"github.com/bigkaa/healthvault/internal/store"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("healthvault запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("source", cfg.Source),
	)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("healthvault остановлен")
}

// run собирает компоненты и блокируется до завершения HTTP-сервера.
// Отложенные вызовы освобождают ресурсы в обратном порядке.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var (
		src      store.Source
		checkers []handlers.ReadinessChecker
	)

	// 3. Источник начальных записей
	switch cfg.Source {
	case config.SourcePostgres:
		if os.Getenv("HV_DEPHEALTH_GROUP") == "" {
			logger.Warn("HV_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
				slog.String("default", cfg.DephealthGroup),
			)
		}

		// 3.1 Применение миграций БД
		logger.Info("Применение миграций БД...")
		if err := database.Migrate(cfg, logger); err != nil {
			return fmt.Errorf("миграции БД: %w", err)
		}

		// 3.2 Подключение к PostgreSQL (pgxpool)
		pool, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		// 3.3 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
		pgDB := stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()

		dephealthSvc, err := service.NewDephealthService(
			"healthvault",
			cfg.DephealthGroup,
			pgDB,
			cfg.DatabaseURL("postgres"),
			cfg.DephealthCheckInterval,
			logger,
		)
		if err != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", err.Error()),
			)
		} else if err := dephealthSvc.Start(ctx); err != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		} else {
			defer dephealthSvc.Stop()
			checkers = append(checkers, dephealthSvc)
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}

		src = source.NewPostgresSource(pool)
		checkers = append(checkers, database.NewReadinessChecker(pool))
	default:
		src = source.NewSeedSource(cfg.LoadDelay)
	}

	// 4. Хранилище записей: начальная загрузка идёт в фоне,
	// до её завершения /health/ready отвечает 503
	recordStore := store.New(src, logger)

	// 5. Сервисы
	recordSvc := service.NewRecordService(recordStore, cfg.UploadDelay, cfg.MaxFileSize, logger)
	cacheSvc := service.NewCacheService(cfg.SearchCacheSize, cfg.SearchCacheTTL)
	searchSvc := service.NewSearchService(recordStore, cacheSvc, logger)

	loaded := recordStore.Start(ctx)
	defer recordStore.Stop()

	go func() {
		err := <-loaded
		switch {
		case err == nil:
			searchSvc.InvalidateCache()
		case !errors.Is(err, store.ErrStopped):
			logger.Error("Начальная загрузка записей не выполнена", slog.String("error", err.Error()))
		}
	}()

	// 6. Handlers
	healthHandler := handlers.NewHealthHandler(recordStore, checkers...)
	apiHandler := handlers.NewAPIHandler(recordSvc, searchSvc, healthHandler, logger)

	// 7. Middleware: метрики, логирование, проверка по OpenAPI контракту
	doc, err := openapi.Load(ctx)
	if err != nil {
		return err
	}
	validator, err := middleware.OpenAPIValidator(doc, logger)
	if err != nil {
		return err
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
		validator,
	}

	// 8. HTTP-сервер (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, apiHandler, middlewares...)
	return srv.Run(ctx)
}
