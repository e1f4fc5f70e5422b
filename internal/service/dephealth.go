// dephealth.go - мониторинг PostgreSQL через topologymetrics SDK.
// Включается только при HV_SOURCE=postgres: проверка идёт через *sql.DB
// поверх того же pgxpool, которым пользуется источник записей.
//
// Метрики app_dependency_health и app_dependency_latency_seconds
// публикуются на /metrics, состояние также попадает в /health/ready.
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
)

// Статусы readiness, совпадают с handlers.
const (
	readyOK       = "ok"
	readyDegraded = "degraded"
)

// DephealthService - периодическая проверка PostgreSQL.
// Реализует handlers.ReadinessChecker.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга PostgreSQL.
// db - *sql.DB из stdlib.OpenDBFromPool, pgConnURL - только для лейблов метрик.
// opts дополняют настройки SDK (в тестах - dephealth.WithRegisterer).
func NewDephealthService(
	serviceID, group string,
	db *sql.DB,
	pgConnURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
	opts ...dephealth.Option,
) (*DephealthService, error) {
	all := append([]dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(db)),
			dephealth.FromURL(pgConnURL),
			dephealth.CheckInterval(checkInterval),
			dephealth.Critical(true),
		),
	}, opts...)

	dh, err := dephealth.New(serviceID, group, all...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг PostgreSQL запущен")
	return ds.dh.Start(ctx)
}

// Stop останавливает проверку.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг PostgreSQL остановлен")
}

// Health - состояние зависимостей, ключ "имя:хост:порт".
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

// Name - ключ проверки в ответе /health/ready.
func (ds *DephealthService) Name() string {
	return "dependencies"
}

// CheckReady сводит Health к статусу readiness.
// Недоступная зависимость даёт degraded: прямой ping базы проверяется отдельно.
func (ds *DephealthService) CheckReady() (status, message string) {
	return readinessOf(ds.Health())
}

// readinessOf - статус и сообщение по карте состояния зависимостей.
func readinessOf(health map[string]bool) (status, message string) {
	if len(health) == 0 {
		return readyOK, "проверки ещё не выполнялись"
	}

	var down []string
	for name, ok := range health {
		if !ok {
			down = append(down, name)
		}
	}
	if len(down) == 0 {
		return readyOK, "зависимости доступны"
	}

	sort.Strings(down)
	return readyDegraded, "недоступны: " + strings.Join(down, ", ")
}
