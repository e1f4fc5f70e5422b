package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bigkaa/healthvault/internal/domain/model"
)

// DBTX - интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// recordColumns - столбцы таблицы health_records для SELECT.
const recordColumns = `id, file_name, file_type, file_size, upload_date, category, uri, preview`

// PostgresSource - источник записей из таблицы health_records.
// Только чтение: мутации живут в памяти процесса.
type PostgresSource struct {
	db DBTX
}

// NewPostgresSource создаёт источник записей PostgreSQL.
func NewPostgresSource(db DBTX) *PostgresSource {
	return &PostgresSource{db: db}
}

// Load читает все записи, новые первыми.
func (s *PostgresSource) Load(ctx context.Context) ([]model.HealthRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM health_records ORDER BY upload_date DESC, id`, recordColumns)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения health_records: %w", err)
	}
	defer rows.Close()

	var result []model.HealthRecord
	for rows.Next() {
		var (
			r        model.HealthRecord
			category string
		)
		if err := rows.Scan(
			&r.ID, &r.FileName, &r.FileType, &r.FileSize, &r.UploadDate, &category, &r.URI, &r.Preview,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		r.Category = model.Category(category)
		r.UploadDate = r.UploadDate.UTC()
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}

	return result, nil
}
