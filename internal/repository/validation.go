// Package repository persists validation outcomes for auditing and
// threshold tuning.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adastrum/photogate/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories use, so tests can
// substitute pgxmock.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ValidationRepository struct {
	pool PgxPool
}

func NewValidationRepository(pool PgxPool) *ValidationRepository {
	return &ValidationRepository{pool: pool}
}

func (r *ValidationRepository) Create(ctx context.Context, rec *domain.ValidationRecord) error {
	query := `
		INSERT INTO validations (id, mode, status, error_codes, width, height, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		rec.ID,
		string(rec.Mode),
		rec.Status,
		rec.ErrorCodes,
		rec.Width,
		rec.Height,
		rec.LatencyMs,
	).Scan(&rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("create validation record: %w", err)
	}

	return nil
}

// CodeCounts aggregates how often each error code fired in the window,
// which is what threshold tuning looks at.
func (r *ValidationRepository) CodeCounts(ctx context.Context, days int) (map[string]int64, error) {
	query := `
		SELECT code, COUNT(*)
		FROM validations, UNNEST(error_codes) AS code
		WHERE created_at > NOW() - ($1 || ' days')::interval
		GROUP BY code
	`

	rows, err := r.pool.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("query code counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var code string
		var count int64
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("scan code count: %w", err)
		}
		counts[code] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate code counts: %w", err)
	}
	return counts, nil
}
