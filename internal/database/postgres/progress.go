package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

// ProgressRepository stores cycle progress for PostgreSQL
type ProgressRepository struct {
	db *pgxpool.Pool
}

// NewProgressRepository creates a new ProgressRepository
func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) GetProgress(ctx context.Context, key string) (*time.Time, error) {
	var ms int64
	err := r.db.QueryRow(ctx, `
		SELECT boundary_ms FROM cycle_progress WHERE progress_key = $1
	`, key).Scan(&ms)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetProgressFailed, err)
	}
	t := domain.FromEpochMillis(ms)
	return &t, nil
}

// AdvanceProgress only moves the stored boundary forward; the WHERE clause
// on the conflict branch turns a stale write into a no-op.
func (r *ProgressRepository) AdvanceProgress(ctx context.Context, key string, boundary time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO cycle_progress (progress_key, boundary_ms, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (progress_key) DO UPDATE
		SET boundary_ms = EXCLUDED.boundary_ms, updated_at = NOW()
		WHERE cycle_progress.boundary_ms < EXCLUDED.boundary_ms
	`, key, domain.ToEpochMillis(boundary))
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgSetProgressFailed, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProgressRepository) OverwriteProgress(ctx context.Context, key string, boundary time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cycle_progress (progress_key, boundary_ms, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (progress_key) DO UPDATE
		SET boundary_ms = EXCLUDED.boundary_ms, updated_at = NOW()
	`, key, domain.ToEpochMillis(boundary))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgSetProgressFailed, err)
	}
	return nil
}

func (r *ProgressRepository) DeleteProgress(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cycle_progress WHERE progress_key = $1`, key); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDeleteProgressFailed, err)
	}
	return nil
}

func (r *ProgressRepository) ListProgress(ctx context.Context) ([]domain.ProgressEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT progress_key, boundary_ms FROM cycle_progress ORDER BY progress_key
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgListProgressFailed, err)
	}
	defer rows.Close()

	var entries []domain.ProgressEntry
	for rows.Next() {
		var key string
		var ms int64
		if err := rows.Scan(&key, &ms); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgListProgressFailed, err)
		}
		entries = append(entries, domain.ProgressEntry{Key: key, Boundary: domain.FromEpochMillis(ms)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgListProgressFailed, err)
	}
	return entries, nil
}
