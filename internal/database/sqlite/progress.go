package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

// ProgressRepository stores cycle progress in SQLite
type ProgressRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewProgressRepository creates a new ProgressRepository
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db, now: time.Now}
}

func (r *ProgressRepository) GetProgress(ctx context.Context, key string) (*time.Time, error) {
	var ms int64
	err := r.db.QueryRowContext(ctx,
		`SELECT boundary_ms FROM cycle_progress WHERE progress_key = ?`, key,
	).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetProgressFailed, err)
	}
	t := domain.FromEpochMillis(ms)
	return &t, nil
}

func (r *ProgressRepository) AdvanceProgress(ctx context.Context, key string, boundary time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO cycle_progress (progress_key, boundary_ms, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (progress_key) DO UPDATE
		SET boundary_ms = excluded.boundary_ms, updated_at = excluded.updated_at
		WHERE cycle_progress.boundary_ms < excluded.boundary_ms
	`, key, domain.ToEpochMillis(boundary), r.now().UnixMilli())
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgSetProgressFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgSetProgressFailed, err)
	}
	return n > 0, nil
}

func (r *ProgressRepository) OverwriteProgress(ctx context.Context, key string, boundary time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cycle_progress (progress_key, boundary_ms, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (progress_key) DO UPDATE
		SET boundary_ms = excluded.boundary_ms, updated_at = excluded.updated_at
	`, key, domain.ToEpochMillis(boundary), r.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgSetProgressFailed, err)
	}
	return nil
}

func (r *ProgressRepository) DeleteProgress(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cycle_progress WHERE progress_key = ?`, key); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDeleteProgressFailed, err)
	}
	return nil
}

func (r *ProgressRepository) ListProgress(ctx context.Context) ([]domain.ProgressEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT progress_key, boundary_ms FROM cycle_progress ORDER BY progress_key`)
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
