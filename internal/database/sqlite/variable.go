package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

// VariableRepository implements the variable repository for SQLite.
// Timestamps are stored as epoch milliseconds.
type VariableRepository struct {
	db *sql.DB
}

// NewVariableRepository creates a new VariableRepository
func NewVariableRepository(db *sql.DB) *VariableRepository {
	return &VariableRepository{db: db}
}

func (r *VariableRepository) GetGlobalValue(ctx context.Context, key string) (*domain.VariableValue, error) {
	v := domain.VariableValue{Key: key}
	var ms int64
	err := r.db.QueryRowContext(ctx,
		`SELECT value, updated_at FROM server_variables WHERE variable_key = ?`, key,
	).Scan(&v.Value, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrValueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetValueFailed, err)
	}
	v.UpdatedAt = domain.FromEpochMillis(ms)
	return &v, nil
}

func (r *VariableRepository) SetGlobalValue(ctx context.Context, key, value string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO server_variables (variable_key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (variable_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, domain.ToEpochMillis(at))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgSetValueFailed, err)
	}
	return nil
}

func (r *VariableRepository) GetPlayerValue(ctx context.Context, playerID, key string) (*domain.VariableValue, error) {
	v := domain.VariableValue{Key: key, PlayerID: playerID}
	var ms int64
	err := r.db.QueryRowContext(ctx,
		`SELECT value, updated_at FROM player_variables WHERE player_id = ? AND variable_key = ?`,
		playerID, key,
	).Scan(&v.Value, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrValueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetValueFailed, err)
	}
	v.UpdatedAt = domain.FromEpochMillis(ms)
	return &v, nil
}

func (r *VariableRepository) SetPlayerValue(ctx context.Context, playerID, key, value string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO player_variables (player_id, variable_key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (player_id, variable_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, playerID, key, value, domain.ToEpochMillis(at))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgSetValueFailed, err)
	}
	return nil
}

func (r *VariableRepository) DeleteGlobal(ctx context.Context, key string, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM server_variables WHERE variable_key = ? AND updated_at < ?`,
		key, domain.ToEpochMillis(before))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgDeleteValuesFailed, err)
	}
	return res.RowsAffected()
}

// DeletePlayerBatch removes up to limit rows, picked by rowid
func (r *VariableRepository) DeletePlayerBatch(ctx context.Context, key string, before time.Time, limit int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM player_variables WHERE rowid IN (
			SELECT rowid FROM player_variables
			WHERE variable_key = ? AND updated_at < ?
			LIMIT ?
		)
	`, key, domain.ToEpochMillis(before), limit)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgDeleteValuesFailed, err)
	}
	return res.RowsAffected()
}

func (r *VariableRepository) EarliestModifiedAt(ctx context.Context, scope domain.Scope, key string) (*time.Time, error) {
	query := `SELECT MIN(updated_at) FROM player_variables WHERE variable_key = ?`
	if scope == domain.ScopeGlobal {
		query = `SELECT MIN(updated_at) FROM server_variables WHERE variable_key = ?`
	}

	var ms sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&ms); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgEarliestWriteFailed, err)
	}
	if !ms.Valid {
		return nil, nil
	}
	t := domain.FromEpochMillis(ms.Int64)
	return &t, nil
}
