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

// VariableRepository implements the variable repository for PostgreSQL
type VariableRepository struct {
	db *pgxpool.Pool
}

// NewVariableRepository creates a new VariableRepository
func NewVariableRepository(db *pgxpool.Pool) *VariableRepository {
	return &VariableRepository{db: db}
}

func (r *VariableRepository) GetGlobalValue(ctx context.Context, key string) (*domain.VariableValue, error) {
	v := domain.VariableValue{Key: key}
	err := r.db.QueryRow(ctx, `
		SELECT value, updated_at FROM server_variables WHERE variable_key = $1
	`, key).Scan(&v.Value, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrValueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetValueFailed, err)
	}
	v.UpdatedAt = v.UpdatedAt.UTC()
	return &v, nil
}

func (r *VariableRepository) SetGlobalValue(ctx context.Context, key, value string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO server_variables (variable_key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (variable_key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value, at.UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgSetValueFailed, err)
	}
	return nil
}

func (r *VariableRepository) GetPlayerValue(ctx context.Context, playerID, key string) (*domain.VariableValue, error) {
	v := domain.VariableValue{Key: key, PlayerID: playerID}
	err := r.db.QueryRow(ctx, `
		SELECT value, updated_at FROM player_variables
		WHERE player_id = $1 AND variable_key = $2
	`, playerID, key).Scan(&v.Value, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrValueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetValueFailed, err)
	}
	v.UpdatedAt = v.UpdatedAt.UTC()
	return &v, nil
}

func (r *VariableRepository) SetPlayerValue(ctx context.Context, playerID, key, value string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO player_variables (player_id, variable_key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (player_id, variable_key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, playerID, key, value, at.UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgSetValueFailed, err)
	}
	return nil
}

// DeleteGlobal removes the global value written before the boundary
func (r *VariableRepository) DeleteGlobal(ctx context.Context, key string, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM server_variables WHERE variable_key = $1 AND updated_at < $2
	`, key, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgDeleteValuesFailed, err)
	}
	return tag.RowsAffected(), nil
}

// DeletePlayerBatch removes up to limit player values written before the boundary.
// Rows are picked by ctid so each statement touches a bounded set.
func (r *VariableRepository) DeletePlayerBatch(ctx context.Context, key string, before time.Time, limit int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM player_variables
		WHERE ctid IN (
			SELECT ctid FROM player_variables
			WHERE variable_key = $1 AND updated_at < $2
			LIMIT $3
		)
	`, key, before.UTC(), limit)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgDeleteValuesFailed, err)
	}
	return tag.RowsAffected(), nil
}

func (r *VariableRepository) EarliestModifiedAt(ctx context.Context, scope domain.Scope, key string) (*time.Time, error) {
	query := `SELECT MIN(updated_at) FROM player_variables WHERE variable_key = $1`
	if scope == domain.ScopeGlobal {
		query = `SELECT MIN(updated_at) FROM server_variables WHERE variable_key = $1`
	}

	var earliest *time.Time
	if err := r.db.QueryRow(ctx, query, key).Scan(&earliest); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgEarliestWriteFailed, err)
	}
	if earliest != nil {
		utc := earliest.UTC()
		earliest = &utc
	}
	return earliest, nil
}
