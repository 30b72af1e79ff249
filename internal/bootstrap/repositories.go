package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/CycleVars_Go/internal/config"
	"github.com/osse101/CycleVars_Go/internal/database"
	"github.com/osse101/CycleVars_Go/internal/database/postgres"
	"github.com/osse101/CycleVars_Go/internal/database/sqlite"
	"github.com/osse101/CycleVars_Go/internal/progress"
	"github.com/osse101/CycleVars_Go/internal/repository"
)

// Repositories holds the storage used by the application
type Repositories struct {
	Variable repository.Variable
	Progress repository.Progress
	// Store answers readiness probes
	Store    Pinger

	close func()
}

// Pinger checks connectivity to the backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

// sqlPinger adapts *sql.DB to Pinger
type sqlPinger struct {
	db *sql.DB
}

func (p sqlPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close releases the database handles
func (r *Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

// InitializeRepositories opens the configured database, applies migrations and
// builds the repositories. Progress lives in the database or in a YAML file.
func InitializeRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	var repos *Repositories
	var err error

	switch cfg.DBDriver {
	case config.DriverSQLite:
		repos, err = openSQLite(ctx, cfg.SQLitePath)
	default:
		repos, err = openPostgres(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	if cfg.ProgressBackend == config.ProgressBackendFile {
		fileRepo, err := progress.NewFileRepository(cfg.ProgressFile)
		if err != nil {
			repos.Close()
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenProgressFile, err)
		}
		repos.Progress = fileRepo
	}

	slog.Info(LogMsgStorageReady, "driver", cfg.DBDriver, "progress_backend", cfg.ProgressBackend)
	return repos, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	pool, err := database.NewPool(ctx, database.PoolConfig{
		ConnString:      cfg.GetDBConnString(),
		MaxConns:        cfg.DBMaxConns,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := database.MigratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return newPostgresRepositories(pool), nil
}

func newPostgresRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Variable: postgres.NewVariableRepository(pool),
		Progress: postgres.NewProgressRepository(pool),
		Store:    pool,
		close:    pool.Close,
	}
}

func openSQLite(ctx context.Context, path string) (*Repositories, error) {
	db, err := database.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateSQLite(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Repositories{
		Variable: sqlite.NewVariableRepository(db),
		Progress: sqlite.NewProgressRepository(db),
		Store:    sqlPinger{db: db},
		close:    func() { _ = db.Close() },
	}, nil
}
