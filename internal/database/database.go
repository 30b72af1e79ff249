package database

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig sizes the Postgres connection pool. The cycle engine holds at most
// cycle.db.max-concurrency connections during a tick; HTTP reads share the rest.
type PoolConfig struct {
	ConnString      string
	MaxConns        int
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
}

// NewPool connects to Postgres and verifies the connection with a ping.
// ctx bounds the initial connect; ConnectTimeout applies on top of it.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	pgCfg, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseConnString, err)
	}

	maxConns := cfg.MaxConns
	switch {
	case maxConns < 1:
		maxConns = DefaultMaxConnections
	case maxConns > math.MaxInt32:
		maxConns = math.MaxInt32
	}
	pgCfg.MaxConns = int32(maxConns)
	pgCfg.MinConns = min(DefaultMinConnections, pgCfg.MaxConns)
	if cfg.MaxConnIdleTime > 0 {
		pgCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		pgCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	slog.Info(LogMsgSuccessfullyConnectedToDatabase,
		"driver", DriverPostgres, "max_conns", pgCfg.MaxConns, "host", pgCfg.ConnConfig.Host)
	return pool, nil
}
