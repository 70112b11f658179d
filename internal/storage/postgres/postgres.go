// Package postgres persists battle snapshots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/monbattle/internal/config"
)

// ErrSchemaMissing is returned when the snapshot table has not been migrated.
var ErrSchemaMissing = errors.New("battle_snapshots table missing; run cmd/migrate")

// Pool wraps the pgx connection pool shared by the snapshot repository.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the snapshot database described by cfg.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a pinged Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %q: %w", cfg.Name, err)
	}
	return &Pool{pool: pool}, nil
}

// Health checks that the database answers within timeout.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// RequireSchema reports ErrSchemaMissing until the battle_snapshots
// migration has been applied.
//
// Postcondition: Returns nil only when the snapshot table exists.
func (p *Pool) RequireSchema(ctx context.Context) error {
	var present bool
	if err := p.pool.QueryRow(ctx,
		`SELECT to_regclass('battle_snapshots') IS NOT NULL`,
	).Scan(&present); err != nil {
		return fmt.Errorf("checking snapshot schema: %w", err)
	}
	if !present {
		return ErrSchemaMissing
	}
	return nil
}

// Snapshots returns a SnapshotRepository over this pool.
func (p *Pool) Snapshots() *SnapshotRepository {
	return NewSnapshotRepository(p.pool)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
