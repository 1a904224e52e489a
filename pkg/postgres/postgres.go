// Package postgres opens pooled sqlx connections over the pgx driver and
// manages schema migrations.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PoolConfig struct {
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	MaxIdleConns    int
	MaxOpenConns    int
}

var defaultPoolConfig = PoolConfig{
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

type Option func(*PoolConfig)

// WithPool overrides the non-zero pool settings of cfg.
func WithPool(cfg PoolConfig) Option {
	return func(pc *PoolConfig) {
		if cfg.ConnMaxIdleTime > 0 {
			pc.ConnMaxIdleTime = cfg.ConnMaxIdleTime
		}
		if cfg.ConnMaxLifetime > 0 {
			pc.ConnMaxLifetime = cfg.ConnMaxLifetime
		}
		if cfg.MaxIdleConns > 0 {
			pc.MaxIdleConns = cfg.MaxIdleConns
		}
		if cfg.MaxOpenConns > 0 {
			pc.MaxOpenConns = cfg.MaxOpenConns
		}
	}
}

// New connects to dsn and applies the pool settings.
func New(ctx context.Context, dsn string, opts ...Option) (*sqlx.DB, error) {
	const op = "postgres.New"

	pc := defaultPoolConfig
	for _, opt := range opts {
		opt(&pc)
	}

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	db.SetConnMaxIdleTime(pc.ConnMaxIdleTime)
	db.SetConnMaxLifetime(pc.ConnMaxLifetime)
	db.SetMaxIdleConns(pc.MaxIdleConns)
	db.SetMaxOpenConns(pc.MaxOpenConns)

	return db, nil
}

// HasExtension reports whether the named extension is installed in the current database.
func HasExtension(ctx context.Context, db *sqlx.DB, name string) (bool, error) {
	const op = "postgres.HasExtension"

	var ok bool
	if err := db.GetContext(ctx, &ok, "SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = $1)", name); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}
