package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/model"
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/postgresengine"
)

// OpenStore connects with the configured adapter and returns a store for schema and a function
// that closes the connection.
func (cfg Config) OpenStore(ctx context.Context, schema model.Schema, options ...postgresengine.Option) (postgresengine.Store, func(), error) {
	switch cfg.Adapter {
	case AdapterSQLDB:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return postgresengine.Store{}, nil, err
		}

		store, err := postgresengine.NewStoreFromSQLDB(db, schema, options...)
		return store, func() { _ = db.Close() }, err

	case AdapterSQLXDB:
		db, err := sqlx.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return postgresengine.Store{}, nil, err
		}

		store, err := postgresengine.NewStoreFromSQLX(db, schema, options...)
		return store, func() { _ = db.Close() }, err

	default:
		poolConfig, err := cfg.PGXPoolConfig()
		if err != nil {
			return postgresengine.Store{}, nil, err
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return postgresengine.Store{}, nil, err
		}

		store, err := postgresengine.NewStoreFromPGXPool(pool, schema, options...)
		return store, pool.Close, err
	}
}

// PGXPoolConfig parses the database URL into a pool config sized for a command line tool.
func (cfg Config) PGXPoolConfig() (*pgxpool.Config, error) {
	const maxConnections = int32(2)
	const maxConnIdleTime = time.Minute
	const connectTimeout = time.Second * 5

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", EnvDatabaseURL, err)
	}

	poolConfig.MaxConns = maxConnections
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	return poolConfig, nil
}
