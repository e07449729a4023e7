package config

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// Every adapter gets the same limits so the test suite behaves alike for all of them.
const (
	maxConnections  = 6
	minConnections  = 1
	maxConnLifetime = 30 * time.Minute
	maxConnIdleTime = time.Minute
	connectTimeout  = 5 * time.Second
)

// PostgresPGXPoolTestConfig creates a pgxpool.Config for the test database.
func PostgresPGXPoolTestConfig() *pgxpool.Config {
	poolConfig, err := pgxpool.ParseConfig(PostgresTestDSN())
	if err != nil {
		log.Fatal("parsing the test DSN failed: ", err)
	}

	poolConfig.MaxConns = maxConnections
	poolConfig.MinConns = minConnections
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	return poolConfig
}

// PostgresSQLDBTestConfig opens and pings a *sql.DB for the test database.
func PostgresSQLDBTestConfig() *sql.DB {
	db, err := sql.Open("postgres", PostgresTestDSN())
	if err != nil {
		log.Fatal("opening the test database failed: ", err)
	}

	return limitAndPing(db)
}

// PostgresSQLXTestConfig opens and pings a *sqlx.DB for the test database.
func PostgresSQLXTestConfig() *sqlx.DB {
	db, err := sqlx.Open("postgres", PostgresTestDSN())
	if err != nil {
		log.Fatal("opening the test database failed: ", err)
	}

	limitAndPing(db.DB)

	return db
}

func limitAndPing(db *sql.DB) *sql.DB {
	db.SetMaxOpenConns(maxConnections)
	db.SetMaxIdleConns(minConnections)
	db.SetConnMaxLifetime(maxConnLifetime)
	db.SetConnMaxIdleTime(maxConnIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("pinging the test database failed: ", err)
	}

	return db
}
