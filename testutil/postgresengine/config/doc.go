// Package config provides PostgreSQL database configuration for postgresengine testing.
//
// It contains factory functions for creating database connections with each of the
// supported adapters (pgxpool.Pool, sql.DB, sqlx.DB) against the test database.
// The DSN can be overridden with the ATTRCALLBACKS_TEST_DSN environment variable.
package config
