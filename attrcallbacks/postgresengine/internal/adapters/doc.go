// Package adapters provides database adapter implementations for the PostgreSQL record store.
//
// It supports pgxpool.Pool, sql.DB and sqlx.DB behind the common DBAdapter interface,
// including transactions, so the store runs a save and its hooks in one transaction
// with any of them.
package adapters
