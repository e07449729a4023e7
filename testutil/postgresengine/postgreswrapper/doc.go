// Package postgreswrapper provides test utilities for abstracting over the PostgreSQL adapters.
//
// The adapter under test is selected with the ADAPTER_TYPE environment variable
// (pgx.pool, sql.db or sqlx.db; pgx.pool by default), so the same test suite runs against
// every supported database library.
//
// Usage:
//
//	wrapper := CreateWrapperWithTestConfig(t, fixtures.WidgetSchema, options...)
//	defer wrapper.Close()
//
//	CleanUp(t, wrapper)
//	store := wrapper.GetStore()
package postgreswrapper
