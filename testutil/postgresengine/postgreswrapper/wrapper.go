package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/model"
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/postgresengine"
	"github.com/AntonStoeckl/attribute-callbacks-go/testutil/postgresengine/config"
)

const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// Wrapper abstracts over the different adapter types.
type Wrapper interface {
	GetStore() postgresengine.Store
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store postgresengine.Store
}

func (w *PGXPoolWrapper) GetStore() postgresengine.Store { return w.store }

func (w *PGXPoolWrapper) Close() { w.pool.Close() }

// SQLDBWrapper wraps sql.DB-based testing.
type SQLDBWrapper struct {
	db    *sql.DB
	store postgresengine.Store
}

func (w *SQLDBWrapper) GetStore() postgresengine.Store { return w.store }

func (w *SQLDBWrapper) Close() { _ = w.db.Close() }

// SQLXWrapper wraps sqlx.DB-based testing.
type SQLXWrapper struct {
	db    *sqlx.DB
	store postgresengine.Store
}

func (w *SQLXWrapper) GetStore() postgresengine.Store { return w.store }

func (w *SQLXWrapper) Close() { _ = w.db.Close() }

func adapterTypeFromEnv() string {
	return strings.ToLower(os.Getenv("ADAPTER_TYPE"))
}

// CreateWrapperWithTestConfig creates a store for schema with the adapter selected by ADAPTER_TYPE
// and migrates its table.
func CreateWrapperWithTestConfig(t testing.TB, schema model.Schema, options ...postgresengine.Option) Wrapper {
	t.Helper()

	var wrapper Wrapper

	switch adapterType := adapterTypeFromEnv(); adapterType {
	case typePGXPool, "":
		pool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolTestConfig())
		require.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := postgresengine.NewStoreFromPGXPool(pool, schema, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &PGXPoolWrapper{pool: pool, store: store}

	case typeSQLDB:
		db := config.PostgresSQLDBTestConfig()

		store, err := postgresengine.NewStoreFromSQLDB(db, schema, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &SQLDBWrapper{db: db, store: store}

	case typeSQLXDB:
		db := config.PostgresSQLXTestConfig()

		store, err := postgresengine.NewStoreFromSQLX(db, schema, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &SQLXWrapper{db: db, store: store}

	default:
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	require.NoError(t, wrapper.GetStore().Migrate(context.Background()), "error migrating the test table")

	return wrapper
}

// CleanUp empties the store's table.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	exec(t, wrapper, fmt.Sprintf(`TRUNCATE TABLE %q`, wrapper.GetStore().TableName()))
}

// CountRows returns the number of rows in the store's table.
func CountRows(t testing.TB, wrapper Wrapper) int {
	t.Helper()

	var count int
	queryRow(t, wrapper, fmt.Sprintf(`SELECT count(*) FROM %q`, wrapper.GetStore().TableName()), &count)

	return count
}

// StoredText returns the text rendering of column for the row with id, "" for NULL.
func StoredText(t testing.TB, wrapper Wrapper, id fmt.Stringer, column string) string {
	t.Helper()

	var value sql.NullString
	query := fmt.Sprintf(`SELECT %q::text FROM %q WHERE id = '%s'`, column, wrapper.GetStore().TableName(), id.String())
	queryRow(t, wrapper, query, &value)

	return value.String
}

func exec(t testing.TB, wrapper Wrapper, query string) {
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err = w.pool.Exec(context.Background(), query)
	case *SQLDBWrapper:
		_, err = w.db.Exec(query)
	case *SQLXWrapper:
		_, err = w.db.Exec(query)
	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error executing %s", query)
}

func queryRow(t testing.TB, wrapper Wrapper, query string, dest any) {
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		err = w.pool.QueryRow(context.Background(), query).Scan(dest)
	case *SQLDBWrapper:
		err = w.db.QueryRow(query).Scan(dest)
	case *SQLXWrapper:
		err = w.db.QueryRow(query).Scan(dest)
	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error querying %s", query)
}
