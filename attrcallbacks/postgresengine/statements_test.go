package postgresengine_test

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/postgresengine"
	"github.com/AntonStoeckl/attribute-callbacks-go/testutil/attrcallbacks/fixtures"
)

var statementTestID = uuid.MustParse("0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b")

// statementTestStore never connects, sql.Open only validates the driver name.
func statementTestStore(t *testing.T, options ...postgresengine.Option) postgresengine.Store {
	t.Helper()

	db, err := sql.Open("postgres", "postgres://unused@localhost/unused?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := postgresengine.NewStoreFromSQLDB(db, fixtures.WidgetSchema, options...)
	require.NoError(t, err)

	return store
}

func assertGolden(t *testing.T, name string, sqlQuery string) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(sqlQuery+"\n"))
}

func Test_Statements_CreateTable(t *testing.T) {
	// arrange
	store := statementTestStore(t)

	// act
	sqlQuery := store.BuildCreateTableQuery()

	// assert
	assertGolden(t, "create_table", sqlQuery)
}

func Test_Statements_CreateTable_With_SchemaQualifiedTableName(t *testing.T) {
	// arrange
	store := statementTestStore(t, postgresengine.WithTableName("inventory.widgets"))

	// act
	sqlQuery := store.BuildCreateTableQuery()

	// assert
	assert.Contains(t, sqlQuery, `CREATE TABLE IF NOT EXISTS "inventory"."widgets" (`)
}

func Test_Statements_Insert(t *testing.T) {
	// arrange
	store := statementTestStore(t)
	widget := fixtures.BuildWidget("Sprocket", "red", "blue")

	// act
	sqlQuery, err := store.BuildInsertQuery(statementTestID, widget.Values())

	// assert
	require.NoError(t, err)
	assertGolden(t, "insert", sqlQuery)
}

func Test_Statements_Insert_When_MapAttributeIsSet(t *testing.T) {
	// arrange
	store := statementTestStore(t)
	widget := fixtures.NewWidget().MustSet("dimensions", map[string]string{"width": "5cm", "height": "2cm"})

	// act
	sqlQuery, err := store.BuildInsertQuery(statementTestID, widget.Values())

	// assert
	require.NoError(t, err)
	assertGolden(t, "insert_map", sqlQuery)
}

func Test_Statements_Update(t *testing.T) {
	// arrange
	store := statementTestStore(t)
	widget := fixtures.NewWidget().MustSet("stock", 42).MustSet("active", true)

	// act
	sqlQuery, err := store.BuildUpdateQuery(statementTestID, []string{"stock", "active"}, widget.Values())

	// assert
	require.NoError(t, err)
	assertGolden(t, "update", sqlQuery)
}

func Test_Statements_Update_When_AttributeWasCleared(t *testing.T) {
	// arrange
	store := statementTestStore(t)

	// act
	sqlQuery, err := store.BuildUpdateQuery(statementTestID, []string{"name"}, map[string]any{})

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `SET "name"=NULL`)
}

func Test_Statements_Update_When_ColumnIsUnknown(t *testing.T) {
	// arrange
	store := statementTestStore(t)

	// act
	_, err := store.BuildUpdateQuery(statementTestID, []string{"weight"}, map[string]any{"weight": int64(3)})

	// assert
	assert.ErrorIs(t, err, postgresengine.ErrBuildingQueryFailed)
}

func Test_Statements_Insert_When_ValueDoesNotMatchColumnType(t *testing.T) {
	// arrange
	store := statementTestStore(t)

	// act
	_, err := store.BuildInsertQuery(statementTestID, map[string]any{"stock": "many"})

	// assert
	assert.ErrorIs(t, err, postgresengine.ErrUnsupportedValue)
}

func Test_Statements_Select(t *testing.T) {
	// arrange
	store := statementTestStore(t)

	// act
	sqlQuery, err := store.BuildSelectQuery(statementTestID)

	// assert
	require.NoError(t, err)
	assertGolden(t, "select", sqlQuery)
}
