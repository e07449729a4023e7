package postgresengine

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // postgres dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/internal/naming"
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/model"
)

var columnTypes = map[model.AttributeType]string{
	model.TypeText:      "text",
	model.TypeInteger:   "bigint",
	model.TypeBoolean:   "boolean",
	model.TypeTimestamp: "timestamp with time zone",
	model.TypeTextArray: "text[]",
	model.TypeTextMap:   "jsonb",
}

// buildInsertQuery renders the INSERT for a new record; nil values are left to the column default.
func (s Store) buildInsertQuery(id uuid.UUID, values map[string]any) (sqlQueryString, error) {
	record := goqu.Record{colID: id.String()}

	for _, attribute := range s.schema.Attributes {
		value, ok := values[attribute.Name]
		if !ok || value == nil {
			continue
		}

		encoded, err := encodeValue(attribute, value)
		if err != nil {
			return "", err
		}

		record[attribute.Name] = encoded
	}

	sqlQuery, _, err := goqu.Dialect(dialectPostgres).Insert(s.tableName).Rows(record).ToSQL()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildUpdateQuery renders the UPDATE of the given columns to their current values.
func (s Store) buildUpdateQuery(id uuid.UUID, columns []string, values map[string]any) (sqlQueryString, error) {
	record := goqu.Record{}

	for _, column := range columns {
		attribute, ok := s.schema.Lookup(column)
		if !ok {
			return "", fmt.Errorf("%w: unknown column %q", ErrBuildingQueryFailed, column)
		}

		encoded, err := encodeValue(attribute, values[column])
		if err != nil {
			return "", err
		}

		record[column] = encoded
	}

	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		Update(s.tableName).
		Set(record).
		Where(goqu.C(colID).Eq(id.String())).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildSelectQuery renders the SELECT of all attribute columns of one record, in schema order.
// Array and jsonb columns are cast to text so every adapter scans them the same way.
func (s Store) buildSelectQuery(id uuid.UUID) (sqlQueryString, error) {
	columns := make([]any, 0, len(s.schema.Attributes)+1)
	columns = append(columns, goqu.Cast(goqu.C(colID), castTypeText).As(colID))

	for _, attribute := range s.schema.Attributes {
		var column exp.Expression = goqu.C(attribute.Name)
		if attribute.Type.Kind().IsCollection() {
			column = goqu.Cast(goqu.C(attribute.Name), castTypeText).As(attribute.Name)
		}

		columns = append(columns, column)
	}

	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(columns...).
		Where(goqu.C(colID).Eq(id.String())).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildCreateTableQuery renders the DDL for the store's table.
func (s Store) buildCreateTableQuery() sqlQueryString {
	columns := []string{naming.QuoteIdentifier(colID) + " uuid PRIMARY KEY"}

	for _, attribute := range s.schema.Attributes {
		columns = append(columns, naming.QuoteIdentifier(attribute.Name)+" "+columnTypes[attribute.Type])
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteTableName(s.tableName), strings.Join(columns, ", "))
}

func quoteTableName(tableName string) string {
	parts := strings.Split(tableName, ".")
	for i, part := range parts {
		parts[i] = naming.QuoteIdentifier(part)
	}

	return strings.Join(parts, ".")
}
