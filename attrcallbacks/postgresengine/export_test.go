package postgresengine

import (
	"github.com/google/uuid"
)

// Exported for tests of the rendered SQL.

func (s Store) BuildInsertQuery(id uuid.UUID, values map[string]any) (string, error) {
	return s.buildInsertQuery(id, values)
}

func (s Store) BuildUpdateQuery(id uuid.UUID, columns []string, values map[string]any) (string, error) {
	return s.buildUpdateQuery(id, columns, values)
}

func (s Store) BuildSelectQuery(id uuid.UUID) (string, error) {
	return s.buildSelectQuery(id)
}

func (s Store) BuildCreateTableQuery() string {
	return s.buildCreateTableQuery()
}
