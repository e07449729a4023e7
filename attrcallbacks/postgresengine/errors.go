package postgresengine

import (
	"errors"
)

var (
	ErrNilDatabaseConnection  = errors.New("database connection must not be nil")
	ErrEmptyTableName         = errors.New("table name must not be empty")
	ErrSchemaMismatch         = errors.New("record schema does not match the store schema")
	ErrBuildingQueryFailed    = errors.New("building query failed")
	ErrBeginTransactionFailed = errors.New("beginning transaction failed")
	ErrSavingRecordFailed     = errors.New("saving record failed")
	ErrCommitFailed           = errors.New("committing transaction failed")
	ErrLoadingRecordFailed    = errors.New("loading record failed")
	ErrRecordNotFound         = errors.New("record not found")
	ErrMigrationFailed        = errors.New("migrating table failed")
	ErrUnsupportedValue       = errors.New("value cannot be stored")
)
