package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/model"
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/postgresengine/internal/adapters"
)

const (
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgBuildUpdateQueryFailed = "failed to build update query"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBeginTxFailed          = "failed to begin transaction"
	logMsgDBExecFailed           = "database execution failed during save"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgRollbackFailed         = "failed to roll back transaction"
	logMsgCommitFailed           = "failed to commit transaction"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgSaveAborted            = "save aborted by lifecycle observer"
	logMsgRecordSaved            = "record saved"
	logMsgUpdateSkipped          = "update skipped: no changed columns left"
	logMsgRecordLoaded           = "record loaded"
	logMsgTableMigrated          = "table migrated"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "postgresengine operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrTable                 = "table"
	logAttrRecordID              = "record_id"
	logAttrOperation             = "operation"
	logAttrChangeCount           = "change_count"
	logAttrDurationMS            = "duration_ms"
	logActionSave                = "save"
	logActionFind                = "find"
	logActionMigrate             = "migrate"
	colID                        = "id"
	dialectPostgres              = "postgres"
	castTextArray                = "?::text[]"
	castJsonb                    = "?::jsonb"
	castTypeText                 = "TEXT"
)

type (
	sqlQueryString = string
)

// Store persists records of one schema and runs the attribute callbacks lifecycle around saves.
type Store struct {
	db               adapters.DBAdapter
	schema           model.Schema
	tableName        string
	lifecycle        *attrcallbacks.Lifecycle
	logger           attrcallbacks.Logger
	contextualLogger attrcallbacks.ContextualLogger
	metricsCollector attrcallbacks.MetricsCollector
	tracingCollector attrcallbacks.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, schema model.Schema, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), schema, options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, schema model.Schema, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), schema, options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, schema model.Schema, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), schema, options...)
}

func newStore(db adapters.DBAdapter, schema model.Schema, options ...Option) (Store, error) {
	if schema.Table == "" {
		return Store{}, ErrEmptyTableName
	}

	s := Store{
		db:        db,
		schema:    schema,
		tableName: schema.Table,
		lifecycle: attrcallbacks.NewLifecycle(),
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// TableName returns the table the store reads and writes.
func (s Store) TableName() string {
	return s.tableName
}

// Migrate creates the store's table if it does not exist yet.
func (s Store) Migrate(ctx context.Context) error {
	sqlQuery := s.buildCreateTableQuery()

	start := time.Now()
	_, err := s.db.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionMigrate, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, sqlQuery)
		return errors.Join(ErrMigrationFailed, err)
	}

	s.logOperation(ctx, logMsgTableMigrated, logAttrTable, s.tableName)

	return nil
}

// Save persists entity in one transaction: before observers, INSERT or UPDATE, after observers, commit.
// New records are inserted with a fresh UUIDv7; persisted records without pending changes are not
// touched and no observer runs. On success the entity's values become its new persisted state.
func (s Store) Save(ctx context.Context, entity model.Entity) error {
	if entity == nil {
		return attrcallbacks.ErrNilRecord
	}

	m := entity.Base()
	if m.Schema().Name != s.schema.Name {
		return ErrSchemaMismatch
	}

	if !m.IsNew() && !m.IsDirty() {
		return nil
	}

	op := attrcallbacks.OperationFor(entity)

	id := m.ID()
	if op == attrcallbacks.OperationCreate {
		newID, err := uuid.NewV7()
		if err != nil {
			return errors.Join(ErrSavingRecordFailed, err)
		}
		id = newID
	}

	tracing, ctx := s.startSaveTracing(ctx, op)
	metrics := s.startSaveMetrics(ctx, op)
	start := time.Now()

	changes, err := s.saveInTransaction(ctx, entity, id)
	duration := time.Since(start)

	if err != nil {
		errorType := errorTypeOf(err)
		tracing.finishError(errorType, duration)
		metrics.recordError(errorType, duration)

		return err
	}

	m.MarkPersisted(id)

	tracing.finishSuccess(id, changes.Len(), duration)
	metrics.recordSuccess(duration)
	s.logOperation(ctx, logMsgRecordSaved,
		logAttrTable, s.tableName,
		logAttrRecordID, id.String(),
		logAttrOperation, op.String(),
		logAttrChangeCount, changes.Len(),
		logAttrDurationMS, toMilliseconds(duration))

	return nil
}

func (s Store) saveInTransaction(ctx context.Context, entity model.Entity, id uuid.UUID) (attrcallbacks.ChangeSet, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		s.logError(ctx, logMsgBeginTxFailed, err)
		return attrcallbacks.ChangeSet{}, errors.Join(ErrBeginTransactionFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			s.rollback(ctx, tx)
		}
	}()

	changes, err := s.lifecycle.Run(ctx, entity, func(ctx context.Context, op attrcallbacks.Operation, _ attrcallbacks.ChangeSet) error {
		return s.persist(ctx, tx, op, entity.Base(), id)
	})
	if err != nil {
		if errors.Is(err, attrcallbacks.ErrSaveRejected) || errors.Is(err, attrcallbacks.ErrHookFailed) {
			s.logOperation(ctx, logMsgSaveAborted, logAttrTable, s.tableName, logAttrError, err.Error())
		}

		return changes, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logError(ctx, logMsgCommitFailed, err)
		return changes, errors.Join(ErrCommitFailed, err)
	}

	committed = true

	return changes, nil
}

// persist executes the statement for op. The values are read after the before side ran,
// so attribute changes made by before observers are written too.
func (s Store) persist(ctx context.Context, tx adapters.DBTx, op attrcallbacks.Operation, m *model.Model, id uuid.UUID) error {
	values := m.Values()

	var sqlQuery sqlQueryString
	var err error

	if op == attrcallbacks.OperationCreate {
		sqlQuery, err = s.buildInsertQuery(id, values)
		if err != nil {
			s.logError(ctx, logMsgBuildInsertQueryFailed, err)
			return err
		}
	} else {
		columns := m.PendingChanges().Names()
		if len(columns) == 0 {
			// The before side reverted every change, the stored row is already up to date.
			s.logOperation(ctx, logMsgUpdateSkipped, logAttrTable, s.tableName, logAttrRecordID, id.String())
			return nil
		}

		sqlQuery, err = s.buildUpdateQuery(id, columns, values)
		if err != nil {
			s.logError(ctx, logMsgBuildUpdateQueryFailed, err)
			return err
		}
	}

	start := time.Now()
	result, execErr := tx.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionSave, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return errors.Join(ErrSavingRecordFailed, execErr)
	}

	if op == attrcallbacks.OperationUpdate {
		rowsAffected, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			return errors.Join(ErrSavingRecordFailed, rowsErr)
		}

		if rowsAffected == 0 {
			return ErrRecordNotFound
		}
	}

	return nil
}

func (s Store) rollback(ctx context.Context, tx adapters.DBTx) {
	// The save already failed, a cancelled ctx must not keep the rollback from running.
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		s.logWarn(ctx, logMsgRollbackFailed, logAttrError, err.Error())
	}
}

// Find loads the record with id into entity, replacing all of its values.
func (s Store) Find(ctx context.Context, id uuid.UUID, into model.Entity) error {
	if into == nil {
		return attrcallbacks.ErrNilRecord
	}

	m := into.Base()
	if m.Schema().Name != s.schema.Name {
		return ErrSchemaMismatch
	}

	tracing, ctx := s.startFindTracing(ctx, id)
	start := time.Now()

	values, err := s.load(ctx, id)
	duration := time.Since(start)

	if err == nil {
		err = m.Load(id, values)
		if err != nil {
			err = errors.Join(ErrLoadingRecordFailed, err)
		}
	}

	if err != nil {
		tracing.finishError(errorTypeOf(err), duration)
		s.recordErrorMetricsContext(ctx, logActionFind, errorTypeOf(err))
		return err
	}

	tracing.finishSuccess(id, 0, duration)
	s.logOperation(ctx, logMsgRecordLoaded,
		logAttrTable, s.tableName,
		logAttrRecordID, id.String(),
		logAttrDurationMS, toMilliseconds(duration))

	return nil
}

func (s Store) load(ctx context.Context, id uuid.UUID) (map[string]any, error) {
	sqlQuery, err := s.buildSelectQuery(id)
	if err != nil {
		s.logError(ctx, logMsgBuildSelectQueryFailed, err)
		return nil, err
	}

	start := time.Now()
	rows, err := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionFind, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrLoadingRecordFailed, err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return nil, errors.Join(ErrLoadingRecordFailed, rowsErr)
		}

		return nil, ErrRecordNotFound
	}

	var rowID string
	targets := make([]any, 0, len(s.schema.Attributes)+1)
	targets = append(targets, &rowID)
	for _, attribute := range s.schema.Attributes {
		targets = append(targets, scanTarget(attribute))
	}

	if err = rows.Scan(targets...); err != nil {
		s.logError(ctx, logMsgScanRowFailed, err)
		return nil, errors.Join(ErrLoadingRecordFailed, err)
	}

	values := make(map[string]any, len(s.schema.Attributes))
	for i, attribute := range s.schema.Attributes {
		value, decodeErr := decodeValue(attribute, targets[i+1])
		if decodeErr != nil {
			return nil, errors.Join(ErrLoadingRecordFailed, decodeErr)
		}

		if value != nil {
			values[attribute.Name] = value
		}
	}

	return values, nil
}
