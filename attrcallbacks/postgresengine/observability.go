package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
)

const (
	metricSaveDuration        = "postgresengine_save_duration_seconds"
	metricDatabaseErrors      = "postgresengine_database_errors_total"
	spanNameSave              = "postgresengine.save"
	spanNameFind              = "postgresengine.find"
	spanAttrOperation         = "operation"
	spanAttrTable             = "table"
	spanAttrRecordID          = "record_id"
	spanAttrChangeCount       = "change_count"
	spanAttrDurationMS        = "duration_ms"
	spanAttrErrorType         = "error_type"
	statusSuccess             = "success"
	statusError               = "error"
	errorTypeRejected         = "rejected"
	errorTypeHookFailed       = "hook_failed"
	errorTypeNotFound         = "not_found"
	errorTypeBuildQuery       = "build_query"
	errorTypeTransaction      = "transaction"
	errorTypeDatabaseExec     = "database_exec"
	errorTypeDatabaseQuery    = "database_query"
	errorTypeUnsupportedValue = "unsupported_value"
	errorTypeUnknown          = "unknown"
)

// errorTypeOf classifies an error for metric labels and span attributes.
func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, attrcallbacks.ErrSaveRejected):
		return errorTypeRejected
	case errors.Is(err, attrcallbacks.ErrHookFailed):
		return errorTypeHookFailed
	case errors.Is(err, ErrRecordNotFound):
		return errorTypeNotFound
	case errors.Is(err, ErrBuildingQueryFailed):
		return errorTypeBuildQuery
	case errors.Is(err, ErrUnsupportedValue):
		return errorTypeUnsupportedValue
	case errors.Is(err, ErrBeginTransactionFailed), errors.Is(err, ErrCommitFailed):
		return errorTypeTransaction
	case errors.Is(err, ErrSavingRecordFailed):
		return errorTypeDatabaseExec
	case errors.Is(err, ErrLoadingRecordFailed):
		return errorTypeDatabaseQuery
	default:
		return errorTypeUnknown
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (s Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (s Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical problems at warn level.
func (s Store) logWarn(ctx context.Context, message string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(message, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// logError logs error information at the error level.
func (s Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// recordErrorMetricsContext records database error metrics with context if the collector supports it.
func (s Store) recordErrorMetricsContext(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := s.metricsCollector.(attrcallbacks.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

// recordDurationMetricsContext records duration metrics with context if the collector supports it.
func (s Store) recordDurationMetricsContext(ctx context.Context, metricName string, duration time.Duration, operation, status string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          status,
	}

	if contextualCollector, ok := s.metricsCollector.(attrcallbacks.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metricName, duration, labels)
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (s Store) startTraceSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, attrcallbacks.SpanContext) {
	if s.tracingCollector != nil {
		return s.tracingCollector.StartSpan(ctx, name, attrs)
	}

	return ctx, nil
}

// === Tracing Observer Pattern ===

// storeTracingObserver encapsulates the span of one save or find.
type storeTracingObserver struct {
	s    Store
	span attrcallbacks.SpanContext
}

func (s Store) startSaveTracing(ctx context.Context, op attrcallbacks.Operation) (*storeTracingObserver, context.Context) {
	newCtx, span := s.startTraceSpan(ctx, spanNameSave, map[string]string{
		spanAttrOperation: op.String(),
		spanAttrTable:     s.tableName,
	})

	return &storeTracingObserver{s: s, span: span}, newCtx
}

func (s Store) startFindTracing(ctx context.Context, id uuid.UUID) (*storeTracingObserver, context.Context) {
	newCtx, span := s.startTraceSpan(ctx, spanNameFind, map[string]string{
		spanAttrOperation: logActionFind,
		spanAttrTable:     s.tableName,
		spanAttrRecordID:  id.String(),
	})

	return &storeTracingObserver{s: s, span: span}, newCtx
}

func (sto *storeTracingObserver) finishSuccess(id uuid.UUID, changeCount int, duration time.Duration) {
	if sto.span == nil {
		return
	}

	sto.span.SetStatus(statusSuccess)
	sto.span.AddAttribute(spanAttrRecordID, id.String())
	sto.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))

	sto.s.tracingCollector.FinishSpan(sto.span, statusSuccess, map[string]string{
		spanAttrRecordID:    id.String(),
		spanAttrChangeCount: fmt.Sprintf("%d", changeCount),
	})
}

func (sto *storeTracingObserver) finishError(errorType string, duration time.Duration) {
	if sto.span == nil {
		return
	}

	sto.span.SetStatus(statusError)
	sto.span.AddAttribute(spanAttrErrorType, errorType)
	sto.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))

	sto.s.tracingCollector.FinishSpan(sto.span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// === Metrics Observer Pattern ===

// saveMetricsObserver encapsulates the metrics collection for save operations.
type saveMetricsObserver struct {
	s   Store
	ctx context.Context
	op  attrcallbacks.Operation
}

func (s Store) startSaveMetrics(ctx context.Context, op attrcallbacks.Operation) *saveMetricsObserver {
	return &saveMetricsObserver{s: s, ctx: ctx, op: op}
}

func (smo *saveMetricsObserver) recordSuccess(duration time.Duration) {
	smo.s.recordDurationMetricsContext(smo.ctx, metricSaveDuration, duration, smo.op.String(), statusSuccess)
}

// recordError records the duration of a failed save; vetoes are not database errors.
func (smo *saveMetricsObserver) recordError(errorType string, duration time.Duration) {
	smo.s.recordDurationMetricsContext(smo.ctx, metricSaveDuration, duration, smo.op.String(), statusError)

	if errorType != errorTypeRejected && errorType != errorTypeHookFailed {
		smo.s.recordErrorMetricsContext(smo.ctx, logActionSave, errorType)
	}
}
