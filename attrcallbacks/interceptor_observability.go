package attrcallbacks

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"
)

// logDebug logs at debug level to the configured loggers.
func (i *Interceptor) logDebug(ctx context.Context, msg string, args ...any) {
	if i.logger != nil {
		i.logger.Debug(msg, args...)
	}

	if i.contextualLogger != nil {
		i.contextualLogger.DebugContext(ctx, msg, args...)
	}
}

// logInfo logs at info level to the configured loggers.
func (i *Interceptor) logInfo(ctx context.Context, msg string, args ...any) {
	if i.logger != nil {
		i.logger.Info(msg, args...)
	}

	if i.contextualLogger != nil {
		i.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

// logOperation logs a completed phase at info level.
func (i *Interceptor) logOperation(ctx context.Context, phase string, args ...any) {
	i.logInfo(ctx, logMsgPhaseCompleted+phase, args...)
}

// logError logs error information at the error level to the configured loggers.
func (i *Interceptor) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if i.logger != nil {
		i.logger.Error(msg, allArgs...)
	}

	if i.contextualLogger != nil {
		i.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func statusOf(err error) string {
	if errors.Is(err, ErrSaveRejected) {
		return statusVetoed
	}

	return statusError
}

// errorTypeOf classifies a failed phase. ErrNotCollection means the change could not be
// diffed, so no hook ran.
func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, ErrSaveRejected):
		return errorTypeVetoed
	case errors.Is(err, ErrNotCollection):
		return errorTypeNotCollection
	default:
		return errorTypeHookFailed
	}
}

func hookLabels(kind HookKind, attribute string) map[string]string {
	return map[string]string{
		spanAttrHook:      HookName(kind, attribute),
		spanAttrAttribute: attribute,
	}
}

// incrementCounter increments a counter, using the context-aware method when the collector supports it.
func (i *Interceptor) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if i.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := i.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	i.metricsCollector.IncrementCounter(metric, labels)
}

// === Metrics Observer Pattern ===

// phaseMetricsObserver records the duration of one dispatch phase.
type phaseMetricsObserver struct {
	i     *Interceptor
	ctx   context.Context
	phase Phase
}

func (i *Interceptor) startPhaseMetrics(ctx context.Context, phase Phase) *phaseMetricsObserver {
	return &phaseMetricsObserver{i: i, ctx: ctx, phase: phase}
}

func (pmo *phaseMetricsObserver) record(status string, duration time.Duration) {
	collector := pmo.i.metricsCollector
	if collector == nil {
		return
	}

	labels := map[string]string{
		spanAttrPhase: string(pmo.phase),
		"status":      status,
	}

	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(pmo.ctx, metricDispatchSeconds, duration, labels)
		return
	}

	collector.RecordDuration(metricDispatchSeconds, duration, labels)
}

// === Tracing Observer Pattern ===

// phaseTracingObserver encapsulates the span of one dispatch phase.
type phaseTracingObserver struct {
	i    *Interceptor
	span SpanContext
}

func (i *Interceptor) startPhaseTracing(
	ctx context.Context,
	phase Phase,
	changeCount int,
) (*phaseTracingObserver, context.Context) {
	observer := &phaseTracingObserver{i: i}

	if i.tracingCollector == nil {
		return observer, ctx
	}

	spanName := spanNameAfter
	if phase == PhaseBeforeCreate || phase == PhaseBeforeUpdate {
		spanName = spanNameBefore
	}

	newCtx, span := i.tracingCollector.StartSpan(ctx, spanName, map[string]string{
		spanAttrPhase:       string(phase),
		spanAttrChangeCount: strconv.Itoa(changeCount),
	})
	observer.span = span

	return observer, newCtx
}

func (pto *phaseTracingObserver) finishSuccess(duration time.Duration) {
	if pto.span == nil {
		return
	}

	pto.span.SetStatus(statusSuccess)
	pto.i.tracingCollector.FinishSpan(pto.span, statusSuccess, map[string]string{
		logAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64),
	})
}

func (pto *phaseTracingObserver) finishError(status, errorType, attribute string, duration time.Duration) {
	if pto.span == nil {
		return
	}

	pto.span.SetStatus(status)
	pto.span.AddAttribute(spanAttrErrorType, errorType)
	pto.span.AddAttribute(spanAttrAttribute, attribute)

	pto.i.tracingCollector.FinishSpan(pto.span, status, map[string]string{
		spanAttrErrorType: errorType,
		spanAttrAttribute: attribute,
		logAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64),
	})
}
