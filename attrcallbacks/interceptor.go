package attrcallbacks

import (
	"context"
	"time"
)

const (
	logMsgHookInvoked      = "attribute hook invoked"
	logMsgSaveVetoed       = "save vetoed by attribute hook"
	logMsgHookFailed       = "attribute hook failed"
	logMsgPhaseCompleted   = "attribute callbacks completed: "
	logAttrAttribute       = "attribute"
	logAttrHook            = "hook"
	logAttrChangeCount     = "change_count"
	logAttrDurationMS      = "duration_ms"
	logAttrError           = "error"
	metricHookInvocations  = "attrcallbacks_hook_invocations_total"
	metricVetoes           = "attrcallbacks_vetoes_total"
	metricHookFailures     = "attrcallbacks_hook_failures_total"
	metricDispatchSeconds  = "attrcallbacks_dispatch_duration_seconds"
	spanNameBefore         = "attrcallbacks.before"
	spanNameAfter          = "attrcallbacks.after"
	spanAttrPhase          = "phase"
	spanAttrChangeCount    = "change_count"
	spanAttrAttribute      = "attribute"
	spanAttrHook           = "hook"
	spanAttrErrorType      = "error_type"
	statusSuccess          = "success"
	statusVetoed           = "vetoed"
	statusError            = "error"
	errorTypeHookFailed    = "hook_failed"
	errorTypeVetoed        = "vetoed"
	errorTypeNotCollection = "not_collection"
)

// Interceptor is the Observer that turns a record's ChangeSet into attribute hook calls.
// Register it in a Lifecycle, typically as the first observer.
type Interceptor struct {
	dispatcher       Dispatcher
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// Option defines a functional option for configuring an Interceptor.
type Option func(*Interceptor) error

// WithLogger sets the logger for the Interceptor.
//
// Debug level: every hook invocation
// Info level: vetoes and completed phases
// Error level: failed hooks.
func WithLogger(logger Logger) Option {
	return func(i *Interceptor) error {
		i.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, used for trace correlated log records.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(i *Interceptor) error {
		i.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Interceptor.
func WithMetrics(collector MetricsCollector) Option {
	return func(i *Interceptor) error {
		i.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Interceptor.
func WithTracing(collector TracingCollector) Option {
	return func(i *Interceptor) error {
		i.tracingCollector = collector
		return nil
	}
}

// NewInterceptor creates an Interceptor dispatching the hooks in registry.
// Registration mistakes collected by the registry are returned here.
func NewInterceptor(registry *Registry, options ...Option) (*Interceptor, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}

	if err := registry.Err(); err != nil {
		return nil, err
	}

	interceptor := &Interceptor{}

	for _, option := range options {
		if err := option(interceptor); err != nil {
			return nil, err
		}
	}

	interceptor.dispatcher = NewDispatcher(registry).withObserver(interceptor)

	return interceptor, nil
}

// Before dispatches the before hooks of every change in order. The first veto or hook error
// rejects the save.
func (i *Interceptor) Before(ctx context.Context, op Operation, rec Record, changes ChangeSet) error {
	return i.run(ctx, op, rec, changes, true)
}

// After dispatches the after hooks of every change in order. The first hook error is returned,
// so the surrounding transaction gets rolled back.
func (i *Interceptor) After(ctx context.Context, op Operation, rec Record, changes ChangeSet) error {
	return i.run(ctx, op, rec, changes, false)
}

func (i *Interceptor) run(ctx context.Context, op Operation, rec Record, changes ChangeSet, before bool) error {
	if rec == nil {
		return ErrNilRecord
	}

	phase := PhaseFor(op, before)
	tracing, ctx := i.startPhaseTracing(ctx, phase, changes.Len())
	metrics := i.startPhaseMetrics(ctx, phase)
	start := time.Now()

	for _, entry := range changes.Entries() {
		var err error
		if before {
			err = i.dispatcher.DispatchBefore(ctx, rec, entry)
		} else {
			err = i.dispatcher.DispatchAfter(ctx, rec, entry)
		}

		if err != nil {
			duration := time.Since(start)
			status := statusOf(err)
			tracing.finishError(status, errorTypeOf(err), entry.Attribute, duration)
			metrics.record(status, duration)

			return err
		}
	}

	duration := time.Since(start)
	tracing.finishSuccess(duration)
	metrics.record(statusSuccess, duration)
	i.logOperation(ctx, string(phase), logAttrChangeCount, changes.Len(), logAttrDurationMS, toMilliseconds(duration))

	return nil
}

func (i *Interceptor) hookInvoked(ctx context.Context, kind HookKind, attribute string) {
	i.logDebug(ctx, logMsgHookInvoked, logAttrHook, HookName(kind, attribute), logAttrAttribute, attribute)
	i.incrementCounter(ctx, metricHookInvocations, hookLabels(kind, attribute))
}

func (i *Interceptor) hookVetoed(ctx context.Context, kind HookKind, attribute string) {
	i.logInfo(ctx, logMsgSaveVetoed, logAttrHook, HookName(kind, attribute), logAttrAttribute, attribute)
	i.incrementCounter(ctx, metricVetoes, hookLabels(kind, attribute))
}

func (i *Interceptor) hookFailed(ctx context.Context, kind HookKind, attribute string, err error) {
	i.logError(ctx, logMsgHookFailed, err, logAttrHook, HookName(kind, attribute), logAttrAttribute, attribute)
	i.incrementCounter(ctx, metricHookFailures, hookLabels(kind, attribute))
}
