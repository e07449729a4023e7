package attrcallbacks_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
	"github.com/AntonStoeckl/attribute-callbacks-go/testutil/attrcallbacks/hookspy"
	"github.com/AntonStoeckl/attribute-callbacks-go/testutil/observability/testdoubles"
)

func Test_NewInterceptor_When_RegistryIsInvalid_Then_Error(t *testing.T) {
	_, err := attrcallbacks.NewInterceptor(nil)
	assert.ErrorIs(t, err, attrcallbacks.ErrNilRegistry)

	_, err = attrcallbacks.NewInterceptor(attrcallbacks.NewRegistry().AfterAdd("colors", nil))
	assert.ErrorIs(t, err, attrcallbacks.ErrNilHook)
}

func Test_NewInterceptor_When_OptionFails_Then_Error(t *testing.T) {
	optionErr := errors.New("bad option")
	failing := func(*attrcallbacks.Interceptor) error { return optionErr }

	_, err := attrcallbacks.NewInterceptor(attrcallbacks.NewRegistry(), failing)

	assert.ErrorIs(t, err, optionErr)
}

func Test_Interceptor_When_HooksRun_Then_InvocationsAreLoggedAndCounted(t *testing.T) {
	// arrange
	logHandler := testdoubles.NewLogHandlerSpy(false)
	metrics := testdoubles.NewMetricsCollectorSpy()
	spy := hookspy.New()
	interceptor, err := attrcallbacks.NewInterceptor(
		spy.RegisterAll(attrcallbacks.NewRegistry(), "colors"),
		attrcallbacks.WithLogger(slog.New(logHandler)),
		attrcallbacks.WithMetrics(metrics),
	)
	require.NoError(t, err)

	changes := attrcallbacks.NewChangeSet(attrcallbacks.NewChangeEntry("colors", []string{"red"}, []string{"red", "blue"}))

	// act
	err = interceptor.Before(context.Background(), attrcallbacks.OperationUpdate, newStubRecord(), changes)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, logHandler.CountLogs(slog.LevelDebug, "attribute hook invoked"))
	assert.True(t, logHandler.HasLogWithAttr(slog.LevelDebug, "attribute hook invoked", "hook", "before_colors_add"))
	assert.True(t, logHandler.HasLog(slog.LevelInfo, "attribute callbacks completed: before_update"))
	assert.Equal(t, 2, metrics.CountCounterRecords("attrcallbacks_hook_invocations_total", nil))
	assert.Equal(t, 1, metrics.CountCounterRecords("attrcallbacks_hook_invocations_total",
		map[string]string{"hook": "before_colors_change", "attribute": "colors"}))
	assert.True(t, metrics.HasDurationRecord("attrcallbacks_dispatch_duration_seconds",
		map[string]string{"phase": "before_update", "status": "success"}))
	assert.Positive(t, metrics.GetContextualCallCount())
}

func Test_Interceptor_When_HookVetoes_Then_VetoIsLoggedCountedAndTraced(t *testing.T) {
	// arrange
	logHandler := testdoubles.NewLogHandlerSpy(false)
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	spy := hookspy.New().Veto("before_name_change")
	interceptor, err := attrcallbacks.NewInterceptor(
		spy.RegisterScalar(attrcallbacks.NewRegistry(), "name"),
		attrcallbacks.WithContextualLogger(slog.New(logHandler)),
		attrcallbacks.WithMetrics(metrics),
		attrcallbacks.WithTracing(tracing),
	)
	require.NoError(t, err)

	changes := attrcallbacks.NewChangeSet(attrcallbacks.NewChangeEntry("name", "a", "b"))

	// act
	err = interceptor.Before(context.Background(), attrcallbacks.OperationCreate, newStubRecord(), changes)

	// assert
	assert.ErrorIs(t, err, attrcallbacks.ErrSaveRejected)
	assert.True(t, logHandler.HasLogWithAttr(slog.LevelInfo, "save vetoed by attribute hook", "attribute", "name"))
	assert.Equal(t, 1, metrics.CountCounterRecords("attrcallbacks_vetoes_total", map[string]string{"hook": "before_name_change"}))
	assert.True(t, metrics.HasDurationRecord("attrcallbacks_dispatch_duration_seconds", map[string]string{"status": "vetoed"}))

	span, found := tracing.FindSpan("attrcallbacks.before")
	require.True(t, found)
	assert.True(t, span.Finished)
	assert.Equal(t, "vetoed", span.Status)
	assert.Equal(t, "before_create", span.StartAttributes["phase"])
	assert.Equal(t, "1", span.StartAttributes["change_count"])
	assert.Equal(t, "vetoed", span.EndAttributes["error_type"])
	assert.Equal(t, "name", span.SpanContext.GetAttributes()["attribute"])
}

func Test_Interceptor_When_AfterHookFails_Then_FailureIsLoggedAndCounted(t *testing.T) {
	// arrange
	logHandler := testdoubles.NewLogHandlerSpy(false)
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	boom := errors.New("boom")
	spy := hookspy.New().Fail("name_changed", boom)
	interceptor, err := attrcallbacks.NewInterceptor(
		spy.RegisterScalar(attrcallbacks.NewRegistry(), "name"),
		attrcallbacks.WithLogger(slog.New(logHandler)),
		attrcallbacks.WithMetrics(metrics),
		attrcallbacks.WithTracing(tracing),
	)
	require.NoError(t, err)

	changes := attrcallbacks.NewChangeSet(
		attrcallbacks.NewChangeEntry("name", "a", "b"),
		attrcallbacks.NewChangeEntry("colors", nil, []string{"red"}),
	)

	// act
	err = interceptor.After(context.Background(), attrcallbacks.OperationUpdate, newStubRecord(), changes)

	// assert
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"after_name_change(a,b)", "name_changed(a,b)"}, spy.Calls())
	assert.True(t, logHandler.HasLogWithAttr(slog.LevelError, "attribute hook failed", "error", "boom"))
	assert.Equal(t, 1, metrics.CountCounterRecords("attrcallbacks_hook_failures_total", map[string]string{"hook": "name_changed"}))

	span, found := tracing.FindSpan("attrcallbacks.after")
	require.True(t, found)
	assert.Equal(t, "error", span.Status)
	assert.Equal(t, "hook_failed", span.EndAttributes["error_type"])
}

func Test_Interceptor_When_ChangeCannotBeDiffed_Then_SpanReportsNotCollection(t *testing.T) {
	// arrange
	tracing := testdoubles.NewTracingCollectorSpy()
	spy := hookspy.New()
	interceptor, err := attrcallbacks.NewInterceptor(
		spy.RegisterElements(attrcallbacks.NewRegistry(), "tags"),
		attrcallbacks.WithTracing(tracing),
	)
	require.NoError(t, err)

	changes := attrcallbacks.NewChangeSet(attrcallbacks.NewChangeEntryWithKind("tags", attrcallbacks.KindSequence, nil, "not a slice"))

	// act
	err = interceptor.Before(context.Background(), attrcallbacks.OperationUpdate, newStubRecord(), changes)

	// assert
	assert.ErrorIs(t, err, attrcallbacks.ErrNotCollection)
	assert.Empty(t, spy.Calls())

	span, found := tracing.FindSpan("attrcallbacks.before")
	require.True(t, found)
	assert.Equal(t, "error", span.Status)
	assert.Equal(t, "not_collection", span.EndAttributes["error_type"])
	assert.Equal(t, "tags", span.EndAttributes["attribute"])
}

func Test_Interceptor_When_RecordIsNil_Then_ErrNilRecord(t *testing.T) {
	interceptor, err := attrcallbacks.NewInterceptor(attrcallbacks.NewRegistry())
	require.NoError(t, err)

	assert.ErrorIs(t, interceptor.Before(context.Background(), attrcallbacks.OperationCreate, nil, attrcallbacks.ChangeSet{}), attrcallbacks.ErrNilRecord)
}
