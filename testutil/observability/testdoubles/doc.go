// Package testdoubles provides test doubles (spies) for the observability interfaces of
// attrcallbacks and postgresengine:
//   - LogHandlerSpy: captures slog records, usable behind slog.New for Logger and ContextualLogger
//   - MetricsCollectorSpy: captures metrics recording calls, optionally the context-aware ones
//   - TracingCollectorSpy: captures started and finished spans
package testdoubles
