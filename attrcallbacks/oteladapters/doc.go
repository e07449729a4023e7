// Package oteladapters provides OpenTelemetry implementations of the attrcallbacks observability
// interfaces, so an Interceptor or a postgresengine.Store can report to OpenTelemetry without
// custom glue code.
//
// Usage:
//
//	interceptor, err := attrcallbacks.NewInterceptor(registry,
//		attrcallbacks.WithContextualLogger(oteladapters.NewSlogBridgeLogger("widgets")),
//		attrcallbacks.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("widgets"))),
//		attrcallbacks.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("widgets"))),
//	)
package oteladapters
