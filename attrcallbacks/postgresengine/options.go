package postgresengine

import (
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
)

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithTableName overrides the table name derived from the schema.
func WithTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		s.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: saved and loaded records with durations (production-safe)
// Warn level: failed rollbacks
// Error level: failures that cause the operation to fail.
func WithLogger(logger attrcallbacks.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// It receives the same messages as the Logger, with the context for trace correlation.
func WithContextualLogger(logger attrcallbacks.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
func WithMetrics(collector attrcallbacks.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
func WithTracing(collector attrcallbacks.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithObservers appends lifecycle observers, typically an *attrcallbacks.Interceptor.
// Observers given first wrap the ones given later.
func WithObservers(observers ...attrcallbacks.Observer) Option {
	return func(s *Store) error {
		s.lifecycle.Register(observers...)
		return nil
	}
}
