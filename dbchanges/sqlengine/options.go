package sqlengine

import (
	"errors"
	"fmt"

	"github.com/AntonStoeckl/dbchanges-go/dbchanges"
)

// Option defines a functional option for configuring a Source.
type Option func(*Source) error

// WithDialect sets the SQL dialect statements are built for: "postgres" (default) or "sqlite3".
func WithDialect(dialect string) Option {
	return func(s *Source) error {
		switch dialect {
		case DialectPostgres, DialectSQLite:
			s.dialect = dialect
			return nil
		default:
			return errors.Join(dbchanges.ErrUnsupportedDialect, fmt.Errorf("dialect %q", dialect))
		}
	}
}

// WithLogger sets the logger for the Source.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Captured row counts, durations, detected changes (production-safe)
// Warn level: Non-critical issues like cleanup failures or dropped primary keys
// Error level: Critical failures that cause operation failures.
func WithLogger(logger dbchanges.Logger) Option {
	return func(s *Source) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Source.
// It receives the same messages as the Logger, together with the context for trace correlation.
func WithContextualLogger(logger dbchanges.ContextualLogger) Option {
	return func(s *Source) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Source.
// It receives capture durations, captured row counts, detected changes, and database errors.
func WithMetrics(collector dbchanges.MetricsCollector) Option {
	return func(s *Source) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Source.
// It receives a span for every capture and for every computation of changes.
func WithTracing(collector dbchanges.TracingCollector) Option {
	return func(s *Source) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithTableLetterCase sets the policy for table names.
func WithTableLetterCase(letterCase dbchanges.LetterCase) Option {
	return func(s *Source) error {
		s.tableLetterCase = letterCase
		return nil
	}
}

// WithColumnLetterCase sets the policy for column names.
func WithColumnLetterCase(letterCase dbchanges.LetterCase) Option {
	return func(s *Source) error {
		s.columnLetterCase = letterCase
		return nil
	}
}

// WithPrimaryKeyLetterCase sets the policy for primary key column names.
func WithPrimaryKeyLetterCase(letterCase dbchanges.LetterCase) Option {
	return func(s *Source) error {
		s.primaryKeyLetterCase = letterCase
		return nil
	}
}

// WithCaptureConcurrency sets how many data sources a Tracker captures at the same time.
func WithCaptureConcurrency(concurrency int) Option {
	return func(s *Source) error {
		if concurrency < 1 {
			return errors.Join(dbchanges.ErrInvalidConcurrency, fmt.Errorf("got %d", concurrency))
		}

		s.captureConcurrency = concurrency

		return nil
	}
}
