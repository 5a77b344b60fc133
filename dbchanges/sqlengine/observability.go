package sqlengine

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/dbchanges-go/dbchanges"
)

const (
	metricCaptureDuration = "dbchanges_capture_duration_seconds"
	metricRowsCaptured    = "dbchanges_rows_captured"
	metricDatabaseErrors  = "dbchanges_database_errors_total"
	metricChangesDetected = "dbchanges_changes_detected"

	spanNameCapture = "dbchanges.capture"
	spanNameChanges = "dbchanges.changes"

	spanAttrOperation    = "operation"
	spanAttrDataName     = "data_name"
	spanAttrKind         = "kind"
	spanAttrRowCount     = "row_count"
	spanAttrChangeCount  = "change_count"
	spanAttrSourceCount  = "data_source_count"
	spanAttrErrorType    = "error_type"
	spanAttrDurationMS   = "duration_ms"
	spanAttrConsistency  = "consistency"
	labelStatus          = "status"
	statusSuccess        = "success"
	statusError          = "error"
	operationCaptureTbl  = "capture_table"
	operationCaptureReq  = "capture_request"
	operationListTables  = "list_tables"
	operationChanges     = "changes"
	errorTypeBuildQuery  = "build_query_error"
	errorTypeQuery       = "query_error"
	errorTypeScan        = "scan_error"
	errorTypeIntrospect  = "introspection_error"
	errorTypeSnapshot    = "snapshot_error"
	errorTypeDiff        = "diff_error"
	errorTypeCancelled   = "cancelled"
	errorTypeTableAbsent = "table_not_found"
)

/***** Logging *****/

// logQueryWithDuration logs SQL statements with execution time at debug level if a logger is configured.
func (s Source) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s Source) logOperation(ctx context.Context, action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarning logs non-critical issues at warn level if a logger is configured.
func (s Source) logWarning(ctx context.Context, message string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(message, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (s Source) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

/***** Metrics *****/

// recordDurationMetricsContext records duration metrics with context if the collector supports it.
func (s Source) recordDurationMetricsContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation, status string,
) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: status}

	if contextualCollector, ok := s.metricsCollector.(dbchanges.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

// recordValueMetricsContext records value metrics with context if the collector supports it.
func (s Source) recordValueMetricsContext(
	ctx context.Context,
	metricName string,
	value float64,
	operation, status string,
) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: status}

	if contextualCollector, ok := s.metricsCollector.(dbchanges.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
	} else {
		s.metricsCollector.RecordValue(metricName, value, labels)
	}
}

// recordErrorMetricsContext counts a database error with context if the collector supports it.
func (s Source) recordErrorMetricsContext(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := s.metricsCollector.(dbchanges.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

/***** Tracing *****/

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (s Source) startTraceSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, dbchanges.SpanContext) {
	if s.tracingCollector != nil {
		return s.tracingCollector.StartSpan(ctx, name, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (s Source) finishTraceSpan(spanCtx dbchanges.SpanContext, status string, attrs map[string]string) {
	if s.tracingCollector != nil && spanCtx != nil {
		s.tracingCollector.FinishSpan(spanCtx, status, attrs)
	}
}

// === Observer Pattern ===
// An observer bundles the span and the metrics of one operation, so the operation only reports its outcome.

type operationObserver struct {
	s         Source
	ctx       context.Context
	span      dbchanges.SpanContext
	operation string
	started   time.Time
}

// startObservation starts the span and the clock for one operation.
func (s Source) startObservation(
	ctx context.Context,
	spanName string,
	operation string,
	attrs map[string]string,
) (*operationObserver, context.Context) {
	spanAttrs := map[string]string{
		spanAttrOperation:   operation,
		spanAttrConsistency: dbchanges.GetConsistencyLevel(ctx).String(),
	}
	for key, value := range attrs {
		spanAttrs[key] = value
	}

	newCtx, span := s.startTraceSpan(ctx, spanName, spanAttrs)

	return &operationObserver{
		s:         s,
		ctx:       newCtx,
		span:      span,
		operation: operation,
		started:   time.Now(),
	}, newCtx
}

// finishCaptureSuccess records the captured row count and closes the span.
func (o *operationObserver) finishCaptureSuccess(rowCount int) time.Duration {
	duration := time.Since(o.started)

	o.s.recordDurationMetricsContext(o.ctx, metricCaptureDuration, duration, o.operation, statusSuccess)
	o.s.recordValueMetricsContext(o.ctx, metricRowsCaptured, float64(rowCount), o.operation, statusSuccess)
	o.finishSpan(statusSuccess, map[string]string{spanAttrRowCount: strconv.Itoa(rowCount)}, duration)

	return duration
}

// finishChangesSuccess records the number of detected changes and closes the span.
func (o *operationObserver) finishChangesSuccess(changeCount int) time.Duration {
	duration := time.Since(o.started)

	o.s.recordValueMetricsContext(o.ctx, metricChangesDetected, float64(changeCount), o.operation, statusSuccess)
	o.finishSpan(statusSuccess, map[string]string{spanAttrChangeCount: strconv.Itoa(changeCount)}, duration)

	return duration
}

// finishError records a failed operation and closes the span with the error type.
func (o *operationObserver) finishError(errorType string) {
	duration := time.Since(o.started)

	if o.operation == operationCaptureTbl || o.operation == operationCaptureReq {
		o.s.recordDurationMetricsContext(o.ctx, metricCaptureDuration, duration, o.operation, statusError)
	}
	o.s.recordErrorMetricsContext(o.ctx, o.operation, errorType)
	o.finishSpan(statusError, map[string]string{spanAttrErrorType: errorType}, duration)
}

func (o *operationObserver) finishSpan(status string, attrs map[string]string, duration time.Duration) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(status)
	for key, value := range attrs {
		o.span.AddAttribute(key, value)
	}
	o.span.AddAttribute(spanAttrDurationMS, strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64))

	o.s.finishTraceSpan(o.span, status, attrs)
}
