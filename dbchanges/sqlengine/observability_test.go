package sqlengine_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dbchanges-go/dbchanges"
	. "github.com/AntonStoeckl/dbchanges-go/dbchanges/sqlengine" //nolint:revive
	"github.com/AntonStoeckl/dbchanges-go/testutil/sqlengine/helper"
)

type ctxKey string

func Test_Observability_On_Successful_Capture(t *testing.T) {
	logHandler := helper.NewLogHandlerSpy(false)
	metrics := helper.NewMetricsCollectorSpy()
	tracing := helper.NewTracingCollectorSpy()

	source := givenSQLiteSource(t, givenSQLiteLibrary(t),
		WithLogger(slog.New(logHandler)),
		WithMetrics(metrics),
		WithTracing(tracing),
	)

	_, err := source.CaptureTable(context.Background(), givenTable(t, "books"))
	require.NoError(t, err)

	assert.True(t, logHandler.HasDebugLogWithMessage("executed sql for: capture table").
		WithDurationMS().
		WithAttributeKey("query").
		Assert(), "debug log of the statement")
	assert.True(t, logHandler.HasDebugLogWithMessage("executed sql for: introspect table").Assert())
	assert.True(t, logHandler.HasInfoLogWithMessage("dbchanges operation: table captured").
		WithAttribute("data_name", "books").
		WithAttribute("row_count", "2").
		WithDurationMS().
		Assert(), "info log of the capture")

	assert.True(t, metrics.HasDurationRecordForMetric("dbchanges_capture_duration_seconds").
		WithOperation("capture_table").
		WithStatus("success").
		Assert())
	assert.True(t, metrics.HasValueRecordForMetric("dbchanges_rows_captured").
		WithOperation("capture_table").
		Assert())

	assert.Equal(t, 1, tracing.CountSpanRecordsForName("dbchanges.capture"))
	assert.True(t, tracing.HasSpanRecordForName("dbchanges.capture").
		WithStartAttribute("data_name", "books").
		WithStartAttribute("kind", "TABLE").
		WithStartAttribute("consistency", "strong").
		WithStatus("success").
		WithEndAttribute("row_count", "2").
		WithSpanAttributeKey("duration_ms").
		Assert())
}

func Test_Observability_On_Failed_Capture(t *testing.T) {
	logHandler := helper.NewLogHandlerSpy(false)
	metrics := helper.NewMetricsCollectorSpy()
	tracing := helper.NewTracingCollectorSpy()

	source := givenSQLiteSource(t, givenSQLiteLibrary(t),
		WithLogger(slog.New(logHandler)),
		WithMetrics(metrics),
		WithTracing(tracing),
	)

	_, err := source.CaptureTable(context.Background(), givenTable(t, "members"))
	require.Error(t, err)

	assert.True(t, metrics.HasCounterRecordForMetric("dbchanges_database_errors_total").
		WithOperation("capture_table").
		WithErrorType("table_not_found").
		Assert())
	assert.True(t, metrics.HasDurationRecordForMetric("dbchanges_capture_duration_seconds").
		WithStatus("error").
		Assert())
	assert.True(t, tracing.HasSpanRecordForName("dbchanges.capture").
		WithStatus("error").
		WithEndAttribute("error_type", "table_not_found").
		Assert())

	request, err := NewRequest("broken", "SELECT nope FROM nowhere")
	require.NoError(t, err)

	_, err = source.CaptureRequest(context.Background(), request)
	require.Error(t, err)

	assert.True(t, logHandler.HasErrorLogWithMessage("database query execution failed").
		WithAttributeKey("error").
		WithAttribute("query", "SELECT nope FROM nowhere").
		Assert())
	assert.True(t, metrics.HasCounterRecordForMetric("dbchanges_database_errors_total").
		WithOperation("capture_request").
		WithErrorType("query_error").
		Assert())
}

func Test_Observability_Warns_When_Primary_Key_Is_Dropped(t *testing.T) {
	logHandler := helper.NewLogHandlerSpy(false)
	source := givenSQLiteSource(t, givenSQLiteLibrary(t), WithLogger(slog.New(logHandler)))

	_, err := source.CaptureTable(context.Background(), givenTable(t, "loans", WithColumnsToCheck("reader", "lent_on")))
	require.NoError(t, err)

	assert.True(t, logHandler.HasWarnLogWithMessage("primary key dropped, a key column is not captured").
		WithAttribute("data_name", "loans").
		Assert())
}

func Test_Observability_Of_Changes(t *testing.T) {
	metrics := helper.NewMetricsCollectorSpy()
	tracing := helper.NewTracingCollectorSpy()
	contextualLogger := helper.NewContextualLoggerSpy()

	db := givenSQLiteLibrary(t)
	source := givenSQLiteSource(t, db,
		WithContextualLogger(contextualLogger),
		WithMetrics(metrics),
		WithTracing(tracing),
	)

	ctx := context.WithValue(context.Background(), ctxKey("request_id"), "r-42")

	tracker, err := source.Track(givenTable(t, "books"), givenTable(t, "tags"))
	require.NoError(t, err)
	require.NoError(t, tracker.SetStartPointNow(ctx))
	helper.GivenStatementsExecuted(t, db, `DELETE FROM tags`)
	require.NoError(t, tracker.SetEndPointNow(ctx))

	changes, err := tracker.Changes(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, changes.Len())

	assert.Equal(t, 4, tracing.CountSpanRecordsForName("dbchanges.capture"))
	assert.True(t, tracing.HasSpanRecordForName("dbchanges.changes").
		WithStartAttribute("data_source_count", "2").
		WithStatus("success").
		WithEndAttribute("change_count", "2").
		Assert())
	assert.True(t, metrics.HasValueRecordForMetric("dbchanges_changes_detected").
		WithOperation("changes").
		Assert())

	assert.True(t, contextualLogger.HasRecordWithContextValue(
		"dbchanges operation: changes computed", ctxKey("request_id"), "r-42"),
		"the caller's context reaches the contextual logger")
	assert.NotEmpty(t, contextualLogger.GetRecordsForLevel("debug"))
}

func Test_Observability_Reports_Eventual_Consistency(t *testing.T) {
	tracing := helper.NewTracingCollectorSpy()
	source := givenSQLiteSource(t, givenSQLiteLibrary(t), WithTracing(tracing))

	ctx := dbchanges.WithEventualConsistency(context.Background())
	_, err := source.CaptureTable(ctx, givenTable(t, "tags"))
	require.NoError(t, err)

	assert.True(t, tracing.HasSpanRecordForName("dbchanges.capture").
		WithStartAttribute("consistency", "eventual").
		Assert())
}
