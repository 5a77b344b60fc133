package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/dbchanges-go/dbchanges/oteladapters"
)

func Test_SlogBridgeLoggerWithHandler_Writes_All_Levels(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	logger.DebugContext(ctx, "executed sql for: capture table", "duration_ms", 1.5)
	logger.InfoContext(ctx, "dbchanges operation: table captured", "data_name", "books", "row_count", 3)
	logger.WarnContext(ctx, "failed to close database rows", "error", "boom")
	logger.ErrorContext(ctx, "database query execution failed", "error", "boom")

	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"level":"INFO"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
	assert.Contains(t, output, `"data_name":"books"`)
	assert.Contains(t, output, `"row_count":3`)
	assert.Contains(t, output, `"duration_ms":1.5`)
}

func Test_SlogBridgeLogger_With_Active_Trace(t *testing.T) {
	tracerProvider := sdktrace.NewTracerProvider()
	defer func() { _ = tracerProvider.Shutdown(context.Background()) }()
	otel.SetTracerProvider(tracerProvider)

	logger := oteladapters.NewSlogBridgeLogger("dbchanges")
	ctx, span := otel.Tracer("test").Start(context.Background(), "dbchanges.capture")
	defer span.End()

	assert.NotPanics(t, func() {
		logger.InfoContext(ctx, "dbchanges operation: table captured", "data_name", "books")
		logger.DebugContext(context.Background(), "no trace here")
	})
}

func Test_OTelLogger_Handles_Arguments(t *testing.T) {
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))
	ctx := context.Background()

	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug", "query", "SELECT 1")
		logger.InfoContext(ctx, "info", "row_count", 3, "duration_ms", 1.25, "ok", true, "big", int64(7))
		logger.WarnContext(ctx, "warn", "dangling")
		logger.ErrorContext(ctx, "error", 42, "not a key", "error", struct{ Code int }{Code: 1})
	})
}
