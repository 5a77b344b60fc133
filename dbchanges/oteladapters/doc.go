// Package oteladapters provides OpenTelemetry implementations of the dbchanges observability interfaces.
//
// Plug them into a sqlengine.Source to get spans for captures and change computations,
// histograms and gauges for capture durations and row counts, and logs correlated with the active trace:
//
//	source, err := sqlengine.NewSourceFromPGXPool(
//		pool,
//		sqlengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("dbchanges")),
//		sqlengine.WithMetrics(oteladapters.NewMetricsCollector(meter)),
//		sqlengine.WithTracing(oteladapters.NewTracingCollector(tracer)),
//	)
package oteladapters
