package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/dbchanges-go/dbchanges"
	"github.com/AntonStoeckl/dbchanges-go/dbchanges/sqlengine/internal/adapters"
)

const (
	// DialectPostgres builds statements for PostgreSQL.
	DialectPostgres = "postgres"

	// DialectSQLite builds statements for SQLite.
	DialectSQLite = "sqlite3"

	defaultCaptureConcurrency = 4

	logMsgBuildQueryFailed    = "failed to build query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgBuildSnapshotFailed = "failed to build snapshot from database rows"
	logMsgIntrospectionFailed = "failed to introspect table metadata"
	logMsgPrimaryKeyDropped   = "primary key dropped, a key column is not captured"
	logMsgDiffFailed          = "failed to compute changes"
	logMsgTableCaptured       = "table captured"
	logMsgRequestCaptured     = "request captured"
	logMsgTablesListed        = "tables listed"
	logMsgChangesComputed     = "changes computed"
	logMsgStartPointSet       = "start point set"
	logMsgEndPointSet         = "end point set"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "dbchanges operation: "
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrDataName           = "data_name"
	logAttrRowCount           = "row_count"
	logAttrTableCount         = "table_count"
	logAttrChangeCount        = "change_count"
	logAttrSourceCount        = "data_source_count"
	logAttrColumns            = "columns"
	logAttrDurationMS         = "duration_ms"
	logActionCaptureTable     = "capture table"
	logActionCaptureRequest   = "capture request"
	logActionIntrospect       = "introspect table"
	logActionListTables       = "list tables"
)

// Source captures Snapshots of tables and requests from one database.
// It leverages a database adapter and supports customizable observability and letter case policies.
type Source struct {
	db                   adapters.DBAdapter
	dialect              string
	logger               dbchanges.Logger
	contextualLogger     dbchanges.ContextualLogger
	metricsCollector     dbchanges.MetricsCollector
	tracingCollector     dbchanges.TracingCollector
	tableLetterCase      dbchanges.LetterCase
	columnLetterCase     dbchanges.LetterCase
	primaryKeyLetterCase dbchanges.LetterCase
	captureConcurrency   int
}

// NewSourceFromPGXPool creates a new Source using a pgx Pool with optional configuration.
func NewSourceFromPGXPool(db *pgxpool.Pool, options ...Option) (Source, error) {
	if db == nil {
		return Source{}, dbchanges.ErrNilDatabaseConnection
	}

	return newSource(adapters.NewPGXAdapter(db), options...)
}

// NewSourceFromPGXPoolWithReplica creates a new Source using a primary and a replica pgx Pool.
// Captures run on the replica only when their context asks for eventual consistency.
func NewSourceFromPGXPoolWithReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Source, error) {
	if primary == nil || replica == nil {
		return Source{}, dbchanges.ErrNilDatabaseConnection
	}

	return newSource(adapters.NewPGXAdapterWithReplica(primary, replica), options...)
}

// NewSourceFromSQLDB creates a new Source using a sql.DB with optional configuration.
func NewSourceFromSQLDB(db *sql.DB, options ...Option) (Source, error) {
	if db == nil {
		return Source{}, dbchanges.ErrNilDatabaseConnection
	}

	return newSource(adapters.NewSQLAdapter(db), options...)
}

// NewSourceFromSQLX creates a new Source using a sqlx.DB with optional configuration.
func NewSourceFromSQLX(db *sqlx.DB, options ...Option) (Source, error) {
	if db == nil {
		return Source{}, dbchanges.ErrNilDatabaseConnection
	}

	return newSource(adapters.NewSQLXAdapter(db), options...)
}

func newSource(db adapters.DBAdapter, options ...Option) (Source, error) {
	s := Source{
		db:                   db,
		dialect:              DialectPostgres,
		tableLetterCase:      dbchanges.DefaultLetterCase,
		columnLetterCase:     dbchanges.DefaultLetterCase,
		primaryKeyLetterCase: dbchanges.DefaultLetterCase,
		captureConcurrency:   defaultCaptureConcurrency,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Source{}, err
		}
	}

	return s, nil
}

// Capture reads a Snapshot of a Table or a Request.
func (s Source) Capture(ctx context.Context, dataSource DataSource) (dbchanges.Snapshot, error) {
	return dataSource.capture(ctx, s)
}

// CaptureTable reads a Snapshot of a table.
//
// Columns and the primary key are discovered from the database metadata. Rows are ordered by the
// configured order columns, else by the primary key. If a column of the primary key is not captured,
// the primary key is dropped and rows are matched by content.
func (s Source) CaptureTable(ctx context.Context, table Table) (dbchanges.Snapshot, error) {
	observer, ctx := s.startObservation(ctx, spanNameCapture, operationCaptureTbl, map[string]string{
		spanAttrDataName: table.name,
		spanAttrKind:     dbchanges.TableKind.String(),
	})

	capturedAt := time.Now()

	metadata, err := s.introspectTable(ctx, table.name)
	if err != nil {
		observer.finishError(errorTypeOf(err, errorTypeIntrospect))
		return dbchanges.Snapshot{}, errors.Join(dbchanges.ErrCapturingSnapshotFailed, err)
	}

	plan, err := s.planTableCapture(ctx, table, metadata)
	if err != nil {
		observer.finishError(errorTypeBuildQuery)
		return dbchanges.Snapshot{}, errors.Join(dbchanges.ErrCapturingSnapshotFailed, err)
	}

	sqlQuery, err := s.buildSelectQuery(metadata, plan.columns, plan.orderBy)
	if err != nil {
		s.logError(ctx, logMsgBuildQueryFailed, err, logAttrDataName, table.name)
		observer.finishError(errorTypeBuildQuery)
		return dbchanges.Snapshot{}, errors.Join(dbchanges.ErrCapturingSnapshotFailed, err)
	}

	_, rows, err := s.queryAll(ctx, sqlQuery, logActionCaptureTable)
	if err != nil {
		observer.finishError(errorTypeOf(err, errorTypeQuery))
		return dbchanges.Snapshot{}, errors.Join(dbchanges.ErrCapturingSnapshotFailed, err)
	}

	snapshot, err := dbchanges.BuildSnapshot(
		s.tableLetterCase.Convert(table.name),
		plan.columns,
		plan.primaryKey,
		rows,
		dbchanges.WithDataSourceKind(dbchanges.TableKind),
		dbchanges.WithColumnTypes(plan.columnTypes),
		dbchanges.WithCapturedAt(capturedAt),
		dbchanges.WithTableLetterCase(s.tableLetterCase),
		dbchanges.WithColumnLetterCase(s.columnLetterCase),
		dbchanges.WithPrimaryKeyLetterCase(s.primaryKeyLetterCase),
	)
	if err != nil {
		s.logError(ctx, logMsgBuildSnapshotFailed, err, logAttrDataName, table.name)
		observer.finishError(errorTypeSnapshot)
		return dbchanges.Snapshot{}, errors.Join(dbchanges.ErrCapturingSnapshotFailed, err)
	}

	duration := observer.finishCaptureSuccess(snapshot.RowCount())
	s.logOperation(
		ctx,
		logMsgTableCaptured,
		logAttrDataName, snapshot.DataName(),
		logAttrRowCount, snapshot.RowCount(),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return snapshot, nil
}

// CaptureRequest reads a Snapshot of the result set of a request.
func (s Source) CaptureRequest(ctx context.Context, request Request) (dbchanges.Snapshot, error) {
	observer, ctx := s.startObservation(ctx, spanNameCapture, operationCaptureReq, map[string]string{
		spanAttrDataName: request.name,
		spanAttrKind:     dbchanges.RequestKind.String(),
	})

	capturedAt := time.Now()

	columns, rows, err := s.queryAll(ctx, request.query, logActionCaptureRequest, request.parameters...)
	if err != nil {
		observer.finishError(errorTypeOf(err, errorTypeQuery))
		return dbchanges.Snapshot{}, errors.Join(dbchanges.ErrCapturingSnapshotFailed, err)
	}

	names := make([]string, 0, len(columns))
	types := make([]string, 0, len(columns))
	for _, column := range columns {
		names = append(names, column.Name)
		types = append(types, column.DatabaseTypeName)
	}

	snapshot, err := dbchanges.BuildSnapshot(
		request.name,
		names,
		request.primaryKey,
		rows,
		dbchanges.WithDataSourceKind(dbchanges.RequestKind),
		dbchanges.WithColumnTypes(types),
		dbchanges.WithCapturedAt(capturedAt),
		dbchanges.WithTableLetterCase(s.tableLetterCase),
		dbchanges.WithColumnLetterCase(s.columnLetterCase),
		dbchanges.WithPrimaryKeyLetterCase(s.primaryKeyLetterCase),
	)
	if err != nil {
		s.logError(ctx, logMsgBuildSnapshotFailed, err, logAttrDataName, request.name)
		observer.finishError(errorTypeSnapshot)
		return dbchanges.Snapshot{}, errors.Join(dbchanges.ErrCapturingSnapshotFailed, err)
	}

	duration := observer.finishCaptureSuccess(snapshot.RowCount())
	s.logOperation(
		ctx,
		logMsgRequestCaptured,
		logAttrDataName, snapshot.DataName(),
		logAttrRowCount, snapshot.RowCount(),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return snapshot, nil
}

// queryAll executes a statement and reads its complete result set.
func (s Source) queryAll(
	ctx context.Context,
	sqlQuery string,
	action string,
	args ...any,
) ([]adapters.Column, [][]any, error) {
	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery, args...)
	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, nil, errors.Join(dbchanges.ErrQueryingFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	columns, columnsErr := rows.Columns()
	if columnsErr != nil {
		s.logError(ctx, logMsgScanRowFailed, columnsErr, logAttrQuery, sqlQuery)
		return nil, nil, errors.Join(dbchanges.ErrScanningDBRowFailed, columnsErr)
	}

	result := make([][]any, 0)

	for rows.Next() {
		values, scanErr := rows.Values()
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr, logAttrQuery, sqlQuery)
			return nil, nil, errors.Join(dbchanges.ErrScanningDBRowFailed, scanErr)
		}

		result = append(result, values)
	}

	if iterErr := rows.Err(); iterErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, iterErr, logAttrQuery, sqlQuery)
		return nil, nil, errors.Join(dbchanges.ErrQueryingFailed, iterErr)
	}

	return columns, result, nil
}

// closeRows safely closes database rows and logs any errors.
func (s Source) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarning(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// errorTypeOf classifies an error for metrics and spans.
func errorTypeOf(err error, fallback string) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorTypeCancelled
	case errors.Is(err, dbchanges.ErrTableNotFound):
		return errorTypeTableAbsent
	case errors.Is(err, dbchanges.ErrScanningDBRowFailed):
		return errorTypeScan
	default:
		return fallback
	}
}
