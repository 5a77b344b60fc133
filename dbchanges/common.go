package dbchanges

import (
	"errors"
)

// Usage errors of the core.
var (
	ErrEmptyDataName           = errors.New("empty data name supplied")
	ErrEmptyColumnName         = errors.New("empty column name supplied")
	ErrEmptyPrimaryKeyName     = errors.New("empty primary key column name supplied")
	ErrEmptyTableName          = errors.New("empty table name supplied")
	ErrUnknownPrimaryKeyColumn = errors.New("primary key column is not one of the columns")
	ErrRowLengthMismatch       = errors.New("number of values does not match number of columns")
	ErrColumnTypesMismatch     = errors.New("number of column types does not match number of columns")
	ErrColumnIndexOutOfRange   = errors.New("column index out of range")
	ErrColumnNotFound          = errors.New("column not found")
	ErrRowIndexOutOfRange      = errors.New("row index out of range")
	ErrUnsupportedLiteral      = errors.New("unsupported literal type for comparison")
	ErrUnparsableLiteral       = errors.New("literal can not be parsed")
	ErrComparisonNotPossible   = errors.New("comparison is not possible")
	ErrInvalidTolerance        = errors.New("invalid tolerance")
	ErrInvalidChangeType       = errors.New("invalid change type")
	ErrInvalidDataSourceKind   = errors.New("invalid data source kind")
	ErrNoSnapshots             = errors.New("neither start nor end snapshot supplied")
	ErrDataNameMismatch        = errors.New("start and end snapshots belong to different data sources")
	ErrColumnsMismatch         = errors.New("start and end snapshots have different columns")
	ErrPrimaryKeyMismatch      = errors.New("start and end snapshots have different primary keys")
	ErrChangeNotFound          = errors.New("no change found")
)

// Errors of the data access layer.
var (
	ErrNilDatabaseConnection   = errors.New("database connection must not be nil")
	ErrUnsupportedDialect      = errors.New("unsupported sql dialect")
	ErrInvalidConcurrency      = errors.New("capture concurrency must be at least 1")
	ErrEmptyQuery              = errors.New("empty sql query supplied")
	ErrNoDataSources           = errors.New("no data sources supplied")
	ErrTableNotFound           = errors.New("table not found")
	ErrBuildingQueryFailed     = errors.New("building query failed")
	ErrQueryingFailed          = errors.New("querying database failed")
	ErrScanningDBRowFailed     = errors.New("scanning db row failed")
	ErrIntrospectionFailed     = errors.New("introspecting table metadata failed")
	ErrCapturingSnapshotFailed = errors.New("capturing snapshot failed")
	ErrStartPointNotSet        = errors.New("start point not set")
	ErrEndPointNotSet          = errors.New("end point not set")
)
