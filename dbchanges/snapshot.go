package dbchanges

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// DataSourceKind tells whether a Snapshot was read from a table or from an arbitrary request.
type DataSourceKind int

const (
	TableKind DataSourceKind = iota
	RequestKind
)

func (k DataSourceKind) String() string {
	switch k {
	case TableKind:
		return "TABLE"
	case RequestKind:
		return "REQUEST"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is one consistent read of a data source at an instant.
type Snapshot struct {
	dataName             string
	kind                 DataSourceKind
	columnNames          []string
	primaryKeyNames      []string
	rows                 []Row
	capturedAt           time.Time
	tableLetterCase      LetterCase
	columnLetterCase     LetterCase
	primaryKeyLetterCase LetterCase
}

type snapshotConfig struct {
	kind                 DataSourceKind
	columnTypes          []string
	capturedAt           time.Time
	tableLetterCase      LetterCase
	columnLetterCase     LetterCase
	primaryKeyLetterCase LetterCase
}

// SnapshotOption configures BuildSnapshot.
type SnapshotOption func(*snapshotConfig) error

// WithDataSourceKind marks the data source as a table (default) or a request.
func WithDataSourceKind(kind DataSourceKind) SnapshotOption {
	return func(cfg *snapshotConfig) error {
		if kind != TableKind && kind != RequestKind {
			return errors.Join(ErrInvalidDataSourceKind, fmt.Errorf("kind %d", kind))
		}

		cfg.kind = kind

		return nil
	}
}

// WithColumnTypes supplies the database type name of each column, used as a classification hint.
func WithColumnTypes(columnTypes []string) SnapshotOption {
	return func(cfg *snapshotConfig) error {
		cfg.columnTypes = slices.Clone(columnTypes)

		return nil
	}
}

// WithCapturedAt sets the capture instant, which defaults to time.Now.
func WithCapturedAt(capturedAt time.Time) SnapshotOption {
	return func(cfg *snapshotConfig) error {
		cfg.capturedAt = capturedAt

		return nil
	}
}

// WithTableLetterCase sets the policy used when Changes are filtered by table name.
func WithTableLetterCase(letterCase LetterCase) SnapshotOption {
	return func(cfg *snapshotConfig) error {
		cfg.tableLetterCase = letterCase

		return nil
	}
}

// WithColumnLetterCase sets the policy used for column names.
func WithColumnLetterCase(letterCase LetterCase) SnapshotOption {
	return func(cfg *snapshotConfig) error {
		cfg.columnLetterCase = letterCase

		return nil
	}
}

// WithPrimaryKeyLetterCase sets the policy used to resolve primary key names to columns.
func WithPrimaryKeyLetterCase(letterCase LetterCase) SnapshotOption {
	return func(cfg *snapshotConfig) error {
		cfg.primaryKeyLetterCase = letterCase

		return nil
	}
}

// BuildSnapshot creates a new Snapshot with validation.
//
// Column names are converted by the column LetterCase. Each primary key name must resolve to one of the
// columns; the Snapshot then reports the column's own name for it. Every raw value is classified into a Value,
// using the column type as a hint when one was supplied.
func BuildSnapshot(
	dataName string,
	columns []string,
	primaryKey []string,
	rows [][]any,
	options ...SnapshotOption,
) (Snapshot, error) {
	cfg := snapshotConfig{
		kind:                 TableKind,
		capturedAt:           time.Now(),
		tableLetterCase:      DefaultLetterCase,
		columnLetterCase:     DefaultLetterCase,
		primaryKeyLetterCase: DefaultLetterCase,
	}

	for _, option := range options {
		if err := option(&cfg); err != nil {
			return Snapshot{}, err
		}
	}

	if dataName == "" {
		return Snapshot{}, ErrEmptyDataName
	}

	columnNames := make([]string, 0, len(columns))
	for _, column := range columns {
		if column == "" {
			return Snapshot{}, ErrEmptyColumnName
		}
		columnNames = append(columnNames, cfg.columnLetterCase.Convert(column))
	}

	if cfg.columnTypes != nil && len(cfg.columnTypes) != len(columnNames) {
		return Snapshot{}, errors.Join(
			ErrColumnTypesMismatch,
			fmt.Errorf("%d types for %d columns", len(cfg.columnTypes), len(columnNames)),
		)
	}

	primaryKeyNames, primaryKeyIndexes, err := resolvePrimaryKey(columnNames, primaryKey, cfg.primaryKeyLetterCase)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		dataName:             dataName,
		kind:                 cfg.kind,
		columnNames:          columnNames,
		primaryKeyNames:      primaryKeyNames,
		rows:                 make([]Row, 0, len(rows)),
		capturedAt:           cfg.capturedAt,
		tableLetterCase:      cfg.tableLetterCase,
		columnLetterCase:     cfg.columnLetterCase,
		primaryKeyLetterCase: cfg.primaryKeyLetterCase,
	}

	for i, raws := range rows {
		if len(raws) != len(columnNames) {
			return Snapshot{}, errors.Join(
				ErrRowLengthMismatch,
				fmt.Errorf("row %d has %d values for %d columns", i, len(raws), len(columnNames)),
			)
		}

		values := make([]Value, len(raws))
		for j, raw := range raws {
			if cfg.columnTypes != nil {
				values[j] = NewColumnValue(raw, cfg.columnTypes[j])
			} else {
				values[j] = NewValue(raw)
			}
		}

		snapshot.rows = append(snapshot.rows, Row{
			columnNames:       columnNames,
			primaryKeyNames:   primaryKeyNames,
			primaryKeyIndexes: primaryKeyIndexes,
			values:            values,
			columnLetterCase:  cfg.columnLetterCase,
		})
	}

	return snapshot, nil
}

func resolvePrimaryKey(columnNames, primaryKey []string, letterCase LetterCase) ([]string, []int, error) {
	names := make([]string, 0, len(primaryKey))
	indexes := make([]int, 0, len(primaryKey))

	for _, pk := range primaryKey {
		if pk == "" {
			return nil, nil, ErrEmptyPrimaryKeyName
		}

		index := letterCase.IndexOf(columnNames, pk)
		if index < 0 {
			return nil, nil, errors.Join(ErrUnknownPrimaryKeyColumn, fmt.Errorf("primary key column %q", pk))
		}

		names = append(names, columnNames[index])
		indexes = append(indexes, index)
	}

	return names, indexes, nil
}

func (s Snapshot) DataName() string {
	return s.dataName
}

func (s Snapshot) Kind() DataSourceKind {
	return s.kind
}

// ColumnNames returns a copy of the column names.
func (s Snapshot) ColumnNames() []string {
	return slices.Clone(s.columnNames)
}

// PrimaryKeyNames returns a copy of the primary key column names.
func (s Snapshot) PrimaryKeyNames() []string {
	return slices.Clone(s.primaryKeyNames)
}

// Rows returns a copy of the row list. Rows themselves are immutable.
func (s Snapshot) Rows() []Row {
	return slices.Clone(s.rows)
}

func (s Snapshot) RowCount() int {
	return len(s.rows)
}

func (s Snapshot) CapturedAt() time.Time {
	return s.capturedAt
}

// Row returns the row at an index.
func (s Snapshot) Row(index int) (Row, error) {
	if index < 0 || index >= len(s.rows) {
		return Row{}, errors.Join(
			ErrRowIndexOutOfRange,
			fmt.Errorf("index %d, snapshot has %d rows", index, len(s.rows)),
		)
	}

	return s.rows[index], nil
}

func (s Snapshot) hasPrimaryKey() bool {
	return len(s.primaryKeyNames) > 0
}
