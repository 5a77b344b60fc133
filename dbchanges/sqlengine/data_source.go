package sqlengine

import (
	"context"
	"slices"

	"github.com/AntonStoeckl/dbchanges-go/dbchanges"
)

// DataSource is something a Source can capture: a Table or a Request.
type DataSource interface {
	DataName() string
	Kind() dbchanges.DataSourceKind
	capture(ctx context.Context, s Source) (dbchanges.Snapshot, error)
}

/***** Table *****/

// Table is a database table, optionally restricted to some of its columns.
type Table struct {
	name             string
	columnsToCheck   []string
	columnsToExclude []string
	columnsToOrder   []string
	primaryKey       []string
}

// TableOption defines a functional option for configuring a Table.
type TableOption func(*Table) error

// NewTable creates a Table. The name may be qualified by a schema ("library.books").
func NewTable(name string, options ...TableOption) (Table, error) {
	if name == "" {
		return Table{}, dbchanges.ErrEmptyTableName
	}

	table := Table{name: name}

	for _, option := range options {
		if err := option(&table); err != nil {
			return Table{}, err
		}
	}

	return table, nil
}

// WithColumnsToCheck restricts the captured columns; all columns are captured by default.
func WithColumnsToCheck(columns ...string) TableOption {
	return func(t *Table) error {
		if err := validateColumnNames(columns); err != nil {
			return err
		}

		t.columnsToCheck = slices.Clone(columns)

		return nil
	}
}

// WithColumnsToExclude removes columns from the captured ones.
func WithColumnsToExclude(columns ...string) TableOption {
	return func(t *Table) error {
		if err := validateColumnNames(columns); err != nil {
			return err
		}

		t.columnsToExclude = slices.Clone(columns)

		return nil
	}
}

// WithColumnsToOrder sets the columns rows are ordered by; the primary key is used by default.
func WithColumnsToOrder(columns ...string) TableOption {
	return func(t *Table) error {
		if err := validateColumnNames(columns); err != nil {
			return err
		}

		t.columnsToOrder = slices.Clone(columns)

		return nil
	}
}

// WithPrimaryKey overrides the primary key discovered from the database metadata.
func WithPrimaryKey(columns ...string) TableOption {
	return func(t *Table) error {
		for _, column := range columns {
			if column == "" {
				return dbchanges.ErrEmptyPrimaryKeyName
			}
		}

		t.primaryKey = slices.Clone(columns)

		return nil
	}
}

func (t Table) DataName() string {
	return t.name
}

func (t Table) Kind() dbchanges.DataSourceKind {
	return dbchanges.TableKind
}

func (t Table) capture(ctx context.Context, s Source) (dbchanges.Snapshot, error) {
	return s.CaptureTable(ctx, t)
}

/***** Request *****/

// Request is an arbitrary SQL query whose result set is captured.
type Request struct {
	name       string
	query      string
	parameters []any
	primaryKey []string
}

// RequestOption defines a functional option for configuring a Request.
type RequestOption func(*Request) error

// NewRequest creates a Request. The name identifies it in Changes.
func NewRequest(name string, sqlQuery string, options ...RequestOption) (Request, error) {
	if name == "" {
		return Request{}, dbchanges.ErrEmptyDataName
	}

	if sqlQuery == "" {
		return Request{}, dbchanges.ErrEmptyQuery
	}

	request := Request{name: name, query: sqlQuery}

	for _, option := range options {
		if err := option(&request); err != nil {
			return Request{}, err
		}
	}

	return request, nil
}

// WithParameters sets the query parameters, in the placeholder style of the driver.
func WithParameters(parameters ...any) RequestOption {
	return func(r *Request) error {
		r.parameters = slices.Clone(parameters)
		return nil
	}
}

// WithPrimaryKeyColumns declares which result columns identify a row; without it rows are matched by content.
func WithPrimaryKeyColumns(columns ...string) RequestOption {
	return func(r *Request) error {
		for _, column := range columns {
			if column == "" {
				return dbchanges.ErrEmptyPrimaryKeyName
			}
		}

		r.primaryKey = slices.Clone(columns)

		return nil
	}
}

func (r Request) DataName() string {
	return r.name
}

func (r Request) Kind() dbchanges.DataSourceKind {
	return dbchanges.RequestKind
}

func (r Request) capture(ctx context.Context, s Source) (dbchanges.Snapshot, error) {
	return s.CaptureRequest(ctx, r)
}

func validateColumnNames(columns []string) error {
	for _, column := range columns {
		if column == "" {
			return dbchanges.ErrEmptyColumnName
		}
	}

	return nil
}
