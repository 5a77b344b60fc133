package dbchanges

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Row is one captured row: the ordered column names, the Values in the same order,
// and the primary key columns of the data source it was read from.
//
// Rows are built by BuildSnapshot and never change afterward; the slices they share
// with their Snapshot are never handed out.
type Row struct {
	columnNames       []string
	primaryKeyNames   []string
	primaryKeyIndexes []int
	values            []Value
	columnLetterCase  LetterCase
}

// ColumnNames returns a copy of the column names.
func (r Row) ColumnNames() []string {
	return slices.Clone(r.columnNames)
}

// Values returns a copy of the values in column order.
func (r Row) Values() []Value {
	return slices.Clone(r.values)
}

// Len returns the number of values.
func (r Row) Len() int {
	return len(r.values)
}

// ValueAt returns the value at a column index.
func (r Row) ValueAt(index int) (Value, error) {
	if index < 0 || index >= len(r.values) {
		return Value{}, errors.Join(
			ErrColumnIndexOutOfRange,
			fmt.Errorf("index %d, row has %d columns", index, len(r.values)),
		)
	}

	return r.values[index], nil
}

// ValueOf returns the value of a column, matching the name by the column LetterCase.
// An empty name is a usage error, distinct from a name that is not found.
func (r Row) ValueOf(columnName string) (Value, error) {
	if columnName == "" {
		return Value{}, ErrEmptyColumnName
	}

	index := r.columnLetterCase.IndexOf(r.columnNames, columnName)
	if index < 0 {
		return Value{}, errors.Join(ErrColumnNotFound, fmt.Errorf("column %q", columnName))
	}

	return r.values[index], nil
}

// PrimaryKeyNames returns a copy of the primary key column names, empty if the data source has none.
func (r Row) PrimaryKeyNames() []string {
	return slices.Clone(r.primaryKeyNames)
}

// PrimaryKeyValues returns the values of the primary key columns in primary key order.
func (r Row) PrimaryKeyValues() []Value {
	pkValues := make([]Value, 0, len(r.primaryKeyIndexes))
	for _, i := range r.primaryKeyIndexes {
		pkValues = append(pkValues, r.values[i])
	}

	return pkValues
}

// HasValues reports whether other holds equal values at every index.
func (r Row) HasValues(other Row) bool {
	return valuesEqual(r.values, other.values)
}

func valuesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

func (r Row) String() string {
	var sb strings.Builder

	sb.WriteString("[")
	for i, v := range r.values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.columnNames[i])
		sb.WriteString("=")
		sb.WriteString(v.String())
	}
	sb.WriteString("]")

	return sb.String()
}
