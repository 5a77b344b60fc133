package dbchanges

import (
	"errors"
	"fmt"
	"slices"
)

// ChangeType classifies a Change. The declaration order is the order of Changes.
type ChangeType int

const (
	Creation ChangeType = iota
	Modification
	Deletion
)

func (t ChangeType) String() string {
	switch t {
	case Creation:
		return "CREATION"
	case Modification:
		return "MODIFICATION"
	case Deletion:
		return "DELETION"
	default:
		return "UNKNOWN"
	}
}

func (t ChangeType) validate() error {
	if t < Creation || t > Deletion {
		return errors.Join(ErrInvalidChangeType, fmt.Errorf("change type %d", t))
	}

	return nil
}

// Change is the classified difference of one logical row between two Snapshots.
//
// The start row is nil for a creation, the end row is nil for a deletion,
// and a modification has both rows which differ in at least one column.
type Change struct {
	dataName        string
	kind            DataSourceKind
	changeType      ChangeType
	columnNames     []string
	primaryKeyNames []string
	rowAtStart      *Row
	rowAtEnd        *Row
	modified        []int
	tableLetterCase LetterCase
}

func (c Change) DataName() string {
	return c.dataName
}

func (c Change) Kind() DataSourceKind {
	return c.kind
}

func (c Change) ChangeType() ChangeType {
	return c.changeType
}

// ColumnNames returns a copy of the column names shared by both rows.
func (c Change) ColumnNames() []string {
	return slices.Clone(c.columnNames)
}

// PrimaryKeyNames returns a copy of the primary key column names.
func (c Change) PrimaryKeyNames() []string {
	return slices.Clone(c.primaryKeyNames)
}

// RowAtStart returns the row before the change, nil for a creation.
func (c Change) RowAtStart() *Row {
	if c.rowAtStart == nil {
		return nil
	}
	row := *c.rowAtStart

	return &row
}

// RowAtEnd returns the row after the change, nil for a deletion.
func (c Change) RowAtEnd() *Row {
	if c.rowAtEnd == nil {
		return nil
	}
	row := *c.rowAtEnd

	return &row
}

// PrimaryKeyValues returns the primary key values of the row at end, or at start for a deletion.
func (c Change) PrimaryKeyValues() []Value {
	if c.rowAtEnd != nil {
		return c.rowAtEnd.PrimaryKeyValues()
	}

	return c.rowAtStart.PrimaryKeyValues()
}

// ModifiedColumnIndexes returns the indexes of the columns whose values differ; empty unless a modification.
func (c Change) ModifiedColumnIndexes() []int {
	return slices.Clone(c.modified)
}

// ModifiedColumnNames returns the names of the columns whose values differ.
func (c Change) ModifiedColumnNames() []string {
	names := make([]string, 0, len(c.modified))
	for _, i := range c.modified {
		names = append(names, c.columnNames[i])
	}

	return names
}

func (c Change) String() string {
	switch c.changeType {
	case Creation:
		return fmt.Sprintf("%s of %s %s: %s", c.changeType, c.kind, c.dataName, c.rowAtEnd)
	case Deletion:
		return fmt.Sprintf("%s of %s %s: %s", c.changeType, c.kind, c.dataName, c.rowAtStart)
	default:
		return fmt.Sprintf("%s of %s %s: %s -> %s", c.changeType, c.kind, c.dataName, c.rowAtStart, c.rowAtEnd)
	}
}
