package dbchanges

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// Changes is an ordered, immutable list of Change.
// Every filter returns a new Changes which keeps the relative order of the retained elements.
type Changes struct {
	changes []Change
}

func newChanges(changes []Change) Changes {
	return Changes{changes: changes}
}

func (cs Changes) Len() int {
	return len(cs.changes)
}

// At returns the change at an index.
func (cs Changes) At(index int) (Change, error) {
	if index < 0 || index >= len(cs.changes) {
		return Change{}, errors.Join(
			ErrChangeNotFound,
			fmt.Errorf("index %d, %d changes", index, len(cs.changes)),
		)
	}

	return cs.changes[index], nil
}

// All iterates over the changes with their index.
func (cs Changes) All() iter.Seq2[int, Change] {
	return func(yield func(int, Change) bool) {
		for i, c := range cs.changes {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Slice returns a copy of the changes.
func (cs Changes) Slice() []Change {
	return slices.Clone(cs.changes)
}

func (cs Changes) filter(keep func(Change) bool) Changes {
	kept := make([]Change, 0, len(cs.changes))
	for _, c := range cs.changes {
		if keep(c) {
			kept = append(kept, c)
		}
	}

	return newChanges(kept)
}

// ByTable keeps the changes on one table, matching the name by the table LetterCase.
func (cs Changes) ByTable(tableName string) (Changes, error) {
	if tableName == "" {
		return Changes{}, ErrEmptyTableName
	}

	return cs.filter(func(c Change) bool {
		return c.kind == TableKind && c.tableLetterCase.IsEqual(c.dataName, tableName)
	}), nil
}

// ByRequest keeps the changes on one request.
func (cs Changes) ByRequest(requestName string) (Changes, error) {
	if requestName == "" {
		return Changes{}, ErrEmptyDataName
	}

	return cs.filter(func(c Change) bool {
		return c.kind == RequestKind && c.dataName == requestName
	}), nil
}

// ByDataName keeps the changes on one data source of either kind.
func (cs Changes) ByDataName(dataName string) (Changes, error) {
	if dataName == "" {
		return Changes{}, ErrEmptyDataName
	}

	return cs.filter(func(c Change) bool {
		return c.tableLetterCase.IsEqual(c.dataName, dataName)
	}), nil
}

// ByType keeps the changes of one type.
func (cs Changes) ByType(changeType ChangeType) (Changes, error) {
	if err := changeType.validate(); err != nil {
		return Changes{}, err
	}

	return cs.filter(func(c Change) bool {
		return c.changeType == changeType
	}), nil
}

func (cs Changes) OfCreation() Changes {
	changes, _ := cs.ByType(Creation)
	return changes
}

func (cs Changes) OfModification() Changes {
	changes, _ := cs.ByType(Modification)
	return changes
}

func (cs Changes) OfDeletion() Changes {
	changes, _ := cs.ByType(Deletion)
	return changes
}

// OnTableWithPrimaryKey returns the first change on a table whose primary key values equal the literals.
func (cs Changes) OnTableWithPrimaryKey(tableName string, primaryKey ...any) (Change, error) {
	onTable, err := cs.ByTable(tableName)
	if err != nil {
		return Change{}, err
	}

	for _, c := range onTable.changes {
		matches, err := primaryKeyMatches(c.PrimaryKeyValues(), primaryKey)
		if err != nil {
			return Change{}, err
		}
		if matches {
			return c, nil
		}
	}

	return Change{}, errors.Join(
		ErrChangeNotFound,
		fmt.Errorf("table %q with primary key %v", tableName, primaryKey),
	)
}

func primaryKeyMatches(values []Value, literals []any) (bool, error) {
	if len(values) != len(literals) {
		return false, nil
	}

	for i, literal := range literals {
		equal, err := AreEqual(values[i], literal)
		if err != nil {
			return false, err
		}
		if !equal {
			return false, nil
		}
	}

	return true, nil
}
