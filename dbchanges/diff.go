package dbchanges

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SnapshotPair is the start and end Snapshot of one data source. Either side may be nil while not yet captured.
type SnapshotPair struct {
	Start *Snapshot
	End   *Snapshot
}

// Diff matches the rows of two Snapshots of one data source and classifies the differences.
//
// With a primary key, rows are matched by their primary key values and a matched pair that differs in any
// column is a modification. Without a primary key, rows are matched by their entire content, so a changed row
// shows up as one deletion plus one creation and there is never a modification.
//
// The result holds creations in end row order, then modifications and deletions in start row order.
// A nil start turns every end row into a creation, a nil end turns every start row into a deletion.
func Diff(start, end *Snapshot) ([]Change, error) {
	switch {
	case start == nil && end == nil:
		return nil, ErrNoSnapshots
	case start == nil:
		return allOf(end, Creation), nil
	case end == nil:
		return allOf(start, Deletion), nil
	}

	if err := checkDiffable(start, end); err != nil {
		return nil, err
	}

	var keyOf func(Row) []Value
	if start.hasPrimaryKey() {
		keyOf = Row.PrimaryKeyValues
	} else {
		keyOf = func(r Row) []Value { return r.values }
	}

	endRows := newRowMatcher(end.rows, keyOf)

	var modifications, deletions []Change

	for _, startRow := range start.rows {
		i, found := endRows.take(keyOf(startRow))
		if !found {
			deletions = append(deletions, newChange(start, Deletion, &startRow, nil, nil))
			continue
		}

		endRow := end.rows[i]
		if modified := modifiedIndexes(startRow, endRow); len(modified) > 0 {
			modifications = append(modifications, newChange(start, Modification, &startRow, &endRow, modified))
		}
	}

	changes := make([]Change, 0, len(modifications)+len(deletions))

	for i, endRow := range end.rows {
		if !endRows.matched[i] {
			changes = append(changes, newChange(end, Creation, nil, &endRow, nil))
		}
	}

	changes = append(changes, modifications...)
	changes = append(changes, deletions...)

	return changes, nil
}

// BuildChanges diffs every pair and orders the result by change type, then by pair order,
// keeping the discovery order within one pair.
func BuildChanges(pairs ...SnapshotPair) (Changes, error) {
	type ordered struct {
		pair   int
		change Change
	}

	var all []ordered

	for i, pair := range pairs {
		changes, err := Diff(pair.Start, pair.End)
		if err != nil {
			return Changes{}, errors.Join(err, fmt.Errorf("data source #%d", i))
		}

		for _, c := range changes {
			all = append(all, ordered{pair: i, change: c})
		}
	}

	slices.SortStableFunc(all, func(a, b ordered) int {
		return cmp.Or(
			cmp.Compare(a.change.changeType, b.change.changeType),
			cmp.Compare(a.pair, b.pair),
		)
	})

	changes := make([]Change, 0, len(all))
	for _, o := range all {
		changes = append(changes, o.change)
	}

	return newChanges(changes), nil
}

func checkDiffable(start, end *Snapshot) error {
	if start.kind != end.kind || !start.tableLetterCase.IsEqual(start.dataName, end.dataName) {
		return errors.Join(
			ErrDataNameMismatch,
			fmt.Errorf("%s %q vs %s %q", start.kind, start.dataName, end.kind, end.dataName),
		)
	}

	if !namesEqual(start.columnNames, end.columnNames, start.columnLetterCase) {
		return errors.Join(
			ErrColumnsMismatch,
			fmt.Errorf("%v vs %v", start.columnNames, end.columnNames),
		)
	}

	if !namesEqual(start.primaryKeyNames, end.primaryKeyNames, start.primaryKeyLetterCase) {
		return errors.Join(
			ErrPrimaryKeyMismatch,
			fmt.Errorf("%v vs %v", start.primaryKeyNames, end.primaryKeyNames),
		)
	}

	return nil
}

func namesEqual(a, b []string, letterCase LetterCase) bool {
	return slices.EqualFunc(a, b, letterCase.IsEqual)
}

func allOf(snapshot *Snapshot, changeType ChangeType) []Change {
	changes := make([]Change, 0, len(snapshot.rows))

	for _, row := range snapshot.rows {
		if changeType == Creation {
			changes = append(changes, newChange(snapshot, changeType, nil, &row, nil))
		} else {
			changes = append(changes, newChange(snapshot, changeType, &row, nil, nil))
		}
	}

	return changes
}

func newChange(snapshot *Snapshot, changeType ChangeType, atStart, atEnd *Row, modified []int) Change {
	return Change{
		dataName:        snapshot.dataName,
		kind:            snapshot.kind,
		changeType:      changeType,
		columnNames:     snapshot.columnNames,
		primaryKeyNames: snapshot.primaryKeyNames,
		rowAtStart:      atStart,
		rowAtEnd:        atEnd,
		modified:        modified,
		tableLetterCase: snapshot.tableLetterCase,
	}
}

func modifiedIndexes(start, end Row) []int {
	var modified []int

	for i := range start.values {
		if !start.values[i].Equal(end.values[i]) {
			modified = append(modified, i)
		}
	}

	return modified
}

/***** Row matching *****/

// rowMatcher hands out each row at most once, to the first probe with an equal key.
// Keys are bucketed by their canonical rendering. Text may equal a value of another category,
// so a miss falls back to a scan whenever text is involved on either side.
type rowMatcher struct {
	rows       []Row
	keyOf      func(Row) []Value
	matched    []bool
	buckets    map[string][]int
	hasText bool
}

func newRowMatcher(rows []Row, keyOf func(Row) []Value) *rowMatcher {
	m := &rowMatcher{
		rows:    rows,
		keyOf:   keyOf,
		matched: make([]bool, len(rows)),
		buckets: make(map[string][]int, len(rows)),
	}

	for i, row := range rows {
		key := keyOf(row)
		m.hasText = m.hasText || hasTextValue(key)
		k := canonicalKey(key)
		m.buckets[k] = append(m.buckets[k], i)
	}

	return m
}

func (m *rowMatcher) take(key []Value) (int, bool) {
	for _, i := range m.buckets[canonicalKey(key)] {
		if !m.matched[i] && valuesEqual(key, m.keyOf(m.rows[i])) {
			m.matched[i] = true
			return i, true
		}
	}

	if !m.hasText && !hasTextValue(key) {
		return -1, false
	}

	for i, row := range m.rows {
		if !m.matched[i] && valuesEqual(key, m.keyOf(row)) {
			m.matched[i] = true
			return i, true
		}
	}

	return -1, false
}

func hasTextValue(values []Value) bool {
	return slices.ContainsFunc(values, func(v Value) bool {
		return v.valueType == TypeText
	})
}

func canonicalKey(values []Value) string {
	var sb strings.Builder

	for _, v := range values {
		part := canonicalPart(v)
		sb.WriteString(strconv.Itoa(len(part)))
		sb.WriteByte(':')
		sb.WriteString(part)
	}

	return sb.String()
}

func canonicalPart(v Value) string {
	switch v.valueType {
	case TypeBoolean:
		return "b" + strconv.FormatBool(v.boolean)
	case TypeNumber:
		return "n" + v.number.String()
	case TypeText:
		return "s" + v.text
	case TypeDate:
		return "d" + v.date.String()
	case TypeDateTime:
		if v.dateTime.IsMidnight() {
			return "d" + v.dateTime.Date().String()
		}
		return "t" + v.dateTime.String()
	case TypeTime:
		return "h" + v.time.String()
	case TypeBytes:
		return "x" + string(v.bytes)
	case TypeUUID:
		return "u" + v.uuid.String()
	default:
		return "0"
	}
}
