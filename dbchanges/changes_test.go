package dbchanges_test

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/dbchanges-go/dbchanges" //nolint:revive
)

func fixtureChanges(t *testing.T) Changes {
	t.Helper()

	pk := []string{"id"}

	changes, err := BuildChanges(
		SnapshotPair{
			Start: snapshotOf(t, "Books", pk, [][]any{{1, "a1"}, {2, "a2"}}),
			End:   snapshotOf(t, "Books", pk, [][]any{{1, "a1*"}, {3, "a3"}}),
		},
		SnapshotPair{
			Start: snapshotOf(t, "readers", pk, [][]any{{1, "b1"}}),
			End:   snapshotOf(t, "readers", pk, [][]any{{1, "b1*"}, {2, "b2"}}),
		},
		SnapshotPair{
			Start: snapshotOf(t, "report", nil, [][]any{{1, "r"}}, WithDataSourceKind(RequestKind)),
			End:   snapshotOf(t, "report", nil, nil, WithDataSourceKind(RequestKind)),
		},
	)
	require.NoError(t, err)

	return changes
}

func dataNamesOf(changes Changes) []string {
	var names []string
	for _, c := range changes.All() {
		names = append(names, c.DataName()+":"+c.ChangeType().String())
	}

	return names
}

func Test_Changes_ByTable(t *testing.T) {
	changes := fixtureChanges(t)

	onBooks, err := changes.ByTable("BOOKS")

	require.NoError(t, err)
	assert.Equal(t, []string{"Books:CREATION", "Books:MODIFICATION", "Books:DELETION"}, dataNamesOf(onBooks))
}

func Test_Changes_ByTable_Skips_Requests(t *testing.T) {
	changes := fixtureChanges(t)

	onReport, err := changes.ByTable("report")

	require.NoError(t, err)
	assert.Equal(t, 0, onReport.Len())
}

func Test_Changes_ByRequest(t *testing.T) {
	changes := fixtureChanges(t)

	onReport, err := changes.ByRequest("report")

	require.NoError(t, err)
	assert.Equal(t, []string{"report:DELETION"}, dataNamesOf(onReport))
}

func Test_Changes_ByDataName(t *testing.T) {
	changes := fixtureChanges(t)

	onReaders, err := changes.ByDataName("Readers")

	require.NoError(t, err)
	assert.Equal(t, []string{"readers:CREATION", "readers:MODIFICATION"}, dataNamesOf(onReaders))
}

func Test_Changes_ByType_Keeps_Order(t *testing.T) {
	changes := fixtureChanges(t)

	deletions, err := changes.ByType(Deletion)

	require.NoError(t, err)
	assert.Equal(t, []string{"Books:DELETION", "report:DELETION"}, dataNamesOf(deletions))
	assert.Equal(t, []string{"Books:CREATION", "readers:CREATION"}, dataNamesOf(changes.OfCreation()))
	assert.Equal(t, []string{"Books:MODIFICATION", "readers:MODIFICATION"}, dataNamesOf(changes.OfModification()))
	assert.Equal(t, dataNamesOf(deletions), dataNamesOf(changes.OfDeletion()))
}

func Test_Changes_Filters_Can_Be_Chained(t *testing.T) {
	changes := fixtureChanges(t)

	onBooks, err := changes.ByTable("books")
	require.NoError(t, err)
	creations, err := onBooks.ByType(Creation)
	require.NoError(t, err)

	assert.Equal(t, []string{"Books:CREATION"}, dataNamesOf(creations))
	assert.Equal(t, 6, changes.Len())
}

func Test_Changes_Filter_ErrorCases(t *testing.T) {
	changes := fixtureChanges(t)

	_, err := changes.ByTable("")
	assert.ErrorIs(t, err, ErrEmptyTableName)

	_, err = changes.ByRequest("")
	assert.ErrorIs(t, err, ErrEmptyDataName)

	_, err = changes.ByDataName("")
	assert.ErrorIs(t, err, ErrEmptyDataName)

	_, err = changes.ByType(ChangeType(42))
	assert.ErrorIs(t, err, ErrInvalidChangeType)

	_, err = changes.At(99)
	assert.ErrorIs(t, err, ErrChangeNotFound)
}

func Test_Changes_OnTableWithPrimaryKey(t *testing.T) {
	changes := fixtureChanges(t)

	change, err := changes.OnTableWithPrimaryKey("books", "3")
	require.NoError(t, err)
	assert.Equal(t, Creation, change.ChangeType())

	change, err = changes.OnTableWithPrimaryKey("books", 2)
	require.NoError(t, err)
	assert.Equal(t, Deletion, change.ChangeType())
	assert.Equal(t, []string{"id"}, change.PrimaryKeyNames())
	require.Len(t, change.PrimaryKeyValues(), 1)

	_, err = changes.OnTableWithPrimaryKey("books", 42)
	assert.ErrorIs(t, err, ErrChangeNotFound)

	_, err = changes.OnTableWithPrimaryKey("books", struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedLiteral)
}

func Test_Changes_JSON(t *testing.T) {
	changes := fixtureChanges(t)
	onReaders, err := changes.ByTable("readers")
	require.NoError(t, err)
	modifications := onReaders.OfModification()

	data, err := jsoniter.Marshal(modifications)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{
			"data_name": "readers",
			"kind": "TABLE",
			"change_type": "MODIFICATION",
			"primary_key": ["id"],
			"modified_columns": ["name"],
			"row_at_start": [
				{"name": "id", "value": {"type": "NUMBER", "value": "1"}},
				{"name": "name", "value": {"type": "TEXT", "value": "b1"}}
			],
			"row_at_end": [
				{"name": "id", "value": {"type": "NUMBER", "value": "1"}},
				{"name": "name", "value": {"type": "TEXT", "value": "b1*"}}
			]
		}
	]`, string(data))
}

func Test_Value_JSON(t *testing.T) {
	tests := []struct {
		raw      any
		expected string
	}{
		{raw: nil, expected: `{"type": "NOT_IDENTIFIED", "value": null}`},
		{raw: true, expected: `{"type": "BOOLEAN", "value": true}`},
		{raw: []byte("hi"), expected: `{"type": "BYTES", "value": "aGk="}`},
		{raw: 0.25, expected: `{"type": "NUMBER", "value": "0.25"}`},
		{raw: DateOf(2007, 12, 23), expected: `{"type": "DATE", "value": "2007-12-23"}`},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			data, err := jsoniter.Marshal(NewValue(tt.raw))

			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func Test_Empty_Changes_JSON(t *testing.T) {
	changes, err := BuildChanges()
	require.NoError(t, err)

	data, err := jsoniter.Marshal(changes)

	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
