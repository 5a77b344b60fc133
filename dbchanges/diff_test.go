package dbchanges_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/dbchanges-go/dbchanges" //nolint:revive
)

func snapshotOf(t *testing.T, dataName string, primaryKey []string, rows [][]any, options ...SnapshotOption) *Snapshot {
	t.Helper()

	snapshot, err := BuildSnapshot(dataName, []string{"id", "name"}, primaryKey, rows, options...)
	require.NoError(t, err)

	return &snapshot
}

func valueOf(t *testing.T, row *Row, column string) string {
	t.Helper()
	require.NotNil(t, row)

	v, err := row.ValueOf(column)
	require.NoError(t, err)

	return v.String()
}

func Test_Diff_When_Row_Is_Modified_With_Primary_Key(t *testing.T) {
	start := snapshotOf(t, "T", []string{"id"}, [][]any{{1, "X"}})
	end := snapshotOf(t, "T", []string{"id"}, [][]any{{1, "Y"}})

	changes, err := Diff(start, end)

	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, Modification, changes[0].ChangeType())
	assert.Equal(t, "X", valueOf(t, changes[0].RowAtStart(), "name"))
	assert.Equal(t, "Y", valueOf(t, changes[0].RowAtEnd(), "name"))
	assert.Equal(t, []int{1}, changes[0].ModifiedColumnIndexes())
	assert.Equal(t, []string{"name"}, changes[0].ModifiedColumnNames())
}

func Test_Diff_When_Row_Is_Modified_Without_Primary_Key(t *testing.T) {
	start := snapshotOf(t, "T", nil, [][]any{{1, "X"}})
	end := snapshotOf(t, "T", nil, [][]any{{1, "Y"}})

	changes, err := Diff(start, end)

	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, Creation, changes[0].ChangeType())
	assert.Nil(t, changes[0].RowAtStart())
	assert.Equal(t, "Y", valueOf(t, changes[0].RowAtEnd(), "name"))

	assert.Equal(t, Deletion, changes[1].ChangeType())
	assert.Nil(t, changes[1].RowAtEnd())
	assert.Equal(t, "X", valueOf(t, changes[1].RowAtStart(), "name"))
}

func Test_Diff_When_Snapshot_Is_Diffed_With_Identical_Copy(t *testing.T) {
	rows := [][]any{{1, "X"}, {2, "Y"}, {2, "Y"}, {nil, nil}}

	for _, primaryKey := range [][]string{nil, {"name"}} {
		changes, err := Diff(snapshotOf(t, "T", primaryKey, rows), snapshotOf(t, "T", primaryKey, rows))

		require.NoError(t, err)
		assert.Empty(t, changes)
	}
}

func Test_Diff_Without_Primary_Key_Ignores_Row_Order(t *testing.T) {
	start := snapshotOf(t, "T", nil, [][]any{{1, "X"}, {2, "Y"}, {3, "Z"}})
	end := snapshotOf(t, "T", nil, [][]any{{3, "Z"}, {1, "X"}, {2, "Y"}})

	changes, err := Diff(start, end)

	require.NoError(t, err)
	assert.Empty(t, changes)
}

func Test_Diff_Without_Primary_Key_Counts_Duplicates(t *testing.T) {
	start := snapshotOf(t, "T", nil, [][]any{{1, "X"}, {1, "X"}, {2, "Y"}})
	end := snapshotOf(t, "T", nil, [][]any{{1, "X"}, {2, "Y"}, {2, "Y"}, {2, "Y"}})

	changes, err := Diff(start, end)

	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, Creation, changes[0].ChangeType())
	assert.Equal(t, "Y", valueOf(t, changes[0].RowAtEnd(), "name"))
	assert.Equal(t, Creation, changes[1].ChangeType())
	assert.Equal(t, Deletion, changes[2].ChangeType())
	assert.Equal(t, "X", valueOf(t, changes[2].RowAtStart(), "name"))
}

func Test_Diff_With_Primary_Key_Creation_And_Deletion(t *testing.T) {
	start := snapshotOf(t, "T", []string{"id"}, [][]any{{1, "A"}, {2, "B"}, {3, "C"}})
	end := snapshotOf(t, "T", []string{"id"}, [][]any{{4, "D"}, {3, "C"}, {1, "A2"}, {5, "E"}})

	changes, err := Diff(start, end)

	require.NoError(t, err)
	require.Len(t, changes, 4)

	assert.Equal(t, Creation, changes[0].ChangeType())
	assert.Equal(t, "D", valueOf(t, changes[0].RowAtEnd(), "name"))
	assert.Equal(t, Creation, changes[1].ChangeType())
	assert.Equal(t, "E", valueOf(t, changes[1].RowAtEnd(), "name"))
	assert.Equal(t, Modification, changes[2].ChangeType())
	assert.Equal(t, "A2", valueOf(t, changes[2].RowAtEnd(), "name"))
	assert.Equal(t, Deletion, changes[3].ChangeType())
	assert.Equal(t, "B", valueOf(t, changes[3].RowAtStart(), "name"))
}

func Test_Diff_Matches_Primary_Keys_By_Value_Equality(t *testing.T) {
	start := snapshotOf(t, "T", []string{"id"}, [][]any{{int16(1), "X"}, {int64(2), "Y"}})
	end := snapshotOf(t, "T", []string{"id"}, [][]any{{"2", "Y"}, {1.0, "X"}})

	changes, err := Diff(start, end)

	require.NoError(t, err)
	assert.Empty(t, changes)
}

func Test_Diff_Modification_Differs_At_Exactly_One_Index(t *testing.T) {
	start, err := BuildSnapshot("T", []string{"id", "a", "b", "c"}, []string{"id"},
		[][]any{{1, "a", "b", "c"}, {2, "a", "b", "c"}})
	require.NoError(t, err)
	end, err := BuildSnapshot("T", []string{"id", "a", "b", "c"}, []string{"id"},
		[][]any{{1, "a", "b", "c"}, {2, "a", "B", "c"}})
	require.NoError(t, err)

	changes, err := Diff(&start, &end)

	require.NoError(t, err)
	require.Len(t, changes, 1)

	atStart := changes[0].RowAtStart().Values()
	atEnd := changes[0].RowAtEnd().Values()
	for i := range atStart {
		assert.Equal(t, i != 2, atStart[i].Equal(atEnd[i]), "column %d", i)
	}
	assert.Equal(t, []int{2}, changes[0].ModifiedColumnIndexes())
}

func Test_Diff_When_A_Snapshot_Is_Absent(t *testing.T) {
	snapshot := snapshotOf(t, "T", []string{"id"}, [][]any{{1, "X"}, {2, "Y"}})

	created, err := Diff(nil, snapshot)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, Creation, created[0].ChangeType())

	deleted, err := Diff(snapshot, nil)
	require.NoError(t, err)
	require.Len(t, deleted, 2)
	assert.Equal(t, Deletion, deleted[1].ChangeType())

	_, err = Diff(nil, nil)
	assert.ErrorIs(t, err, ErrNoSnapshots)
}

func Test_Diff_ErrorCases(t *testing.T) {
	base := snapshotOf(t, "T", []string{"id"}, nil)

	otherName := snapshotOf(t, "U", []string{"id"}, nil)
	otherKind := snapshotOf(t, "T", []string{"id"}, nil, WithDataSourceKind(RequestKind))
	otherKey := snapshotOf(t, "T", []string{"name"}, nil)
	otherColumns, err := BuildSnapshot("T", []string{"id", "title"}, []string{"id"}, nil)
	require.NoError(t, err)

	_, err = Diff(base, otherName)
	assert.ErrorIs(t, err, ErrDataNameMismatch)

	_, err = Diff(base, otherKind)
	assert.ErrorIs(t, err, ErrDataNameMismatch)

	_, err = Diff(base, &otherColumns)
	assert.ErrorIs(t, err, ErrColumnsMismatch)

	_, err = Diff(base, otherKey)
	assert.ErrorIs(t, err, ErrPrimaryKeyMismatch)
}

//nolint:funlen
func Test_BuildChanges_Orders_By_Type_Then_Data_Source(t *testing.T) {
	pk := []string{"id"}
	pairA := SnapshotPair{
		Start: snapshotOf(t, "A", pk, [][]any{{1, "a1"}, {2, "a2"}}),
		End:   snapshotOf(t, "A", pk, [][]any{{1, "a1*"}, {3, "a3"}}),
	}
	pairB := SnapshotPair{
		Start: snapshotOf(t, "B", pk, [][]any{{1, "b1"}, {2, "b2"}}),
		End:   snapshotOf(t, "B", pk, [][]any{{1, "b1*"}, {3, "b3"}}),
	}

	changes, err := BuildChanges(pairA, pairB)
	require.NoError(t, err)

	type summary struct {
		dataName   string
		changeType ChangeType
	}

	var actual []summary
	for _, c := range changes.All() {
		actual = append(actual, summary{dataName: c.DataName(), changeType: c.ChangeType()})
	}

	assert.Equal(t, []summary{
		{dataName: "A", changeType: Creation},
		{dataName: "B", changeType: Creation},
		{dataName: "A", changeType: Modification},
		{dataName: "B", changeType: Modification},
		{dataName: "A", changeType: Deletion},
		{dataName: "B", changeType: Deletion},
	}, actual)
}

func Test_BuildChanges_Keeps_Discovery_Order_Within_A_Bucket(t *testing.T) {
	pk := []string{"id"}
	pair := SnapshotPair{
		Start: snapshotOf(t, "A", pk, [][]any{{3, "c"}, {1, "a"}, {2, "b"}}),
		End:   snapshotOf(t, "A", pk, nil),
	}

	changes, err := BuildChanges(pair)
	require.NoError(t, err)
	require.Equal(t, 3, changes.Len())

	var names []string
	for _, c := range changes.All() {
		names = append(names, valueOf(t, c.RowAtStart(), "name"))
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func Test_BuildChanges_When_A_Pair_Is_Invalid(t *testing.T) {
	_, err := BuildChanges(SnapshotPair{})

	assert.ErrorIs(t, err, ErrNoSnapshots)
}
