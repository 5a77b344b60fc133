// Package dbchanges captures what happened to relational data between two points in time.
//
// A Snapshot is one read of a table or a request. Diff matches the rows of a start and an end Snapshot,
// by primary key when one is declared and by entire row content otherwise, and classifies every difference
// as a creation, a modification or a deletion. BuildChanges does this for several data sources at once and
// returns one ordered Changes list: creations first, then modifications, then deletions, each group in
// data source order.
//
// Every cell is a Value of one ValueType. Values compare by meaning rather than by driver representation:
// numbers by mathematical value whatever their width, dates and times by calendar and clock fields, and
// text against the category it renders.
//
// Common usage pattern:
//
//	start, _ := dbchanges.BuildSnapshot("books", []string{"id", "title"}, []string{"id"}, startRows)
//	end, _ := dbchanges.BuildSnapshot("books", []string{"id", "title"}, []string{"id"}, endRows)
//
//	changes, err := dbchanges.BuildChanges(dbchanges.SnapshotPair{Start: &start, End: &end})
//	if err != nil {
//		// handle error
//	}
//
//	change, err := changes.OnTableWithPrimaryKey("books", 1)
//	title, _ := change.RowAtEnd().ValueOf("title")
//	equal, _ := dbchanges.AreEqual(title, "Dune")
//
// Reading Snapshots from a live database is the job of package sqlengine.
package dbchanges
