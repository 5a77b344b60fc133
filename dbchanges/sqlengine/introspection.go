package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/dbchanges-go/dbchanges"
)

const (
	defaultSQLiteSchema = "main"

	colColumnName      = "column_name"
	colDataType        = "data_type"
	colOrdinalPosition = "ordinal_position"
	colTableName       = "table_name"
	colTableSchema     = "table_schema"
	colTableType       = "table_type"
	colConstraintName  = "constraint_name"
	colConstraintType  = "constraint_type"
	colName            = "name"
	colType            = "type"
	colPK              = "pk"
	colCID             = "cid"

	tableTypeBase        = "BASE TABLE"
	constraintPrimaryKey = "PRIMARY KEY"
	sqliteObjectTable    = "table"
	sqliteInternalPrefix = "sqlite_%"
)

// tableMetadata is what the database reports about a table.
type tableMetadata struct {
	schema      string
	name        string
	columns     []string
	columnTypes []string
	primaryKey  []string
}

// capturePlan is the resolved selection of one table capture.
type capturePlan struct {
	columns     []string
	columnTypes []string
	primaryKey  []string
	orderBy     []string
}

// ListTables returns the names of the tables in the current schema, sorted by name.
func (s Source) ListTables(ctx context.Context) ([]string, error) {
	observer, ctx := s.startObservation(ctx, spanNameCapture, operationListTables, nil)

	sqlQuery, err := s.buildListTablesQuery()
	if err != nil {
		s.logError(ctx, logMsgBuildQueryFailed, err)
		observer.finishError(errorTypeBuildQuery)
		return nil, errors.Join(dbchanges.ErrBuildingQueryFailed, err)
	}

	_, rows, err := s.queryAll(ctx, sqlQuery, logActionListTables)
	if err != nil {
		observer.finishError(errorTypeOf(err, errorTypeQuery))
		return nil, err
	}

	tables := make([]string, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, asString(row[0]))
	}

	duration := observer.finishCaptureSuccess(len(tables))
	s.logOperation(ctx, logMsgTablesListed, logAttrTableCount, len(tables), logAttrDurationMS, toMilliseconds(duration))

	return tables, nil
}

func (s Source) buildListTablesQuery() (string, error) {
	var selectStmt *goqu.SelectDataset

	switch s.dialect {
	case DialectSQLite:
		selectStmt = goqu.Dialect(s.dialect).
			From(goqu.T("sqlite_master")).
			Select(goqu.C(colName)).
			Where(
				goqu.C(colType).Eq(sqliteObjectTable),
				goqu.C(colName).NotLike(sqliteInternalPrefix),
			).
			Order(goqu.C(colName).Asc())
	default:
		selectStmt = goqu.Dialect(s.dialect).
			From(goqu.T("tables").Schema("information_schema")).
			Select(goqu.Cast(goqu.C(colTableName), "TEXT").As(colTableName)).
			Where(
				goqu.C(colTableSchema).Eq(goqu.L("current_schema()")),
				goqu.C(colTableType).Eq(tableTypeBase),
			).
			Order(goqu.C(colTableName).Asc())
	}

	sqlQuery, _, err := selectStmt.ToSQL()

	return sqlQuery, err
}

// introspectTable reads the columns and the primary key of a table from the database metadata.
func (s Source) introspectTable(ctx context.Context, qualifiedName string) (tableMetadata, error) {
	schema, name := splitQualifiedName(qualifiedName)

	var metadata tableMetadata
	var err error

	switch s.dialect {
	case DialectSQLite:
		metadata, err = s.introspectSQLiteTable(ctx, schema, name)
	default:
		metadata, err = s.introspectPostgresTable(ctx, schema, name)
	}

	if err != nil {
		if !errors.Is(err, dbchanges.ErrTableNotFound) {
			s.logError(ctx, logMsgIntrospectionFailed, err, logAttrDataName, qualifiedName)
		}

		return tableMetadata{}, errors.Join(dbchanges.ErrIntrospectionFailed, err)
	}

	return metadata, nil
}

func (s Source) introspectPostgresTable(ctx context.Context, schema, name string) (tableMetadata, error) {
	builder := goqu.Dialect(DialectPostgres)

	var schemaExpr exp.Expression = goqu.L("current_schema()")
	if schema != "" {
		schemaExpr = goqu.V(schema)
	}

	columnsStmt := builder.
		From(goqu.T("columns").Schema("information_schema")).
		Select(
			goqu.Cast(goqu.C(colTableSchema), "TEXT").As(colTableSchema),
			goqu.Cast(goqu.C(colTableName), "TEXT").As(colTableName),
			goqu.Cast(goqu.C(colColumnName), "TEXT").As(colColumnName),
			goqu.Cast(goqu.C(colDataType), "TEXT").As(colDataType),
		).
		Where(
			goqu.C(colTableSchema).Eq(schemaExpr),
			s.tableNameMatches(goqu.C(colTableName), name),
		).
		Order(goqu.C(colTableName).Asc(), goqu.C(colOrdinalPosition).Asc())

	columnsQuery, _, err := columnsStmt.ToSQL()
	if err != nil {
		return tableMetadata{}, errors.Join(dbchanges.ErrBuildingQueryFailed, err)
	}

	_, columnRows, err := s.queryAll(ctx, columnsQuery, logActionIntrospect)
	if err != nil {
		return tableMetadata{}, err
	}

	if len(columnRows) == 0 {
		return tableMetadata{}, errors.Join(dbchanges.ErrTableNotFound, fmt.Errorf("table %q", name))
	}

	// A case-insensitive lookup may hit several tables; the exact name wins, else the first one.
	realName := asString(columnRows[0][1])
	for _, row := range columnRows {
		if asString(row[1]) == name {
			realName = name
			break
		}
	}

	metadata := tableMetadata{schema: schema, name: realName}
	for _, row := range columnRows {
		if asString(row[1]) != realName {
			continue
		}
		metadata.columns = append(metadata.columns, asString(row[2]))
		metadata.columnTypes = append(metadata.columnTypes, asString(row[3]))
	}

	primaryKeyStmt := builder.
		From(goqu.T("table_constraints").Schema("information_schema").As("tc")).
		Join(
			goqu.T("key_column_usage").Schema("information_schema").As("kcu"),
			goqu.On(
				goqu.I("tc."+colConstraintName).Eq(goqu.I("kcu."+colConstraintName)),
				goqu.I("tc."+colTableSchema).Eq(goqu.I("kcu."+colTableSchema)),
				goqu.I("tc."+colTableName).Eq(goqu.I("kcu."+colTableName)),
			),
		).
		Select(goqu.Cast(goqu.I("kcu."+colColumnName), "TEXT").As(colColumnName)).
		Where(
			goqu.I("tc."+colConstraintType).Eq(constraintPrimaryKey),
			goqu.I("tc."+colTableSchema).Eq(schemaExpr),
			goqu.I("tc."+colTableName).Eq(realName),
		).
		Order(goqu.I("kcu." + colOrdinalPosition).Asc())

	primaryKeyQuery, _, err := primaryKeyStmt.ToSQL()
	if err != nil {
		return tableMetadata{}, errors.Join(dbchanges.ErrBuildingQueryFailed, err)
	}

	_, primaryKeyRows, err := s.queryAll(ctx, primaryKeyQuery, logActionIntrospect)
	if err != nil {
		return tableMetadata{}, err
	}

	for _, row := range primaryKeyRows {
		metadata.primaryKey = append(metadata.primaryKey, asString(row[0]))
	}

	return metadata, nil
}

func (s Source) introspectSQLiteTable(ctx context.Context, schema, name string) (tableMetadata, error) {
	if schema == "" {
		schema = defaultSQLiteSchema
	}

	builder := goqu.Dialect(DialectSQLite)

	// SQLite table names are case-insensitive, so the metadata lookup is as well.
	tableStmt := builder.
		From(goqu.T("sqlite_master").Schema(schema)).
		Select(goqu.C(colName)).
		Where(
			goqu.C(colType).Eq(sqliteObjectTable),
			goqu.Func("lower", goqu.C(colName)).Eq(strings.ToLower(name)),
		)

	tableQuery, _, err := tableStmt.ToSQL()
	if err != nil {
		return tableMetadata{}, errors.Join(dbchanges.ErrBuildingQueryFailed, err)
	}

	_, tableRows, err := s.queryAll(ctx, tableQuery, logActionIntrospect)
	if err != nil {
		return tableMetadata{}, err
	}

	if len(tableRows) == 0 {
		return tableMetadata{}, errors.Join(dbchanges.ErrTableNotFound, fmt.Errorf("table %q", name))
	}

	realName := asString(tableRows[0][0])

	columnsStmt := builder.
		From(goqu.L("pragma_table_info(?, ?)", realName, schema)).
		Select(goqu.C(colName), goqu.C(colType), goqu.C(colPK)).
		Order(goqu.C(colCID).Asc())

	columnsQuery, _, err := columnsStmt.ToSQL()
	if err != nil {
		return tableMetadata{}, errors.Join(dbchanges.ErrBuildingQueryFailed, err)
	}

	_, columnRows, err := s.queryAll(ctx, columnsQuery, logActionIntrospect)
	if err != nil {
		return tableMetadata{}, err
	}

	metadata := tableMetadata{name: realName}
	if schema != defaultSQLiteSchema {
		metadata.schema = schema
	}

	type keyPart struct {
		position int64
		column   string
	}
	keyParts := make([]keyPart, 0)

	for _, row := range columnRows {
		column := asString(row[0])
		metadata.columns = append(metadata.columns, column)
		metadata.columnTypes = append(metadata.columnTypes, asString(row[1]))

		if position := asInt64(row[2]); position > 0 {
			keyParts = append(keyParts, keyPart{position: position, column: column})
		}
	}

	slices.SortFunc(keyParts, func(a, b keyPart) int {
		return int(a.position - b.position)
	})

	for _, part := range keyParts {
		metadata.primaryKey = append(metadata.primaryKey, part.column)
	}

	return metadata, nil
}

// tableNameMatches compares a table name column following the comparison of the table LetterCase.
func (s Source) tableNameMatches(column exp.IdentifierExpression, name string) exp.Expression {
	if s.tableLetterCase.Comparison() == dbchanges.StrictCase {
		return column.Eq(name)
	}

	return goqu.Func("lower", column).Eq(strings.ToLower(name))
}

// planTableCapture resolves the requested columns, the primary key and the row order against the metadata.
func (s Source) planTableCapture(ctx context.Context, table Table, metadata tableMetadata) (capturePlan, error) {
	for _, column := range slices.Concat(table.columnsToCheck, table.columnsToExclude) {
		if !s.columnLetterCase.Contains(metadata.columns, column) {
			return capturePlan{}, columnNotFound(table.name, column)
		}
	}

	plan := capturePlan{}

	for i, column := range metadata.columns {
		if len(table.columnsToCheck) > 0 && !s.columnLetterCase.Contains(table.columnsToCheck, column) {
			continue
		}

		if s.columnLetterCase.Contains(table.columnsToExclude, column) {
			continue
		}

		plan.columns = append(plan.columns, column)
		plan.columnTypes = append(plan.columnTypes, metadata.columnTypes[i])
	}

	if len(plan.columns) == 0 {
		return capturePlan{}, errors.Join(
			dbchanges.ErrColumnNotFound,
			fmt.Errorf("no column of table %q left to capture", table.name),
		)
	}

	primaryKey := metadata.primaryKey
	if len(table.primaryKey) > 0 {
		primaryKey = make([]string, 0, len(table.primaryKey))

		for _, column := range table.primaryKey {
			index := s.primaryKeyLetterCase.IndexOf(metadata.columns, column)
			if index < 0 {
				return capturePlan{}, columnNotFound(table.name, column)
			}
			primaryKey = append(primaryKey, metadata.columns[index])
		}
	}

	for _, column := range primaryKey {
		if !slices.Contains(plan.columns, column) {
			s.logWarning(ctx, logMsgPrimaryKeyDropped, logAttrDataName, table.name, logAttrColumns, primaryKey)
			primaryKey = nil
			break
		}
	}

	plan.primaryKey = primaryKey

	for _, column := range table.columnsToOrder {
		index := s.columnLetterCase.IndexOf(metadata.columns, column)
		if index < 0 {
			return capturePlan{}, columnNotFound(table.name, column)
		}
		plan.orderBy = append(plan.orderBy, metadata.columns[index])
	}

	if len(plan.orderBy) == 0 {
		plan.orderBy = plan.primaryKey
	}

	return plan, nil
}

// buildSelectQuery builds the statement reading all rows of a table.
func (s Source) buildSelectQuery(metadata tableMetadata, columns []string, orderBy []string) (string, error) {
	table := goqu.T(metadata.name)
	if metadata.schema != "" {
		table = table.Schema(metadata.schema)
	}

	selection := make([]any, 0, len(columns))
	for _, column := range columns {
		selection = append(selection, goqu.C(column))
	}

	ordering := make([]exp.OrderedExpression, 0, len(orderBy))
	for _, column := range orderBy {
		ordering = append(ordering, goqu.C(column).Asc())
	}

	selectStmt := goqu.Dialect(s.dialect).From(table).Select(selection...)
	if len(ordering) > 0 {
		selectStmt = selectStmt.Order(ordering...)
	}

	sqlQuery, _, err := selectStmt.ToSQL()
	if err != nil {
		return "", errors.Join(dbchanges.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func columnNotFound(table, column string) error {
	return errors.Join(dbchanges.ErrColumnNotFound, fmt.Errorf("column %q of table %q", column, table))
}

// splitQualifiedName splits "schema.table" into its parts; the schema is empty for a bare name.
func splitQualifiedName(qualifiedName string) (string, string) {
	if i := strings.LastIndexByte(qualifiedName, '.'); i > 0 && i < len(qualifiedName)-1 {
		return qualifiedName[:i], qualifiedName[i+1:]
	}

	return "", qualifiedName
}

func asString(raw any) string {
	switch r := raw.(type) {
	case nil:
		return ""
	case string:
		return r
	case []byte:
		return string(r)
	default:
		return fmt.Sprint(r)
	}
}

func asInt64(raw any) int64 {
	switch r := raw.(type) {
	case int64:
		return r
	case int32:
		return int64(r)
	case int:
		return int64(r)
	case float64:
		return int64(r)
	case string, []byte:
		i, _ := strconv.ParseInt(asString(r), 10, 64)
		return i
	default:
		return 0
	}
}
