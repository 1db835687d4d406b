package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/tablegen/internal/schema"
)

// SQLite keeps no named primary key constraint; this mirrors MySQL's name.
const sqlitePrimaryKeyName = "PRIMARY"

// SQLiteExtractor reads raw schema rows from SQLite's table pragmas.
// SQLite has no information_schema, so constraint definitions and key usages
// are synthesized from pragma_table_info, pragma_foreign_key_list and the
// unique indexes created by UNIQUE constraints.
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite schema extractor
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
	}
}

// ExtractSchema extracts the raw rows for specified tables
// If tables is empty, extracts all tables in the database
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) ([]schema.RawTable, error) {
	all, err := e.getTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	selected, err := selectTables(all, tables)
	if err != nil {
		return nil, err
	}

	return extractTables(selected, func(t tableEntry) (schema.RawTable, error) {
		return e.extractTable(ctx, t.name)
	})
}

// getTables lists user tables
func (e *SQLiteExtractor) getTables(ctx context.Context) ([]tableEntry, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []tableEntry
	for rows.Next() {
		var entry tableEntry
		if err := rows.Scan(&entry.name); err != nil {
			return nil, err
		}
		tables = append(tables, entry)
	}

	return tables, rows.Err()
}

// extractTable extracts all rows for a single table
func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (schema.RawTable, error) {
	table := schema.RawTable{Name: tableName}

	columns, pkUsages, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return table, fmt.Errorf("failed to extract columns: %w", err)
	}
	table.Columns = columns
	if len(pkUsages) > 0 {
		table.Constraints = append(table.Constraints, schema.ConstraintDef{Name: sqlitePrimaryKeyName, Type: schema.ConstraintPrimaryKey})
		table.Usages = append(table.Usages, pkUsages...)
	}
	for _, c := range columns {
		if c.AutoIncrement {
			table.AutoIncrement = true
		}
	}

	fkConstraints, fkUsages, err := e.extractForeignKeys(ctx, tableName)
	if err != nil {
		return table, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	table.Constraints = append(table.Constraints, fkConstraints...)
	table.Usages = append(table.Usages, fkUsages...)

	uqConstraints, uqUsages, err := e.extractUniqueConstraints(ctx, tableName)
	if err != nil {
		return table, fmt.Errorf("failed to extract unique constraints: %w", err)
	}
	table.Constraints = append(table.Constraints, uqConstraints...)
	table.Usages = append(table.Usages, uqUsages...)

	return table, nil
}

// normalizeSQLiteType maps declared SQLite types onto the MySQL type strings
// understood by the type mapper
func normalizeSQLiteType(declared string) string {
	t := strings.ToLower(strings.TrimSpace(declared))
	switch t {
	case "boolean", "bool":
		return "tinyint(1)"
	case "timestamp":
		return "datetime"
	case "uuid":
		return "binary(16)"
	default:
		return t
	}
}

// extractColumns extracts column rows and the primary key usages.
// A single INTEGER primary key aliases the rowid and is auto-assigned.
func (e *SQLiteExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.RawColumn, []schema.KeyUsage, error) {
	query := `SELECT cid, name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`

	rows, err := e.client.GetDB().QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []schema.RawColumn
	var pkUsages []schema.KeyUsage
	var declaredPKType string

	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string

		if err := rows.Scan(&cid, &name, &colType, &notNull, &pk); err != nil {
			return nil, nil, err
		}

		columns = append(columns, schema.RawColumn{
			Name:     name,
			DataType: normalizeSQLiteType(colType),
			Nullable: notNull == 0 && pk == 0,
			Ordinal:  cid + 1,
		})

		if pk > 0 {
			pkUsages = append(pkUsages, schema.KeyUsage{ColumnName: name, ConstraintName: sqlitePrimaryKeyName, Ordinal: pk})
			declaredPKType = colType
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	if len(pkUsages) == 1 && strings.EqualFold(declaredPKType, "INTEGER") {
		for i := range columns {
			if columns[i].Name == pkUsages[0].ColumnName {
				columns[i].AutoIncrement = true
			}
		}
	}

	return columns, pkUsages, nil
}

// extractForeignKeys synthesizes one FOREIGN KEY constraint per foreign key id
func (e *SQLiteExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]schema.ConstraintDef, []schema.KeyUsage, error) {
	query := `SELECT id, seq, "from" FROM pragma_foreign_key_list(?) ORDER BY id, seq`

	rows, err := e.client.GetDB().QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var constraints []schema.ConstraintDef
	var usages []schema.KeyUsage
	seen := make(map[string]bool)

	for rows.Next() {
		var id, seq int
		var fromCol string

		if err := rows.Scan(&id, &seq, &fromCol); err != nil {
			return nil, nil, err
		}

		name := fmt.Sprintf("fk_%s_%d", tableName, id)
		if !seen[name] {
			seen[name] = true
			constraints = append(constraints, schema.ConstraintDef{Name: name, Type: schema.ConstraintForeignKey})
		}
		usages = append(usages, schema.KeyUsage{ColumnName: fromCol, ConstraintName: name, Ordinal: seq + 1})
	}

	return constraints, usages, rows.Err()
}

// extractUniqueConstraints reads the indexes SQLite creates for UNIQUE constraints
func (e *SQLiteExtractor) extractUniqueConstraints(ctx context.Context, tableName string) ([]schema.ConstraintDef, []schema.KeyUsage, error) {
	query := `SELECT name FROM pragma_index_list(?) WHERE origin = 'u' ORDER BY seq`

	rows, err := e.client.GetDB().QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, nil, err
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, nil, err
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var constraints []schema.ConstraintDef
	var usages []schema.KeyUsage

	for _, name := range names {
		constraints = append(constraints, schema.ConstraintDef{Name: name, Type: schema.ConstraintUnique})

		indexRows, err := e.client.GetDB().QueryContext(ctx, `SELECT seqno, name FROM pragma_index_info(?) ORDER BY seqno`, name)
		if err != nil {
			return nil, nil, err
		}
		for indexRows.Next() {
			var seqno int
			var colName string
			if err := indexRows.Scan(&seqno, &colName); err != nil {
				indexRows.Close()
				return nil, nil, err
			}
			usages = append(usages, schema.KeyUsage{ColumnName: colName, ConstraintName: name, Ordinal: seqno + 1})
		}
		indexRows.Close()
		if err := indexRows.Err(); err != nil {
			return nil, nil, err
		}
	}

	return constraints, usages, nil
}
