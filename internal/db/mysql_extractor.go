package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/tablegen/internal/schema"
)

// MySQLExtractor reads raw schema rows from MySQL's information_schema
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
}

// NewMySQLExtractor creates a new MySQL schema extractor
func NewMySQLExtractor(client *MySQLClient, schemaName string) *MySQLExtractor {
	return &MySQLExtractor{
		client:     client,
		schemaName: schemaName,
	}
}

// ExtractSchema extracts the raw rows for specified tables
// If tables is empty, extracts all base tables in the schema
func (e *MySQLExtractor) ExtractSchema(ctx context.Context, tables []string) ([]schema.RawTable, error) {
	all, err := e.getTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	selected, err := selectTables(all, tables)
	if err != nil {
		return nil, err
	}

	return extractTables(selected, func(t tableEntry) (schema.RawTable, error) {
		return e.extractTable(ctx, t)
	})
}

// getTables lists the base tables of the schema with their auto-increment flag
func (e *MySQLExtractor) getTables(ctx context.Context) ([]tableEntry, error) {
	query := `
		SELECT table_name, auto_increment IS NOT NULL
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []tableEntry
	for rows.Next() {
		var entry tableEntry
		var autoIncrement int
		if err := rows.Scan(&entry.name, &autoIncrement); err != nil {
			return nil, err
		}
		entry.autoIncrement = autoIncrement == 1
		tables = append(tables, entry)
	}

	return tables, rows.Err()
}

// extractTable extracts all rows for a single table
func (e *MySQLExtractor) extractTable(ctx context.Context, entry tableEntry) (schema.RawTable, error) {
	table := schema.RawTable{Name: entry.name, AutoIncrement: entry.autoIncrement}

	columns, err := e.extractColumns(ctx, entry.name)
	if err != nil {
		return table, fmt.Errorf("failed to extract columns: %w", err)
	}
	table.Columns = columns

	constraints, err := e.extractConstraints(ctx, entry.name)
	if err != nil {
		return table, fmt.Errorf("failed to extract constraints: %w", err)
	}
	table.Constraints = constraints

	usages, err := e.extractKeyUsages(ctx, entry.name)
	if err != nil {
		return table, fmt.Errorf("failed to extract key column usage: %w", err)
	}
	table.Usages = usages

	return table, nil
}

// extractColumns extracts column rows ordered by ordinal position
func (e *MySQLExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.RawColumn, error) {
	query := `
		SELECT column_name, column_type, is_nullable, extra, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.RawColumn
	for rows.Next() {
		var col schema.RawColumn
		var nullable, extra string

		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &extra, &col.Ordinal); err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"
		col.AutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// extractConstraints extracts the constraint definitions of a table
func (e *MySQLExtractor) extractConstraints(ctx context.Context, tableName string) ([]schema.ConstraintDef, error) {
	query := `
		SELECT constraint_name, constraint_type
		FROM information_schema.table_constraints
		WHERE table_schema = ? AND table_name = ?
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var constraints []schema.ConstraintDef
	for rows.Next() {
		var c schema.ConstraintDef
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}

	return constraints, rows.Err()
}

// extractKeyUsages extracts key_column_usage rows of a table
func (e *MySQLExtractor) extractKeyUsages(ctx context.Context, tableName string) ([]schema.KeyUsage, error) {
	query := `
		SELECT column_name, constraint_name, ordinal_position
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND table_name = ?
		ORDER BY constraint_name, ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usages []schema.KeyUsage
	for rows.Next() {
		var u schema.KeyUsage
		if err := rows.Scan(&u.ColumnName, &u.ConstraintName, &u.Ordinal); err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}

	return usages, rows.Err()
}
