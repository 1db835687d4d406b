package db

import (
	"context"
	"fmt"

	"github.com/tordrt/tablegen/internal/schema"
)

const varcharType = "varchar"

// PostgresExtractor reads raw schema rows from PostgreSQL's information_schema.
// Column types are normalized to the MySQL vocabulary the type mapper knows.
type PostgresExtractor struct {
	client *PostgresClient
	schema string
}

// NewPostgresExtractor creates a new PostgreSQL schema extractor
func NewPostgresExtractor(client *PostgresClient, schemaName string) *PostgresExtractor {
	return &PostgresExtractor{
		client: client,
		schema: schemaName,
	}
}

// ExtractSchema extracts the raw rows for specified tables
// If tables is empty, extracts all base tables in the schema
func (e *PostgresExtractor) ExtractSchema(ctx context.Context, tables []string) ([]schema.RawTable, error) {
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

// getTables lists base tables; a table counts as auto-increment when one of
// its columns is an identity or serial column
func (e *PostgresExtractor) getTables(ctx context.Context) ([]tableEntry, error) {
	query := `
		SELECT
			t.table_name,
			EXISTS (
				SELECT 1 FROM information_schema.columns c
				WHERE c.table_schema = t.table_schema
					AND c.table_name = t.table_name
					AND (c.is_identity = 'YES' OR COALESCE(c.column_default, '') LIKE 'nextval(%')
			) AS auto_increment
		FROM information_schema.tables t
		WHERE t.table_schema = $1 AND t.table_type = 'BASE TABLE'
		ORDER BY t.table_name
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []tableEntry
	for rows.Next() {
		var entry tableEntry
		if err := rows.Scan(&entry.name, &entry.autoIncrement); err != nil {
			return nil, err
		}
		tables = append(tables, entry)
	}

	return tables, rows.Err()
}

// extractTable extracts all rows for a single table
func (e *PostgresExtractor) extractTable(ctx context.Context, entry tableEntry) (schema.RawTable, error) {
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

// normalizePostgresType maps PostgreSQL types onto the MySQL type strings
// understood by the type mapper; anything else keeps its PostgreSQL name
func normalizePostgresType(dataType, udtName string, charMaxLength *int) string {
	switch dataType {
	case "uuid":
		return "binary(16)"
	case "timestamp with time zone", "timestamp without time zone":
		return "datetime"
	case "boolean":
		return "tinyint(1)"
	case "smallint":
		return "smallint"
	case "integer":
		return "int"
	case "bigint":
		return "bigint"
	case "character varying":
		if charMaxLength != nil {
			return fmt.Sprintf("varchar(%d)", *charMaxLength)
		}
		return varcharType
	case "character":
		if charMaxLength != nil {
			return fmt.Sprintf("char(%d)", *charMaxLength)
		}
		return "char"
	case "ARRAY":
		// udt_name has underscore prefix for arrays (e.g., "_text" for text[])
		if len(udtName) > 0 && udtName[0] == '_' {
			return udtName[1:] + "[]"
		}
		return "array"
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

// extractColumns extracts column rows ordered by ordinal position
func (e *PostgresExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.RawColumn, error) {
	query := `
		SELECT
			column_name,
			data_type,
			udt_name,
			character_maximum_length,
			is_nullable,
			(is_identity = 'YES' OR COALESCE(column_default, '') LIKE 'nextval(%') AS auto_increment,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.RawColumn
	for rows.Next() {
		var col schema.RawColumn
		var dataType, udtName, nullable string
		var charMaxLength *int

		if err := rows.Scan(&col.Name, &dataType, &udtName, &charMaxLength, &nullable, &col.AutoIncrement, &col.Ordinal); err != nil {
			return nil, err
		}

		col.DataType = normalizePostgresType(dataType, udtName, charMaxLength)
		col.Nullable = nullable == "YES"

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// extractConstraints extracts the constraint definitions of a table
func (e *PostgresExtractor) extractConstraints(ctx context.Context, tableName string) ([]schema.ConstraintDef, error) {
	query := `
		SELECT constraint_name, constraint_type
		FROM information_schema.table_constraints
		WHERE table_schema = $1 AND table_name = $2
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
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
func (e *PostgresExtractor) extractKeyUsages(ctx context.Context, tableName string) ([]schema.KeyUsage, error) {
	query := `
		SELECT column_name, constraint_name, ordinal_position
		FROM information_schema.key_column_usage
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY constraint_name, ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
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
