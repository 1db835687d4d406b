package schema

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Cast annotations appended to select aliases so a typed row decoder can
// recover types the raw column type does not express
const (
	uuidTypeAnnotation = "Uuid"
	boolTypeAnnotation = "bool"
)

const placeholder = "?"

// BuildTable classifies the raw rows of one table and builds its model.
// Any failure is returned as a *TableError; no partial table is returned.
func BuildTable(raw RawTable) (*Table, error) {
	rawColumns := make([]RawColumn, len(raw.Columns))
	copy(rawColumns, raw.Columns)
	sort.SliceStable(rawColumns, func(i, j int) bool {
		return rawColumns[i].Ordinal < rawColumns[j].Ordinal
	})

	columns := make([]Column, 0, len(rawColumns))
	for _, rc := range rawColumns {
		columns = append(columns, Column{
			Name:          rc.Name,
			DataType:      rc.DataType,
			IsNullable:    rc.Nullable,
			AutoIncrement: rc.AutoIncrement,
		})
	}

	keys, err := Classify(raw.Usages, raw.Constraints)
	if err != nil {
		return nil, &TableError{Table: raw.Name, Err: err}
	}

	table, err := NewTable(raw.Name, raw.AutoIncrement, ApplyKeys(columns, keys))
	if err != nil {
		return nil, &TableError{Table: raw.Name, Err: err}
	}

	return table, nil
}

// NewTable builds a table model from fully classified columns given in
// ordinal order. The columns slice is copied.
func NewTable(name string, autoIncrement bool, columns []Column) (*Table, error) {
	if err := validateIdentifier(name); err != nil {
		return nil, fmt.Errorf("table name: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: table %q has no columns", ErrSynthesisFailure, name)
	}

	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if err := validateIdentifier(c.Name); err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedIdentifier, c.Name)
		}
		seen[c.Name] = true
	}

	t := &Table{
		Name:          name,
		AutoIncrement: autoIncrement,
		Columns:       make([]Column, len(columns)),
	}
	copy(t.Columns, columns)

	for _, c := range t.Columns {
		if c.IsPrimaryKey() {
			t.PrimaryKeys = append(t.PrimaryKeys, c)
		} else {
			t.OrdinaryColumns = append(t.OrdinaryColumns, c)
		}
		if c.IsForeignKey() {
			t.ForeignKeys = append(t.ForeignKeys, c)
		}
		if c.IsUnique() {
			t.UniqueColumns = append(t.UniqueColumns, c)
		}
	}

	t.InsertSQL, t.InsertSQLValues = buildInsert(name, t.Columns)
	t.SelectSQL = buildSelect(name, t.Columns)
	t.WherePK = buildWhere(t.PrimaryKeys)
	// where_fk has always been derived from the primary key columns and
	// existing templates depend on that.
	t.WhereFK = buildWhere(t.PrimaryKeys)
	t.DeleteSQL = buildDelete(name, t.WherePK)
	t.UpdateSQL = buildUpdate(name, t.OrdinaryColumns, t.WherePK)

	return t, nil
}

// InsertStatement returns the complete single-row INSERT statement
func (t *Table) InsertStatement() string {
	return t.InsertSQL + " VALUES " + t.InsertSQLValues
}

// InsertBatchSQL returns an INSERT statement with n value tuples
func (t *Table) InsertBatchSQL(n int) string {
	if n < 1 {
		n = 1
	}
	tuples := make([]string, n)
	for i := range tuples {
		tuples[i] = t.InsertSQLValues
	}
	return t.InsertSQL + " VALUES " + strings.Join(tuples, ", ")
}

// InsertColumns returns the columns that take part in INSERT statements
func (t *Table) InsertColumns() []Column {
	var result []Column
	for _, c := range t.Columns {
		if isInsertable(c) {
			result = append(result, c)
		}
	}
	return result
}

// Column looks up a column by name
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Databases reject explicit values for generated keys.
func isInsertable(c Column) bool {
	return !(c.IsPrimaryKey() && c.AutoIncrement)
}

func buildInsert(table string, columns []Column) (string, string) {
	var fields, values []string
	for _, c := range columns {
		if !isInsertable(c) {
			continue
		}
		fields = append(fields, quoteIdentifier(c.Name))
		values = append(values, placeholder)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s)", quoteIdentifier(table), strings.Join(fields, ", "))
	return insert, "(" + strings.Join(values, ", ") + ")"
}

func buildSelect(table string, columns []Column) string {
	fields := make([]string, 0, len(columns))
	for _, c := range columns {
		fields = append(fields, selectField(c))
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(fields, ", "), quoteIdentifier(table))
}

func selectField(c Column) string {
	switch c.DataType {
	case "binary(16)":
		return fmt.Sprintf(`%s as "%s:%s"`, quoteIdentifier(c.Name), c.Name, uuidTypeAnnotation)
	case "tinyint(1)":
		return fmt.Sprintf(`%s as "%s:%s"`, quoteIdentifier(c.Name), c.Name, boolTypeAnnotation)
	default:
		return quoteIdentifier(c.Name)
	}
}

func buildWhere(columns []Column) string {
	conditions := make([]string, 0, len(columns))
	for _, c := range columns {
		conditions = append(conditions, quoteIdentifier(c.Name)+" = "+placeholder)
	}
	return strings.Join(conditions, " AND ")
}

// A table without primary key yields an unfiltered DELETE. It is kept as is
// so templates can detect it through an empty WherePK.
func buildDelete(table, where string) string {
	stmt := "DELETE FROM " + quoteIdentifier(table)
	if where != "" {
		stmt += " WHERE " + where
	}
	return stmt
}

func buildUpdate(table string, ordinary []Column, where string) string {
	if where == "" || len(ordinary) == 0 {
		return ""
	}
	assignments := make([]string, 0, len(ordinary))
	for _, c := range ordinary {
		assignments = append(assignments, quoteIdentifier(c.Name)+" = "+placeholder)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", quoteIdentifier(table), strings.Join(assignments, ", "), where)
}

func quoteIdentifier(name string) string {
	return "`" + name + "`"
}

// validateIdentifier rejects names that cannot be safely backtick quoted or
// embedded in a select alias.
func validateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrMalformedIdentifier)
	}
	for _, r := range name {
		if r == '`' || r == '"' || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains %q", ErrMalformedIdentifier, name, r)
		}
	}
	return nil
}
