package schema

// Constraint types recognized by the key classifier
const (
	ConstraintPrimaryKey = "PRIMARY KEY"
	ConstraintForeignKey = "FOREIGN KEY"
	ConstraintUnique     = "UNIQUE"
)

// RawTable holds the rows a schema reader fetched for one table
type RawTable struct {
	Name          string
	AutoIncrement bool
	Columns       []RawColumn
	Usages        []KeyUsage
	Constraints   []ConstraintDef
}

// RawColumn is one information_schema.columns row
type RawColumn struct {
	Name          string
	DataType      string
	Nullable      bool
	AutoIncrement bool
	Ordinal       int
}

// KeyUsage is one information_schema.key_column_usage row
type KeyUsage struct {
	ColumnName     string
	ConstraintName string
	Ordinal        int
}

// ConstraintDef is one information_schema.table_constraints row
type ConstraintDef struct {
	Name string
	Type string
}

// Key is a key usage resolved against its constraint definition
type Key struct {
	ColumnName     string
	ConstraintName string
	ConstraintType string
}

// Column represents a table column.
// PrimaryKey, ForeignKey and Unique hold the originating constraint name,
// or are empty when the column is not part of such a constraint.
type Column struct {
	Name          string `json:"name" yaml:"name"`
	DataType      string `json:"data_type" yaml:"data_type"`
	IsNullable    bool   `json:"is_nullable" yaml:"is_nullable"`
	AutoIncrement bool   `json:"is_auto_increment" yaml:"is_auto_increment"`
	PrimaryKey    string `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	ForeignKey    string `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty"`
	Unique        string `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// IsPrimaryKey reports whether the column belongs to the primary key
func (c Column) IsPrimaryKey() bool { return c.PrimaryKey != "" }

// IsForeignKey reports whether the column belongs to a foreign key
func (c Column) IsForeignKey() bool { return c.ForeignKey != "" }

// IsUnique reports whether the column belongs to a unique constraint
func (c Column) IsUnique() bool { return c.Unique != "" }

// Table is the template-ready model of one database table.
// It is built by NewTable and never mutated afterwards.
type Table struct {
	Name            string   `json:"name" yaml:"name"`
	AutoIncrement   bool     `json:"is_auto_increment" yaml:"is_auto_increment"`
	Columns         []Column `json:"columns" yaml:"columns"`
	PrimaryKeys     []Column `json:"primary_keys" yaml:"primary_keys"`
	ForeignKeys     []Column `json:"foreign_keys" yaml:"foreign_keys"`
	UniqueColumns   []Column `json:"unique_columns" yaml:"unique_columns"`
	OrdinaryColumns []Column `json:"ordinary_columns" yaml:"ordinary_columns"`

	InsertSQL       string `json:"insert_sql" yaml:"insert_sql"`
	InsertSQLValues string `json:"insert_sql_values" yaml:"insert_sql_values"`
	SelectSQL       string `json:"select_sql" yaml:"select_sql"`
	UpdateSQL       string `json:"update_sql" yaml:"update_sql"`
	DeleteSQL       string `json:"delete_sql" yaml:"delete_sql"`
	WherePK         string `json:"where_pk" yaml:"where_pk"`
	WhereFK         string `json:"where_fk" yaml:"where_fk"`
}
