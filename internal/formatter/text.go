package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/tablegen/internal/schema"
)

// TextFormatter formats table models as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the tables in compact text format
func (f *TextFormatter) Format(tables []*schema.Table) error {
	for i, table := range tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.formatTable(table)
	}
	return nil
}

func (f *TextFormatter) formatTable(table *schema.Table) {
	// Table header with primary key
	pkStr := ""
	if len(table.PrimaryKeys) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(columnNames(table.PrimaryKeys), ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col))
	}

	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintln(f.writer, "  STATEMENTS:")
	for _, stmt := range statements(table) {
		_, _ = fmt.Fprintf(f.writer, "    %-6s %s\n", stmt.label, stmt.sql)
	}
}

func (f *TextFormatter) formatColumn(col schema.Column) string {
	parts := []string{col.Name + ":", col.DataType}
	return strings.Join(append(parts, columnFlags(col)...), " ")
}
