package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/tablegen/internal/schema"
)

// MarkdownFormatter formats table models as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the tables in markdown format
func (f *MarkdownFormatter) Format(tables []*schema.Table) error {
	_, _ = fmt.Fprintln(f.writer, "# Tables")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range tables {
		f.formatTable(table)
	}
	return nil
}

func (f *MarkdownFormatter) formatTable(table *schema.Table) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range table.Columns {
		flags := columnFlags(col)
		if len(flags) > 0 {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, col.DataType, strings.Join(flags, ", "))
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, col.DataType)
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(table.ForeignKeys) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Foreign keys")
		_, _ = fmt.Fprintln(f.writer)
		for _, col := range table.ForeignKeys {
			_, _ = fmt.Fprintf(f.writer, "- %s (%s)\n", col.Name, col.ForeignKey)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	_, _ = fmt.Fprintln(f.writer, "### Statements")
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintln(f.writer, "```sql")
	for _, stmt := range statements(table) {
		_, _ = fmt.Fprintf(f.writer, "-- %s\n%s\n", stmt.label, stmt.sql)
	}
	_, _ = fmt.Fprintln(f.writer, "```")
	_, _ = fmt.Fprintln(f.writer)
}
