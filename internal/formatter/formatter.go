// Package formatter renders table models: user templates written to one file
// per table, and the inspect outputs (text, markdown, yaml).
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/tablegen/internal/schema"
)

// Inspect output formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
)

// Formatter writes a set of table models
type Formatter interface {
	Format(tables []*schema.Table) error
}

// New returns the formatter for an inspect output format
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatText:
		return NewTextFormatter(w), nil
	case FormatMarkdown, "md":
		return NewMarkdownFormatter(w), nil
	case FormatYAML, "yml":
		return NewYAMLFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q (must be %s, %s or %s)", format, FormatText, FormatMarkdown, FormatYAML)
	}
}

func columnNames(columns []schema.Column) []string {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.Name)
	}
	return names
}

func columnFlags(col schema.Column) []string {
	var flags []string
	if col.IsPrimaryKey() {
		flags = append(flags, "PK")
	}
	if col.AutoIncrement {
		flags = append(flags, "AUTO_INCREMENT")
	}
	if col.IsForeignKey() {
		flags = append(flags, "FK "+col.ForeignKey)
	}
	if col.IsUnique() {
		flags = append(flags, "UNIQUE")
	}
	if !col.IsNullable {
		flags = append(flags, "NOT NULL")
	}
	return flags
}

type statement struct {
	label string
	sql   string
}

// statements lists the derived statements of a table, skipping empty ones
func statements(table *schema.Table) []statement {
	all := []statement{
		{"insert", table.InsertStatement()},
		{"select", table.SelectSQL},
		{"update", table.UpdateSQL},
		{"delete", table.DeleteSQL},
	}

	out := all[:0]
	for _, s := range all {
		if strings.TrimSpace(s.sql) != "" {
			out = append(out, s)
		}
	}
	return out
}
