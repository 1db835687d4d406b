package formatter

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/tordrt/tablegen/internal/schema"
)

// YAMLFormatter writes table models as a YAML document, using the same
// snake_case keys templates see in serialized form
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the tables as a YAML document
func (f *YAMLFormatter) Format(tables []*schema.Table) error {
	doc := struct {
		Tables []*schema.Table `yaml:"tables"`
	}{Tables: tables}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal tables: %w", err)
	}

	_, err = f.writer.Write(data)
	return err
}
