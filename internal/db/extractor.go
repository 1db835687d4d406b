package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/tordrt/tablegen/internal/schema"
)

var (
	// ErrTableNotFound is returned when a requested table is not in the schema
	ErrTableNotFound = errors.New("table not found")
	// ErrUnsupportedDatabase is returned for unknown connection URL schemes
	ErrUnsupportedDatabase = errors.New("unsupported database type")
)

// Extractor reads the raw table, column and constraint rows of one schema
type Extractor interface {
	// ExtractSchema returns the raw rows of the requested tables, or of every
	// base table in the schema when tables is empty.
	ExtractSchema(ctx context.Context, tables []string) ([]schema.RawTable, error)
}

// tableEntry is one row of the table listing
type tableEntry struct {
	name          string
	autoIncrement bool
}

// selectTables keeps the requested tables in catalog order, failing when one
// of them does not exist
func selectTables(all []tableEntry, requested []string) ([]tableEntry, error) {
	if len(requested) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(requested))
	for _, name := range requested {
		wanted[name] = true
	}

	selected := make([]tableEntry, 0, len(requested))
	for _, t := range all {
		if wanted[t.name] {
			selected = append(selected, t)
			delete(wanted, t.name)
		}
	}

	for _, name := range requested {
		if wanted[name] {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
	}

	return selected, nil
}

// extractTables runs extractTable for every selected table, in order
func extractTables(entries []tableEntry, extractTable func(tableEntry) (schema.RawTable, error)) ([]schema.RawTable, error) {
	tables := make([]schema.RawTable, 0, len(entries))
	for _, entry := range entries {
		table, err := extractTable(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", entry.name, err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}
