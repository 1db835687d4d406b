package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaInconsistency is returned when a key usage references a constraint
	// that has no definition row.
	ErrSchemaInconsistency = errors.New("schema inconsistency")
	// ErrMalformedIdentifier is returned for empty or unquotable table/column names.
	ErrMalformedIdentifier = errors.New("malformed identifier")
	// ErrSynthesisFailure is returned when no well-formed statement can be produced.
	ErrSynthesisFailure = errors.New("sql synthesis failed")
)

// TableError ties a classification or synthesis failure to its table
type TableError struct {
	Table string
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("table %s: %v", e.Table, e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}
