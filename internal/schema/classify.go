package schema

import (
	"fmt"
)

// Classify resolves every key usage against the constraint definitions of the
// same table. The join is by constraint name, so a composite key yields one Key
// per column, all sharing the constraint's name and type.
func Classify(usages []KeyUsage, constraints []ConstraintDef) ([]Key, error) {
	types := make(map[string]string, len(constraints))
	for _, c := range constraints {
		types[c.Name] = c.Type
	}

	keys := make([]Key, 0, len(usages))
	for _, u := range usages {
		constraintType, ok := types[u.ConstraintName]
		if !ok {
			return nil, fmt.Errorf("%w: key usage on column %s references unknown constraint %s",
				ErrSchemaInconsistency, u.ColumnName, u.ConstraintName)
		}
		keys = append(keys, Key{
			ColumnName:     u.ColumnName,
			ConstraintName: u.ConstraintName,
			ConstraintType: constraintType,
		})
	}

	return keys, nil
}

// ApplyKeys returns a copy of columns annotated with the given keys.
// Keys of unrecognized constraint types (CHECK and the like) and keys naming a
// column that is not in the list are skipped. When a column is covered by two
// constraints of the same kind the first one wins.
func ApplyKeys(columns []Column, keys []Key) []Column {
	result := make([]Column, len(columns))
	copy(result, columns)

	index := make(map[string]int, len(result))
	for i, c := range result {
		index[c.Name] = i
	}

	for _, k := range keys {
		i, ok := index[k.ColumnName]
		if !ok {
			continue
		}

		var field *string
		switch k.ConstraintType {
		case ConstraintPrimaryKey:
			field = &result[i].PrimaryKey
		case ConstraintForeignKey:
			field = &result[i].ForeignKey
		case ConstraintUnique:
			field = &result[i].Unique
		default:
			continue
		}
		if *field == "" {
			*field = k.ConstraintName
		}
	}

	return result
}
