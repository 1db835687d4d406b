// Package typemap maps raw MySQL column types to target language types and
// default initializer expressions for generated code.
package typemap

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownLanguage is returned by Lookup for unsupported target languages
var ErrUnknownLanguage = errors.New("unknown target language")

// SemanticType is the logical type of a column
type SemanticType int

const (
	Unrecognized SemanticType = iota
	Uuid
	DateTime
	Text
	Bool
	Int8
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
)

var semanticTypeNames = map[SemanticType]string{
	Unrecognized: "Unrecognized",
	Uuid:         "Uuid",
	DateTime:     "DateTime",
	Text:         "Text",
	Bool:         "Bool",
	Int8:         "Int8",
	UInt8:        "UInt8",
	Int16:        "Int16",
	UInt16:       "UInt16",
	Int32:        "Int32",
	UInt32:       "UInt32",
	Int64:        "Int64",
	UInt64:       "UInt64",
}

func (t SemanticType) String() string {
	if name, ok := semanticTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SemanticType(%d)", int(t))
}

// IsInteger reports whether t is one of the integer kinds
func (t SemanticType) IsInteger() bool {
	return t >= Int8 && t <= UInt64
}

// Classify returns the semantic type of a raw column type such as
// "varchar(255)" or "int unsigned". The first matching rule wins.
func Classify(raw string) SemanticType {
	switch {
	case raw == "binary(16)":
		return Uuid
	case raw == "datetime":
		return DateTime
	case hasAnyPrefix(raw, "varchar", "char", "text"):
		return Text
	case strings.HasPrefix(raw, "tinyint(1)"):
		return Bool
	case strings.HasPrefix(raw, "tinyint"):
		return signed(raw, Int8, UInt8)
	case strings.HasPrefix(raw, "smallint"):
		return signed(raw, Int16, UInt16)
	case strings.HasPrefix(raw, "mediumint"):
		return signed(raw, Int32, UInt32)
	case strings.HasPrefix(raw, "bigint"):
		return signed(raw, Int64, UInt64)
	case strings.HasPrefix(raw, "int"):
		return signed(raw, Int32, UInt32)
	default:
		return Unrecognized
	}
}

func signed(raw string, s, u SemanticType) SemanticType {
	if strings.HasSuffix(raw, "unsigned") {
		return u
	}
	return s
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Language renders semantic types as tokens of one target language
type Language struct {
	Name     string
	types    map[SemanticType]string
	defaults map[SemanticType]string
	optional string // format with the base type
	present  string // format with the base type and the value
}

// TargetTypeName returns the target type for a raw column type. Unrecognized
// types are passed through unchanged; nullable columns get the optional wrapper.
func (l *Language) TargetTypeName(raw string, nullable bool) string {
	t := l.baseType(raw)
	if nullable {
		return fmt.Sprintf(l.optional, t)
	}
	return t
}

// DefaultValue returns an initializer expression for a raw column type.
// For nullable columns the value is wrapped as a present optional, never as null.
func (l *Language) DefaultValue(raw string, nullable bool) string {
	v, ok := l.defaults[Classify(raw)]
	if !ok {
		v = raw
	}
	if nullable {
		return fmt.Sprintf(l.present, l.baseType(raw), v)
	}
	return v
}

func (l *Language) baseType(raw string) string {
	if t, ok := l.types[Classify(raw)]; ok {
		return t
	}
	return raw
}

func integerDefaults(defaults map[SemanticType]string) map[SemanticType]string {
	for t := Int8; t <= UInt64; t++ {
		defaults[t] = "0"
	}
	return defaults
}

// Rust is the language the generator has always emitted
var Rust = &Language{
	Name: "rust",
	types: map[SemanticType]string{
		Uuid:     "uuid::Uuid",
		DateTime: "chrono::NaiveDateTime",
		Text:     "String",
		Bool:     "bool",
		Int8:     "i8",
		UInt8:    "u8",
		Int16:    "i16",
		UInt16:   "u16",
		Int32:    "i32",
		UInt32:   "u32",
		Int64:    "i64",
		UInt64:   "u64",
	},
	defaults: integerDefaults(map[SemanticType]string{
		Uuid:     "uuid::Uuid::new_v4()",
		DateTime: "chrono::Utc::now().naive_utc()",
		Text:     "String::new()",
		Bool:     "false",
	}),
	optional: "Option<%s>",
	present:  "Some(%[2]s)",
}

// Go renders nullable columns as database/sql generic nulls
var Go = &Language{
	Name: "go",
	types: map[SemanticType]string{
		Uuid:     "uuid.UUID",
		DateTime: "time.Time",
		Text:     "string",
		Bool:     "bool",
		Int8:     "int8",
		UInt8:    "uint8",
		Int16:    "int16",
		UInt16:   "uint16",
		Int32:    "int32",
		UInt32:   "uint32",
		Int64:    "int64",
		UInt64:   "uint64",
	},
	defaults: integerDefaults(map[SemanticType]string{
		Uuid:     "uuid.New()",
		DateTime: "time.Now().UTC()",
		Text:     `""`,
		Bool:     "false",
	}),
	optional: "sql.Null[%s]",
	present:  "sql.Null[%s]{V: %s, Valid: true}",
}

var languages = map[string]*Language{
	Rust.Name: Rust,
	Go.Name:   Go,
}

// Lookup returns the language registered under name
func Lookup(name string) (*Language, error) {
	if l, ok := languages[strings.ToLower(name)]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownLanguage, name, strings.Join(Names(), ", "))
}

// Names lists the supported language names
func Names() []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
