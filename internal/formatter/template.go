package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/go-openapi/inflect"

	"github.com/tordrt/tablegen/internal/schema"
	"github.com/tordrt/tablegen/internal/typemap"
)

// ErrNoTemplates is returned when the template directory holds no files
var ErrNoTemplates = errors.New("no templates found")

// TemplateSpec names a template and the suffix appended to the table name to
// form the output file name
type TemplateSpec struct {
	Name   string
	Suffix string
}

// ParseTemplateSpec parses "name[:suffix]"
func ParseTemplateSpec(s string) (TemplateSpec, error) {
	name, suffix, _ := strings.Cut(s, ":")
	if name == "" {
		return TemplateSpec{}, fmt.Errorf("template %q has no name", s)
	}
	return TemplateSpec{Name: name, Suffix: suffix}, nil
}

// Folder is the output sub folder used when rendering into folders: the
// template name without its final extension
func (s TemplateSpec) Folder() string {
	return strings.TrimSuffix(s.Name, filepath.Ext(s.Name))
}

// RenderData is the value templates are executed against
type RenderData struct {
	Table    *schema.Table
	Language string
}

// Engine holds the parsed template set
type Engine struct {
	tmpl     *template.Template
	language *typemap.Language
	warned   sync.Map
}

// LoadTemplates parses every file below dir. Templates are named by their
// slash separated path relative to dir.
func LoadTemplates(dir string, language *typemap.Language) (*Engine, error) {
	e := &Engine{language: language}
	root := template.New("").Funcs(e.funcMap())

	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		name := filepath.ToSlash(rel)
		if _, err := root.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		count++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load templates from %s: %w", dir, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTemplates, dir)
	}

	slog.Debug("templates loaded", "directory", dir, "count", count)
	e.tmpl = root
	return e, nil
}

// Lookup reports whether a template with the given name was loaded
func (e *Engine) Lookup(name string) bool {
	return e.tmpl.Lookup(name) != nil
}

// Render executes the named template for one table
func (e *Engine) Render(name string, table *schema.Table) ([]byte, error) {
	var buf bytes.Buffer
	data := RenderData{Table: table, Language: e.language.Name}
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute template %q for %s: %w", name, table.Name, err)
	}
	return buf.Bytes(), nil
}

func (e *Engine) funcMap() template.FuncMap {
	return template.FuncMap{
		"repeat":       repeat,
		"join":         join,
		"upperCamel":   inflect.Camelize,
		"lowerCamel":   inflect.CamelizeDownFirst,
		"snake":        inflect.Underscore,
		"plural":       inflect.Pluralize,
		"singular":     inflect.Singularize,
		"targetType":   e.targetType,
		"defaultValue": e.defaultValue,
	}
}

// repeat returns count copies of s
func repeat(s string, count int) []string {
	if count < 0 {
		count = 0
	}
	out := make([]string, count)
	for i := range out {
		out[i] = s
	}
	return out
}

// join takes the list last so it can be piped into
func join(sep string, items []string) string {
	return strings.Join(items, sep)
}

func (e *Engine) targetType(raw string, nullable bool) string {
	e.warnUnrecognized(raw)
	return e.language.TargetTypeName(raw, nullable)
}

func (e *Engine) defaultValue(raw string, nullable bool) string {
	e.warnUnrecognized(raw)
	return e.language.DefaultValue(raw, nullable)
}

func (e *Engine) warnUnrecognized(raw string) {
	if typemap.Classify(raw) != typemap.Unrecognized {
		return
	}
	if _, seen := e.warned.LoadOrStore(raw, struct{}{}); !seen {
		slog.Warn("unrecognized column type passed through", "type", raw, "language", e.language.Name)
	}
}
