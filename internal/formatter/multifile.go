package formatter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tordrt/tablegen/internal/schema"
)

// MultiFileFormatter renders every template for every table into its own file
type MultiFileFormatter struct {
	OutputDir    string
	RenderFolder bool
	Workers      int

	written atomic.Int64
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir string, renderFolder bool, workers int) *MultiFileFormatter {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		RenderFolder: renderFolder,
		Workers:      workers,
	}
}

// renderTask is one (table, template) pair
type renderTask struct {
	table *schema.Table
	spec  TemplateSpec
}

// OutputPath returns the file a template renders a table into:
// <output>/<template folder>/<table><suffix> when rendering into folders,
// <output>/<table><suffix> otherwise
func (f *MultiFileFormatter) OutputPath(spec TemplateSpec, table string) string {
	if f.RenderFolder {
		return filepath.Join(f.OutputDir, spec.Folder(), table+spec.Suffix)
	}
	return filepath.Join(f.OutputDir, table+spec.Suffix)
}

// Render renders all templates for all tables in parallel. The first error
// cancels the remaining work.
func (f *MultiFileFormatter) Render(ctx context.Context, engine *Engine, tables []*schema.Table, specs []TemplateSpec) error {
	for _, spec := range specs {
		if !engine.Lookup(spec.Name) {
			return fmt.Errorf("template %q not found", spec.Name)
		}
	}

	var tasks []renderTask
	for _, table := range tables {
		for _, spec := range specs {
			tasks = append(tasks, renderTask{table: table, spec: spec})
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.Workers)

	for _, task := range tasks {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return f.renderFile(engine, task)
			}
		})
	}

	return eg.Wait()
}

// Written returns the number of files written so far
func (f *MultiFileFormatter) Written() int64 {
	return f.written.Load()
}

func (f *MultiFileFormatter) renderFile(engine *Engine, task renderTask) error {
	rendered, err := engine.Render(task.spec.Name, task.table)
	if err != nil {
		return err
	}

	path := f.OutputPath(task.spec, task.table.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	f.written.Add(1)
	slog.Debug("rendered", "table", task.table.Name, "template", task.spec.Name, "path", path)
	return nil
}
