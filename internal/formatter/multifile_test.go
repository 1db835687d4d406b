package formatter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/tablegen/internal/schema"
	"github.com/tordrt/tablegen/internal/typemap"
)

func usersTable(t *testing.T) *schema.Table {
	t.Helper()

	table, err := schema.NewTable("users", false, []schema.Column{
		{Name: "id", DataType: "binary(16)", PrimaryKey: "PRIMARY"},
		{Name: "email", DataType: "varchar(255)", Unique: "uq_email"},
	})
	require.NoError(t, err)
	return table
}

func TestOutputPath(t *testing.T) {
	spec := TemplateSpec{Name: "entity.rs.tera", Suffix: ".rs"}

	f := NewMultiFileFormatter("out", true, 1)
	assert.Equal(t, filepath.Join("out", "entity.rs", "users.rs"), f.OutputPath(spec, "users"))

	f = NewMultiFileFormatter("out", false, 1)
	assert.Equal(t, filepath.Join("out", "users.rs"), f.OutputPath(spec, "users"))
}

func TestMultiFileRender(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"entity.tmpl": "entity {{ .Table.Name }}",
		"dao.tmpl":    "{{ .Table.DeleteSQL }}",
	})
	engine, err := LoadTemplates(dir, typemap.Rust)
	require.NoError(t, err)

	out := t.TempDir()
	f := NewMultiFileFormatter(out, true, 2)
	tables := []*schema.Table{usersTable(t), postsTable(t)}
	specs := []TemplateSpec{{Name: "entity.tmpl", Suffix: ".rs"}, {Name: "dao.tmpl", Suffix: "_dao.rs"}}

	require.NoError(t, f.Render(context.Background(), engine, tables, specs))
	assert.Equal(t, int64(4), f.Written())

	data, err := os.ReadFile(filepath.Join(out, "entity", "users.rs"))
	require.NoError(t, err)
	assert.Equal(t, "entity users", string(data))

	data, err = os.ReadFile(filepath.Join(out, "dao", "posts_dao.rs"))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `posts` WHERE `id` = ?", string(data))
}

func TestMultiFileRenderFlat(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"entity.tmpl": "{{ .Table.Name }}"})
	engine, err := LoadTemplates(dir, typemap.Rust)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "nested", "gen")
	f := NewMultiFileFormatter(out, false, 0)

	err = f.Render(context.Background(), engine, []*schema.Table{usersTable(t)}, []TemplateSpec{{Name: "entity.tmpl", Suffix: ".txt"}})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "users.txt"))
	require.NoError(t, err)
	assert.Equal(t, "users", string(data))
}

func TestMultiFileRenderUnknownTemplate(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"entity.tmpl": "{{ .Table.Name }}"})
	engine, err := LoadTemplates(dir, typemap.Rust)
	require.NoError(t, err)

	out := t.TempDir()
	f := NewMultiFileFormatter(out, true, 1)
	err = f.Render(context.Background(), engine, []*schema.Table{usersTable(t)}, []TemplateSpec{{Name: "missing.tmpl"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.tmpl")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMultiFileRenderCancelled(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"entity.tmpl": "{{ .Table.Name }}"})
	engine, err := LoadTemplates(dir, typemap.Rust)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewMultiFileFormatter(t.TempDir(), true, 1)
	err = f.Render(ctx, engine, []*schema.Table{usersTable(t)}, []TemplateSpec{{Name: "entity.tmpl"}})
	assert.ErrorIs(t, err, context.Canceled)
}
