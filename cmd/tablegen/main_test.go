package main

import (
	"bytes"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/tablegen/internal/schema"
)

func newFixtureDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "app.db")
	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = conn.Exec(`
		CREATE TABLE _sqlx_migrations (version INTEGER PRIMARY KEY);
		CREATE TABLE users (id INTEGER PRIMARY KEY, email VARCHAR(255) NOT NULL UNIQUE);
	`)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	return "sqlite://" + path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestParseTableList(t *testing.T) {
	tests := []struct {
		name       string
		tablesStr  string
		wantTables []string
	}{
		{
			name:       "single table",
			tablesStr:  "users",
			wantTables: []string{"users"},
		},
		{
			name:       "multiple tables",
			tablesStr:  "users,posts,comments",
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "tables with spaces",
			tablesStr:  "users, posts, comments",
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "empty entries",
			tablesStr:  "users,,posts,",
			wantTables: []string{"users", "posts"},
		},
		{
			name:       "empty string",
			tablesStr:  "",
			wantTables: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTables := parseTableList(tt.tablesStr)

			if len(gotTables) != len(tt.wantTables) {
				t.Errorf("parseTableList() returned %d tables, want %d", len(gotTables), len(tt.wantTables))
				return
			}

			for i, table := range gotTables {
				if table != tt.wantTables[i] {
					t.Errorf("parseTableList() table[%d] = %s, want %s", i, table, tt.wantTables[i])
				}
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		value   string
		verbose bool
		want    slog.Level
		wantErr bool
	}{
		{value: "", want: slog.LevelError},
		{value: "debug", want: slog.LevelDebug},
		{value: "WARN", want: slog.LevelWarn},
		{value: "info", want: slog.LevelInfo},
		{value: "error", verbose: true, want: slog.LevelDebug},
		{value: "loud", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.value, tt.verbose)
		if tt.wantErr {
			assert.Error(t, err, tt.value)
			continue
		}
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}
}

func TestReportTableErrors(t *testing.T) {
	var buf bytes.Buffer
	reportTableErrors(&buf, errors.Join(
		&schema.TableError{Table: "users", Err: schema.ErrSynthesisFailure},
		&schema.TableError{Table: "posts", Err: schema.ErrSchemaInconsistency},
	))

	assert.Contains(t, buf.String(), "skipped users")
	assert.Contains(t, buf.String(), "skipped posts")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tablegen dev\n", stdout)
}

func TestInspectCommand(t *testing.T) {
	url := newFixtureDatabase(t)

	stdout, _, err := execute(t, "inspect", "--database-url", url, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "TABLE users (PK: id)")
	assert.NotContains(t, stdout, "_sqlx_migrations")
}

func TestFileCommand(t *testing.T) {
	url := newFixtureDatabase(t)

	dir := t.TempDir()
	templates := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(templates, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(templates, "dao.tmpl"), []byte("{{ .Table.SelectSQL }}"), 0o644))

	out := filepath.Join(dir, "out")
	cfgPath := filepath.Join(dir, "tablegen.yaml")
	cfg := "database_url: " + url + "\n" +
		"output: " + out + "\n" +
		"template_directory: " + templates + "\n" +
		"templates: [\"dao.tmpl:.sql\"]\n" +
		"render_folder: false\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, stderr, err := execute(t, "file", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Generated 1 files for 1 tables")

	data, err := os.ReadFile(filepath.Join(out, "users.sql"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT `id`, `email` FROM `users`", string(data))
}

func TestFileCommandInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "tablegen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database_url: sqlite://x.db\n"), 0o644))

	_, _, err := execute(t, "file", cfgPath)
	assert.Error(t, err)
}
