package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/tablegen/internal/schema"
)

const sqliteFixture = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name VARCHAR(255),
	active BOOLEAN NOT NULL
);
CREATE TABLE posts (
	id INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	title TEXT
);
CREATE TABLE tags (
	post_id INTEGER NOT NULL,
	tag TEXT NOT NULL,
	PRIMARY KEY (post_id, tag)
);
`

func newSQLiteFixture(t *testing.T) *SQLiteClient {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")

	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = conn.Exec(sqliteFixture)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	client, err := NewSQLiteClient(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestSQLiteExtractSchema(t *testing.T) {
	extractor := NewSQLiteExtractor(newSQLiteFixture(t))

	raws, err := extractor.ExtractSchema(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, raws, 3)
	assert.Equal(t, "posts", raws[0].Name)
	assert.Equal(t, "tags", raws[1].Name)
	assert.Equal(t, "users", raws[2].Name)

	users, err := schema.BuildTable(raws[2])
	require.NoError(t, err)
	assert.True(t, users.AutoIncrement)
	assert.Equal(t, "INSERT INTO `users` (`email`, `name`, `active`)", users.InsertSQL)
	assert.Equal(t, "SELECT `id`, `email`, `name`, `active` as \"active:bool\" FROM `users`", users.SelectSQL)
	require.Len(t, users.UniqueColumns, 1)
	assert.Equal(t, "email", users.UniqueColumns[0].Name)

	name, ok := users.Column("name")
	require.True(t, ok)
	assert.Equal(t, "varchar(255)", name.DataType)
	assert.True(t, name.IsNullable)

	posts, err := schema.BuildTable(raws[0])
	require.NoError(t, err)
	require.Len(t, posts.ForeignKeys, 1)
	assert.Equal(t, "user_id", posts.ForeignKeys[0].Name)
	assert.Equal(t, "fk_posts_0", posts.ForeignKeys[0].ForeignKey)

	tags, err := schema.BuildTable(raws[1])
	require.NoError(t, err)
	assert.False(t, tags.AutoIncrement)
	assert.Equal(t, "`post_id` = ? AND `tag` = ?", tags.WherePK)
	assert.Empty(t, tags.OrdinaryColumns)
	assert.Empty(t, tags.UpdateSQL)
}

func TestSQLiteExtractSchemaSelectedTables(t *testing.T) {
	extractor := NewSQLiteExtractor(newSQLiteFixture(t))

	raws, err := extractor.ExtractSchema(context.Background(), []string{"users"})
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "users", raws[0].Name)

	_, err = extractor.ExtractSchema(context.Background(), []string{"nope"})
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestNormalizeSQLiteType(t *testing.T) {
	assert.Equal(t, "tinyint(1)", normalizeSQLiteType("BOOLEAN"))
	assert.Equal(t, "datetime", normalizeSQLiteType("TIMESTAMP"))
	assert.Equal(t, "binary(16)", normalizeSQLiteType("uuid"))
	assert.Equal(t, "varchar(32)", normalizeSQLiteType(" VARCHAR(32) "))
	assert.Equal(t, "integer", normalizeSQLiteType("INTEGER"))
}
