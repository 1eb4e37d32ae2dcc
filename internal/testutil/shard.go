// Package testutil builds throwaway shard database files for tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"poursuite/internal/codec"
)

// Paragraph is one row destined for a test shard.
type Paragraph struct {
	ProcessNumber string
	Content       string
	FilePath      string
	DocumentDate  string
}

const shardSchema = `
CREATE TABLE paragraphs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	process_number TEXT NOT NULL,
	content BLOB NOT NULL,
	file_path TEXT NOT NULL,
	document_date TEXT NOT NULL
);
CREATE VIRTUAL TABLE paragraphs_fts USING fts5(content);
`

// CreateShard writes a shard file named <id>.db under dir with the given
// rows, content zlib-compressed and full-text indexed the way production
// shards are. Returns the file path.
func CreateShard(t *testing.T, dir, id string, rows []Paragraph) string {
	t.Helper()

	path := filepath.Join(dir, id+".db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(shardSchema)
	require.NoError(t, err)

	for _, row := range rows {
		res, err := db.Exec(
			`INSERT INTO paragraphs (process_number, content, file_path, document_date)
			 VALUES (?, ?, ?, ?)`,
			row.ProcessNumber, codec.Compress(row.Content), row.FilePath, row.DocumentDate)
		require.NoError(t, err)

		rowid, err := res.LastInsertId()
		require.NoError(t, err)

		_, err = db.Exec(`INSERT INTO paragraphs_fts (rowid, content) VALUES (?, ?)`,
			rowid, row.Content)
		require.NoError(t, err)
	}
	return path
}
