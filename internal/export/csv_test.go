package export_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poursuite/internal/export"
	"poursuite/internal/search"
)

func exportFixture() search.Result {
	return search.Result{
		{ProcessNumber: "0001111-11.2021.8.26.0100", Mentions: []search.Mention{
			{Content: "Desbloqueio SISBAJUD parcial", DocumentDate: "2023-07-07", ShardID: "2023", FilePath: "a3.pdf"},
			{Content: "Bloqueio efetivado via SISBAJUD", DocumentDate: "2021-03-10", ShardID: "2021", FilePath: "a1.pdf"},
		}},
		{ProcessNumber: "0002222-22.2021.8.26.0100", Mentions: []search.Mention{
			{Content: "Consulta SISBAJUD sem saldo", DocumentDate: "2021-05-20", ShardID: "2021", FilePath: "b1.pdf"},
		}},
	}
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // the summary block has ragged rows
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteDataRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, exportFixture(), false, nil))

	records := parseCSV(t, buf.Bytes())
	require.Len(t, records, 4)
	assert.Equal(t, []string{
		"Process Number", "Mention Count", "Document Date",
		"Database", "File Path", "Content",
	}, records[0])

	assert.Equal(t, []string{
		"0001111-11.2021.8.26.0100", "1/2", "2023-07-07",
		"2023", "a3.pdf", "Desbloqueio SISBAJUD parcial",
	}, records[1])
	assert.Equal(t, "2/2", records[2][1])
	assert.Equal(t, "1/1", records[3][1])
}

func TestWriteSummaryBlock(t *testing.T) {
	var buf bytes.Buffer
	params := []export.Field{
		{Name: "Keywords", Value: "sisbajud"},
		{Name: "Process Number", Value: ""}, // empty params are omitted
	}
	require.NoError(t, export.Write(&buf, exportFixture(), true, params))

	records := parseCSV(t, buf.Bytes())
	assert.Equal(t, []string{"=== Search Results Summary ==="}, records[0])

	flat := make(map[string]string)
	for _, rec := range records {
		if len(rec) == 2 {
			flat[rec[0]] = rec[1]
		}
	}
	assert.Equal(t, "sisbajud", flat["Keywords"])
	assert.NotContains(t, flat, "Process Number")
	assert.Equal(t, "2", flat["Total Processes"])
	assert.Equal(t, "3", flat["Total Mentions"])
	assert.Equal(t, "2021-03-10 to 2023-07-07", flat["Date Range"])
	assert.Equal(t, "2", flat["Database 2021"])
	assert.Equal(t, "1", flat["Database 2023"])

	// The data header follows the summary block.
	var foundHeader bool
	for _, rec := range records {
		if len(rec) == 6 && rec[0] == "Process Number" {
			foundHeader = true
		}
	}
	assert.True(t, foundHeader)
}

func TestWriteFileCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	path, err := export.WriteFile(dir, "results.csv", exportFixture(), false, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "results.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "0001111-11.2021.8.26.0100")
}
