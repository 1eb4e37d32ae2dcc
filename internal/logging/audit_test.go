package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditTrailRecordsEvents(t *testing.T) {
	dir := t.TempDir()
	trail, err := OpenAuditTrail(dir)
	require.NoError(t, err)

	trail.Record("search", map[string]any{"keywords": "sisbajud", "total_processes": 5})
	trail.Record("export", map[string]any{"keywords": "penhora"})
	require.NoError(t, trail.Close())

	f, err := os.Open(filepath.Join(dir, "audit.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var events []AuditEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev AuditEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, events, 2)
	assert.Equal(t, "search", events[0].Action)
	assert.Equal(t, "sisbajud", events[0].Details["keywords"])
	assert.False(t, events[0].Time.IsZero())
	assert.Equal(t, "export", events[1].Action)
}

func TestAuditTrailAppendsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	trail, err := OpenAuditTrail(dir)
	require.NoError(t, err)
	trail.Record("search", nil)
	require.NoError(t, trail.Close())

	trail, err = OpenAuditTrail(dir)
	require.NoError(t, err)
	trail.Record("search", nil)
	require.NoError(t, trail.Close())

	data, err := os.ReadFile(filepath.Join(dir, "audit.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(data))
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}

func TestNilAuditTrailIsInert(t *testing.T) {
	var trail *AuditTrail
	trail.Record("search", nil) // must not panic
	assert.NoError(t, trail.Close())
}
