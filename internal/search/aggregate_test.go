package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateOrdering(t *testing.T) {
	byProcess := map[string][]Mention{
		"proc-b": {
			{ProcessNumber: "proc-b", DocumentDate: "2022-05-01", ShardID: "2022"},
		},
		"proc-a": {
			{ProcessNumber: "proc-a", DocumentDate: "2021-01-01", ShardID: "2021"},
			{ProcessNumber: "proc-a", DocumentDate: "2022-05-01", ShardID: "2022"},
		},
		"proc-c": {
			{ProcessNumber: "proc-c", DocumentDate: "2023-01-01", ShardID: "2023"},
		},
	}

	result := aggregate(byProcess)
	require.Len(t, result, 3)

	// Most recent mention first; proc-a and proc-b tie on 2022-05-01 and
	// fall back to process number ascending.
	assert.Equal(t, "proc-c", result[0].ProcessNumber)
	assert.Equal(t, "proc-a", result[1].ProcessNumber)
	assert.Equal(t, "proc-b", result[2].ProcessNumber)

	// Within a group mentions order newest first.
	assert.Equal(t, "2022-05-01", result[1].Mentions[0].DocumentDate)
	assert.Equal(t, "2021-01-01", result[1].Mentions[1].DocumentDate)
}

func TestAggregateMentionTieBreaks(t *testing.T) {
	byProcess := map[string][]Mention{
		"proc": {
			{ProcessNumber: "proc", DocumentDate: "2022-05-01", ShardID: "2022-h2", FilePath: "b.pdf"},
			{ProcessNumber: "proc", DocumentDate: "2022-05-01", ShardID: "2022-h1", FilePath: "z.pdf"},
			{ProcessNumber: "proc", DocumentDate: "2022-05-01", ShardID: "2022-h1", FilePath: "a.pdf"},
		},
	}

	mentions := aggregate(byProcess)[0].Mentions
	require.Len(t, mentions, 3)
	// Same date: shard id ascending, then file path ascending.
	assert.Equal(t, "2022-h1", mentions[0].ShardID)
	assert.Equal(t, "a.pdf", mentions[0].FilePath)
	assert.Equal(t, "2022-h1", mentions[1].ShardID)
	assert.Equal(t, "z.pdf", mentions[1].FilePath)
	assert.Equal(t, "2022-h2", mentions[2].ShardID)
}

func TestPaginate(t *testing.T) {
	r := Result{
		{ProcessNumber: "1"}, {ProcessNumber: "2"}, {ProcessNumber: "3"},
		{ProcessNumber: "4"}, {ProcessNumber: "5"},
	}

	assert.Equal(t, []string{"1", "2"}, processNumbers(paginate(r, 1, 2)))
	assert.Equal(t, []string{"3", "4"}, processNumbers(paginate(r, 2, 2)))
	assert.Equal(t, []string{"5"}, processNumbers(paginate(r, 3, 2)))
	assert.Empty(t, paginate(r, 4, 2))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, processNumbers(paginate(r, 1, 100)))
}
