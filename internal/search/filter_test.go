package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterFixture() Result {
	return Result{
		{ProcessNumber: "proc-1", Mentions: []Mention{
			{Content: "Bloqueio efetivado via SISBAJUD"},
			{Content: "Despacho ordinário"},
		}},
		{ProcessNumber: "proc-2", Mentions: []Mention{
			{Content: "Consulta sem saldo disponível"},
		}},
		{ProcessNumber: "proc-3", Mentions: []Mention{
			{Content: "Ordem de bloqueio expedida"},
		}},
	}
}

func TestFilterBlankIsNoop(t *testing.T) {
	results := filterFixture()
	assert.Equal(t, results, Filter(results, ""))
	assert.Equal(t, results, Filter(results, "   "))
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	filtered := Filter(filterFixture(), "SISBAJUD")
	assert.Equal(t, []string{"proc-2", "proc-3"}, processNumbers(filtered))
}

func TestFilterAnyMentionDropsWholeGroup(t *testing.T) {
	// proc-1 matches on its second mention only; the whole group still goes.
	filtered := Filter(filterFixture(), "despacho")
	assert.Equal(t, []string{"proc-2", "proc-3"}, processNumbers(filtered))
}

func TestFilterQuotedPhrase(t *testing.T) {
	// The phrase must match as a whole; "ordem" alone appears in proc-3 but
	// "ordem de penhora" nowhere.
	filtered := Filter(filterFixture(), `"ordem de penhora"`)
	assert.Len(t, filtered, 3)

	filtered = Filter(filterFixture(), `"ordem de bloqueio"`)
	assert.Equal(t, []string{"proc-1", "proc-2"}, processNumbers(filtered))
}

func TestFilterMultipleTerms(t *testing.T) {
	filtered := Filter(filterFixture(), "sisbajud saldo")
	assert.Equal(t, []string{"proc-3"}, processNumbers(filtered))
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	results := filterFixture()
	_ = Filter(results, "sisbajud")
	assert.Len(t, results, 3)
}
