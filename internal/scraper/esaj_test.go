package scraper

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidProcessNumber(t *testing.T) {
	tests := []struct {
		number string
		valid  bool
	}{
		{"0001234-56.2021.8.26.0100", true},
		{"1234567-89.2023.8.26.0053", true},
		{"0001234-56.2021.8.26.010", false},  // short forum code
		{"001234-56.2021.8.26.0100", false},  // short sequential
		{"0001234.56.2021.8.26.0100", false}, // dot instead of dash
		{"0001234-56.2021.8.26.0100 ", false},
		{"", false},
		{"sisbajud", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidProcessNumber(tt.number), tt.number)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"R$         1.234,56", "R$ 1.234,56"},
		{"R$1.234,56", "R$ 1.234,56"},
		{"R$ 1.234,56", "R$ 1.234,56"},
		{"1.234,56", "1.234,56"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.in))
	}
}

func TestRowAlignsWithHeaders(t *testing.T) {
	assert.Len(t, ProcessData{}.Row(), len(Headers()))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "2021-03-10", truncate("2021-03-10 14:35", 10))
	assert.Equal(t, "short", truncate("short", 10))
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	results := []ProcessData{
		{Number: "0001234-56.2021.8.26.0100", Class: "Execução Fiscal", Value: "R$ 1.234,56"},
		{Number: "bogus", Err: "invalid process number format, expected NNNNNNN-DD.AAAA.J.TR.OOOO"},
	}

	path, err := WriteCSV(dir, results)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Headers(), records[0])
	assert.Equal(t, "0001234-56.2021.8.26.0100", records[1][0])
	assert.Contains(t, records[2][len(records[2])-1], "invalid process number")
}
