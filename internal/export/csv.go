// Package export renders result sets to CSV files with an optional
// summary header block.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"poursuite/internal/search"
)

// Field is one search parameter echoed into the summary header. A slice
// keeps the caller's ordering, which a map would lose.
type Field struct {
	Name  string
	Value string
}

// Write renders results as CSV to w. With includeSummary the output starts
// with a header block: the non-empty search parameters, totals, the overall
// date range and a per-shard mention-count breakdown. Every mention becomes
// one data row. I/O failures are returned as-is; partially written output
// is the caller's problem.
func Write(w io.Writer, results search.Result, includeSummary bool, params []Field) error {
	cw := csv.NewWriter(w)

	if includeSummary {
		if err := writeSummary(cw, results, params); err != nil {
			return err
		}
	}

	if err := cw.Write([]string{
		"Process Number", "Mention Count", "Document Date",
		"Database", "File Path", "Content",
	}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, group := range results {
		total := len(group.Mentions)
		for i, mention := range group.Mentions {
			row := []string{
				group.ProcessNumber,
				fmt.Sprintf("%d/%d", i+1, total),
				mention.DocumentDate,
				mention.ShardID,
				mention.FilePath,
				mention.Content,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeSummary(cw *csv.Writer, results search.Result, params []Field) error {
	summary := search.Summarize(results)

	rows := [][]string{{"=== Search Results Summary ==="}}

	if len(params) > 0 {
		rows = append(rows, []string{"=== Search Parameters ==="})
		for _, p := range params {
			if p.Value != "" {
				rows = append(rows, []string{p.Name, p.Value})
			}
		}
		rows = append(rows, []string{""})
	}

	rows = append(rows,
		[]string{"Total Processes", fmt.Sprintf("%d", summary.TotalProcesses)},
		[]string{"Total Mentions", fmt.Sprintf("%d", summary.TotalMentions)},
	)
	if summary.Earliest != "" {
		rows = append(rows, []string{
			"Date Range",
			fmt.Sprintf("%s to %s", summary.Earliest, summary.Latest),
		})
	}

	rows = append(rows, []string{"=== Database Distribution ==="})
	shardIDs := make([]string, 0, len(summary.ShardCounts))
	for id := range summary.ShardCounts {
		shardIDs = append(shardIDs, id)
	}
	sort.Strings(shardIDs)
	for _, id := range shardIDs {
		rows = append(rows, []string{
			fmt.Sprintf("Database %s", id),
			fmt.Sprintf("%d", summary.ShardCounts[id]),
		})
	}
	rows = append(rows, []string{""})

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv summary: %w", err)
		}
	}
	return nil
}

// WriteFile writes results to a CSV file under dir, creating the directory
// if needed. Returns the full path of the written file.
func WriteFile(dir, name string, results search.Result, includeSummary bool, params []Field) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, results, includeSummary, params); err != nil {
		return "", fmt.Errorf("export to %s: %w", path, err)
	}
	return path, nil
}
