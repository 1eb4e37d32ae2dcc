package main

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"poursuite/internal/scraper"
)

// processNumberLoose finds unified case numbers anywhere in free text,
// used to pull numbers out of exported CSVs.
var processNumberLoose = regexp.MustCompile(`\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}`)

var scrapeFlags struct {
	fromCSV string
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [process-number...]",
	Short: "Scrape eSAJ case data for process numbers",
	Long: `Looks each case up on the TJSP eSAJ site with a headless browser and
writes the results to a timestamped CSV. Numbers come from the arguments
or are extracted from a CSV file via --from-csv.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeFlags.fromCSV, "from-csv", "", "extract process numbers from this CSV file")
}

func runScrape(cmd *cobra.Command, args []string) error {
	numbers := args
	if scrapeFlags.fromCSV != "" {
		extracted, err := extractProcessNumbers(scrapeFlags.fromCSV)
		if err != nil {
			return err
		}
		numbers = append(numbers, extracted...)
	}
	if len(numbers) == 0 {
		return fmt.Errorf("no process numbers given; pass them as arguments or via --from-csv")
	}

	return scrapeAndSave(numbers)
}

// extractProcessNumbers pulls every unified case number out of a file,
// deduplicated in order of first appearance.
func extractProcessNumbers(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	seen := make(map[string]struct{})
	var numbers []string
	for _, match := range processNumberLoose.FindAllString(string(data), -1) {
		if _, ok := seen[match]; ok {
			continue
		}
		seen[match] = struct{}{}
		numbers = append(numbers, match)
	}
	return numbers, nil
}

func scrapeAndSave(numbers []string) error {
	s, err := scraper.New(cfg.Scraper, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	results := s.Batch(context.Background(), numbers)
	printScrapeResults(results)

	path, err := scraper.WriteCSV(cfg.Scraper.OutputDir, results)
	if err != nil {
		return err
	}
	fmt.Printf("Results saved to %s\n", path)
	return nil
}

func printScrapeResults(results []scraper.ProcessData) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}

	successful := 0
	for _, r := range results {
		if r.Err == "" {
			successful++
		}
	}
	fmt.Printf("\nScraped %d processes: %d successful, %d errors\n",
		len(results), successful, len(results)-successful)

	display := len(results)
	if display > 5 {
		display = 5
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(scraper.Headers())
	for _, r := range results[:display] {
		table.Append(r.Row())
	}
	table.Render()
	if len(results) > display {
		fmt.Printf("... and %d more not shown.\n", len(results)-display)
	}
}
