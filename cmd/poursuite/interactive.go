package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"poursuite/internal/export"
	"poursuite/internal/search"
)

// runInteractive is the default mode: a menu loop over the search engine
// with no deadline, matching what a trusted operator at the terminal
// expects.
func runInteractive() error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	engine := search.New(cat, cfg.Search, logger, nil)
	in := bufio.NewReader(os.Stdin)

	for {
		fmt.Println("\n=== Poursuite ===")
		fmt.Println("1. Search by keywords")
		fmt.Println("2. Search by process number")
		fmt.Println("3. Show shard statistics")
		fmt.Println("4. Scrape eSAJ data from CSV")
		fmt.Println("5. Exit")

		switch prompt(in, "\nSelect an option (1-5): ") {
		case "1":
			handleKeywordSearch(in, engine)
		case "2":
			handleProcessSearch(in, engine)
		case "3":
			printStats(cat.Stats())
		case "4":
			handleScrapeFromCSV(in)
		case "5":
			fmt.Println("Exiting...")
			return nil
		default:
			fmt.Println("Invalid option. Please try again.")
		}
	}
}

func handleKeywordSearch(in *bufio.Reader, engine *search.Engine) {
	keywords := prompt(in, `Enter keywords (use quotes for phrases, AND/OR/NOT for boolean): `)
	startDate := prompt(in, "Start date (YYYY-MM-DD) or leave empty: ")
	endDate := prompt(in, "End date (YYYY-MM-DD) or leave empty: ")

	params := search.Params{Keywords: keywords, StartDate: startDate, EndDate: endDate}
	fields := []export.Field{
		{Name: "Keywords", Value: keywords},
		{Name: "Start Date", Value: startDate},
		{Name: "End Date", Value: endDate},
		{Name: "Search Time", Value: time.Now().Format("2006-01-02 15:04:05")},
	}
	runInteractiveSearch(in, engine, params, fields)
}

func handleProcessSearch(in *bufio.Reader, engine *search.Engine) {
	processNumber := prompt(in, "Enter process number (full or partial): ")

	params := search.Params{ProcessNumber: processNumber}
	fields := []export.Field{
		{Name: "Process Number", Value: processNumber},
		{Name: "Search Time", Value: time.Now().Format("2006-01-02 15:04:05")},
	}
	runInteractiveSearch(in, engine, params, fields)
}

func runInteractiveSearch(in *bufio.Reader, engine *search.Engine, params search.Params, fields []export.Field) {
	page, err := engine.Search(context.Background(), params)
	if err != nil {
		fmt.Printf("Search failed: %v\n", err)
		return
	}

	results := page.Results
	summary := search.Summarize(results)
	fmt.Printf("\nFound %d processes with %d total mentions\n",
		summary.TotalProcesses, summary.TotalMentions)
	if summary.TotalProcesses == 0 {
		return
	}

	if confirm(in, "Export results to CSV? (y/n): ") {
		exportResults(results, fields)
	}

	if confirm(in, "\nApply second-layer filtering? (y/n): ") {
		fmt.Println("This excludes entire processes if ANY mention contains the specified terms.")
		terms := prompt(in, "Enter terms to exclude (space-separated, quotes for phrases): ")

		filtered := search.Filter(results, terms)
		removed := len(results) - len(filtered)
		fmt.Printf("\nFiltered: %d processes (%d removed)\n", len(filtered), removed)

		if len(filtered) > 0 && confirm(in, "Export filtered results to CSV? (y/n): ") {
			exportResults(filtered, append(fields, export.Field{Name: "Exclusion Terms", Value: terms}))
		}
		results = filtered
	}

	if len(results) > 0 && confirm(in, "\nScrape eSAJ data for these processes? (y/n): ") {
		numbers := make([]string, 0, len(results))
		for _, group := range results {
			numbers = append(numbers, group.ProcessNumber)
		}
		if err := scrapeAndSave(numbers); err != nil {
			fmt.Printf("Scrape failed: %v\n", err)
		}
	}
}

func exportResults(results search.Result, fields []export.Field) {
	name := fmt.Sprintf("search_results_%s.csv", time.Now().Format("20060102_150405"))
	path, err := export.WriteFile(cfg.OutputDir, name, results, true, fields)
	if err != nil {
		fmt.Printf("Export failed: %v\n", err)
		return
	}
	fmt.Printf("Results exported to %s\n", path)
}

func handleScrapeFromCSV(in *bufio.Reader) {
	path := prompt(in, "\nEnter path to CSV file: ")
	if path == "" {
		fmt.Println("No file path provided.")
		return
	}

	numbers, err := extractProcessNumbers(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(numbers) == 0 {
		fmt.Println("No process numbers found in the CSV file.")
		return
	}

	sample := numbers
	if len(sample) > 5 {
		sample = sample[:5]
	}
	fmt.Printf("\nFound %d process numbers.\nSample: %s\n",
		len(numbers), strings.Join(sample, ", "))

	if !confirm(in, "\nProceed? (y/n): ") {
		fmt.Println("Operation cancelled.")
		return
	}
	if err := scrapeAndSave(numbers); err != nil {
		fmt.Printf("Scrape failed: %v\n", err)
	}
}

func prompt(in *bufio.Reader, msg string) string {
	fmt.Print(msg)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func confirm(in *bufio.Reader, msg string) bool {
	return strings.HasPrefix(strings.ToLower(prompt(in, msg)), "y")
}
