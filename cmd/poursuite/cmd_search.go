package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"poursuite/internal/export"
	"poursuite/internal/search"
)

var searchFlags struct {
	keywords      string
	processNumber string
	startDate     string
	endDate       string
	exclude       string
	page          int
	pageSize      int
	csvOut        string
	summary       bool
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a one-shot search and print or export the results",
	Long: `Searches all relevant shards without a deadline (offline callers are
trusted to wait). Combine --keywords, --process, --start-date and
--end-date freely; keywords support AND/OR/NOT, "quoted phrases" and
prefix* wildcards.`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchFlags.keywords, "keywords", "k", "", "full-text keyword query")
	f.StringVarP(&searchFlags.processNumber, "process", "p", "", "full or partial process number")
	f.StringVar(&searchFlags.startDate, "start-date", "", "earliest document date (YYYY-MM-DD)")
	f.StringVar(&searchFlags.endDate, "end-date", "", "latest document date (YYYY-MM-DD)")
	f.StringVar(&searchFlags.exclude, "exclude", "", "drop processes whose mentions contain these terms")
	f.IntVar(&searchFlags.page, "page", 1, "1-based page number")
	f.IntVar(&searchFlags.pageSize, "page-size", 0, "results per page (0 = configured default)")
	f.StringVar(&searchFlags.csvOut, "csv", "", "export the page to this CSV file name")
	f.BoolVar(&searchFlags.summary, "summary", true, "include the summary header in CSV exports")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	engine := search.New(cat, cfg.Search, logger, nil)
	page, err := engine.Search(context.Background(), search.Params{
		Keywords:       searchFlags.keywords,
		ProcessNumber:  searchFlags.processNumber,
		StartDate:      searchFlags.startDate,
		EndDate:        searchFlags.endDate,
		ExclusionTerms: searchFlags.exclude,
		Page:           searchFlags.page,
		PageSize:       searchFlags.pageSize,
	})
	if err != nil {
		return err
	}

	printPage(page)

	if searchFlags.csvOut != "" {
		path, err := export.WriteFile(cfg.OutputDir, searchFlags.csvOut,
			page.Results, searchFlags.summary, searchParamFields())
		if err != nil {
			return err
		}
		fmt.Printf("Results exported to %s\n", path)
	}
	return nil
}

func searchParamFields() []export.Field {
	return []export.Field{
		{Name: "Keywords", Value: searchFlags.keywords},
		{Name: "Process Number", Value: searchFlags.processNumber},
		{Name: "Start Date", Value: searchFlags.startDate},
		{Name: "End Date", Value: searchFlags.endDate},
		{Name: "Exclusion Terms", Value: searchFlags.exclude},
		{Name: "Search Time", Value: time.Now().Format("2006-01-02 15:04:05")},
	}
}

func printPage(page search.Page) {
	summary := search.Summarize(page.Results)
	fmt.Printf("\nFound %d processes (page %d, %d on this page, %d mentions)\n",
		page.TotalProcesses, page.PageNum, len(page.Results), summary.TotalMentions)
	if page.Truncated {
		fmt.Println("Warning: search truncated by deadline; totals are a lower bound.")
	}
	if len(page.Results) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Process Number", "Mentions", "Latest Date", "Shards"})
	for _, group := range page.Results {
		shards := map[string]struct{}{}
		for _, m := range group.Mentions {
			shards[m.ShardID] = struct{}{}
		}
		latest := ""
		if len(group.Mentions) > 0 {
			latest = group.Mentions[0].DocumentDate
		}
		table.Append([]string{
			group.ProcessNumber,
			fmt.Sprintf("%d", len(group.Mentions)),
			latest,
			fmt.Sprintf("%d", len(shards)),
		})
	}
	table.Render()
}
