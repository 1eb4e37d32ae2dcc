package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"poursuite/internal/catalog"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics (shard count, sizes, date coverage)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		defer cat.Close()

		printStats(cat.Stats())
		return nil
	},
}

func printStats(stats catalog.Stats) {
	fmt.Printf("\nTotal shards: %d\n", stats.TotalShards)
	fmt.Printf("Total size:   %.2f MB\n", float64(stats.TotalSizeBytes)/(1024*1024))
	if stats.Earliest != "" {
		fmt.Printf("Date range:   %s to %s\n", stats.Earliest, stats.Latest)
	}
	if len(stats.Shards) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Shard", "Size (MB)", "Start Date", "End Date"})
	for _, s := range stats.Shards {
		table.Append([]string{
			s.ID,
			fmt.Sprintf("%.2f", float64(s.SizeBytes)/(1024*1024)),
			s.StartDate,
			s.EndDate,
		})
	}
	table.Render()
}
