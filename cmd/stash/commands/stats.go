package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func (c *CLI) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache contents and the cumulative computation cost they avoid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, records, err := c.app.Stats()
			if err != nil {
				return err
			}

			sort.Slice(records, func(i, j int) bool {
				return records[i].CreatedAt.After(records[j].CreatedAt)
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d cached entries, %.1fs of computation avoidable\n", len(records), stats.TimeSavedSeconds)
			for _, rec := range records {
				fmt.Fprintf(out, "  %-20s %8.2fs  %s\n",
					rec.Operation, rec.ExecutionSeconds, rec.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
