package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var recentN int

func init() {
	rootCmd.AddCommand(recentCmd)
	recentCmd.Flags().IntVar(&recentN, "n", 20, "Number of records to show")
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently sealed records",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := newClient().Recent(recentN)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No sealed records yet.")
			return nil
		}

		fmt.Printf("%-38s %-10s %-14s %-30s %-11s %s\n", "ID", "STATUS", "AGENT", "ACTION", "ALIGNMENT", "SEALED")
		for _, r := range records {
			fmt.Printf("%-38s %-10s %-14s %-30s %-11s %s\n",
				r.DecisionID,
				r.Status,
				truncate(r.Proposal.AgentID, 14),
				truncate(r.Proposal.Action, 30),
				r.Alignment.Label,
				humanize.Time(r.SealedAt),
			)
		}
		return nil
	},
}
