package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pendingCmd)
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List the presenting decision and the queued tail",
	RunE:  runPending,
}

func runPending(cmd *cobra.Command, args []string) error {
	current, queued, err := newClient().Pending()
	if err != nil {
		return err
	}

	if current == nil && len(queued) == 0 {
		fmt.Println("Queue is empty.")
		return nil
	}

	fmt.Printf("%-38s %-12s %-14s %-30s %s\n", "ID", "STATUS", "AGENT", "ACTION", "AGE")
	if current != nil {
		printDecisionRow(current.ID, string(current.Status), current.Proposal.AgentID,
			current.Proposal.Action, humanize.Time(current.AdmittedAt))
	}
	for _, d := range queued {
		printDecisionRow(d.ID, string(d.Status), d.Proposal.AgentID,
			d.Proposal.Action, humanize.Time(d.AdmittedAt))
	}
	return nil
}

func printDecisionRow(id, status, agent, action, age string) {
	fmt.Printf("%-38s %-12s %-14s %-30s %s\n",
		id, status, truncate(agent, 14), truncate(action, 30), age)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
