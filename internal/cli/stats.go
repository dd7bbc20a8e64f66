package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newClient().Stats()
		if err != nil {
			return err
		}
		fmt.Printf("Session started %s\n\n", humanize.Time(s.StartedAt))
		fmt.Printf("  accepted:  %d\n", s.Accepted)
		fmt.Printf("  rejected:  %d\n", s.Rejected)
		fmt.Printf("  whispered: %d\n", s.Whispered)
		fmt.Printf("  expired:   %d\n", s.Expired)
		return nil
	},
}
