package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reviseCmd)
}

var reviseCmd = &cobra.Command{
	Use:   "revise [decision-id] [text]",
	Short: "Supply revision text for a whispered decision",
	Long:  "Completes a whisper: the decision seals as whispered with the given text.\nAn empty text seals the decision as rejected instead.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := ""
		if len(args) == 2 {
			text = args[1]
		}
		if err := newClient().SendRevision(args[0], text); err != nil {
			return err
		}
		fmt.Println("sealed")
		return nil
	},
}
