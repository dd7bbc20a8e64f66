package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(currentCmd)
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the decision currently presenting",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newClient().Current()
		if err != nil {
			return err
		}
		if d == nil {
			fmt.Println("Queue is empty.")
			return nil
		}
		out, _ := json.MarshalIndent(d, "", "  ")
		fmt.Println(string(out))
		return nil
	},
}
