package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhalvorsen/vouchsafe/internal/client"
	"github.com/mhalvorsen/vouchsafe/internal/config"
)

var daemonAddr string

var rootCmd = &cobra.Command{
	Use:   "vouchsafe",
	Short: "Human confirmation gate for agent-proposed actions",
	Long:  "Queues actions proposed by autonomous agents and presents them one at a time for human confirmation. Every outcome is sealed to an append-only record before the agent learns it.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&daemonAddr, "addr",
		fmt.Sprintf("http://localhost:%d", config.Default().Server.Port),
		"Address of the vouchsafe daemon")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(daemonAddr)
}
