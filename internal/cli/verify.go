package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mhalvorsen/vouchsafe/internal/config"
	"github.com/mhalvorsen/vouchsafe/internal/seal"
)

var verifyJournalPath string

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyJournalPath, "journal", "", "Path to journal JSONL (default ~/.vouchsafe/journal.jsonl)")
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the seal journal hash chain",
	Long:  "Walks the append-only journal and checks every entry's hash link.\nA broken link means the record of past decisions was altered.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := verifyJournalPath
		if path == "" {
			path = filepath.Join(config.DefaultDir(), "journal.jsonl")
		}

		result := seal.VerifyJournal(path)
		if !result.Valid {
			return fmt.Errorf("journal invalid at line %d: %s", result.ErrorLine, result.Error)
		}
		fmt.Printf("journal valid: %d entries\n", result.Lines)
		return nil
	},
}
