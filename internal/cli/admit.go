package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhalvorsen/vouchsafe/internal/model"
)

var (
	admitAgent  string
	admitFile   string
	admitTone   string
	admitDrift  float64
	admitAccent string
)

func init() {
	rootCmd.AddCommand(admitCmd)
	admitCmd.Flags().StringVar(&admitAgent, "agent", "", "Proposing agent id")
	admitCmd.Flags().StringVar(&admitFile, "file", "", "Read the full proposal from a JSON file instead of flags")
	admitCmd.Flags().StringVar(&admitTone, "tone", "", "Tone label (calm, focused, hesitant, agitated)")
	admitCmd.Flags().Float64Var(&admitDrift, "drift", 0, "Drift magnitude in [0,1]")
	admitCmd.Flags().StringVar(&admitAccent, "accent", "", "Presentation accent hint")
}

var admitCmd = &cobra.Command{
	Use:   "admit [action]",
	Short: "Submit a proposal for confirmation",
	Long:  "Queues an action for human confirmation. Either pass the action text and flags, or --file with a full proposal JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAdmit,
}

func runAdmit(cmd *cobra.Command, args []string) error {
	var p model.Proposal

	if admitFile != "" {
		data, err := os.ReadFile(admitFile)
		if err != nil {
			return fmt.Errorf("failed to read proposal file: %w", err)
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to parse proposal file: %w", err)
		}
	} else {
		if len(args) == 0 {
			return fmt.Errorf("action text or --file is required")
		}
		p = model.Proposal{
			AgentID: admitAgent,
			Action:  args[0],
			Tone:    model.ToneEstimate{Label: admitTone},
			Drift:   model.DriftEstimate{Magnitude: admitDrift},
		}
		if admitAccent != "" {
			p.Hints = &model.Hints{Accent: admitAccent}
		}
	}

	id, err := newClient().Admit(p)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}
