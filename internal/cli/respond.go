package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhalvorsen/vouchsafe/internal/model"
)

var respondDecision string

func init() {
	rootCmd.AddCommand(respondCmd)
	respondCmd.PersistentFlags().StringVar(&respondDecision, "decision", "", "Decision id to respond to (defaults to whatever is presenting)")
	respondCmd.AddCommand(swipeCmd, tapCmd, sayCmd, pulseCmd)

	swipeCmd.Flags().Float64Var(&swipeDistance, "distance", 150, "Swipe travel in points")
	tapCmd.Flags().Float64Var(&tapX, "x", 0.5, "Normalized x coordinate in [0,1]")
	tapCmd.Flags().Float64Var(&tapY, "y", 0.5, "Normalized y coordinate in [0,1]")
	sayCmd.Flags().Float64Var(&sayConfidence, "confidence", 1.0, "Recognizer confidence in [0,1]")
	pulseCmd.Flags().Float64Var(&pulseBPM, "bpm", 0, "Measured beats per minute")
	pulseCmd.Flags().Float64Var(&pulseBaseline, "baseline", 0, "Resting baseline BPM")
}

var respondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Respond to the presenting decision",
}

var swipeDistance float64

var swipeCmd = &cobra.Command{
	Use:   "swipe [right|left|up|down]",
	Short: "Respond with a swipe gesture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendInput(model.RawInput{
			Channel: model.ChannelSwipe,
			Swipe:   &model.SwipeInput{Direction: args[0], Distance: swipeDistance},
		})
	},
}

var tapX, tapY float64

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Respond with a tap at normalized coordinates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendInput(model.RawInput{
			Channel: model.ChannelTap,
			Tap:     &model.TapInput{X: tapX, Y: tapY},
		})
	},
}

var sayConfidence float64

var sayCmd = &cobra.Command{
	Use:   "say [transcript]",
	Short: "Respond with a voice transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendInput(model.RawInput{
			Channel: model.ChannelVoice,
			Voice:   &model.VoiceInput{Transcript: args[0], Confidence: sayConfidence},
		})
	},
}

var pulseBPM, pulseBaseline float64

var pulseCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Respond with a pulse reading",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendInput(model.RawInput{
			Channel: model.ChannelBiometric,
			Biometric: &model.BiometricInput{
				Type: "pulse",
				Data: map[string]any{"bpm": pulseBPM, "baseline": pulseBaseline},
			},
		})
	},
}

func sendInput(in model.RawInput) error {
	it, err := newClient().SendInput(respondDecision, in)
	if err != nil {
		return err
	}
	fmt.Printf("intent: %s\n", it)
	if it == model.IntentWhisper {
		fmt.Println("awaiting revision — supply it with: vouchsafe revise <decision-id> <text>")
	}
	return nil
}
