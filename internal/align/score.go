// Package align computes an advisory compatibility score for a proposal
// from its tone and drift assessments. The score is display and audit
// metadata only; it never gates or auto-resolves a decision.
package align

import "github.com/mhalvorsen/vouchsafe/internal/model"

// Label buckets for the alignment value.
const (
	LabelAligned    = "aligned"
	LabelNeutral    = "neutral"
	LabelMisaligned = "misaligned"
)

// defaultToneScore is used for tone labels outside the known table.
const defaultToneScore = 0.5

// driftWeight scales how much drift magnitude pulls the score down.
const driftWeight = 0.5

// toneScores is the fixed tone → base score table.
var toneScores = map[string]float64{
	"calm":     0.9,
	"focused":  0.85,
	"curious":  0.75,
	"neutral":  0.6,
	"restless": 0.45,
	"anxious":  0.3,
	"agitated": 0.2,
}

// Result is a scored assessment with a human-readable recommendation.
type Result struct {
	Value          float64 `json:"value"`
	Label          string  `json:"label"`
	Recommendation string  `json:"recommendation"`
}

// Score combines a tone base score with a drift penalty, clamped to [0,1].
// Deterministic and side-effect-free.
func Score(tone model.ToneEstimate, drift model.DriftEstimate) Result {
	base, ok := toneScores[tone.Label]
	if !ok {
		base = defaultToneScore
	}

	value := clamp01(base - driftWeight*clamp01(drift.Magnitude))

	var label, rec string
	switch {
	case value > 0.7:
		label = LabelAligned
		rec = "proposal reads compatible with the current session"
	case value >= 0.4:
		label = LabelNeutral
		rec = "no strong signal either way; rely on the human response"
	default:
		label = LabelMisaligned
		rec = "advisory signals suggest reviewing this proposal carefully"
	}

	return Result{Value: value, Label: label, Recommendation: rec}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
