package vouchsafe

import (
	"fmt"
	"time"

	"github.com/mhalvorsen/vouchsafe/internal/model"
)

// Status is the sealed end state of a decision.
type Status string

const (
	Accepted  Status = Status(model.StatusAccepted)
	Rejected  Status = Status(model.StatusRejected)
	Whispered Status = Status(model.StatusWhispered)
	Expired   Status = Status(model.StatusExpired)
)

// Action describes what an agent intends to do.
type Action struct {
	Summary string         // human-readable description of the action
	Context map[string]any // optional supporting detail shown to the human
	Tone    string         // optional advisory mood label ("calm", "agitated", ...)
	Drift   float64        // optional drift magnitude in [0,1]
}

// Outcome is the sealed result of one decision.
type Outcome struct {
	DecisionID   string
	Status       Status
	Intent       string
	RevisionText string // set when Status is Whispered
	PolicyNote   string // set on forced outcomes (defer limit, expiry)
	SealedAt     time.Time
}

// Accepted returns true if the human approved the action as proposed.
func (o Outcome) Accepted() bool {
	return o.Status == Accepted
}

// Presented is a view of the decision currently shown to the human.
type Presented struct {
	DecisionID string
	AgentID    string
	Summary    string
	AdmittedAt time.Time
	DeferCount int
}

// Stats are the session counters.
type Stats struct {
	Accepted  int
	Rejected  int
	Whispered int
	Expired   int
	StartedAt time.Time
}

// BlockedError is returned by a guarded tool when the human rejected
// the action, or it expired unresolved.
type BlockedError struct {
	Action  Action
	Outcome Outcome
}

func (e *BlockedError) Error() string {
	if e.Outcome.PolicyNote != "" {
		return fmt.Sprintf("vouchsafe blocked (%s): %s", e.Outcome.Status, e.Outcome.PolicyNote)
	}
	return fmt.Sprintf("vouchsafe blocked (%s)", e.Outcome.Status)
}

// RevisedError is returned by a guarded tool when the human supplied an
// alternative instead of approving. The agent should re-plan using Text.
type RevisedError struct {
	Action Action
	Text   string
}

func (e *RevisedError) Error() string {
	return fmt.Sprintf("vouchsafe revised: %s", e.Text)
}

// Input is one human response event. Build with Swipe, Tap, Say, or
// Biometric.
type Input struct {
	raw model.RawInput
}

// Swipe builds a directional gesture input.
func Swipe(direction string, distance float64) Input {
	return Input{raw: model.RawInput{
		Channel: model.ChannelSwipe,
		Swipe:   &model.SwipeInput{Direction: direction, Distance: distance},
	}}
}

// Tap builds a tap input at normalized coordinates in [0,1].
func Tap(x, y float64) Input {
	return Input{raw: model.RawInput{
		Channel: model.ChannelTap,
		Tap:     &model.TapInput{X: x, Y: y},
	}}
}

// Say builds a voice input from a transcript and recognizer confidence.
func Say(transcript string, confidence float64) Input {
	return Input{raw: model.RawInput{
		Channel: model.ChannelVoice,
		Voice:   &model.VoiceInput{Transcript: transcript, Confidence: confidence},
	}}
}

// Biometric builds a biometric input for a registered handler type.
func Biometric(typ string, data map[string]any) Input {
	return Input{raw: model.RawInput{
		Channel:   model.ChannelBiometric,
		Biometric: &model.BiometricInput{Type: typ, Data: data},
	}}
}

func (a Action) toProposal(agentID string) model.Proposal {
	return model.Proposal{
		AgentID: agentID,
		Action:  a.Summary,
		Context: a.Context,
		Tone:    model.ToneEstimate{Label: a.Tone},
		Drift:   model.DriftEstimate{Magnitude: a.Drift},
	}
}
