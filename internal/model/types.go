// Package model defines the core types of the confirmation engine:
// proposals awaiting human confirmation, the decisions that track them
// through the queue, and the raw input a human supplies to resolve them.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a decision.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPresenting Status = "presenting"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusWhispered  Status = "whispered"
	StatusDeferred   Status = "deferred"
	StatusExpired    Status = "expired"
)

// Terminal reports whether a status is a sealed end state.
func (s Status) Terminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusWhispered, StatusExpired:
		return true
	}
	return false
}

// Intent is the classified meaning of raw human input.
type Intent string

const (
	IntentAccept   Intent = "accept"
	IntentReject   Intent = "reject"
	IntentWhisper  Intent = "whisper"
	IntentDefer    Intent = "defer"
	IntentQuestion Intent = "question"
	IntentUnclear  Intent = "unclear"
)

// Channel identifies the input modality a response arrived on.
type Channel string

const (
	ChannelSwipe     Channel = "swipe"
	ChannelTap       Channel = "tap"
	ChannelVoice     Channel = "voice"
	ChannelBiometric Channel = "biometric"
)

// ToneEstimate is an advisory mood assessment attached to a proposal.
// Labels outside the known set score at the documented default (0.5).
type ToneEstimate struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence,omitempty"`
}

// DriftEstimate is an advisory stability assessment attached to a proposal.
// Magnitude is in [0,1]; higher means further off-course.
type DriftEstimate struct {
	Magnitude float64 `json:"magnitude"`
	Stable    bool    `json:"stable,omitempty"`
}

// Hints carries optional presentation metadata. Cosmetic only; the
// renderer owns interpretation.
type Hints struct {
	Title  string `json:"title,omitempty"`
	Accent string `json:"accent,omitempty"`
}

// Proposal is an action awaiting human confirmation. Immutable once admitted.
type Proposal struct {
	AgentID string         `json:"agent_id"`
	Action  string         `json:"action"`
	Context map[string]any `json:"context,omitempty"`
	Tone    ToneEstimate   `json:"tone"`
	Drift   DriftEstimate  `json:"drift"`
	Hints   *Hints         `json:"hints,omitempty"`
}

// Validate checks that a proposal has the required fields.
func (p *Proposal) Validate() error {
	if strings.TrimSpace(p.AgentID) == "" {
		return fmt.Errorf("%w: agent id is required", ErrInvalidProposal)
	}
	if strings.TrimSpace(p.Action) == "" {
		return fmt.Errorf("%w: action description is required", ErrInvalidProposal)
	}
	return nil
}

// SwipeInput is a directional gesture with travel metrics.
type SwipeInput struct {
	Direction string  `json:"direction"`
	Distance  float64 `json:"distance"`
	Velocity  float64 `json:"velocity,omitempty"`
}

// TapInput is a tap at normalized screen coordinates in [0,1].
type TapInput struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// VoiceInput is a transcript with recognizer confidence.
type VoiceInput struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// BiometricInput carries modality-specific data for a registered handler.
type BiometricInput struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// RawInput is one human response event. Exactly one of the channel
// payloads must be set, matching Channel.
type RawInput struct {
	Channel   Channel         `json:"channel"`
	Swipe     *SwipeInput     `json:"swipe,omitempty"`
	Tap       *TapInput       `json:"tap,omitempty"`
	Voice     *VoiceInput     `json:"voice,omitempty"`
	Biometric *BiometricInput `json:"biometric,omitempty"`
}

// Response records the interpreted human act that resolved a decision.
type Response struct {
	Channel    Channel   `json:"channel"`
	Descriptor string    `json:"descriptor"`
	Confidence float64   `json:"confidence"`
	Intent     Intent    `json:"intent"`
	ReceivedAt time.Time `json:"received_at"`
}

// Decision tracks a single proposal's journey through the queue.
type Decision struct {
	ID               string     `json:"id"`
	Proposal         Proposal   `json:"proposal"`
	Status           Status     `json:"status"`
	AdmittedAt       time.Time  `json:"admitted_at"`
	SealedAt         *time.Time `json:"sealed_at,omitempty"`
	Response         *Response  `json:"response,omitempty"`
	RevisionText     string     `json:"revision_text,omitempty"`
	DeferCount       int        `json:"defer_count"`
	AwaitingRevision bool       `json:"awaiting_revision,omitempty"`
	PolicyNote       string     `json:"policy_note,omitempty"`
}
