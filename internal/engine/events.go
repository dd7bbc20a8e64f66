package engine

import (
	"hash/fnv"

	"go.uber.org/zap"

	"github.com/mhalvorsen/vouchsafe/internal/model"
	"github.com/mhalvorsen/vouchsafe/internal/seal"
)

// EventType names the outbound notices the engine produces for the
// renderer layer.
type EventType string

const (
	EventPresented    EventType = "decision:presented"
	EventAccepted     EventType = "decision:accepted"
	EventRejected     EventType = "decision:rejected"
	EventWhispered    EventType = "decision:whispered"
	EventDeferred     EventType = "decision:deferred"
	EventExpired      EventType = "decision:expired"
	EventInputUnclear EventType = "input:unclear"
	EventQuestion     EventType = "decision:question"
	EventQueueEmpty   EventType = "queue:empty"
	EventAcknowledged EventType = "reflection:acknowledged"
)

// Event is one outbound notice. Decision is a snapshot copy; the
// renderer never sees engine-owned state.
type Event struct {
	Type      EventType     `json:"type"`
	Decision  *model.Decision `json:"decision,omitempty"`
	Record    *seal.Record  `json:"record,omitempty"`
	Animation string        `json:"animation,omitempty"`
	Note      string        `json:"note,omitempty"`
}

// Emitter receives engine events. Implementations must not call back
// into the engine; events fire while internal state is settled but the
// renderer is an external collaborator, not a control-flow dependency.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Event)

// Emit calls f(e).
func (f EmitterFunc) Emit(e Event) { f(e) }

// NopEmitter discards all events.
type NopEmitter struct{}

// Emit does nothing.
func (NopEmitter) Emit(Event) {}

// LogEmitter writes events to a structured logger. Useful when no
// renderer is attached.
type LogEmitter struct {
	Logger *zap.Logger
}

// Emit logs the event type with decision context.
func (l LogEmitter) Emit(e Event) {
	fields := []zap.Field{zap.String("event", string(e.Type))}
	if e.Decision != nil {
		fields = append(fields,
			zap.String("decision_id", e.Decision.ID),
			zap.String("status", string(e.Decision.Status)),
		)
	}
	if e.Note != "" {
		fields = append(fields, zap.String("note", e.Note))
	}
	l.Logger.Info("engine event", fields...)
}

// entranceTags is the fixed set of cosmetic entrance-animation tags.
// The renderer owns interpretation; unknown tags degrade to no animation.
var entranceTags = []string{"veil-lift", "slow-bloom", "ember-fade", "tide-draw", "lantern-swing"}

// entranceTag picks an animation tag for a promotion: keyed by the
// proposal's accent theme when present, otherwise rotating.
func entranceTag(d *model.Decision, seq int) string {
	if d.Proposal.Hints != nil && d.Proposal.Hints.Accent != "" {
		h := fnv.New32a()
		h.Write([]byte(d.Proposal.Hints.Accent))
		return entranceTags[int(h.Sum32())%len(entranceTags)]
	}
	return entranceTags[seq%len(entranceTags)]
}
