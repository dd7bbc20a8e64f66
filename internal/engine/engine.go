// Package engine owns the pending-decision queue and its state machine.
// Proposals are admitted in FIFO order, exactly one decision is
// presenting at any instant, and every terminal transition writes a
// sealed record before the queue advances. No action is ever considered
// confirmed without an unambiguous, timestamped human act.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mhalvorsen/vouchsafe/internal/intent"
	"github.com/mhalvorsen/vouchsafe/internal/model"
	"github.com/mhalvorsen/vouchsafe/internal/seal"
)

// Defaults for engine configuration.
const (
	defaultMaxDefers     = 3
	defaultMaxPendingAge = 5 * time.Minute
	defaultSweepInterval = 30 * time.Second
)

// Config holds engine configuration. Zero values fall back to defaults.
type Config struct {
	// MaxDefers bounds re-queuing; exceeding it forces a rejection.
	MaxDefers int
	// MaxPendingAge is how old a pending (never presenting) decision may
	// grow before the sweeper expires it.
	MaxPendingAge time.Duration
	// SweepInterval is the sweeper's tick period.
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxDefers <= 0 {
		c.MaxDefers = defaultMaxDefers
	}
	if c.MaxPendingAge <= 0 {
		c.MaxPendingAge = defaultMaxPendingAge
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = defaultSweepInterval
	}
	return c
}

// Sealer persists terminal records. Satisfied by *seal.Store.
type Sealer interface {
	Seal(*seal.Record) error
}

// Engine is the decision queue, presenter, and resolver. One instance
// serves one human operator; all mutations are serialized behind a
// single mutex so no two transitions interleave against the same
// decision.
type Engine struct {
	cfg        Config
	classifier *intent.Classifier
	store      Sealer
	emitter    Emitter
	logger     *zap.Logger

	mu        sync.Mutex
	queue     []*model.Decision // pending, FIFO; head promotes next
	active    *model.Decision   // the single presenting decision, or nil
	activeTag string            // entrance tag of the active decision
	animSeq   int
}

// New creates an engine. A nil emitter discards events; a nil logger
// discards logs.
func New(cfg Config, classifier *intent.Classifier, store Sealer, emitter Emitter, logger *zap.Logger) *Engine {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:        cfg.withDefaults(),
		classifier: classifier,
		store:      store,
		emitter:    emitter,
		logger:     logger,
	}
}

// Admit validates a proposal and appends it to the queue as a pending
// decision. If nothing is presenting, the new head promotes immediately.
// Returns the generated decision id.
func (e *Engine) Admit(p model.Proposal) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	d := &model.Decision{
		ID:         uuid.NewString(),
		Proposal:   p,
		Status:     model.StatusPending,
		AdmittedAt: time.Now().UTC(),
	}

	e.mu.Lock()
	e.queue = append(e.queue, d)
	var promoted *Event
	if e.active == nil {
		promoted = e.promoteLocked()
	}
	e.mu.Unlock()

	e.logger.Info("proposal admitted",
		zap.String("decision_id", d.ID),
		zap.String("agent_id", p.AgentID))

	if promoted != nil {
		e.emitter.Emit(*promoted)
	}
	return d.ID, nil
}

// Current returns a snapshot of the presenting decision, or nil if the
// queue is empty.
func (e *Engine) Current() *model.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.active)
}

// Pending returns snapshots of the queued (not presenting) decisions in
// presentation order.
func (e *Engine) Pending() []model.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Decision, 0, len(e.queue))
	for _, d := range e.queue {
		out = append(out, *snapshot(d))
	}
	return out
}

// promoteLocked pops the queue head into the active slot and builds the
// presentation event. Caller holds e.mu and emits the returned event
// after unlocking. Returns nil if the queue is empty.
func (e *Engine) promoteLocked() *Event {
	if len(e.queue) == 0 {
		return &Event{Type: EventQueueEmpty}
	}

	d := e.queue[0]
	e.queue = e.queue[1:]
	d.Status = model.StatusPresenting
	e.active = d

	tag := entranceTag(d, e.animSeq)
	e.animSeq++
	e.activeTag = tag

	return &Event{Type: EventPresented, Decision: snapshot(d), Animation: tag}
}

// advanceLocked clears the active slot and promotes the next pending
// item. Caller holds e.mu and emits the returned event after unlocking.
func (e *Engine) advanceLocked() *Event {
	e.active = nil
	return e.promoteLocked()
}

// snapshot returns a defensive copy of a decision for callers outside
// the mutex.
func snapshot(d *model.Decision) *model.Decision {
	if d == nil {
		return nil
	}
	cp := *d
	if d.Response != nil {
		r := *d.Response
		cp.Response = &r
	}
	return &cp
}

// activeLocked returns the presenting decision after checking the
// caller's view is not stale. decisionID may be empty to mean "whatever
// is active".
func (e *Engine) activeLocked(decisionID string) (*model.Decision, error) {
	if e.active == nil {
		return nil, ErrNoActiveDecision
	}
	if decisionID != "" && decisionID != e.active.ID {
		return nil, fmt.Errorf("%w: %s is not presenting", ErrStaleDecision, decisionID)
	}
	return e.active, nil
}
