package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mhalvorsen/vouchsafe/internal/align"
	"github.com/mhalvorsen/vouchsafe/internal/model"
	"github.com/mhalvorsen/vouchsafe/internal/seal"
)

// Policy notes attached to forced outcomes.
const (
	noteDeferLimit = "exceeded deferral limit"
	noteNoRevision = "no alternative supplied"
)

// HandleInput classifies a raw input event and applies the resulting
// intent to the presenting decision. decisionID may be empty to target
// whatever is active; a non-empty id that does not match fails with
// ErrStaleDecision. Returns the resolved intent.
func (e *Engine) HandleInput(decisionID string, in model.RawInput) (model.Intent, error) {
	cls, err := e.classifier.Classify(in)
	if err != nil {
		return "", err
	}

	resp := &model.Response{
		Channel:    in.Channel,
		Descriptor: cls.Descriptor,
		Confidence: cls.Confidence,
		Intent:     cls.Intent,
		ReceivedAt: time.Now().UTC(),
	}
	return cls.Intent, e.Resolve(decisionID, cls.Intent, resp)
}

// Resolve applies an interpreted intent to the presenting decision.
// Unclear and question intents never transition the decision; everything
// else drives the state machine.
func (e *Engine) Resolve(decisionID string, it model.Intent, resp *model.Response) error {
	e.mu.Lock()

	d, err := e.activeLocked(decisionID)
	if err != nil {
		e.mu.Unlock()
		e.logger.Warn("resolve on non-presenting decision",
			zap.String("decision_id", decisionID),
			zap.Error(err))
		return err
	}

	if d.AwaitingRevision {
		e.mu.Unlock()
		return fmt.Errorf("decision %s is awaiting revision text", d.ID)
	}

	var events []Event
	switch it {
	case model.IntentAccept:
		events, err = e.sealLocked(d, model.StatusAccepted, resp, "", "")
	case model.IntentReject:
		events, err = e.sealLocked(d, model.StatusRejected, resp, "", "")
	case model.IntentWhisper:
		// Whisper holds the decision presenting until revision text
		// arrives via CompleteWhisper.
		d.AwaitingRevision = true
		d.Response = resp
		events = []Event{{Type: EventWhispered, Decision: snapshot(d), Note: "revision requested"}}
	case model.IntentDefer:
		events, err = e.deferLocked(d, resp)
	case model.IntentQuestion:
		events = []Event{{Type: EventQuestion, Decision: snapshot(d), Note: "context requested"}}
	case model.IntentUnclear:
		// Re-present unchanged and ask for re-input. Ambiguity never
		// becomes approval.
		events = []Event{
			{Type: EventPresented, Decision: snapshot(d), Animation: e.activeTag},
			{Type: EventInputUnclear, Decision: snapshot(d), Note: "input unclear, please respond again"},
		}
	default:
		err = fmt.Errorf("unknown intent %q", it)
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	for _, ev := range events {
		e.emitter.Emit(ev)
	}
	return nil
}

// CompleteWhisper supplies the revision text for a whisper in flight.
// Empty or missing text resolves the decision as rejected with a policy
// note rather than failing silently.
func (e *Engine) CompleteWhisper(decisionID, text string) error {
	e.mu.Lock()

	d, err := e.activeLocked(decisionID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if !d.AwaitingRevision {
		e.mu.Unlock()
		return fmt.Errorf("%w: decision %s", ErrNotAwaitingRevision, d.ID)
	}

	var events []Event
	text = strings.TrimSpace(text)
	if text == "" {
		events, err = e.sealLocked(d, model.StatusRejected, d.Response, "", noteNoRevision)
	} else {
		events, err = e.sealLocked(d, model.StatusWhispered, d.Response, text, "")
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	for _, ev := range events {
		e.emitter.Emit(ev)
	}
	return nil
}

// deferLocked re-queues the presenting decision at the tail, or forces
// a rejection once the deferral bound is exceeded.
func (e *Engine) deferLocked(d *model.Decision, resp *model.Response) ([]Event, error) {
	if d.DeferCount >= e.cfg.MaxDefers {
		e.logger.Warn("deferral limit exceeded, forcing rejection",
			zap.String("decision_id", d.ID),
			zap.Int("defer_count", d.DeferCount))
		return e.sealLocked(d, model.StatusRejected, resp, "", noteDeferLimit)
	}

	d.DeferCount++
	d.Status = model.StatusPending
	d.AwaitingRevision = false
	e.queue = append(e.queue, d)

	deferred := Event{Type: EventDeferred, Decision: snapshot(d)}
	next := e.advanceLocked()
	return []Event{deferred, *next}, nil
}

// sealLocked writes the terminal record, then — and only then — applies
// the terminal status and advances the queue. A decision whose seal
// write failed is never considered resolved; it stays presenting so the
// audit trail cannot be lost.
func (e *Engine) sealLocked(d *model.Decision, status model.Status, resp *model.Response, revision, note string) ([]Event, error) {
	now := time.Now().UTC()

	rec := &seal.Record{
		DecisionID:   d.ID,
		Status:       status,
		Proposal:     d.Proposal,
		Response:     resp,
		RevisionText: revision,
		Alignment:    align.Score(d.Proposal.Tone, d.Proposal.Drift),
		ElapsedMS:    now.Sub(d.AdmittedAt).Milliseconds(),
		PolicyNote:   note,
		AdmittedAt:   d.AdmittedAt,
		SealedAt:     now,
	}
	if resp != nil {
		rec.Intent = resp.Intent
	}

	if err := e.sealWithRetry(rec); err != nil {
		return nil, err
	}

	d.Status = status
	d.SealedAt = &now
	d.Response = resp
	d.RevisionText = revision
	d.PolicyNote = note
	d.AwaitingRevision = false

	events := []Event{{Type: terminalEvent(status), Decision: snapshot(d), Record: rec}}
	if status != model.StatusExpired {
		// The human act completed a reflection loop; expiry did not.
		events = append(events, Event{Type: EventAcknowledged, Decision: snapshot(d)})
	}

	// Drop the sealed decision from active memory and move on.
	if e.active == d {
		events = append(events, *e.advanceLocked())
	}
	return events, nil
}

// sealWithRetry attempts the seal write, retrying once on transient
// persistence failure. A DuplicateSeal on the first attempt is an
// internal-consistency violation and halts processing of the decision.
// A DuplicateSeal on the retry means the first write landed before
// failing on a secondary path, so the decision is sealed.
func (e *Engine) sealWithRetry(rec *seal.Record) error {
	err := e.store.Seal(rec)
	if err == nil {
		return nil
	}
	if errors.Is(err, seal.ErrDuplicateSeal) {
		e.logger.Error("duplicate seal: state machine invariant violated",
			zap.String("decision_id", rec.DecisionID),
			zap.Error(err))
		return err
	}

	e.logger.Warn("seal write failed, retrying once",
		zap.String("decision_id", rec.DecisionID),
		zap.Error(err))

	err = e.store.Seal(rec)
	if err == nil {
		return nil
	}
	if errors.Is(err, seal.ErrDuplicateSeal) {
		e.logger.Warn("seal landed on first attempt despite reported failure",
			zap.String("decision_id", rec.DecisionID))
		return nil
	}

	e.logger.Error("seal write failed after retry",
		zap.String("decision_id", rec.DecisionID),
		zap.Error(err))
	return fmt.Errorf("seal decision %s: %w", rec.DecisionID, err)
}

func terminalEvent(status model.Status) EventType {
	switch status {
	case model.StatusAccepted:
		return EventAccepted
	case model.StatusRejected:
		return EventRejected
	case model.StatusWhispered:
		return EventWhispered
	case model.StatusExpired:
		return EventExpired
	default:
		return EventAcknowledged
	}
}
