package engine

import (
	"testing"
	"time"

	"github.com/mhalvorsen/vouchsafe/internal/model"
)

// backdate rewinds a queued decision's admission time. Test-only reach
// into engine internals.
func backdate(e *Engine, id string, d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active != nil && e.active.ID == id {
		e.active.AdmittedAt = e.active.AdmittedAt.Add(-d)
		return
	}
	for _, dec := range e.queue {
		if dec.ID == id {
			dec.AdmittedAt = dec.AdmittedAt.Add(-d)
		}
	}
}

func TestSweepExpiresStalePending(t *testing.T) {
	e, store, emitter := newTestEngine(t)

	activeID, _ := e.Admit(proposal("A", "first"))
	staleID, _ := e.Admit(proposal("A", "second"))

	backdate(e, staleID, 10*time.Minute)

	expired := e.Sweep()
	if expired != 1 {
		t.Fatalf("expected 1 expiry, got %d", expired)
	}

	rec := store.get(staleID)
	if rec == nil || rec.Status != model.StatusExpired {
		t.Fatalf("expected expired record, got %+v", rec)
	}
	if store.stats().Expired != 1 {
		t.Errorf("expected expired counter 1, got %d", store.stats().Expired)
	}
	if emitter.last(EventExpired) == nil {
		t.Error("expected an expiration notice")
	}

	// The active decision is untouched.
	cur := e.Current()
	if cur == nil || cur.ID != activeID {
		t.Error("sweep must not disturb the presenting decision")
	}
	if len(e.Pending()) != 0 {
		t.Error("expired decision must leave the queue")
	}
}

func TestSweepNeverExpiresPresentingItem(t *testing.T) {
	e, store, _ := newTestEngine(t)

	id, _ := e.Admit(proposal("A", "do X"))
	backdate(e, id, time.Hour)

	if n := e.Sweep(); n != 0 {
		t.Fatalf("expected 0 expiries, got %d", n)
	}

	cur := e.Current()
	if cur == nil || cur.ID != id || cur.Status != model.StatusPresenting {
		t.Fatal("presenting decision must survive the sweep regardless of age")
	}
	if store.get(id) != nil {
		t.Error("no record must be sealed for the presenting decision")
	}
}

func TestSweepKeepsFreshPending(t *testing.T) {
	e, store, _ := newTestEngine(t)

	e.Admit(proposal("A", "first"))
	freshID, _ := e.Admit(proposal("A", "second"))

	if n := e.Sweep(); n != 0 {
		t.Fatalf("expected 0 expiries, got %d", n)
	}
	if store.get(freshID) != nil {
		t.Error("fresh pending decision must not be expired")
	}
	if len(e.Pending()) != 1 {
		t.Error("fresh pending decision must stay queued")
	}
}

func TestSweepSealFailureKeepsDecisionQueued(t *testing.T) {
	e, store, _ := newTestEngine(t)

	e.Admit(proposal("A", "first"))
	staleID, _ := e.Admit(proposal("A", "second"))
	backdate(e, staleID, 10*time.Minute)

	store.failNext = 2 // both attempts fail
	if n := e.Sweep(); n != 0 {
		t.Fatalf("expected 0 expiries on seal failure, got %d", n)
	}
	if len(e.Pending()) != 1 {
		t.Fatal("decision must stay queued when its expiry seal failed")
	}

	// Next sweep succeeds.
	if n := e.Sweep(); n != 1 {
		t.Fatalf("expected 1 expiry on retry sweep, got %d", n)
	}
	if rec := store.get(staleID); rec == nil || rec.Status != model.StatusExpired {
		t.Fatal("expected expired record after retry sweep")
	}
}
