package vouchsafe

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestGate(t *testing.T, opts ...Option) *Gate {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{
		WithAgentID("test-agent"),
		WithConfig(filepath.Join(dir, "no-config.yaml")),
		WithStorePaths(filepath.Join(dir, "seals.db"), filepath.Join(dir, "journal.jsonl")),
	}, opts...)
	g, err := New(opts...)
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

// resolveWhenPresented waits for a decision to present, then feeds input.
func resolveWhenPresented(t *testing.T, g *Gate, in Input) {
	t.Helper()
	go func() {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if g.Current() != nil {
				g.Input("", in)
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
}

func TestProposeAndAwait(t *testing.T) {
	g := newTestGate(t)

	id, err := g.Propose(Action{Summary: "send report"})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	resolveWhenPresented(t, g, Swipe("right", 150))

	out, err := g.Await(context.Background(), id)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if !out.Accepted() {
		t.Errorf("expected accepted, got %s", out.Status)
	}
	if out.DecisionID != id {
		t.Errorf("outcome for wrong decision: %s", out.DecisionID)
	}
}

func TestAwaitCancelled(t *testing.T) {
	g := newTestGate(t)

	id, err := g.Propose(Action{Summary: "never resolved"})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := g.Await(ctx, id); err == nil {
		t.Fatal("expected context error")
	}
}

func TestCurrentView(t *testing.T) {
	g := newTestGate(t)

	if g.Current() != nil {
		t.Fatal("expected empty queue")
	}

	id, err := g.Propose(Action{Summary: "first action"})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	cur := g.Current()
	if cur == nil {
		t.Fatal("expected presenting decision")
	}
	if cur.DecisionID != id || cur.Summary != "first action" || cur.AgentID != "test-agent" {
		t.Errorf("unexpected view: %+v", cur)
	}
}

func TestStatsCountOutcomes(t *testing.T) {
	g := newTestGate(t)

	id, _ := g.Propose(Action{Summary: "one"})
	if _, err := g.Input("", Swipe("left", 150)); err != nil {
		t.Fatalf("Input failed: %v", err)
	}

	out, err := g.Await(context.Background(), id)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if out.Status != Rejected {
		t.Errorf("expected rejected, got %s", out.Status)
	}

	s := g.Stats()
	if s.Rejected != 1 {
		t.Errorf("expected 1 rejection, got %d", s.Rejected)
	}
}

func TestAwaitAfterSealStillResolves(t *testing.T) {
	// A waiter registered before resolution must receive the outcome even
	// when input arrives between Propose and Await.
	g := newTestGate(t)

	id, _ := g.Propose(Action{Summary: "quick"})

	done := make(chan Outcome, 1)
	go func() {
		out, err := g.Await(context.Background(), id)
		if err == nil {
			done <- out
		}
	}()

	// Give the waiter a moment to register.
	time.Sleep(20 * time.Millisecond)
	if _, err := g.Input("", Swipe("right", 150)); err != nil {
		t.Fatalf("Input failed: %v", err)
	}

	select {
	case out := <-done:
		if out.Status != Accepted {
			t.Errorf("expected accepted, got %s", out.Status)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Await never resolved")
	}
}

func TestReviseCompletesWhisper(t *testing.T) {
	g := newTestGate(t)

	id, _ := g.Propose(Action{Summary: "bulk delete"})
	it, err := g.Input("", Swipe("up", 120))
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if it != "whisper" {
		t.Fatalf("expected whisper intent, got %s", it)
	}

	done := make(chan Outcome, 1)
	go func() {
		out, _ := g.Await(context.Background(), id)
		done <- out
	}()
	time.Sleep(20 * time.Millisecond)

	if err := g.Revise(id, "delete only archived items"); err != nil {
		t.Fatalf("Revise failed: %v", err)
	}

	select {
	case out := <-done:
		if out.Status != Whispered {
			t.Errorf("expected whispered, got %s", out.Status)
		}
		if out.RevisionText != "delete only archived items" {
			t.Errorf("unexpected revision %q", out.RevisionText)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Await never resolved")
	}
}
