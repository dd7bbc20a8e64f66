package vouchsafe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mhalvorsen/vouchsafe/internal/config"
	"github.com/mhalvorsen/vouchsafe/internal/engine"
	"github.com/mhalvorsen/vouchsafe/internal/intent"
	"github.com/mhalvorsen/vouchsafe/internal/seal"
)

// Gate holds an in-process confirmation engine. Thread-safe for
// concurrent proposals; resolution still happens one decision at a time.
type Gate struct {
	cfg   gateConfig
	eng   *engine.Engine
	store *seal.Store

	mu      sync.Mutex
	waiters map[string][]chan Outcome
}

// New creates a Gate with the given options.
func New(opts ...Option) (*Gate, error) {
	gcfg := gateConfig{agentID: "sdk"}
	for _, o := range opts {
		o(&gcfg)
	}

	cfg, err := config.Load(gcfg.configPath)
	if err != nil {
		return nil, fmt.Errorf("vouchsafe: failed to load config: %w", err)
	}
	if gcfg.dbPath != "" {
		cfg.Store.DBPath = gcfg.dbPath
		cfg.Store.JournalPath = gcfg.journalPath
	}
	if gcfg.maxDefers != 0 {
		cfg.Engine.MaxDefers = gcfg.maxDefers
	}
	if gcfg.maxPendingAge != 0 {
		cfg.Engine.MaxPendingAge = gcfg.maxPendingAge
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.DBPath), 0700); err != nil {
		return nil, fmt.Errorf("vouchsafe: failed to create data directory: %w", err)
	}
	store, err := seal.Open(seal.Config{
		Path:        cfg.Store.DBPath,
		JournalPath: cfg.Store.JournalPath,
		RecentCap:   cfg.Store.RecentCap,
	})
	if err != nil {
		return nil, fmt.Errorf("vouchsafe: failed to open seal store: %w", err)
	}

	registry := intent.NewRegistry()
	registry.Register("pulse", intent.PulseHandler{})
	classifier := intent.NewClassifier(cfg.Intent, registry)

	g := &Gate{
		cfg:     gcfg,
		store:   store,
		waiters: make(map[string][]chan Outcome),
	}
	g.eng = engine.New(engine.Config{
		MaxDefers:     cfg.Engine.MaxDefers,
		MaxPendingAge: cfg.Engine.MaxPendingAge,
		SweepInterval: cfg.Engine.SweepInterval,
	}, classifier, store, engine.EmitterFunc(g.onEvent), nil)

	return g, nil
}

// Propose submits an action for confirmation and returns the decision id.
func (g *Gate) Propose(a Action, opts ...GuardOption) (string, error) {
	gc := guardConfig{agentID: g.cfg.agentID}
	for _, o := range opts {
		o(&gc)
	}
	return g.eng.Admit(a.toProposal(gc.agentID))
}

// Await blocks until the decision seals, or ctx is cancelled. Safe to
// call after the decision already resolved.
func (g *Gate) Await(ctx context.Context, decisionID string) (Outcome, error) {
	ch := make(chan Outcome, 1)

	g.mu.Lock()
	g.waiters[decisionID] = append(g.waiters[decisionID], ch)
	g.mu.Unlock()

	// The seal may have landed before this waiter registered.
	if rec, err := g.store.Get(decisionID); err == nil && rec != nil {
		g.onEvent(engine.Event{Record: rec})
	}

	select {
	case <-ctx.Done():
		g.mu.Lock()
		chans := g.waiters[decisionID]
		for i, c := range chans {
			if c == ch {
				g.waiters[decisionID] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		g.mu.Unlock()
		return Outcome{}, ctx.Err()
	case out := <-ch:
		return out, nil
	}
}

// Input delivers one human response event. Empty decisionID targets
// whatever is currently presenting. Returns the classified intent.
func (g *Gate) Input(decisionID string, in Input) (string, error) {
	it, err := g.eng.HandleInput(decisionID, in.raw)
	return string(it), err
}

// Revise supplies the revision text for a decision awaiting one.
func (g *Gate) Revise(decisionID, text string) error {
	return g.eng.CompleteWhisper(decisionID, text)
}

// Current returns a view of the presenting decision, or nil when the
// queue is empty.
func (g *Gate) Current() *Presented {
	d := g.eng.Current()
	if d == nil {
		return nil
	}
	return &Presented{
		DecisionID: d.ID,
		AgentID:    d.Proposal.AgentID,
		Summary:    d.Proposal.Action,
		AdmittedAt: d.AdmittedAt,
		DeferCount: d.DeferCount,
	}
}

// Stats returns the session counters.
func (g *Gate) Stats() Stats {
	s := g.store.Stats()
	return Stats{
		Accepted:  s.Accepted,
		Rejected:  s.Rejected,
		Whispered: s.Whispered,
		Expired:   s.Expired,
		StartedAt: s.StartedAt,
	}
}

// RunSweeper expires stale queued proposals until ctx is cancelled.
// Optional; without it nothing ever expires.
func (g *Gate) RunSweeper(ctx context.Context) {
	g.eng.RunSweeper(ctx)
}

// Close releases the seal store.
func (g *Gate) Close() error {
	return g.store.Close()
}

// onEvent resolves Await calls when a decision seals.
func (g *Gate) onEvent(e engine.Event) {
	if e.Record == nil || !e.Record.Status.Terminal() {
		return
	}

	out := Outcome{
		DecisionID:   e.Record.DecisionID,
		Status:       Status(e.Record.Status),
		Intent:       string(e.Record.Intent),
		RevisionText: e.Record.RevisionText,
		PolicyNote:   e.Record.PolicyNote,
		SealedAt:     e.Record.SealedAt,
	}

	g.mu.Lock()
	chans := g.waiters[out.DecisionID]
	delete(g.waiters, out.DecisionID)
	g.mu.Unlock()

	for _, ch := range chans {
		ch <- out
	}
}
