package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mhalvorsen/vouchsafe/internal/model"
	"github.com/mhalvorsen/vouchsafe/internal/seal"
)

// Sweep expires queued decisions older than the configured maximum age.
// The presenting decision is never touched, even past its age — yanking
// the item mid-interaction is the renderer's problem to surface, not
// ours to force. Returns the number of decisions expired.
func (e *Engine) Sweep() int {
	cutoff := time.Now().UTC().Add(-e.cfg.MaxPendingAge)

	e.mu.Lock()
	var kept []*model.Decision
	var events []Event
	var expired int

	for _, d := range e.queue {
		if !d.AdmittedAt.Before(cutoff) {
			kept = append(kept, d)
			continue
		}

		evs, err := e.sealLocked(d, model.StatusExpired, nil, "", "")
		if err != nil {
			if errors.Is(err, seal.ErrDuplicateSeal) {
				// Already sealed on a prior pass that failed late;
				// drop it from the queue rather than retrying forever.
				e.logger.Warn("expired decision already sealed, dropping",
					zap.String("decision_id", d.ID))
				expired++
				continue
			}
			// Seal failed; keep it queued and retry next sweep.
			e.logger.Error("expire seal failed, keeping decision queued",
				zap.String("decision_id", d.ID),
				zap.Error(err))
			kept = append(kept, d)
			continue
		}

		events = append(events, evs...)
		expired++
	}
	e.queue = kept
	e.mu.Unlock()

	for _, ev := range events {
		e.emitter.Emit(ev)
	}

	if expired > 0 {
		e.logger.Info("expired stale decisions", zap.Int("count", expired))
	}
	return expired
}

// RunSweeper runs Sweep on the configured interval until ctx is
// cancelled. Owned by the process, independent of admit/resolve traffic.
func (e *Engine) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sweep()
		}
	}
}
