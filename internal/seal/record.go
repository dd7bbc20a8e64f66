// Package seal persists the immutable outcome of resolved decisions.
// Records are append-only: a decision id is sealed exactly once, and the
// store rejects re-writes rather than overwriting history.
package seal

import (
	"errors"
	"time"

	"github.com/mhalvorsen/vouchsafe/internal/align"
	"github.com/mhalvorsen/vouchsafe/internal/model"
)

// ErrDuplicateSeal marks an attempt to seal an already-sealed decision id.
// The state machine's single-transition invariant means this should never
// happen; the store defends against it anyway.
var ErrDuplicateSeal = errors.New("duplicate seal")

// Counters are the session aggregate counts, incremented exactly once
// per sealed decision.
type Counters struct {
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Whispered int `json:"whispered"`
	Expired   int `json:"expired"`
}

// SessionStats is the process-scoped aggregate. Reset on process restart.
type SessionStats struct {
	Counters
	StartedAt time.Time `json:"started_at"`
}

// Record is the sealed, audit-ready outcome of a terminal decision.
// Never mutated after creation.
type Record struct {
	DecisionID   string          `json:"decision_id"`
	Status       model.Status    `json:"status"`
	Proposal     model.Proposal  `json:"proposal"`
	Intent       model.Intent    `json:"intent,omitempty"`
	Response     *model.Response `json:"response,omitempty"`
	RevisionText string          `json:"revision_text,omitempty"`
	Alignment    align.Result    `json:"alignment"`
	ElapsedMS    int64           `json:"elapsed_ms"`
	PolicyNote   string          `json:"policy_note,omitempty"`
	AdmittedAt   time.Time       `json:"admitted_at"`
	SealedAt     time.Time       `json:"sealed_at"`

	// Counters is the running session tally at seal time, including
	// this record.
	Counters Counters `json:"counters"`
}
