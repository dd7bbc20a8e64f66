package engine

import "errors"

// ErrNoActiveDecision marks a resolve call when nothing is presenting.
// Non-fatal; the caller should re-fetch Current().
var ErrNoActiveDecision = errors.New("no active decision")

// ErrStaleDecision marks a resolve call naming a decision that is not
// the one currently presenting. Non-fatal; the caller should re-fetch
// Current().
var ErrStaleDecision = errors.New("stale decision")

// ErrNotAwaitingRevision marks a revision-completion call for a decision
// that has no whisper in flight.
var ErrNotAwaitingRevision = errors.New("decision is not awaiting revision")
