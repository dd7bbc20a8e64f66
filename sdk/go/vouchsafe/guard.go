package vouchsafe

import "context"

// ToolFunc is the function signature that Guard wraps.
type ToolFunc func(ctx context.Context, action Action) (any, error)

// Guard returns a ToolFunc that only calls fn after the human accepts
// the action. Rejection and expiry return *BlockedError; a whisper
// returns *RevisedError carrying the human's alternative.
func (g *Gate) Guard(fn ToolFunc, opts ...GuardOption) ToolFunc {
	return func(ctx context.Context, action Action) (any, error) {
		id, err := g.Propose(action, opts...)
		if err != nil {
			return nil, err
		}

		out, err := g.Await(ctx, id)
		if err != nil {
			return nil, err
		}

		switch out.Status {
		case Accepted:
			return fn(ctx, action)
		case Whispered:
			return nil, &RevisedError{Action: action, Text: out.RevisionText}
		default:
			return nil, &BlockedError{Action: action, Outcome: out}
		}
	}
}
