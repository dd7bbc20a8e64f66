package model

import "errors"

// ErrInvalidProposal marks a malformed admission input. Rejected at the
// boundary, never queued.
var ErrInvalidProposal = errors.New("invalid proposal")
