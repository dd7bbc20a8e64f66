package model

import (
	"errors"
	"testing"
)

func TestProposalValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Proposal
		wantErr bool
	}{
		{"valid", Proposal{AgentID: "agent-1", Action: "archive old logs"}, false},
		{"missing agent", Proposal{Action: "archive old logs"}, true},
		{"missing action", Proposal{AgentID: "agent-1"}, true},
		{"whitespace action", Proposal{AgentID: "agent-1", Action: "   "}, true},
		{"empty", Proposal{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidProposal) {
				t.Errorf("expected ErrInvalidProposal, got %v", err)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusAccepted, StatusRejected, StatusWhispered, StatusExpired}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}

	live := []Status{StatusPending, StatusPresenting, StatusDeferred}
	for _, s := range live {
		if s.Terminal() {
			t.Errorf("expected %s to not be terminal", s)
		}
	}
}
