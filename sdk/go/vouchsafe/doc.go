// Package vouchsafe provides an in-process human confirmation gate for
// Go agent frameworks. Agent code proposes actions; the host application
// feeds human input (swipes, taps, voice, biometrics); every outcome is
// sealed to an append-only record before the agent learns it.
//
// Usage:
//
//	gate, err := vouchsafe.New(vouchsafe.WithAgentID("research-bot"))
//	guarded := gate.Guard(sendEmail)
//	result, err := guarded(ctx, vouchsafe.Action{
//	    Summary: "send summary email to team@example.com",
//	})
//
// Guard blocks until the human resolves the proposal. The host wires
// its UI to Gate.Input and Gate.Revise to deliver that resolution.
//
// The SDK links directly against internal packages for zero-subprocess
// overhead. External users import github.com/mhalvorsen/vouchsafe/sdk/go/vouchsafe.
package vouchsafe
