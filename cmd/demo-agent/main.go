// demo-agent — a scripted agent that exercises a running vouchsafe
// daemon. It submits a small batch of proposals of varying risk and
// waits for the human to work through the queue, reporting each sealed
// outcome. Useful for demos and manual end-to-end testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mhalvorsen/vouchsafe/internal/client"
	"github.com/mhalvorsen/vouchsafe/internal/model"
)

const (
	red    = "\033[0;31m"
	green  = "\033[0;32m"
	cyan   = "\033[0;36m"
	yellow = "\033[1;33m"
	dim    = "\033[2m"
	reset  = "\033[0m"
)

// proposals is the scripted batch: routine work, a risky cleanup, and
// an outbound action, so every resolution path gets exercised.
var proposals = []model.Proposal{
	{
		AgentID: "demo-agent",
		Action:  "summarize today's error logs",
		Tone:    model.ToneEstimate{Label: "calm", Confidence: 0.9},
	},
	{
		AgentID: "demo-agent",
		Action:  "delete build artifacts older than 30 days",
		Tone:    model.ToneEstimate{Label: "focused", Confidence: 0.8},
		Drift:   model.DriftEstimate{Magnitude: 0.2},
	},
	{
		AgentID: "demo-agent",
		Action:  "email the weekly report to the whole team",
		Tone:    model.ToneEstimate{Label: "hesitant", Confidence: 0.7},
		Drift:   model.DriftEstimate{Magnitude: 0.5},
		Hints:   &model.Hints{Accent: "amber"},
	},
}

func main() {
	addr := flag.String("addr", "http://localhost:8474", "vouchsafe daemon address")
	timeout := flag.Duration("timeout", 10*time.Minute, "how long to wait for resolutions")
	flag.Parse()

	c := client.New(*addr)

	fmt.Printf("%sdemo-agent%s submitting %d proposals to %s\n\n", cyan, reset, len(proposals), *addr)

	pending := make(map[string]string, len(proposals))
	for _, p := range proposals {
		id, err := c.Admit(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%sFATAL%s submit failed: %v\n", red, reset, err)
			os.Exit(1)
		}
		pending[id] = p.Action
		fmt.Printf("  %s→%s %s  %s%s%s\n", dim, reset, id, dim, p.Action, reset)
	}

	fmt.Printf("\nwaiting for the human to work through the queue...\n\n")

	deadline := time.Now().Add(*timeout)
	for len(pending) > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Second)

		records, err := c.Recent(len(proposals) * 2)
		if err != nil {
			continue
		}
		for _, r := range records {
			action, ok := pending[r.DecisionID]
			if !ok {
				continue
			}
			delete(pending, r.DecisionID)
			report(r.DecisionID, action, string(r.Status), r.RevisionText, r.PolicyNote)
		}
	}

	if len(pending) > 0 {
		fmt.Printf("\n%s%d proposal(s) unresolved at timeout%s\n", yellow, len(pending), reset)
		os.Exit(1)
	}

	stats, err := c.Stats()
	if err == nil {
		fmt.Printf("\nsession: %d accepted, %d rejected, %d whispered, %d expired\n",
			stats.Accepted, stats.Rejected, stats.Whispered, stats.Expired)
	}
}

func report(id, action, status, revision, note string) {
	color := yellow
	switch status {
	case "accepted":
		color = green
	case "rejected", "expired":
		color = red
	}
	fmt.Printf("  %s%-9s%s %s  %s%s%s\n", color, status, reset, id, dim, action, reset)
	if revision != "" {
		fmt.Printf("            %srevision: %s%s\n", cyan, revision, reset)
	}
	if note != "" {
		fmt.Printf("            %snote: %s%s\n", dim, note, reset)
	}
}
