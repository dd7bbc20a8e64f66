package seal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mhalvorsen/vouchsafe/internal/model"
)

func journalRecord(id string) *Record {
	now := time.Now().UTC()
	return &Record{
		DecisionID: id,
		Status:     model.StatusAccepted,
		Proposal:   model.Proposal{AgentID: "agent-1", Action: "do the thing"},
		Intent:     model.IntentAccept,
		AdmittedAt: now,
		SealedAt:   now,
	}
}

func TestJournalChainVerifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")

	j, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	for _, id := range []string{"d-1", "d-2", "d-3"} {
		if err := j.Append(journalRecord(id)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	j.Close()

	res := VerifyJournal(path)
	if !res.Valid {
		t.Fatalf("expected valid chain, got error %q at line %d", res.Error, res.ErrorLine)
	}
	if res.Lines != 3 {
		t.Errorf("expected 3 lines, got %d", res.Lines)
	}
}

func TestJournalReopenContinuesChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")

	j, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	if err := j.Append(journalRecord("d-1")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	j.Close()

	j, err = OpenJournal(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := j.Append(journalRecord("d-2")); err != nil {
		t.Fatalf("Append after reopen failed: %v", err)
	}
	j.Close()

	res := VerifyJournal(path)
	if !res.Valid {
		t.Fatalf("expected valid chain after reopen, got %q at line %d", res.Error, res.ErrorLine)
	}
	if res.Lines != 2 {
		t.Errorf("expected 2 lines, got %d", res.Lines)
	}
}

func TestJournalDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")

	j, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	for _, id := range []string{"d-1", "d-2"} {
		if err := j.Append(journalRecord(id)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	j.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	tampered := strings.Replace(string(data), "do the thing", "do another thing", 1)
	if err := os.WriteFile(path, []byte(tampered), 0600); err != nil {
		t.Fatalf("write tampered journal: %v", err)
	}

	res := VerifyJournal(path)
	if res.Valid {
		t.Fatal("expected tampered chain to fail verification")
	}
	if res.ErrorLine != 2 {
		t.Errorf("expected break at line 2, got %d", res.ErrorLine)
	}
}
