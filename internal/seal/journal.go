package seal

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// GenesisHash is the prev_hash for the first entry in a new journal.
const GenesisHash = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// Entry is one journal line. Each entry's PrevHash is the hash of the
// previous line's JSON, forming a tamper-evident chain.
type Entry struct {
	Timestamp  string `json:"ts"`
	DecisionID string `json:"decision_id"`
	Status     string `json:"status"`
	Intent     string `json:"intent,omitempty"`
	AgentID    string `json:"agent_id"`
	Action     string `json:"action"`
	AlignLabel string `json:"align_label"`
	ElapsedMS  int64  `json:"elapsed_ms"`
	PolicyNote string `json:"policy_note,omitempty"`
	PrevHash   string `json:"prev_hash"`
}

// Journal is an append-only JSONL mirror of sealed records with SHA-256
// hash chaining for offline tamper detection.
type Journal struct {
	path     string
	file     *os.File
	prevHash string
}

// OpenJournal opens (or creates) a journal for appending. If the file
// already exists, it reads the last line to recover the chain tail.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("journal: create directory: %w", err)
	}

	prevHash := GenesisHash
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("journal: read existing: %w", err)
		}
		scanner := bufio.NewScanner(f)
		var lastLine []byte
		for scanner.Scan() {
			lastLine = make([]byte, len(scanner.Bytes()))
			copy(lastLine, scanner.Bytes())
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("journal: scan existing: %w", err)
		}
		if len(lastLine) > 0 {
			prevHash = HashLine(lastLine)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("journal: open file: %w", err)
	}

	return &Journal{path: path, file: file, prevHash: prevHash}, nil
}

// Append writes one entry for a sealed record and syncs to disk.
// Callers serialize; the store's seal mutex covers this.
func (j *Journal) Append(rec *Record) error {
	entry := Entry{
		Timestamp:  time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		DecisionID: rec.DecisionID,
		Status:     string(rec.Status),
		Intent:     string(rec.Intent),
		AgentID:    rec.Proposal.AgentID,
		Action:     rec.Proposal.Action,
		AlignLabel: rec.Alignment.Label,
		ElapsedMS:  rec.ElapsedMS,
		PolicyNote: rec.PolicyNote,
		PrevHash:   j.prevHash,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("journal: marshal entry: %w", err)
	}
	if _, err := j.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("journal: write entry: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("journal: sync: %w", err)
	}

	j.prevHash = HashLine(line)
	return nil
}

// Close flushes and closes the underlying file.
func (j *Journal) Close() error {
	return j.file.Close()
}

// HashLine returns "sha256:<hex>" of the given bytes.
func HashLine(line []byte) string {
	h := sha256.Sum256(line)
	return "sha256:" + hex.EncodeToString(h[:])
}

// VerifyResult holds the outcome of a journal chain verification.
type VerifyResult struct {
	Valid     bool   `json:"valid"`
	Lines     int    `json:"lines"`
	Error     string `json:"error,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
}

// VerifyJournal reads a JSONL journal and validates the hash chain.
// Returns Valid=true if the chain is intact, or details about the first
// broken link.
func VerifyJournal(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	var prevLine []byte

	for scanner.Scan() {
		lineNum++
		raw := scanner.Bytes()
		line := make([]byte, len(raw))
		copy(line, raw)

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return VerifyResult{Error: fmt.Sprintf("parse error: %v", err), ErrorLine: lineNum}
		}

		if lineNum == 1 {
			if entry.PrevHash != GenesisHash {
				return VerifyResult{
					Error:     fmt.Sprintf("first entry prev_hash is %q, expected genesis hash", entry.PrevHash),
					ErrorLine: 1,
				}
			}
		} else if entry.PrevHash != HashLine(prevLine) {
			return VerifyResult{
				Error:     fmt.Sprintf("hash mismatch at line %d", lineNum),
				ErrorLine: lineNum,
			}
		}

		prevLine = line
	}

	if err := scanner.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}
	return VerifyResult{Valid: true, Lines: lineNum}
}
