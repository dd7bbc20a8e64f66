package seal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mhalvorsen/vouchsafe/internal/model"
)

// defaultRecentCap bounds the quick-inspection session log.
const defaultRecentCap = 100

// Config holds seal store configuration.
type Config struct {
	// Path is the SQLite database file.
	Path string
	// JournalPath, when set, mirrors every seal into a hash-chained
	// JSONL journal for offline inspection.
	JournalPath string
	// RecentCap bounds Recent(); zero means the default (100).
	RecentCap int
}

// Store is the append-only persistence layer for sealed records.
// Safe for concurrent use; reads of existing records never block seals.
type Store struct {
	db        *sql.DB
	journal   *Journal
	recentCap int

	mu    sync.Mutex
	stats SessionStats
}

// Open creates or opens a seal store at the configured path.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("seal: database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0750); err != nil {
		return nil, fmt.Errorf("seal: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+cfg.Path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("seal: open database: %w", err)
	}

	recentCap := cfg.RecentCap
	if recentCap <= 0 {
		recentCap = defaultRecentCap
	}

	s := &Store{
		db:        db,
		recentCap: recentCap,
		stats:     SessionStats{StartedAt: time.Now().UTC()},
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seal: init schema: %w", err)
	}

	if cfg.JournalPath != "" {
		j, err := OpenJournal(cfg.JournalPath)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("seal: open journal: %w", err)
		}
		s.journal = j
	}

	return s, nil
}

// Close releases the database and journal.
func (s *Store) Close() error {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.db.Close()
			return err
		}
	}
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sealed_records (
		decision_id   TEXT PRIMARY KEY,
		status        TEXT NOT NULL,
		agent_id      TEXT NOT NULL,
		action        TEXT NOT NULL,
		proposal_json TEXT NOT NULL,
		intent        TEXT,
		response_json TEXT,
		revision_text TEXT,
		align_value   REAL NOT NULL,
		align_label   TEXT NOT NULL,
		elapsed_ms    INTEGER NOT NULL,
		policy_note   TEXT,
		admitted_at   DATETIME NOT NULL,
		sealed_at     DATETIME NOT NULL,
		counters_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sealed_status ON sealed_records(status);
	CREATE INDEX IF NOT EXISTS idx_sealed_agent ON sealed_records(agent_id);
	CREATE INDEX IF NOT EXISTS idx_sealed_at ON sealed_records(sealed_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Seal writes a record keyed by decision id. Writing twice for the same
// id returns ErrDuplicateSeal and leaves the existing record untouched.
// On success the record's Counters field holds the session tally at seal
// time, including this record.
func (s *Store) Seal(rec *Record) error {
	if rec.DecisionID == "" {
		return fmt.Errorf("seal: record missing decision id")
	}
	if !rec.Status.Terminal() {
		return fmt.Errorf("seal: status %q is not terminal", rec.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM sealed_records WHERE decision_id = ?`, rec.DecisionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("seal: check existing: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: decision %s", ErrDuplicateSeal, rec.DecisionID)
	}

	next := s.stats.Counters
	switch rec.Status {
	case model.StatusAccepted:
		next.Accepted++
	case model.StatusRejected:
		next.Rejected++
	case model.StatusWhispered:
		next.Whispered++
	case model.StatusExpired:
		next.Expired++
	}
	rec.Counters = next

	proposalJSON, err := json.Marshal(rec.Proposal)
	if err != nil {
		return fmt.Errorf("seal: marshal proposal: %w", err)
	}
	var responseJSON []byte
	if rec.Response != nil {
		responseJSON, err = json.Marshal(rec.Response)
		if err != nil {
			return fmt.Errorf("seal: marshal response: %w", err)
		}
	}
	countersJSON, err := json.Marshal(rec.Counters)
	if err != nil {
		return fmt.Errorf("seal: marshal counters: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO sealed_records (
			decision_id, status, agent_id, action, proposal_json,
			intent, response_json, revision_text, align_value, align_label,
			elapsed_ms, policy_note, admitted_at, sealed_at, counters_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.DecisionID, string(rec.Status), rec.Proposal.AgentID, rec.Proposal.Action, string(proposalJSON),
		string(rec.Intent), nullable(responseJSON), rec.RevisionText, rec.Alignment.Value, rec.Alignment.Label,
		rec.ElapsedMS, rec.PolicyNote, rec.AdmittedAt.UTC(), rec.SealedAt.UTC(), string(countersJSON),
	)
	if err != nil {
		return fmt.Errorf("seal: insert record: %w", err)
	}

	// Commit the counter increment only after the write landed.
	s.stats.Counters = next

	if s.journal != nil {
		if err := s.journal.Append(rec); err != nil {
			// The sqlite row is authoritative; a journal failure is
			// reported but does not unseal the decision.
			return fmt.Errorf("seal: journal append: %w", err)
		}
	}

	return nil
}

// Stats returns the current session aggregate. O(1).
func (s *Store) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Get returns the sealed record for a decision id, or nil if absent.
func (s *Store) Get(decisionID string) (*Record, error) {
	rows, err := s.db.Query(selectColumns+` WHERE decision_id = ?`, decisionID)
	if err != nil {
		return nil, fmt.Errorf("seal: query record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	rec, err := scanRecord(rows)
	if err != nil {
		return nil, err
	}
	return rec, rows.Err()
}

// Recent returns up to n most recently sealed records, newest first.
// n is capped at the configured bound.
func (s *Store) Recent(n int) ([]Record, error) {
	if n <= 0 || n > s.recentCap {
		n = s.recentCap
	}

	rows, err := s.db.Query(selectColumns+` ORDER BY sealed_at DESC, decision_id LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("seal: query recent: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

const selectColumns = `
	SELECT decision_id, status, proposal_json, intent, response_json,
	       revision_text, align_value, align_label, elapsed_ms,
	       policy_note, admitted_at, sealed_at, counters_json
	FROM sealed_records`

func scanRecord(rows *sql.Rows) (*Record, error) {
	var rec Record
	var status, intent string
	var proposalJSON, countersJSON string
	var responseJSON, revisionText, policyNote sql.NullString

	err := rows.Scan(
		&rec.DecisionID, &status, &proposalJSON, &intent, &responseJSON,
		&revisionText, &rec.Alignment.Value, &rec.Alignment.Label, &rec.ElapsedMS,
		&policyNote, &rec.AdmittedAt, &rec.SealedAt, &countersJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("seal: scan record: %w", err)
	}

	rec.Status = model.Status(status)
	rec.Intent = model.Intent(intent)
	rec.RevisionText = revisionText.String
	rec.PolicyNote = policyNote.String

	if err := json.Unmarshal([]byte(proposalJSON), &rec.Proposal); err != nil {
		return nil, fmt.Errorf("seal: unmarshal proposal: %w", err)
	}
	if responseJSON.Valid && responseJSON.String != "" {
		var resp model.Response
		if err := json.Unmarshal([]byte(responseJSON.String), &resp); err != nil {
			return nil, fmt.Errorf("seal: unmarshal response: %w", err)
		}
		rec.Response = &resp
	}
	if err := json.Unmarshal([]byte(countersJSON), &rec.Counters); err != nil {
		return nil, fmt.Errorf("seal: unmarshal counters: %w", err)
	}

	return &rec, nil
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
