package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mhalvorsen/vouchsafe/internal/engine"
	"github.com/mhalvorsen/vouchsafe/internal/model"
	"github.com/mhalvorsen/vouchsafe/internal/seal"
)

// maxBodyBytes bounds request bodies; proposals and inputs are small.
const maxBodyBytes = 1 << 20

func (s *Server) handleAdmit(w http.ResponseWriter, r *http.Request) {
	var p model.Proposal
	if !s.decode(w, r, &p) {
		return
	}

	id, err := s.eng.Admit(p)
	if err != nil {
		if errors.Is(err, model.ErrInvalidProposal) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"decision_id": id})
}

// inputRequest carries one raw response event, optionally pinned to a
// specific decision id to detect stale clients.
type inputRequest struct {
	DecisionID string         `json:"decision_id,omitempty"`
	Input      model.RawInput `json:"input"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !s.decode(w, r, &req) {
		return
	}

	it, err := s.eng.HandleInput(req.DecisionID, req.Input)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNoActiveDecision), errors.Is(err, engine.ErrStaleDecision):
			s.writeError(w, http.StatusConflict, err)
		default:
			s.writeError(w, http.StatusBadRequest, err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"intent": string(it)})
}

type revisionRequest struct {
	DecisionID string `json:"decision_id"`
	Text       string `json:"text"`
}

func (s *Server) handleRevision(w http.ResponseWriter, r *http.Request) {
	var req revisionRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.eng.CompleteWhisper(req.DecisionID, req.Text); err != nil {
		switch {
		case errors.Is(err, engine.ErrNoActiveDecision),
			errors.Is(err, engine.ErrStaleDecision),
			errors.Is(err, engine.ErrNotAwaitingRevision):
			s.writeError(w, http.StatusConflict, err)
		default:
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "sealed"})
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	cur := s.eng.Current()
	if cur == nil {
		s.writeError(w, http.StatusNotFound, errors.New("queue is empty"))
		return
	}
	s.writeJSON(w, http.StatusOK, cur)
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	type pendingResponse struct {
		Current *model.Decision  `json:"current,omitempty"`
		Queued  []model.Decision `json:"queued"`
	}
	s.writeJSON(w, http.StatusOK, pendingResponse{
		Current: s.eng.Current(),
		Queued:  s.eng.Pending(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, errors.New("n must be an integer"))
			return
		}
		n = v
	}

	records, err := s.store.Recent(n)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []seal.Record{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
