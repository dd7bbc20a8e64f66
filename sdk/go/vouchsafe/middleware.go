package vouchsafe

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Middleware returns an http.Handler that holds each request until the
// human confirms it. Intended for low-volume outbound surfaces an agent
// drives, not general traffic: every request queues a proposal and
// blocks on resolution. Blocked requests receive a 403 with a JSON body.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := actionFromRequest(r)

		id, err := g.Propose(action)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		out, err := g.Await(r.Context(), id)
		if err != nil {
			http.Error(w, "confirmation cancelled", http.StatusGatewayTimeout)
			return
		}

		if !out.Accepted() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]any{
				"blocked":       true,
				"status":        string(out.Status),
				"policy_note":   out.PolicyNote,
				"revision_text": out.RevisionText,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// actionFromRequest maps an HTTP request to an SDK Action.
func actionFromRequest(r *http.Request) Action {
	resource := r.URL.String()
	if r.URL.Host == "" && r.Host != "" {
		resource = r.Host + r.URL.RequestURI()
	}

	return Action{
		Summary: fmt.Sprintf("%s %s", r.Method, resource),
		Context: map[string]any{
			"method": r.Method,
			"host":   r.Host,
			"bytes":  r.ContentLength,
		},
	}
}
