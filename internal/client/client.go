// Package client is a thin HTTP client for a running vouchsafe daemon.
// Used by the CLI commands; collaborator agents can use it too.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mhalvorsen/vouchsafe/internal/model"
	"github.com/mhalvorsen/vouchsafe/internal/seal"
)

const requestTimeout = 5 * time.Second

// Client talks to a vouchsafe daemon over its JSON API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the daemon at the given base URL,
// e.g. "http://localhost:8474".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Admit submits a proposal and returns the assigned decision id.
func (c *Client) Admit(p model.Proposal) (string, error) {
	var out struct {
		DecisionID string `json:"decision_id"`
	}
	if err := c.post("/v1/proposals", p, &out); err != nil {
		return "", err
	}
	return out.DecisionID, nil
}

// SendInput submits a raw response event and returns the classified intent.
// decisionID may be empty to target whatever is currently presenting.
func (c *Client) SendInput(decisionID string, input model.RawInput) (model.Intent, error) {
	req := struct {
		DecisionID string         `json:"decision_id,omitempty"`
		Input      model.RawInput `json:"input"`
	}{DecisionID: decisionID, Input: input}

	var out struct {
		Intent string `json:"intent"`
	}
	if err := c.post("/v1/input", req, &out); err != nil {
		return "", err
	}
	return model.Intent(out.Intent), nil
}

// SendRevision supplies the revision text for a decision awaiting one.
func (c *Client) SendRevision(decisionID, text string) error {
	req := struct {
		DecisionID string `json:"decision_id"`
		Text       string `json:"text"`
	}{DecisionID: decisionID, Text: text}
	return c.post("/v1/revision", req, nil)
}

// Current returns the presenting decision, or nil when the queue is empty.
func (c *Client) Current() (*model.Decision, error) {
	var d model.Decision
	err := c.get("/v1/current", &d)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// Pending returns the presenting decision plus the queued tail.
func (c *Client) Pending() (*model.Decision, []model.Decision, error) {
	var out struct {
		Current *model.Decision  `json:"current"`
		Queued  []model.Decision `json:"queued"`
	}
	if err := c.get("/v1/pending", &out); err != nil {
		return nil, nil, err
	}
	return out.Current, out.Queued, nil
}

// Stats returns the daemon's session counters.
func (c *Client) Stats() (seal.SessionStats, error) {
	var s seal.SessionStats
	err := c.get("/v1/stats", &s)
	return s, err
}

// Recent returns up to n most recent sealed records.
func (c *Client) Recent(n int) ([]seal.Record, error) {
	var records []seal.Record
	err := c.get(fmt.Sprintf("/v1/records/recent?n=%d", n), &records)
	return records, err
}

// APIError is a non-2xx response from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Message)
}

func (c *Client) post(path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(path string, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = string(raw)
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
