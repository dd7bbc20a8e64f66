package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhalvorsen/vouchsafe/internal/engine"
	"github.com/mhalvorsen/vouchsafe/internal/intent"
	"github.com/mhalvorsen/vouchsafe/internal/model"
	"github.com/mhalvorsen/vouchsafe/internal/seal"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := seal.Open(seal.Config{Path: filepath.Join(t.TempDir(), "seals.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	reg := intent.NewRegistry()
	reg.Register("pulse", intent.PulseHandler{})
	classifier := intent.NewClassifier(intent.DefaultConfig(), reg)

	eng := engine.New(engine.Config{}, classifier, store, nil, nil)
	srv := New(Config{}, eng, store, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func admitOne(t *testing.T, ts *httptest.Server, action string) string {
	t.Helper()
	resp := postJSON(t, ts, "/v1/proposals", model.Proposal{
		AgentID: "agent-1",
		Action:  action,
		Tone:    model.ToneEstimate{Label: "calm"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out map[string]string
	decodeBody(t, resp, &out)
	return out["decision_id"]
}

func TestAdmitAndAcceptFlow(t *testing.T) {
	ts := newTestServer(t)

	id := admitOne(t, ts, "do X")

	resp, err := http.Get(ts.URL + "/v1/current")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cur model.Decision
	decodeBody(t, resp, &cur)
	assert.Equal(t, id, cur.ID)
	assert.Equal(t, model.StatusPresenting, cur.Status)

	resp = postJSON(t, ts, "/v1/input", map[string]any{
		"input": model.RawInput{
			Channel: model.ChannelSwipe,
			Swipe:   &model.SwipeInput{Direction: "right", Distance: 150},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var intentOut map[string]string
	decodeBody(t, resp, &intentOut)
	assert.Equal(t, "accept", intentOut["intent"])

	resp, err = http.Get(ts.URL + "/v1/stats")
	require.NoError(t, err)
	var stats seal.SessionStats
	decodeBody(t, resp, &stats)
	assert.Equal(t, 1, stats.Accepted)
}

func TestAdmitInvalidProposalRejected(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/v1/proposals", model.Proposal{Action: "no agent"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestInputWithEmptyQueueConflicts(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/v1/input", map[string]any{
		"input": model.RawInput{
			Channel: model.ChannelSwipe,
			Swipe:   &model.SwipeInput{Direction: "right", Distance: 150},
		},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestStaleDecisionIDConflicts(t *testing.T) {
	ts := newTestServer(t)

	admitOne(t, ts, "do X")
	resp := postJSON(t, ts, "/v1/input", map[string]any{
		"decision_id": "stale-id",
		"input": model.RawInput{
			Channel: model.ChannelSwipe,
			Swipe:   &model.SwipeInput{Direction: "right", Distance: 150},
		},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestWhisperRevisionFlow(t *testing.T) {
	ts := newTestServer(t)

	id := admitOne(t, ts, "archive all logs")

	resp := postJSON(t, ts, "/v1/input", map[string]any{
		"input": model.RawInput{
			Channel: model.ChannelSwipe,
			Swipe:   &model.SwipeInput{Direction: "up", Distance: 120},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts, "/v1/revision", map[string]string{
		"decision_id": id,
		"text":        "archive logs older than 90 days",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/v1/records/recent?n=10")
	require.NoError(t, err)
	var records []seal.Record
	decodeBody(t, resp, &records)
	require.Len(t, records, 1)
	assert.Equal(t, model.StatusWhispered, records[0].Status)
	assert.Equal(t, "archive logs older than 90 days", records[0].RevisionText)
}

func TestRevisionWithoutWhisperConflicts(t *testing.T) {
	ts := newTestServer(t)

	id := admitOne(t, ts, "do X")
	resp := postJSON(t, ts, "/v1/revision", map[string]string{
		"decision_id": id,
		"text":        "irrelevant",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestCurrentEmptyQueue(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/current")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestPendingListsQueueInOrder(t *testing.T) {
	ts := newTestServer(t)

	first := admitOne(t, ts, "first")
	second := admitOne(t, ts, "second")
	third := admitOne(t, ts, "third")

	resp, err := http.Get(ts.URL + "/v1/pending")
	require.NoError(t, err)
	var out struct {
		Current *model.Decision  `json:"current"`
		Queued  []model.Decision `json:"queued"`
	}
	decodeBody(t, resp, &out)

	require.NotNil(t, out.Current)
	assert.Equal(t, first, out.Current.ID)
	require.Len(t, out.Queued, 2)
	assert.Equal(t, second, out.Queued[0].ID)
	assert.Equal(t, third, out.Queued[1].ID)
	for i, d := range out.Queued {
		assert.Equalf(t, model.StatusPending, d.Status, "queued[%d]", i)
	}
}

func TestRecentBadQuery(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/records/recent?n=abc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestFullSessionScenario(t *testing.T) {
	ts := newTestServer(t)

	// Three proposals: accept, reject via tap, low-confidence voice then reject.
	admitOne(t, ts, "first")
	admitOne(t, ts, "second")
	admitOne(t, ts, "third")

	resp := postJSON(t, ts, "/v1/input", map[string]any{
		"input": model.RawInput{Channel: model.ChannelSwipe, Swipe: &model.SwipeInput{Direction: "right", Distance: 150}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts, "/v1/input", map[string]any{
		"input": model.RawInput{Channel: model.ChannelTap, Tap: &model.TapInput{X: 0.1, Y: 0.5}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Low-confidence voice keeps the third presenting.
	resp = postJSON(t, ts, "/v1/input", map[string]any{
		"input": model.RawInput{Channel: model.ChannelVoice, Voice: &model.VoiceInput{Transcript: "yes do it", Confidence: 0.4}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	decodeBody(t, resp, &out)
	assert.Equal(t, "unclear", out["intent"])

	resp = postJSON(t, ts, "/v1/input", map[string]any{
		"input": model.RawInput{Channel: model.ChannelVoice, Voice: &model.VoiceInput{Transcript: "no cancel that", Confidence: 0.95}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/v1/stats")
	require.NoError(t, err)
	var stats seal.SessionStats
	decodeBody(t, resp, &stats)
	assert.Equal(t, 1, stats.Accepted)
	assert.Equal(t, 2, stats.Rejected)
}
