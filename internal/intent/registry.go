package intent

import (
	"fmt"
	"sync"
)

// HandlerResult is what a biometric handler extracts from raw modality data.
type HandlerResult struct {
	Gesture    string
	Metadata   map[string]any
	Confidence float64
}

// BiometricHandler interprets modality-specific data into a gesture.
// One implementation per biometric modality.
type BiometricHandler interface {
	Process(data map[string]any) (HandlerResult, error)
}

// Registry is a capability table of biometric handlers keyed by type.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]BiometricHandler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]BiometricHandler)}
}

// Register installs a handler for a biometric type. Registering the same
// type twice replaces the previous handler.
func (r *Registry) Register(typ string, h BiometricHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[typ] = h
}

// Lookup returns the handler for a type, if registered.
func (r *Registry) Lookup(typ string) (BiometricHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[typ]
	return h, ok
}

// Types returns the registered biometric type names.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// PulseHandler is the reference biometric handler: compares a measured
// pulse rate against a resting baseline. A rate near baseline reads as a
// steady (affirming) signal; a sharp elevation reads as a shake.
type PulseHandler struct{}

// Process expects data keys "bpm" and "baseline" (numbers).
func (PulseHandler) Process(data map[string]any) (HandlerResult, error) {
	bpm, ok := toFloat(data["bpm"])
	if !ok {
		return HandlerResult{}, fmt.Errorf("pulse data missing bpm")
	}
	baseline, ok := toFloat(data["baseline"])
	if !ok || baseline <= 0 {
		return HandlerResult{}, fmt.Errorf("pulse data missing baseline")
	}

	ratio := bpm / baseline
	meta := map[string]any{"bpm": bpm, "baseline": baseline, "ratio": ratio}

	switch {
	case ratio >= 0.9 && ratio <= 1.1:
		return HandlerResult{Gesture: "steady", Metadata: meta, Confidence: 0.95}, nil
	case ratio > 1.3:
		return HandlerResult{Gesture: "shake", Metadata: meta, Confidence: 0.85}, nil
	default:
		// Mild elevation is not an interpretable signal.
		return HandlerResult{Gesture: "indeterminate", Metadata: meta, Confidence: 0.5}, nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
