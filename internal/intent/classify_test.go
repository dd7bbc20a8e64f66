package intent

import (
	"testing"

	"github.com/mhalvorsen/vouchsafe/internal/model"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	reg := NewRegistry()
	reg.Register("pulse", PulseHandler{})
	return NewClassifier(DefaultConfig(), reg)
}

func TestClassifySwipe(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name     string
		swipe    model.SwipeInput
		want     model.Intent
	}{
		{"right accepts", model.SwipeInput{Direction: "right", Distance: 150}, model.IntentAccept},
		{"left rejects", model.SwipeInput{Direction: "left", Distance: 100}, model.IntentReject},
		{"up whispers", model.SwipeInput{Direction: "up", Distance: 80}, model.IntentWhisper},
		{"down defers", model.SwipeInput{Direction: "down", Distance: 80}, model.IntentDefer},
		{"micro-swipe unclear", model.SwipeInput{Direction: "right", Distance: 10}, model.IntentUnclear},
		{"unknown direction unclear", model.SwipeInput{Direction: "diagonal", Distance: 100}, model.IntentUnclear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(model.RawInput{Channel: model.ChannelSwipe, Swipe: &tt.swipe})
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if got.Intent != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Intent)
			}
		})
	}
}

func TestClassifyTapZones(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name string
		x, y float64
		want model.Intent
	}{
		{"left third rejects", 0.1, 0.5, model.IntentReject},
		{"right third accepts", 0.9, 0.5, model.IntentAccept},
		{"top band questions", 0.5, 0.1, model.IntentQuestion},
		{"middle whispers", 0.5, 0.5, model.IntentWhisper},
		{"out of bounds unclear", 1.5, 0.5, model.IntentUnclear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(model.RawInput{Channel: model.ChannelTap, Tap: &model.TapInput{X: tt.x, Y: tt.y}})
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if got.Intent != tt.want {
				t.Errorf("tap (%.2f, %.2f): expected %s, got %s", tt.x, tt.y, tt.want, got.Intent)
			}
		})
	}
}

func TestClassifyVoice(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name       string
		transcript string
		confidence float64
		want       model.Intent
	}{
		{"low confidence never accepts", "yes do it", 0.5, model.IntentUnclear},
		{"clear yes", "yes", 0.95, model.IntentAccept},
		{"clear no", "no stop", 0.9, model.IntentReject},
		{"question word", "why is this needed", 0.9, model.IntentQuestion},
		{"accept and reject is ambiguous", "yes no maybe", 0.9, model.IntentUnclear},
		{"long free-form is a revision", "maybe archive them next week instead", 0.9, model.IntentWhisper},
		{"short unmatched is unclear", "hmm well", 0.9, model.IntentUnclear},
		{"phrase keyword", "go ahead with that plan", 0.9, model.IntentAccept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(model.RawInput{
				Channel: model.ChannelVoice,
				Voice:   &model.VoiceInput{Transcript: tt.transcript, Confidence: tt.confidence},
			})
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if got.Intent != tt.want {
				t.Errorf("%q @ %.2f: expected %s, got %s", tt.transcript, tt.confidence, tt.want, got.Intent)
			}
		})
	}
}

func TestClassifyBiometric(t *testing.T) {
	c := newTestClassifier(t)

	t.Run("steady pulse accepts", func(t *testing.T) {
		got, err := c.Classify(model.RawInput{
			Channel:   model.ChannelBiometric,
			Biometric: &model.BiometricInput{Type: "pulse", Data: map[string]any{"bpm": 62.0, "baseline": 60.0}},
		})
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		if got.Intent != model.IntentAccept {
			t.Errorf("expected accept, got %s", got.Intent)
		}
	})

	t.Run("elevated pulse rejects", func(t *testing.T) {
		got, err := c.Classify(model.RawInput{
			Channel:   model.ChannelBiometric,
			Biometric: &model.BiometricInput{Type: "pulse", Data: map[string]any{"bpm": 95.0, "baseline": 60.0}},
		})
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		if got.Intent != model.IntentReject {
			t.Errorf("expected reject, got %s", got.Intent)
		}
	})

	t.Run("indeterminate pulse is below confidence floor", func(t *testing.T) {
		got, err := c.Classify(model.RawInput{
			Channel:   model.ChannelBiometric,
			Biometric: &model.BiometricInput{Type: "pulse", Data: map[string]any{"bpm": 72.0, "baseline": 60.0}},
		})
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		if got.Intent != model.IntentUnclear {
			t.Errorf("expected unclear, got %s", got.Intent)
		}
	})

	t.Run("unregistered type errors", func(t *testing.T) {
		_, err := c.Classify(model.RawInput{
			Channel:   model.ChannelBiometric,
			Biometric: &model.BiometricInput{Type: "retina", Data: nil},
		})
		if err == nil {
			t.Fatal("expected error for unregistered handler")
		}
	})
}

func TestClassifyMalformedInput(t *testing.T) {
	c := newTestClassifier(t)

	inputs := []model.RawInput{
		{Channel: model.ChannelSwipe},
		{Channel: model.ChannelTap},
		{Channel: model.ChannelVoice},
		{Channel: model.ChannelBiometric},
		{Channel: "telepathy"},
	}
	for _, in := range inputs {
		if _, err := c.Classify(in); err == nil {
			t.Errorf("expected error for input %+v", in)
		}
	}
}
