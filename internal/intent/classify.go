// Package intent interprets raw human input — swipes, taps, transcripts,
// biometric signals — into one of a fixed set of intents. Classification
// is deterministic and side-effect-free; ambiguity always resolves to
// unclear, never to approval.
package intent

import (
	"fmt"
	"strings"

	"github.com/mhalvorsen/vouchsafe/internal/model"
)

// Config holds classification thresholds and keyword sets.
type Config struct {
	// MinSwipeDistance filters accidental micro-swipes, in normalized
	// screen units matching SwipeInput.Distance.
	MinSwipeDistance float64 `yaml:"min_swipe_distance"`

	// VoiceConfidenceFloor: transcripts below this recognizer confidence
	// always classify as unclear regardless of content.
	VoiceConfidenceFloor float64 `yaml:"voice_confidence_floor"`

	// BiometricConfidenceFloor: handler results below this confidence
	// classify as unclear.
	BiometricConfidenceFloor float64 `yaml:"biometric_confidence_floor"`

	AcceptWords   []string `yaml:"accept_words"`
	RejectWords   []string `yaml:"reject_words"`
	QuestionWords []string `yaml:"question_words"`
}

// DefaultConfig returns the built-in classification thresholds.
func DefaultConfig() Config {
	return Config{
		MinSwipeDistance:         40,
		VoiceConfidenceFloor:     0.8,
		BiometricConfidenceFloor: 0.8,
		AcceptWords:              []string{"yes", "yeah", "yep", "accept", "approve", "confirm", "proceed", "ok", "okay", "go ahead", "do it"},
		RejectWords:              []string{"no", "nope", "reject", "deny", "decline", "stop", "cancel", "don't", "never"},
		QuestionWords:            []string{"what", "why", "how", "when", "explain", "clarify"},
	}
}

// Classification is the interpreted meaning of one raw input event.
type Classification struct {
	Intent     model.Intent
	Descriptor string
	Confidence float64
}

// Classifier maps raw input to intents using configured thresholds and
// a registry of biometric handlers.
type Classifier struct {
	cfg      Config
	registry *Registry
}

// NewClassifier creates a classifier. A nil registry gets an empty one.
func NewClassifier(cfg Config, registry *Registry) *Classifier {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Classifier{cfg: cfg, registry: registry}
}

// Classify interprets a raw input event. Returns an error only for
// malformed input shape; interpretable-but-ambiguous input yields
// IntentUnclear, not an error.
func (c *Classifier) Classify(in model.RawInput) (Classification, error) {
	switch in.Channel {
	case model.ChannelSwipe:
		if in.Swipe == nil {
			return Classification{}, fmt.Errorf("swipe input missing payload")
		}
		return c.classifySwipe(*in.Swipe), nil
	case model.ChannelTap:
		if in.Tap == nil {
			return Classification{}, fmt.Errorf("tap input missing payload")
		}
		return c.classifyTap(*in.Tap), nil
	case model.ChannelVoice:
		if in.Voice == nil {
			return Classification{}, fmt.Errorf("voice input missing payload")
		}
		return c.classifyVoice(*in.Voice), nil
	case model.ChannelBiometric:
		if in.Biometric == nil {
			return Classification{}, fmt.Errorf("biometric input missing payload")
		}
		return c.classifyBiometric(*in.Biometric)
	default:
		return Classification{}, fmt.Errorf("unknown input channel %q", in.Channel)
	}
}

// classifySwipe maps direction to intent. Travel below the minimum
// distance is an accidental micro-swipe and yields unclear.
func (c *Classifier) classifySwipe(s model.SwipeInput) Classification {
	desc := fmt.Sprintf("swipe %s (distance %.0f)", s.Direction, s.Distance)
	if s.Distance < c.cfg.MinSwipeDistance {
		return Classification{Intent: model.IntentUnclear, Descriptor: desc, Confidence: 0}
	}

	var it model.Intent
	switch strings.ToLower(s.Direction) {
	case "right":
		it = model.IntentAccept
	case "left":
		it = model.IntentReject
	case "up":
		it = model.IntentWhisper
	case "down":
		it = model.IntentDefer
	default:
		it = model.IntentUnclear
	}
	return Classification{Intent: it, Descriptor: desc, Confidence: 1}
}

// classifyTap partitions the screen into fixed zones: left third rejects,
// right third accepts, the top band of the middle third questions, and
// the rest of the middle third whispers.
func (c *Classifier) classifyTap(t model.TapInput) Classification {
	desc := fmt.Sprintf("tap (%.2f, %.2f)", t.X, t.Y)
	if t.X < 0 || t.X > 1 || t.Y < 0 || t.Y > 1 {
		return Classification{Intent: model.IntentUnclear, Descriptor: desc, Confidence: 0}
	}

	var it model.Intent
	switch {
	case t.X < 1.0/3.0:
		it = model.IntentReject
	case t.X > 2.0/3.0:
		it = model.IntentAccept
	case t.Y < 0.2:
		it = model.IntentQuestion
	default:
		it = model.IntentWhisper
	}
	return Classification{Intent: it, Descriptor: desc, Confidence: 1}
}

// classifyVoice applies the confidence floor, then keyword sets. A
// transcript longer than three words that matches no keyword set is a
// revision attempt (whisper), not noise — free-form human intent is
// captured rather than discarded.
func (c *Classifier) classifyVoice(v model.VoiceInput) Classification {
	desc := fmt.Sprintf("voice %q", v.Transcript)
	if v.Confidence < c.cfg.VoiceConfidenceFloor {
		return Classification{Intent: model.IntentUnclear, Descriptor: desc, Confidence: v.Confidence}
	}

	transcript := strings.ToLower(strings.TrimSpace(v.Transcript))
	accept := matchesAny(transcript, c.cfg.AcceptWords)
	reject := matchesAny(transcript, c.cfg.RejectWords)
	question := matchesAny(transcript, c.cfg.QuestionWords) || strings.Contains(transcript, "?")

	var it model.Intent
	switch {
	case accept && reject:
		// Ambiguity must never default to approval.
		it = model.IntentUnclear
	case accept:
		it = model.IntentAccept
	case reject:
		it = model.IntentReject
	case question:
		it = model.IntentQuestion
	case len(strings.Fields(transcript)) > 3:
		it = model.IntentWhisper
	default:
		it = model.IntentUnclear
	}
	return Classification{Intent: it, Descriptor: desc, Confidence: v.Confidence}
}

// classifyBiometric delegates to the registered handler for the input's
// type, then applies the confidence floor to the handler's result.
func (c *Classifier) classifyBiometric(b model.BiometricInput) (Classification, error) {
	handler, ok := c.registry.Lookup(b.Type)
	if !ok {
		return Classification{}, fmt.Errorf("no handler registered for biometric type %q", b.Type)
	}

	res, err := handler.Process(b.Data)
	if err != nil {
		return Classification{}, fmt.Errorf("biometric handler %q: %w", b.Type, err)
	}

	desc := fmt.Sprintf("biometric %s gesture %q", b.Type, res.Gesture)
	if res.Confidence < c.cfg.BiometricConfidenceFloor {
		return Classification{Intent: model.IntentUnclear, Descriptor: desc, Confidence: res.Confidence}, nil
	}
	return Classification{Intent: gestureIntent(res.Gesture), Descriptor: desc, Confidence: res.Confidence}, nil
}

// gestureIntent maps handler gesture names onto intents. Unknown
// gestures are unclear.
func gestureIntent(gesture string) model.Intent {
	switch strings.ToLower(gesture) {
	case "steady", "nod", "press":
		return model.IntentAccept
	case "shake", "release":
		return model.IntentReject
	case "hold":
		return model.IntentDefer
	default:
		return model.IntentUnclear
	}
}

// matchesAny reports whether any keyword appears in the transcript as a
// whole word or phrase.
func matchesAny(transcript string, words []string) bool {
	padded := " " + transcript + " "
	for _, w := range words {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}
