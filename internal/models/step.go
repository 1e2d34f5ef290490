// internal/models/step.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Actor is the normalized speaker role of a step.
type Actor string

const (
	ActorUser      Actor = "user"
	ActorAssistant Actor = "assistant"
	ActorUnknown   Actor = ""
)

// NormalizeActor maps raw actor names and their synonyms onto an Actor.
func NormalizeActor(raw string) Actor {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user", "human", "player":
		return ActorUser
	case "assistant", "agent", "bot":
		return ActorAssistant
	default:
		return ActorUnknown
	}
}

// Millis is a millisecond count that decodes from a JSON number or a
// numeric string.
type Millis float64

// UnmarshalJSON implements json.Unmarshaler.
func (m *Millis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("invalid millisecond value %q", s)
		}
		*m = Millis(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Millis(v)
	return nil
}

// Duration converts to a duration, clamping negatives to zero.
func (m Millis) Duration() time.Duration {
	if m <= 0 {
		return 0
	}
	return time.Duration(float64(m) * float64(time.Millisecond))
}

// Step is one scripted conversational turn.
type Step struct {
	Actor       string  `json:"actor" yaml:"actor"`
	Speaker     string  `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Message     string  `json:"message,omitempty" yaml:"message,omitempty"`
	Text        string  `json:"text,omitempty" yaml:"text,omitempty"`
	MessageHTML string  `json:"message_html,omitempty" yaml:"message_html,omitempty"`
	Snippet     string  `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	TypingDelay *Millis `json:"typingDelay,omitempty" yaml:"typingDelay,omitempty"`
	Pause       *Millis `json:"pause,omitempty" yaml:"pause,omitempty"`
}

// Role returns the normalized actor.
func (s Step) Role() Actor {
	return NormalizeActor(s.Actor)
}

// Body returns the plain-text message, preferring message over text.
func (s Step) Body() string {
	if s.Message != "" {
		return s.Message
	}
	return s.Text
}

// ContentLength is the rune count used to derive default typing delays.
func (s Step) ContentLength() int {
	if body := s.Body(); body != "" {
		return len([]rune(body))
	}
	return len([]rune(s.MessageHTML))
}

// PauseDuration returns the post-turn pause, zero when unset.
func (s Step) PauseDuration() time.Duration {
	if s.Pause == nil {
		return 0
	}
	return s.Pause.Duration()
}

// ScenarioDetail is the payload served by the scenario-detail endpoint.
type ScenarioDetail struct {
	Metadata interface{} `json:"metadata,omitempty"`
	Steps    []Step      `json:"steps"`
}
