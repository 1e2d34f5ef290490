// internal/transcript/surface.go
package transcript

import (
	"github.com/zageabb/reflex-AgentDemo/internal/models"
)

// FeedbackState classifies the advisory status line.
type FeedbackState string

const (
	FeedbackIdle     FeedbackState = "idle"
	FeedbackLoading  FeedbackState = "loading"
	FeedbackPlaying  FeedbackState = "playing"
	FeedbackComplete FeedbackState = "complete"
	FeedbackError    FeedbackState = "error"
)

// Bubble describes a transcript bubble at the moment it is appended.
// Typing bubbles are transient placeholders.
type Bubble struct {
	ID      string       `json:"id"`
	Role    models.Actor `json:"role"`
	Speaker string       `json:"speaker"`
	Icon    string       `json:"icon"`
	Typing  bool         `json:"typing,omitempty"`
}

// Surface is everything playback may change on screen. Implementations
// must tolerate calls for ids they no longer hold.
type Surface interface {
	Clear()
	SetEmptyState(empty bool)
	SetAccent(accent string)

	AppendBubble(b Bubble)
	RemoveBubble(id string)
	AppendText(id, fragment string)
	SetContent(id, markup string)
	SetCursor(id string, visible bool)
	AppendSnippet(id, markup string)
	AppendWarning(id, message string)
	ScrollToBottom()

	SetControlsEnabled(enabled bool)
	SetFeedback(state FeedbackState, message string)
	SelectScenario(s models.Scenario)
}

// Tee fans every mutation out to all surfaces in order.
func Tee(surfaces ...Surface) Surface {
	return tee(surfaces)
}

type tee []Surface

func (t tee) Clear() {
	for _, s := range t {
		s.Clear()
	}
}

func (t tee) SetEmptyState(empty bool) {
	for _, s := range t {
		s.SetEmptyState(empty)
	}
}

func (t tee) SetAccent(accent string) {
	for _, s := range t {
		s.SetAccent(accent)
	}
}

func (t tee) AppendBubble(b Bubble) {
	for _, s := range t {
		s.AppendBubble(b)
	}
}

func (t tee) RemoveBubble(id string) {
	for _, s := range t {
		s.RemoveBubble(id)
	}
}

func (t tee) AppendText(id, fragment string) {
	for _, s := range t {
		s.AppendText(id, fragment)
	}
}

func (t tee) SetContent(id, markup string) {
	for _, s := range t {
		s.SetContent(id, markup)
	}
}

func (t tee) SetCursor(id string, visible bool) {
	for _, s := range t {
		s.SetCursor(id, visible)
	}
}

func (t tee) AppendSnippet(id, markup string) {
	for _, s := range t {
		s.AppendSnippet(id, markup)
	}
}

func (t tee) AppendWarning(id, message string) {
	for _, s := range t {
		s.AppendWarning(id, message)
	}
}

func (t tee) ScrollToBottom() {
	for _, s := range t {
		s.ScrollToBottom()
	}
}

func (t tee) SetControlsEnabled(enabled bool) {
	for _, s := range t {
		s.SetControlsEnabled(enabled)
	}
}

func (t tee) SetFeedback(state FeedbackState, message string) {
	for _, s := range t {
		s.SetFeedback(state, message)
	}
}

func (t tee) SelectScenario(sc models.Scenario) {
	for _, s := range t {
		s.SelectScenario(sc)
	}
}
