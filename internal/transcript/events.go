// internal/transcript/events.go
package transcript

import (
	"github.com/zageabb/reflex-AgentDemo/internal/models"
)

// Event types pushed to remote viewers.
const (
	EventClear      = "clear"
	EventEmptyState = "empty_state"
	EventAccent     = "accent"
	EventBubble     = "bubble"
	EventRemove     = "remove"
	EventText       = "text"
	EventContent    = "content"
	EventCursor     = "cursor"
	EventSnippet    = "snippet"
	EventWarning    = "warning"
	EventScroll     = "scroll"
	EventControls   = "controls"
	EventFeedback   = "feedback"
	EventSelection  = "scenario_selected"
)

// Event is the wire form of a single Surface mutation.
type Event struct {
	Type     string           `json:"type"`
	BubbleID string           `json:"bubble_id,omitempty"`
	Bubble   *Bubble          `json:"bubble,omitempty"`
	Markup   string           `json:"markup,omitempty"`
	Flag     *bool            `json:"flag,omitempty"`
	State    FeedbackState    `json:"state,omitempty"`
	Message  string           `json:"message,omitempty"`
	Accent   string           `json:"accent,omitempty"`
	Scenario *models.Scenario `json:"scenario,omitempty"`
}

// Emitter is a Surface that reports each mutation as an Event.
type Emitter struct {
	emit func(Event)
}

// NewEmitter creates an emitter calling emit for every mutation.
func NewEmitter(emit func(Event)) *Emitter {
	return &Emitter{emit: emit}
}

func flag(v bool) *bool { return &v }

func (e *Emitter) Clear() { e.emit(Event{Type: EventClear}) }

func (e *Emitter) SetEmptyState(empty bool) {
	e.emit(Event{Type: EventEmptyState, Flag: flag(empty)})
}

func (e *Emitter) SetAccent(accent string) {
	e.emit(Event{Type: EventAccent, Accent: accent})
}

func (e *Emitter) AppendBubble(b Bubble) {
	e.emit(Event{Type: EventBubble, BubbleID: b.ID, Bubble: &b})
}

func (e *Emitter) RemoveBubble(id string) {
	e.emit(Event{Type: EventRemove, BubbleID: id})
}

func (e *Emitter) AppendText(id, fragment string) {
	e.emit(Event{Type: EventText, BubbleID: id, Markup: fragment})
}

func (e *Emitter) SetContent(id, markup string) {
	e.emit(Event{Type: EventContent, BubbleID: id, Markup: markup})
}

func (e *Emitter) SetCursor(id string, visible bool) {
	e.emit(Event{Type: EventCursor, BubbleID: id, Flag: flag(visible)})
}

func (e *Emitter) AppendSnippet(id, markup string) {
	e.emit(Event{Type: EventSnippet, BubbleID: id, Markup: markup})
}

func (e *Emitter) AppendWarning(id, message string) {
	e.emit(Event{Type: EventWarning, BubbleID: id, Message: message})
}

func (e *Emitter) ScrollToBottom() { e.emit(Event{Type: EventScroll}) }

func (e *Emitter) SetControlsEnabled(enabled bool) {
	e.emit(Event{Type: EventControls, Flag: flag(enabled)})
}

func (e *Emitter) SetFeedback(state FeedbackState, message string) {
	e.emit(Event{Type: EventFeedback, State: state, Message: message})
}

func (e *Emitter) SelectScenario(s models.Scenario) {
	e.emit(Event{Type: EventSelection, Scenario: &s})
}
