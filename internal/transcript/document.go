// internal/transcript/document.go
package transcript

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/zageabb/reflex-AgentDemo/internal/models"
)

// Feedback is one status-line update.
type Feedback struct {
	State   FeedbackState `json:"state"`
	Message string        `json:"message"`
}

// Entry is a bubble and everything rendered into it.
type Entry struct {
	Bubble
	Content  string   `json:"content"`
	Cursor   bool     `json:"cursor,omitempty"`
	Snippets []string `json:"snippets,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Snapshot is a copy of the document state.
type Snapshot struct {
	Entries         []Entry  `json:"entries"`
	Empty           bool     `json:"empty"`
	Accent          string   `json:"accent,omitempty"`
	ControlsEnabled bool     `json:"controls_enabled"`
	Feedback        Feedback `json:"feedback"`
	Selected        string   `json:"selected,omitempty"`
	Scrolls         int      `json:"-"`
}

// Document is an in-memory Surface. It is safe for concurrent use and is
// the source of truth for late joiners of a session.
type Document struct {
	mu       sync.RWMutex
	entries  []*Entry
	index    map[string]*Entry
	empty    bool
	accent   string
	controls bool
	feedback Feedback
	selected string
	scrolls  int
	history  []Feedback
}

// NewDocument creates an empty document with controls enabled.
func NewDocument() *Document {
	return &Document{
		index:    make(map[string]*Entry),
		empty:    true,
		controls: true,
		feedback: Feedback{State: FeedbackIdle},
	}
}

// Clear drops every entry and the feedback history of the previous playback.
func (d *Document) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = nil
	d.index = make(map[string]*Entry)
	d.history = nil
}

// SetEmptyState toggles the empty-transcript placeholder.
func (d *Document) SetEmptyState(empty bool) {
	d.mu.Lock()
	d.empty = empty
	d.mu.Unlock()
}

// SetAccent records the scenario accent color.
func (d *Document) SetAccent(accent string) {
	d.mu.Lock()
	d.accent = accent
	d.mu.Unlock()
}

// AppendBubble adds b unless its id is already present.
func (d *Document) AppendBubble(b Bubble) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.index[b.ID]; exists {
		return
	}
	e := &Entry{Bubble: b}
	d.entries = append(d.entries, e)
	d.index[b.ID] = e
}

// RemoveBubble deletes the entry with id, if any.
func (d *Document) RemoveBubble(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.index[id]; !ok {
		return
	}
	delete(d.index, id)
	for i, e := range d.entries {
		if e.ID == id {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			break
		}
	}
}

// AppendText appends a markup fragment to an entry.
func (d *Document) AppendText(id, fragment string) {
	d.update(id, func(e *Entry) { e.Content += fragment })
}

// SetContent replaces an entry's markup.
func (d *Document) SetContent(id, markup string) {
	d.update(id, func(e *Entry) { e.Content = markup })
}

// SetCursor shows or hides an entry's typing cursor.
func (d *Document) SetCursor(id string, visible bool) {
	d.update(id, func(e *Entry) { e.Cursor = visible })
}

// AppendSnippet attaches snippet markup to an entry.
func (d *Document) AppendSnippet(id, markup string) {
	d.update(id, func(e *Entry) { e.Snippets = append(e.Snippets, markup) })
}

// AppendWarning attaches an inline warning to an entry.
func (d *Document) AppendWarning(id, message string) {
	d.update(id, func(e *Entry) { e.Warnings = append(e.Warnings, message) })
}

// ScrollToBottom counts scroll requests; viewers follow the count.
func (d *Document) ScrollToBottom() {
	d.mu.Lock()
	d.scrolls++
	d.mu.Unlock()
}

// SetControlsEnabled records whether playback controls accept input.
func (d *Document) SetControlsEnabled(enabled bool) {
	d.mu.Lock()
	d.controls = enabled
	d.mu.Unlock()
}

// SetFeedback sets the status line and appends it to the history.
func (d *Document) SetFeedback(state FeedbackState, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.feedback = Feedback{State: state, Message: message}
	d.history = append(d.history, d.feedback)
}

// SelectScenario records the announced scenario.
func (d *Document) SelectScenario(s models.Scenario) {
	d.mu.Lock()
	d.selected = s.ID
	d.mu.Unlock()
}

func (d *Document) update(id string, fn func(*Entry)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.index[id]; ok {
		fn(e)
	}
}

// Snapshot returns a deep copy of the current state.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries := make([]Entry, 0, len(d.entries))
	for _, e := range d.entries {
		c := *e
		c.Snippets = append([]string(nil), e.Snippets...)
		c.Warnings = append([]string(nil), e.Warnings...)
		entries = append(entries, c)
	}
	return Snapshot{
		Entries:         entries,
		Empty:           d.empty,
		Accent:          d.accent,
		ControlsEnabled: d.controls,
		Feedback:        d.feedback,
		Selected:        d.selected,
		Scrolls:         d.scrolls,
	}
}

// FeedbackHistory returns the feedback updates since the last Clear.
func (d *Document) FeedbackHistory() []Feedback {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Feedback(nil), d.history...)
}

var (
	breakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTag   = regexp.MustCompile(`<[^>]*>`)
)

// PlainText flattens rendered markup for terminal output.
func PlainText(markup string) string {
	text := breakTag.ReplaceAllString(markup, "\n")
	text = anyTag.ReplaceAllString(text, "")
	return strings.TrimRight(html.UnescapeString(text), "\n")
}
