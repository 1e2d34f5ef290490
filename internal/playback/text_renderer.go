// internal/playback/text_renderer.go
package playback

import (
	"html"
	"time"

	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
)

// TextRenderer types escaped text into a bubble one character at a time.
type TextRenderer struct {
	view    *View
	sleeper Sleeper
	delay   time.Duration
}

// NewTextRenderer creates a renderer with a fixed inter-character delay.
func NewTextRenderer(view *View, sleeper Sleeper, delay time.Duration) *TextRenderer {
	return &TextRenderer{view: view, sleeper: sleeper, delay: delay}
}

// EscapeFragment converts one character to display markup.
func EscapeFragment(r rune) string {
	switch r {
	case '\n':
		return "<br>"
	case '\r':
		return ""
	default:
		return html.EscapeString(string(r))
	}
}

// Reveal types text into bubbleID and reports whether it completed.
// A stale token stops the reveal and removes the cursor.
func (r *TextRenderer) Reveal(t Token, bubbleID, text string) bool {
	if !r.view.Apply(t, func(s transcript.Surface) { s.SetCursor(bubbleID, true) }) {
		return false
	}

	for _, ch := range text {
		fragment := EscapeFragment(ch)
		if fragment == "" {
			continue
		}
		if !r.view.Apply(t, func(s transcript.Surface) { s.AppendText(bubbleID, fragment) }) {
			r.dropCursor(bubbleID)
			return false
		}
		r.view.ScrollToLatest()
		wait(r.sleeper, t, r.delay)
	}

	if !r.view.Apply(t, func(s transcript.Surface) { s.SetCursor(bubbleID, false) }) {
		r.dropCursor(bubbleID)
		return false
	}
	return true
}

func (r *TextRenderer) dropCursor(bubbleID string) {
	r.view.Cleanup(func(s transcript.Surface) { s.SetCursor(bubbleID, false) })
}
