// internal/tui/feed.go
package tui

import (
	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
)

// Feed records playback into a Document and wakes the terminal program
// after each change. Signals coalesce, so a slow redraw never blocks
// playback.
type Feed struct {
	*transcript.Document
	changed chan struct{}
	surface transcript.Surface
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	f := &Feed{
		Document: transcript.NewDocument(),
		changed:  make(chan struct{}, 1),
	}
	f.surface = transcript.Tee(f.Document, transcript.NewEmitter(func(transcript.Event) { f.notify() }))
	return f
}

// Surface is what the playback controller draws on.
func (f *Feed) Surface() transcript.Surface {
	return f.surface
}

// Changed fires at least once after any number of changes.
func (f *Feed) Changed() <-chan struct{} {
	return f.changed
}

func (f *Feed) notify() {
	select {
	case f.changed <- struct{}{}:
	default:
	}
}
