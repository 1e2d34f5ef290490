// internal/playback/view.go
package playback

import (
	"sync"
	"time"

	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
)

// View adapts a transcript surface to generation-guarded playback.
// All surface calls are serialized by the epoch lock.
type View struct {
	surface  transcript.Surface
	epoch    *Epoch
	debounce time.Duration

	active bool // guarded by epoch

	mu            sync.Mutex
	scrollPending bool
}

// NewView creates a view. A zero debounce scrolls synchronously.
func NewView(surface transcript.Surface, epoch *Epoch, debounce time.Duration) *View {
	return &View{surface: surface, epoch: epoch, debounce: debounce}
}

// Reset clears every rendered turn and shows the empty state.
func (v *View) Reset(t Token) bool {
	return v.epoch.Do(t, func() {
		v.surface.Clear()
		v.surface.SetEmptyState(true)
		v.active = false
	})
}

// EnsureActive hides the empty state. Repeated calls are no-ops.
func (v *View) EnsureActive(t Token) bool {
	return v.epoch.Do(t, v.activateLocked)
}

func (v *View) activateLocked() {
	if v.active {
		return
	}
	v.surface.SetEmptyState(false)
	v.active = true
}

// Apply runs fn against the surface if t is still current.
func (v *View) Apply(t Token, fn func(transcript.Surface)) bool {
	return v.epoch.Do(t, func() { fn(v.surface) })
}

// Append activates the view and runs fn in the same critical section.
func (v *View) Append(t Token, fn func(transcript.Surface)) bool {
	return v.epoch.Do(t, func() {
		v.activateLocked()
		fn(v.surface)
	})
}

// Cleanup runs fn without a generation check. It is only for removing
// elements a stale turn owns by id.
func (v *View) Cleanup(fn func(transcript.Surface)) {
	v.epoch.Locked(func() { fn(v.surface) })
}

// ScrollToLatest scrolls to the bottom once per debounce interval.
func (v *View) ScrollToLatest() {
	if v.debounce <= 0 {
		v.scroll()
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.scrollPending {
		return
	}
	v.scrollPending = true
	time.AfterFunc(v.debounce, func() {
		v.mu.Lock()
		v.scrollPending = false
		v.mu.Unlock()
		v.scroll()
	})
}

func (v *View) scroll() {
	defer func() {
		// scrolling is best effort
		_ = recover()
	}()
	v.epoch.Locked(v.surface.ScrollToBottom)
}
