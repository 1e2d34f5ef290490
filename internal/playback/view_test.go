package playback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
)

func TestViewResetAndEnsureActive(t *testing.T) {
	log := &eventLog{}
	doc := transcript.NewDocument()
	epoch := NewEpoch()
	view := NewView(transcript.Tee(doc, transcript.NewEmitter(log.add)), epoch, 0)

	tok := epoch.Advance(context.Background())
	doc.AppendBubble(transcript.Bubble{ID: "old"})
	assert.True(t, view.Reset(tok))
	assert.Empty(t, doc.Snapshot().Entries)
	assert.True(t, doc.Snapshot().Empty)

	log.Reset()
	assert.True(t, view.EnsureActive(tok))
	assert.True(t, view.EnsureActive(tok))
	assert.Len(t, log.All(), 1)
	assert.False(t, doc.Snapshot().Empty)

	stale := tok
	epoch.Advance(context.Background())
	assert.False(t, view.Reset(stale))
	assert.False(t, view.Apply(stale, func(s transcript.Surface) { s.SetAccent("x") }))
	assert.Empty(t, doc.Snapshot().Accent)

	view.Cleanup(func(s transcript.Surface) { s.SetAccent("cleanup") })
	assert.Equal(t, "cleanup", doc.Snapshot().Accent)
}

func TestScrollToLatestDebounces(t *testing.T) {
	doc := transcript.NewDocument()
	view := NewView(doc, NewEpoch(), 20*time.Millisecond)

	for i := 0; i < 10; i++ {
		view.ScrollToLatest()
	}
	assert.Eventually(t, func() bool { return doc.Snapshot().Scrolls == 1 }, time.Second, 5*time.Millisecond)

	view.ScrollToLatest()
	assert.Eventually(t, func() bool { return doc.Snapshot().Scrolls == 2 }, time.Second, 5*time.Millisecond)
}

type panickySurface struct{ *transcript.Document }

func (panickySurface) ScrollToBottom() { panic("no overflow") }

func TestScrollFailuresAreIgnored(t *testing.T) {
	view := NewView(panickySurface{transcript.NewDocument()}, NewEpoch(), 0)
	assert.NotPanics(t, view.ScrollToLatest)
}
