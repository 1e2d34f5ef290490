package playback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
)

func TestEscapeFragment(t *testing.T) {
	assert.Equal(t, "&lt;", EscapeFragment('<'))
	assert.Equal(t, "&amp;", EscapeFragment('&'))
	assert.Equal(t, "&#34;", EscapeFragment('"'))
	assert.Equal(t, "<br>", EscapeFragment('\n'))
	assert.Equal(t, "", EscapeFragment('\r'))
	assert.Equal(t, "é", EscapeFragment('é'))
}

func TestRevealTypesEscapedText(t *testing.T) {
	doc := transcript.NewDocument()
	epoch := NewEpoch()
	view := NewView(doc, epoch, 0)
	sleeper := &recordingSleeper{}
	r := NewTextRenderer(view, sleeper, testCharDelay)

	tok := epoch.Advance(context.Background())
	doc.AppendBubble(transcript.Bubble{ID: "b"})

	require.True(t, r.Reveal(tok, "b", "<a>\r\nü"))
	entry := doc.Snapshot().Entries[0]
	assert.Equal(t, "&lt;a&gt;<br>ü", entry.Content)
	assert.False(t, entry.Cursor)
	assert.Len(t, sleeper.Calls(), 5)
	assert.Equal(t, 5, doc.Snapshot().Scrolls)
}

func TestRevealStopsWhenStale(t *testing.T) {
	doc := transcript.NewDocument()
	epoch := NewEpoch()
	view := NewView(doc, epoch, 0)
	sleeper := &recordingSleeper{}
	r := NewTextRenderer(view, sleeper, testCharDelay)

	tok := epoch.Advance(context.Background())
	doc.AppendBubble(transcript.Bubble{ID: "b"})
	sleeper.hook = func(call int, _ time.Duration) {
		if call == 2 {
			epoch.Advance(context.Background())
		}
	}

	assert.False(t, r.Reveal(tok, "b", "abcdef"))
	entry := doc.Snapshot().Entries[0]
	assert.Equal(t, "ab", entry.Content)
	assert.False(t, entry.Cursor)

	stale := NewTextRenderer(view, &recordingSleeper{}, testCharDelay)
	assert.False(t, stale.Reveal(tok, "b", "zzz"))
	assert.Equal(t, "ab", doc.Snapshot().Entries[0].Content)
}
