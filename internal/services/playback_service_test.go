package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/playback"
	"github.com/zageabb/reflex-AgentDemo/internal/storage"
	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

type memoryCatalog map[string]models.Scenario

func (m memoryCatalog) Lookup(ctx context.Context, id string) (*models.Scenario, error) {
	sc, ok := m[id]
	if !ok {
		return nil, apperrors.NewScenarioNotFoundError(id)
	}
	return &sc, nil
}

type memorySteps map[string][]models.Step

func (m memorySteps) FetchSteps(ctx context.Context, id string) ([]models.Step, error) {
	return m[id], nil
}

type instantSleeper struct{}

func (instantSleeper) Sleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func newTestService(t *testing.T) *PlaybackService {
	t.Helper()
	svc := NewPlaybackService(PlaybackDeps{
		Catalog: memoryCatalog{
			"intro": {ID: "intro", Title: "Intro", Accent: "#123456"},
		},
		Steps: memorySteps{
			"intro": {
				{Actor: "user", Message: "hi"},
				{Actor: "assistant", Message: "hello"},
			},
		},
		Pacing:     playback.Pacing{},
		Sleeper:    instantSleeper{},
		Logger:     utils.NewLogger(io.Discard),
		SessionTTL: time.Minute,
	})
	t.Cleanup(svc.Shutdown)
	return svc
}

func TestPlayPublishesAndSnapshots(t *testing.T) {
	svc := newTestService(t)

	var mu sync.Mutex
	var events []transcript.Event
	svc.SetPublisher(func(sessionID string, e transcript.Event) {
		assert.Equal(t, "viewer-1", sessionID)
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	done, err := svc.Play(context.Background(), "viewer-1", "intro", false)
	require.NoError(t, err)

	select {
	case r := <-done:
		assert.Equal(t, playback.OutcomeCompleted, r.Outcome)
		assert.NoError(t, r.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not finish")
	}

	snap, err := svc.Snapshot("viewer-1")
	require.NoError(t, err)
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "hi", snap.Entries[0].Content)
	assert.Equal(t, "hello", snap.Entries[1].Content)
	assert.True(t, snap.ControlsEnabled)
	assert.Equal(t, transcript.FeedbackComplete, snap.Feedback.State)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, events)
	assert.Equal(t, transcript.EventControls, events[0].Type)

	infos := svc.Sessions()
	require.Len(t, infos, 1)
	assert.Equal(t, "intro", infos[0].Selected)
	assert.Equal(t, uint64(1), infos[0].Generation)
}

func TestPlayUnknownScenario(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Play(context.Background(), "viewer-1", "missing", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))

	snap, err := svc.Snapshot("viewer-1")
	require.NoError(t, err)
	assert.Empty(t, snap.Entries)
	assert.True(t, snap.Empty)
}

func TestInvalidSessionID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Session("../etc")
	assert.True(t, apperrors.IsValidationError(err))

	_, err = svc.Snapshot("nobody")
	assert.True(t, apperrors.IsNotFoundError(err))

	assert.True(t, ValidSessionID(NewSessionID()))
}

func TestCleanupIdleAndClose(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Session("a")
	require.NoError(t, err)
	_, err = svc.Session("b")
	require.NoError(t, err)

	assert.Equal(t, 0, svc.CleanupIdle(time.Now()))
	assert.Equal(t, 2, svc.CleanupIdle(time.Now().Add(2*time.Minute)))
	assert.Empty(t, svc.Sessions())

	_, err = svc.Session("c")
	require.NoError(t, err)
	require.NoError(t, svc.CloseSession("c"))
	assert.Error(t, svc.CloseSession("c"))
}

func TestTouchKeepsSessionAlive(t *testing.T) {
	svc := newTestService(t)

	watched, err := svc.Session("watched")
	require.NoError(t, err)
	stale, err := svc.Session("stale")
	require.NoError(t, err)

	past := time.Now().Add(-50 * time.Second)
	svc.mu.Lock()
	watched.lastUsed = past
	stale.lastUsed = past
	svc.mu.Unlock()

	svc.Touch("watched")
	svc.Touch("missing")

	assert.Equal(t, 1, svc.CleanupIdle(time.Now().Add(30*time.Second)))
	_, err = svc.Existing("watched")
	assert.NoError(t, err)
	_, err = svc.Existing("stale")
	assert.Error(t, err)
}

func TestLocalSnippets(t *testing.T) {
	dir := t.TempDir()
	uploads, err := storage.NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, uploads.SaveFile("code/hello.txt", []byte("a < b")))
	require.NoError(t, uploads.SaveFile("card.html", []byte("<b>hi</b>")))

	src := LocalSnippets{Store: storage.NewSnippetStore(uploads, nil)}
	ctx := context.Background()

	res, err := src.Fetch(ctx, "/code/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, `<pre class="snippet-text">a &lt; b</pre>`, res.Markup)

	res, err = src.Fetch(ctx, "card.html")
	require.NoError(t, err)
	assert.Equal(t, "<b>hi</b>", res.Markup)

	res, err = src.Fetch(ctx, "  ")
	assert.NoError(t, err)
	assert.Nil(t, res)

	_, err = src.Fetch(ctx, "missing.txt")
	require.Error(t, err)
	assert.True(t, apperrors.IsSnippetFetchError(err))
}
