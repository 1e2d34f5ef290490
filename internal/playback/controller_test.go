package playback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
)

func contents(snap transcript.Snapshot) []string {
	out := make([]string, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		out = append(out, e.Content)
	}
	return out
}

func assertSettled(t *testing.T, snap transcript.Snapshot) {
	t.Helper()
	for _, e := range snap.Entries {
		assert.False(t, e.Typing, "orphaned typing placeholder %s", e.ID)
		assert.False(t, e.Cursor, "orphaned cursor in %s", e.ID)
	}
}

func TestStartPlaybackCompletes(t *testing.T) {
	var selected []string
	h := newHarness(WithSelectionListener(func(s models.Scenario) { selected = append(selected, s.ID) }))
	h.addScenario("a",
		models.Step{Actor: "human", Message: "hi"},
		models.Step{Actor: "narrator", Message: "ignored"},
		models.Step{Actor: "agent", Speaker: "Reflex", Text: "a<b"},
	)

	outcome, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)

	snap := h.doc.Snapshot()
	assert.Equal(t, []string{"hi", "a&lt;b"}, contents(snap))
	assert.Equal(t, models.ActorUser, snap.Entries[0].Role)
	assert.Equal(t, "User", snap.Entries[0].Speaker)
	assert.Equal(t, UserIcon, snap.Entries[0].Icon)
	assert.Equal(t, "Reflex", snap.Entries[1].Speaker)
	assert.False(t, snap.Empty)
	assert.Equal(t, "#a", snap.Accent)
	assert.Equal(t, "a", snap.Selected)
	assert.True(t, snap.ControlsEnabled)
	assert.Equal(t, transcript.FeedbackComplete, snap.Feedback.State)
	assertSettled(t, snap)

	var states []transcript.FeedbackState
	for _, f := range h.doc.FeedbackHistory() {
		states = append(states, f.State)
	}
	assert.Equal(t, []transcript.FeedbackState{transcript.FeedbackLoading, transcript.FeedbackPlaying, transcript.FeedbackComplete}, states)
	assert.Equal(t, []string{"a"}, selected)

	// user default delay 2 chars * 15ms clamps up to 300ms
	calls := h.sleeper.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, 300*time.Millisecond, calls[0])
	assert.Contains(t, calls, 700*time.Millisecond)
}

func TestControlsDisabledWhilePlaying(t *testing.T) {
	h := newHarness()
	h.addScenario("a", models.Step{Actor: "user", Message: "x"})

	var disabledDuringTurn bool
	h.sleeper.hook = func(call int, d time.Duration) {
		if call == 1 {
			disabledDuringTurn = !h.doc.Snapshot().ControlsEnabled
		}
	}

	_, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)
	assert.True(t, disabledDuringTurn)
	assert.True(t, h.doc.Snapshot().ControlsEnabled)
}

func TestUnknownScenarioIsNoop(t *testing.T) {
	h := newHarness()
	h.addScenario("a", models.Step{Actor: "user", Message: "kept"})
	_, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)

	before := h.doc.Snapshot()
	generation := h.ctrl.Generation()
	h.log.Reset()

	outcome, err := h.ctrl.StartPlayback(context.Background(), "missing", Options{})
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.Equal(t, generation, h.ctrl.Generation())
	assert.Equal(t, before, h.doc.Snapshot())
	assert.Empty(t, h.log.All())
}

func TestScenarioFetchFailureLeavesTranscriptEmpty(t *testing.T) {
	h := newHarness()
	h.addScenario("a")
	h.steps.errs["a"] = &apperrors.ScenarioFetchError{ScenarioID: "a", StatusCode: 503}

	outcome, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	assert.Equal(t, OutcomeFailed, outcome)
	assert.True(t, apperrors.IsScenarioFetchError(err))

	snap := h.doc.Snapshot()
	assert.Empty(t, snap.Entries)
	assert.True(t, snap.Empty)
	assert.True(t, snap.ControlsEnabled)
	assert.Equal(t, transcript.FeedbackError, snap.Feedback.State)
	assert.Equal(t, "Unable to play this scenario.", snap.Feedback.Message)
}

func TestMessageHTMLIsAtomic(t *testing.T) {
	h := newHarness()
	h.addScenario("a", models.Step{Actor: "assistant", MessageHTML: "<p>done</p>", Message: "ignored", TypingDelay: ms(0)})

	_, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)

	assert.Empty(t, h.sleeper.Calls())
	var contentEvents int
	for _, e := range h.log.All() {
		assert.NotEqual(t, transcript.EventText, e.Type)
		assert.NotEqual(t, transcript.EventCursor, e.Type)
		if e.Type == transcript.EventContent {
			contentEvents++
		}
	}
	assert.Equal(t, 1, contentEvents)
	assert.Equal(t, []string{"<p>done</p>"}, contents(h.doc.Snapshot()))
}

func TestSnippetAppearsAfterReveal(t *testing.T) {
	for _, actor := range []string{"user", "assistant"} {
		t.Run(actor, func(t *testing.T) {
			h := newHarness()
			h.addScenario("a", models.Step{Actor: actor, Message: "abc", Snippet: "/docs/a.html"})
			h.snippets.results["/docs/a.html"] = &models.SnippetResult{Markup: "<em>a</em>", IsMarkup: true}

			_, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
			require.NoError(t, err)

			lastText, cursorOff, snippetAt := -1, -1, -1
			for i, e := range h.log.All() {
				switch {
				case e.Type == transcript.EventText:
					lastText = i
				case e.Type == transcript.EventCursor && !*e.Flag:
					cursorOff = i
				case e.Type == transcript.EventSnippet:
					snippetAt = i
				}
			}
			require.NotEqual(t, -1, snippetAt)
			assert.Less(t, lastText, snippetAt)
			assert.Less(t, cursorOff, snippetAt)

			snap := h.doc.Snapshot()
			require.Len(t, snap.Entries, 1)
			assert.Equal(t, "abc", snap.Entries[0].Content)
			assert.Equal(t, []string{"<em>a</em>"}, snap.Entries[0].Snippets)
		})
	}
}

func TestSnippetFetchOrderByRole(t *testing.T) {
	for _, tc := range []struct {
		actor         string
		beforeMessage bool
	}{
		{actor: "assistant", beforeMessage: true},
		{actor: "user", beforeMessage: false},
	} {
		t.Run(tc.actor, func(t *testing.T) {
			h := newHarness()
			h.addScenario("a", models.Step{Actor: tc.actor, Message: "abc", Snippet: "docs/a.html"})
			h.snippets.results["docs/a.html"] = &models.SnippetResult{Markup: "<em>a</em>", IsMarkup: true}
			fetchedAt := -1
			h.snippets.onFetch = func(string) { fetchedAt = len(h.log.All()) }

			_, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
			require.NoError(t, err)
			require.NotEqual(t, -1, fetchedAt)

			messageAt, lastText := -1, -1
			for i, e := range h.log.All() {
				switch {
				case e.Type == transcript.EventBubble && !e.Bubble.Typing && messageAt == -1:
					messageAt = i
				case e.Type == transcript.EventText:
					lastText = i
				}
			}
			require.NotEqual(t, -1, messageAt)
			if tc.beforeMessage {
				assert.LessOrEqual(t, fetchedAt, messageAt)
			} else {
				assert.Greater(t, fetchedAt, lastText)
			}
		})
	}
}

func TestSnippetFailureRendersWarningAndContinues(t *testing.T) {
	h := newHarness()
	h.addScenario("a",
		models.Step{Actor: "assistant", Message: "see file", Snippet: "docs/missing.txt"},
		models.Step{Actor: "user", Message: "next"},
	)
	h.snippets.errs["docs/missing.txt"] = &apperrors.SnippetFetchError{Path: "docs/missing.txt", StatusCode: 500}

	outcome, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)

	snap := h.doc.Snapshot()
	require.Len(t, snap.Entries, 2)
	require.Len(t, snap.Entries[0].Warnings, 1)
	assert.Contains(t, snap.Entries[0].Warnings[0], "docs/missing.txt")
	assert.Empty(t, snap.Entries[0].Snippets)
	assert.Equal(t, "next", snap.Entries[1].Content)
}

func TestZeroDelaysLeaveOnlyRevealCost(t *testing.T) {
	h := newHarness()
	h.addScenario("a",
		models.Step{Actor: "user", Message: "ab", TypingDelay: ms(0), Pause: ms(0)},
		models.Step{Actor: "assistant", Message: "cde", TypingDelay: ms(0), Pause: ms(0)},
		models.Step{Actor: "user", Message: "f\r\n", TypingDelay: ms(0), Pause: ms(0)},
	)

	_, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)

	calls := h.sleeper.Calls()
	assert.Len(t, calls, 7)
	for _, d := range calls {
		assert.Equal(t, testCharDelay, d)
	}
	assert.Equal(t, "f<br>", h.doc.Snapshot().Entries[2].Content)
}

func TestExplicitPauseIsHonoredAndClamped(t *testing.T) {
	h := newHarness()
	h.addScenario("a",
		models.Step{Actor: "user", MessageHTML: "x", TypingDelay: ms(5), Pause: ms(250)},
		models.Step{Actor: "user", MessageHTML: "y", TypingDelay: ms(-20), Pause: ms(-1)},
	)

	_, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 250 * time.Millisecond}, h.sleeper.Calls())
}

func TestSupersedeDuringTypingIndicator(t *testing.T) {
	h := newHarness()
	h.addScenario("a",
		models.Step{Actor: "user", Message: "from a"},
		models.Step{Actor: "assistant", Message: "also a"},
	)
	h.addScenario("b", models.Step{Actor: "assistant", Message: "from b", Snippet: "b.txt"})
	h.snippets.results["b.txt"] = &models.SnippetResult{Markup: "<pre>b</pre>", IsMarkup: true}

	fired := false
	var inner Outcome
	h.sleeper.hook = func(call int, d time.Duration) {
		if fired {
			return
		}
		fired = true
		// a's placeholder is on screen now
		require.Len(t, h.doc.Snapshot().Entries, 1)
		assert.True(t, h.doc.Snapshot().Entries[0].Typing)

		var err error
		inner, err = h.ctrl.StartPlayback(context.Background(), "b", Options{})
		require.NoError(t, err)
	}

	outer, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuperseded, outer)
	assert.Equal(t, OutcomeCompleted, inner)

	snap := h.doc.Snapshot()
	assert.Equal(t, []string{"from b"}, contents(snap))
	assert.Equal(t, "b", snap.Selected)
	assert.Equal(t, transcript.FeedbackComplete, snap.Feedback.State)
	assert.Contains(t, snap.Feedback.Message, "Scenario b")
	assert.True(t, snap.ControlsEnabled)
	assertSettled(t, snap)
}

func TestLaterLaunchWinsOverSlowLookup(t *testing.T) {
	h := newHarness()
	h.addScenario("a", models.Step{Actor: "user", Message: "from a"})
	h.addScenario("b", models.Step{Actor: "user", Message: "from b"})
	h.ctrl.catalog = slowCatalog{fakeCatalog: h.catalog, delay: map[string]time.Duration{"a": 50 * time.Millisecond}}

	first := h.ctrl.Launch(context.Background(), "a", Options{})
	second := h.ctrl.Launch(context.Background(), "b", Options{})

	result := func(done <-chan Result) Result {
		select {
		case r := <-done:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("playback did not finish")
			return Result{}
		}
	}
	ra, rb := result(first), result(second)
	assert.Equal(t, OutcomeSuperseded, ra.Outcome)
	assert.NoError(t, ra.Err)
	assert.Equal(t, OutcomeCompleted, rb.Outcome)

	snap := h.doc.Snapshot()
	assert.Equal(t, []string{"from b"}, contents(snap))
	assert.Equal(t, "b", snap.Selected)
	assert.True(t, snap.ControlsEnabled)
	assert.Equal(t, uint64(1), h.ctrl.Generation())
}

func TestSupersedeMidReveal(t *testing.T) {
	h := newHarness()
	h.addScenario("a", models.Step{Actor: "assistant", Message: "long reply", TypingDelay: ms(0)})
	h.addScenario("b", models.Step{Actor: "user", Message: "b", TypingDelay: ms(0)})

	fired := false
	h.sleeper.hook = func(call int, d time.Duration) {
		if call != 3 || fired {
			return
		}
		fired = true
		snap := h.doc.Snapshot()
		require.Len(t, snap.Entries, 1)
		assert.Equal(t, "lon", snap.Entries[0].Content)
		assert.True(t, snap.Entries[0].Cursor)
		_, err := h.ctrl.StartPlayback(context.Background(), "b", Options{})
		require.NoError(t, err)
	}

	outcome, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuperseded, outcome)

	snap := h.doc.Snapshot()
	assert.Equal(t, []string{"b"}, contents(snap))
	assertSettled(t, snap)
}

func TestSupersedeDuringPause(t *testing.T) {
	h := newHarness()
	h.addScenario("a",
		models.Step{Actor: "user", MessageHTML: "one", TypingDelay: ms(0), Pause: ms(500)},
		models.Step{Actor: "user", MessageHTML: "two", TypingDelay: ms(0)},
	)
	h.addScenario("b", models.Step{Actor: "user", MessageHTML: "b", TypingDelay: ms(0)})

	fired := false
	h.sleeper.hook = func(call int, d time.Duration) {
		if fired {
			return
		}
		fired = true
		_, err := h.ctrl.StartPlayback(context.Background(), "b", Options{})
		require.NoError(t, err)
	}

	outcome, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuperseded, outcome)
	assert.Equal(t, []string{"b"}, contents(h.doc.Snapshot()))
}

func TestSupersedeDuringStepFetch(t *testing.T) {
	h := newHarness()
	h.addScenario("slow")
	started := make(chan struct{})
	h.steps.block["slow"] = started
	h.addScenario("b", models.Step{Actor: "user", Message: "b"})

	done := h.ctrl.Launch(context.Background(), "slow", Options{})
	<-started

	outcome, err := h.ctrl.StartPlayback(context.Background(), "b", Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)

	select {
	case res := <-done:
		assert.Equal(t, OutcomeSuperseded, res.Outcome)
		assert.NoError(t, res.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded playback did not settle")
	}

	snap := h.doc.Snapshot()
	assert.Equal(t, []string{"b"}, contents(snap))
	assert.Equal(t, transcript.FeedbackComplete, snap.Feedback.State)
	for _, f := range h.doc.FeedbackHistory() {
		assert.NotEqual(t, transcript.FeedbackError, f.State)
	}
}

func TestRestartClearsPriorTranscript(t *testing.T) {
	var selections int
	h := newHarness(WithSelectionListener(func(models.Scenario) { selections++ }))
	h.addScenario("a",
		models.Step{Actor: "user", Message: "q"},
		models.Step{Actor: "assistant", Message: "r"},
	)

	_, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)
	require.Len(t, h.doc.Snapshot().Entries, 2)
	h.log.Reset()

	outcome, err := h.ctrl.StartPlayback(context.Background(), "a", Options{Restart: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)

	clearAt, firstBubble := -1, -1
	for i, e := range h.log.All() {
		assert.NotEqual(t, transcript.EventSelection, e.Type)
		if e.Type == transcript.EventClear && clearAt == -1 {
			clearAt = i
		}
		if e.Type == transcript.EventBubble && firstBubble == -1 {
			firstBubble = i
		}
	}
	require.NotEqual(t, -1, clearAt)
	assert.Less(t, clearAt, firstBubble)
	assert.Equal(t, []string{"q", "r"}, contents(h.doc.Snapshot()))
	assert.Equal(t, 1, selections)

	history := h.doc.FeedbackHistory()
	assert.Contains(t, history, transcript.Feedback{State: transcript.FeedbackLoading, Message: "Restarting Scenario a…"})
}

func TestRepeatedStartsLeaveSingleTranscript(t *testing.T) {
	h := newHarness()
	h.addScenario("a", models.Step{Actor: "user", Message: "aa"}, models.Step{Actor: "bot", Message: "ab"})
	h.addScenario("b", models.Step{Actor: "user", Message: "ba"}, models.Step{Actor: "bot", Message: "bb"})

	// every fifth wait starts the other scenario, nested up to a fixed depth
	depth := 0
	h.sleeper.hook = func(call int, d time.Duration) {
		if call%5 != 0 || depth >= 4 {
			return
		}
		depth++
		next := "a"
		if depth%2 == 1 {
			next = "b"
		}
		_, err := h.ctrl.StartPlayback(context.Background(), next, Options{})
		require.NoError(t, err)
	}

	_, err := h.ctrl.StartPlayback(context.Background(), "a", Options{})
	require.NoError(t, err)

	snap := h.doc.Snapshot()
	require.Len(t, snap.Entries, 2)
	prefix := snap.Entries[0].Content[:1]
	for _, e := range snap.Entries {
		assert.Equal(t, prefix, e.Content[:1], "interleaved generations")
	}
	assertSettled(t, snap)
	assert.Equal(t, uint64(5), h.ctrl.Generation())
}
