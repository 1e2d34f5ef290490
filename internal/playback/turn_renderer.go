// internal/playback/turn_renderer.go
package playback

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

// Role icons shown on bubbles.
const (
	UserIcon      = "🧑"
	AssistantIcon = "🤖"
)

// TurnRenderer renders one step. It returns false when the turn was
// abandoned because its generation went stale.
type TurnRenderer interface {
	RenderTurn(t Token, step models.Step) bool
}

// TurnDeps are the collaborators shared by both turn variants.
type TurnDeps struct {
	View     *View
	Text     *TextRenderer
	Snippets SnippetSource
	Sleeper  Sleeper
	Pacing   Pacing
	Logger   *utils.Logger
}

type turnRenderer struct {
	TurnDeps
	role           models.Actor
	icon           string
	defaultSpeaker string

	// prefetch resolves the snippet while the placeholder is shown so
	// content and snippet land together.
	prefetch bool
}

// NewUserTurnRenderer renders user turns. Snippets are fetched after the
// message is revealed.
func NewUserTurnRenderer(deps TurnDeps) TurnRenderer {
	return &turnRenderer{TurnDeps: deps, role: models.ActorUser, icon: UserIcon, defaultSpeaker: "User"}
}

// NewAssistantTurnRenderer renders assistant turns. Snippets are fetched
// before the bubble is appended and attached after the reveal.
func NewAssistantTurnRenderer(deps TurnDeps) TurnRenderer {
	return &turnRenderer{TurnDeps: deps, role: models.ActorAssistant, icon: AssistantIcon, defaultSpeaker: "Assistant", prefetch: true}
}

type snippetOutcome struct {
	result *models.SnippetResult
	err    error
}

func (r *turnRenderer) RenderTurn(t Token, step models.Step) bool {
	if !t.Current() {
		return false
	}

	speaker := step.Speaker
	if speaker == "" {
		speaker = r.defaultSpeaker
	}

	placeholderID := uuid.NewString()
	placeholder := transcript.Bubble{ID: placeholderID, Role: r.role, Speaker: speaker, Icon: r.icon, Typing: true}
	if !r.View.Append(t, func(s transcript.Surface) { s.AppendBubble(placeholder) }) {
		return false
	}
	r.View.ScrollToLatest()

	var pending chan snippetOutcome
	if r.prefetch && step.Snippet != "" {
		pending = make(chan snippetOutcome, 1)
		go func() {
			res, err := r.Snippets.Fetch(t.Context(), step.Snippet)
			pending <- snippetOutcome{result: res, err: err}
		}()
	}

	wait(r.Sleeper, t, r.Pacing.TypingDelay(step))

	var snippet snippetOutcome
	if pending != nil {
		snippet = <-pending
	}

	bubbleID := uuid.NewString()
	bubble := transcript.Bubble{ID: bubbleID, Role: r.role, Speaker: speaker, Icon: r.icon}
	if !r.View.Append(t, func(s transcript.Surface) {
		s.RemoveBubble(placeholderID)
		s.AppendBubble(bubble)
	}) {
		r.View.Cleanup(func(s transcript.Surface) { s.RemoveBubble(placeholderID) })
		return false
	}
	r.View.ScrollToLatest()

	switch {
	case step.MessageHTML != "":
		if !r.View.Apply(t, func(s transcript.Surface) { s.SetContent(bubbleID, step.MessageHTML) }) {
			return false
		}
	case step.Body() != "":
		if !r.Text.Reveal(t, bubbleID, step.Body()) {
			return false
		}
	}

	if step.Snippet != "" {
		if pending == nil {
			res, err := r.Snippets.Fetch(t.Context(), step.Snippet)
			snippet = snippetOutcome{result: res, err: err}
		}
		if !r.attachSnippet(t, bubbleID, step.Snippet, snippet) {
			return false
		}
	}
	r.View.ScrollToLatest()

	wait(r.Sleeper, t, step.PauseDuration())
	if !t.Current() {
		return false
	}
	turnsRendered.WithLabelValues(string(r.role)).Inc()
	return true
}

func (r *turnRenderer) attachSnippet(t Token, bubbleID, path string, snippet snippetOutcome) bool {
	if snippet.err != nil {
		if !t.Current() {
			return false
		}
		snippetFailures.Inc()
		if r.Logger != nil {
			r.Logger.Warn("snippet fetch failed", map[string]interface{}{
				"path":  path,
				"error": snippet.err.Error(),
			})
		}
		message := fmt.Sprintf("Unable to load snippet %s", NormalizeSnippetPath(path))
		return r.View.Apply(t, func(s transcript.Surface) { s.AppendWarning(bubbleID, message) })
	}
	if snippet.result == nil {
		return t.Current()
	}
	markup := snippet.result.Markup
	if !snippet.result.IsMarkup {
		markup = WrapPlainText(markup)
	}
	return r.View.Apply(t, func(s transcript.Surface) { s.AppendSnippet(bubbleID, markup) })
}
