// internal/playback/controller.go
package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

// Outcome is how a playback settled.
type Outcome string

const (
	OutcomeCompleted  Outcome = "completed"
	OutcomeSuperseded Outcome = "superseded"
	OutcomeFailed     Outcome = "failed"
	OutcomeSkipped    Outcome = "skipped"
)

// Options tune a single playback.
type Options struct {
	Restart bool
}

// Result is delivered by Launch.
type Result struct {
	Outcome Outcome
	Err     error
}

// Catalog resolves scenario ids. Unknown ids yield a not-found AppError.
type Catalog interface {
	Lookup(ctx context.Context, scenarioID string) (*models.Scenario, error)
}

// Dependencies wires a controller.
type Dependencies struct {
	Surface  transcript.Surface
	Catalog  Catalog
	Steps    StepSource
	Snippets SnippetSource
	Pacing   Pacing
	Sleeper  Sleeper
	Logger   *utils.Logger
}

// Option customizes a controller.
type Option func(*Controller)

// WithSelectionListener registers fn to be told about each announced
// scenario selection.
func WithSelectionListener(fn func(models.Scenario)) Option {
	return func(c *Controller) {
		c.listeners = append(c.listeners, fn)
	}
}

// Controller drives one transcript. It owns the generation counter; any
// call to StartPlayback supersedes the playback in flight.
type Controller struct {
	epoch     *Epoch
	view      *View
	catalog   Catalog
	steps     StepSource
	renderers map[models.Actor]TurnRenderer
	logger    *utils.Logger

	listenerMu sync.Mutex
	listeners  []func(models.Scenario)
}

// NewController creates a controller.
func NewController(deps Dependencies, opts ...Option) *Controller {
	if deps.Sleeper == nil {
		deps.Sleeper = SystemSleeper{}
	}
	if deps.Logger == nil {
		deps.Logger = utils.GetLogger()
	}

	epoch := NewEpoch()
	view := NewView(deps.Surface, epoch, deps.Pacing.ScrollDebounce)
	turnDeps := TurnDeps{
		View:     view,
		Text:     NewTextRenderer(view, deps.Sleeper, deps.Pacing.CharDelay),
		Snippets: deps.Snippets,
		Sleeper:  deps.Sleeper,
		Pacing:   deps.Pacing,
		Logger:   deps.Logger,
	}

	c := &Controller{
		epoch:   epoch,
		view:    view,
		catalog: deps.Catalog,
		steps:   deps.Steps,
		renderers: map[models.Actor]TurnRenderer{
			models.ActorUser:      NewUserTurnRenderer(turnDeps),
			models.ActorAssistant: NewAssistantTurnRenderer(turnDeps),
		},
		logger: deps.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddSelectionListener registers fn after construction.
func (c *Controller) AddSelectionListener(fn func(models.Scenario)) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Generation returns the current generation number.
func (c *Controller) Generation() uint64 {
	return c.epoch.Generation()
}

// Sync runs fn while no playback can touch the surface. Copying the
// transcript and subscribing to later changes inside fn lines the two up.
func (c *Controller) Sync(fn func()) {
	c.epoch.Locked(fn)
}

// Close cancels the playback in flight.
func (c *Controller) Close() {
	c.epoch.Close()
}

// Launch runs StartPlayback on its own goroutine. The request is ordered
// when Launch is called, so of two launches the later one wins even if its
// scenario is ready first.
func (c *Controller) Launch(ctx context.Context, scenarioID string, opts Options) <-chan Result {
	ticket := c.epoch.Reserve()
	done := make(chan Result, 1)
	go func() {
		outcome, err := c.startPlayback(ctx, ticket, scenarioID, opts)
		done <- Result{Outcome: outcome, Err: err}
	}()
	return done
}

// StartPlayback plays scenarioID and blocks until the playback completes,
// fails, or is superseded. An unknown id changes nothing on screen.
func (c *Controller) StartPlayback(ctx context.Context, scenarioID string, opts Options) (Outcome, error) {
	return c.startPlayback(ctx, c.epoch.Reserve(), scenarioID, opts)
}

func (c *Controller) startPlayback(ctx context.Context, ticket uint64, scenarioID string, opts Options) (Outcome, error) {
	scenario, err := c.catalog.Lookup(ctx, scenarioID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			c.logger.Warn("scenario not found", map[string]interface{}{"scenario": scenarioID})
			err = apperrors.NewScenarioNotFoundError(scenarioID)
		} else {
			c.logger.Error("scenario lookup failed", map[string]interface{}{
				"scenario": scenarioID,
				"error":    err.Error(),
			})
		}
		playbacksFinished.WithLabelValues(string(OutcomeSkipped)).Inc()
		return OutcomeSkipped, err
	}

	tok, ok := c.epoch.Claim(ctx, ticket)
	if !ok {
		// a later request took over while this one was looking up
		c.logger.Debug("playback superseded before start", map[string]interface{}{"scenario": scenario.ID})
		playbacksFinished.WithLabelValues(string(OutcomeSuperseded)).Inc()
		return OutcomeSuperseded, nil
	}
	spanCtx, span := startPlaybackSpan(tok.Context(), scenario.ID, tok.Generation(), opts.Restart)
	tok = tok.withContext(spanCtx)
	playbacksStarted.Inc()
	started := time.Now()

	outcome, err := c.run(tok, scenario, opts)

	// the newer playback owns the controls once this one is stale
	c.view.Apply(tok, func(s transcript.Surface) { s.SetControlsEnabled(true) })

	if outcome == OutcomeSuperseded {
		c.logger.Debug("playback superseded", map[string]interface{}{
			"scenario":   scenario.ID,
			"generation": tok.Generation(),
		})
	}
	playbacksFinished.WithLabelValues(string(outcome)).Inc()
	playbackDuration.WithLabelValues(string(outcome)).Observe(time.Since(started).Seconds())
	endPlaybackSpan(span, outcome, err)
	return outcome, err
}

func (c *Controller) run(tok Token, scenario *models.Scenario, opts Options) (Outcome, error) {
	ok := c.view.Apply(tok, func(s transcript.Surface) { s.SetControlsEnabled(false) }) &&
		c.view.Reset(tok) &&
		c.view.Apply(tok, func(s transcript.Surface) { s.SetAccent(scenario.Accent) })
	if !ok {
		return OutcomeSuperseded, nil
	}

	if !opts.Restart {
		if !c.view.Apply(tok, func(s transcript.Surface) { s.SelectScenario(*scenario) }) {
			return OutcomeSuperseded, nil
		}
		c.notifySelection(*scenario)
	}

	loading := fmt.Sprintf("Loading %s…", scenario.Title)
	if opts.Restart {
		loading = fmt.Sprintf("Restarting %s…", scenario.Title)
	}
	if !c.feedback(tok, transcript.FeedbackLoading, loading) {
		return OutcomeSuperseded, nil
	}

	steps, err := c.steps.FetchSteps(tok.Context(), scenario.ID)
	if !tok.Current() {
		return OutcomeSuperseded, nil
	}
	if err != nil {
		c.logger.Error("failed to load scenario steps", map[string]interface{}{
			"scenario": scenario.ID,
			"error":    err.Error(),
		})
		if !c.feedback(tok, transcript.FeedbackError, "Unable to play this scenario.") {
			return OutcomeSuperseded, nil
		}
		return OutcomeFailed, err
	}

	if !c.feedback(tok, transcript.FeedbackPlaying, fmt.Sprintf("Playing %s", scenario.Title)) {
		return OutcomeSuperseded, nil
	}

	for i, step := range steps {
		if !tok.Current() {
			return OutcomeSuperseded, nil
		}

		role := step.Role()
		renderer, known := c.renderers[role]
		if !known {
			stepsSkipped.Inc()
			c.logger.Debug("skipping step with unknown actor", map[string]interface{}{
				"scenario": scenario.ID,
				"step":     i + 1,
				"actor":    step.Actor,
			})
			continue
		}

		span := startTurnSpan(tok.Context(), string(role), i)
		rendered := renderer.RenderTurn(tok, step)
		span.End()
		if !rendered {
			return OutcomeSuperseded, nil
		}
	}

	if !c.feedback(tok, transcript.FeedbackComplete, fmt.Sprintf("Finished %s", scenario.Title)) {
		return OutcomeSuperseded, nil
	}
	c.logger.Info("playback complete", map[string]interface{}{
		"scenario": scenario.ID,
		"steps":    len(steps),
	})
	return OutcomeCompleted, nil
}

func (c *Controller) feedback(tok Token, state transcript.FeedbackState, message string) bool {
	return c.view.Apply(tok, func(s transcript.Surface) { s.SetFeedback(state, message) })
}

func (c *Controller) notifySelection(scenario models.Scenario) {
	c.listenerMu.Lock()
	listeners := append([]func(models.Scenario){}, c.listeners...)
	c.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(scenario)
	}
}
