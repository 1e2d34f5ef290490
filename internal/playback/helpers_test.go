package playback

import (
	"context"
	"io"
	"sync"
	"time"

	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

const testCharDelay = 10 * time.Millisecond

func testPacing() Pacing {
	return Pacing{
		CharDelay: testCharDelay,
		User:      Range{PerChar: 15 * time.Millisecond, Min: 300 * time.Millisecond, Max: 1200 * time.Millisecond},
		Assistant: Range{PerChar: 12 * time.Millisecond, Min: 700 * time.Millisecond, Max: 2400 * time.Millisecond},
	}
}

func ms(v float64) *models.Millis {
	m := models.Millis(v)
	return &m
}

type fakeCatalog map[string]models.Scenario

func (f fakeCatalog) Lookup(_ context.Context, id string) (*models.Scenario, error) {
	s, ok := f[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("unknown scenario", nil)
	}
	return &s, nil
}

// slowCatalog delays lookups of selected ids.
type slowCatalog struct {
	fakeCatalog
	delay map[string]time.Duration
}

func (s slowCatalog) Lookup(ctx context.Context, id string) (*models.Scenario, error) {
	if d := s.delay[id]; d > 0 {
		time.Sleep(d)
	}
	return s.fakeCatalog.Lookup(ctx, id)
}

type fakeSteps struct {
	steps map[string][]models.Step
	errs  map[string]error
	block map[string]chan struct{} // closed when the blocking fetch starts
}

func (f *fakeSteps) FetchSteps(ctx context.Context, id string) ([]models.Step, error) {
	if started, ok := f.block[id]; ok {
		close(started)
		<-ctx.Done()
		return nil, &apperrors.ScenarioFetchError{ScenarioID: id, Err: ctx.Err()}
	}
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return f.steps[id], nil
}

type fakeSnippets struct {
	mu      sync.Mutex
	results map[string]*models.SnippetResult
	errs    map[string]error
	calls   []string
	onFetch func(path string)
}

func (f *fakeSnippets) Fetch(_ context.Context, path string) (*models.SnippetResult, error) {
	if f.onFetch != nil {
		f.onFetch(path)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	return f.results[path], nil
}

// recordingSleeper returns immediately and records every wait.
type recordingSleeper struct {
	mu    sync.Mutex
	calls []time.Duration
	hook  func(call int, d time.Duration)
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.calls = append(s.calls, d)
	n := len(s.calls)
	hook := s.hook
	s.mu.Unlock()

	if hook != nil {
		hook(n, d)
	}
	return ctx.Err()
}

func (s *recordingSleeper) Calls() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.calls...)
}

type eventLog struct {
	mu     sync.Mutex
	events []transcript.Event
}

func (l *eventLog) add(e transcript.Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) All() []transcript.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]transcript.Event(nil), l.events...)
}

func (l *eventLog) Reset() {
	l.mu.Lock()
	l.events = nil
	l.mu.Unlock()
}

type harness struct {
	ctrl     *Controller
	doc      *transcript.Document
	log      *eventLog
	sleeper  *recordingSleeper
	steps    *fakeSteps
	snippets *fakeSnippets
	catalog  fakeCatalog
}

func newHarness(opts ...Option) *harness {
	h := &harness{
		doc:      transcript.NewDocument(),
		log:      &eventLog{},
		sleeper:  &recordingSleeper{},
		steps:    &fakeSteps{steps: map[string][]models.Step{}, errs: map[string]error{}, block: map[string]chan struct{}{}},
		snippets: &fakeSnippets{results: map[string]*models.SnippetResult{}, errs: map[string]error{}},
		catalog:  fakeCatalog{},
	}
	logger := utils.NewLogger(io.Discard)
	h.ctrl = NewController(Dependencies{
		Surface:  transcript.Tee(h.doc, transcript.NewEmitter(h.log.add)),
		Catalog:  h.catalog,
		Steps:    h.steps,
		Snippets: h.snippets,
		Pacing:   testPacing(),
		Sleeper:  h.sleeper,
		Logger:   logger,
	}, opts...)
	return h
}

func (h *harness) addScenario(id string, steps ...models.Step) {
	h.catalog[id] = models.Scenario{ID: id, Title: "Scenario " + id, Category: "Demo", Accent: "#" + id}
	h.steps.steps[id] = steps
}
