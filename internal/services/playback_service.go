// internal/services/playback_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/playback"
	"github.com/zageabb/reflex-AgentDemo/internal/storage"
	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

// Publisher receives every surface event of a session.
// It is called while the session's playback lock is held and must not block.
type Publisher func(sessionID string, event transcript.Event)

// Session is one viewer's transcript and the controller driving it.
type Session struct {
	ID         string
	Controller *playback.Controller
	Document   *transcript.Document

	CreatedAt time.Time
	lastUsed  time.Time
	selected  string
}

// SessionInfo summarizes a session for status endpoints.
type SessionInfo struct {
	ID         string    `json:"id"`
	Generation uint64    `json:"generation"`
	Selected   string    `json:"selected,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsed   time.Time `json:"last_used"`
}

// PlaybackDeps wires the service to its collaborators.
type PlaybackDeps struct {
	Catalog  playback.Catalog
	Steps    playback.StepSource
	Snippets playback.SnippetSource
	Pacing   playback.Pacing
	Sleeper  playback.Sleeper
	Logger   *utils.Logger

	// SessionTTL is how long an idle session survives; zero disables expiry.
	SessionTTL time.Duration
}

// PlaybackService keeps one playback controller per viewer session.
type PlaybackService struct {
	deps PlaybackDeps

	mu       sync.RWMutex
	sessions map[string]*Session

	// pubMu is separate from mu: publish runs under a controller's lock.
	pubMu     sync.RWMutex
	publisher Publisher

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPlaybackService creates the service. Playbacks it launches run until
// superseded, finished, or Shutdown.
func NewPlaybackService(deps PlaybackDeps) *PlaybackService {
	if deps.Logger == nil {
		deps.Logger = utils.GetLogger()
	}
	if deps.Sleeper == nil {
		deps.Sleeper = playback.SystemSleeper{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PlaybackService{
		deps:     deps,
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetPublisher installs the event sink used by sessions created afterwards
// as well as existing ones.
func (s *PlaybackService) SetPublisher(p Publisher) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.publisher = p
}

func (s *PlaybackService) publish(sessionID string, event transcript.Event) {
	s.pubMu.RLock()
	p := s.publisher
	s.pubMu.RUnlock()
	if p != nil {
		p(sessionID, event)
	}
}

// NewSessionID returns a fresh session id.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id can name a session.
func ValidSessionID(id string) bool {
	return id != "" && len(id) <= 64 && storage.SecureFilename(id) == id
}

// Session returns the session named id, creating it on first use.
func (s *PlaybackService) Session(id string) (*Session, error) {
	if !ValidSessionID(id) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid session id %q", id), nil)
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		s.touch(sess)
		return sess, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.lastUsed = time.Now()
		return sess, nil
	}
	sess = s.newSessionLocked(id)
	s.sessions[id] = sess
	s.deps.Logger.Debug("session created", map[string]interface{}{"session": id})
	return sess, nil
}

// Existing returns a session without creating it.
func (s *PlaybackService) Existing(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("session %q not found", id), nil)
	}
	return sess, nil
}

func (s *PlaybackService) newSessionLocked(id string) *Session {
	doc := transcript.NewDocument()
	emitter := transcript.NewEmitter(func(e transcript.Event) { s.publish(id, e) })
	now := time.Now()
	sess := &Session{ID: id, Document: doc, CreatedAt: now, lastUsed: now}

	sess.Controller = playback.NewController(playback.Dependencies{
		Surface:  transcript.Tee(doc, emitter),
		Catalog:  s.deps.Catalog,
		Steps:    s.deps.Steps,
		Snippets: s.deps.Snippets,
		Pacing:   s.deps.Pacing,
		Sleeper:  s.deps.Sleeper,
		Logger:   s.deps.Logger,
	}, playback.WithSelectionListener(func(sc models.Scenario) {
		s.mu.Lock()
		sess.selected = sc.ID
		s.mu.Unlock()
		s.deps.Logger.Info("scenario selected", map[string]interface{}{
			"session":  id,
			"scenario": sc.ID,
		})
	}))
	return sess
}

// Touch marks a live session as used so CleanupIdle keeps it. Unknown ids
// are ignored.
func (s *PlaybackService) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.lastUsed = time.Now()
	}
}

func (s *PlaybackService) touch(sess *Session) {
	s.mu.Lock()
	sess.lastUsed = time.Now()
	s.mu.Unlock()
}

// Play validates scenarioID and starts it in the background on the session,
// superseding whatever the session was playing. The returned channel
// delivers the playback's result.
func (s *PlaybackService) Play(ctx context.Context, sessionID, scenarioID string, restart bool) (<-chan playback.Result, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.deps.Catalog.Lookup(ctx, scenarioID); err != nil {
		return nil, err
	}

	done := sess.Controller.Launch(s.ctx, scenarioID, playback.Options{Restart: restart})
	result := make(chan playback.Result, 1)
	go func() {
		r := <-done
		if r.Err != nil {
			s.deps.Logger.Warn("playback ended with error", map[string]interface{}{
				"session":  sessionID,
				"scenario": scenarioID,
				"outcome":  string(r.Outcome),
				"error":    r.Err.Error(),
			})
		}
		result <- r
	}()
	return result, nil
}

// Snapshot returns the session's current transcript.
func (s *PlaybackService) Snapshot(sessionID string) (transcript.Snapshot, error) {
	sess, err := s.Existing(sessionID)
	if err != nil {
		return transcript.Snapshot{}, err
	}
	return sess.Document.Snapshot(), nil
}

// CloseSession stops and forgets a session.
func (s *PlaybackService) CloseSession(sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("session %q not found", sessionID), nil)
	}
	sess.Controller.Close()
	return nil
}

// Sessions lists live sessions ordered by creation time.
func (s *PlaybackService) Sessions() []SessionInfo {
	s.mu.RLock()
	infos := make([]SessionInfo, 0, len(s.sessions))
	controllers := make([]*playback.Controller, 0, len(s.sessions))
	for _, sess := range s.sessions {
		infos = append(infos, SessionInfo{
			ID:        sess.ID,
			Selected:  sess.selected,
			CreatedAt: sess.CreatedAt,
			LastUsed:  sess.lastUsed,
		})
		controllers = append(controllers, sess.Controller)
	}
	s.mu.RUnlock()

	for i, c := range controllers {
		infos[i].Generation = c.Generation()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.Before(infos[j].CreatedAt) })
	return infos
}

// CleanupIdle closes sessions unused for longer than the configured TTL and
// returns how many were removed.
func (s *PlaybackService) CleanupIdle(now time.Time) int {
	if s.deps.SessionTTL <= 0 {
		return 0
	}
	var expired []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.deps.SessionTTL {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Controller.Close()
	}
	if len(expired) > 0 {
		s.deps.Logger.Info("idle sessions removed", map[string]interface{}{"count": len(expired)})
	}
	return len(expired)
}

// StartCleanup runs CleanupIdle periodically until ctx is done.
func (s *PlaybackService) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.CleanupIdle(now)
			}
		}
	}()
}

// Shutdown cancels every playback.
func (s *PlaybackService) Shutdown() {
	s.cancel()
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Controller.Close()
	}
}
