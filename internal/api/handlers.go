// internal/api/handlers.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/services"
	"github.com/zageabb/reflex-AgentDemo/internal/storage"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

// Handler serves the catalog, the collaborator endpoints the player
// fetches from, and per-session playback.
type Handler struct {
	Scenarios        *storage.ScenarioStore
	Snippets         *storage.SnippetStore
	Playback         *services.PlaybackService
	WebSocketHandler *WebSocketHandler
	Manager          *WebSocketManager
	Response         *ResponseHelper
	logger           *utils.Logger
}

// PlayRequest starts a scenario on a session.
type PlayRequest struct {
	ScenarioID string `json:"scenario_id" binding:"required"`
	Restart    bool   `json:"restart"`
}

// CatalogResponse is the scenario listing.
type CatalogResponse struct {
	Scenarios []models.Scenario      `json:"scenarios"`
	Groups    []models.ScenarioGroup `json:"groups"`
}

// NewHandler creates the API handler.
func NewHandler(
	scenarios *storage.ScenarioStore,
	snippets *storage.SnippetStore,
	playbackService *services.PlaybackService,
	manager *WebSocketManager,
	logger *utils.Logger) *Handler {

	return &Handler{
		Scenarios:        scenarios,
		Snippets:         snippets,
		Playback:         playbackService,
		WebSocketHandler: NewWebSocketHandler(manager, playbackService, logger),
		Manager:          manager,
		Response:         NewResponseHelper(),
		logger:           logger,
	}
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GetScenarios lists the catalog, flat and grouped by category
func (h *Handler) GetScenarios(c *gin.Context) {
	scenarios, err := h.Scenarios.List(c.Request.Context())
	if err != nil {
		h.Response.Error(c, http.StatusInternalServerError, ErrorCatalogUnavailable, "failed to load scenarios", err.Error())
		return
	}
	h.Response.Success(c, CatalogResponse{
		Scenarios: scenarios,
		Groups:    models.GroupScenarios(scenarios),
	})
}

// GetScenario returns one catalog entry
func (h *Handler) GetScenario(c *gin.Context) {
	scenario, err := h.Scenarios.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Response.HandleError(c, err, "scenario")
		return
	}
	h.Response.Success(c, scenario)
}

// LintScenario reports the structural warnings of a scenario file
func (h *Handler) LintScenario(c *gin.Context) {
	payload, err := h.Scenarios.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Response.HandleError(c, err, "scenario")
		return
	}
	report, err := models.LintPayload(payload)
	if err != nil {
		h.Response.Error(c, http.StatusUnprocessableEntity, ErrorScenarioInvalid, err.Error())
		return
	}
	h.Response.Success(c, report)
}

// GetScenarioDetail is the scenario-detail endpoint: the raw scenario
// payload, unwrapped, as the player's step fetch expects it.
func (h *Handler) GetScenarioDetail(c *gin.Context) {
	payload, err := h.Scenarios.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Response.HandleError(c, err, "scenario")
		return
	}
	c.JSON(http.StatusOK, payload)
}

// GetSnippet is the snippet endpoint. Uploaded files win over bundled ones.
func (h *Handler) GetSnippet(c *gin.Context) {
	snippet, err := h.Snippets.Resolve(c.Param("path"))
	if err != nil {
		h.Response.HandleError(c, err, "snippet")
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, snippet.ContentType, snippet.Data)
}

// CreateSession allocates a fresh session id
func (h *Handler) CreateSession(c *gin.Context) {
	sess, err := h.Playback.Session(services.NewSessionID())
	if err != nil {
		h.Response.InternalError(c, "failed to create session", err.Error())
		return
	}
	h.Response.Created(c, gin.H{"session_id": sess.ID}, "session created")
}

// ListSessions reports live sessions
func (h *Handler) ListSessions(c *gin.Context) {
	h.Response.Success(c, h.Playback.Sessions())
}

// Play starts a scenario on a session, superseding whatever it was
// playing. The playback continues after the response.
func (h *Handler) Play(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "scenario_id is required", err.Error())
		return
	}

	sessionID := c.Param("session")
	if !services.ValidSessionID(sessionID) {
		h.Response.Error(c, http.StatusBadRequest, ErrorSessionInvalid, "invalid session id")
		return
	}

	if _, err := h.Playback.Play(c.Request.Context(), sessionID, req.ScenarioID, req.Restart); err != nil {
		h.Response.HandleError(c, err, "scenario")
		return
	}

	h.Response.Accepted(c, gin.H{
		"session_id":  sessionID,
		"scenario_id": req.ScenarioID,
		"restart":     req.Restart,
	}, "playback started")
}

// GetTranscript returns the session's current transcript
func (h *Handler) GetTranscript(c *gin.Context) {
	snapshot, err := h.Playback.Snapshot(c.Param("session"))
	if err != nil {
		h.Response.HandleError(c, err, "session")
		return
	}
	h.Response.Success(c, snapshot)
}

// CloseSession stops a session's playback and forgets it
func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.Playback.CloseSession(c.Param("session")); err != nil {
		h.Response.HandleError(c, err, "session")
		return
	}
	h.Response.Success(c, nil, "session closed")
}

// SessionWebSocket streams a session's transcript
func (h *Handler) SessionWebSocket(c *gin.Context) {
	h.WebSocketHandler.SessionWebSocket(c)
}

// GetWebSocketStatus reports connected viewers
func (h *Handler) GetWebSocketStatus(c *gin.Context) {
	status := h.Manager.GetStatus()
	status["ping_timeout_seconds"] = int(h.Manager.pingTimeout.Seconds())
	status["timestamp"] = time.Now().Format(time.RFC3339)
	c.JSON(http.StatusOK, status)
}

// CleanupWebSocketConnections drops expired viewers
func (h *Handler) CleanupWebSocketConnections(c *gin.Context) {
	removed := h.Manager.cleanupExpiredConnections()
	h.Response.Success(c, gin.H{"removed": removed}, "cleanup complete")
}
