// internal/api/router.go
package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zageabb/reflex-AgentDemo/internal/config"
	"github.com/zageabb/reflex-AgentDemo/internal/di"
	"github.com/zageabb/reflex-AgentDemo/internal/services"
	"github.com/zageabb/reflex-AgentDemo/internal/storage"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

// Service names in the DI container.
const (
	ServiceScenarios = "scenarios"
	ServiceSnippets  = "snippets"
	ServicePlayback  = "playback"
	ServiceWebSocket = "websocket"
	ServiceLogger    = "logger"
	ServiceLimiter   = "rate_limiter"
)

// SetupRouter builds the HTTP routes from services already registered in
// container.
func SetupRouter(cfg *config.Config, container *di.Container) (*gin.Engine, error) {
	scenarios, ok := container.Get(ServiceScenarios).(*storage.ScenarioStore)
	if !ok {
		return nil, fmt.Errorf("scenario store not initialized")
	}
	snippets, ok := container.Get(ServiceSnippets).(*storage.SnippetStore)
	if !ok {
		return nil, fmt.Errorf("snippet store not initialized")
	}
	playbackService, ok := container.Get(ServicePlayback).(*services.PlaybackService)
	if !ok {
		return nil, fmt.Errorf("playback service not initialized")
	}
	logger, ok := container.GetTyped(ServiceLogger, utils.GetLogger()).(*utils.Logger)
	if !ok {
		return nil, fmt.Errorf("logger has the wrong type")
	}

	manager, ok := container.Get(ServiceWebSocket).(*WebSocketManager)
	if !ok {
		manager = NewWebSocketManager(logger)
		manager.Start()
		container.Register(ServiceWebSocket, manager)
	}
	limiter, ok := container.Get(ServiceLimiter).(*RateLimiter)
	if !ok {
		limiter = NewRateLimiter()
		container.Register(ServiceLimiter, limiter)
	}

	handler := NewHandler(scenarios, snippets, playbackService, manager, logger)

	if !cfg.Server.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(loggingMiddleware(logger, utils.GetAPIMetrics()))
	r.Use(corsMiddleware())

	r.GET("/healthz", handler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// collaborator endpoints the player fetches from
	r.GET("/scenario/:id", handler.GetScenarioDetail)
	r.GET("/snippet/*path", handler.GetSnippet)

	r.GET("/ws/sessions/:session", handler.SessionWebSocket)

	api := r.Group("/api")
	{
		scenariosGroup := api.Group("/scenarios")
		{
			scenariosGroup.GET("", handler.GetScenarios)
			scenariosGroup.GET("/:id", handler.GetScenario)
			scenariosGroup.GET("/:id/lint", handler.LintScenario)
		}

		sessionsGroup := api.Group("/sessions")
		{
			sessionsGroup.GET("", handler.ListSessions)
			sessionsGroup.POST("", handler.CreateSession)
			sessionsGroup.POST("/:session/play",
				RateLimitByIP(limiter, cfg.Server.PlayRateLimit, time.Minute),
				handler.Play)
			sessionsGroup.GET("/:session/transcript", handler.GetTranscript)
			sessionsGroup.DELETE("/:session", handler.CloseSession)
		}

		wsGroup := api.Group("/ws")
		{
			wsGroup.GET("/status", handler.GetWebSocketStatus)
			wsGroup.POST("/cleanup", handler.CleanupWebSocketConnections)
		}
	}

	return r, nil
}
