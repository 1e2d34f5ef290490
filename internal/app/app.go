// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zageabb/reflex-AgentDemo/internal/api"
	"github.com/zageabb/reflex-AgentDemo/internal/config"
	"github.com/zageabb/reflex-AgentDemo/internal/di"
	"github.com/zageabb/reflex-AgentDemo/internal/playback"
	"github.com/zageabb/reflex-AgentDemo/internal/services"
	"github.com/zageabb/reflex-AgentDemo/internal/storage"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

const (
	sessionTTL      = 30 * time.Minute
	shutdownTimeout = 30 * time.Second
	fetchTimeout    = 15 * time.Second

	serviceWatcher = "watcher"
)

// Server is the part of *http.Server the app drives.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App wires the player server together.
type App struct {
	config    *config.Config
	container *di.Container
	logger    *utils.Logger

	server    Server
	uploads   *storage.FileStorage
	scenarios *storage.ScenarioStore
	snippets  *storage.SnippetStore
	playback  *services.PlaybackService
	watcher   *storage.Watcher
}

// New creates an app over cfg with its own DI container.
func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		container: di.NewContainer(),
		logger:    utils.GetLogger(),
	}
}

// Initialize prepares directories, logging, storage and services, and
// builds the HTTP server.
func (a *App) Initialize() error {
	cfg := a.config
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if cfg.Paths.LogDir != "" {
		if err := utils.InitLogger(filepath.Join(cfg.Paths.LogDir, "server.log")); err != nil {
			return err
		}
	}
	a.logger.SetLogLevel(cfg.Server.LogLevel)

	uploads, err := storage.NewFileStorage(cfg.Paths.UploadDir)
	if err != nil {
		return err
	}
	copied, err := storage.SyncSnippetTree(cfg.Paths.SnippetDir, uploads)
	if err != nil {
		return fmt.Errorf("failed to seed snippets: %w", err)
	}
	if copied > 0 {
		a.logger.Info("bundled snippets copied", map[string]interface{}{"count": copied})
	}
	var bundled *storage.FileStorage
	if info, err := os.Stat(cfg.Paths.SnippetDir); err == nil && info.IsDir() {
		if bundled, err = storage.NewFileStorage(cfg.Paths.SnippetDir); err != nil {
			return err
		}
	}

	a.uploads = uploads
	a.scenarios = storage.NewScenarioStore(cfg.Paths.ScenarioDir, a.logger)
	a.snippets = storage.NewSnippetStore(uploads, bundled)

	httpClient := &http.Client{Timeout: fetchTimeout}
	a.playback = services.NewPlaybackService(services.PlaybackDeps{
		Catalog:    a.scenarios,
		Steps:      playback.NewScenarioClient(httpClient, cfg.Endpoints.BaseURL, cfg.Endpoints.ScenarioTemplate),
		Snippets:   playback.NewSnippetFetcher(httpClient, cfg.Endpoints.BaseURL, cfg.Endpoints.SnippetTemplate),
		Pacing:     playback.PacingFromConfig(cfg.Pacing),
		Logger:     a.logger,
		SessionTTL: sessionTTL,
	})

	a.container.Register(api.ServiceLogger, a.logger)
	a.container.Register(api.ServiceScenarios, a.scenarios)
	a.container.Register(api.ServiceSnippets, a.snippets)
	a.container.Register(api.ServicePlayback, a.playback)

	watcher, err := storage.NewWatcher(a.onFileChange, a.logger)
	if err != nil {
		a.logger.Warn("file watching disabled", map[string]interface{}{"error": err.Error()})
	} else {
		for _, dir := range []string{cfg.Paths.ScenarioDir, cfg.Paths.UploadDir} {
			if err := watcher.AddTree(dir); err != nil {
				a.logger.Warn("directory not watched", map[string]interface{}{"dir": dir, "error": err.Error()})
			}
		}
		a.watcher = watcher
		a.container.Register(serviceWatcher, watcher)
	}

	router, err := api.SetupRouter(cfg, a.container)
	if err != nil {
		return fmt.Errorf("failed to set up routes: %w", err)
	}
	if a.server == nil {
		a.server = &http.Server{
			Addr:    ":" + cfg.Server.Port,
			Handler: router,
		}
	}

	a.logger.Info("services initialized", map[string]interface{}{
		"services": strings.Join(a.container.GetNames(), ","),
	})
	return nil
}

// onFileChange drops cached catalog and snippet data below path.
func (a *App) onFileChange(path string) {
	if _, ok := relativeTo(path, a.config.Paths.ScenarioDir); ok {
		a.scenarios.Invalidate(path)
		a.logger.Debug("scenario catalog invalidated", map[string]interface{}{"path": path})
		return
	}
	if rel, ok := relativeTo(path, a.config.Paths.UploadDir); ok {
		a.snippets.Invalidate(rel)
	}
}

// relativeTo returns path relative to dir when path lies inside it.
func relativeTo(path, dir string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Run serves until ctx is done, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.server == nil {
		return errors.New("app not initialized")
	}

	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.uploads.StartCacheCleanup(bgCtx)
	a.playback.StartCleanup(bgCtx, time.Minute)
	if a.watcher != nil {
		go a.watcher.Run(bgCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", map[string]interface{}{"port": a.config.Server.Port})
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.Cleanup()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", nil)
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	err := a.server.Shutdown(shutdownCtx)
	a.Cleanup()
	return err
}

// Cleanup stops every service.
func (a *App) Cleanup() {
	a.container.Shutdown()
}

// GetConfig returns the configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetDIContainer returns the app's service container
func (a *App) GetDIContainer() *di.Container {
	return a.container
}

// IsDebugMode reports whether debug mode is on
func (a *App) IsDebugMode() bool {
	return a.config.Server.DebugMode
}
