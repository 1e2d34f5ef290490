// cmd/demoplay/sources.go
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/zageabb/reflex-AgentDemo/internal/client"
	"github.com/zageabb/reflex-AgentDemo/internal/config"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/playback"
	"github.com/zageabb/reflex-AgentDemo/internal/services"
	"github.com/zageabb/reflex-AgentDemo/internal/storage"
)

type sourceOptions struct {
	server     string
	dir        string
	snippetDir string
}

type catalog interface {
	playback.Catalog
	List(ctx context.Context) ([]models.Scenario, error)
	Grouped(ctx context.Context) ([]models.ScenarioGroup, error)
}

// sources is where scenarios, their steps and snippets come from.
type sources struct {
	cfg      *config.Config
	catalog  catalog
	steps    playback.StepSource
	snippets playback.SnippetSource
}

func (o *sourceOptions) open() (*sources, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	src := &sources{cfg: cfg}

	if o.server != "" {
		httpClient := &http.Client{Timeout: 15 * time.Second}
		src.catalog = client.NewCatalogClient(httpClient, o.server, cfg.Endpoints.CatalogPath)
		src.steps = playback.NewScenarioClient(httpClient, o.server, cfg.Endpoints.ScenarioTemplate)
		src.snippets = playback.NewSnippetFetcher(httpClient, o.server, cfg.Endpoints.SnippetTemplate)
		return src, nil
	}

	dir := o.dir
	if dir == "" {
		dir = cfg.Paths.ScenarioDir
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	store := storage.NewScenarioStore(dir, nil)
	src.catalog = store
	src.steps = store

	snippetDir := o.snippetDir
	if snippetDir == "" {
		snippetDir = cfg.Paths.SnippetDir
	}
	var snippets *storage.FileStorage
	if info, err := os.Stat(snippetDir); err == nil && info.IsDir() {
		if snippets, err = storage.NewFileStorage(snippetDir); err != nil {
			return nil, err
		}
	}
	// A missing directory still yields a source; every fetch then 404s.
	src.snippets = services.LocalSnippets{Store: storage.NewSnippetStore(snippets, nil)}
	return src, nil
}
