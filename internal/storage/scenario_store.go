// internal/storage/scenario_store.go
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

// ScenarioExtensions are the scenario file types, in lookup order.
var ScenarioExtensions = []string{".json", ".yaml", ".yml"}

// ScenarioStore is the scenario catalog backed by a directory tree.
type ScenarioStore struct {
	dir    string
	cache  *PayloadCache
	logger *utils.Logger

	mu      sync.RWMutex
	loaded  bool
	entries []models.Scenario
	paths   map[string]string // scenario id -> file path
}

// NewScenarioStore creates a store over dir. The directory may not exist
// yet; the catalog is then empty.
func NewScenarioStore(dir string, logger *utils.Logger) *ScenarioStore {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &ScenarioStore{
		dir:    dir,
		cache:  NewPayloadCache(0),
		logger: logger,
	}
}

// Dir returns the scenario directory.
func (s *ScenarioStore) Dir() string {
	return s.dir
}

// List returns catalog entries for every parseable scenario file, sorted
// by path.
func (s *ScenarioStore) List(ctx context.Context) ([]models.Scenario, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Scenario(nil), s.entries...), nil
}

// Grouped returns the catalog grouped by category.
func (s *ScenarioStore) Grouped(ctx context.Context) ([]models.ScenarioGroup, error) {
	scenarios, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.GroupScenarios(scenarios), nil
}

// Lookup finds a scenario by id.
func (s *ScenarioStore) Lookup(ctx context.Context, scenarioID string) (*models.Scenario, error) {
	scenarios, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range scenarios {
		if scenarios[i].ID == scenarioID {
			return &scenarios[i], nil
		}
	}
	return nil, apperrors.NewScenarioNotFoundError(scenarioID)
}

// Detail returns the raw payload served by the scenario-detail endpoint.
// The id is reduced with SecureFilename and resolved to <id>.json (or
// YAML) in the top-level directory, then through catalog ids.
func (s *ScenarioStore) Detail(ctx context.Context, scenarioID string) (map[string]interface{}, error) {
	safeID := SecureFilename(scenarioID)
	if safeID == "" {
		return nil, apperrors.NewScenarioNotFoundError(scenarioID)
	}

	path := ""
	for _, ext := range ScenarioExtensions {
		candidate := filepath.Join(s.dir, safeID+ext)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			path = candidate
			break
		}
	}
	if path == "" {
		if err := s.ensureLoaded(ctx); err != nil {
			return nil, err
		}
		s.mu.RLock()
		path = s.paths[scenarioID]
		s.mu.RUnlock()
	}
	if path == "" {
		return nil, apperrors.NewScenarioNotFoundError(scenarioID)
	}

	payload, err := s.cache.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewScenarioNotFoundError(scenarioID)
		}
		return nil, apperrors.NewValidationError("Invalid scenario file", err)
	}
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return nil, apperrors.NewValidationError("Invalid scenario file", nil)
	}
	return obj, nil
}

// FetchSteps loads steps in-process, for players that read the scenario
// directory directly.
func (s *ScenarioStore) FetchSteps(ctx context.Context, scenarioID string) ([]models.Step, error) {
	payload, err := s.Detail(ctx, scenarioID)
	if err != nil {
		return nil, &apperrors.ScenarioFetchError{ScenarioID: scenarioID, Err: err}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &apperrors.ScenarioFetchError{ScenarioID: scenarioID, Err: err}
	}
	var detail models.ScenarioDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, &apperrors.ScenarioFetchError{ScenarioID: scenarioID, Err: err}
	}
	return detail.Steps, nil
}

// Invalidate forgets the catalog and any cached file at or below path.
// An empty path clears everything.
func (s *ScenarioStore) Invalidate(path string) {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()

	if path == "" {
		s.cache.Clear()
		return
	}
	s.cache.Delete(path)
}

func (s *ScenarioStore) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	entries, paths, err := s.scan(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = entries
	s.paths = paths
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *ScenarioStore) scan(ctx context.Context) ([]models.Scenario, map[string]string, error) {
	var files []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.dir {
				return filepath.SkipDir
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.Type().IsRegular() && isScenarioFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, apperrors.NewProcessingError("failed to scan scenarios", err)
	}
	sort.Strings(files)

	entries := make([]models.Scenario, 0, len(files))
	paths := make(map[string]string, len(files))
	for _, path := range files {
		payload, err := s.cache.Load(path)
		if err != nil {
			s.logger.Warn("failed to parse scenario file", map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			})
			continue
		}
		obj, ok := payload.(map[string]interface{})
		if !ok {
			s.logger.Warn("scenario file is not an object", map[string]interface{}{"file": path})
			continue
		}

		base := filepath.Base(path)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		scenario := models.ScenarioFromPayload(obj, stem, base)
		if _, dup := paths[scenario.ID]; dup {
			s.logger.Warn("duplicate scenario id", map[string]interface{}{"id": scenario.ID, "file": path})
		} else {
			paths[scenario.ID] = path
		}
		entries = append(entries, scenario)
	}
	return entries, paths, nil
}

func isScenarioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range ScenarioExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}
