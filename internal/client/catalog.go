// internal/client/catalog.go
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
)

// CatalogClient reads the scenario catalog from a player server.
type CatalogClient struct {
	client  *http.Client
	baseURL string
	path    string

	mu     sync.Mutex
	cached []models.Scenario
}

type catalogEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Scenarios []models.Scenario `json:"scenarios"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewCatalogClient creates a client for baseURL+catalogPath.
func NewCatalogClient(httpClient *http.Client, baseURL, catalogPath string) *CatalogClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CatalogClient{
		client:  httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    catalogPath,
	}
}

// List fetches the catalog, sorted as the server sorts it.
func (c *CatalogClient) List(ctx context.Context) ([]models.Scenario, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog request failed with status %d", resp.StatusCode)
	}

	var envelope catalogEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if !envelope.Success {
		if envelope.Error != nil {
			return nil, fmt.Errorf("catalog error %s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return nil, fmt.Errorf("catalog request was not successful")
	}

	c.mu.Lock()
	c.cached = envelope.Data.Scenarios
	c.mu.Unlock()
	return envelope.Data.Scenarios, nil
}

// Grouped fetches the catalog grouped by category.
func (c *CatalogClient) Grouped(ctx context.Context) ([]models.ScenarioGroup, error) {
	scenarios, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.GroupScenarios(scenarios), nil
}

// Lookup implements playback.Catalog. A miss in the last fetched catalog
// triggers one refetch.
func (c *CatalogClient) Lookup(ctx context.Context, scenarioID string) (*models.Scenario, error) {
	c.mu.Lock()
	cached := c.cached
	c.mu.Unlock()

	if s := find(cached, scenarioID); s != nil {
		return s, nil
	}
	scenarios, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	if s := find(scenarios, scenarioID); s != nil {
		return s, nil
	}
	return nil, apperrors.NewScenarioNotFoundError(scenarioID)
}

func find(scenarios []models.Scenario, id string) *models.Scenario {
	for i := range scenarios {
		if scenarios[i].ID == id {
			s := scenarios[i]
			return &s
		}
	}
	return nil
}
