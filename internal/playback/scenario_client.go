// internal/playback/scenario_client.go
package playback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
)

// StepSource loads the steps of a scenario.
type StepSource interface {
	FetchSteps(ctx context.Context, scenarioID string) ([]models.Step, error)
}

// ScenarioClient reads the scenario-detail endpoint.
type ScenarioClient struct {
	client   *http.Client
	baseURL  string
	template string
}

// NewScenarioClient creates a client for template, which must contain {id}.
func NewScenarioClient(client *http.Client, baseURL, template string) *ScenarioClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &ScenarioClient{client: client, baseURL: strings.TrimRight(baseURL, "/"), template: template}
}

// FetchSteps fails with *errors.ScenarioFetchError on any transport,
// status or decode problem.
func (c *ScenarioClient) FetchSteps(ctx context.Context, scenarioID string) ([]models.Step, error) {
	endpoint := strings.Replace(c.template, "{id}", url.PathEscape(scenarioID), 1)
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = c.baseURL + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &apperrors.ScenarioFetchError{ScenarioID: scenarioID, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &apperrors.ScenarioFetchError{ScenarioID: scenarioID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.ScenarioFetchError{ScenarioID: scenarioID, StatusCode: resp.StatusCode}
	}

	var detail models.ScenarioDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, &apperrors.ScenarioFetchError{ScenarioID: scenarioID, Err: fmt.Errorf("decode payload: %w", err)}
	}
	return detail.Steps, nil
}
