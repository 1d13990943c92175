package worldstats

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/koryxa/dispatch/auth"
	"github.com/koryxa/dispatch/connectors"
	"github.com/koryxa/dispatch/core/needindex"
)

// Client fetches country indicators from a world statistics API. The payload
// is the same shape the need index consumes, so the response maps directly
// onto CountryStats.
type Client struct {
	baseURL    string
	authClient *auth.ClientCred
	countries  []string
	httpClient *http.Client
}

// New creates a client for the given endpoint. authClient may be nil when the
// provider does not require authentication.
func New(baseURL string, authClient *auth.ClientCred) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		authClient: authClient,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type response struct {
	Countries []needindex.CountryStats `json:"countries"`
}

// Fetch retrieves statistics for the configured countries. Options narrow the
// request; with no options every country the provider knows is returned.
func (c *Client) Fetch(opts ...connectors.Option) ([]needindex.CountryStats, error) {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	url := c.baseURL + "/countries"
	if len(c.countries) > 0 {
		url += "?codes=" + strings.Join(c.countries, ",")
	}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.authClient != nil {
		if err := c.authClient.SetAuthHeader(req); err != nil {
			return nil, fmt.Errorf("failed to set auth header: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var stats response
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return stats.Countries, nil
}
