package pricer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Estimator predicts a market price for a free-text product description.
// Implementations fail loudly: a remote outage is an error, never a silent
// zero, so callers cannot mistake "service down" for "estimated zero".
type Estimator interface {
	Name() string
	Predict(ctx context.Context, description string) (float64, error)
}

// Client calls one remote pricing service. The three model backends (a
// fine-tuned LLM, a retrieval-augmented pipeline and a gradient-boosted
// regressor) share the same request/response contract on different paths.
type Client struct {
	httpClient *http.Client
	baseURL    string
	path       string
	name       string
}

func NewFTClient(httpClient *http.Client, baseURL string) *Client {
	return newClient(httpClient, baseURL, "/ft/price", "ft_pricer")
}

func NewRAGClient(httpClient *http.Client, baseURL string) *Client {
	return newClient(httpClient, baseURL, "/rag/price", "rag_pricer")
}

func NewXGBClient(httpClient *http.Client, baseURL string) *Client {
	return newClient(httpClient, baseURL, "/xgb/price", "xgb_pricer")
}

func newClient(httpClient *http.Client, baseURL, path, name string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		path:       path,
		name:       name,
	}
}

func (c *Client) Name() string {
	return c.name
}

type predictRequest struct {
	Description string `json:"description"`
}

type predictResponse struct {
	Price float64 `json:"price"`
}

func (c *Client) Predict(ctx context.Context, description string) (float64, error) {
	if description == "" {
		return 0, fmt.Errorf("%s: description is empty", c.name)
	}

	body, err := json.Marshal(predictRequest{Description: description})
	if err != nil {
		return 0, fmt.Errorf("%s: failed to encode request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+c.path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%s: failed to create request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: prediction request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%s: HTTP error: %d %s", c.name, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to read response body: %w", c.name, err)
	}

	var parsed predictResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return 0, fmt.Errorf("%s: failed to decode response: %w", c.name, err)
	}

	if parsed.Price < 0 {
		return 0, fmt.Errorf("%s: negative price %.2f", c.name, parsed.Price)
	}

	return parsed.Price, nil
}
