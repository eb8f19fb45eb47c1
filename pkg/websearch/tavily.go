package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrMissingAPIKey = errors.New("web search api key is not configured")

type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Searcher is the external web search boundary: query in, ranked results out.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

type TavilyClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
}

func NewTavilyClient(apiKey string, maxResults int) *TavilyClient {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &TavilyClient{
		apiKey:     apiKey,
		baseURL:    "https://api.tavily.com/search",
		maxResults: maxResults,
		client:     &http.Client{Timeout: 20 * time.Second},
	}
}

// WithBaseURL points the client at another endpoint (tests, self-hosted gateways).
func (c *TavilyClient) WithBaseURL(url string) *TavilyClient {
	c.baseURL = url
	return c
}

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
	Topic       string `json:"topic"`
}

type tavilyResponse struct {
	Results []Result `json:"results"`
}

func (c *TavilyClient) Search(ctx context.Context, query string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      c.apiKey,
		Query:       query,
		MaxResults:  c.maxResults,
		SearchDepth: "basic",
		Topic:       "general",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var decoded tavilyResponse
	if err := json.Unmarshal(bodyBytes, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return decoded.Results, nil
}
