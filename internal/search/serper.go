package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"football-agent/internal/httpx"
)

const DefaultSerperURL = "https://google.serper.dev/search"

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// SerperClient posts queries to the Serper web-search API.
type SerperClient struct {
	http       *httpx.Client
	url        string
	apiKey     string
	num        int
	strategies []Strategy
}

type SerperOption func(*SerperClient)

func WithStrategies(s []Strategy) SerperOption {
	return func(c *SerperClient) {
		if len(s) > 0 {
			c.strategies = s
		}
	}
}

func WithURL(u string) SerperOption {
	return func(c *SerperClient) {
		if u != "" {
			c.url = u
		}
	}
}

func WithNum(n int) SerperOption {
	return func(c *SerperClient) {
		if n > 0 {
			c.num = n
		}
	}
}

func NewSerperClient(apiKey string, h *httpx.Client, opts ...SerperOption) *SerperClient {
	if h == nil {
		h = httpx.New("serper")
	}
	c := &SerperClient{
		http:       h,
		url:        DefaultSerperURL,
		apiKey:     apiKey,
		num:        10,
		strategies: DefaultStrategies(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Raw posts the query and returns the provider payload as untyped JSON.
func (c *SerperClient) Raw(ctx context.Context, query string) (map[string]any, error) {
	body, err := jsonAPI.Marshal(map[string]any{"q": query, "num": c.num})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.http.DoBytes(req)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := jsonAPI.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return payload, nil
}

// Search runs the query and extracts results with the configured strategies.
func (c *SerperClient) Search(ctx context.Context, query string) ([]Result, error) {
	payload, err := c.Raw(ctx, query)
	if err != nil {
		return nil, err
	}
	return ExtractResults(payload, c.strategies), nil
}
