// Package llm calls the Gemini generateContent endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"football-agent/internal/config"
	"football-agent/internal/httpx"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1"
	DefaultModel   = "gemini-2.0-flash"
)

// NoRecommendation is shown when the recommendation path gets no text back.
const NoRecommendation = "⚠️ No recommendation generated."

var ErrNoCandidates = errors.New("response has no candidate text")

// GenerationConfig overrides provider defaults. A nil config sends none.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// Result is the outcome of one generation. Produced is false when the call
// failed or the response had no text; Err then says why.
type Result struct {
	Text     string
	Produced bool
	Err      error
}

// TextOr returns the generated text, or fallback when nothing was produced.
func (r Result) TextOr(fallback string) string {
	if !r.Produced {
		return fallback
	}
	return r.Text
}

// Generator is the narrow interface the agent and recommender depend on.
type Generator interface {
	Generate(ctx context.Context, prompt string, gen *GenerationConfig) Result
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type GeminiClient struct {
	http    *httpx.Client
	baseURL string
	model   string
	apiKey  string
	logger  *zap.Logger
}

func NewGeminiClient(apiKey, baseURL, model string, h *httpx.Client, logger *zap.Logger) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if h == nil {
		h = httpx.New("gemini")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiClient{
		http:    h,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		logger:  logger.Named("gemini"),
	}
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
}

// Generate never returns an error value; failures come back as a Result
// with Produced false.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, gen *GenerationConfig) Result {
	text, err := c.generate(ctx, prompt, gen)
	if err != nil {
		c.logger.Warn("generation failed", zap.Error(err))
		return Result{Err: err}
	}
	return Result{Text: text, Produced: true}
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, gen *GenerationConfig) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: gen,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Header, not query string: *url.Error text carries the full URL.
	req.Header.Set("x-goog-api-key", c.apiKey)

	var resp generateResponse
	if err := c.http.DoJSON(req, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoCandidates
	}
	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
}

// NewGeminiFromConfig builds a client from the gemini section, sharing the
// retry and breaker policy of cfg.
func NewGeminiFromConfig(cfg *config.Config, logger *zap.Logger) *GeminiClient {
	g := cfg.Gemini
	h := httpx.FromConfig("gemini", cfg, g.Timeout(), logger)
	return NewGeminiClient(g.APIKey, g.BaseURL, g.Model, h, logger)
}

// GenerationFromConfig returns the report generation settings.
func GenerationFromConfig(g config.GeminiConfig) *GenerationConfig {
	return &GenerationConfig{Temperature: g.Temperature, MaxOutputTokens: g.MaxOutputTokens}
}
