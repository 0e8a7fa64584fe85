package agent

import (
	"go.uber.org/zap"

	"football-agent/internal/config"
	"football-agent/internal/httpx"
	"football-agent/internal/llm"
	"football-agent/internal/search"
	"football-agent/internal/sportsdb"
	"football-agent/internal/webpage"
)

// NewFromConfig wires the production collaborators. A nil model means a
// Gemini client built from cfg.
func NewFromConfig(cfg *config.Config, model llm.Generator, logger *zap.Logger) *Agent {
	if model == nil {
		model = llm.NewGeminiFromConfig(cfg, logger)
	}
	sportsHTTP := httpx.FromConfig("sportsdb", cfg, cfg.SportsDB.Timeout(), logger)
	serperHTTP := httpx.FromConfig("serper", cfg, cfg.Serper.Timeout(), logger)
	pageHTTP := httpx.FromConfig("webpage", cfg, cfg.Page.Timeout(), logger)

	strategies := search.Strategies(cfg.Search.ResultKeys, search.FieldKeys{
		Title:   cfg.Search.TitleKeys,
		Link:    cfg.Search.LinkKeys,
		Snippet: cfg.Search.SnippetKeys,
	})

	return New(Deps{
		Matches: sportsdb.NewClient(cfg.SportsDB.BaseURL, sportsHTTP),
		Sites: search.NewSerperClient(cfg.Serper.APIKey, serperHTTP,
			search.WithURL(cfg.Serper.URL),
			search.WithNum(cfg.Serper.Num),
			search.WithStrategies(strategies)),
		Pages: webpage.NewFetcher(pageHTTP,
			webpage.NewExtractor(cfg.Page.Mode, cfg.Page.MaxChars),
			cfg.Page.UserAgent, cfg.Page.MaxSizeMB),
		Model:      model,
		Generation: llm.GenerationFromConfig(cfg.Gemini),
		Logger:     logger,
	})
}
