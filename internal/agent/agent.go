// Package agent builds a match performance report for one team.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"football-agent/internal/llm"
	"football-agent/internal/metrics"
	"football-agent/internal/search"
	"football-agent/internal/sportsdb"
	"football-agent/internal/webpage"
)

const (
	// UnknownDate replaces a missing event date.
	UnknownDate = "Unknown date"
	// NoSite is used as the source when no official site was found.
	NoSite = "N/A"
)

// Classification of soft failures; they are logged, never returned.
var (
	ErrNoTeam    = errors.New("team not found")
	ErrNoMatches = errors.New("no recent matches")
)

// DefaultGeneration is sent with every report request.
var DefaultGeneration = llm.GenerationConfig{Temperature: 0.3, MaxOutputTokens: 3000}

type MatchSource interface {
	SearchTeams(ctx context.Context, name string) ([]sportsdb.Team, error)
	LastEvents(ctx context.Context, teamID string) ([]sportsdb.Event, error)
}

type SiteSearcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*webpage.Page, error)
}

type Agent struct {
	matches MatchSource
	sites   SiteSearcher
	pages   PageFetcher
	model   llm.Generator
	gen     llm.GenerationConfig
	logger  *zap.Logger
}

// Deps groups the agent's collaborators; Pages may be nil to skip scraping.
type Deps struct {
	Matches    MatchSource
	Sites      SiteSearcher
	Pages      PageFetcher
	Model      llm.Generator
	Generation *llm.GenerationConfig
	Logger     *zap.Logger
}

func New(d Deps) *Agent {
	gen := DefaultGeneration
	if d.Generation != nil {
		gen = *d.Generation
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		matches: d.Matches,
		sites:   d.Sites,
		pages:   d.Pages,
		model:   d.Model,
		gen:     gen,
		logger:  logger.Named("agent"),
	}
}

// FormatEvent renders "{home} vs {away} - {date}".
func FormatEvent(e sportsdb.Event) string {
	date := e.Date
	if !e.HasDate {
		date = UnknownDate
	}
	return fmt.Sprintf("%s vs %s - %s", e.HomeTeam, e.AwayTeam, date)
}

// FetchMatches returns at most n formatted results in provider order. Any
// failure yields an empty slice.
func (a *Agent) FetchMatches(ctx context.Context, team string, n int) []string {
	matches, err := a.fetchMatches(ctx, team, n)
	if err != nil {
		log := a.logger.Warn
		if errors.Is(err, ErrNoTeam) || errors.Is(err, ErrNoMatches) {
			log = a.logger.Info
		}
		log("no match data", zap.String("team", team), zap.Error(err))
		return []string{}
	}
	return matches
}

func (a *Agent) fetchMatches(ctx context.Context, team string, n int) ([]string, error) {
	teams, err := a.matches.SearchTeams(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("search teams: %w", err)
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoTeam, team)
	}
	found := teams[0]

	events, err := a.matches.LastEvents(ctx, found.ID)
	if err != nil {
		return nil, fmt.Errorf("last events for %s: %w", found.Name, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoMatches, found.Name)
	}

	if n < 0 {
		n = 0
	}
	if n < len(events) {
		events = events[:n]
	}
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, FormatEvent(e))
	}
	return out, nil
}

// SiteQuery is the web search sent to locate a team's site.
func SiteQuery(team string) string {
	return "official website " + team
}

// SearchOfficialSite returns the first result link, or false when the search
// failed or found nothing.
func (a *Agent) SearchOfficialSite(ctx context.Context, team string) (string, bool) {
	results, err := a.sites.Search(ctx, SiteQuery(team))
	if err != nil {
		a.logger.Warn("site search failed", zap.String("team", team), zap.Error(err))
		return "", false
	}
	if len(results) == 0 || results[0].Link == "" {
		a.logger.Info("no site search results", zap.String("team", team))
		return "", false
	}
	return results[0].Link, true
}

// ExtractPage returns the page text, or an empty Page on any failure.
func (a *Agent) ExtractPage(ctx context.Context, url string) webpage.Page {
	if a.pages == nil {
		return webpage.Page{URL: url}
	}
	page, err := a.pages.Fetch(ctx, url)
	if err != nil {
		a.logger.Warn("page extraction failed", zap.String("url", url), zap.Error(err))
		return webpage.Page{URL: url}
	}
	return *page
}

// SiteContext flattens a page into the text embedded in the report prompt.
func SiteContext(p webpage.Page) string {
	var parts []string
	if p.Title != "" {
		parts = append(parts, "Title: "+p.Title)
	}
	if p.Description != "" {
		parts = append(parts, "Description: "+p.Description)
	}
	if text := strings.TrimSpace(p.Text); text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}

// AnalyzeMatches composes the report. With no matches it returns
// NoDataMessage and never calls the model. A failed model call yields "".
func (a *Agent) AnalyzeMatches(ctx context.Context, matches []string, team, sourceURL, siteContext string) string {
	if len(matches) == 0 {
		metrics.ReportComposed(metrics.OutcomeSkipped)
		return NoDataMessage(team, sourceURL)
	}
	prompt, err := BuildReportPrompt(ReportInput{
		Team:        team,
		SourceURL:   sourceURL,
		Matches:     matches,
		SiteContext: siteContext,
	})
	if err != nil {
		a.logger.Error("prompt rendering failed", zap.Error(err))
		metrics.ReportComposed(metrics.OutcomeEmpty)
		return ""
	}

	gen := a.gen
	res := a.model.Generate(ctx, prompt, &gen)
	if !res.Produced {
		metrics.ReportComposed(metrics.OutcomeEmpty)
		return ""
	}
	if !LooksLikeJSON(res.Text) {
		a.logger.Warn("report is not valid JSON; returning it verbatim", zap.String("team", team))
	}
	metrics.ReportComposed(metrics.OutcomeOK)
	return res.Text
}

// Run fetches matches, locates and reads the official site, then composes
// the report. Steps run one after another.
func (a *Agent) Run(ctx context.Context, team string, n int) string {
	matches := a.FetchMatches(ctx, team, n)

	site, ok := a.SearchOfficialSite(ctx, team)
	if !ok {
		site = NoSite
	}

	var siteContext string
	if site != NoSite {
		siteContext = SiteContext(a.ExtractPage(ctx, site))
	}

	a.logger.Info("composing report",
		zap.String("team", team),
		zap.Int("matches", len(matches)),
		zap.String("source", site),
		zap.Int("site_context_chars", len(siteContext)))
	return a.AnalyzeMatches(ctx, matches, team, site, siteContext)
}

// LooksLikeJSON reports whether s parses as JSON, ignoring a markdown code fence.
func LooksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return json.Valid([]byte(strings.TrimSpace(s)))
}
