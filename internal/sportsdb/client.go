// Package sportsdb reads teams and recent events from TheSportsDB v1 API.
package sportsdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"football-agent/internal/httpx"
)

const DefaultBaseURL = "https://www.thesportsdb.com/api/v1/json/3"

type Team struct {
	ID   string
	Name string
}

// Event is one past match. Missing fields stay empty; HasDate tells an
// absent date apart from an empty one.
type Event struct {
	HomeTeam string
	AwayTeam string
	Date     string
	HasDate  bool
}

type teamsDTO struct {
	Teams []struct {
		IDTeam  string `json:"idTeam"`
		StrTeam string `json:"strTeam"`
	} `json:"teams"`
}

type eventsDTO struct {
	Results []struct {
		StrHomeTeam *string `json:"strHomeTeam"`
		StrAwayTeam *string `json:"strAwayTeam"`
		DateEvent   *string `json:"dateEvent"`
	} `json:"results"`
}

type Client struct {
	http    *httpx.Client
	baseURL string
}

func NewClient(baseURL string, h *httpx.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if h == nil {
		h = httpx.New("sportsdb")
	}
	return &Client{http: h, baseURL: baseURL}
}

// SearchTeams resolves a free-text name; an empty slice means no match.
func (c *Client) SearchTeams(ctx context.Context, name string) ([]Team, error) {
	q := url.Values{}
	q.Set("t", name)
	var dto teamsDTO
	if err := c.getJSON(ctx, "/searchteams.php", q, &dto); err != nil {
		return nil, err
	}
	teams := make([]Team, 0, len(dto.Teams))
	for _, t := range dto.Teams {
		teams = append(teams, Team{ID: t.IDTeam, Name: t.StrTeam})
	}
	return teams, nil
}

// LastEvents returns the team's recent events, most recent first as supplied.
func (c *Client) LastEvents(ctx context.Context, teamID string) ([]Event, error) {
	q := url.Values{}
	q.Set("id", teamID)
	var dto eventsDTO
	if err := c.getJSON(ctx, "/eventslast.php", q, &dto); err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(dto.Results))
	for _, r := range dto.Results {
		e := Event{HomeTeam: deref(r.StrHomeTeam), AwayTeam: deref(r.StrAwayTeam)}
		if r.DateEvent != nil {
			e.Date, e.HasDate = *r.DateEvent, true
		}
		events = append(events, e)
	}
	return events, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.http.DoJSON(req, out)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
