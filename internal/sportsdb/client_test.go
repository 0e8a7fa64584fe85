package sportsdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/searchteams.php", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") != "Barcelona" {
			w.Write([]byte(`{"teams": null}`))
			return
		}
		w.Write([]byte(`{"teams":[{"idTeam":"133739","strTeam":"Barcelona"},{"idTeam":"1","strTeam":"Barcelona B"}]}`))
	})
	mux.HandleFunc("/eventslast.php", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "133739" {
			w.Write([]byte(`{"results": null}`))
			return
		}
		w.Write([]byte(`{"results":[
			{"strHomeTeam":"Barcelona","strAwayTeam":"Girona","dateEvent":"2024-01-03"},
			{"strHomeTeam":null,"strAwayTeam":"Sevilla"}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchTeams(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, nil)

	teams, err := c.SearchTeams(context.Background(), "Barcelona")
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, Team{ID: "133739", Name: "Barcelona"}, teams[0])

	none, err := c.SearchTeams(context.Background(), "Nobody FC")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLastEvents_MissingFields(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL+"/", nil)

	events, err := c.LastEvents(context.Background(), "133739")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.True(t, events[0].HasDate)
	assert.Equal(t, "2024-01-03", events[0].Date)

	assert.False(t, events[1].HasDate)
	assert.Empty(t, events[1].HomeTeam)
	assert.Equal(t, "Sevilla", events[1].AwayTeam)
}

func TestLastEvents_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.LastEvents(context.Background(), "1")
	assert.Error(t, err, "expected error for 500 response")
}
