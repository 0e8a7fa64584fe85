package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"football-agent/internal/llm"
)

const sampleReport = `{"team_summary":{"avg_insights":["compact midfield"],"priority_actions":["press early"]}}`

type echoModel struct {
	prompts []string
	fail    bool
}

func (m *echoModel) Generate(ctx context.Context, prompt string, gen *llm.GenerationConfig) llm.Result {
	m.prompts = append(m.prompts, prompt)
	if m.fail {
		return llm.Result{Err: llm.ErrNoCandidates}
	}
	return llm.Result{Text: "Keep pressing.", Produced: true}
}

type capturePublisher struct {
	events []Event
}

func (c *capturePublisher) Publish(ctx context.Context, key string, payload []byte) error {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	c.events = append(c.events, ev)
	return nil
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func inRange(t *testing.T, name string, v float64, r [2]float64) {
	t.Helper()
	assert.GreaterOrEqual(t, v, r[0], name)
	assert.LessOrEqual(t, v, r[1], name)
}

func TestSimulatedFeed_Ranges(t *testing.T) {
	feed := NewSimulatedFeed("Barcelona", "Girona", seeded())
	for i := 0; i < 200; i++ {
		s, err := feed.Next(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, "5:00", s.Minute)
		assert.Equal(t, "Barcelona", s.Team)
		assert.Equal(t, "Girona", s.Opponent)
		assert.True(t, s.Score >= 0 && s.Score <= 2)
		assert.True(t, s.OpponentScore >= 0 && s.OpponentScore <= 2)
		assert.True(t, s.Possession >= 40 && s.Possession <= 70)
		assert.True(t, s.ShotsOnTarget >= 0 && s.ShotsOnTarget <= 6)
		assert.True(t, s.YellowCards >= 0 && s.YellowCards <= 5)
		assert.True(t, s.RedCards >= 0 && s.RedCards <= 1)
		inRange(t, "speed", s.AvgPlayerSpeed, [2]float64{5.5, 8.5})
	}
}

func TestSimulatedFeed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSimulatedFeed("A", "B", nil).Next(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRandomPredictor_RangesAndRounding(t *testing.T) {
	p := NewRandomPredictor(seeded())
	for i := 0; i < 200; i++ {
		probs := p.Predict(Snapshot{})
		inRange(t, "win", probs.Win, WinRange)
		inRange(t, "draw", probs.Draw, DrawRange)
		inRange(t, "lose", probs.Lose, LoseRange)
		assert.Equal(t, round2(probs.Win), probs.Win)
	}
}

func TestBuildPrompt_Golden(t *testing.T) {
	snap := Snapshot{
		Minute: "10:00", Team: "Barcelona", Opponent: "Girona",
		Score: 1, OpponentScore: 0, Possession: 61, ShotsOnTarget: 3,
		YellowCards: 1, RedCards: 0, AvgPlayerSpeed: 7.5,
	}
	probs := Probabilities{Win: 0.45, Draw: 0.2, Lose: 0.33}

	got, err := BuildPrompt(snap, json.RawMessage(sampleReport), probs)
	require.NoError(t, err)
	again, err := BuildPrompt(snap, json.RawMessage(sampleReport), probs)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	want, err := os.ReadFile(filepath.Join("testdata", PromptVersion+".golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), got)
}

func TestBuildPrompt_InvalidInsights(t *testing.T) {
	_, err := BuildPrompt(Snapshot{}, json.RawMessage("not json"), Probabilities{})
	assert.ErrorIs(t, err, ErrInvalidReport)
}

func TestLoadReport(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(good, []byte("```json\n"+sampleReport+"\n```\n"), 0o644))
	got, err := LoadReport(good)
	require.NoError(t, err)
	assert.JSONEq(t, sampleReport, string(got))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{oops"), 0o644))
	_, err = LoadReport(bad)
	assert.ErrorIs(t, err, ErrInvalidReport)

	_, err = LoadReport(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func newTestLoop(t *testing.T, model llm.Generator, duration int) *Loop {
	l := NewLoop("Barcelona", "Girona", json.RawMessage(sampleReport), model)
	l.Feed = NewSimulatedFeed("Barcelona", "Girona", seeded())
	l.Predictor = NewRandomPredictor(seeded())
	l.Duration = duration
	l.Interval = time.Millisecond
	l.Logger = zaptest.NewLogger(t)
	return l
}

func TestLoop_DurationTwo(t *testing.T) {
	model := &echoModel{}
	pub := &capturePublisher{}
	l := newTestLoop(t, model, 2)
	l.Publisher = pub

	var out bytes.Buffer
	require.NoError(t, l.Run(context.Background(), &out))

	want := Banner("Barcelona", "Girona") + Block(5, "Keep pressing.") + Block(10, "Keep pressing.")
	assert.Equal(t, want, out.String())
	assert.Equal(t, 2, strings.Count(out.String(), "--- Minute "))

	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[0], "- Minute: 5:00\n")
	assert.Contains(t, model.prompts[1], "- Minute: 10:00\n")

	require.Len(t, pub.events, 2)
	for i, ev := range pub.events {
		assert.Equal(t, (i+1)*MinuteStep, ev.Minute)
		assert.Equal(t, l.SessionID(), ev.SessionID)
		inRange(t, "win", ev.Probabilities.Win, WinRange)
		inRange(t, "draw", ev.Probabilities.Draw, DrawRange)
		inRange(t, "lose", ev.Probabilities.Lose, LoseRange)
	}
}

func TestLoop_PlaceholderWhenModelFails(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newTestLoop(t, &echoModel{fail: true}, 1).Run(context.Background(), &out))
	assert.Contains(t, out.String(), "--- Minute 5 ---\n"+llm.NoRecommendation+"\n\n")
}

func TestLoop_ZeroDurationWritesBannerOnly(t *testing.T) {
	model := &echoModel{}
	var out bytes.Buffer
	require.NoError(t, newTestLoop(t, model, 0).Run(context.Background(), &out))
	assert.Equal(t, Banner("Barcelona", "Girona"), out.String())
	assert.Empty(t, model.prompts)
}

func TestLoop_Cancelled(t *testing.T) {
	l := newTestLoop(t, &echoModel{}, 5)
	l.Interval = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	var out bytes.Buffer
	err := l.Run(ctx, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, strings.Count(out.String(), "--- Minute "))
}
