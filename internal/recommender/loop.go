package recommender

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"football-agent/internal/llm"
	"football-agent/internal/metrics"
)

const (
	DefaultDuration = 3
	DefaultInterval = 2 * time.Second
	// MinuteStep is the simulated match time between iterations.
	MinuteStep = 5
)

// Event is published once per iteration.
type Event struct {
	SessionID      string        `json:"session_id"`
	Minute         int           `json:"minute"`
	Snapshot       Snapshot      `json:"snapshot"`
	Probabilities  Probabilities `json:"probabilities"`
	Recommendation string        `json:"recommendation"`
	Produced       bool          `json:"produced"`
}

// Publisher receives serialized events keyed by session id.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

type Loop struct {
	Team     string
	Opponent string
	Insights json.RawMessage
	Duration int
	Interval time.Duration

	Feed      Feed
	Predictor Predictor
	Model     llm.Generator
	Publisher Publisher
	Logger    *zap.Logger

	sessionID string
}

// NewLoop wires the simulated feed and random predictor; callers may replace
// either before Run.
func NewLoop(team, opponent string, insights json.RawMessage, model llm.Generator) *Loop {
	return &Loop{
		Team:      team,
		Opponent:  opponent,
		Insights:  insights,
		Duration:  DefaultDuration,
		Interval:  DefaultInterval,
		Feed:      NewSimulatedFeed(team, opponent, nil),
		Predictor: NewRandomPredictor(nil),
		Model:     model,
		sessionID: uuid.NewString(),
	}
}

func (l *Loop) SessionID() string {
	if l.sessionID == "" {
		l.sessionID = uuid.NewString()
	}
	return l.sessionID
}

// Banner is written before the first iteration.
func Banner(team, opponent string) string {
	return fmt.Sprintf("⚽ Starting LLM-based recommender for %s vs %s...\n\n", team, opponent)
}

// Block is the text written for one iteration.
func Block(minute int, text string) string {
	return fmt.Sprintf("--- Minute %d ---\n%s\n\n", minute, text)
}

// Run writes the banner, then one block per iteration for minutes 5, 10, ...
// up to 5*Duration. It returns early with ctx's error when cancelled.
func (l *Loop) Run(ctx context.Context, w io.Writer) error {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("recommender").With(zap.String("session", l.SessionID()))

	if _, err := io.WriteString(w, Banner(l.Team, l.Opponent)); err != nil {
		return err
	}

	for i := 1; i <= l.Duration; i++ {
		minute := i * MinuteStep
		ev, err := l.step(ctx, minute)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, Block(minute, ev.Recommendation)); err != nil {
			return err
		}
		l.publish(ctx, logger, ev)

		if i == l.Duration {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.Interval):
		}
	}
	return nil
}

func (l *Loop) step(ctx context.Context, minute int) (Event, error) {
	snap, err := l.Feed.Next(ctx, minute)
	if err != nil {
		return Event{}, fmt.Errorf("live stats at minute %d: %w", minute, err)
	}
	probs := l.Predictor.Predict(snap)
	prompt, err := BuildPrompt(snap, l.Insights, probs)
	if err != nil {
		return Event{}, err
	}

	res := l.Model.Generate(ctx, prompt, nil)
	if res.Produced {
		metrics.RecommendationProduced(metrics.OutcomeOK)
	} else {
		metrics.RecommendationProduced(metrics.OutcomeEmpty)
	}
	return Event{
		SessionID:      l.SessionID(),
		Minute:         minute,
		Snapshot:       snap,
		Probabilities:  probs,
		Recommendation: res.TextOr(llm.NoRecommendation),
		Produced:       res.Produced,
	}, nil
}

func (l *Loop) publish(ctx context.Context, logger *zap.Logger, ev Event) {
	if l.Publisher == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error("failed to encode event", zap.Error(err))
		return
	}
	if err := l.Publisher.Publish(ctx, ev.SessionID, payload); err != nil {
		logger.Warn("failed to publish event", zap.Int("minute", ev.Minute), zap.Error(err))
	}
}
