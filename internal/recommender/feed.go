// Package recommender produces in-game tactical recommendations from live
// match stats, an outcome predictor and a previously generated report.
package recommender

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// Snapshot is the live state of a match at one minute.
type Snapshot struct {
	Minute         string  `json:"minute"`
	Team           string  `json:"team"`
	Opponent       string  `json:"opponent"`
	Score          int     `json:"score"`
	OpponentScore  int     `json:"opponent_score"`
	Possession     int     `json:"possession"`
	ShotsOnTarget  int     `json:"shots_on_target"`
	YellowCards    int     `json:"yellow_cards"`
	RedCards       int     `json:"red_cards"`
	AvgPlayerSpeed float64 `json:"avg_player_speed"`
}

// Feed supplies live stats on demand. A real provider can replace
// SimulatedFeed without touching prompting or prediction.
type Feed interface {
	Next(ctx context.Context, minute int) (Snapshot, error)
}

// MinuteLabel renders a match minute as "m:00".
func MinuteLabel(minute int) string {
	return fmt.Sprintf("%d:00", minute)
}

// SimulatedFeed draws every stat uniformly at random.
type SimulatedFeed struct {
	team     string
	opponent string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedFeed uses rng when given, otherwise a randomly seeded source.
func NewSimulatedFeed(team, opponent string, rng *rand.Rand) *SimulatedFeed {
	if rng == nil {
		rng = newRand()
	}
	return &SimulatedFeed{team: team, opponent: opponent, rng: rng}
}

func (f *SimulatedFeed) Next(ctx context.Context, minute int) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Minute:         MinuteLabel(minute),
		Team:           f.team,
		Opponent:       f.opponent,
		Score:          intBetween(f.rng, 0, 2),
		OpponentScore:  intBetween(f.rng, 0, 2),
		Possession:     intBetween(f.rng, 40, 70),
		ShotsOnTarget:  intBetween(f.rng, 0, 6),
		YellowCards:    intBetween(f.rng, 0, 5),
		RedCards:       intBetween(f.rng, 0, 1),
		AvgPlayerSpeed: round2(uniform(f.rng, 5.5, 8.5)),
	}, nil
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// intBetween is inclusive on both ends.
func intBetween(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
