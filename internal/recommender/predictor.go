package recommender

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Probabilities are the predicted outcome chances. They are independent
// samples and need not sum to one.
type Probabilities struct {
	Win  float64 `json:"win"`
	Draw float64 `json:"draw"`
	Lose float64 `json:"lose"`
}

func (p Probabilities) String() string {
	return fmt.Sprintf(`{"win": %v, "draw": %v, "lose": %v}`, p.Win, p.Draw, p.Lose)
}

// Predictor maps a snapshot to outcome probabilities.
type Predictor interface {
	Predict(s Snapshot) Probabilities
}

// Sampling ranges of RandomPredictor.
var (
	WinRange  = [2]float64{0.2, 0.6}
	DrawRange = [2]float64{0.1, 0.4}
	LoseRange = [2]float64{0.2, 0.6}
)

// RandomPredictor is a placeholder model; it ignores the snapshot.
type RandomPredictor struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomPredictor(rng *rand.Rand) *RandomPredictor {
	if rng == nil {
		rng = newRand()
	}
	return &RandomPredictor{rng: rng}
}

func (p *RandomPredictor) Predict(Snapshot) Probabilities {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Probabilities{
		Win:  round2(uniform(p.rng, WinRange[0], WinRange[1])),
		Draw: round2(uniform(p.rng, DrawRange[0], DrawRange[1])),
		Lose: round2(uniform(p.rng, LoseRange[0], LoseRange[1])),
	}
}
