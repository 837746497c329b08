package analytics

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrInvalidRange is returned for an unknown prediction range
var ErrInvalidRange = errors.New("range must be one of 7d, 14d, 30d")

// Range is a prediction chart window
type Range string

const (
	Range7d  Range = "7d"
	Range14d Range = "14d"
	Range30d Range = "30d"
)

// Days returns the number of points for r
func (r Range) Days() int {
	switch r {
	case Range14d:
		return 14
	case Range30d:
		return 30
	default:
		return 7
	}
}

// ParseRange accepts "7d", "14d", "30d"; empty means 7d
func ParseRange(raw string) (Range, error) {
	switch Range(raw) {
	case "":
		return Range7d, nil
	case Range7d, Range14d, Range30d:
		return Range(raw), nil
	}
	return "", ErrInvalidRange
}

// Prediction is one day of model risk scores
type Prediction struct {
	Date        string  `json:"date"`
	Sepsis      float64 `json:"sepsis"`
	Respiratory float64 `json:"respiratory"`
	Cardiac     float64 `json:"cardiac"`
}

// Predictor draws simulated prediction series
type Predictor struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPredictor creates a predictor; a nil rng is seeded from the clock
func NewPredictor(rng *rand.Rand) *Predictor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Predictor{rng: rng}
}

// Series returns one point per day of r, oldest first, ending on now
func (p *Predictor) Series(r Range, now time.Time) []Prediction {
	p.mu.Lock()
	defer p.mu.Unlock()

	days := r.Days()
	out := make([]Prediction, 0, days)
	for i := days - 1; i >= 0; i-- {
		out = append(out, Prediction{
			Date:        now.AddDate(0, 0, -i).Format("Jan 2"),
			Sepsis:      p.rng.Float64()*0.3 + 0.6,
			Respiratory: p.rng.Float64()*0.4 + 0.5,
			Cardiac:     p.rng.Float64()*0.35 + 0.55,
		})
	}
	return out
}
