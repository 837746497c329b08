// Package vitals simulates the live monitoring feed: a random sample source,
// the rolling window of recent samples, per-patient feeds with subscribers,
// and the trend/alert assessment shown on the monitoring cards.
package vitals

import (
	"math/rand"
	"sync"
	"time"

	"stealthcompany.com/icudash/internal/patients"
)

// Sample is one simulated reading
type Sample struct {
	Time             string    `json:"time"`
	Timestamp        time.Time `json:"timestamp"`
	HeartRate        int       `json:"heartRate"`
	OxygenSaturation int       `json:"oxygenSaturation"`
}

// Band is an inclusive integer range
type Band struct {
	Min int
	Max int
}

// Bands for the generated values per patient condition
var (
	CriticalHeartRate = Band{Min: 90, Max: 110}
	CriticalSpO2      = Band{Min: 90, Max: 95}
	NormalHeartRate   = Band{Min: 60, Max: 90}
	NormalSpO2        = Band{Min: 95, Max: 100}
)

// BandsFor returns the heart rate and SpO2 bands used for status
func BandsFor(status patients.Status) (heartRate, spo2 Band) {
	if status == patients.StatusCritical {
		return CriticalHeartRate, CriticalSpO2
	}
	return NormalHeartRate, NormalSpO2
}

// Generator draws samples uniformly from the status bands. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator on rng, or on a time-seeded source when nil
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Next draws a sample for status stamped at the given instant
func (g *Generator) Next(status patients.Status, at time.Time) Sample {
	hr, spo2 := BandsFor(status)

	g.mu.Lock()
	heartRate := g.draw(hr)
	oxygen := g.draw(spo2)
	g.mu.Unlock()

	return Sample{
		Time:             at.Format("04:05"),
		Timestamp:        at,
		HeartRate:        heartRate,
		OxygenSaturation: oxygen,
	}
}

func (g *Generator) draw(b Band) int {
	return b.Min + g.rng.Intn(b.Max-b.Min+1)
}
