package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Moisture drift per minute, as a fraction of full scale.
const (
	gainPerMin  = 0.006 // watering on
	decayPerMin = 0.001 // watering off
	seedLevel   = 0.30
)

// Generator produces a plausible soil moisture trace for one simulated
// sensor: slow decay while idle, steady gain while the zone is watering,
// plus measurement noise.
type Generator struct {
	mu       sync.Mutex
	level    float64 // [0..1]
	last     time.Time
	watering bool
}

func NewGenerator() *Generator {
	return &Generator{
		level: clamp01(seedLevel + (rand.Float64()-0.5)*0.1),
		last:  time.Now().UTC(),
	}
}

// SetWatering flips the watering state the trace follows.
func (g *Generator) SetWatering(on bool) {
	g.mu.Lock()
	g.watering = on
	g.mu.Unlock()
}

// Next advances the trace to now and returns the moisture percentage.
func (g *Generator) Next() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	dtMin := now.Sub(g.last).Minutes()
	if dtMin < 0 {
		dtMin = 0
	}
	if g.watering {
		g.level = clamp01(g.level + gainPerMin*dtMin)
	} else {
		g.level = clamp01(g.level - decayPerMin*dtMin)
	}
	g.last = now

	noisy := clamp01(g.level + (rand.Float64()-0.5)*0.01)
	return math.Round(noisy*1000) / 10
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
