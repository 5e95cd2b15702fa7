package dashboard

import (
	"context"
	"math/rand"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
)

// SyntheticSeries fabricates a plausible 24-point chart when no time-series
// store is configured. Values follow a rough day curve peaking around noon.
type SyntheticSeries struct{}

func (SyntheticSeries) Hourly(_ context.Context, _ string, metric Metric) ([]model.HourlyPoint, error) {
	scale := 2.5 // kWh per hour at peak
	if metric == MetricWater {
		scale = 40 // liters per hour at peak
	}
	points := make([]model.HourlyPoint, 24)
	for h := range points {
		// Daylight hours carry most of the load.
		weight := 0.1
		if h >= 6 && h <= 20 {
			weight = 0.3 + 0.7*(1-abs(float64(h)-13)/7)
		}
		points[h] = model.HourlyPoint{
			Hour:        h,
			Consumption: round2(weight * scale * (0.8 + 0.4*rand.Float64())),
		}
	}
	return points, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
