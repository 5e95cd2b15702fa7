package dashboard

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
)

// InfluxSeries builds the hourly chart from the pump usage measurements
// written to InfluxDB. One point per hour of the current day; hours with no
// samples stay zero.
type InfluxSeries struct {
	query  api.QueryAPI
	bucket string
	logger *zap.SugaredLogger
}

func NewInfluxSeries(client influxdb2.Client, org, bucket string, logger *zap.SugaredLogger) *InfluxSeries {
	return &InfluxSeries{query: client.QueryAPI(org), bucket: bucket, logger: logger}
}

func measurementFor(metric Metric) string {
	if metric == MetricWater {
		return "pump_water"
	}
	return "pump_energy"
}

func (s *InfluxSeries) Hourly(ctx context.Context, userID string, metric Metric) ([]model.HourlyPoint, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: -24h)
  |> filter(fn: (r) => r._measurement == %q and r.userId == %q and r._field == "value")
  |> aggregateWindow(every: 1h, fn: sum, createEmpty: true)
  |> yield(name: "hourly")`, s.bucket, measurementFor(metric), userID)

	result, err := s.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("query hourly %s series: %w", metric, err)
	}
	defer result.Close()

	points := make([]model.HourlyPoint, 24)
	for h := range points {
		points[h].Hour = h
	}
	for result.Next() {
		rec := result.Record()
		v, ok := rec.Value().(float64)
		if !ok {
			continue
		}
		h := rec.Time().Hour()
		points[h].Consumption += v
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("read hourly %s series: %w", metric, result.Err())
	}
	return points, nil
}
