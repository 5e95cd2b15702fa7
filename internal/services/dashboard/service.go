package dashboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
	"github.com/abderrahmenzaway/wie-empower/internal/storage"
)

// Metric selects which pump usage window a series is built from.
type Metric string

const (
	MetricEnergy Metric = "energy"
	MetricWater  Metric = "water"
)

// SeriesSource supplies the 24-point hourly consumption chart. The
// production source reads the time-series store; a synthetic source stands
// in when none is configured.
type SeriesSource interface {
	Hourly(ctx context.Context, userID string, metric Metric) ([]model.HourlyPoint, error)
}

// Service computes the dashboard snapshot and usage charts.
type Service struct {
	zones   storage.ZoneStore
	sensors storage.SensorStore
	pumps   storage.PumpStore
	series  SeriesSource
	logger  *zap.SugaredLogger
}

func NewService(zones storage.ZoneStore, sensors storage.SensorStore, pumps storage.PumpStore, series SeriesSource, logger *zap.SugaredLogger) *Service {
	return &Service{zones: zones, sensors: sensors, pumps: pumps, series: series, logger: logger}
}

// Stats aggregates the user's fleet in one pass per collection. Pumps in
// Maintenance or Error count toward totals only; any sensor that is not
// Online counts as offline.
func (s *Service) Stats(ctx context.Context, userID string) (*model.Stats, error) {
	zones, err := s.zones.ListZones(ctx, userID)
	if err != nil {
		return nil, err
	}
	sensors, err := s.sensors.ListSensors(ctx, userID)
	if err != nil {
		return nil, err
	}
	pumps, err := s.pumps.ListPumps(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &model.Stats{}
	out.Zones.Total = len(zones)
	for _, z := range zones {
		if z.Status == entities.ZoneActive {
			out.Zones.Active++
		} else {
			out.Zones.Inactive++
		}
	}

	out.Sensors.Total = len(sensors)
	for _, sen := range sensors {
		if sen.Status == entities.SensorOnline {
			out.Sensors.Online++
		}
	}
	out.Sensors.Offline = out.Sensors.Total - out.Sensors.Online

	out.Pumps.Total = len(pumps)
	for _, p := range pumps {
		if p.Status == entities.PumpActive {
			out.Pumps.Active++
		}
		out.Energy.Today += p.EnergyConsumption.Today
		out.Energy.Week += p.EnergyConsumption.Week
		out.Water.Today += p.WaterOutput.Today
		out.Water.Week += p.WaterOutput.Week
	}
	return out, nil
}

// EnergySeries returns the energy usage chart for the user.
func (s *Service) EnergySeries(ctx context.Context, userID string) (*model.UsageSeries, error) {
	return s.usageSeries(ctx, userID, MetricEnergy)
}

// WaterSeries returns the water usage chart for the user.
func (s *Service) WaterSeries(ctx context.Context, userID string) (*model.UsageSeries, error) {
	return s.usageSeries(ctx, userID, MetricWater)
}

func (s *Service) usageSeries(ctx context.Context, userID string, metric Metric) (*model.UsageSeries, error) {
	pumps, err := s.pumps.ListPumps(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &model.UsageSeries{}
	for _, p := range pumps {
		w := p.EnergyConsumption
		if metric == MetricWater {
			w = p.WaterOutput
		}
		out.Current += w.Current
		out.Today += w.Today
	}

	hourly, err := s.series.Hourly(ctx, userID, metric)
	if err != nil {
		return nil, err
	}
	out.Hourly = hourly
	return out, nil
}
