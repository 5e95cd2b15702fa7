package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/events"
	"github.com/abderrahmenzaway/wie-empower/internal/metrics"
	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
	"github.com/abderrahmenzaway/wie-empower/internal/storage"
	"github.com/abderrahmenzaway/wie-empower/pkg/dedup"
)

// lowBatteryThreshold is the battery percentage below which a warning
// notification is raised (rate limited per sensor).
const lowBatteryThreshold = 20

// Notifier raises a user notification. Implemented by the notification
// service; nil disables alerting.
type Notifier interface {
	Create(ctx context.Context, userID, kind, message string, severity entities.Severity) (*entities.Notification, error)
}

// Service owns the device side of the system: sensors, pumps and the
// telemetry flowing from them.
type Service struct {
	sensors  storage.SensorStore
	pumps    storage.PumpStore
	hub      *events.Hub
	notifier Notifier
	alerts   *dedup.Deduper
	logger   *zap.SugaredLogger
}

func NewService(sensors storage.SensorStore, pumps storage.PumpStore, hub *events.Hub, notifier Notifier, alerts *dedup.Deduper, logger *zap.SugaredLogger) *Service {
	return &Service{
		sensors:  sensors,
		pumps:    pumps,
		hub:      hub,
		notifier: notifier,
		alerts:   alerts,
		logger:   logger,
	}
}

// CreateSensorInput carries the caller-settable fields of a new sensor.
type CreateSensorInput struct {
	Name         string              `json:"name" validate:"required"`
	Type         entities.SensorType `json:"type" validate:"required"`
	ZoneID       string              `json:"zoneId"`
	Unit         string              `json:"unit"`
	BatteryLevel *float64            `json:"batteryLevel"`
}

// CreateSensor registers a device. New sensors start Offline until their
// first liveness confirmation.
func (s *Service) CreateSensor(ctx context.Context, userID string, in CreateSensorInput) (*entities.Sensor, error) {
	if in.Name == "" {
		return nil, model.Invalidf("name", "is required")
	}
	if !in.Type.Valid() {
		return nil, model.Invalidf("type", "unknown sensor type %q", in.Type)
	}
	battery := 100.0
	if in.BatteryLevel != nil {
		if *in.BatteryLevel < 0 || *in.BatteryLevel > 100 {
			return nil, model.Invalidf("batteryLevel", "must be between 0 and 100")
		}
		battery = *in.BatteryLevel
	}

	sensor := &entities.Sensor{
		ID:           uuid.NewString(),
		UserID:       userID,
		ZoneID:       in.ZoneID,
		Name:         in.Name,
		Type:         in.Type,
		Status:       entities.SensorOffline,
		BatteryLevel: battery,
		Unit:         in.Unit,
		Readings:     []entities.Reading{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.sensors.CreateSensor(ctx, sensor); err != nil {
		return nil, err
	}
	s.hub.Publish(events.Event{Type: events.SensorCreated, UserID: userID, Payload: sensor})
	return sensor, nil
}

func (s *Service) GetSensor(ctx context.Context, id, userID string) (*entities.Sensor, error) {
	return s.sensors.GetSensor(ctx, id, userID)
}

func (s *Service) ListSensors(ctx context.Context, userID string) ([]entities.Sensor, error) {
	return s.sensors.ListSensors(ctx, userID)
}

func (s *Service) UpdateSensor(ctx context.Context, id, userID string, patch model.SensorPatch) (*entities.Sensor, error) {
	if patch.Empty() {
		return nil, model.Invalidf("patch", "no updatable fields present")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, model.Invalidf("status", "unknown status %q", *patch.Status)
	}
	if patch.BatteryLevel != nil && (*patch.BatteryLevel < 0 || *patch.BatteryLevel > 100) {
		return nil, model.Invalidf("batteryLevel", "must be between 0 and 100")
	}
	sensor, err := s.sensors.UpdateSensor(ctx, id, userID, patch)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(events.Event{Type: events.SensorUpdated, UserID: userID, Payload: sensor})
	s.checkBattery(ctx, sensor)
	return sensor, nil
}

// DeleteSensor removes the device. Zones referencing it keep the dangling
// id; readers resolve such references leniently.
func (s *Service) DeleteSensor(ctx context.Context, id, userID string) error {
	if err := s.sensors.DeleteSensor(ctx, id, userID); err != nil {
		return err
	}
	s.hub.Publish(events.Event{Type: events.SensorDeleted, UserID: userID, Payload: events.Deleted{ID: id}})
	return nil
}

// RecordReading appends one measurement and refreshes the sensor's current
// value. It deliberately leaves the Online/Offline status untouched; the
// liveness monitor owns that transition.
func (s *Service) RecordReading(ctx context.Context, id, userID string, value float64, at time.Time, source string) (*entities.Sensor, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	r := entities.Reading{Timestamp: at, Value: value}
	sensor, err := s.sensors.AppendReading(ctx, id, userID, r, entities.MaxReadings)
	if err != nil {
		return nil, err
	}
	metrics.ReadingsIngested.WithLabelValues(source).Inc()
	s.hub.Publish(events.Event{Type: events.SensorReading, UserID: userID, Payload: sensor})
	s.checkBattery(ctx, sensor)
	return sensor, nil
}

// SetStatus is the liveness primitive: it changes only the status field and
// is the single place Online/Offline flips happen.
func (s *Service) SetStatus(ctx context.Context, id, userID string, status entities.SensorStatus) (*entities.Sensor, error) {
	if !status.Valid() {
		return nil, model.Invalidf("status", "unknown status %q", status)
	}
	sensor, err := s.sensors.SetSensorStatus(ctx, id, userID, status)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(events.Event{Type: events.SensorUpdated, UserID: userID, Payload: sensor})
	return sensor, nil
}

func (s *Service) checkBattery(ctx context.Context, sensor *entities.Sensor) {
	if s.notifier == nil || sensor.BatteryLevel >= lowBatteryThreshold {
		return
	}
	if s.alerts != nil && !s.alerts.ShouldProcess("battery:"+sensor.ID) {
		return
	}
	msg := fmt.Sprintf("Sensor %q battery low (%.0f%%)", sensor.Name, sensor.BatteryLevel)
	if _, err := s.notifier.Create(ctx, sensor.UserID, "low_battery", msg, entities.SeverityWarning); err != nil {
		s.logger.Errorw("low battery notification failed", "sensor", sensor.ID, "err", err)
	}
}

// CreatePumpInput carries the caller-settable fields of a new pump.
type CreatePumpInput struct {
	Name     string  `json:"name" validate:"required"`
	ZoneID   string  `json:"zoneId"`
	FlowRate float64 `json:"flowRate" validate:"gte=0"`
	Pressure float64 `json:"pressure" validate:"gte=0"`
}

// CreatePump registers a pump in the Inactive state.
func (s *Service) CreatePump(ctx context.Context, userID string, in CreatePumpInput) (*entities.Pump, error) {
	if in.Name == "" {
		return nil, model.Invalidf("name", "is required")
	}
	if in.FlowRate < 0 {
		return nil, model.Invalidf("flowRate", "must not be negative")
	}
	if in.Pressure < 0 {
		return nil, model.Invalidf("pressure", "must not be negative")
	}

	pump := &entities.Pump{
		ID:        uuid.NewString(),
		UserID:    userID,
		ZoneID:    in.ZoneID,
		Name:      in.Name,
		Status:    entities.PumpInactive,
		FlowRate:  in.FlowRate,
		Pressure:  in.Pressure,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.pumps.CreatePump(ctx, pump); err != nil {
		return nil, err
	}
	s.hub.Publish(events.Event{Type: events.PumpCreated, UserID: userID, Payload: pump})
	return pump, nil
}

func (s *Service) GetPump(ctx context.Context, id, userID string) (*entities.Pump, error) {
	return s.pumps.GetPump(ctx, id, userID)
}

func (s *Service) ListPumps(ctx context.Context, userID string) ([]entities.Pump, error) {
	return s.pumps.ListPumps(ctx, userID)
}

func (s *Service) UpdatePump(ctx context.Context, id, userID string, patch model.PumpPatch) (*entities.Pump, error) {
	if patch.Empty() {
		return nil, model.Invalidf("patch", "no updatable fields present")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, model.Invalidf("status", "unknown status %q", *patch.Status)
	}
	pump, err := s.pumps.UpdatePump(ctx, id, userID, patch)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(events.Event{Type: events.PumpUpdated, UserID: userID, Payload: pump})
	return pump, nil
}

// DeletePump removes the pump. Zones referencing it keep the dangling id.
func (s *Service) DeletePump(ctx context.Context, id, userID string) error {
	if err := s.pumps.DeletePump(ctx, id, userID); err != nil {
		return err
	}
	s.hub.Publish(events.Event{Type: events.PumpDeleted, UserID: userID, Payload: events.Deleted{ID: id}})
	return nil
}
