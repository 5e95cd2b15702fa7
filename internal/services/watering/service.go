package watering

import (
	"context"
	"errors"
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

const (
	defaultMoistureThreshold = 30

	// toggleRetries bounds the compare-and-swap loop when concurrent
	// toggles race on the same zone.
	toggleRetries = 3
)

// Notifier raises a user notification; nil disables alerting.
type Notifier interface {
	Create(ctx context.Context, userID, kind, message string, severity entities.Severity) (*entities.Notification, error)
}

// Service owns zones and their watering state machine.
type Service struct {
	zones   storage.ZoneStore
	sensors storage.SensorStore
	pumps   storage.PumpStore

	hub      *events.Hub
	notifier Notifier
	alerts   *dedup.Deduper
	logger   *zap.SugaredLogger

	humidityHistoryMax int
	wateringHistoryMax int
}

func NewService(zones storage.ZoneStore, sensors storage.SensorStore, pumps storage.PumpStore,
	hub *events.Hub, notifier Notifier, alerts *dedup.Deduper,
	humidityHistoryMax, wateringHistoryMax int, logger *zap.SugaredLogger) *Service {
	if humidityHistoryMax <= 0 {
		humidityHistoryMax = 288
	}
	if wateringHistoryMax <= 0 {
		wateringHistoryMax = 200
	}
	return &Service{
		zones:              zones,
		sensors:            sensors,
		pumps:              pumps,
		hub:                hub,
		notifier:           notifier,
		alerts:             alerts,
		logger:             logger,
		humidityHistoryMax: humidityHistoryMax,
		wateringHistoryMax: wateringHistoryMax,
	}
}

// CreateZoneInput carries the caller-settable fields of a new zone.
type CreateZoneInput struct {
	Name              string                `json:"name" validate:"required"`
	PlantType         string                `json:"plantType"`
	MoistureThreshold *float64              `json:"moistureThreshold"`
	WateringMode      entities.WateringMode `json:"wateringMode"`
	ConnectedSensors  []string              `json:"connectedSensors"`
	ConnectedPump     string                `json:"connectedPump"`
}

// CreateZone registers a zone. New zones start Inactive with watering idle.
func (s *Service) CreateZone(ctx context.Context, userID string, in CreateZoneInput) (*entities.Zone, error) {
	if in.Name == "" {
		return nil, model.Invalidf("name", "is required")
	}
	mode := in.WateringMode
	if mode == "" {
		mode = entities.ModeNormal
	}
	if !mode.Valid() {
		return nil, model.Invalidf("wateringMode", "unknown mode %q", in.WateringMode)
	}
	threshold := float64(defaultMoistureThreshold)
	if in.MoistureThreshold != nil {
		if *in.MoistureThreshold < 0 || *in.MoistureThreshold > 100 {
			return nil, model.Invalidf("moistureThreshold", "must be between 0 and 100")
		}
		threshold = *in.MoistureThreshold
	}
	if err := s.checkDeviceRefs(ctx, userID, in.ConnectedSensors, in.ConnectedPump); err != nil {
		return nil, err
	}

	zone := &entities.Zone{
		ID:                uuid.NewString(),
		UserID:            userID,
		Name:              in.Name,
		Status:            entities.ZoneInactive,
		MoistureThreshold: threshold,
		PlantType:         in.PlantType,
		WateringMode:      mode,
		WateringStatus:    entities.WateringStatus{},
		HumidityHistory:   []entities.HumidityPoint{},
		WateringHistory:   []entities.WateringRecord{},
		PredictedSchedule: []entities.SchedulePoint{},
		ConnectedSensors:  append([]string{}, in.ConnectedSensors...),
		ConnectedPump:     in.ConnectedPump,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.zones.CreateZone(ctx, zone); err != nil {
		return nil, err
	}
	s.hub.Publish(events.Event{Type: events.ZoneCreated, UserID: userID, Payload: zone})
	return zone, nil
}

func (s *Service) GetZone(ctx context.Context, id, userID string) (*entities.Zone, error) {
	return s.zones.GetZone(ctx, id, userID)
}

func (s *Service) ListZones(ctx context.Context, userID string) ([]entities.Zone, error) {
	return s.zones.ListZones(ctx, userID)
}

// UpdateZone applies a partial update. Watering run state is not reachable
// from here; Toggle owns it.
func (s *Service) UpdateZone(ctx context.Context, id, userID string, patch model.ZonePatch) (*entities.Zone, error) {
	if patch.Empty() {
		return nil, model.Invalidf("patch", "no updatable fields present")
	}
	if patch.WateringMode != nil && !patch.WateringMode.Valid() {
		return nil, model.Invalidf("wateringMode", "unknown mode %q", *patch.WateringMode)
	}
	if patch.MoistureThreshold != nil && (*patch.MoistureThreshold < 0 || *patch.MoistureThreshold > 100) {
		return nil, model.Invalidf("moistureThreshold", "must be between 0 and 100")
	}
	var sensors []string
	if patch.ConnectedSensors != nil {
		sensors = *patch.ConnectedSensors
	}
	var pump string
	if patch.ConnectedPump != nil {
		pump = *patch.ConnectedPump
	}
	if err := s.checkDeviceRefs(ctx, userID, sensors, pump); err != nil {
		return nil, err
	}

	zone, err := s.zones.UpdateZone(ctx, id, userID, patch)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(events.Event{Type: events.ZoneUpdated, UserID: userID, Payload: zone})
	return zone, nil
}

// DeleteZone removes the zone. Sensors and pumps that pointed at it keep
// their zoneId; readers resolve such references leniently.
func (s *Service) DeleteZone(ctx context.Context, id, userID string) error {
	if err := s.zones.DeleteZone(ctx, id, userID); err != nil {
		return err
	}
	s.hub.Publish(events.Event{Type: events.ZoneDeleted, UserID: userID, Payload: events.Deleted{ID: id}})
	return nil
}

// Toggle flips the watering run state. Starting a run stamps lastWatered
// and the requested duration; stopping clears the duration and leaves
// lastWatered as the start of the most recent run. Zone status tracks the
// run state exactly.
func (s *Service) Toggle(ctx context.Context, id, userID string, duration *int) (*entities.Zone, error) {
	if duration != nil && *duration <= 0 {
		return nil, model.Invalidf("duration", "must be positive")
	}

	for attempt := 0; ; attempt++ {
		zone, err := s.zones.GetZone(ctx, id, userID)
		if err != nil {
			return nil, err
		}

		starting := !zone.WateringStatus.IsRunning
		ws := zone.WateringStatus
		ws.IsRunning = starting
		status := entities.ZoneInactive
		if starting {
			now := time.Now().UTC()
			ws.LastWatered = &now
			ws.CurrentDuration = duration
			status = entities.ZoneActive
		} else {
			ws.CurrentDuration = nil
		}

		updated, err := s.zones.SetWateringState(ctx, id, userID, zone.WateringStatus.IsRunning, ws, status)
		if errors.Is(err, storage.ErrConflict) && attempt < toggleRetries {
			continue
		}
		if err != nil {
			return nil, err
		}

		state := "off"
		if starting {
			state = "on"
		}
		metrics.WateringToggles.WithLabelValues(state).Inc()
		s.hub.Publish(events.Event{Type: events.ZoneToggle, UserID: userID, Payload: updated})
		return updated, nil
	}
}

// SetOverride flips the manual-override flag that tells any external
// watering scheduler to keep its hands off the zone. Toggle never touches
// this flag.
func (s *Service) SetOverride(ctx context.Context, id, userID string, override bool) (*entities.Zone, error) {
	zone, err := s.zones.UpdateZone(ctx, id, userID, model.ZonePatch{ManualOverride: &override})
	if err != nil {
		return nil, err
	}
	s.hub.Publish(events.Event{Type: events.ZoneUpdated, UserID: userID, Payload: zone})
	return zone, nil
}

// UpdateMoisture records a moisture sample for the zone, clamped to
// [0,100], and raises a rate-limited alert when it falls below the zone's
// threshold.
func (s *Service) UpdateMoisture(ctx context.Context, id, userID string, level float64, at time.Time) (*entities.Zone, error) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	point := entities.HumidityPoint{Timestamp: at, Value: level}
	zone, err := s.zones.RecordMoisture(ctx, id, userID, level, point, s.humidityHistoryMax)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(events.Event{Type: events.ZoneUpdated, UserID: userID, Payload: zone})
	s.checkMoisture(ctx, zone)
	return zone, nil
}

// RecordWateringEvent logs one completed watering session in the zone's
// bounded history.
func (s *Service) RecordWateringEvent(ctx context.Context, id, userID string, duration, amount float64) (*entities.Zone, error) {
	if duration <= 0 {
		return nil, model.Invalidf("duration", "must be positive")
	}
	if amount < 0 {
		return nil, model.Invalidf("amount", "must not be negative")
	}
	rec := entities.WateringRecord{Date: time.Now().UTC(), Duration: duration, Amount: amount}
	zone, err := s.zones.AppendWateringRecord(ctx, id, userID, rec, s.wateringHistoryMax)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(events.Event{Type: events.ZoneUpdated, UserID: userID, Payload: zone})
	return zone, nil
}

func (s *Service) checkMoisture(ctx context.Context, zone *entities.Zone) {
	if s.notifier == nil || zone.MoistureLevel >= zone.MoistureThreshold {
		return
	}
	if s.alerts != nil && !s.alerts.ShouldProcess("moisture:"+zone.ID) {
		return
	}
	msg := fmt.Sprintf("Zone %q moisture at %.0f%%, below the %.0f%% threshold", zone.Name, zone.MoistureLevel, zone.MoistureThreshold)
	if _, err := s.notifier.Create(ctx, zone.UserID, "low_moisture", msg, entities.SeverityWarning); err != nil {
		s.logger.Errorw("low moisture notification failed", "zone", zone.ID, "err", err)
	}
}

// checkDeviceRefs verifies that every referenced device exists and belongs
// to the same user. Empty references are allowed.
func (s *Service) checkDeviceRefs(ctx context.Context, userID string, sensorIDs []string, pumpID string) error {
	for _, sid := range sensorIDs {
		if sid == "" {
			return model.Invalidf("connectedSensors", "contains an empty id")
		}
		if _, err := s.sensors.GetSensor(ctx, sid, userID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return model.Invalidf("connectedSensors", "sensor %s does not exist", sid)
			}
			return err
		}
	}
	if pumpID != "" {
		if _, err := s.pumps.GetPump(ctx, pumpID, userID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return model.Invalidf("connectedPump", "pump %s does not exist", pumpID)
			}
			return err
		}
	}
	return nil
}
