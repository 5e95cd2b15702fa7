package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
)

// Memory is an in-process implementation of the four stores. It backs tests
// and single-node deployments without a MongoDB instance; the lock spans
// one mutation at a time, which gives the same per-entity atomicity the
// document store provides.
type Memory struct {
	mu            sync.RWMutex
	zones         map[string]*entities.Zone
	sensors       map[string]*entities.Sensor
	pumps         map[string]*entities.Pump
	notifications map[string]*entities.Notification
}

func NewMemory() *Memory {
	return &Memory{
		zones:         make(map[string]*entities.Zone),
		sensors:       make(map[string]*entities.Sensor),
		pumps:         make(map[string]*entities.Pump),
		notifications: make(map[string]*entities.Notification),
	}
}

// ---------------------------------------------------------------- zones

func (m *Memory) zone(id, userID string) (*entities.Zone, error) {
	z, ok := m.zones[id]
	if !ok || z.UserID != userID {
		return nil, ErrNotFound
	}
	return z, nil
}

func (m *Memory) GetZone(ctx context.Context, id, userID string) (*entities.Zone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, err := m.zone(id, userID)
	if err != nil {
		return nil, err
	}
	return cloneZone(z), nil
}

func (m *Memory) ListZones(ctx context.Context, userID string) ([]entities.Zone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entities.Zone, 0)
	for _, z := range m.zones {
		if z.UserID == userID {
			out = append(out, *cloneZone(z))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreateZone(ctx context.Context, z *entities.Zone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zones[z.ID] = cloneZone(z)
	return nil
}

func (m *Memory) UpdateZone(ctx context.Context, id, userID string, patch model.ZonePatch) (*entities.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, err := m.zone(id, userID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		z.Name = *patch.Name
	}
	if patch.MoistureThreshold != nil {
		z.MoistureThreshold = *patch.MoistureThreshold
	}
	if patch.PlantType != nil {
		z.PlantType = *patch.PlantType
	}
	if patch.WateringMode != nil {
		z.WateringMode = *patch.WateringMode
	}
	if patch.ManualOverride != nil {
		z.WateringStatus.ManualOverride = *patch.ManualOverride
	}
	if patch.PredictedSchedule != nil {
		z.PredictedSchedule = append([]entities.SchedulePoint(nil), (*patch.PredictedSchedule)...)
	}
	if patch.ConnectedSensors != nil {
		z.ConnectedSensors = append([]string(nil), (*patch.ConnectedSensors)...)
	}
	if patch.ConnectedPump != nil {
		z.ConnectedPump = *patch.ConnectedPump
	}
	return cloneZone(z), nil
}

func (m *Memory) DeleteZone(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.zone(id, userID); err != nil {
		return err
	}
	delete(m.zones, id)
	return nil
}

func (m *Memory) SetWateringState(ctx context.Context, id, userID string, expectRunning bool, ws entities.WateringStatus, status entities.ZoneStatus) (*entities.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, err := m.zone(id, userID)
	if err != nil {
		return nil, err
	}
	if z.WateringStatus.IsRunning != expectRunning {
		return nil, ErrConflict
	}
	z.WateringStatus = ws
	z.Status = status
	return cloneZone(z), nil
}

func (m *Memory) RecordMoisture(ctx context.Context, id, userID string, level float64, p entities.HumidityPoint, maxHistory int) (*entities.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, err := m.zone(id, userID)
	if err != nil {
		return nil, err
	}
	z.MoistureLevel = level
	z.HumidityHistory = appendBounded(z.HumidityHistory, p, maxHistory)
	return cloneZone(z), nil
}

func (m *Memory) AppendWateringRecord(ctx context.Context, id, userID string, rec entities.WateringRecord, maxHistory int) (*entities.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, err := m.zone(id, userID)
	if err != nil {
		return nil, err
	}
	z.WateringHistory = appendBounded(z.WateringHistory, rec, maxHistory)
	return cloneZone(z), nil
}

// -------------------------------------------------------------- sensors

func (m *Memory) sensor(id, userID string) (*entities.Sensor, error) {
	s, ok := m.sensors[id]
	if !ok || s.UserID != userID {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Memory) GetSensor(ctx context.Context, id, userID string) (*entities.Sensor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, err := m.sensor(id, userID)
	if err != nil {
		return nil, err
	}
	return cloneSensor(s), nil
}

func (m *Memory) ListSensors(ctx context.Context, userID string) ([]entities.Sensor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entities.Sensor, 0)
	for _, s := range m.sensors {
		if s.UserID == userID {
			out = append(out, *cloneSensor(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreateSensor(ctx context.Context, s *entities.Sensor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sensors[s.ID] = cloneSensor(s)
	return nil
}

func (m *Memory) UpdateSensor(ctx context.Context, id, userID string, patch model.SensorPatch) (*entities.Sensor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sensor(id, userID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.ZoneID != nil {
		s.ZoneID = *patch.ZoneID
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	if patch.BatteryLevel != nil {
		s.BatteryLevel = *patch.BatteryLevel
	}
	if patch.Unit != nil {
		s.Unit = *patch.Unit
	}
	return cloneSensor(s), nil
}

func (m *Memory) DeleteSensor(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.sensor(id, userID); err != nil {
		return err
	}
	delete(m.sensors, id)
	return nil
}

func (m *Memory) AppendReading(ctx context.Context, id, userID string, r entities.Reading, max int) (*entities.Sensor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sensor(id, userID)
	if err != nil {
		return nil, err
	}
	s.CurrentValue = r.Value
	ts := r.Timestamp
	s.LastReading = &ts
	s.Readings = appendBounded(s.Readings, r, max)
	return cloneSensor(s), nil
}

func (m *Memory) SetSensorStatus(ctx context.Context, id, userID string, status entities.SensorStatus) (*entities.Sensor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sensor(id, userID)
	if err != nil {
		return nil, err
	}
	s.Status = status
	return cloneSensor(s), nil
}

// ---------------------------------------------------------------- pumps

func (m *Memory) pump(id, userID string) (*entities.Pump, error) {
	p, ok := m.pumps[id]
	if !ok || p.UserID != userID {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *Memory) GetPump(ctx context.Context, id, userID string) (*entities.Pump, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, err := m.pump(id, userID)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) ListPumps(ctx context.Context, userID string) ([]entities.Pump, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entities.Pump, 0)
	for _, p := range m.pumps {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreatePump(ctx context.Context, p *entities.Pump) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.pumps[p.ID] = &cp
	return nil
}

func (m *Memory) UpdatePump(ctx context.Context, id, userID string, patch model.PumpPatch) (*entities.Pump, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.pump(id, userID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.ZoneID != nil {
		p.ZoneID = *patch.ZoneID
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.FlowRate != nil {
		p.FlowRate = *patch.FlowRate
	}
	if patch.Pressure != nil {
		p.Pressure = *patch.Pressure
	}
	if patch.Energy != nil {
		patch.Energy.Apply(&p.EnergyConsumption)
	}
	if patch.Water != nil {
		patch.Water.Apply(&p.WaterOutput)
	}
	if patch.OperatingHours != nil {
		p.OperatingHours = *patch.OperatingHours
	}
	if patch.LastMaintenance != nil {
		t := *patch.LastMaintenance
		p.LastMaintenance = &t
	}
	if patch.NextMaintenance != nil {
		t := *patch.NextMaintenance
		p.NextMaintenance = &t
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) DeletePump(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.pump(id, userID); err != nil {
		return err
	}
	delete(m.pumps, id)
	return nil
}

// -------------------------------------------------------- notifications

func (m *Memory) CreateNotification(ctx context.Context, n *entities.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.notifications[n.ID] = &cp
	return nil
}

func (m *Memory) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]entities.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entities.Notification, 0)
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (m *Memory) MarkRead(ctx context.Context, id, userID string) (*entities.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	n.IsRead = true
	cp := *n
	return &cp, nil
}

func (m *Memory) MarkAllRead(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *Memory) DeleteNotification(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(m.notifications, id)
	return nil
}

func (m *Memory) DeleteAllNotifications(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.notifications {
		if n.UserID == userID {
			delete(m.notifications, id)
		}
	}
	return nil
}

// -------------------------------------------------------------- helpers

func appendBounded[T any](s []T, v T, max int) []T {
	s = append(s, v)
	if max > 0 && len(s) > max {
		s = append([]T(nil), s[len(s)-max:]...)
	}
	return s
}

func cloneZone(z *entities.Zone) *entities.Zone {
	cp := *z
	cp.HumidityHistory = append([]entities.HumidityPoint(nil), z.HumidityHistory...)
	cp.WateringHistory = append([]entities.WateringRecord(nil), z.WateringHistory...)
	cp.PredictedSchedule = append([]entities.SchedulePoint(nil), z.PredictedSchedule...)
	cp.ConnectedSensors = append([]string(nil), z.ConnectedSensors...)
	if z.WateringStatus.LastWatered != nil {
		t := *z.WateringStatus.LastWatered
		cp.WateringStatus.LastWatered = &t
	}
	if z.WateringStatus.CurrentDuration != nil {
		d := *z.WateringStatus.CurrentDuration
		cp.WateringStatus.CurrentDuration = &d
	}
	return &cp
}

func cloneSensor(s *entities.Sensor) *entities.Sensor {
	cp := *s
	cp.Readings = append([]entities.Reading(nil), s.Readings...)
	if s.LastReading != nil {
		t := *s.LastReading
		cp.LastReading = &t
	}
	return &cp
}
