package storage

import (
	"context"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
)

// Every operation is scoped by the owning user id; an id owned by a
// different user behaves exactly like a missing one (ErrNotFound).
// Updates are partial merges driven by the explicit patch types in
// internal/model; mutations of a single entity are atomic with respect to
// concurrent mutations of that entity.

type ZoneStore interface {
	GetZone(ctx context.Context, id, userID string) (*entities.Zone, error)
	ListZones(ctx context.Context, userID string) ([]entities.Zone, error)
	CreateZone(ctx context.Context, z *entities.Zone) error
	UpdateZone(ctx context.Context, id, userID string, patch model.ZonePatch) (*entities.Zone, error)
	DeleteZone(ctx context.Context, id, userID string) error

	// SetWateringState swaps in a new watering status if and only if the
	// stored isRunning flag still equals expectRunning. ErrConflict when a
	// concurrent toggle won the race.
	SetWateringState(ctx context.Context, id, userID string, expectRunning bool, ws entities.WateringStatus, status entities.ZoneStatus) (*entities.Zone, error)

	// RecordMoisture sets the current moisture level and appends one
	// humidity point, keeping at most maxHistory entries (oldest evicted).
	RecordMoisture(ctx context.Context, id, userID string, level float64, p entities.HumidityPoint, maxHistory int) (*entities.Zone, error)

	// AppendWateringRecord logs one completed watering session.
	AppendWateringRecord(ctx context.Context, id, userID string, rec entities.WateringRecord, maxHistory int) (*entities.Zone, error)
}

type SensorStore interface {
	GetSensor(ctx context.Context, id, userID string) (*entities.Sensor, error)
	ListSensors(ctx context.Context, userID string) ([]entities.Sensor, error)
	CreateSensor(ctx context.Context, s *entities.Sensor) error
	UpdateSensor(ctx context.Context, id, userID string, patch model.SensorPatch) (*entities.Sensor, error)
	DeleteSensor(ctx context.Context, id, userID string) error

	// AppendReading sets currentValue/lastReading and appends the reading,
	// keeping at most max entries with FIFO eviction. The whole mutation is
	// a single atomic update of the sensor document.
	AppendReading(ctx context.Context, id, userID string, r entities.Reading, max int) (*entities.Sensor, error)

	SetSensorStatus(ctx context.Context, id, userID string, status entities.SensorStatus) (*entities.Sensor, error)
}

type PumpStore interface {
	GetPump(ctx context.Context, id, userID string) (*entities.Pump, error)
	ListPumps(ctx context.Context, userID string) ([]entities.Pump, error)
	CreatePump(ctx context.Context, p *entities.Pump) error
	UpdatePump(ctx context.Context, id, userID string, patch model.PumpPatch) (*entities.Pump, error)
	DeletePump(ctx context.Context, id, userID string) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *entities.Notification) error
	// ListNotifications returns the user's notifications newest first.
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]entities.Notification, error)
	MarkRead(ctx context.Context, id, userID string) (*entities.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, id, userID string) error
	DeleteAllNotifications(ctx context.Context, userID string) error
}
