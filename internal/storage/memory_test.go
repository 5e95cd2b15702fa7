package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
)

func newTestZone(id, userID string) *entities.Zone {
	return &entities.Zone{
		ID:                id,
		UserID:            userID,
		Name:              "North bed",
		Status:            entities.ZoneInactive,
		MoistureThreshold: 30,
		WateringMode:      entities.ModeNormal,
		HumidityHistory:   []entities.HumidityPoint{},
		WateringHistory:   []entities.WateringRecord{},
		CreatedAt:         time.Now().UTC(),
	}
}

func newTestSensor(id, userID string) *entities.Sensor {
	return &entities.Sensor{
		ID:        id,
		UserID:    userID,
		Name:      "moisture-1",
		Type:      entities.SensorSoilMoisture,
		Status:    entities.SensorOffline,
		Readings:  []entities.Reading{},
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryCrossUserLooksLikeMissing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateZone(ctx, newTestZone("z1", "alice")))
	require.NoError(t, m.CreateSensor(ctx, newTestSensor("s1", "alice")))

	_, err := m.GetZone(ctx, "z1", "bob")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.UpdateSensor(ctx, "s1", "bob", model.SensorPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.DeleteZone(ctx, "z1", "bob"), ErrNotFound)

	// The rightful owner still sees everything.
	_, err = m.GetZone(ctx, "z1", "alice")
	assert.NoError(t, err)
}

func TestMemoryAppendReadingEvictsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateSensor(ctx, newTestSensor("s1", "alice")))

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var last *entities.Sensor
	for i := 0; i < entities.MaxReadings+1; i++ {
		var err error
		last, err = m.AppendReading(ctx, "s1", "alice",
			entities.Reading{Timestamp: base.Add(time.Duration(i) * time.Minute), Value: float64(i)},
			entities.MaxReadings)
		require.NoError(t, err)
	}

	require.Len(t, last.Readings, entities.MaxReadings)
	// Reading 0 fell off the front; the newest is still at the back.
	assert.Equal(t, 1.0, last.Readings[0].Value)
	assert.Equal(t, float64(entities.MaxReadings), last.Readings[len(last.Readings)-1].Value)
	assert.Equal(t, float64(entities.MaxReadings), last.CurrentValue)
	require.NotNil(t, last.LastReading)
	assert.True(t, last.LastReading.Equal(base.Add(time.Duration(entities.MaxReadings)*time.Minute)))
}

func TestMemorySetWateringStateCAS(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateZone(ctx, newTestZone("z1", "alice")))

	now := time.Now().UTC()
	running := entities.WateringStatus{IsRunning: true, LastWatered: &now}

	z, err := m.SetWateringState(ctx, "z1", "alice", false, running, entities.ZoneActive)
	require.NoError(t, err)
	assert.True(t, z.WateringStatus.IsRunning)
	assert.Equal(t, entities.ZoneActive, z.Status)

	// A second writer that still believes the zone is idle loses.
	_, err = m.SetWateringState(ctx, "z1", "alice", false, running, entities.ZoneActive)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryRecordMoistureBoundsHistory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateZone(ctx, newTestZone("z1", "alice")))

	var z *entities.Zone
	for i := 0; i < 5; i++ {
		var err error
		z, err = m.RecordMoisture(ctx, "z1", "alice", float64(i),
			entities.HumidityPoint{Timestamp: time.Now(), Value: float64(i)}, 3)
		require.NoError(t, err)
	}
	require.Len(t, z.HumidityHistory, 3)
	assert.Equal(t, 2.0, z.HumidityHistory[0].Value)
	assert.Equal(t, 4.0, z.MoistureLevel)
}

func TestMemoryNotifications(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, m.CreateNotification(ctx, &entities.Notification{
			ID:        fmt.Sprintf("n%d", i),
			UserID:    "alice",
			Message:   "hello",
			Severity:  entities.SeverityInfo,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, m.CreateNotification(ctx, &entities.Notification{
		ID: "other", UserID: "bob", Message: "not yours", Timestamp: base,
	}))

	list, err := m.ListNotifications(ctx, "alice", false)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "n2", list[0].ID) // newest first

	_, err = m.MarkRead(ctx, "n0", "alice")
	require.NoError(t, err)
	unread, err := m.ListNotifications(ctx, "alice", true)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	require.NoError(t, m.MarkAllRead(ctx, "alice"))
	unread, err = m.ListNotifications(ctx, "alice", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	// Bob's notification was untouched.
	bobs, err := m.ListNotifications(ctx, "bob", true)
	require.NoError(t, err)
	assert.Len(t, bobs, 1)

	require.NoError(t, m.DeleteAllNotifications(ctx, "alice"))
	list, err = m.ListNotifications(ctx, "alice", false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateZone(ctx, newTestZone("z1", "alice")))

	z, err := m.GetZone(ctx, "z1", "alice")
	require.NoError(t, err)
	z.Name = "mutated"
	z.ConnectedSensors = append(z.ConnectedSensors, "rogue")

	again, err := m.GetZone(ctx, "z1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "North bed", again.Name)
	assert.Empty(t, again.ConnectedSensors)
}

func ptr[T any](v T) *T { return &v }
