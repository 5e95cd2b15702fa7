package watering

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/events"
	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
	"github.com/abderrahmenzaway/wie-empower/internal/storage"
	"github.com/abderrahmenzaway/wie-empower/pkg/dedup"
)

type fakeNotifier struct {
	mu    sync.Mutex
	kinds []string
}

func (f *fakeNotifier) Create(_ context.Context, _, kind, _ string, _ entities.Severity) (*entities.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	return &entities.Notification{Kind: kind}, nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.kinds)
}

type fixture struct {
	svc      *Service
	store    *storage.Memory
	notifier *fakeNotifier
	hub      *events.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop().Sugar()
	store := storage.NewMemory()
	hub := events.NewHub(64, logger)
	t.Cleanup(hub.Close)
	notifier := &fakeNotifier{}
	svc := NewService(store, store, store, hub, notifier, dedup.New(time.Minute, 100), 10, 10, logger)
	return &fixture{svc: svc, store: store, notifier: notifier, hub: hub}
}

func TestCreateZoneDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone, err := f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "North bed"})
	require.NoError(t, err)

	assert.Equal(t, entities.ZoneInactive, zone.Status)
	assert.False(t, zone.WateringStatus.IsRunning)
	assert.Nil(t, zone.WateringStatus.LastWatered)
	assert.Equal(t, 30.0, zone.MoistureThreshold)
	assert.Equal(t, entities.ModeNormal, zone.WateringMode)
	assert.NotEmpty(t, zone.ID)
}

func TestCreateZoneValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var verr *model.ValidationError

	_, err := f.svc.CreateZone(ctx, "alice", CreateZoneInput{})
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "x", WateringMode: "Turbo Mode"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "wateringMode", verr.Field)

	bad := 120.0
	_, err = f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "x", MoistureThreshold: &bad})
	require.ErrorAs(t, err, &verr)

	// Unknown device references are rejected up front.
	_, err = f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "x", ConnectedSensors: []string{"ghost"}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "connectedSensors", verr.Field)

	_, err = f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "x", ConnectedPump: "ghost"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "connectedPump", verr.Field)
}

func TestToggleStateMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone, err := f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "North bed"})
	require.NoError(t, err)

	dur := 15
	started, err := f.svc.Toggle(ctx, zone.ID, "alice", &dur)
	require.NoError(t, err)
	assert.True(t, started.WateringStatus.IsRunning)
	assert.Equal(t, entities.ZoneActive, started.Status)
	require.NotNil(t, started.WateringStatus.LastWatered)
	require.NotNil(t, started.WateringStatus.CurrentDuration)
	assert.Equal(t, 15, *started.WateringStatus.CurrentDuration)

	watered := *started.WateringStatus.LastWatered

	stopped, err := f.svc.Toggle(ctx, zone.ID, "alice", nil)
	require.NoError(t, err)
	assert.False(t, stopped.WateringStatus.IsRunning)
	assert.Equal(t, entities.ZoneInactive, stopped.Status)
	assert.Nil(t, stopped.WateringStatus.CurrentDuration)
	// Stopping keeps the start stamp of the last run.
	require.NotNil(t, stopped.WateringStatus.LastWatered)
	assert.True(t, stopped.WateringStatus.LastWatered.Equal(watered))
}

func TestToggleStatusMirrorsRunning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone, err := f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "North bed"})
	require.NoError(t, err)

	// Whatever the sequence, Active and isRunning never disagree.
	for i := 0; i < 5; i++ {
		z, err := f.svc.Toggle(ctx, zone.ID, "alice", nil)
		require.NoError(t, err)
		assert.Equal(t, z.WateringStatus.IsRunning, z.Status == entities.ZoneActive)
	}
}

func TestToggleUnknownZone(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Toggle(context.Background(), "ghost", "alice", nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateMoistureClampsAndAlerts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone, err := f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "North bed"})
	require.NoError(t, err)

	z, err := f.svc.UpdateMoisture(ctx, zone.ID, "alice", 140, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, z.MoistureLevel)
	assert.Equal(t, 0, f.notifier.count())

	z, err = f.svc.UpdateMoisture(ctx, zone.ID, "alice", -5, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, z.MoistureLevel)
	assert.Equal(t, 1, f.notifier.count())

	// A second below-threshold sample within the alert TTL stays quiet.
	_, err = f.svc.UpdateMoisture(ctx, zone.ID, "alice", 5, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.count())
}

func TestUpdateZonePatchSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone, err := f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "North bed", PlantType: "Tomatoes"})
	require.NoError(t, err)

	var verr *model.ValidationError
	_, err = f.svc.UpdateZone(ctx, zone.ID, "alice", model.ZonePatch{})
	require.ErrorAs(t, err, &verr)

	mode := entities.ModeEco
	updated, err := f.svc.UpdateZone(ctx, zone.ID, "alice", model.ZonePatch{WateringMode: &mode})
	require.NoError(t, err)
	assert.Equal(t, entities.ModeEco, updated.WateringMode)
	// Untouched fields survive.
	assert.Equal(t, "Tomatoes", updated.PlantType)
	assert.Equal(t, "North bed", updated.Name)
}

func TestSetOverrideIndependentOfToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone, err := f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "North bed"})
	require.NoError(t, err)

	z, err := f.svc.SetOverride(ctx, zone.ID, "alice", true)
	require.NoError(t, err)
	assert.True(t, z.WateringStatus.ManualOverride)

	// Toggling on and off leaves the override alone.
	_, err = f.svc.Toggle(ctx, zone.ID, "alice", nil)
	require.NoError(t, err)
	z, err = f.svc.Toggle(ctx, zone.ID, "alice", nil)
	require.NoError(t, err)
	assert.True(t, z.WateringStatus.ManualOverride)

	z, err = f.svc.SetOverride(ctx, zone.ID, "alice", false)
	require.NoError(t, err)
	assert.False(t, z.WateringStatus.ManualOverride)

	_, err = f.svc.SetOverride(ctx, zone.ID, "bob", true)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecordWateringEventBoundsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone, err := f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "North bed"})
	require.NoError(t, err)

	var z *entities.Zone
	for i := 0; i < 12; i++ { // fixture cap is 10
		z, err = f.svc.RecordWateringEvent(ctx, zone.ID, "alice", 5, 20)
		require.NoError(t, err)
	}
	assert.Len(t, z.WateringHistory, 10)

	_, err = f.svc.RecordWateringEvent(ctx, zone.ID, "alice", 0, 20)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestZoneEventsReachSubscriber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub := f.hub.Subscribe("alice")
	defer sub.Cancel()

	zone, err := f.svc.CreateZone(ctx, "alice", CreateZoneInput{Name: "North bed"})
	require.NoError(t, err)
	_, err = f.svc.Toggle(ctx, zone.ID, "alice", nil)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteZone(ctx, zone.ID, "alice"))

	types := make([]string, 0, 3)
	for len(types) < 3 {
		select {
		case ev := <-sub.C:
			types = append(types, ev.Type)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out with %v", types)
		}
	}
	assert.Equal(t, []string{events.ZoneCreated, events.ZoneToggle, events.ZoneDeleted}, types)
}
